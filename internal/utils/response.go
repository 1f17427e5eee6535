package utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the common error body. Details is populated only for
// validation failures.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// SendValidationError sends a 400 with a structured per-field detail list.
func SendValidationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "Validation failed",
		Details: FieldErrors(err),
	})
}

// FieldErrors flattens validator errors into field/message pairs. Non-validator
// errors yield a single generic entry so callers never leak internals.
func FieldErrors(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "body", Message: "invalid request body"}}
	}

	details := make([]FieldError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, FieldError{
			Field:   fieldError.Field(),
			Message: describeValidation(fieldError),
		})
	}
	return details
}

func describeValidation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "is below the minimum of " + fe.Param()
	case "max":
		return "exceeds the maximum of " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
