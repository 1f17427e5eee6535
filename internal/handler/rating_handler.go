package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/service"
	"github.com/nearbuy/nearbuy-api/internal/utils"
)

// RatingHandler serves peer reviews.
type RatingHandler struct {
	service service.RatingService
	logger  zerolog.Logger
}

// NewRatingHandler constructs a handler instance.
func NewRatingHandler(service service.RatingService, logger zerolog.Logger) *RatingHandler {
	return &RatingHandler{
		service: service,
		logger:  logger.With().Str("component", "rating_handler").Logger(),
	}
}

// Register binds the protected rating routes.
func (h *RatingHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
}

// RegisterPublic binds the public per-user rating listing.
func (h *RatingHandler) RegisterPublic(router fiber.Router) {
	router.Get("/:id/ratings", h.listForUser)
}

func (h *RatingHandler) create(c *fiber.Ctx) error {
	var payload dto.RatingCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	rating, err := h.service.Create(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrSelfRating):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateRating):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrRatedNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create rating")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(rating)
}

func (h *RatingHandler) listForUser(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	ratings, total, err := h.service.ListForUser(requestContext(c), id, page, pageSize)
	if errors.Is(err, service.ErrRatedNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load ratings")
	}

	return c.JSON(fiber.Map{"ratings": ratings, "totalCount": total})
}
