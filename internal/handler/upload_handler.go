package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nearbuy/nearbuy-api/internal/service"
	"github.com/nearbuy/nearbuy-api/internal/utils"
)

// UploadHandler accepts multipart image uploads for listings.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs a handler instance.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register binds the upload route.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/", h.upload)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file field is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read upload")
	}
	defer file.Close()

	result, err := h.service.UploadImage(requestContext(c), fileHeader.Filename, fileHeader.Size, file)
	switch {
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrUploadNotAnImage):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrUploadUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	case err != nil:
		h.logger.Error().Err(err).Msg("upload failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to store upload")
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
