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

// MessagingHandler serves buyer/seller conversations.
type MessagingHandler struct {
	service service.MessagingService
	logger  zerolog.Logger
}

// NewMessagingHandler constructs a handler instance.
func NewMessagingHandler(service service.MessagingService, logger zerolog.Logger) *MessagingHandler {
	return &MessagingHandler{
		service: service,
		logger:  logger.With().Str("component", "messaging_handler").Logger(),
	}
}

// Register binds the messaging routes.
func (h *MessagingHandler) Register(router fiber.Router) {
	router.Get("/", h.listThreads)
	router.Post("/", h.getOrCreateThread)
	router.Get("/:id", h.getThread)
	router.Post("/:id/messages", h.sendMessage)
	router.Post("/:id/read", h.markRead)
}

func (h *MessagingHandler) listThreads(c *fiber.Ctx) error {
	threads, err := h.service.ListThreads(requestContext(c), userIDFromContext(c))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load conversations")
	}
	return c.JSON(threads)
}

func (h *MessagingHandler) getOrCreateThread(c *fiber.Ctx) error {
	var payload dto.ThreadCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	thread, created, err := h.service.GetOrCreateThread(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrSelfThread):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrListingNotFound), errors.Is(err, service.ErrThreadNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to open conversation")
		}
	}

	if created {
		return c.Status(fiber.StatusCreated).JSON(thread)
	}
	return c.JSON(thread)
}

func (h *MessagingHandler) getThread(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid thread id")
	}

	thread, err := h.service.GetThread(requestContext(c), userIDFromContext(c), id)
	if errors.Is(err, service.ErrThreadNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load conversation")
	}

	return c.JSON(thread)
}

func (h *MessagingHandler) sendMessage(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid thread id")
	}

	var payload dto.MessageSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.SendMessage(requestContext(c), userIDFromContext(c), id, payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrEmptyMessage):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrThreadNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to send message")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

func (h *MessagingHandler) markRead(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid thread id")
	}

	updated, err := h.service.MarkThreadRead(requestContext(c), userIDFromContext(c), id)
	if errors.Is(err, service.ErrThreadNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to mark conversation read")
	}

	return c.JSON(fiber.Map{"updated": updated})
}
