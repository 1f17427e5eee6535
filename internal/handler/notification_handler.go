package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nearbuy/nearbuy-api/internal/repository"
	"github.com/nearbuy/nearbuy-api/internal/service"
	"github.com/nearbuy/nearbuy-api/internal/utils"
)

// NotificationHandler serves a user's notification inbox.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register binds the notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Post("/:id/read", h.markRead)
	router.Post("/read-all", h.markAllRead)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	filter := repository.NotificationFilter{
		UserID:     userIDFromContext(c),
		Type:       strings.TrimSpace(c.Query("type")),
		UnreadOnly: c.QueryBool("unread_only"),
		Page:       page,
		PageSize:   pageSize,
	}

	inbox, err := h.service.List(requestContext(c), filter)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load notifications")
	}

	return c.JSON(inbox)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	count := h.service.UnreadCount(requestContext(c), userIDFromContext(c))
	return c.JSON(fiber.Map{"unread_count": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	updated, err := h.service.MarkRead(requestContext(c), id, userIDFromContext(c))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to mark notification read")
	}
	if !updated {
		return utils.SendError(c, fiber.StatusNotFound, "notification not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	updated, err := h.service.MarkAllRead(requestContext(c), userIDFromContext(c))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to mark notifications read")
	}
	return c.JSON(fiber.Map{"updated": updated})
}
