package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/repository"
	"github.com/nearbuy/nearbuy-api/internal/service"
	"github.com/nearbuy/nearbuy-api/internal/utils"
)

// AdminHandler serves the moderation dashboard.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler constructs a handler instance.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register binds the admin routes. The router group is expected to carry the
// admin middleware already.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
	router.Get("/users", h.listUsers)
	router.Post("/users/:id/:action", h.userAction)
	router.Get("/listings", h.listListings)
	router.Post("/listings/:id/:action", h.listingAction)
	router.Get("/actions", h.listActions)
	router.Get("/reports", h.listReports)
	router.Post("/reports/:id/resolve", h.resolveReport)
	router.Post("/reports/:id/dismiss", h.dismissReport)
	router.Post("/announce", h.announce)
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(requestContext(c))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to collect stats")
	}
	return c.JSON(stats)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	users, err := h.service.ListUsers(requestContext(c), repository.AdminUserFilter{
		Search:   strings.TrimSpace(c.Query("q")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load users")
	}

	return c.JSON(users)
}

func (h *AdminHandler) userAction(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&payload)

	user, err := h.service.UserAction(requestContext(c), userIDFromContext(c), id, c.Params("action"), payload.Reason)
	switch {
	case errors.Is(err, service.ErrUnknownUserAction):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSelfModeration):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrModerationTargetNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case err != nil:
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to apply action")
	}

	return c.JSON(user)
}

func (h *AdminHandler) listListings(c *fiber.Ctx) error {
	filter, err := searchFilterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	filter.Status = strings.TrimSpace(c.Query("status"))

	listings, err := h.service.ListListings(requestContext(c), filter)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load listings")
	}

	return c.JSON(listings)
}

func (h *AdminHandler) listingAction(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&payload)

	listing, err := h.service.ListingAction(requestContext(c), userIDFromContext(c), id, c.Params("action"), payload.Reason)
	switch {
	case errors.Is(err, service.ErrUnknownListingAction):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrModerationTargetNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case err != nil:
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to apply action")
	}

	return c.JSON(listing)
}

func (h *AdminHandler) listActions(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	actions, err := h.service.ListActions(requestContext(c), page, pageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load audit log")
	}

	return c.JSON(actions)
}

func (h *AdminHandler) listReports(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	reports, err := h.service.ListReports(requestContext(c), repository.ReportFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load reports")
	}

	return c.JSON(reports)
}

func (h *AdminHandler) resolveReport(c *fiber.Ctx) error {
	return h.closeReport(c, false)
}

func (h *AdminHandler) dismissReport(c *fiber.Ctx) error {
	return h.closeReport(c, true)
}

func (h *AdminHandler) closeReport(c *fiber.Ctx, dismiss bool) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid report id")
	}

	report, err := h.service.ResolveReport(requestContext(c), userIDFromContext(c), id, dismiss)
	if errors.Is(err, service.ErrReportNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update report")
	}

	return c.JSON(report)
}

func (h *AdminHandler) announce(c *fiber.Ctx) error {
	var payload dto.AnnounceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Announce(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return utils.SendValidationError(c, err)
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to send announcement")
	}

	return c.JSON(fiber.Map{"delivered": result.Delivered, "failed": result.Failed})
}
