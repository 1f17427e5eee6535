package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/service"
	"github.com/nearbuy/nearbuy-api/internal/utils"
)

// OfferHandler serves the offer workflow.
type OfferHandler struct {
	service service.OfferService
	logger  zerolog.Logger
}

// NewOfferHandler constructs a handler instance.
func NewOfferHandler(service service.OfferService, logger zerolog.Logger) *OfferHandler {
	return &OfferHandler{
		service: service,
		logger:  logger.With().Str("component", "offer_handler").Logger(),
	}
}

// Register binds the offer routes.
func (h *OfferHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Post("/:id/accept", h.accept)
	router.Post("/:id/decline", h.decline)
	router.Post("/:id/withdraw", h.withdraw)
}

func (h *OfferHandler) list(c *fiber.Ctx) error {
	offers, err := h.service.List(requestContext(c), userIDFromContext(c), c.Query("type"))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load offers")
	}
	return c.JSON(fiber.Map{"offers": offers})
}

func (h *OfferHandler) create(c *fiber.Ctx) error {
	var payload dto.OfferCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	offer, err := h.service.Create(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrListingNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrListingInactive),
			errors.Is(err, service.ErrSelfOffer),
			errors.Is(err, service.ErrDuplicatePendingOffer):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create offer")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(offer)
}

func (h *OfferHandler) accept(c *fiber.Ctx) error {
	return h.respond(c, h.service.Accept)
}

func (h *OfferHandler) decline(c *fiber.Ctx) error {
	return h.respond(c, h.service.Decline)
}

func (h *OfferHandler) withdraw(c *fiber.Ctx) error {
	return h.respond(c, h.service.Withdraw)
}

func (h *OfferHandler) respond(c *fiber.Ctx, action func(ctx context.Context, userID, offerID uint) (dto.OfferResponse, error)) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offer id")
	}

	offer, err := action(requestContext(c), userIDFromContext(c), id)
	switch {
	case errors.Is(err, service.ErrOfferNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrOfferNotPending):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case err != nil:
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update offer")
	}

	return c.JSON(offer)
}
