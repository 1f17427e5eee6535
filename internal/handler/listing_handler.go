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

// ListingHandler serves the public catalog plus owner CRUD.
type ListingHandler struct {
	service service.ListingService
	logger  zerolog.Logger
}

// NewListingHandler constructs a handler instance.
func NewListingHandler(service service.ListingService, logger zerolog.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		logger:  logger.With().Str("component", "listing_handler").Logger(),
	}
}

// Register binds the public read routes.
func (h *ListingHandler) Register(router fiber.Router) {
	router.Get("/", h.search)
	router.Get("/:id", h.get)
}

// RegisterProtected binds the routes that require a live session. The guards
// run per route because the group prefix also serves public routes.
func (h *ListingHandler) RegisterProtected(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/", guarded(guards, h.create)...)
	router.Put("/:id", guarded(guards, h.update)...)
	router.Delete("/:id", guarded(guards, h.remove)...)
}

// RegisterCategories binds the category reference route.
func (h *ListingHandler) RegisterCategories(router fiber.Router) {
	router.Get("/", h.categories)
}

// RegisterFavorites binds the favorites routes.
func (h *ListingHandler) RegisterFavorites(router fiber.Router) {
	router.Get("/", h.listFavorites)
	router.Post("/:id", h.addFavorite)
	router.Delete("/:id", h.removeFavorite)
}

func (h *ListingHandler) search(c *fiber.Ctx) error {
	filter, err := searchFilterFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	page, err := h.service.Search(requestContext(c), filter)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to search listings")
	}

	return c.JSON(page)
}

func (h *ListingHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	listing, err := h.service.Get(requestContext(c), id, userIDFromContext(c))
	if errors.Is(err, service.ErrListingNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load listing")
	}

	return c.JSON(listing)
}

func (h *ListingHandler) create(c *fiber.Ctx) error {
	var payload dto.ListingCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	listing, err := h.service.Create(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create listing")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *ListingHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	var payload dto.ListingUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	listing, err := h.service.Update(requestContext(c), userIDFromContext(c), id, payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrListingNotFound), errors.Is(err, service.ErrNotListingOwner):
			return utils.SendError(c, fiber.StatusNotFound, "listing not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update listing")
		}
	}

	return c.JSON(listing)
}

func (h *ListingHandler) remove(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	err = h.service.Delete(requestContext(c), userIDFromContext(c), id)
	if errors.Is(err, service.ErrListingNotFound) || errors.Is(err, service.ErrNotListingOwner) {
		return utils.SendError(c, fiber.StatusNotFound, "listing not found")
	}
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete listing")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ListingHandler) categories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(requestContext(c))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load categories")
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *ListingHandler) listFavorites(c *fiber.Ctx) error {
	listings, err := h.service.ListFavorites(requestContext(c), userIDFromContext(c))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load favorites")
	}
	return c.JSON(fiber.Map{"listings": listings})
}

func (h *ListingHandler) addFavorite(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	err = h.service.AddFavorite(requestContext(c), userIDFromContext(c), id)
	if errors.Is(err, service.ErrListingNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to save favorite")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ListingHandler) removeFavorite(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid listing id")
	}

	if err := h.service.RemoveFavorite(requestContext(c), userIDFromContext(c), id); err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove favorite")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func searchFilterFromQuery(c *fiber.Ctx) (repository.ListingFilter, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return repository.ListingFilter{}, err
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return repository.ListingFilter{}, err
	}
	categoryID, err := parseQueryInt(c, "category_id")
	if err != nil || categoryID < 0 {
		return repository.ListingFilter{}, fiber.ErrBadRequest
	}
	minPrice, err := parseQueryCents(c, "min_price")
	if err != nil {
		return repository.ListingFilter{}, err
	}
	maxPrice, err := parseQueryCents(c, "max_price")
	if err != nil {
		return repository.ListingFilter{}, err
	}

	return repository.ListingFilter{
		Query:      strings.TrimSpace(c.Query("q")),
		CategoryID: uint(categoryID),
		Condition:  strings.TrimSpace(c.Query("condition")),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Location:   strings.TrimSpace(c.Query("location")),
		SortBy:     strings.TrimSpace(c.Query("sort_by")),
		SortOrder:  strings.TrimSpace(c.Query("sort_order")),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
