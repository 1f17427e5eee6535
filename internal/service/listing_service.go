package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

// ErrCategoryNotFound rejects listings filed under an unknown category.
var ErrCategoryNotFound = errors.New("category not found")

// ErrNotListingOwner conceals listings from non-owner mutation attempts.
var ErrNotListingOwner = errors.New("listing not found")

// ListingService manages the listing catalog, categories and favorites.
type ListingService interface {
	Search(ctx context.Context, filter repository.ListingFilter) (dto.ListingPageResponse, error)
	Get(ctx context.Context, id uint, viewerID uint) (dto.ListingResponse, error)
	Create(ctx context.Context, sellerID uint, payload dto.ListingCreateRequest) (dto.ListingResponse, error)
	Update(ctx context.Context, sellerID, id uint, payload dto.ListingUpdateRequest) (dto.ListingResponse, error)
	Delete(ctx context.Context, sellerID, id uint) error
	Categories(ctx context.Context) ([]dto.CategoryResponse, error)
	AddFavorite(ctx context.Context, userID, listingID uint) error
	RemoveFavorite(ctx context.Context, userID, listingID uint) error
	ListFavorites(ctx context.Context, userID uint) ([]dto.ListingResponse, error)
}

type listingService struct {
	listings   repository.ListingRepository
	categories repository.CategoryRepository
	favorites  repository.FavoriteRepository
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewListingService constructs a listing service.
func NewListingService(listings repository.ListingRepository, categories repository.CategoryRepository, favorites repository.FavoriteRepository, validate *validator.Validate, logger zerolog.Logger) ListingService {
	return &listingService{
		listings:   listings,
		categories: categories,
		favorites:  favorites,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "listing_service").Logger(),
	}
}

func (s *listingService) Search(ctx context.Context, filter repository.ListingFilter) (dto.ListingPageResponse, error) {
	listings, total, err := s.listings.Search(ctx, filter)
	if err != nil {
		return dto.ListingPageResponse{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return dto.ListingPageResponse{
		Listings:   dto.NewListingResponseSlice(listings),
		TotalCount: total,
		HasMore:    int64(page*pageSize) < total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// Get returns the listing detail and counts the view. The owner browsing
// their own listing does not bump the counter.
func (s *listingService) Get(ctx context.Context, id uint, viewerID uint) (dto.ListingResponse, error) {
	listing, err := s.listings.FindDetail(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ListingResponse{}, ErrListingNotFound
	}
	if err != nil {
		return dto.ListingResponse{}, err
	}
	if listing.Status == models.ListingStatusDeleted {
		return dto.ListingResponse{}, ErrListingNotFound
	}

	if viewerID != listing.SellerID {
		if err := s.listings.IncrementViews(ctx, listing.ID); err != nil {
			s.logger.Warn().Err(err).Uint("listing_id", listing.ID).Msg("failed to count view")
		} else {
			listing.Views++
		}
	}

	return dto.NewListingResponse(listing), nil
}

func (s *listingService) Create(ctx context.Context, sellerID uint, payload dto.ListingCreateRequest) (dto.ListingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ListingResponse{}, err
	}

	if _, err := s.categories.FindByID(ctx, payload.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ListingResponse{}, ErrCategoryNotFound
		}
		return dto.ListingResponse{}, err
	}

	negotiable := true
	if payload.IsNegotiable != nil {
		negotiable = *payload.IsNegotiable
	}

	listing := models.Listing{
		SellerID:     sellerID,
		CategoryID:   payload.CategoryID,
		Title:        strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Description:  strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		Price:        payload.Price,
		Condition:    payload.Condition,
		Images:       datatypes.JSONSlice[string](payload.Images),
		Status:       models.ListingStatusActive,
		IsNegotiable: negotiable,
		LocationLat:  payload.LocationLat,
		LocationLng:  payload.LocationLng,
		LocationAddr: strings.TrimSpace(s.sanitizer.Sanitize(payload.LocationAddr)),
	}
	if err := s.listings.Create(ctx, &listing); err != nil {
		return dto.ListingResponse{}, err
	}

	s.logger.Info().Uint("listing_id", listing.ID).Uint("seller_id", sellerID).Msg("listing created")

	created, err := s.listings.FindDetail(ctx, listing.ID)
	if err != nil {
		return dto.ListingResponse{}, err
	}

	return dto.NewListingResponse(created), nil
}

func (s *listingService) Update(ctx context.Context, sellerID, id uint, payload dto.ListingUpdateRequest) (dto.ListingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ListingResponse{}, err
	}

	listing, err := s.ownedListing(ctx, sellerID, id)
	if err != nil {
		return dto.ListingResponse{}, err
	}

	if payload.Title != nil {
		listing.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
	}
	if payload.Description != nil {
		listing.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}
	if payload.Price != nil {
		listing.Price = *payload.Price
	}
	if payload.Condition != nil {
		listing.Condition = *payload.Condition
	}
	if payload.Images != nil {
		listing.Images = datatypes.JSONSlice[string](payload.Images)
	}
	if payload.Status != nil {
		listing.Status = *payload.Status
	}

	if err := s.listings.Save(ctx, &listing); err != nil {
		return dto.ListingResponse{}, err
	}

	updated, err := s.listings.FindDetail(ctx, listing.ID)
	if err != nil {
		return dto.ListingResponse{}, err
	}

	return dto.NewListingResponse(updated), nil
}

// Delete is a soft delete: the row flips to DELETED so past offers and
// conversations keep a valid reference.
func (s *listingService) Delete(ctx context.Context, sellerID, id uint) error {
	listing, err := s.ownedListing(ctx, sellerID, id)
	if err != nil {
		return err
	}
	return s.listings.UpdateStatus(ctx, listing.ID, models.ListingStatusDeleted)
}

func (s *listingService) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	counted, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CategoryResponse, 0, len(counted))
	for _, entry := range counted {
		response := dto.NewCategoryResponse(entry.Category)
		response.ListingCount = entry.ListingCount
		out = append(out, response)
	}
	return out, nil
}

func (s *listingService) AddFavorite(ctx context.Context, userID, listingID uint) error {
	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	return s.favorites.Add(ctx, userID, listingID)
}

func (s *listingService) RemoveFavorite(ctx context.Context, userID, listingID uint) error {
	return s.favorites.Remove(ctx, userID, listingID)
}

func (s *listingService) ListFavorites(ctx context.Context, userID uint) ([]dto.ListingResponse, error) {
	favorites, err := s.favorites.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	listings := make([]models.Listing, 0, len(favorites))
	for _, favorite := range favorites {
		listings = append(listings, favorite.Listing)
	}
	return dto.NewListingResponseSlice(listings), nil
}

func (s *listingService) ownedListing(ctx context.Context, sellerID, id uint) (models.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Listing{}, ErrListingNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}
	if listing.SellerID != sellerID {
		return models.Listing{}, ErrNotListingOwner
	}
	// DELETED is terminal and SUSPENDED is an admin hold; neither may be
	// edited back to life by the owner.
	if listing.Status == models.ListingStatusDeleted || listing.Status == models.ListingStatusSuspended {
		return models.Listing{}, ErrListingNotFound
	}
	return listing, nil
}
