package dto

import (
	"time"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// ListingCreateRequest mirrors the listing form. Price is integer cents.
type ListingCreateRequest struct {
	Title        string   `json:"title" validate:"required,min=3,max=255"`
	Description  string   `json:"description" validate:"required,min=10"`
	Price        int64    `json:"price" validate:"required,gt=0"`
	Condition    string   `json:"condition" validate:"required,oneof=NEW LIKE_NEW GOOD FAIR POOR"`
	CategoryID   uint     `json:"category_id" validate:"required"`
	Images       []string `json:"images" validate:"required,min=1,max=5,dive,url"`
	LocationLat  float64  `json:"location_lat"`
	LocationLng  float64  `json:"location_lng"`
	LocationAddr string   `json:"location_addr" validate:"max=255"`
	IsNegotiable *bool    `json:"is_negotiable"`
}

// ListingUpdateRequest carries partial updates applied by the owner. Status
// may only move between ACTIVE, INACTIVE and SOLD here; terminal states are
// reserved for moderation.
type ListingUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description" validate:"omitempty,min=10"`
	Price       *int64   `json:"price" validate:"omitempty,gt=0"`
	Condition   *string  `json:"condition" validate:"omitempty,oneof=NEW LIKE_NEW GOOD FAIR POOR"`
	Images      []string `json:"images" validate:"omitempty,min=1,max=5,dive,url"`
	Status      *string  `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SOLD"`
}

// CategoryResponse is the serialized category.
type CategoryResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ListingCount int64  `json:"listing_count,omitempty"`
}

// NewCategoryResponse converts a category model to a DTO.
func NewCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{
		ID:   category.ID,
		Name: category.Name,
		Slug: category.Slug,
	}
}

// ListingResponse is the listing summary returned by search and detail.
type ListingResponse struct {
	ID           uint             `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Price        int64            `json:"price"`
	Condition    string           `json:"condition"`
	Images       []string         `json:"images"`
	Status       string           `json:"status"`
	Views        int64            `json:"views"`
	IsFeatured   bool             `json:"is_featured"`
	IsNegotiable bool             `json:"is_negotiable"`
	LocationAddr string           `json:"location_addr,omitempty"`
	Seller       UserSummary      `json:"seller"`
	Category     CategoryResponse `json:"category"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewListingResponse converts a listing with preloaded seller and category.
func NewListingResponse(listing models.Listing) ListingResponse {
	return ListingResponse{
		ID:           listing.ID,
		Title:        listing.Title,
		Description:  listing.Description,
		Price:        listing.Price,
		Condition:    listing.Condition,
		Images:       []string(listing.Images),
		Status:       listing.Status,
		Views:        listing.Views,
		IsFeatured:   listing.IsFeatured,
		IsNegotiable: listing.IsNegotiable,
		LocationAddr: listing.LocationAddr,
		Seller:       NewUserSummary(listing.Seller),
		Category:     NewCategoryResponse(listing.Category),
		CreatedAt:    listing.CreatedAt,
	}
}

// NewListingResponseSlice converts a slice of listings into DTOs.
func NewListingResponseSlice(listings []models.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, listing := range listings {
		out = append(out, NewListingResponse(listing))
	}
	return out
}

// ListingPageResponse is the paginated search result envelope.
type ListingPageResponse struct {
	Listings   []ListingResponse `json:"listings"`
	TotalCount int64             `json:"totalCount"`
	HasMore    bool              `json:"hasMore"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}
