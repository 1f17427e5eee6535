package dto

import (
	"time"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// OfferCreateRequest is the payload to bid on a listing. Amount is integer
// cents.
type OfferCreateRequest struct {
	ListingID uint   `json:"listing_id" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Message   string `json:"message" validate:"omitempty,max=2000"`
}

// OfferListingSummary is the listing projection embedded in offer responses.
type OfferListingSummary struct {
	ID       uint     `json:"id"`
	Title    string   `json:"title"`
	Price    int64    `json:"price"`
	Images   []string `json:"images"`
	SellerID uint     `json:"seller_id"`
	Status   string   `json:"status"`
}

// OfferResponse is the serialized offer with buyer and listing joined.
type OfferResponse struct {
	ID        uint                `json:"id"`
	ListingID uint                `json:"listing_id"`
	BuyerID   uint                `json:"buyer_id"`
	Amount    int64               `json:"amount"`
	Message   string              `json:"message,omitempty"`
	Status    string              `json:"status"`
	Buyer     UserSummary         `json:"buyer"`
	Listing   OfferListingSummary `json:"listing"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewOfferResponse converts an offer with preloaded buyer and listing.
func NewOfferResponse(offer models.Offer) OfferResponse {
	return OfferResponse{
		ID:        offer.ID,
		ListingID: offer.ListingID,
		BuyerID:   offer.BuyerID,
		Amount:    offer.Amount,
		Message:   offer.Message,
		Status:    offer.Status,
		Buyer:     NewUserSummary(offer.Buyer),
		Listing: OfferListingSummary{
			ID:       offer.Listing.ID,
			Title:    offer.Listing.Title,
			Price:    offer.Listing.Price,
			Images:   []string(offer.Listing.Images),
			SellerID: offer.Listing.SellerID,
			Status:   offer.Listing.Status,
		},
		CreatedAt: offer.CreatedAt,
	}
}

// NewOfferResponseSlice converts a slice of offers into DTOs.
func NewOfferResponseSlice(offers []models.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, offer := range offers {
		out = append(out, NewOfferResponse(offer))
	}
	return out
}
