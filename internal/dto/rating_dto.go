package dto

import (
	"time"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// RatingCreateRequest is the payload to review another user.
type RatingCreateRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	ListingID  *uint  `json:"listing_id"`
	Score      int    `json:"score" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"omitempty,max=2000"`
}

// RatingResponse is the serialized rating with the giver projection.
type RatingResponse struct {
	ID         uint        `json:"id"`
	GiverID    uint        `json:"giver_id"`
	ReceiverID uint        `json:"receiver_id"`
	ListingID  *uint       `json:"listing_id,omitempty"`
	Score      int         `json:"score"`
	Comment    string      `json:"comment,omitempty"`
	Giver      UserSummary `json:"giver"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewRatingResponse converts a rating with preloaded giver.
func NewRatingResponse(rating models.Rating) RatingResponse {
	return RatingResponse{
		ID:         rating.ID,
		GiverID:    rating.GiverID,
		ReceiverID: rating.ReceiverID,
		ListingID:  rating.ListingID,
		Score:      rating.Score,
		Comment:    rating.Comment,
		Giver:      NewUserSummary(rating.Giver),
		CreatedAt:  rating.CreatedAt,
	}
}

// NewRatingResponseSlice converts a slice of ratings into DTOs.
func NewRatingResponseSlice(ratings []models.Rating) []RatingResponse {
	out := make([]RatingResponse, 0, len(ratings))
	for _, rating := range ratings {
		out = append(out, NewRatingResponse(rating))
	}
	return out
}
