package dto

import (
	"time"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// RegisterRequest is the payload to create an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the payload to open a session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public projection of an account.
type UserResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Image        string    `json:"image,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Rating       float64   `json:"rating"`
	TotalRatings int       `json:"total_ratings"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUserResponse converts a user model to its public projection.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Image:        user.Image,
		Bio:          user.Bio,
		Rating:       user.Rating,
		TotalRatings: user.TotalRatings,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
	}
}

// UserSummary is the compact seller/buyer projection embedded in other
// responses.
type UserSummary struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Image  string  `json:"image,omitempty"`
	Rating float64 `json:"rating"`
}

// NewUserSummary converts a user model to its compact projection.
func NewUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:     user.ID,
		Name:   user.Name,
		Image:  user.Image,
		Rating: user.Rating,
	}
}
