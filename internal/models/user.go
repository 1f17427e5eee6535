package models

import "time"

// User represents a marketplace account. Users are never hard-deleted;
// moderation toggles the suspension flag instead.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Image        string    `gorm:"size:512" json:"image,omitempty"`
	Bio          string    `gorm:"type:text" json:"bio,omitempty"`
	Phone        string    `gorm:"size:32" json:"phone,omitempty"`
	LocationLat  float64   `json:"location_lat,omitempty"`
	LocationLng  float64   `json:"location_lng,omitempty"`
	LocationAddr string    `gorm:"size:255" json:"location_addr,omitempty"`
	Rating       float64   `gorm:"not null;default:0" json:"rating"`
	TotalRatings int       `gorm:"not null;default:0" json:"total_ratings"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	IsSuspended  bool      `gorm:"not null;default:false" json:"is_suspended"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
