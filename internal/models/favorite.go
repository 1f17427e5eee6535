package models

import "time"

// Favorite is the persisted user-to-listing bookmark join table.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_listing" json:"user_id"`
	ListingID uint      `gorm:"not null;uniqueIndex:idx_favorite_user_listing" json:"listing_id"`
	Listing   Listing   `gorm:"foreignKey:ListingID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
