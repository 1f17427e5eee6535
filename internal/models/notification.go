package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types.
const (
	NotificationTypeMessage = "MESSAGE"
	NotificationTypeOffer   = "OFFER"
	NotificationTypeRating  = "RATING"
	NotificationTypeListing = "LISTING"
	NotificationTypeReport  = "REPORT"
	NotificationTypeSystem  = "SYSTEM"
)

// Notification is written exclusively by the notification service in reaction
// to domain events. Mutated only via the IsRead flip; unread rows are never
// removed by retention cleanup.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;index" json:"user_id"`
	Type      string            `gorm:"size:16;not null;index" json:"type"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Content   string            `gorm:"type:text;not null" json:"content"`
	IsRead    bool              `gorm:"not null;default:false;index" json:"is_read"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	ListingID *uint             `json:"listing_id,omitempty"`
	ThreadID  *uint             `json:"thread_id,omitempty"`
	OfferID   *uint             `json:"offer_id,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}
