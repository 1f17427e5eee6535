package models

import (
	"fmt"
	"time"
)

// Offer status values.
const (
	OfferStatusPending   = "PENDING"
	OfferStatusAccepted  = "ACCEPTED"
	OfferStatusDeclined  = "DECLINED"
	OfferStatusExpired   = "EXPIRED"
	OfferStatusWithdrawn = "WITHDRAWN"
)

// Offer is a buyer's bid on a listing. At most one PENDING offer may exist per
// (listing, buyer) pair: PendingKey holds "listingID:buyerID" while the offer
// is PENDING and is cleared on every status transition, so the unique index
// turns a concurrent second pending offer into a duplicate-key error.
// Amount is integer cents.
type Offer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ListingID  uint      `gorm:"not null;index" json:"listing_id"`
	Listing    Listing   `gorm:"foreignKey:ListingID" json:"-"`
	BuyerID    uint      `gorm:"not null;index" json:"buyer_id"`
	Buyer      User      `gorm:"foreignKey:BuyerID" json:"-"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Message    string    `gorm:"type:text" json:"message,omitempty"`
	Status     string    `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	PendingKey *string   `gorm:"size:42;uniqueIndex" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PendingOfferKey builds the value held in Offer.PendingKey while the offer
// is PENDING.
func PendingOfferKey(listingID, buyerID uint) string {
	return fmt.Sprintf("%d:%d", listingID, buyerID)
}
