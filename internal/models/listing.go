package models

import (
	"time"

	"gorm.io/datatypes"
)

// Listing condition values.
const (
	ConditionNew     = "NEW"
	ConditionLikeNew = "LIKE_NEW"
	ConditionGood    = "GOOD"
	ConditionFair    = "FAIR"
	ConditionPoor    = "POOR"
)

// Listing status values. Transitions are one-way toward DELETED and SUSPENDED;
// only ACTIVE and INACTIVE toggle back and forth.
const (
	ListingStatusActive    = "ACTIVE"
	ListingStatusSold      = "SOLD"
	ListingStatusInactive  = "INACTIVE"
	ListingStatusSuspended = "SUSPENDED"
	ListingStatusDeleted   = "DELETED"
)

// Listing is an item offered for sale by a single seller. Price is stored in
// integer cents.
type Listing struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Title        string                      `gorm:"size:255;not null" json:"title"`
	Description  string                      `gorm:"type:text;not null" json:"description"`
	Price        int64                       `gorm:"not null" json:"price"`
	Condition    string                      `gorm:"size:16;not null" json:"condition"`
	Images       datatypes.JSONSlice[string] `gorm:"type:json" json:"images"`
	Status       string                      `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`
	Views        int64                       `gorm:"not null;default:0" json:"views"`
	IsFeatured   bool                        `gorm:"not null;default:false" json:"is_featured"`
	IsNegotiable bool                        `gorm:"not null;default:true" json:"is_negotiable"`
	LocationLat  float64                     `json:"location_lat"`
	LocationLng  float64                     `json:"location_lng"`
	LocationAddr string                      `gorm:"size:255" json:"location_addr"`
	SellerID     uint                        `gorm:"not null;index" json:"seller_id"`
	Seller       User                        `gorm:"foreignKey:SellerID" json:"-"`
	CategoryID   uint                        `gorm:"not null;index" json:"category_id"`
	Category     Category                    `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// ValidConditions lists the accepted listing conditions.
func ValidConditions() []string {
	return []string{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}
}
