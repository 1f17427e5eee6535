package models

import "time"

// Rating is a 1-5 review left once per transaction context. The receiver's
// aggregate rating is recomputed whenever a row is added.
type Rating struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GiverID    uint      `gorm:"not null;index;uniqueIndex:idx_rating_giver_listing" json:"giver_id"`
	Giver      User      `gorm:"foreignKey:GiverID" json:"-"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	ListingID  *uint     `gorm:"uniqueIndex:idx_rating_giver_listing" json:"listing_id,omitempty"`
	Score      int       `gorm:"not null" json:"score"`
	Comment    string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
