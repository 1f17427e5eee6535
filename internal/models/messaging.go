package models

import "time"

// MessageThread is a conversation between a buyer and a seller about one
// listing. The composite unique index lets concurrent get-or-create calls fall
// back to fetching the winner's row on a duplicate-key error.
type MessageThread struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ListingID     uint      `gorm:"not null;uniqueIndex:idx_thread_listing_pair" json:"listing_id"`
	Listing       Listing   `gorm:"foreignKey:ListingID" json:"-"`
	BuyerID       uint      `gorm:"not null;uniqueIndex:idx_thread_listing_pair" json:"buyer_id"`
	SellerID      uint      `gorm:"not null;uniqueIndex:idx_thread_listing_pair" json:"seller_id"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Message is immutable once created except for the IsRead flag, which only
// flips false to true.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uint      `gorm:"not null;index" json:"thread_id"`
	SenderID  uint      `gorm:"not null;index" json:"sender_id"`
	Sender    User      `gorm:"foreignKey:SenderID" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
