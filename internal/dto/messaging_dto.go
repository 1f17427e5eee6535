package dto

import (
	"time"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// ThreadCreateRequest asks for the conversation about a listing with the given
// participant, creating it on first contact.
type ThreadCreateRequest struct {
	ListingID     uint `json:"listing_id" validate:"required"`
	ParticipantID uint `json:"participant_id" validate:"required"`
}

// MessageSendRequest appends a message to a thread.
type MessageSendRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// MessageResponse is the serialized message with its sender projection.
type MessageResponse struct {
	ID        uint        `json:"id"`
	ThreadID  uint        `json:"thread_id"`
	SenderID  uint        `json:"sender_id"`
	Content   string      `json:"content"`
	IsRead    bool        `json:"is_read"`
	Sender    UserSummary `json:"sender"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewMessageResponse converts a message with preloaded sender.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:        message.ID,
		ThreadID:  message.ThreadID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		IsRead:    message.IsRead,
		Sender:    NewUserSummary(message.Sender),
		CreatedAt: message.CreatedAt,
	}
}

// NewMessageResponseSlice converts a slice of messages into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

// ThreadResponse is the bare thread row.
type ThreadResponse struct {
	ID            uint      `json:"id"`
	ListingID     uint      `json:"listing_id"`
	BuyerID       uint      `json:"buyer_id"`
	SellerID      uint      `json:"seller_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewThreadResponse converts a thread model to a DTO.
func NewThreadResponse(thread models.MessageThread) ThreadResponse {
	return ThreadResponse{
		ID:            thread.ID,
		ListingID:     thread.ListingID,
		BuyerID:       thread.BuyerID,
		SellerID:      thread.SellerID,
		LastMessageAt: thread.LastMessageAt,
		CreatedAt:     thread.CreatedAt,
	}
}

// ThreadSummaryResponse annotates a thread for the inbox view.
type ThreadSummaryResponse struct {
	ThreadResponse
	LastMessage *MessageResponse `json:"last_message,omitempty"`
	UnreadCount int64            `json:"unread_count"`
}

// ThreadDetailResponse is the full conversation, messages ascending by
// creation time.
type ThreadDetailResponse struct {
	ThreadResponse
	Messages []MessageResponse `json:"messages"`
}

// ThreadListResponse wraps the inbox listing.
type ThreadListResponse struct {
	Threads []ThreadSummaryResponse `json:"threads"`
}
