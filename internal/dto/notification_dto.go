package dto

import (
	"time"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        uint                   `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	IsRead    bool                   `json:"is_read"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ListingID *uint                  `json:"listing_id,omitempty"`
	ThreadID  *uint                  `json:"thread_id,omitempty"`
	OfferID   *uint                  `json:"offer_id,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotificationResponse converts a notification model to a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		Type:      model.Type,
		Title:     model.Title,
		Content:   model.Content,
		IsRead:    model.IsRead,
		Metadata:  model.Metadata,
		ListingID: model.ListingID,
		ThreadID:  model.ThreadID,
		OfferID:   model.OfferID,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// NotificationPageResponse is the inbox envelope.
type NotificationPageResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
	HasMore       bool                   `json:"hasMore"`
}
