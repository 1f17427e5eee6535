package dto

import (
	"time"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// AdminStatsResponse is the dashboard snapshot.
type AdminStatsResponse struct {
	TotalUsers     int64         `json:"total_users"`
	TotalListings  int64         `json:"total_listings"`
	TotalMessages  int64         `json:"total_messages"`
	TotalReports   int64         `json:"total_reports"`
	ActiveListings int64         `json:"active_listings"`
	PendingReports int64         `json:"pending_reports"`
	MonthlyGrowth  MonthlyGrowth `json:"monthly_growth"`
}

// MonthlyGrowth compares the last 30 days against the 30 before.
type MonthlyGrowth struct {
	Users    int `json:"users"`
	Listings int `json:"listings"`
}

// AdminUserResponse is the moderation projection of an account.
type AdminUserResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Rating       float64   `json:"rating"`
	TotalRatings int       `json:"total_ratings"`
	IsAdmin      bool      `json:"is_admin"`
	IsSuspended  bool      `json:"is_suspended"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAdminUserResponse converts a user model to its moderation projection.
func NewAdminUserResponse(user models.User) AdminUserResponse {
	return AdminUserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Rating:       user.Rating,
		TotalRatings: user.TotalRatings,
		IsAdmin:      user.IsAdmin,
		IsSuspended:  user.IsSuspended,
		CreatedAt:    user.CreatedAt,
	}
}

// NewAdminUserResponseSlice converts a slice of users into DTOs.
func NewAdminUserResponseSlice(users []models.User) []AdminUserResponse {
	out := make([]AdminUserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewAdminUserResponse(user))
	}
	return out
}

// AdminUserPageResponse wraps a paginated user listing.
type AdminUserPageResponse struct {
	Users      []AdminUserResponse `json:"users"`
	TotalCount int64               `json:"totalCount"`
	HasMore    bool                `json:"hasMore"`
}

// AdminListingPageResponse wraps a paginated listing listing (any status).
type AdminListingPageResponse struct {
	Listings   []ListingResponse `json:"listings"`
	TotalCount int64             `json:"totalCount"`
	HasMore    bool              `json:"hasMore"`
}

// AdminReportPageResponse wraps the moderation report queue.
type AdminReportPageResponse struct {
	Reports    []ReportResponse `json:"reports"`
	TotalCount int64            `json:"totalCount"`
	HasMore    bool             `json:"hasMore"`
}

// AnnounceRequest broadcasts a system notification to every active user.
type AnnounceRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=255"`
	Message string `json:"message" validate:"required,min=3,max=2000"`
}

// AdminActionResponse acknowledges a moderation action.
type AdminActionResponse struct {
	Action   string `json:"action"`
	TargetID uint   `json:"target_id"`
}

// AdminAuditEntry is one row of the moderation audit log.
type AdminAuditEntry struct {
	ID        uint      `json:"id"`
	AdminID   uint      `json:"admin_id"`
	Type      string    `json:"type"`
	TargetID  uint      `json:"target_id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAdminAuditEntrySlice converts audit rows into DTOs.
func NewAdminAuditEntrySlice(actions []models.AdminAction) []AdminAuditEntry {
	out := make([]AdminAuditEntry, 0, len(actions))
	for _, action := range actions {
		out = append(out, AdminAuditEntry{
			ID:        action.ID,
			AdminID:   action.AdminID,
			Type:      action.Type,
			TargetID:  action.TargetID,
			Reason:    action.Reason,
			CreatedAt: action.CreatedAt,
		})
	}
	return out
}

// AdminAuditPageResponse wraps the paginated audit log.
type AdminAuditPageResponse struct {
	Actions    []AdminAuditEntry `json:"actions"`
	TotalCount int64             `json:"totalCount"`
	HasMore    bool              `json:"hasMore"`
}
