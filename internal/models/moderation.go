package models

import "time"

// Report target types and statuses.
const (
	ReportTargetListing = "LISTING"
	ReportTargetUser    = "USER"

	ReportStatusPending   = "PENDING"
	ReportStatusResolved  = "RESOLVED"
	ReportStatusDismissed = "DISMISSED"
)

// Admin action types recorded in the audit log.
const (
	AdminActionSuspendUser      = "SUSPEND_USER"
	AdminActionUnsuspendUser    = "UNSUSPEND_USER"
	AdminActionPromoteAdmin     = "PROMOTE_ADMIN"
	AdminActionDemoteAdmin      = "DEMOTE_ADMIN"
	AdminActionDeleteListing    = "DELETE_LISTING"
	AdminActionSuspendListing   = "SUSPEND_LISTING"
	AdminActionFeatureListing   = "FEATURE_LISTING"
	AdminActionUnfeatureListing = "UNFEATURE_LISTING"
	AdminActionAnnounce         = "ANNOUNCE"
	AdminActionResolveReport    = "RESOLVE_REPORT"
)

// Report is a user-submitted flag against a listing or another user.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReporterID uint      `gorm:"not null;index" json:"reporter_id"`
	TargetType string    `gorm:"size:16;not null" json:"target_type"`
	TargetID   uint      `gorm:"not null;index" json:"target_id"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`
	Status     string    `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AdminAction is an append-only audit row. Every moderation endpoint writes
// one in the same transaction as the mutation it records.
type AdminAction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdminID   uint      `gorm:"not null;index" json:"admin_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	TargetID  uint      `gorm:"not null" json:"target_id"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
