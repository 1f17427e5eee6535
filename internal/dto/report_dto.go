package dto

import (
	"time"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// ReportCreateRequest flags a listing or a user for moderation.
type ReportCreateRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=LISTING USER"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,min=3,max=2000"`
}

// ReportResponse is the serialized report.
type ReportResponse struct {
	ID         uint      `json:"id"`
	ReporterID uint      `json:"reporter_id"`
	TargetType string    `json:"target_type"`
	TargetID   uint      `json:"target_id"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewReportResponse converts a report model to a DTO.
func NewReportResponse(report models.Report) ReportResponse {
	return ReportResponse{
		ID:         report.ID,
		ReporterID: report.ReporterID,
		TargetType: report.TargetType,
		TargetID:   report.TargetID,
		Reason:     report.Reason,
		Status:     report.Status,
		CreatedAt:  report.CreatedAt,
	}
}

// NewReportResponseSlice converts a slice of reports into DTOs.
func NewReportResponseSlice(reports []models.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, NewReportResponse(report))
	}
	return out
}
