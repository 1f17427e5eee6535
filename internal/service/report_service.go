package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

// ErrReportTargetNotFound rejects reports against entities that do not exist.
var ErrReportTargetNotFound = errors.New("report target not found")

// ReportService accepts abuse reports and queues them for moderation.
type ReportService interface {
	Create(ctx context.Context, reporterID uint, payload dto.ReportCreateRequest) (dto.ReportResponse, error)
}

type reportService struct {
	reports       repository.ReportRepository
	users         repository.UserRepository
	listings      repository.ListingRepository
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewReportService constructs a report service.
func NewReportService(reports repository.ReportRepository, users repository.UserRepository, listings repository.ListingRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) ReportService {
	return &reportService{
		reports:       reports,
		users:         users,
		listings:      listings,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) Create(ctx context.Context, reporterID uint, payload dto.ReportCreateRequest) (dto.ReportResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReportResponse{}, err
	}

	var err error
	switch payload.TargetType {
	case models.ReportTargetUser:
		_, err = s.users.FindByID(ctx, payload.TargetID)
	case models.ReportTargetListing:
		_, err = s.listings.FindByID(ctx, payload.TargetID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ReportResponse{}, ErrReportTargetNotFound
	}
	if err != nil {
		return dto.ReportResponse{}, err
	}

	report := models.Report{
		ReporterID: reporterID,
		TargetType: payload.TargetType,
		TargetID:   payload.TargetID,
		Reason:     strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason)),
		Status:     models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, &report); err != nil {
		return dto.ReportResponse{}, err
	}

	s.logger.Info().Uint("report_id", report.ID).Str("target_type", report.TargetType).Msg("report filed")

	// Admin fan-out is best effort; partial failures are already logged and
	// counted inside the notification service.
	s.notifications.NotifyAdminsNewReport(ctx, report.TargetType, report.Reason)

	return dto.NewReportResponse(report), nil
}
