package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/auth"
	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

// Moderation errors mapped to HTTP codes by the handler layer.
var (
	ErrModerationTargetNotFound = errors.New("target not found")
	ErrUnknownUserAction        = errors.New("unknown user action")
	ErrUnknownListingAction     = errors.New("unknown listing action")
	ErrReportNotFound           = errors.New("report not found")
	ErrSelfModeration           = errors.New("cannot moderate your own account")
)

// AdminService backs the moderation dashboard.
type AdminService interface {
	Stats(ctx context.Context) (dto.AdminStatsResponse, error)
	ListUsers(ctx context.Context, filter repository.AdminUserFilter) (dto.AdminUserPageResponse, error)
	ListListings(ctx context.Context, filter repository.ListingFilter) (dto.AdminListingPageResponse, error)
	UserAction(ctx context.Context, adminID, userID uint, action, reason string) (dto.AdminUserResponse, error)
	ListingAction(ctx context.Context, adminID, listingID uint, action, reason string) (dto.ListingResponse, error)
	ListActions(ctx context.Context, page, pageSize int) (dto.AdminAuditPageResponse, error)
	ListReports(ctx context.Context, filter repository.ReportFilter) (dto.AdminReportPageResponse, error)
	ResolveReport(ctx context.Context, adminID, reportID uint, dismiss bool) (dto.ReportResponse, error)
	Announce(ctx context.Context, adminID uint, payload dto.AnnounceRequest) (FanoutResult, error)
}

type adminService struct {
	users         repository.UserRepository
	listings      repository.ListingRepository
	reports       repository.ReportRepository
	moderation    repository.ModerationRepository
	stats         repository.StatsRepository
	sessions      *auth.SessionStore
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewAdminService constructs the moderation service.
func NewAdminService(
	users repository.UserRepository,
	listings repository.ListingRepository,
	reports repository.ReportRepository,
	moderation repository.ModerationRepository,
	stats repository.StatsRepository,
	sessions *auth.SessionStore,
	notifications NotificationService,
	validate *validator.Validate,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		users:         users,
		listings:      listings,
		reports:       reports,
		moderation:    moderation,
		stats:         stats,
		sessions:      sessions,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) Stats(ctx context.Context) (dto.AdminStatsResponse, error) {
	raw, err := s.stats.Collect(ctx, time.Now().UTC())
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}

	return dto.AdminStatsResponse{
		TotalUsers:     raw.TotalUsers,
		TotalListings:  raw.TotalListings,
		TotalMessages:  raw.TotalMessages,
		TotalReports:   raw.TotalReports,
		ActiveListings: raw.ActiveListings,
		PendingReports: raw.PendingReports,
		MonthlyGrowth: dto.MonthlyGrowth{
			Users:    int(raw.UsersLastMonth - raw.UsersMonthBefore),
			Listings: int(raw.ListingsLastMonth - raw.ListingsMonthBefore),
		},
	}, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter repository.AdminUserFilter) (dto.AdminUserPageResponse, error) {
	users, total, err := s.users.ListAdmin(ctx, filter)
	if err != nil {
		return dto.AdminUserPageResponse{}, err
	}

	return dto.AdminUserPageResponse{
		Users:      dto.NewAdminUserResponseSlice(users),
		TotalCount: total,
		HasMore:    hasMore(filter.Page, filter.PageSize, total),
	}, nil
}

// ListListings is the moderation catalog view; unlike public search it spans
// every status unless one is asked for.
func (s *adminService) ListListings(ctx context.Context, filter repository.ListingFilter) (dto.AdminListingPageResponse, error) {
	if filter.Status == "" {
		filter.Status = "ANY"
	}

	listings, total, err := s.listings.Search(ctx, filter)
	if err != nil {
		return dto.AdminListingPageResponse{}, err
	}

	return dto.AdminListingPageResponse{
		Listings:   dto.NewListingResponseSlice(listings),
		TotalCount: total,
		HasMore:    hasMore(filter.Page, filter.PageSize, total),
	}, nil
}

func (s *adminService) UserAction(ctx context.Context, adminID, userID uint, action, reason string) (dto.AdminUserResponse, error) {
	if userID == adminID {
		return dto.AdminUserResponse{}, ErrSelfModeration
	}

	var (
		actionType string
		updates    map[string]interface{}
	)
	switch action {
	case "suspend":
		actionType = models.AdminActionSuspendUser
		updates = map[string]interface{}{"is_suspended": true}
	case "unsuspend":
		actionType = models.AdminActionUnsuspendUser
		updates = map[string]interface{}{"is_suspended": false}
	case "promote":
		actionType = models.AdminActionPromoteAdmin
		updates = map[string]interface{}{"is_admin": true}
	case "demote":
		actionType = models.AdminActionDemoteAdmin
		updates = map[string]interface{}{"is_admin": false}
	default:
		return dto.AdminUserResponse{}, ErrUnknownUserAction
	}

	audit := models.AdminAction{
		AdminID:  adminID,
		Type:     actionType,
		TargetID: userID,
		Reason:   strings.TrimSpace(s.sanitizer.Sanitize(reason)),
	}
	user, err := s.moderation.ApplyUserAction(ctx, audit, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AdminUserResponse{}, ErrModerationTargetNotFound
	}
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	// A suspended account loses every live session immediately.
	if actionType == models.AdminActionSuspendUser {
		if err := s.sessions.RevokeAll(ctx, userID); err != nil {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to revoke sessions of suspended user")
		}
	}

	s.logger.Info().
		Uint("admin_id", adminID).
		Uint("user_id", userID).
		Str("action", actionType).
		Msg("user moderation action applied")

	return dto.NewAdminUserResponse(user), nil
}

func (s *adminService) ListingAction(ctx context.Context, adminID, listingID uint, action, reason string) (dto.ListingResponse, error) {
	var (
		actionType string
		updates    map[string]interface{}
	)
	switch action {
	// Admin delete parks the listing as INACTIVE; only the owner's own delete
	// reaches the terminal DELETED status.
	case "delete":
		actionType = models.AdminActionDeleteListing
		updates = map[string]interface{}{"status": models.ListingStatusInactive}
	case "suspend":
		actionType = models.AdminActionSuspendListing
		updates = map[string]interface{}{"status": models.ListingStatusSuspended}
	case "feature":
		actionType = models.AdminActionFeatureListing
		updates = map[string]interface{}{"is_featured": true}
	case "unfeature":
		actionType = models.AdminActionUnfeatureListing
		updates = map[string]interface{}{"is_featured": false}
	default:
		return dto.ListingResponse{}, ErrUnknownListingAction
	}

	audit := models.AdminAction{
		AdminID:  adminID,
		Type:     actionType,
		TargetID: listingID,
		Reason:   strings.TrimSpace(s.sanitizer.Sanitize(reason)),
	}
	listing, err := s.moderation.ApplyListingAction(ctx, audit, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ListingResponse{}, ErrModerationTargetNotFound
	}
	if err != nil {
		return dto.ListingResponse{}, err
	}

	s.logger.Info().
		Uint("admin_id", adminID).
		Uint("listing_id", listingID).
		Str("action", actionType).
		Msg("listing moderation action applied")

	detail, err := s.listings.FindDetail(ctx, listing.ID)
	if err != nil {
		return dto.ListingResponse{}, err
	}

	return dto.NewListingResponse(detail), nil
}

// ListActions pages through the append-only moderation audit log, newest
// first.
func (s *adminService) ListActions(ctx context.Context, page, pageSize int) (dto.AdminAuditPageResponse, error) {
	actions, total, err := s.moderation.ListActions(ctx, page, pageSize)
	if err != nil {
		return dto.AdminAuditPageResponse{}, err
	}

	return dto.AdminAuditPageResponse{
		Actions:    dto.NewAdminAuditEntrySlice(actions),
		TotalCount: total,
		HasMore:    hasMore(page, pageSize, total),
	}, nil
}

func (s *adminService) ListReports(ctx context.Context, filter repository.ReportFilter) (dto.AdminReportPageResponse, error) {
	reports, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return dto.AdminReportPageResponse{}, err
	}

	return dto.AdminReportPageResponse{
		Reports:    dto.NewReportResponseSlice(reports),
		TotalCount: total,
		HasMore:    hasMore(filter.Page, filter.PageSize, total),
	}, nil
}

func (s *adminService) ResolveReport(ctx context.Context, adminID, reportID uint, dismiss bool) (dto.ReportResponse, error) {
	status := models.ReportStatusResolved
	if dismiss {
		status = models.ReportStatusDismissed
	}

	audit := models.AdminAction{
		AdminID:  adminID,
		Type:     models.AdminActionResolveReport,
		TargetID: reportID,
		Reason:   status,
	}
	report, err := s.moderation.ApplyReportAction(ctx, audit, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ReportResponse{}, ErrReportNotFound
	}
	if err != nil {
		return dto.ReportResponse{}, err
	}

	return dto.NewReportResponse(report), nil
}

// Announce broadcasts to every active user. Partial fan-out failure is
// reported, never fatal.
func (s *adminService) Announce(ctx context.Context, adminID uint, payload dto.AnnounceRequest) (FanoutResult, error) {
	if err := s.validator.Struct(payload); err != nil {
		return FanoutResult{}, err
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	message := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))

	audit := models.AdminAction{AdminID: adminID, Type: models.AdminActionAnnounce, TargetID: adminID, Reason: title}
	if err := s.moderation.RecordAction(ctx, audit); err != nil {
		return FanoutResult{}, err
	}

	result := s.notifications.NotifyAllUsers(ctx, title, message)

	s.logger.Info().
		Uint("admin_id", adminID).
		Int("delivered", result.Delivered).
		Int("failed", result.Failed).
		Msg("announcement sent")

	return result, nil
}

// hasMore clamps page and pageSize the same way the repositories do, so the
// math matches the window that was actually fetched.
func hasMore(page, pageSize int, total int64) bool {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return int64(page*pageSize) < total
}
