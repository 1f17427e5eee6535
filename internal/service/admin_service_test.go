package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/auth"
	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

type adminFixture struct {
	svc      AdminService
	db       *gorm.DB
	sessions *auth.SessionStore
	admin    models.User
	target   models.User
}

func setupAdminService(t *testing.T) adminFixture {
	t.Helper()
	db := setupServiceDB(t)
	_, redisClient := setupTestRedis(t)

	sessions := auth.NewSessionStore(redisClient, time.Hour)
	svc := NewAdminService(
		repository.NewUserRepository(db),
		repository.NewListingRepository(db),
		repository.NewReportRepository(db),
		repository.NewModerationRepository(db),
		repository.NewStatsRepository(db),
		sessions,
		newTestNotificationService(t, db, redisClient),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	admin := models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", IsAdmin: true}
	target := models.User{Name: "Target", Email: "target@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&target).Error)

	return adminFixture{svc: svc, db: db, sessions: sessions, admin: admin, target: target}
}

func TestAdminServiceSuspendRevokesSessions(t *testing.T) {
	f := setupAdminService(t)
	ctx := context.Background()

	sessionID, err := f.sessions.Create(ctx, f.target.ID)
	require.NoError(t, err)

	user, err := f.svc.UserAction(ctx, f.admin.ID, f.target.ID, "suspend", "spamming listings")
	require.NoError(t, err)
	require.True(t, user.IsSuspended)

	_, err = f.sessions.Validate(ctx, sessionID)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	var audit models.AdminAction
	require.NoError(t, f.db.First(&audit).Error)
	require.Equal(t, models.AdminActionSuspendUser, audit.Type)
	require.Equal(t, f.target.ID, audit.TargetID)
}

func TestAdminServiceUserActionGuards(t *testing.T) {
	f := setupAdminService(t)
	ctx := context.Background()

	_, err := f.svc.UserAction(ctx, f.admin.ID, f.admin.ID, "suspend", "")
	require.ErrorIs(t, err, ErrSelfModeration)

	_, err = f.svc.UserAction(ctx, f.admin.ID, f.target.ID, "obliterate", "")
	require.ErrorIs(t, err, ErrUnknownUserAction)

	_, err = f.svc.UserAction(ctx, f.admin.ID, 9999, "suspend", "")
	require.ErrorIs(t, err, ErrModerationTargetNotFound)

	promoted, err := f.svc.UserAction(ctx, f.admin.ID, f.target.ID, "promote", "")
	require.NoError(t, err)
	require.True(t, promoted.IsAdmin)
}

func TestAdminServiceListingActions(t *testing.T) {
	f := setupAdminService(t)
	ctx := context.Background()

	category := models.Category{Name: "Misc", Slug: "misc"}
	require.NoError(t, f.db.Create(&category).Error)
	listing := models.Listing{Title: "Junk", Description: "a listing about to be removed", Price: 100, Condition: models.ConditionPoor, Status: models.ListingStatusActive, SellerID: f.target.ID, CategoryID: category.ID}
	require.NoError(t, f.db.Create(&listing).Error)

	featured, err := f.svc.ListingAction(ctx, f.admin.ID, listing.ID, "feature", "")
	require.NoError(t, err)
	require.True(t, featured.IsFeatured)

	removed, err := f.svc.ListingAction(ctx, f.admin.ID, listing.ID, "delete", "prohibited item")
	require.NoError(t, err)
	require.Equal(t, models.ListingStatusInactive, removed.Status)

	var audits int64
	require.NoError(t, f.db.Model(&models.AdminAction{}).Count(&audits).Error)
	require.Equal(t, int64(2), audits)
}

func TestAdminServiceListActionsPagesAuditLog(t *testing.T) {
	f := setupAdminService(t)
	ctx := context.Background()

	_, err := f.svc.UserAction(ctx, f.admin.ID, f.target.ID, "suspend", "spamming listings")
	require.NoError(t, err)
	_, err = f.svc.UserAction(ctx, f.admin.ID, f.target.ID, "unsuspend", "appeal accepted")
	require.NoError(t, err)

	audit, err := f.svc.ListActions(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, audit.Actions, 2)
	require.Equal(t, int64(2), audit.TotalCount)
	require.False(t, audit.HasMore)

	// Newest first.
	require.Equal(t, models.AdminActionUnsuspendUser, audit.Actions[0].Type)
	require.Equal(t, "appeal accepted", audit.Actions[0].Reason)
	require.Equal(t, f.target.ID, audit.Actions[0].TargetID)

	page, err := f.svc.ListActions(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Actions, 1)
	require.True(t, page.HasMore)
}

func TestAdminServiceResolveReport(t *testing.T) {
	f := setupAdminService(t)
	ctx := context.Background()

	report := models.Report{ReporterID: f.target.ID, TargetType: models.ReportTargetUser, TargetID: f.admin.ID, Reason: "rude", Status: models.ReportStatusPending}
	require.NoError(t, f.db.Create(&report).Error)

	resolved, err := f.svc.ResolveReport(ctx, f.admin.ID, report.ID, false)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusResolved, resolved.Status)

	dismissedReport := models.Report{ReporterID: f.target.ID, TargetType: models.ReportTargetUser, TargetID: f.admin.ID, Reason: "rude again", Status: models.ReportStatusPending}
	require.NoError(t, f.db.Create(&dismissedReport).Error)

	dismissed, err := f.svc.ResolveReport(ctx, f.admin.ID, dismissedReport.ID, true)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusDismissed, dismissed.Status)

	_, err = f.svc.ResolveReport(ctx, f.admin.ID, 9999, false)
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestAdminServiceAnnounce(t *testing.T) {
	f := setupAdminService(t)

	result, err := f.svc.Announce(context.Background(), f.admin.ID, dto.AnnounceRequest{Title: "Planned maintenance", Message: "Offline Sunday 02:00-03:00 UTC."})
	require.NoError(t, err)
	require.Equal(t, 2, result.Delivered, "admin and target both receive the broadcast")

	var audit models.AdminAction
	require.NoError(t, f.db.Where("type = ?", models.AdminActionAnnounce).First(&audit).Error)
	require.Equal(t, "Planned maintenance", audit.Reason)
}

func TestAdminServiceStats(t *testing.T) {
	f := setupAdminService(t)
	ctx := context.Background()

	category := models.Category{Name: "Misc", Slug: "misc"}
	require.NoError(t, f.db.Create(&category).Error)
	require.NoError(t, f.db.Create(&models.Listing{Title: "Active", Description: "an active listing right here", Price: 100, Condition: models.ConditionGood, Status: models.ListingStatusActive, SellerID: f.target.ID, CategoryID: category.ID}).Error)
	require.NoError(t, f.db.Create(&models.Report{ReporterID: f.target.ID, TargetType: models.ReportTargetUser, TargetID: f.admin.ID, Reason: "x", Status: models.ReportStatusPending}).Error)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalUsers)
	require.Equal(t, int64(1), stats.TotalListings)
	require.Equal(t, int64(1), stats.ActiveListings)
	require.Equal(t, int64(1), stats.PendingReports)
	require.Equal(t, 2, stats.MonthlyGrowth.Users, "both users joined inside the window")
}
