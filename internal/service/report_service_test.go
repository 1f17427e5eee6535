package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

func setupReportService(t *testing.T) (ReportService, *gorm.DB, models.User) {
	t.Helper()
	db := setupServiceDB(t)
	_, redisClient := setupTestRedis(t)

	svc := NewReportService(
		repository.NewReportRepository(db),
		repository.NewUserRepository(db),
		repository.NewListingRepository(db),
		newTestNotificationService(t, db, redisClient),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	reporter := models.User{Name: "Rita", Email: "rita@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&reporter).Error)

	return svc, db, reporter
}

func TestReportServiceCreateUserReport(t *testing.T) {
	svc, db, reporter := setupReportService(t)
	ctx := context.Background()

	offender := models.User{Name: "Oscar", Email: "oscar@example.com", PasswordHash: "x"}
	admin := models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", IsAdmin: true}
	require.NoError(t, db.Create(&offender).Error)
	require.NoError(t, db.Create(&admin).Error)

	report, err := svc.Create(ctx, reporter.ID, dto.ReportCreateRequest{
		TargetType: models.ReportTargetUser,
		TargetID:   offender.ID,
		Reason:     "keeps <i>relisting</i> the same scam bike",
	})
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusPending, report.Status)
	require.Equal(t, "keeps relisting the same scam bike", report.Reason)

	var adminNotifications int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", admin.ID).Count(&adminNotifications).Error)
	require.Equal(t, int64(1), adminNotifications, "every admin hears about new reports")
}

func TestReportServiceCreateListingReport(t *testing.T) {
	svc, db, reporter := setupReportService(t)
	ctx := context.Background()

	seller := models.User{Name: "Sam", Email: "sam@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&seller).Error)
	category := models.Category{Name: "Bikes", Slug: "bikes"}
	require.NoError(t, db.Create(&category).Error)
	listing := models.Listing{Title: "Bike", Description: "definitely not a stolen bike", Price: 15000, Condition: models.ConditionFair, Status: models.ListingStatusActive, SellerID: seller.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(&listing).Error)

	report, err := svc.Create(ctx, reporter.ID, dto.ReportCreateRequest{
		TargetType: models.ReportTargetListing,
		TargetID:   listing.ID,
		Reason:     "looks stolen",
	})
	require.NoError(t, err)
	require.Equal(t, listing.ID, report.TargetID)
}

func TestReportServiceCreateRejectsMissingTarget(t *testing.T) {
	svc, _, reporter := setupReportService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, reporter.ID, dto.ReportCreateRequest{TargetType: models.ReportTargetUser, TargetID: 9999, Reason: "ghost"})
	require.ErrorIs(t, err, ErrReportTargetNotFound)

	_, err = svc.Create(ctx, reporter.ID, dto.ReportCreateRequest{TargetType: models.ReportTargetListing, TargetID: 9999, Reason: "ghost"})
	require.ErrorIs(t, err, ErrReportTargetNotFound)

	_, err = svc.Create(ctx, reporter.ID, dto.ReportCreateRequest{TargetType: "THREAD", TargetID: 1, Reason: "nope"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}
