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

func setupRatingService(t *testing.T) (RatingService, *gorm.DB, models.User, models.User) {
	t.Helper()
	db := setupServiceDB(t)
	_, redisClient := setupTestRedis(t)

	svc := NewRatingService(
		repository.NewRatingRepository(db),
		repository.NewUserRepository(db),
		repository.NewListingRepository(db),
		newTestNotificationService(t, db, redisClient),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	giver := models.User{Name: "Grace", Email: "grace@example.com", PasswordHash: "x"}
	receiver := models.User{Name: "Raul", Email: "raul@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&giver).Error)
	require.NoError(t, db.Create(&receiver).Error)

	return svc, db, giver, receiver
}

func TestRatingServiceCreateUpdatesAggregateAndNotifies(t *testing.T) {
	svc, db, giver, receiver := setupRatingService(t)
	ctx := context.Background()

	rating, err := svc.Create(ctx, giver.ID, dto.RatingCreateRequest{
		ReceiverID: receiver.ID,
		Score:      4,
		Comment:    "smooth handover, <script>alert(1)</script>would trade again",
	})
	require.NoError(t, err)
	require.Equal(t, 4, rating.Score)
	require.Equal(t, "smooth handover, would trade again", rating.Comment)
	require.Equal(t, "Grace", rating.Giver.Name)

	var rated models.User
	require.NoError(t, db.First(&rated, receiver.ID).Error)
	require.InDelta(t, 4.0, rated.Rating, 0.001)
	require.Equal(t, 1, rated.TotalRatings)

	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", receiver.ID).Count(&notifications).Error)
	require.Equal(t, int64(1), notifications)
}

func TestRatingServiceNotificationNamesListing(t *testing.T) {
	svc, db, giver, receiver := setupRatingService(t)
	ctx := context.Background()

	category := models.Category{Name: "Misc", Slug: "misc"}
	require.NoError(t, db.Create(&category).Error)
	listing := models.Listing{Title: "Road Bike", Description: "aluminium frame road bike", Price: 40000, Condition: models.ConditionGood, Status: models.ListingStatusSold, SellerID: receiver.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(&listing).Error)

	_, err := svc.Create(ctx, giver.ID, dto.RatingCreateRequest{
		ReceiverID: receiver.ID,
		ListingID:  &listing.ID,
		Score:      5,
		Comment:    "exactly as described",
	})
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", receiver.ID).First(&notification).Error)
	require.Contains(t, notification.Content, `"Road Bike"`)
}

func TestRatingServiceCreateGuards(t *testing.T) {
	svc, db, giver, receiver := setupRatingService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, giver.ID, dto.RatingCreateRequest{ReceiverID: giver.ID, Score: 5})
	require.ErrorIs(t, err, ErrSelfRating)

	_, err = svc.Create(ctx, giver.ID, dto.RatingCreateRequest{ReceiverID: 9999, Score: 5})
	require.ErrorIs(t, err, ErrRatedNotFound)

	_, err = svc.Create(ctx, giver.ID, dto.RatingCreateRequest{ReceiverID: receiver.ID, Score: 7})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	category := models.Category{Name: "Misc", Slug: "misc"}
	require.NoError(t, db.Create(&category).Error)
	listing := models.Listing{Title: "Desk", Description: "a solid oak writing desk", Price: 9000, Condition: models.ConditionGood, Status: models.ListingStatusSold, SellerID: receiver.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(&listing).Error)

	_, err = svc.Create(ctx, giver.ID, dto.RatingCreateRequest{ReceiverID: receiver.ID, ListingID: &listing.ID, Score: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, giver.ID, dto.RatingCreateRequest{ReceiverID: receiver.ID, ListingID: &listing.ID, Score: 3})
	require.ErrorIs(t, err, ErrDuplicateRating)
}

func TestRatingServiceListForUser(t *testing.T) {
	svc, _, giver, receiver := setupRatingService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, giver.ID, dto.RatingCreateRequest{ReceiverID: receiver.ID, Score: 5, Comment: "great"})
	require.NoError(t, err)

	ratings, total, err := svc.ListForUser(ctx, receiver.ID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, ratings, 1)
	require.Equal(t, giver.ID, ratings[0].GiverID)

	_, _, err = svc.ListForUser(ctx, 9999, 1, 20)
	require.ErrorIs(t, err, ErrRatedNotFound)
}
