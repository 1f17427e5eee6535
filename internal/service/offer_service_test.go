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

type offerFixture struct {
	svc     OfferService
	db      *gorm.DB
	seller  models.User
	buyer   models.User
	listing models.Listing
}

func setupOfferService(t *testing.T) offerFixture {
	t.Helper()
	db := setupServiceDB(t)
	_, redisClient := setupTestRedis(t)

	notifications := newTestNotificationService(t, db, redisClient)
	svc := NewOfferService(
		repository.NewOfferRepository(db),
		repository.NewListingRepository(db),
		notifications,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	seller := models.User{Name: "Seller", Email: "seller@example.com", PasswordHash: "x"}
	buyer := models.User{Name: "Buyer", Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&seller).Error)
	require.NoError(t, db.Create(&buyer).Error)
	category := models.Category{Name: "Misc", Slug: "misc"}
	require.NoError(t, db.Create(&category).Error)
	listing := models.Listing{Title: "Camera", Description: "mirrorless camera with lens", Price: 50000, Condition: models.ConditionLikeNew, Status: models.ListingStatusActive, SellerID: seller.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(&listing).Error)

	return offerFixture{svc: svc, db: db, seller: seller, buyer: buyer, listing: listing}
}

func TestOfferServiceCreatePreconditions(t *testing.T) {
	f := setupOfferService(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.buyer.ID, dto.OfferCreateRequest{ListingID: 9999, Amount: 100})
	require.ErrorIs(t, err, ErrListingNotFound)

	_, err = f.svc.Create(ctx, f.seller.ID, dto.OfferCreateRequest{ListingID: f.listing.ID, Amount: 100})
	require.ErrorIs(t, err, ErrSelfOffer)

	offer, err := f.svc.Create(ctx, f.buyer.ID, dto.OfferCreateRequest{ListingID: f.listing.ID, Amount: 45000})
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusPending, offer.Status)
	require.Equal(t, "Camera", offer.Listing.Title)

	_, err = f.svc.Create(ctx, f.buyer.ID, dto.OfferCreateRequest{ListingID: f.listing.ID, Amount: 46000})
	require.ErrorIs(t, err, ErrDuplicatePendingOffer)

	require.NoError(t, f.db.Model(&models.Listing{}).Where("id = ?", f.listing.ID).Update("status", models.ListingStatusInactive).Error)
	other := models.User{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&other).Error)
	_, err = f.svc.Create(ctx, other.ID, dto.OfferCreateRequest{ListingID: f.listing.ID, Amount: 100})
	require.ErrorIs(t, err, ErrListingInactive)
}

func TestOfferServiceCreateNotifiesSeller(t *testing.T) {
	f := setupOfferService(t)

	_, err := f.svc.Create(context.Background(), f.buyer.ID, dto.OfferCreateRequest{ListingID: f.listing.ID, Amount: 42050})
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, f.db.Where("user_id = ?", f.seller.ID).First(&notification).Error)
	require.Equal(t, models.NotificationTypeOffer, notification.Type)
	require.Contains(t, notification.Content, "$420.50")
	require.Contains(t, notification.Content, "Camera")
}

func TestOfferServiceAcceptCascade(t *testing.T) {
	f := setupOfferFixtureWithRival(t)

	accepted, err := f.fixture.svc.Accept(context.Background(), f.fixture.seller.ID, f.winning.ID)
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusAccepted, accepted.Status)

	var listing models.Listing
	require.NoError(t, f.fixture.db.First(&listing, f.fixture.listing.ID).Error)
	require.Equal(t, models.ListingStatusSold, listing.Status)

	var rivalOffer models.Offer
	require.NoError(t, f.fixture.db.First(&rivalOffer, f.rivalOffer.ID).Error)
	require.Equal(t, models.OfferStatusDeclined, rivalOffer.Status)

	// Buyer gets the acceptance, rival the decline, seller the sale.
	var count int64
	require.NoError(t, f.fixture.db.Model(&models.Notification{}).Where("user_id = ?", f.fixture.buyer.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
	require.NoError(t, f.fixture.db.Model(&models.Notification{}).Where("user_id = ?", f.rival.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
	require.NoError(t, f.fixture.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", f.fixture.seller.ID, models.NotificationTypeListing).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestOfferServiceAcceptOnlyBySeller(t *testing.T) {
	f := setupOfferFixtureWithRival(t)

	_, err := f.fixture.svc.Accept(context.Background(), f.rival.ID, f.winning.ID)
	require.ErrorIs(t, err, ErrOfferNotFound, "non-seller must not learn the offer exists")
}

func TestOfferServiceWithdraw(t *testing.T) {
	f := setupOfferFixtureWithRival(t)
	ctx := context.Background()

	_, err := f.fixture.svc.Withdraw(ctx, f.rival.ID, f.winning.ID)
	require.ErrorIs(t, err, ErrOfferNotFound, "only the buyer can withdraw")

	withdrawn, err := f.fixture.svc.Withdraw(ctx, f.fixture.buyer.ID, f.winning.ID)
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusWithdrawn, withdrawn.Status)

	_, err = f.fixture.svc.Withdraw(ctx, f.fixture.buyer.ID, f.winning.ID)
	require.ErrorIs(t, err, ErrOfferNotPending)
}

func TestOfferServiceDecline(t *testing.T) {
	f := setupOfferFixtureWithRival(t)

	declined, err := f.fixture.svc.Decline(context.Background(), f.fixture.seller.ID, f.winning.ID)
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusDeclined, declined.Status)

	// Declining one offer leaves the listing and the rival offer untouched.
	var listing models.Listing
	require.NoError(t, f.fixture.db.First(&listing, f.fixture.listing.ID).Error)
	require.Equal(t, models.ListingStatusActive, listing.Status)

	var rivalOffer models.Offer
	require.NoError(t, f.fixture.db.First(&rivalOffer, f.rivalOffer.ID).Error)
	require.Equal(t, models.OfferStatusPending, rivalOffer.Status)

	// The declined buyer is free to bid again.
	_, err = f.fixture.svc.Create(context.Background(), f.fixture.buyer.ID, dto.OfferCreateRequest{ListingID: f.fixture.listing.ID, Amount: 47000})
	require.NoError(t, err)
}

type rivalFixture struct {
	fixture    offerFixture
	rival      models.User
	winning    models.Offer
	rivalOffer models.Offer
}

func setupOfferFixtureWithRival(t *testing.T) rivalFixture {
	t.Helper()
	f := setupOfferService(t)

	rival := models.User{Name: "Rival", Email: "rival@example.com", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&rival).Error)

	winning := models.Offer{ListingID: f.listing.ID, BuyerID: f.buyer.ID, Amount: 48000, Status: models.OfferStatusPending}
	rivalOffer := models.Offer{ListingID: f.listing.ID, BuyerID: rival.ID, Amount: 40000, Status: models.OfferStatusPending}
	require.NoError(t, f.db.Create(&winning).Error)
	require.NoError(t, f.db.Create(&rivalOffer).Error)

	return rivalFixture{fixture: f, rival: rival, winning: winning, rivalOffer: rivalOffer}
}
