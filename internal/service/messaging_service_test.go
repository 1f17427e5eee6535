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

type messagingFixture struct {
	svc     MessagingService
	db      *gorm.DB
	buyer   models.User
	seller  models.User
	listing models.Listing
}

func setupMessagingService(t *testing.T) messagingFixture {
	t.Helper()
	db := setupServiceDB(t)
	_, redisClient := setupTestRedis(t)

	svc := NewMessagingService(
		repository.NewThreadRepository(db),
		repository.NewListingRepository(db),
		repository.NewUserRepository(db),
		newTestNotificationService(t, db, redisClient),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	buyer := models.User{Name: "Buyer", Email: "buyer@example.com", PasswordHash: "x"}
	seller := models.User{Name: "Seller", Email: "seller@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&buyer).Error)
	require.NoError(t, db.Create(&seller).Error)
	category := models.Category{Name: "Misc", Slug: "misc"}
	require.NoError(t, db.Create(&category).Error)
	listing := models.Listing{Title: "Sofa", Description: "comfortable three seat sofa", Price: 30000, Condition: models.ConditionGood, Status: models.ListingStatusActive, SellerID: seller.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(&listing).Error)

	return messagingFixture{svc: svc, db: db, buyer: buyer, seller: seller, listing: listing}
}

func TestMessagingServiceGetOrCreateThread(t *testing.T) {
	f := setupMessagingService(t)
	ctx := context.Background()

	thread, created, err := f.svc.GetOrCreateThread(ctx, f.buyer.ID, dto.ThreadCreateRequest{ListingID: f.listing.ID, ParticipantID: f.seller.ID})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, f.buyer.ID, thread.BuyerID)
	require.Equal(t, f.seller.ID, thread.SellerID)

	// The seller opening the same conversation lands on the same thread.
	again, created, err := f.svc.GetOrCreateThread(ctx, f.seller.ID, dto.ThreadCreateRequest{ListingID: f.listing.ID, ParticipantID: f.buyer.ID})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, thread.ID, again.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.MessageThread{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestMessagingServiceGetOrCreateThreadRejectsSelf(t *testing.T) {
	f := setupMessagingService(t)

	_, _, err := f.svc.GetOrCreateThread(context.Background(), f.buyer.ID, dto.ThreadCreateRequest{ListingID: f.listing.ID, ParticipantID: f.buyer.ID})
	require.ErrorIs(t, err, ErrSelfThread)
}

func TestMessagingServiceGetOrCreateThreadRequiresSellerSide(t *testing.T) {
	f := setupMessagingService(t)

	stranger := models.User{Name: "Stranger", Email: "stranger@example.com", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&stranger).Error)

	// A conversation between two non-sellers about the listing makes no sense.
	_, _, err := f.svc.GetOrCreateThread(context.Background(), f.buyer.ID, dto.ThreadCreateRequest{ListingID: f.listing.ID, ParticipantID: stranger.ID})
	require.ErrorIs(t, err, ErrListingNotFound)
}

func TestMessagingServiceSendMessage(t *testing.T) {
	f := setupMessagingService(t)
	ctx := context.Background()

	thread, _, err := f.svc.GetOrCreateThread(ctx, f.buyer.ID, dto.ThreadCreateRequest{ListingID: f.listing.ID, ParticipantID: f.seller.ID})
	require.NoError(t, err)

	message, err := f.svc.SendMessage(ctx, f.buyer.ID, thread.ID, dto.MessageSendRequest{Content: "  is the sofa still available?  "})
	require.NoError(t, err)
	require.Equal(t, "is the sofa still available?", message.Content)
	require.Equal(t, "Buyer", message.Sender.Name)

	// The recipient is notified once.
	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", f.seller.ID, models.NotificationTypeMessage).Count(&count).Error)
	require.Equal(t, int64(1), count)

	_, err = f.svc.SendMessage(ctx, f.buyer.ID, thread.ID, dto.MessageSendRequest{Content: "<script></script>"})
	require.ErrorIs(t, err, ErrEmptyMessage, "sanitizing can leave nothing to send")
}

func TestMessagingServiceConcealsFromNonParticipants(t *testing.T) {
	f := setupMessagingService(t)
	ctx := context.Background()

	thread, _, err := f.svc.GetOrCreateThread(ctx, f.buyer.ID, dto.ThreadCreateRequest{ListingID: f.listing.ID, ParticipantID: f.seller.ID})
	require.NoError(t, err)

	stranger := models.User{Name: "Stranger", Email: "stranger@example.com", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&stranger).Error)

	_, err = f.svc.GetThread(ctx, stranger.ID, thread.ID)
	require.ErrorIs(t, err, ErrThreadNotFound)

	_, err = f.svc.SendMessage(ctx, stranger.ID, thread.ID, dto.MessageSendRequest{Content: "let me in"})
	require.ErrorIs(t, err, ErrThreadNotFound)
}

func TestMessagingServiceMarkThreadRead(t *testing.T) {
	f := setupMessagingService(t)
	ctx := context.Background()

	thread, _, err := f.svc.GetOrCreateThread(ctx, f.buyer.ID, dto.ThreadCreateRequest{ListingID: f.listing.ID, ParticipantID: f.seller.ID})
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.buyer.ID, thread.ID, dto.MessageSendRequest{Content: "ping"})
	require.NoError(t, err)

	updated, err := f.svc.MarkThreadRead(ctx, f.seller.ID, thread.ID)
	require.NoError(t, err)
	require.True(t, updated)

	updated, err = f.svc.MarkThreadRead(ctx, f.seller.ID, thread.ID)
	require.NoError(t, err)
	require.False(t, updated)

	inbox, err := f.svc.ListThreads(ctx, f.seller.ID)
	require.NoError(t, err)
	require.Len(t, inbox.Threads, 1)
	require.Zero(t, inbox.Threads[0].UnreadCount)
}
