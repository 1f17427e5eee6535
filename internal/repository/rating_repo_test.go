package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

func TestRatingRepositoryRecomputesAggregate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRatingRepository(db)

	receiver := models.User{Name: "Receiver", Email: "receiver@example.com", PasswordHash: "x"}
	alice := models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
	bob := models.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&receiver).Error)
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	require.NoError(t, repo.CreateAndRecompute(context.Background(), &models.Rating{GiverID: alice.ID, ReceiverID: receiver.ID, Score: 5}))
	require.NoError(t, repo.CreateAndRecompute(context.Background(), &models.Rating{GiverID: bob.ID, ReceiverID: receiver.ID, Score: 2}))

	var got models.User
	require.NoError(t, db.First(&got, receiver.ID).Error)
	require.InDelta(t, 3.5, got.Rating, 0.001)
	require.Equal(t, 2, got.TotalRatings)
}

func TestRatingRepositoryRejectsDuplicatePerListing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRatingRepository(db)

	receiver := models.User{Name: "Receiver", Email: "receiver@example.com", PasswordHash: "x"}
	giver := models.User{Name: "Giver", Email: "giver@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&receiver).Error)
	require.NoError(t, db.Create(&giver).Error)
	category := models.Category{Name: "Misc", Slug: "misc"}
	require.NoError(t, db.Create(&category).Error)
	listing := models.Listing{Title: "Sold Bike", Description: "the bike the rating is about", Price: 1000, Condition: models.ConditionGood, Status: models.ListingStatusSold, SellerID: receiver.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(&listing).Error)

	first := models.Rating{GiverID: giver.ID, ReceiverID: receiver.ID, ListingID: &listing.ID, Score: 4}
	require.NoError(t, repo.CreateAndRecompute(context.Background(), &first))

	duplicate := models.Rating{GiverID: giver.ID, ReceiverID: receiver.ID, ListingID: &listing.ID, Score: 1}
	err := repo.CreateAndRecompute(context.Background(), &duplicate)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Failed insert must not touch the aggregate.
	var got models.User
	require.NoError(t, db.First(&got, receiver.ID).Error)
	require.InDelta(t, 4.0, got.Rating, 0.001)
	require.Equal(t, 1, got.TotalRatings)
}

func TestRatingRepositoryListForUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRatingRepository(db)

	receiver := models.User{Name: "Receiver", Email: "receiver@example.com", PasswordHash: "x"}
	giver := models.User{Name: "Giver", Email: "giver@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&receiver).Error)
	require.NoError(t, db.Create(&giver).Error)

	require.NoError(t, repo.CreateAndRecompute(context.Background(), &models.Rating{GiverID: giver.ID, ReceiverID: receiver.ID, Score: 5, Comment: "great seller"}))

	ratings, total, err := repo.ListForUser(context.Background(), receiver.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, ratings, 1)
	require.Equal(t, "Giver", ratings[0].Giver.Name)
}
