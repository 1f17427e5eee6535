package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

func TestFavoriteRepositoryAddIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFavoriteRepository(db)

	user := models.User{Name: "User", Email: "user@example.com", PasswordHash: "x"}
	seller := models.User{Name: "Seller", Email: "seller@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&seller).Error)
	category := models.Category{Name: "Misc", Slug: "misc"}
	require.NoError(t, db.Create(&category).Error)
	listing := models.Listing{Title: "Lamp", Description: "a very nice desk lamp here", Price: 2000, Condition: models.ConditionGood, Status: models.ListingStatusActive, SellerID: seller.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(&listing).Error)

	require.NoError(t, repo.Add(context.Background(), user.ID, listing.ID))
	require.NoError(t, repo.Add(context.Background(), user.ID, listing.ID))

	favorites, err := repo.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	require.Equal(t, "Lamp", favorites[0].Listing.Title)

	require.NoError(t, repo.Remove(context.Background(), user.ID, listing.ID))
	favorites, err = repo.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Empty(t, favorites)

	// Removing again is a no-op, not an error.
	require.NoError(t, repo.Remove(context.Background(), user.ID, listing.ID))
}
