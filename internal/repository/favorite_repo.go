package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// FavoriteRepository handles the user-to-listing bookmark join table. Add and
// Remove are idempotent.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, listingID uint) error
	Remove(ctx context.Context, userID, listingID uint) error
	ListForUser(ctx context.Context, userID uint) ([]models.Favorite, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository constructs a repository backed by GORM.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, listingID uint) error {
	favorite := models.Favorite{UserID: userID, ListingID: listingID}
	err := r.db.WithContext(ctx).Create(&favorite).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, listingID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.Favorite{}).Error
}

func (r *favoriteRepository) ListForUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Seller").
		Preload("Listing.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}
