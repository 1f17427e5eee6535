package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// RatingRepository handles persistence for ratings and the receiver's
// aggregate.
type RatingRepository interface {
	CreateAndRecompute(ctx context.Context, rating *models.Rating) error
	ListForUser(ctx context.Context, receiverID uint, page, pageSize int) ([]models.Rating, int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository constructs a repository backed by GORM.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// CreateAndRecompute inserts the rating and refreshes the receiver's average
// and total in the same transaction.
func (r *ratingRepository) CreateAndRecompute(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return err
		}

		var aggregate struct {
			Average float64
			Total   int64
		}
		err := tx.Model(&models.Rating{}).
			Select("AVG(score) AS average, COUNT(*) AS total").
			Where("receiver_id = ?", rating.ReceiverID).
			Scan(&aggregate).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", rating.ReceiverID).
			Updates(map[string]interface{}{
				"rating":        aggregate.Average,
				"total_ratings": aggregate.Total,
			}).Error
	})
}

func (r *ratingRepository) ListForUser(ctx context.Context, receiverID uint, page, pageSize int) ([]models.Rating, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&models.Rating{}).Where("receiver_id = ?", receiverID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ratings []models.Rating
	err := query.
		Preload("Giver").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ratings).Error
	if err != nil {
		return nil, 0, err
	}

	return ratings, total, nil
}
