package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// CategoryWithCount pairs a category with its active listing count.
type CategoryWithCount struct {
	models.Category
	ListingCount int64
}

// CategoryRepository handles persistence for the category reference data.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uint) (models.Category, error)
	List(ctx context.Context) ([]CategoryWithCount, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository constructs a repository backed by GORM.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]CategoryWithCount, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	out := make([]CategoryWithCount, 0, len(categories))
	for _, category := range categories {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&models.Listing{}).
			Where("category_id = ? AND status = ?", category.ID, models.ListingStatusActive).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		out = append(out, CategoryWithCount{Category: category, ListingCount: count})
	}

	return out, nil
}
