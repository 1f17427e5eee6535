package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// ListingFilter narrows the public listing search. Zero values mean "not
// filtered". Prices are inclusive bounds in cents.
type ListingFilter struct {
	Query      string
	CategoryID uint
	Condition  string
	MinPrice   *int64
	MaxPrice   *int64
	Location   string
	SortBy     string
	SortOrder  string
	Status     string
	SellerID   uint
	Page       int
	PageSize   int
}

// listingSortFields is the whitelist of sortable columns; anything else falls
// back to created_at.
var listingSortFields = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"price":      "price",
	"title":      "title",
}

// ListingRepository handles persistence for listing entities.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id uint) (models.Listing, error)
	FindDetail(ctx context.Context, id uint) (models.Listing, error)
	IncrementViews(ctx context.Context, id uint) error
	Search(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error)
	Save(ctx context.Context, listing *models.Listing) error
	UpdateStatus(ctx context.Context, id uint, status string) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository constructs a repository backed by GORM.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) FindByID(ctx context.Context, id uint) (models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		return models.Listing{}, err
	}
	return listing, nil
}

func (r *listingRepository) FindDetail(ctx context.Context, id uint) (models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Category").
		First(&listing, id).Error
	if err != nil {
		return models.Listing{}, err
	}
	return listing, nil
}

func (r *listingRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *listingRepository) Search(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	query := r.db.WithContext(ctx).Model(&models.Listing{})

	status := filter.Status
	if status == "" {
		status = models.ListingStatusActive
	}
	if status != "ANY" {
		query = query.Where("status = ?", status)
	}

	if text := strings.TrimSpace(filter.Query); text != "" {
		pattern := "%" + strings.ToLower(text) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if condition := strings.ToUpper(strings.TrimSpace(filter.Condition)); condition != "" {
		query = query.Where("condition = ?", condition)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where("LOWER(location_addr) LIKE ?", "%"+strings.ToLower(location)+"%")
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := listingSortFields[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	var listings []models.Listing
	err := query.
		Preload("Seller").
		Preload("Category").
		Order(column + " " + direction).
		Order("id ASC"). // stable tiebreak so pagination never skips rows
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *listingRepository) Save(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Update("status", status).Error
}
