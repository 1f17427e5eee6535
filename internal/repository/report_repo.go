package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// ReportFilter narrows the moderation report queue.
type ReportFilter struct {
	Status   string
	Page     int
	PageSize int
}

// ReportRepository handles persistence for user-submitted reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id uint) (models.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs a repository backed by GORM.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uint) (models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	query := r.db.WithContext(ctx).Model(&models.Report{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}
