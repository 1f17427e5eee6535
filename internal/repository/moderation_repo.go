package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// ModerationRepository applies admin mutations. Every mutation commits
// together with its AdminAction audit row; a failed audit insert rolls the
// mutation back so no admin action goes unlogged.
type ModerationRepository interface {
	ApplyUserAction(ctx context.Context, action models.AdminAction, updates map[string]interface{}) (models.User, error)
	ApplyListingAction(ctx context.Context, action models.AdminAction, updates map[string]interface{}) (models.Listing, error)
	ApplyReportAction(ctx context.Context, action models.AdminAction, status string) (models.Report, error)
	RecordAction(ctx context.Context, action models.AdminAction) error
	ListActions(ctx context.Context, page, pageSize int) ([]models.AdminAction, int64, error)
}

type moderationRepository struct {
	db *gorm.DB
}

// NewModerationRepository constructs a repository backed by GORM.
func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) ApplyUserAction(ctx context.Context, action models.AdminAction, updates map[string]interface{}) (models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, action.TargetID).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&action).Error
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *moderationRepository) ApplyListingAction(ctx context.Context, action models.AdminAction, updates map[string]interface{}) (models.Listing, error) {
	var listing models.Listing

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&listing, action.TargetID).Error; err != nil {
			return err
		}
		if err := tx.Model(&listing).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&action).Error
	})
	if err != nil {
		return models.Listing{}, err
	}

	return listing, nil
}

func (r *moderationRepository) ApplyReportAction(ctx context.Context, action models.AdminAction, status string) (models.Report, error) {
	var report models.Report

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, action.TargetID).Error; err != nil {
			return err
		}
		if err := tx.Model(&report).Update("status", status).Error; err != nil {
			return err
		}
		return tx.Create(&action).Error
	})
	if err != nil {
		return models.Report{}, err
	}

	report.Status = status
	return report, nil
}

func (r *moderationRepository) RecordAction(ctx context.Context, action models.AdminAction) error {
	return r.db.WithContext(ctx).Create(&action).Error
}

func (r *moderationRepository) ListActions(ctx context.Context, page, pageSize int) ([]models.AdminAction, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AdminAction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var actions []models.AdminAction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&actions).Error
	if err != nil {
		return nil, 0, err
	}

	return actions, total, nil
}
