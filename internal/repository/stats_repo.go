package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// PlatformStats is the raw material for the admin dashboard.
type PlatformStats struct {
	TotalUsers          int64
	TotalListings       int64
	TotalMessages       int64
	TotalReports        int64
	ActiveListings      int64
	PendingReports      int64
	UsersLastMonth      int64
	UsersMonthBefore    int64
	ListingsLastMonth   int64
	ListingsMonthBefore int64
}

// StatsRepository aggregates platform-wide counters.
type StatsRepository interface {
	Collect(ctx context.Context, now time.Time) (PlatformStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository constructs a repository backed by GORM.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Collect(ctx context.Context, now time.Time) (PlatformStats, error) {
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)
	sixtyDaysAgo := now.Add(-60 * 24 * time.Hour)

	var stats PlatformStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.User{})},
		{&stats.TotalListings, db.Model(&models.Listing{})},
		{&stats.TotalMessages, db.Model(&models.Message{})},
		{&stats.TotalReports, db.Model(&models.Report{})},
		{&stats.ActiveListings, db.Model(&models.Listing{}).Where("status = ?", models.ListingStatusActive)},
		{&stats.PendingReports, db.Model(&models.Report{}).Where("status = ?", models.ReportStatusPending)},
		{&stats.UsersLastMonth, db.Model(&models.User{}).Where("created_at >= ?", thirtyDaysAgo)},
		{&stats.UsersMonthBefore, db.Model(&models.User{}).Where("created_at >= ? AND created_at < ?", sixtyDaysAgo, thirtyDaysAgo)},
		{&stats.ListingsLastMonth, db.Model(&models.Listing{}).Where("created_at >= ?", thirtyDaysAgo)},
		{&stats.ListingsMonthBefore, db.Model(&models.Listing{}).Where("created_at >= ? AND created_at < ?", sixtyDaysAgo, thirtyDaysAgo)},
	}

	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			return PlatformStats{}, err
		}
	}

	return stats, nil
}
