package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

func TestNotificationRepositoryMarkReadScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	owner := models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x"}
	other := models.User{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&other).Error)

	notification := models.Notification{UserID: owner.ID, Type: models.NotificationTypeSystem, Title: "Welcome", Content: "hello"}
	require.NoError(t, repo.Create(context.Background(), &notification))

	affected, err := repo.MarkRead(context.Background(), notification.ID, other.ID)
	require.NoError(t, err)
	require.Zero(t, affected, "another user's mark-read must not match")

	affected, err = repo.MarkRead(context.Background(), notification.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	unread, err := repo.CountUnread(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestNotificationRepositoryDeleteOldSparesUnread(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	owner := models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)

	old := time.Now().AddDate(0, 0, -40)
	oldRead := models.Notification{UserID: owner.ID, Type: models.NotificationTypeSystem, Title: "old read", Content: "m", IsRead: true, CreatedAt: old}
	oldUnread := models.Notification{UserID: owner.ID, Type: models.NotificationTypeSystem, Title: "old unread", Content: "m", CreatedAt: old}
	freshRead := models.Notification{UserID: owner.ID, Type: models.NotificationTypeSystem, Title: "fresh read", Content: "m", IsRead: true}
	require.NoError(t, db.Create(&oldRead).Error)
	require.NoError(t, db.Create(&oldUnread).Error)
	require.NoError(t, db.Create(&freshRead).Error)

	deleted, err := repo.DeleteOld(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	require.Equal(t, int64(2), remaining)
}

func TestNotificationRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	owner := models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)

	require.NoError(t, repo.Create(context.Background(), &models.Notification{UserID: owner.ID, Type: models.NotificationTypeOffer, Title: "offer", Content: "m"}))
	require.NoError(t, repo.Create(context.Background(), &models.Notification{UserID: owner.ID, Type: models.NotificationTypeMessage, Title: "message", Content: "m", IsRead: true}))

	all, total, err := repo.List(context.Background(), NotificationFilter{UserID: owner.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, int64(2), total)

	offers, total, err := repo.List(context.Background(), NotificationFilter{UserID: owner.ID, Type: models.NotificationTypeOffer})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.Equal(t, int64(1), total)
	require.Equal(t, "offer", offers[0].Title)

	unread, _, err := repo.List(context.Background(), NotificationFilter{UserID: owner.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.Equal(t, "offer", unread[0].Title)
}

func TestNotificationRepositoryListTotalSpansPages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)

	owner := models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(context.Background(), &models.Notification{
			UserID: owner.ID, Type: models.NotificationTypeSystem, Title: "n", Content: "m",
		}))
	}

	page, total, err := repo.List(context.Background(), NotificationFilter{UserID: owner.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, int64(5), total)
}
