package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// ThreadWithActivity annotates a thread for the inbox view.
type ThreadWithActivity struct {
	Thread      models.MessageThread
	LastMessage *models.Message
	UnreadCount int64
}

// ThreadRepository handles persistence for message threads and their messages.
type ThreadRepository interface {
	Create(ctx context.Context, thread *models.MessageThread) error
	FindByID(ctx context.Context, id uint) (models.MessageThread, error)
	FindByTriple(ctx context.Context, listingID, buyerID, sellerID uint) (models.MessageThread, error)
	ListForUser(ctx context.Context, userID uint) ([]ThreadWithActivity, error)
	Messages(ctx context.Context, threadID uint) ([]models.Message, error)
	AppendMessage(ctx context.Context, message *models.Message) error
	MarkRead(ctx context.Context, threadID, readerID uint) (int64, error)
	UnreadCount(ctx context.Context, threadID, userID uint) (int64, error)
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository constructs a repository backed by GORM.
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) Create(ctx context.Context, thread *models.MessageThread) error {
	if thread.LastMessageAt.IsZero() {
		thread.LastMessageAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *threadRepository) FindByID(ctx context.Context, id uint) (models.MessageThread, error) {
	var thread models.MessageThread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		return models.MessageThread{}, err
	}
	return thread, nil
}

func (r *threadRepository) FindByTriple(ctx context.Context, listingID, buyerID, sellerID uint) (models.MessageThread, error) {
	var thread models.MessageThread
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND buyer_id = ? AND seller_id = ?", listingID, buyerID, sellerID).
		First(&thread).Error
	if err != nil {
		return models.MessageThread{}, err
	}
	return thread, nil
}

func (r *threadRepository) ListForUser(ctx context.Context, userID uint) ([]ThreadWithActivity, error) {
	var threads []models.MessageThread
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}

	out := make([]ThreadWithActivity, 0, len(threads))
	for _, thread := range threads {
		annotated := ThreadWithActivity{Thread: thread}

		var last models.Message
		err := r.db.WithContext(ctx).
			Preload("Sender").
			Where("thread_id = ?", thread.ID).
			Order("created_at DESC").
			First(&last).Error
		if err == nil {
			annotated.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		unread, err := r.UnreadCount(ctx, thread.ID, userID)
		if err != nil {
			return nil, err
		}
		annotated.UnreadCount = unread

		out = append(out, annotated)
	}

	return out, nil
}

func (r *threadRepository) Messages(ctx context.Context, threadID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendMessage inserts the message and bumps the thread's activity timestamp
// in one transaction so inbox ordering stays consistent with content.
func (r *threadRepository) AppendMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.MessageThread{}).
			Where("id = ?", message.ThreadID).
			Update("last_message_at", time.Now().UTC()).Error
	})
}

func (r *threadRepository) MarkRead(ctx context.Context, threadID, readerID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, readerID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *threadRepository) UnreadCount(ctx context.Context, threadID, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, userID, false).
		Count(&count).Error
	return count, err
}
