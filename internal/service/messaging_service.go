package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/observability"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

// Messaging errors mapped to HTTP codes by the handler layer.
var (
	ErrThreadNotFound = errors.New("thread not found")
	ErrSelfThread     = errors.New("cannot start a conversation with yourself")
	ErrEmptyMessage   = errors.New("message cannot be empty")
)

// MessagingService manages buyer/seller conversations.
type MessagingService interface {
	GetOrCreateThread(ctx context.Context, userID uint, payload dto.ThreadCreateRequest) (dto.ThreadResponse, bool, error)
	ListThreads(ctx context.Context, userID uint) (dto.ThreadListResponse, error)
	GetThread(ctx context.Context, userID, threadID uint) (dto.ThreadDetailResponse, error)
	SendMessage(ctx context.Context, userID, threadID uint, payload dto.MessageSendRequest) (dto.MessageResponse, error)
	MarkThreadRead(ctx context.Context, userID, threadID uint) (bool, error)
}

type messagingService struct {
	threads       repository.ThreadRepository
	listings      repository.ListingRepository
	users         repository.UserRepository
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewMessagingService constructs a messaging service.
func NewMessagingService(threads repository.ThreadRepository, listings repository.ListingRepository, users repository.UserRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) MessagingService {
	return &messagingService{
		threads:       threads,
		listings:      listings,
		users:         users,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "messaging_service").Logger(),
		tracer:        otel.Tracer("github.com/nearbuy/nearbuy-api/internal/service/messaging"),
	}
}

// GetOrCreateThread resolves the conversation for a listing between the caller
// and the other participant, creating it on first contact. Whichever side of
// the listing the caller is on, the thread is keyed buyer/seller. The bool
// reports whether the thread was created by this call.
func (s *messagingService) GetOrCreateThread(ctx context.Context, userID uint, payload dto.ThreadCreateRequest) (dto.ThreadResponse, bool, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ThreadResponse{}, false, err
	}
	if payload.ParticipantID == userID {
		return dto.ThreadResponse{}, false, ErrSelfThread
	}

	listing, err := s.listings.FindByID(ctx, payload.ListingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ThreadResponse{}, false, ErrListingNotFound
	}
	if err != nil {
		return dto.ThreadResponse{}, false, err
	}

	buyerID, sellerID := userID, payload.ParticipantID
	if listing.SellerID == userID {
		buyerID, sellerID = payload.ParticipantID, userID
	} else if listing.SellerID != payload.ParticipantID {
		// Every thread has the listing's seller on one side.
		return dto.ThreadResponse{}, false, ErrListingNotFound
	}

	if _, err := s.users.FindByID(ctx, payload.ParticipantID); errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ThreadResponse{}, false, ErrThreadNotFound
	} else if err != nil {
		return dto.ThreadResponse{}, false, err
	}

	thread, err := s.threads.FindByTriple(ctx, listing.ID, buyerID, sellerID)
	if err == nil {
		return dto.NewThreadResponse(thread), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ThreadResponse{}, false, err
	}

	thread = models.MessageThread{ListingID: listing.ID, BuyerID: buyerID, SellerID: sellerID}
	if err := s.threads.Create(ctx, &thread); err != nil {
		// Concurrent first contact: someone else created it, fetch theirs.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.threads.FindByTriple(ctx, listing.ID, buyerID, sellerID)
			if ferr != nil {
				return dto.ThreadResponse{}, false, ferr
			}
			return dto.NewThreadResponse(existing), false, nil
		}
		return dto.ThreadResponse{}, false, err
	}

	return dto.NewThreadResponse(thread), true, nil
}

func (s *messagingService) ListThreads(ctx context.Context, userID uint) (dto.ThreadListResponse, error) {
	annotated, err := s.threads.ListForUser(ctx, userID)
	if err != nil {
		return dto.ThreadListResponse{}, err
	}

	summaries := make([]dto.ThreadSummaryResponse, 0, len(annotated))
	for _, entry := range annotated {
		summary := dto.ThreadSummaryResponse{
			ThreadResponse: dto.NewThreadResponse(entry.Thread),
			UnreadCount:    entry.UnreadCount,
		}
		if entry.LastMessage != nil {
			last := dto.NewMessageResponse(*entry.LastMessage)
			summary.LastMessage = &last
		}
		summaries = append(summaries, summary)
	}

	return dto.ThreadListResponse{Threads: summaries}, nil
}

func (s *messagingService) GetThread(ctx context.Context, userID, threadID uint) (dto.ThreadDetailResponse, error) {
	thread, err := s.participantThread(ctx, userID, threadID)
	if err != nil {
		return dto.ThreadDetailResponse{}, err
	}

	messages, err := s.threads.Messages(ctx, thread.ID)
	if err != nil {
		return dto.ThreadDetailResponse{}, err
	}

	return dto.ThreadDetailResponse{
		ThreadResponse: dto.NewThreadResponse(thread),
		Messages:       dto.NewMessageResponseSlice(messages),
	}, nil
}

func (s *messagingService) SendMessage(ctx context.Context, userID, threadID uint, payload dto.MessageSendRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "messages.send", trace.WithAttributes(
		attribute.Int64("thread.id", int64(threadID)),
	))
	defer span.End()

	thread, err := s.participantThread(ctx, userID, threadID)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.MessageResponse{}, ErrEmptyMessage
	}

	message := models.Message{ThreadID: thread.ID, SenderID: userID, Content: content}
	if err := s.threads.AppendMessage(ctx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	observability.MessagesSent().Inc()

	recipientID := thread.BuyerID
	if userID == thread.BuyerID {
		recipientID = thread.SellerID
	}

	listingTitle := ""
	if listing, err := s.listings.FindByID(ctx, thread.ListingID); err == nil {
		listingTitle = listing.Title
	}

	if err := s.notifications.NotifyNewMessage(ctx, userID, recipientID, listingTitle, thread.ID); err != nil {
		s.logger.Warn().Err(err).Uint("thread_id", thread.ID).Msg("failed to notify recipient of message")
	}

	sender, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.MessageResponse{}, err
	}
	message.Sender = sender

	return dto.NewMessageResponse(message), nil
}

// MarkThreadRead marks every message from the other participant as read. It
// reports whether any row actually flipped, so repeat calls are visible to the
// handler.
func (s *messagingService) MarkThreadRead(ctx context.Context, userID, threadID uint) (bool, error) {
	thread, err := s.participantThread(ctx, userID, threadID)
	if err != nil {
		return false, err
	}

	affected, err := s.threads.MarkRead(ctx, thread.ID, userID)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *messagingService) participantThread(ctx context.Context, userID, threadID uint) (models.MessageThread, error) {
	thread, err := s.threads.FindByID(ctx, threadID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.MessageThread{}, ErrThreadNotFound
	}
	if err != nil {
		return models.MessageThread{}, err
	}

	// Non-participants get the same answer as a missing thread.
	if thread.BuyerID != userID && thread.SellerID != userID {
		return models.MessageThread{}, ErrThreadNotFound
	}

	return thread, nil
}
