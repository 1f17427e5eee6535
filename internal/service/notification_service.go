package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/observability"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

const unreadCacheKeyPrefix = "unread:"

// FanoutResult reports how a best-effort broadcast went. Partial failure is
// accepted; failed recipients are simply not notified.
type FanoutResult struct {
	Delivered int
	Failed    int
}

// NotificationService is the single choke point for writing notification rows,
// keeping the event taxonomy centralized. All notify helpers are fire-and-
// forget from the caller's perspective: a returned error must never abort the
// triggering operation.
type NotificationService interface {
	NotifyNewMessage(ctx context.Context, senderID, recipientID uint, listingTitle string, threadID uint) error
	NotifyNewOffer(ctx context.Context, buyerID, sellerID uint, listingTitle string, amount int64, offerID, listingID uint) error
	NotifyOfferResponse(ctx context.Context, buyerID uint, listingTitle, status string, offerID uint) error
	NotifyNewRating(ctx context.Context, ratedUserID uint, raterName string, score int, listingTitle string) error
	NotifyListingSold(ctx context.Context, sellerID uint, listingTitle string, listingID uint) error
	NotifyAdminsNewReport(ctx context.Context, targetType, reason string) FanoutResult
	NotifyAllUsers(ctx context.Context, title, message string) FanoutResult
	List(ctx context.Context, filter repository.NotificationFilter) (dto.NotificationPageResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (bool, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	UnreadCount(ctx context.Context, userID uint) int64
	DeleteOld(ctx context.Context, daysOld int) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	users     repository.UserRepository
	redis     *redis.Client
	cacheTTL  time.Duration
	nats      *nats.Conn
	subject   string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

type notificationEvent struct {
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationService constructs the notification service. The Redis client
// and NATS connection are optional; both degrade to no-ops when nil.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, redisClient *redis.Client, cacheTTL time.Duration, natsConn *nats.Conn, subject string, logger zerolog.Logger) NotificationService {
	if subject == "" {
		subject = "nearbuy.notifications"
	}

	return &notificationService{
		repo:      repo,
		users:     users,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		nats:      natsConn,
		subject:   subject,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) create(ctx context.Context, notification models.Notification) error {
	notification.Title = strings.TrimSpace(s.sanitizer.Sanitize(notification.Title))
	notification.Content = strings.TrimSpace(s.sanitizer.Sanitize(notification.Content))

	if err := s.repo.Create(ctx, &notification); err != nil {
		return err
	}

	observability.NotificationsCreated().WithLabelValues(notification.Type).Inc()
	s.invalidateUnreadCache(ctx, notification.UserID)
	s.publish(notification)

	return nil
}

// publish forwards the created notification to NATS for downstream consumers.
// Best effort; a broker failure is logged and ignored.
func (s *notificationService) publish(notification models.Notification) {
	if s.nats == nil {
		return
	}

	payload, err := json.Marshal(notificationEvent{
		Notification: dto.NewNotificationResponse(notification),
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		return
	}

	if err := s.nats.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification event")
	}
}

func (s *notificationService) NotifyNewMessage(ctx context.Context, senderID, recipientID uint, listingTitle string, threadID uint) error {
	return s.create(ctx, models.Notification{
		UserID:   recipientID,
		Type:     models.NotificationTypeMessage,
		Title:    "New Message",
		Content:  fmt.Sprintf("You have a new message about %q", listingTitle),
		ThreadID: &threadID,
		Metadata: datatypes.JSONMap{"sender_id": strconv.FormatUint(uint64(senderID), 10)},
	})
}

func (s *notificationService) NotifyNewOffer(ctx context.Context, buyerID, sellerID uint, listingTitle string, amount int64, offerID, listingID uint) error {
	return s.create(ctx, models.Notification{
		UserID:    sellerID,
		Type:      models.NotificationTypeOffer,
		Title:     "New Offer Received",
		Content:   fmt.Sprintf("You received an offer of %s for %q", formatCents(amount), listingTitle),
		OfferID:   &offerID,
		ListingID: &listingID,
		Metadata:  datatypes.JSONMap{"buyer_id": strconv.FormatUint(uint64(buyerID), 10)},
	})
}

func (s *notificationService) NotifyOfferResponse(ctx context.Context, buyerID uint, listingTitle, status string, offerID uint) error {
	content := fmt.Sprintf("Your offer for %q was declined.", listingTitle)
	title := "Offer Declined"
	if status == models.OfferStatusAccepted {
		content = fmt.Sprintf("Your offer for %q was accepted!", listingTitle)
		title = "Offer Accepted"
	}

	return s.create(ctx, models.Notification{
		UserID:  buyerID,
		Type:    models.NotificationTypeOffer,
		Title:   title,
		Content: content,
		OfferID: &offerID,
	})
}

func (s *notificationService) NotifyNewRating(ctx context.Context, ratedUserID uint, raterName string, score int, listingTitle string) error {
	content := fmt.Sprintf("%s left you a %d-star review", raterName, score)
	if listingTitle != "" {
		content = fmt.Sprintf("%s left you a %d-star review for %q", raterName, score, listingTitle)
	}
	return s.create(ctx, models.Notification{
		UserID:  ratedUserID,
		Type:    models.NotificationTypeRating,
		Title:   "New Review Received",
		Content: content,
	})
}

func (s *notificationService) NotifyListingSold(ctx context.Context, sellerID uint, listingTitle string, listingID uint) error {
	return s.create(ctx, models.Notification{
		UserID:    sellerID,
		Type:      models.NotificationTypeListing,
		Title:     "Item Sold",
		Content:   fmt.Sprintf("Your listing %q has been marked as sold", listingTitle),
		ListingID: &listingID,
	})
}

// NotifyAdminsNewReport fans out one insert per admin. The inserts are
// independent; a partial failure leaves a subset of admins notified, which is
// acceptable for a non-critical signal.
func (s *notificationService) NotifyAdminsNewReport(ctx context.Context, targetType, reason string) FanoutResult {
	adminIDs, err := s.users.ListAdminIDs(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load admins for report fan-out")
		return FanoutResult{}
	}

	content := fmt.Sprintf("A new %s has been reported for: %s", strings.ToLower(targetType), reason)
	return s.fanout(ctx, adminIDs, models.NotificationTypeReport, "New Report Received", content)
}

// NotifyAllUsers fans out a system notification to every non-suspended user.
func (s *notificationService) NotifyAllUsers(ctx context.Context, title, message string) FanoutResult {
	userIDs, err := s.users.ListActiveIDs(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load users for broadcast fan-out")
		return FanoutResult{}
	}

	return s.fanout(ctx, userIDs, models.NotificationTypeSystem, title, message)
}

func (s *notificationService) fanout(ctx context.Context, userIDs []uint, notificationType, title, content string) FanoutResult {
	var result FanoutResult
	for _, userID := range userIDs {
		err := s.create(ctx, models.Notification{
			UserID:  userID,
			Type:    notificationType,
			Title:   title,
			Content: content,
		})
		if err != nil {
			result.Failed++
			observability.NotificationFanoutFailures().WithLabelValues(notificationType).Inc()
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("fan-out insert failed")
			continue
		}
		result.Delivered++
	}

	if result.Failed > 0 {
		s.logger.Warn().
			Int("delivered", result.Delivered).
			Int("failed", result.Failed).
			Str("type", notificationType).
			Msg("notification fan-out completed partially")
	}

	return result
}

func (s *notificationService) List(ctx context.Context, filter repository.NotificationFilter) (dto.NotificationPageResponse, error) {
	notifications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.NotificationPageResponse{}, err
	}

	return dto.NotificationPageResponse{
		Notifications: dto.NewNotificationResponseSlice(notifications),
		UnreadCount:   s.UnreadCount(ctx, filter.UserID),
		HasMore:       hasMore(filter.Page, filter.PageSize, total),
	}, nil
}

// MarkRead flips one notification owned by the user. Returns false when
// nothing matched, so the HTTP layer can answer 404.
func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (bool, error) {
	affected, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if affected > 0 {
		s.invalidateUnreadCache(ctx, userID)
	}
	return affected > 0, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	affected, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.invalidateUnreadCache(ctx, userID)
	}
	return affected, nil
}

// UnreadCount returns 0 on any internal error rather than propagating. The
// badge counter is not worth failing a page for.
func (s *notificationService) UnreadCount(ctx context.Context, userID uint) int64 {
	cacheKey := unreadCacheKeyPrefix + strconv.FormatUint(uint64(userID), 10)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return count
			}
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to count unread notifications")
		return 0
	}

	if s.redis != nil && s.cacheTTL > 0 {
		if err := s.redis.Set(ctx, cacheKey, strconv.FormatInt(count, 10), s.cacheTTL).Err(); err != nil {
			s.logger.Debug().Err(err).Msg("failed to cache unread count")
		}
	}

	return count
}

func (s *notificationService) invalidateUnreadCache(ctx context.Context, userID uint) {
	if s.redis == nil {
		return
	}
	cacheKey := unreadCacheKeyPrefix + strconv.FormatUint(uint64(userID), 10)
	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Debug().Err(err).Msg("failed to invalidate unread count cache")
	}
}

// DeleteOld removes read notifications older than the cutoff; unread rows
// survive regardless of age.
func (s *notificationService) DeleteOld(ctx context.Context, daysOld int) (int64, error) {
	if daysOld <= 0 {
		daysOld = 30
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysOld)
	deleted, err := s.repo.DeleteOld(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Int("days_old", daysOld).Msg("notification retention cleanup")
	}

	return deleted, nil
}

func formatCents(amount int64) string {
	return fmt.Sprintf("$%.2f", float64(amount)/100)
}
