package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

// Rating errors mapped to HTTP codes by the handler layer.
var (
	ErrSelfRating      = errors.New("cannot rate yourself")
	ErrDuplicateRating = errors.New("you already rated this transaction")
	ErrRatedNotFound   = errors.New("user not found")
)

// RatingService manages peer reviews and the derived user aggregates.
type RatingService interface {
	Create(ctx context.Context, giverID uint, payload dto.RatingCreateRequest) (dto.RatingResponse, error)
	ListForUser(ctx context.Context, receiverID uint, page, pageSize int) ([]dto.RatingResponse, int64, error)
}

type ratingService struct {
	ratings       repository.RatingRepository
	users         repository.UserRepository
	listings      repository.ListingRepository
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewRatingService constructs a rating service.
func NewRatingService(ratings repository.RatingRepository, users repository.UserRepository, listings repository.ListingRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) RatingService {
	return &ratingService{
		ratings:       ratings,
		users:         users,
		listings:      listings,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "rating_service").Logger(),
	}
}

func (s *ratingService) Create(ctx context.Context, giverID uint, payload dto.RatingCreateRequest) (dto.RatingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RatingResponse{}, err
	}
	if payload.ReceiverID == giverID {
		return dto.RatingResponse{}, ErrSelfRating
	}

	if _, err := s.users.FindByID(ctx, payload.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RatingResponse{}, ErrRatedNotFound
		}
		return dto.RatingResponse{}, err
	}

	rating := models.Rating{
		GiverID:    giverID,
		ReceiverID: payload.ReceiverID,
		ListingID:  payload.ListingID,
		Score:      payload.Score,
		Comment:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Comment)),
	}
	if err := s.ratings.CreateAndRecompute(ctx, &rating); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.RatingResponse{}, ErrDuplicateRating
		}
		return dto.RatingResponse{}, err
	}

	giver, err := s.users.FindByID(ctx, giverID)
	if err != nil {
		return dto.RatingResponse{}, err
	}
	rating.Giver = giver

	// The notification carries the listing title when the rating references
	// one; a lookup failure only costs the title, never the rating.
	var listingTitle string
	if payload.ListingID != nil {
		listing, err := s.listings.FindByID(ctx, *payload.ListingID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("listing_id", *payload.ListingID).Msg("failed to load listing for rating notification")
		} else {
			listingTitle = listing.Title
		}
	}

	if err := s.notifications.NotifyNewRating(ctx, payload.ReceiverID, giver.Name, rating.Score, listingTitle); err != nil {
		s.logger.Warn().Err(err).Uint("rating_id", rating.ID).Msg("failed to notify rated user")
	}

	return dto.NewRatingResponse(rating), nil
}

func (s *ratingService) ListForUser(ctx context.Context, receiverID uint, page, pageSize int) ([]dto.RatingResponse, int64, error) {
	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrRatedNotFound
		}
		return nil, 0, err
	}

	ratings, total, err := s.ratings.ListForUser(ctx, receiverID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return dto.NewRatingResponseSlice(ratings), total, nil
}
