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

// Offer workflow errors, checked in this order on creation.
var (
	ErrListingNotFound       = errors.New("listing not found")
	ErrListingInactive       = errors.New("listing is not active")
	ErrSelfOffer             = errors.New("cannot make offer on your own listing")
	ErrDuplicatePendingOffer = errors.New("you already have a pending offer on this listing")
	ErrOfferNotFound         = errors.New("offer not found")
	ErrOfferNotPending       = errors.New("offer is no longer pending")
)

// OfferService manages the offer workflow against listings.
type OfferService interface {
	List(ctx context.Context, userID uint, listType string) ([]dto.OfferResponse, error)
	Create(ctx context.Context, buyerID uint, payload dto.OfferCreateRequest) (dto.OfferResponse, error)
	Accept(ctx context.Context, sellerID, offerID uint) (dto.OfferResponse, error)
	Decline(ctx context.Context, sellerID, offerID uint) (dto.OfferResponse, error)
	Withdraw(ctx context.Context, buyerID, offerID uint) (dto.OfferResponse, error)
}

type offerService struct {
	offers        repository.OfferRepository
	listings      repository.ListingRepository
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewOfferService constructs an offer service.
func NewOfferService(offers repository.OfferRepository, listings repository.ListingRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) OfferService {
	return &offerService{
		offers:        offers,
		listings:      listings,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "offer_service").Logger(),
		tracer:        otel.Tracer("github.com/nearbuy/nearbuy-api/internal/service/offer"),
	}
}

func (s *offerService) List(ctx context.Context, userID uint, listType string) ([]dto.OfferResponse, error) {
	var (
		offers []models.Offer
		err    error
	)

	if listType == "received" {
		offers, err = s.offers.ListReceived(ctx, userID)
	} else {
		offers, err = s.offers.ListMade(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewOfferResponseSlice(offers), nil
}

func (s *offerService) Create(ctx context.Context, buyerID uint, payload dto.OfferCreateRequest) (dto.OfferResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OfferResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "offers.create", trace.WithAttributes(
		attribute.Int64("offer.listing_id", int64(payload.ListingID)),
		attribute.Int64("offer.amount", payload.Amount),
	))
	defer span.End()

	listing, err := s.listings.FindByID(ctx, payload.ListingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.OfferResponse{}, ErrListingNotFound
	}
	if err != nil {
		return dto.OfferResponse{}, err
	}

	if listing.Status != models.ListingStatusActive {
		return dto.OfferResponse{}, ErrListingInactive
	}
	if listing.SellerID == buyerID {
		return dto.OfferResponse{}, ErrSelfOffer
	}

	pending, err := s.offers.HasPending(ctx, listing.ID, buyerID)
	if err != nil {
		return dto.OfferResponse{}, err
	}
	if pending {
		return dto.OfferResponse{}, ErrDuplicatePendingOffer
	}

	pendingKey := models.PendingOfferKey(listing.ID, buyerID)
	offer := models.Offer{
		ListingID:  listing.ID,
		BuyerID:    buyerID,
		Amount:     payload.Amount,
		Message:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Message)),
		Status:     models.OfferStatusPending,
		PendingKey: &pendingKey,
	}
	if err := s.offers.Create(ctx, &offer); err != nil {
		// A concurrent create that slipped past the precheck lands on the
		// pending-key unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.OfferResponse{}, ErrDuplicatePendingOffer
		}
		span.RecordError(err)
		return dto.OfferResponse{}, err
	}

	observability.OffersCreated().Inc()

	// Fire-and-forget: a failed notification never aborts an accepted offer.
	if err := s.notifications.NotifyNewOffer(ctx, buyerID, listing.SellerID, listing.Title, offer.Amount, offer.ID, listing.ID); err != nil {
		s.logger.Warn().Err(err).Uint("offer_id", offer.ID).Msg("failed to notify seller of new offer")
	}

	created, err := s.offers.FindDetail(ctx, offer.ID)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	return dto.NewOfferResponse(created), nil
}

func (s *offerService) Accept(ctx context.Context, sellerID, offerID uint) (dto.OfferResponse, error) {
	ctx, span := s.tracer.Start(ctx, "offers.accept")
	defer span.End()

	offer, listing, err := s.pendingOfferForSeller(ctx, sellerID, offerID)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	result, err := s.offers.Accept(ctx, offer.ID)
	if err != nil {
		span.RecordError(err)
		return dto.OfferResponse{}, err
	}

	if err := s.notifications.NotifyOfferResponse(ctx, offer.BuyerID, listing.Title, models.OfferStatusAccepted, offer.ID); err != nil {
		s.logger.Warn().Err(err).Uint("offer_id", offer.ID).Msg("failed to notify buyer of acceptance")
	}
	for _, declined := range result.Declined {
		if err := s.notifications.NotifyOfferResponse(ctx, declined.BuyerID, listing.Title, models.OfferStatusDeclined, declined.ID); err != nil {
			s.logger.Warn().Err(err).Uint("offer_id", declined.ID).Msg("failed to notify declined bidder")
		}
	}
	if err := s.notifications.NotifyListingSold(ctx, sellerID, listing.Title, listing.ID); err != nil {
		s.logger.Warn().Err(err).Uint("listing_id", listing.ID).Msg("failed to notify seller of sale")
	}

	detail, err := s.offers.FindDetail(ctx, offer.ID)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	return dto.NewOfferResponse(detail), nil
}

func (s *offerService) Decline(ctx context.Context, sellerID, offerID uint) (dto.OfferResponse, error) {
	offer, listing, err := s.pendingOfferForSeller(ctx, sellerID, offerID)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	if err := s.offers.UpdateStatus(ctx, offer.ID, models.OfferStatusDeclined); err != nil {
		return dto.OfferResponse{}, err
	}

	if err := s.notifications.NotifyOfferResponse(ctx, offer.BuyerID, listing.Title, models.OfferStatusDeclined, offer.ID); err != nil {
		s.logger.Warn().Err(err).Uint("offer_id", offer.ID).Msg("failed to notify buyer of decline")
	}

	detail, err := s.offers.FindDetail(ctx, offer.ID)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	return dto.NewOfferResponse(detail), nil
}

func (s *offerService) Withdraw(ctx context.Context, buyerID, offerID uint) (dto.OfferResponse, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.OfferResponse{}, ErrOfferNotFound
	}
	if err != nil {
		return dto.OfferResponse{}, err
	}

	// Conceal existence from non-parties.
	if offer.BuyerID != buyerID {
		return dto.OfferResponse{}, ErrOfferNotFound
	}
	if offer.Status != models.OfferStatusPending {
		return dto.OfferResponse{}, ErrOfferNotPending
	}

	if err := s.offers.UpdateStatus(ctx, offer.ID, models.OfferStatusWithdrawn); err != nil {
		return dto.OfferResponse{}, err
	}

	detail, err := s.offers.FindDetail(ctx, offer.ID)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	return dto.NewOfferResponse(detail), nil
}

func (s *offerService) pendingOfferForSeller(ctx context.Context, sellerID, offerID uint) (models.Offer, models.Listing, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Offer{}, models.Listing{}, ErrOfferNotFound
	}
	if err != nil {
		return models.Offer{}, models.Listing{}, err
	}

	listing, err := s.listings.FindByID(ctx, offer.ListingID)
	if err != nil {
		return models.Offer{}, models.Listing{}, err
	}

	if listing.SellerID != sellerID {
		return models.Offer{}, models.Listing{}, ErrOfferNotFound
	}
	if offer.Status != models.OfferStatusPending {
		return models.Offer{}, models.Listing{}, ErrOfferNotPending
	}

	return offer, listing, nil
}
