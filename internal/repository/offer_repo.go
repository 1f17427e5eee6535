package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/models"
)

// AcceptResult reports the outcome of an accept transaction: the accepted
// offer plus every competing pending offer that was declined with it.
type AcceptResult struct {
	Accepted models.Offer
	Declined []models.Offer
}

// OfferRepository handles persistence for offer entities.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id uint) (models.Offer, error)
	FindDetail(ctx context.Context, id uint) (models.Offer, error)
	HasPending(ctx context.Context, listingID, buyerID uint) (bool, error)
	ListMade(ctx context.Context, buyerID uint) ([]models.Offer, error)
	ListReceived(ctx context.Context, sellerID uint) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Accept(ctx context.Context, id uint) (AcceptResult, error)
}

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository constructs a repository backed by GORM.
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *offerRepository) FindByID(ctx context.Context, id uint) (models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, id).Error; err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

func (r *offerRepository) FindDetail(ctx context.Context, id uint) (models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Listing").
		First(&offer, id).Error
	if err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

func (r *offerRepository) HasPending(ctx context.Context, listingID, buyerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("listing_id = ? AND buyer_id = ? AND status = ?", listingID, buyerID, models.OfferStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *offerRepository) ListMade(ctx context.Context, buyerID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Listing").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) ListReceived(ctx context.Context, sellerID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Listing").
		Joins("JOIN listings ON listings.id = offers.listing_id").
		Where("listings.seller_id = ?", sellerID).
		Order("offers.created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// UpdateStatus moves an offer out of PENDING and releases its pending key so
// the buyer may bid on the listing again later.
func (r *offerRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "pending_key": nil}).Error
}

// Accept marks the offer accepted, the listing sold and every other pending
// offer on the listing declined, all in one transaction.
func (r *offerRepository) Accept(ctx context.Context, id uint) (AcceptResult, error) {
	var result AcceptResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		if err := tx.First(&offer, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Offer{}).
			Where("id = ?", offer.ID).
			Updates(map[string]interface{}{"status": models.OfferStatusAccepted, "pending_key": nil}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Listing{}).
			Where("id = ?", offer.ListingID).
			Update("status", models.ListingStatusSold).Error; err != nil {
			return err
		}

		var losers []models.Offer
		if err := tx.
			Where("listing_id = ? AND id <> ? AND status = ?", offer.ListingID, offer.ID, models.OfferStatusPending).
			Find(&losers).Error; err != nil {
			return err
		}

		if len(losers) > 0 {
			loserIDs := make([]uint, 0, len(losers))
			for _, loser := range losers {
				loserIDs = append(loserIDs, loser.ID)
			}
			if err := tx.Model(&models.Offer{}).
				Where("id IN ?", loserIDs).
				Updates(map[string]interface{}{"status": models.OfferStatusDeclined, "pending_key": nil}).Error; err != nil {
				return err
			}
		}

		offer.Status = models.OfferStatusAccepted
		result = AcceptResult{Accepted: offer, Declined: losers}
		return nil
	})
	if err != nil {
		return AcceptResult{}, err
	}

	return result, nil
}
