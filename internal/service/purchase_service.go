package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/venuepulse/ledger/internal/calculator"
	"github.com/venuepulse/ledger/internal/metrics"
	"github.com/venuepulse/ledger/internal/models"
	"github.com/venuepulse/ledger/internal/storage"
)

// ErrWrongPayeeKind is returned when an operation requires a venue but got
// an affiliate, or the reverse.
var ErrWrongPayeeKind = errors.New("wrong payee kind")

// PurchaseService is the intake side of the ledger: it turns a purchase
// into its split, the promoter/venue referral credits and the pool accrual.
type PurchaseService struct {
	store storage.Store
	now   func() int64
}

// NewPurchaseService creates a PurchaseService.
func NewPurchaseService(store storage.Store) *PurchaseService {
	return &PurchaseService{
		store: store,
		now:   func() int64 { return time.Now().Unix() },
	}
}

// RecordPurchase splits amount (cents) across promoter, pool, venue and
// platform, credits the promoter and venue as pending referrals, and
// accrues the pool share into the open period. promoterID may be empty for
// a walk-in sale, in which case the no-promoter split applies.
func (s *PurchaseService) RecordPurchase(ctx context.Context, venueID, promoterID string, amount int64) (*models.Purchase, error) {
	venue, err := s.store.GetPayee(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue.Kind != models.PayeeKindVenue {
		return nil, fmt.Errorf("%w: payee %s is %s, purchases require a venue", ErrWrongPayeeKind, venueID, venue.Kind)
	}

	hasPromoter := promoterID != ""
	if hasPromoter {
		promoter, err := s.store.GetPayee(ctx, promoterID)
		if err != nil {
			return nil, err
		}
		if promoter.Kind != models.PayeeKindAffiliate {
			return nil, fmt.Errorf("%w: payee %s is %s, promoter must be an affiliate", ErrWrongPayeeKind, promoterID, promoter.Kind)
		}
	}

	cfg := calculator.ConfigFor(hasPromoter)
	split, err := calculator.ComputeWithConfig(amount, cfg)
	if err != nil {
		return nil, err
	}

	now := s.now()
	purchase := &models.Purchase{
		VenueID:       venueID,
		PromoterID:    promoterID,
		Amount:        amount,
		PromoterShare: split.Promoter,
		PoolShare:     split.Pool,
		VenueShare:    split.Venue,
		PlatformShare: split.Platform,
		SplitVersion:  cfg.Version,
		CreatedAt:     now,
	}

	var referrals []*models.ReferralRecord
	if split.Promoter > 0 {
		referrals = append(referrals, &models.ReferralRecord{
			PayeeID:          promoterID,
			CommissionAmount: split.Promoter,
			CreatedAt:        now,
		})
	}
	if split.Venue > 0 {
		referrals = append(referrals, &models.ReferralRecord{
			PayeeID:          venueID,
			CommissionAmount: split.Venue,
			CreatedAt:        now,
		})
	}

	if err := s.store.RecordPurchase(ctx, purchase, referrals); err != nil {
		return nil, err
	}

	metrics.PurchasesTotal.WithLabelValues(strconv.FormatBool(hasPromoter)).Inc()
	slog.Info("Purchase recorded",
		"purchase_id", purchase.ID,
		"venue_id", venueID,
		"promoter_id", promoterID,
		"amount_cents", amount,
		"promoter_share", split.Promoter,
		"pool_share", split.Pool,
		"venue_share", split.Venue,
		"platform_share", split.Platform,
		"split_version", cfg.Version,
	)
	return purchase, nil
}
