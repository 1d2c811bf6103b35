package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/venuepulse/ledger/internal/calculator"
	"github.com/venuepulse/ledger/internal/metrics"
	"github.com/venuepulse/ledger/internal/models"
	"github.com/venuepulse/ledger/internal/storage"
)

// PoolService distributes the pooled fund across venues proportional to
// verified check-ins, once per period.
type PoolService struct {
	store storage.Store
	now   func() int64
}

// NewPoolService creates a PoolService.
func NewPoolService(store storage.Store) *PoolService {
	return &PoolService{
		store: store,
		now:   func() int64 { return time.Now().Unix() },
	}
}

// DistributionResult reports what a distribution run did.
type DistributionResult struct {
	PeriodID       string
	Balance        int64
	Distributed    int64
	Carried        int64
	VenuesCredited int
	TotalCheckins  int64
}

// RecordCheckin registers one verified check-in at a venue for the open
// period.
func (s *PoolService) RecordCheckin(ctx context.Context, venueID string) error {
	payee, err := s.store.GetPayee(ctx, venueID)
	if err != nil {
		return err
	}
	if payee.Kind != models.PayeeKindVenue {
		return fmt.Errorf("%w: payee %s is %s, check-ins require a venue", ErrWrongPayeeKind, venueID, payee.Kind)
	}
	return s.store.RecordCheckin(ctx, venueID, s.now())
}

// CurrentPeriod returns the open pool period and its check-in counts.
func (s *PoolService) CurrentPeriod(ctx context.Context) (*models.PoolPeriod, []models.VenueCheckins, error) {
	period, err := s.store.GetOpenPoolPeriod(ctx, s.now())
	if err != nil {
		return nil, nil, err
	}
	checkins, err := s.store.ListPeriodCheckins(ctx, period.ID)
	if err != nil {
		return nil, nil, err
	}
	return period, checkins, nil
}

// Distribute closes the open period: each venue with verified check-ins is
// credited its proportional share of the pool balance as a pending
// referral tagged with the period, and the next period opens with any
// undistributed remainder.
//
// When no venue had check-ins the whole balance carries forward; this is
// logged, never silently dropped. The run is atomic and guarded against
// purchases accruing concurrently; on a lost race it returns
// storage.ErrConcurrentModification and is safe to rerun.
func (s *PoolService) Distribute(ctx context.Context) (*DistributionResult, error) {
	now := s.now()
	period, err := s.store.GetOpenPoolPeriod(ctx, now)
	if err != nil {
		metrics.PoolDistributionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	checkins, err := s.store.ListPeriodCheckins(ctx, period.ID)
	if err != nil {
		metrics.PoolDistributionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	dist := calculator.DistributePool(period.Balance, checkins)
	credits := make([]storage.PoolCredit, 0, len(dist.Shares))
	for _, share := range dist.Shares {
		credits = append(credits, storage.PoolCredit{VenueID: share.VenueID, Amount: share.Amount})
	}

	skipped, err := s.store.ApplyPoolDistribution(ctx, period.ID, period.Balance, credits, dist.Remainder, now)
	if err != nil {
		metrics.PoolDistributionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	result := &DistributionResult{
		PeriodID:       period.ID,
		Balance:        period.Balance,
		Distributed:    dist.Distributed(),
		Carried:        dist.Remainder,
		VenuesCredited: len(credits),
		TotalCheckins:  dist.TotalCheckins,
	}
	for _, credit := range skipped {
		result.Distributed -= credit.Amount
		result.Carried += credit.Amount
		result.VenuesCredited--
		slog.Warn("Pool share for deleted venue carried forward",
			"period_id", period.ID,
			"venue_id", credit.VenueID,
			"amount_cents", credit.Amount,
		)
	}

	switch {
	case period.Balance == 0:
		metrics.PoolDistributionsTotal.WithLabelValues("empty").Inc()
		slog.Info("Pool period closed with empty balance", "period_id", period.ID)
	case result.VenuesCredited == 0:
		metrics.PoolDistributionsTotal.WithLabelValues("carried").Inc()
		metrics.PoolCarriedCents.Add(float64(result.Carried))
		slog.Warn("Pool period had no creditable venues, balance carried forward",
			"period_id", period.ID,
			"carried_cents", result.Carried,
		)
	default:
		metrics.PoolDistributionsTotal.WithLabelValues("distributed").Inc()
		if result.Carried > 0 {
			metrics.PoolCarriedCents.Add(float64(result.Carried))
		}
		slog.Info("Pool period distributed",
			"period_id", period.ID,
			"balance_cents", period.Balance,
			"distributed_cents", result.Distributed,
			"carried_cents", result.Carried,
			"venues", result.VenuesCredited,
			"checkins", dist.TotalCheckins,
		)
	}
	return result, nil
}
