// Package scheduler closes pool periods on a timer so distributions run
// without an operator triggering them.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/venuepulse/ledger/internal/service"
	"github.com/venuepulse/ledger/internal/storage"
)

// Scheduler polls the open pool period and runs the distributor once the
// period has been open for a full periodLength. The distributor itself
// opens the next period, so a single loop keeps the cycle going.
type Scheduler struct {
	pool         *service.PoolService
	interval     time.Duration
	periodLength time.Duration
	now          func() time.Time
}

// New creates a Scheduler that checks every interval and closes periods
// after periodLength. Zero values default to a one-minute check and a
// one-week period.
func New(pool *service.PoolService, interval, periodLength time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if periodLength <= 0 {
		periodLength = 7 * 24 * time.Hour
	}
	return &Scheduler{
		pool:         pool,
		interval:     interval,
		periodLength: periodLength,
		now:          time.Now,
	}
}

// Run blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Pool scheduler started", "check_interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Pool scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	period, _, err := s.pool.CurrentPeriod(ctx)
	if err != nil {
		slog.Error("Scheduler failed to read open pool period", "error", err)
		return
	}
	due := time.Unix(period.PeriodStart, 0).Add(s.periodLength)
	if s.now().Before(due) {
		return
	}

	result, err := s.pool.Distribute(ctx)
	if err != nil {
		// A lost race means an operator ran the distribution manually;
		// the next tick sees the fresh period.
		if errors.Is(err, storage.ErrConcurrentModification) {
			slog.Info("Scheduled distribution lost race, skipping", "period_id", period.ID)
			return
		}
		slog.Error("Scheduled pool distribution failed", "period_id", period.ID, "error", err)
		return
	}
	slog.Info("Scheduled pool distribution complete",
		"period_id", result.PeriodID,
		"distributed_cents", result.Distributed,
		"carried_cents", result.Carried,
		"venues", result.VenuesCredited,
	)
}
