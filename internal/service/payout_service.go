// Package service implements the ledger operations: purchase intake,
// payout settlement and pool distribution. Services validate, orchestrate
// store transactions and log; the money math lives in internal/calculator
// and the atomicity in internal/storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/venuepulse/ledger/internal/metrics"
	"github.com/venuepulse/ledger/internal/models"
	"github.com/venuepulse/ledger/internal/storage"
)

var (
	// ErrPayeeNotApproved is returned when a payout is attempted for a
	// payee still in review.
	ErrPayeeNotApproved = errors.New("payee is not approved for payouts")

	// ErrRailFailure is returned when the external payment rail rejects or
	// fails a payout. The ledger-side settlement has not happened: the
	// referrals are still pending and the payout record stays in pending
	// status for retry.
	ErrRailFailure = errors.New("external payout rail failed")
)

// RailFunc issues a payout on the external payment rail (bank or PayPal)
// and returns the rail's transaction reference. The payout ID serves as the
// idempotency key: a retried payout presents the same ID.
type RailFunc func(ctx context.Context, payout *models.PayoutRecord, destination string) (externalRef string, err error)

// PayoutService is the settlement engine: it owns the only code path that
// moves referrals from pending to paid.
type PayoutService struct {
	store storage.Store
	rail  RailFunc // nil means record-only mode (no external rail)
	locks *payeeLocks
	now   func() int64
}

// NewPayoutService creates a PayoutService. rail may be nil, in which case
// settlements are recorded without calling out to a payment provider.
func NewPayoutService(store storage.Store, rail RailFunc) *PayoutService {
	return &PayoutService{
		store: store,
		rail:  rail,
		locks: newPayeeLocks(),
		now:   func() int64 { return time.Now().Unix() },
	}
}

// MarkPayeePaid settles everything currently owed to a payee.
//
// Sequencing: (1) claim the pending referrals under a payout record in
// pending status, (2) call the external rail, (3) finalize the ledger-side
// settlement. A rail failure leaves the ledger untouched and the payout
// resumable; a retry picks up the same payout record and presents the same
// idempotency reference to the rail.
//
// Calling this with nothing owed returns storage.ErrNoPendingReferrals:
// a safe no-op, but reported, never presented as a settlement.
func (s *PayoutService) MarkPayeePaid(ctx context.Context, payeeID string) (*models.PayoutRecord, error) {
	unlock := s.locks.Lock(payeeID)
	defer unlock()

	payee, err := s.store.GetPayee(ctx, payeeID)
	if err != nil {
		metrics.PayoutsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if payee.Status != models.PayeeStatusApproved {
		metrics.PayoutsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s is %s", ErrPayeeNotApproved, payeeID, payee.Status)
	}

	payout, err := s.store.BeginPayout(ctx, payeeID, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrNoPendingReferrals) {
			metrics.PayoutsTotal.WithLabelValues("no_pending").Inc()
			slog.Info("Payout requested with nothing pending", "payee_id", payeeID)
		} else {
			metrics.PayoutsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	var externalRef string
	if s.rail != nil {
		externalRef, err = s.rail(ctx, payout, payee.PayoutDestination)
		if err != nil {
			metrics.PayoutsTotal.WithLabelValues("rail_failed").Inc()
			slog.Warn("Payout rail failed, settlement not applied",
				"payee_id", payeeID,
				"payout_id", payout.ID,
				"amount_cents", payout.Amount,
				"error", err,
			)
			return nil, fmt.Errorf("%w: payout %s: %v", ErrRailFailure, payout.ID, err)
		}
	}

	paidAt := s.now()
	if err := s.store.FinalizePayout(ctx, payout.ID, externalRef, paidAt); err != nil {
		metrics.PayoutsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, storage.ErrInsufficientPending) {
			// Ledger desync: loud, never auto-corrected.
			slog.Error("Settlement refused, pending balance does not cover payout",
				"payee_id", payeeID,
				"payout_id", payout.ID,
				"amount_cents", payout.Amount,
			)
		}
		return nil, err
	}

	payout.Status = models.PayoutStatusPaid
	payout.ExternalRef = externalRef
	payout.PaidAt = paidAt

	metrics.PayoutsTotal.WithLabelValues("settled").Inc()
	metrics.SettledCents.Add(float64(payout.Amount))
	slog.Info("Payout settled",
		"payee_id", payeeID,
		"payout_id", payout.ID,
		"amount_cents", payout.Amount,
		"external_ref", externalRef,
	)
	return payout, nil
}

// PayoutHistory returns a payee's payout records, most recent first.
func (s *PayoutService) PayoutHistory(ctx context.Context, payeeID string) ([]*models.PayoutRecord, error) {
	if _, err := s.store.GetPayee(ctx, payeeID); err != nil {
		return nil, err
	}
	return s.store.ListPayoutsByPayee(ctx, payeeID)
}
