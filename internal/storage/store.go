// Package storage provides abstractions for persistent ledger state.
package storage

import (
	"context"
	"errors"

	"github.com/venuepulse/ledger/internal/models"
)

// Sentinel errors surfaced by stores. Services and the HTTP layer match on
// these to report the specific failure instead of a generic one.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPayeeNotFound is returned when the payee a ledger operation
	// targets does not exist.
	ErrPayeeNotFound = errors.New("payee not found")

	// ErrNoPendingReferrals is returned by BeginPayout when the payee has
	// nothing owed. A defined no-op for the caller, never silent success.
	ErrNoPendingReferrals = errors.New("no pending referrals for payee")

	// ErrInsufficientPending is returned when a settlement amount exceeds
	// the payee's recorded pending balance. This signals a ledger desync:
	// the transaction is rolled back, never clamped.
	ErrInsufficientPending = errors.New("settle amount exceeds pending balance")

	// ErrConcurrentModification is returned when a transaction loses a race
	// on a payee or pool period. The whole operation is safe to retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrEmailExists is returned when registering an operator with an email
	// already taken.
	ErrEmailExists = errors.New("email already registered")
)

// PoolCredit is one venue's share of a pool distribution to be credited as
// a pending referral.
type PoolCredit struct {
	VenueID string
	Amount  int64 // cents
}

// Store defines the transactional persistence contract for the ledger.
//
// Every method that touches a payee balance and its referral rows does so in
// a single transaction: no caller can observe a referral marked paid while
// the balance still counts it as pending, or the reverse.
type Store interface {
	// CreatePayee persists a new payee. ID and CreatedAt are populated by
	// the store when unset; Status defaults to pending_review.
	CreatePayee(ctx context.Context, payee *models.Payee) error

	// GetPayee retrieves a payee with its current balances.
	GetPayee(ctx context.Context, payeeID string) (*models.Payee, error)

	// ApprovePayee moves a payee from pending_review to approved.
	ApprovePayee(ctx context.Context, payeeID string) error

	// DeletePayee removes a payee; its referral and payout rows cascade.
	// Administrative use only. Purchase audit rows are kept.
	DeletePayee(ctx context.Context, payeeID string) error

	// RecordPurchase atomically persists the purchase audit row, credits
	// each referral to its payee's pending balance, and accrues the
	// purchase's pool share into the open pool period.
	RecordPurchase(ctx context.Context, purchase *models.Purchase, referrals []*models.ReferralRecord) error

	// CreditPending atomically inserts a pending referral and increments
	// the payee's pending balance by its commission amount.
	CreditPending(ctx context.Context, referral *models.ReferralRecord) error

	// ListPendingReferrals returns a payee's unpaid referrals, oldest first.
	ListPendingReferrals(ctx context.Context, payeeID string) ([]*models.ReferralRecord, error)

	// BeginPayout claims all of a payee's pending referrals and records a
	// payout intent in pending status, returning it. If a pending payout
	// already exists for the payee (a prior attempt never finalized, e.g.
	// the rail call timed out) that payout is returned instead of creating
	// a second one, so retries cannot double-pay.
	//
	// Returns ErrNoPendingReferrals when nothing is owed and no payout is
	// in flight.
	BeginPayout(ctx context.Context, payeeID string, now int64) (*models.PayoutRecord, error)

	// FinalizePayout atomically marks the payout's claimed referrals paid,
	// moves the amount from the payee's pending to total earnings, and
	// flips the payout record to paid with the rail's external reference.
	//
	// The transaction verifies the claimed pending set still matches the
	// payout amount and that the payee balance covers it; any mismatch
	// rolls back with ErrConcurrentModification or ErrInsufficientPending.
	FinalizePayout(ctx context.Context, payoutID, externalRef string, paidAt int64) error

	// GetPayout retrieves a payout record by ID.
	GetPayout(ctx context.Context, payoutID string) (*models.PayoutRecord, error)

	// ListPayoutsByPayee returns a payee's payout history, most recent
	// first. Reporting only; rows are never mutated through this path.
	ListPayoutsByPayee(ctx context.Context, payeeID string) ([]*models.PayoutRecord, error)

	// GetOpenPoolPeriod returns the currently open pool period, creating it
	// if none exists yet.
	GetOpenPoolPeriod(ctx context.Context, now int64) (*models.PoolPeriod, error)

	// RecordCheckin increments a venue's verified check-in count in the
	// open pool period.
	RecordCheckin(ctx context.Context, venueID string, now int64) error

	// ListPeriodCheckins returns per-venue verified check-in counts for a
	// period.
	ListPeriodCheckins(ctx context.Context, periodID string) ([]models.VenueCheckins, error)

	// ApplyPoolDistribution atomically closes the open period identified by
	// periodID, credits each venue's share as a pending referral tagged
	// with the period, and opens the next period seeded with remainder.
	// expectedBalance guards against concurrent accrual: if the period's
	// balance changed since it was read, nothing is applied and
	// ErrConcurrentModification is returned.
	//
	// Credits whose venue was deleted after its check-ins were counted are
	// skipped, their amounts carried into the next period, and returned so
	// the caller can report them. A vanished venue never blocks the close.
	ApplyPoolDistribution(ctx context.Context, periodID string, expectedBalance int64, credits []PoolCredit, remainder int64, now int64) (skipped []PoolCredit, err error)

	// CreateOperator persists a new operator account.
	CreateOperator(ctx context.Context, op *models.Operator) error

	// GetOperatorByEmail retrieves an operator by login email.
	GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error)

	// GetOperatorByID retrieves an operator by ID.
	GetOperatorByID(ctx context.Context, id string) (*models.Operator, error)

	// Close releases any resources held by the store.
	Close() error
}
