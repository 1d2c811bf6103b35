package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/venuepulse/ledger/internal/models"
	"github.com/venuepulse/ledger/internal/storage"
)

// CreatePayee persists a new payee to the database.
func (s *SQLiteStore) CreatePayee(ctx context.Context, payee *models.Payee) error {
	if payee.ID == "" {
		payee.ID = uuid.New().String()
	}
	if payee.CreatedAt == 0 {
		payee.CreatedAt = time.Now().Unix()
	}
	if payee.Status == "" {
		payee.Status = models.PayeeStatusPendingReview
	}
	if !payee.Kind.Valid() {
		return fmt.Errorf("invalid payee kind: %q", payee.Kind)
	}
	if !payee.Status.Valid() {
		return fmt.Errorf("invalid payee status: %q", payee.Status)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payees (id, kind, display_name, payout_destination, pending_earnings, total_earnings, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payee.ID, payee.Kind, payee.DisplayName, payee.PayoutDestination,
		payee.PendingEarnings, payee.TotalEarnings, payee.Status, payee.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payee: %w", err)
	}
	return nil
}

// GetPayee retrieves a payee by ID with its current balances.
func (s *SQLiteStore) GetPayee(ctx context.Context, payeeID string) (*models.Payee, error) {
	return getPayee(ctx, s.db, payeeID)
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPayee(ctx context.Context, q queryRower, payeeID string) (*models.Payee, error) {
	payee := &models.Payee{}
	err := q.QueryRowContext(ctx,
		`SELECT id, kind, display_name, payout_destination, pending_earnings, total_earnings, status, created_at
		 FROM payees WHERE id = ?`,
		payeeID,
	).Scan(&payee.ID, &payee.Kind, &payee.DisplayName, &payee.PayoutDestination,
		&payee.PendingEarnings, &payee.TotalEarnings, &payee.Status, &payee.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", storage.ErrPayeeNotFound, payeeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payee: %w", err)
	}
	return payee, nil
}

// ApprovePayee moves a payee from pending_review to approved.
func (s *SQLiteStore) ApprovePayee(ctx context.Context, payeeID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payees SET status = ? WHERE id = ?`,
		models.PayeeStatusApproved, payeeID,
	)
	if err != nil {
		return fmt.Errorf("failed to approve payee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check approval: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrPayeeNotFound, payeeID)
	}
	return nil
}

// DeletePayee removes a payee. Referral and payout rows cascade via the
// schema's foreign keys; purchase audit rows stay. Check-in rows in open
// pool periods go too, so the next distribution does not compute a share
// for a venue that no longer exists; closed periods keep theirs as history.
func (s *SQLiteStore) DeletePayee(ctx context.Context, payeeID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM payees WHERE id = ?`, payeeID)
		if err != nil {
			return fmt.Errorf("failed to delete payee: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check deletion: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", storage.ErrPayeeNotFound, payeeID)
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM pool_checkins WHERE venue_id = ?
			 AND period_id IN (SELECT id FROM pool_periods WHERE status = ?)`,
			payeeID, models.PoolPeriodStatusOpen,
		)
		if err != nil {
			return fmt.Errorf("failed to clear open-period checkins: %w", err)
		}
		return nil
	})
}
