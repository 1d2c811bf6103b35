package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/venuepulse/ledger/internal/models"
	"github.com/venuepulse/ledger/internal/storage"
)

// BeginPayout claims the payee's pending referrals under a new payout
// record in pending status. If a pending payout already exists for the
// payee it is returned unchanged, so a retry after an ambiguous failure
// resumes the same payout instead of creating a second one.
func (s *SQLiteStore) BeginPayout(ctx context.Context, payeeID string, now int64) (*models.PayoutRecord, error) {
	var payout *models.PayoutRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getPayee(ctx, tx, payeeID); err != nil {
			return err
		}

		// Resume an in-flight payout if one exists.
		existing, err := scanPayout(tx.QueryRowContext(ctx,
			payoutColumns+` FROM payouts WHERE payee_id = ? AND status = ?`,
			payeeID, models.PayoutStatusPending,
		))
		if err == nil {
			payout = existing
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check in-flight payout: %w", err)
		}

		var count int64
		var total sql.NullInt64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*), SUM(commission_amount) FROM referrals
			 WHERE payee_id = ? AND status = ? AND payout_id = ''`,
			payeeID, models.ReferralStatusPending,
		).Scan(&count, &total)
		if err != nil {
			return fmt.Errorf("failed to sum pending referrals: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", storage.ErrNoPendingReferrals, payeeID)
		}

		payout = &models.PayoutRecord{
			ID:        uuid.New().String(),
			PayeeID:   payeeID,
			Amount:    total.Int64,
			Status:    models.PayoutStatusPending,
			CreatedAt: now,
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO payouts (id, payee_id, amount, status, external_ref, created_at, paid_at)
			 VALUES (?, ?, ?, ?, '', ?, 0)`,
			payout.ID, payout.PayeeID, payout.Amount, payout.Status, payout.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payout: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE referrals SET payout_id = ?
			 WHERE payee_id = ? AND status = ? AND payout_id = ''`,
			payout.ID, payeeID, models.ReferralStatusPending,
		)
		if err != nil {
			return fmt.Errorf("failed to claim referrals: %w", err)
		}
		claimed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check claim: %w", err)
		}
		if claimed != count {
			return fmt.Errorf("%w: claimed %d of %d referrals", storage.ErrConcurrentModification, claimed, count)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

// FinalizePayout settles a pending payout: referrals flip to paid, the
// payee's balance moves pending -> total, and the payout record is stamped
// paid with the rail reference. One transaction; any guard failure rolls
// back the whole settlement.
func (s *SQLiteStore) FinalizePayout(ctx context.Context, payoutID, externalRef string, paidAt int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		payout, err := scanPayout(tx.QueryRowContext(ctx,
			payoutColumns+` FROM payouts WHERE id = ?`, payoutID,
		))
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: payout %s", storage.ErrNotFound, payoutID)
		}
		if err != nil {
			return fmt.Errorf("failed to get payout: %w", err)
		}
		if payout.Status != models.PayoutStatusPending {
			return fmt.Errorf("%w: payout %s already %s", storage.ErrConcurrentModification, payoutID, payout.Status)
		}

		// The claimed pending set must still cover exactly the recorded
		// amount; anything else means another writer touched the rows.
		var claimedTotal sql.NullInt64
		err = tx.QueryRowContext(ctx,
			`SELECT SUM(commission_amount) FROM referrals WHERE payout_id = ? AND status = ?`,
			payoutID, models.ReferralStatusPending,
		).Scan(&claimedTotal)
		if err != nil {
			return fmt.Errorf("failed to sum claimed referrals: %w", err)
		}
		if claimedTotal.Int64 != payout.Amount {
			return fmt.Errorf("%w: claimed sum %d does not match payout amount %d",
				storage.ErrConcurrentModification, claimedTotal.Int64, payout.Amount)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE referrals SET status = ?, paid_at = ?
			 WHERE payout_id = ? AND status = ?`,
			models.ReferralStatusPaid, paidAt, payoutID, models.ReferralStatusPending,
		)
		if err != nil {
			return fmt.Errorf("failed to mark referrals paid: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE payees
			 SET pending_earnings = pending_earnings - ?, total_earnings = total_earnings + ?
			 WHERE id = ? AND pending_earnings >= ?`,
			payout.Amount, payout.Amount, payout.PayeeID, payout.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to settle payee balance: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check settlement: %w", err)
		}
		if n == 0 {
			// Pending balance does not cover the payout: ledger desync.
			// Roll back and surface it, never clamp.
			return fmt.Errorf("%w: payee %s, amount %d", storage.ErrInsufficientPending, payout.PayeeID, payout.Amount)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE payouts SET status = ?, paid_at = ?, external_ref = ? WHERE id = ?`,
			models.PayoutStatusPaid, paidAt, externalRef, payoutID,
		)
		if err != nil {
			return fmt.Errorf("failed to finalize payout: %w", err)
		}
		return nil
	})
}

const payoutColumns = `SELECT id, payee_id, amount, status, external_ref, created_at, paid_at`

func scanPayout(row *sql.Row) (*models.PayoutRecord, error) {
	p := &models.PayoutRecord{}
	err := row.Scan(&p.ID, &p.PayeeID, &p.Amount, &p.Status, &p.ExternalRef, &p.CreatedAt, &p.PaidAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPayout retrieves a payout record by ID.
func (s *SQLiteStore) GetPayout(ctx context.Context, payoutID string) (*models.PayoutRecord, error) {
	payout, err := scanPayout(s.db.QueryRowContext(ctx,
		payoutColumns+` FROM payouts WHERE id = ?`, payoutID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: payout %s", storage.ErrNotFound, payoutID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return payout, nil
}

// ListPayoutsByPayee returns a payee's payout history, most recent first.
func (s *SQLiteStore) ListPayoutsByPayee(ctx context.Context, payeeID string) ([]*models.PayoutRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		payoutColumns+` FROM payouts WHERE payee_id = ? ORDER BY created_at DESC, id DESC`,
		payeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*models.PayoutRecord
	for rows.Next() {
		p := &models.PayoutRecord{}
		if err := rows.Scan(&p.ID, &p.PayeeID, &p.Amount, &p.Status, &p.ExternalRef, &p.CreatedAt, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payouts: %w", err)
	}
	return payouts, nil
}
