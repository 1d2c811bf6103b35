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

// CreditPending inserts a pending referral and increments the payee's
// pending balance in the same transaction.
func (s *SQLiteStore) CreditPending(ctx context.Context, referral *models.ReferralRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return creditPendingTx(ctx, tx, referral)
	})
}

// creditPendingTx does the two-row write that keeps the referral invariant:
// sum of a payee's pending referrals == payee.pending_earnings.
func creditPendingTx(ctx context.Context, tx *sql.Tx, referral *models.ReferralRecord) error {
	if referral.ID == "" {
		referral.ID = uuid.New().String()
	}
	if referral.CreatedAt == 0 {
		referral.CreatedAt = time.Now().Unix()
	}
	referral.Status = models.ReferralStatusPending
	if referral.CommissionAmount <= 0 {
		return fmt.Errorf("referral commission must be positive, got %d", referral.CommissionAmount)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO referrals (id, payee_id, source_id, commission_amount, pool_period_id, status, payout_id, created_at, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, '', ?, 0)`,
		referral.ID, referral.PayeeID, referral.SourceID, referral.CommissionAmount,
		referral.PoolPeriodID, referral.Status, referral.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert referral: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE payees SET pending_earnings = pending_earnings + ? WHERE id = ?`,
		referral.CommissionAmount, referral.PayeeID,
	)
	if err != nil {
		return fmt.Errorf("failed to credit pending balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check credit: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrPayeeNotFound, referral.PayeeID)
	}
	return nil
}

// ListPendingReferrals returns a payee's unpaid referrals, oldest first.
func (s *SQLiteStore) ListPendingReferrals(ctx context.Context, payeeID string) ([]*models.ReferralRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payee_id, source_id, commission_amount, pool_period_id, status, payout_id, created_at, paid_at
		 FROM referrals WHERE payee_id = ? AND status = ? ORDER BY created_at, id`,
		payeeID, models.ReferralStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending referrals: %w", err)
	}
	defer rows.Close()

	var referrals []*models.ReferralRecord
	for rows.Next() {
		r := &models.ReferralRecord{}
		if err := rows.Scan(&r.ID, &r.PayeeID, &r.SourceID, &r.CommissionAmount,
			&r.PoolPeriodID, &r.Status, &r.PayoutID, &r.CreatedAt, &r.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}
	return referrals, nil
}

// RecordPurchase persists the purchase audit row, credits the promoter and
// venue referrals, and accrues the pool share into the open pool period.
// All in one transaction: a purchase is fully applied or not at all.
func (s *SQLiteStore) RecordPurchase(ctx context.Context, purchase *models.Purchase, referrals []*models.ReferralRecord) error {
	if purchase.ID == "" {
		purchase.ID = uuid.New().String()
	}
	if purchase.CreatedAt == 0 {
		purchase.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO purchases (id, venue_id, promoter_id, amount, promoter_share, pool_share, venue_share, platform_share, split_version, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			purchase.ID, purchase.VenueID, purchase.PromoterID, purchase.Amount,
			purchase.PromoterShare, purchase.PoolShare, purchase.VenueShare,
			purchase.PlatformShare, purchase.SplitVersion, purchase.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert purchase: %w", err)
		}

		for _, referral := range referrals {
			if referral.SourceID == "" {
				referral.SourceID = purchase.ID
			}
			if err := creditPendingTx(ctx, tx, referral); err != nil {
				return err
			}
		}

		if purchase.PoolShare > 0 {
			period, err := openPeriodTx(ctx, tx, purchase.CreatedAt)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				`UPDATE pool_periods SET balance = balance + ? WHERE id = ?`,
				purchase.PoolShare, period.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to accrue pool share: %w", err)
			}
		}
		return nil
	})
}
