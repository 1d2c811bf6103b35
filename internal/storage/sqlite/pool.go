package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/venuepulse/ledger/internal/models"
	"github.com/venuepulse/ledger/internal/storage"
)

// GetOpenPoolPeriod returns the currently open pool period, creating it if
// none exists yet.
func (s *SQLiteStore) GetOpenPoolPeriod(ctx context.Context, now int64) (*models.PoolPeriod, error) {
	var period *models.PoolPeriod
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		period, err = openPeriodTx(ctx, tx, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return period, nil
}

// openPeriodTx fetches the open period inside tx, inserting a fresh one
// when the ledger has never had a period (or the previous one just closed
// outside this path, which does not happen in practice).
func openPeriodTx(ctx context.Context, tx *sql.Tx, now int64) (*models.PoolPeriod, error) {
	period := &models.PoolPeriod{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, period_start, period_end, balance, status, distributed_at
		 FROM pool_periods WHERE status = ?`,
		models.PoolPeriodStatusOpen,
	).Scan(&period.ID, &period.PeriodStart, &period.PeriodEnd, &period.Balance, &period.Status, &period.DistributedAt)
	if err == nil {
		return period, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get open pool period: %w", err)
	}

	period = &models.PoolPeriod{
		ID:          uuid.New().String(),
		PeriodStart: now,
		Status:      models.PoolPeriodStatusOpen,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO pool_periods (id, period_start, period_end, balance, status, distributed_at)
		 VALUES (?, ?, 0, 0, ?, 0)`,
		period.ID, period.PeriodStart, period.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool period: %w", err)
	}
	return period, nil
}

// RecordCheckin increments a venue's verified check-in count in the open
// pool period.
func (s *SQLiteStore) RecordCheckin(ctx context.Context, venueID string, now int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		period, err := openPeriodTx(ctx, tx, now)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pool_checkins (period_id, venue_id, checkins) VALUES (?, ?, 1)
			 ON CONFLICT (period_id, venue_id) DO UPDATE SET checkins = checkins + 1`,
			period.ID, venueID,
		)
		if err != nil {
			return fmt.Errorf("failed to record checkin: %w", err)
		}
		return nil
	})
}

// ListPeriodCheckins returns per-venue verified check-in counts for a period.
func (s *SQLiteStore) ListPeriodCheckins(ctx context.Context, periodID string) ([]models.VenueCheckins, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT venue_id, checkins FROM pool_checkins WHERE period_id = ? ORDER BY venue_id`,
		periodID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkins: %w", err)
	}
	defer rows.Close()

	var checkins []models.VenueCheckins
	for rows.Next() {
		var vc models.VenueCheckins
		if err := rows.Scan(&vc.VenueID, &vc.Checkins); err != nil {
			return nil, fmt.Errorf("failed to scan checkin: %w", err)
		}
		checkins = append(checkins, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkins: %w", err)
	}
	return checkins, nil
}

// ApplyPoolDistribution closes the period, credits each venue's share as a
// pending referral tagged with the period, and opens the next period seeded
// with the remainder. The expectedBalance guard makes the whole run an
// optimistic transaction: if a purchase accrued into the period after the
// caller read it, nothing is applied.
//
// A credit for a venue that was deleted since its check-ins were counted
// is skipped and its amount carried into the next period; the skipped
// credits are returned. The close itself always goes through.
func (s *SQLiteStore) ApplyPoolDistribution(ctx context.Context, periodID string, expectedBalance int64, credits []storage.PoolCredit, remainder int64, now int64) ([]storage.PoolCredit, error) {
	closedStatus := models.PoolPeriodStatusDistributed
	if len(credits) == 0 {
		closedStatus = models.PoolPeriodStatusCarried
	}

	var skipped []storage.PoolCredit
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// The closed period's balance drops to zero: every cent either
		// became a venue credit or moved into the next period.
		res, err := tx.ExecContext(ctx,
			`UPDATE pool_periods SET status = ?, period_end = ?, distributed_at = ?, balance = 0
			 WHERE id = ? AND status = ? AND balance = ?`,
			closedStatus, now, now,
			periodID, models.PoolPeriodStatusOpen, expectedBalance,
		)
		if err != nil {
			return fmt.Errorf("failed to close pool period: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check period close: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: pool period %s moved since it was read", storage.ErrConcurrentModification, periodID)
		}

		carried := remainder
		for _, credit := range credits {
			if _, err := getPayee(ctx, tx, credit.VenueID); err != nil {
				if errors.Is(err, storage.ErrPayeeNotFound) {
					skipped = append(skipped, credit)
					carried += credit.Amount
					continue
				}
				return err
			}
			referral := &models.ReferralRecord{
				PayeeID:          credit.VenueID,
				SourceID:         periodID,
				CommissionAmount: credit.Amount,
				PoolPeriodID:     periodID,
				CreatedAt:        now,
			}
			if err := creditPendingTx(ctx, tx, referral); err != nil {
				return err
			}
		}

		if len(credits) > 0 && len(skipped) == len(credits) {
			// Every venue vanished; the close is a carry after all.
			_, err = tx.ExecContext(ctx,
				`UPDATE pool_periods SET status = ? WHERE id = ?`,
				models.PoolPeriodStatusCarried, periodID,
			)
			if err != nil {
				return fmt.Errorf("failed to mark period carried: %w", err)
			}
		}

		// Next period opens with the undistributed remainder.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pool_periods (id, period_start, period_end, balance, status, distributed_at)
			 VALUES (?, ?, 0, ?, ?, 0)`,
			uuid.New().String(), now, carried, models.PoolPeriodStatusOpen,
		)
		if err != nil {
			return fmt.Errorf("failed to open next pool period: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skipped, nil
}
