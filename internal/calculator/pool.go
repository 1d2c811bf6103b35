package calculator

import (
	"math"
	"math/big"
	"sort"

	"github.com/venuepulse/ledger/internal/models"
)

// PoolShare is one venue's slice of a pool distribution.
type PoolShare struct {
	VenueID string
	Amount  int64 // cents
}

// PoolDistribution is the result of dividing a period's balance.
type PoolDistribution struct {
	Shares []PoolShare

	// Remainder is what could not be distributed in whole cents (or the
	// full balance when no venue had check-ins). It carries into the next
	// period; it is never silently dropped.
	Remainder int64

	// TotalCheckins across all venues, zero when the period had no
	// verified activity.
	TotalCheckins int64
}

// Distributed returns the sum of all venue shares.
func (d PoolDistribution) Distributed() int64 {
	var total int64
	for _, s := range d.Shares {
		total += s.Amount
	}
	return total
}

// DistributePool divides balance (cents) across venues proportional to
// verified check-ins: share = balance * venue_checkins / total_checkins,
// floored to whole cents. Venues with zero check-ins get nothing and no
// share entry. Leftover cents from flooring stay in Remainder.
//
// When total check-ins are zero the whole balance is returned as Remainder:
// the pool fails closed and carries forward instead of distributing
// arbitrarily.
func DistributePool(balance int64, checkins []models.VenueCheckins) PoolDistribution {
	dist := PoolDistribution{}
	for _, vc := range checkins {
		if vc.Checkins > 0 {
			dist.TotalCheckins += vc.Checkins
		}
	}
	if dist.TotalCheckins == 0 || balance <= 0 {
		dist.Remainder = balance
		return dist
	}

	// Deterministic order regardless of input order.
	sorted := make([]models.VenueCheckins, len(checkins))
	copy(sorted, checkins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VenueID < sorted[j].VenueID })

	var distributed int64
	for _, vc := range sorted {
		if vc.Checkins <= 0 {
			continue
		}
		share := flooredShare(balance, vc.Checkins, dist.TotalCheckins)
		if share == 0 {
			continue
		}
		dist.Shares = append(dist.Shares, PoolShare{VenueID: vc.VenueID, Amount: share})
		distributed += share
	}
	dist.Remainder = balance - distributed
	return dist
}

// flooredShare computes balance * checkins / total without the
// intermediate product overflowing int64. The result is at most balance,
// so it always fits.
func flooredShare(balance, checkins, total int64) int64 {
	if balance <= math.MaxInt64/checkins {
		return balance * checkins / total
	}
	share := new(big.Int).Mul(big.NewInt(balance), big.NewInt(checkins))
	share.Div(share, big.NewInt(total))
	return share.Int64()
}
