package calculator

import (
	"math"
	"math/big"
	"testing"

	"github.com/venuepulse/ledger/internal/models"
)

func TestDistributePool(t *testing.T) {
	tests := []struct {
		name         string
		balance      int64
		checkins     []models.VenueCheckins
		validateFunc func(t *testing.T, dist PoolDistribution)
	}{
		{
			name:    "proportional 10/30/60",
			balance: 100000, // $1000.00
			checkins: []models.VenueCheckins{
				{VenueID: "venue-a", Checkins: 10},
				{VenueID: "venue-b", Checkins: 30},
				{VenueID: "venue-c", Checkins: 60},
			},
			validateFunc: func(t *testing.T, dist PoolDistribution) {
				want := map[string]int64{"venue-a": 10000, "venue-b": 30000, "venue-c": 60000}
				if len(dist.Shares) != len(want) {
					t.Fatalf("got %d shares, want %d", len(dist.Shares), len(want))
				}
				for _, s := range dist.Shares {
					if s.Amount != want[s.VenueID] {
						t.Errorf("%s share = %d, want %d", s.VenueID, s.Amount, want[s.VenueID])
					}
				}
				if dist.Remainder != 0 {
					t.Errorf("remainder = %d, want 0", dist.Remainder)
				}
			},
		},
		{
			name:    "all-zero check-ins carries full balance",
			balance: 100000,
			checkins: []models.VenueCheckins{
				{VenueID: "venue-a", Checkins: 0},
				{VenueID: "venue-b", Checkins: 0},
			},
			validateFunc: func(t *testing.T, dist PoolDistribution) {
				if len(dist.Shares) != 0 {
					t.Errorf("got %d shares, want none", len(dist.Shares))
				}
				if dist.Remainder != 100000 {
					t.Errorf("remainder = %d, want full balance 100000", dist.Remainder)
				}
			},
		},
		{
			name:     "no venues at all carries full balance",
			balance:  5000,
			checkins: nil,
			validateFunc: func(t *testing.T, dist PoolDistribution) {
				if dist.Remainder != 5000 {
					t.Errorf("remainder = %d, want 5000", dist.Remainder)
				}
			},
		},
		{
			name:    "flooring leaves remainder, nothing created",
			balance: 100,
			checkins: []models.VenueCheckins{
				{VenueID: "venue-a", Checkins: 1},
				{VenueID: "venue-b", Checkins: 1},
				{VenueID: "venue-c", Checkins: 1},
			},
			validateFunc: func(t *testing.T, dist PoolDistribution) {
				// 100 / 3 = 33 each, 1 cent left over.
				if dist.Distributed() != 99 {
					t.Errorf("distributed = %d, want 99", dist.Distributed())
				}
				if dist.Remainder != 1 {
					t.Errorf("remainder = %d, want 1", dist.Remainder)
				}
			},
		},
		{
			name:    "huge balance times check-ins does not overflow",
			balance: math.MaxInt64 - 3,
			checkins: []models.VenueCheckins{
				{VenueID: "venue-a", Checkins: 1_000_000_000},
				{VenueID: "venue-b", Checkins: 2_000_000_000},
			},
			validateFunc: func(t *testing.T, dist PoolDistribution) {
				for _, s := range dist.Shares {
					if s.Amount <= 0 {
						t.Errorf("%s share = %d, overflowed", s.VenueID, s.Amount)
					}
				}
				wantA := new(big.Int).Mul(big.NewInt(math.MaxInt64-3), big.NewInt(1_000_000_000))
				wantA.Div(wantA, big.NewInt(3_000_000_000))
				if dist.Shares[0].Amount != wantA.Int64() {
					t.Errorf("venue-a share = %d, want %d", dist.Shares[0].Amount, wantA.Int64())
				}
			},
		},
		{
			name:    "zero-checkin venue excluded",
			balance: 1000,
			checkins: []models.VenueCheckins{
				{VenueID: "venue-a", Checkins: 4},
				{VenueID: "venue-b", Checkins: 0},
				{VenueID: "venue-c", Checkins: 1},
			},
			validateFunc: func(t *testing.T, dist PoolDistribution) {
				for _, s := range dist.Shares {
					if s.VenueID == "venue-b" {
						t.Errorf("venue-b with zero check-ins got a share of %d", s.Amount)
					}
				}
				if dist.Distributed()+dist.Remainder != 1000 {
					t.Errorf("distributed %d + remainder %d != 1000", dist.Distributed(), dist.Remainder)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist := DistributePool(tt.balance, tt.checkins)
			if dist.Distributed()+dist.Remainder != tt.balance {
				t.Errorf("conservation violated: distributed %d + remainder %d != balance %d",
					dist.Distributed(), dist.Remainder, tt.balance)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, dist)
			}
		})
	}
}
