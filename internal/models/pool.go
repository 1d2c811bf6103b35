package models

// PoolPeriodStatus is the lifecycle state of a weekly pool window.
type PoolPeriodStatus string

const (
	// PoolPeriodStatusOpen means the period is accruing pool shares.
	// Exactly one period is open at a time.
	PoolPeriodStatusOpen PoolPeriodStatus = "open"

	// PoolPeriodStatusDistributed means the balance was split across venues
	// with verified check-ins. Terminal.
	PoolPeriodStatusDistributed PoolPeriodStatus = "distributed"

	// PoolPeriodStatusCarried means no venue had check-ins, so the whole
	// balance rolled into the next period. Terminal.
	PoolPeriodStatusCarried PoolPeriodStatus = "carried"
)

// Valid reports whether s is a known pool period status.
func (s PoolPeriodStatus) Valid() bool {
	switch s {
	case PoolPeriodStatusOpen, PoolPeriodStatusDistributed, PoolPeriodStatusCarried:
		return true
	}
	return false
}

// PoolPeriod is a weekly accounting window for the pooled fund.
//
// The open period accrues the pool share of every purchase. Closing a period
// distributes its balance across venues proportional to verified check-ins
// and opens the next period, seeded with any undistributed remainder.
type PoolPeriod struct {
	// ID is the unique identifier for the period (UUID format).
	ID string

	// PeriodStart and PeriodEnd are Unix timestamps bounding the window.
	// PeriodEnd is zero while the period is open.
	PeriodStart int64
	PeriodEnd   int64

	// Balance is the undistributed pool amount in cents.
	Balance int64

	Status PoolPeriodStatus

	// DistributedAt is the Unix timestamp of the distribution run, set when
	// the period leaves the open state.
	DistributedAt int64
}

// VenueCheckins is the verified check-in count for one venue in a period.
type VenueCheckins struct {
	VenueID  string
	Checkins int64
}
