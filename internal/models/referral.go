package models

// ReferralStatus is the settlement state of a referral record.
type ReferralStatus string

const (
	// ReferralStatusPending is the initial state: commission owed, unpaid.
	ReferralStatusPending ReferralStatus = "pending"

	// ReferralStatusPaid is terminal. A paid referral is immutable.
	ReferralStatusPaid ReferralStatus = "paid"
)

// Valid reports whether s is a known referral status.
func (s ReferralStatus) Valid() bool {
	return s == ReferralStatusPending || s == ReferralStatusPaid
}

// CanTransitionTo reports whether the status may move to next.
// The only legal transition is pending -> paid.
func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	return s == ReferralStatusPending && next == ReferralStatusPaid
}

// ReferralRecord is one commission-bearing event owed to exactly one payee.
//
// Invariant: the sum of CommissionAmount over a payee's pending referrals
// equals that payee's PendingEarnings. The sqlite store maintains this by
// writing referral rows and the payee balance in the same transaction.
type ReferralRecord struct {
	// ID is the unique identifier for the referral (UUID format).
	ID string

	// PayeeID is the payee this commission is owed to.
	PayeeID string

	// SourceID references what earned the commission: a purchase ID for
	// promoter/venue shares, or a pool period ID for pool distributions.
	SourceID string

	// CommissionAmount is the amount owed, in cents. Always > 0.
	CommissionAmount int64

	// PoolPeriodID tags referrals created by a pool distribution with the
	// period they came from, for auditability. Empty for purchase referrals.
	PoolPeriodID string

	Status ReferralStatus

	// PayoutID links the referral to the payout that settled (or is
	// settling) it. Empty while unclaimed.
	PayoutID string

	// CreatedAt is the Unix timestamp when the referral was recorded.
	CreatedAt int64

	// PaidAt is set iff Status is paid.
	PaidAt int64
}
