package models

// Purchase records how one incoming payment was split. It is a pure audit
// row: the referral records and pool balance created from it carry the
// actual ledger state.
//
// Invariant: PromoterShare + PoolShare + VenueShare + PlatformShare ==
// Amount, exactly.
type Purchase struct {
	// ID is the unique identifier for the purchase (UUID format).
	ID string

	// VenueID is the venue where the purchase happened.
	VenueID string

	// PromoterID is the affiliate who referred the sale, empty when the
	// purchase had no promoter.
	PromoterID string

	// Amount is the full transaction value in cents.
	Amount int64

	// The four shares, in cents.
	PromoterShare int64
	PoolShare     int64
	VenueShare    int64
	PlatformShare int64

	// SplitVersion is the version of the split configuration used, so
	// historical purchases can be replayed against the rule in effect at
	// the time.
	SplitVersion int

	// CreatedAt is the Unix timestamp when the purchase was recorded.
	CreatedAt int64
}
