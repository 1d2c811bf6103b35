package models

// PayeeKind distinguishes the two kinds of commission recipients.
type PayeeKind string

const (
	PayeeKindAffiliate PayeeKind = "affiliate"
	PayeeKindVenue     PayeeKind = "venue"
)

// Valid reports whether k is a known payee kind.
func (k PayeeKind) Valid() bool {
	return k == PayeeKindAffiliate || k == PayeeKindVenue
}

// PayeeStatus is the review state of a payee.
type PayeeStatus string

const (
	// PayeeStatusPendingReview is the initial state after onboarding.
	// Payees in review accrue pending earnings but cannot be paid out.
	PayeeStatusPendingReview PayeeStatus = "pending_review"

	// PayeeStatusApproved allows payouts.
	PayeeStatusApproved PayeeStatus = "approved"
)

// Valid reports whether s is a known payee status.
func (s PayeeStatus) Valid() bool {
	return s == PayeeStatusPendingReview || s == PayeeStatusApproved
}

// Payee represents an affiliate or venue eligible to receive earnings.
//
// PendingEarnings and TotalEarnings are both cents and both >= 0 at all
// times. The only operation that decreases PendingEarnings is a settlement,
// which increases TotalEarnings by exactly the same amount.
type Payee struct {
	// ID is the unique identifier for the payee (UUID format).
	ID string

	// Kind is affiliate or venue.
	Kind PayeeKind

	// DisplayName is the human-readable name shown in the admin UI.
	DisplayName string

	// PayoutDestination is where funds are sent: a PayPal email or a bank
	// endpoint reference. The ledger records it but never calls it directly.
	PayoutDestination string

	// PendingEarnings is commission owed but not yet disbursed, in cents.
	PendingEarnings int64

	// TotalEarnings is lifetime commission actually paid out, in cents.
	TotalEarnings int64

	// Status gates payouts: only approved payees can be settled.
	Status PayeeStatus

	// CreatedAt is the Unix timestamp when the payee was onboarded.
	CreatedAt int64
}
