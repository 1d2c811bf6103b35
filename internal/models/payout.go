package models

// PayoutStatus is the state of a payout record.
type PayoutStatus string

const (
	// PayoutStatusPending means the payout intent is recorded but the
	// ledger-side settlement has not been finalized. A payout stays pending
	// if the external rail call fails, so it can be retried or reconciled.
	PayoutStatusPending PayoutStatus = "pending"

	// PayoutStatusPaid means the referrals are marked paid and the payee
	// balance has moved from pending to total. Terminal.
	PayoutStatusPaid PayoutStatus = "paid"
)

// Valid reports whether s is a known payout status.
func (s PayoutStatus) Valid() bool {
	return s == PayoutStatusPending || s == PayoutStatusPaid
}

// PayoutRecord is an immutable audit entry for one settlement. Rows are
// append-only; the only mutation ever applied is the pending -> paid
// transition together with stamping PaidAt and ExternalRef.
type PayoutRecord struct {
	// ID is the unique identifier for the payout (UUID format). It doubles
	// as the idempotency reference passed to the external payment rail.
	ID string

	// PayeeID is the payee being paid.
	PayeeID string

	// Amount is the settled amount in cents: the sum of the pending
	// referrals claimed by this payout.
	Amount int64

	Status PayoutStatus

	// ExternalRef is the transaction ID assigned by the bank/PayPal rail.
	// Empty until the rail confirms.
	ExternalRef string

	// CreatedAt is the Unix timestamp when the payout intent was recorded.
	CreatedAt int64

	// PaidAt is set iff Status is paid.
	PaidAt int64
}
