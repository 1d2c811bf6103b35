package models

// Operator is an admin user allowed to onboard payees, record purchases and
// trigger payouts. Authentication lives in internal/auth; this is only the
// stored shape.
type Operator struct {
	// ID is the unique identifier for the operator (UUID format).
	ID string

	// Email is the login identifier, unique.
	Email string

	// DisplayName is shown in audit logs.
	DisplayName string

	// PasswordHash is the bcrypt hash of the operator's password.
	// Never serialized out of the storage layer.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the operator registered.
	CreatedAt int64
}
