// Package models defines the core domain entities for the commission ledger.
//
// # Entities
//
//   - Payee: an affiliate or venue eligible to receive earnings, carrying the
//     pending/total balance pair
//   - ReferralRecord: one commission-bearing event owed to a payee
//   - PayoutRecord: an immutable audit entry for a settlement
//   - Purchase: the split of one incoming payment across all parties
//   - PoolPeriod: a weekly accounting window for the pooled fund
//   - Operator: an admin user allowed to trigger payouts
//
// # Money
//
// All amounts are int64 cents. Floating point is never used for money;
// split and distribution math round explicitly and account for every cent.
//
// # Status fields
//
// Statuses are closed typed-string enums with explicit transition rules
// (see ReferralStatus, PayoutStatus, PayeeStatus, PoolPeriodStatus) so an
// invalid state can never be written. A referral moves pending -> paid and
// nothing else; paid is terminal.
package models
