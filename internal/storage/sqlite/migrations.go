package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: payees must be created before referrals and payouts due to
// foreign key constraints, and pool_periods before pool_checkins.
const schema = `
CREATE TABLE IF NOT EXISTS payees (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL CHECK (kind IN ('affiliate', 'venue')),
    display_name TEXT NOT NULL,
    payout_destination TEXT NOT NULL,
    pending_earnings INTEGER NOT NULL DEFAULT 0 CHECK (pending_earnings >= 0),
    total_earnings INTEGER NOT NULL DEFAULT 0 CHECK (total_earnings >= 0),
    status TEXT NOT NULL CHECK (status IN ('pending_review', 'approved')),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS payouts (
    id TEXT PRIMARY KEY,
    payee_id TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    status TEXT NOT NULL CHECK (status IN ('pending', 'paid')),
    external_ref TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    paid_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (payee_id) REFERENCES payees(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS referrals (
    id TEXT PRIMARY KEY,
    payee_id TEXT NOT NULL,
    source_id TEXT NOT NULL,
    commission_amount INTEGER NOT NULL CHECK (commission_amount > 0),
    pool_period_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK (status IN ('pending', 'paid')),
    payout_id TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    paid_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (payee_id) REFERENCES payees(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS purchases (
    id TEXT PRIMARY KEY,
    venue_id TEXT NOT NULL,
    promoter_id TEXT NOT NULL DEFAULT '',
    amount INTEGER NOT NULL CHECK (amount > 0),
    promoter_share INTEGER NOT NULL,
    pool_share INTEGER NOT NULL,
    venue_share INTEGER NOT NULL,
    platform_share INTEGER NOT NULL,
    split_version INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    CHECK (promoter_share + pool_share + venue_share + platform_share = amount)
);

CREATE TABLE IF NOT EXISTS pool_periods (
    id TEXT PRIMARY KEY,
    period_start INTEGER NOT NULL,
    period_end INTEGER NOT NULL DEFAULT 0,
    balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
    status TEXT NOT NULL CHECK (status IN ('open', 'distributed', 'carried')),
    distributed_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pool_checkins (
    period_id TEXT NOT NULL,
    venue_id TEXT NOT NULL,
    checkins INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (period_id, venue_id),
    FOREIGN KEY (period_id) REFERENCES pool_periods(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS operators (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_referrals_payee_status ON referrals(payee_id, status);
CREATE INDEX IF NOT EXISTS idx_referrals_payout_id ON referrals(payout_id);
CREATE INDEX IF NOT EXISTS idx_payouts_payee_id ON payouts(payee_id, created_at);
CREATE INDEX IF NOT EXISTS idx_pool_periods_status ON pool_periods(status);
CREATE INDEX IF NOT EXISTS idx_purchases_venue_id ON purchases(venue_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
