// Landgrid | 2026
// schema.go

package ledger

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema statements are written in the dialect intersection of sqlite and
// postgres: TEXT for hex identifiers and decimal amounts, BIGINT
// counters, explicit timestamps set by the application.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS genesis (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		deployer   TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS counters (
		name  TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		seq         BIGINT PRIMARY KEY,
		kind        TEXT NOT NULL,
		payload     TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS role_members (
		role    TEXT NOT NULL,
		account TEXT NOT NULL,
		PRIMARY KEY (role, account)
	)`,
	`CREATE TABLE IF NOT EXISTS role_admins (
		role       TEXT PRIMARY KEY,
		admin_role TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parcels (
		id             BIGINT PRIMARY KEY,
		owner          TEXT NOT NULL,
		residence_type INTEGER NOT NULL,
		minted_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS registry_config (
		id             INTEGER PRIMARY KEY CHECK (id = 1),
		base_uri       TEXT NOT NULL,
		transfer_fee   TEXT NOT NULL,
		paused         INTEGER NOT NULL,
		collected_fees TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS residence_tiers (
		residence_type INTEGER PRIMARY KEY,
		limit_count    BIGINT,
		sold_count     BIGINT NOT NULL DEFAULT 0,
		native_price   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS token_prices (
		currency       TEXT NOT NULL,
		residence_type INTEGER NOT NULL,
		price          TEXT NOT NULL,
		PRIMARY KEY (currency, residence_type)
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id             TEXT PRIMARY KEY,
		buyer          TEXT NOT NULL,
		amount         INTEGER NOT NULL,
		residence_type INTEGER NOT NULL,
		minted_ids     TEXT NOT NULL,
		referral_code  BIGINT NOT NULL,
		total_paid     TEXT NOT NULL,
		currency       TEXT NOT NULL,
		recorded_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settlements (
		id          TEXT PRIMARY KEY,
		payer       TEXT NOT NULL,
		recipient   TEXT NOT NULL,
		currency    TEXT NOT NULL,
		amount      TEXT NOT NULL,
		reason      TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS token_supply (
		id    INTEGER PRIMARY KEY CHECK (id = 1),
		total TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS token_balances (
		account TEXT PRIMARY KEY,
		balance TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS token_allowances (
		owner   TEXT NOT NULL,
		spender TEXT NOT NULL,
		amount  TEXT NOT NULL,
		PRIMARY KEY (owner, spender)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_parcels_owner ON parcels (owner)`,
	`CREATE INDEX IF NOT EXISTS idx_events_kind ON events (kind)`,
	// Seeded singletons; setters update them in place.
	`INSERT INTO registry_config (id, base_uri, transfer_fee, paused, collected_fees)
		VALUES (1, '', '0', 0, '0')
		ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO token_supply (id, total) VALUES (1, '0')
		ON CONFLICT (id) DO NOTHING`,
}

// Migrate applies the schema idempotently. There is no version ladder
// yet; every statement is safe to re-run.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
