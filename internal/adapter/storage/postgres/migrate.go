package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Schema for the four ledger collections. Balance non-negativity for
// merchants and clients and amount positivity for transactions are
// enforced at the store level as the last line of defense; the transfer
// engine checks them first.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id UUID PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		credential_hash TEXT NOT NULL,
		balance BIGINT NOT NULL CHECK (balance >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// Caps admins at one row. The guarded insert alone is not enough:
	// under READ COMMITTED two concurrent inserts with different
	// usernames each see an empty table and both pass NOT EXISTS; the
	// second commit must trip a unique violation instead.
	`CREATE UNIQUE INDEX IF NOT EXISTS admins_singleton ON admins ((true))`,
	`CREATE TABLE IF NOT EXISTS merchants (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		wallet_id UUID UNIQUE NOT NULL,
		balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		merchant_id UUID NOT NULL REFERENCES merchants(id),
		balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		admin_id UUID REFERENCES admins(id),
		merchant_id UUID REFERENCES merchants(id),
		client_id UUID REFERENCES clients(id),
		kind TEXT NOT NULL,
		amount BIGINT NOT NULL CHECK (amount > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_merchant ON transactions (merchant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_client ON transactions (client_id)`,
}

// Migrate provisions the ledger schema. It is invoked explicitly by
// deployment tooling (cmd/ledger migrate), not on the runtime path.
func Migrate(ctx context.Context, pool Pool, log zerolog.Logger) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying migration: %w", err)
		}
	}
	log.Info().Int("statements", len(migrations)).Msg("ledger schema provisioned")
	return nil
}
