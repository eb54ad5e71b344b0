package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Migrate applies the schema idempotently. The dialect differences are the
// auto-increment primary key spelling and the time column type: sqlite only
// treats TIMESTAMP as a time declared-type, so TIMESTAMPTZ columns would
// come back as plain text and fail the time.Time scan.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	tstamp := "TIMESTAMP"
	if db.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
		tstamp = "TIMESTAMPTZ"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + serial + `,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at ` + tstamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at ` + tstamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			stock BIGINT NOT NULL DEFAULT 0,
			barcode TEXT UNIQUE,
			category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
			image_url TEXT,
			created_at ` + tstamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at ` + tstamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			total_amount DOUBLE PRECISION NOT NULL,
			payment_amount DOUBLE PRECISION NOT NULL,
			change_amount DOUBLE PRECISION NOT NULL,
			discount DOUBLE PRECISION NOT NULL DEFAULT 0,
			payment_method TEXT NOT NULL DEFAULT 'cash',
			cashier_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
			created_at ` + tstamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transaction_items (
			id ` + serial + `,
			transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			price_at_sale DOUBLE PRECISION NOT NULL,
			cost_price_at_sale DOUBLE PRECISION NOT NULL DEFAULT 0,
			quantity BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id ` + serial + `,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL UNIQUE,
			expires_at ` + tstamp + ` NOT NULL,
			created_at ` + tstamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transaction_items_tx ON transaction_items (transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens (user_id)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
