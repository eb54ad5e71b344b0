// Package store opens the relational backend and applies the schema.
// Two drivers are supported, selected once at startup: postgres (lib/pq)
// and sqlite (modernc.org/sqlite, pure Go). Repositories are written
// against sqlx with '?' placeholders and rebind per driver, so both
// backends share one implementation.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/retail-pos/internal/config"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open connects to the configured database and verifies the connection.
func Open(cfg config.Config) (*sqlx.DB, error) {
	var driver, dsn string
	switch cfg.DBDriver {
	case config.DriverPostgres:
		driver = "postgres"
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBSSLMode)
	case config.DriverSQLite:
		driver = "sqlite"
		// busy_timeout keeps concurrent writers queueing instead of failing,
		// foreign_keys enforces the transaction_items -> transactions link,
		// and _time_format=sqlite stores time.Time values in the text form
		// that SQLite's strftime and comparison operators understand.
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite", cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
