// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB opens and verifies a database connection pool. The pool is returned
// to the caller; stores receive it by reference.
func InitDB(cfg DBConfig) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return db, nil
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		-- Single-row table: the one current price snapshot. The full row is
		-- replaced on every accepted update so both prices always move together.
		CREATE TABLE IF NOT EXISTS price_snapshot (
			id INTEGER PRIMARY KEY DEFAULT 1,
			sol_price DOUBLE PRECISION NOT NULL,
			btc_price DOUBLE PRECISION NOT NULL,
			ts BIGINT NOT NULL,
			CONSTRAINT price_snapshot_single_row CHECK (id = 1)
		);

		-- Single-row table: the benchmark pair. Both columns are NOT NULL so a
		-- partial benchmark cannot exist.
		CREATE TABLE IF NOT EXISTS price_benchmarks (
			id INTEGER PRIMARY KEY DEFAULT 1,
			sol_value DOUBLE PRECISION NOT NULL,
			btc_value DOUBLE PRECISION NOT NULL,
			updated_at BIGINT NOT NULL,
			CONSTRAINT price_benchmarks_single_row CHECK (id = 1)
		);

		-- Append-only reward ledger. seq fixes insertion order; rows are never
		-- updated or deleted.
		CREATE TABLE IF NOT EXISTS reward_events (
			seq BIGSERIAL PRIMARY KEY,
			event_id UUID NOT NULL UNIQUE,
			recipient TEXT NOT NULL,
			amount NUMERIC(38, 18) NOT NULL,
			trigger_condition TEXT NOT NULL,
			ts BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reward_events_ts ON reward_events(ts);

		CREATE TABLE IF NOT EXISTS user_profiles (
			principal TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			wallet TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// NewPostgresStores bundles the Postgres-backed store set.
func NewPostgresStores(db *sql.DB) Stores {
	return Stores{
		Prices:     NewPostgresPriceStore(db),
		Benchmarks: NewPostgresBenchmarkStore(db),
		Rewards:    NewPostgresRewardLedger(db),
		Profiles:   NewPostgresProfileStore(db),
	}
}

// CheckConnection tests if the database connection is healthy.
func CheckConnection(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
