// ./internal/state/profile_store.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wind-network/wind/internal/types"
)

// PostgresProfileStore keeps name and wallet per caller principal.
type PostgresProfileStore struct {
	db *sql.DB
}

// NewPostgresProfileStore wires a profile store onto an initialized pool.
func NewPostgresProfileStore(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

// Get returns the profile for a principal, or nil when none exists.
func (s *PostgresProfileStore) Get(ctx context.Context, principal types.Principal) (*types.UserProfile, error) {
	query := `SELECT name, wallet FROM user_profiles WHERE principal = $1;`

	var profile types.UserProfile
	err := s.db.QueryRowContext(ctx, query, string(principal)).Scan(&profile.Name, &profile.Wallet)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile for %q: %w", principal, err)
	}
	return &profile, nil
}

// Save upserts the profile for a principal.
func (s *PostgresProfileStore) Save(ctx context.Context, principal types.Principal, profile types.UserProfile) error {
	query := `
		INSERT INTO user_profiles (principal, name, wallet, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (principal) DO UPDATE
		SET name = EXCLUDED.name,
		    wallet = EXCLUDED.wallet,
		    updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.db.ExecContext(ctx, query, string(principal), profile.Name, profile.Wallet, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to save profile for %q: %w", principal, err)
	}
	return nil
}
