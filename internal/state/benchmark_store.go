// ./internal/state/benchmark_store.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wind-network/wind/internal/logger"
	"github.com/wind-network/wind/internal/types"
)

// PostgresBenchmarkStore keeps the reference price pair in the single-row
// price_benchmarks table. Both columns are written in one statement, so a
// reader can never see a SOL benchmark from one update paired with a BTC
// benchmark from another.
type PostgresBenchmarkStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPostgresBenchmarkStore wires a benchmark store onto an initialized pool.
func NewPostgresBenchmarkStore(db *sql.DB) *PostgresBenchmarkStore {
	return &PostgresBenchmarkStore{
		db:     db,
		logger: logger.GetForComponent("benchmark_store"),
	}
}

// Get returns [SOL, BTC] benchmarks, or an empty slice when unset.
func (s *PostgresBenchmarkStore) Get(ctx context.Context) ([]types.Benchmark, error) {
	query := `SELECT sol_value, btc_value FROM price_benchmarks WHERE id = 1;`

	var solValue, btcValue float64
	err := s.db.QueryRowContext(ctx, query).Scan(&solValue, &btcValue)
	if err != nil {
		if err == sql.ErrNoRows {
			return []types.Benchmark{}, nil
		}
		return nil, fmt.Errorf("failed to read benchmarks: %w", err)
	}

	return benchmarkPair(solValue, btcValue), nil
}

// Set validates and stores both reference prices as one atomic dual update.
func (s *PostgresBenchmarkStore) Set(ctx context.Context, solValue, btcValue float64) ([]types.Benchmark, error) {
	if err := validatePricePair(solValue, btcValue); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO price_benchmarks (id, sol_value, btc_value, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET sol_value = EXCLUDED.sol_value,
		    btc_value = EXCLUDED.btc_value,
		    updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.db.ExecContext(ctx, query, solValue, btcValue, time.Now().UnixNano()); err != nil {
		return nil, fmt.Errorf("failed to store benchmarks: %w", err)
	}

	s.logger.Info().
		Float64("solValue", solValue).
		Float64("btcValue", btcValue).
		Msg("Benchmarks updated")

	return benchmarkPair(solValue, btcValue), nil
}

// benchmarkPair builds the ordered SOL-then-BTC read shape.
func benchmarkPair(solValue, btcValue float64) []types.Benchmark {
	return []types.Benchmark{
		{Symbol: types.SymbolSOL, Value: solValue},
		{Symbol: types.SymbolBTC, Value: btcValue},
	}
}
