// ./internal/state/price_store.go
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

// PostgresPriceStore keeps the current price snapshot in the single-row
// price_snapshot table. The upsert replaces the whole row, so the SOL and BTC
// prices always change together.
type PostgresPriceStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPostgresPriceStore wires a price store onto an initialized pool.
func NewPostgresPriceStore(db *sql.DB) *PostgresPriceStore {
	return &PostgresPriceStore{
		db:     db,
		logger: logger.GetForComponent("price_store"),
	}
}

// Get returns the current snapshot, or nil when no price has been set yet.
func (s *PostgresPriceStore) Get(ctx context.Context) (*types.PricePair, error) {
	query := `SELECT sol_price, btc_price, ts FROM price_snapshot WHERE id = 1;`

	var pair types.PricePair
	err := s.db.QueryRowContext(ctx, query).Scan(&pair.SolPrice, &pair.BtcPrice, &pair.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read price snapshot: %w", err)
	}
	return &pair, nil
}

// Set validates the pair, stamps the server instant, and atomically replaces
// the snapshot.
func (s *PostgresPriceStore) Set(ctx context.Context, solPrice, btcPrice float64) (types.PricePair, error) {
	if err := validatePricePair(solPrice, btcPrice); err != nil {
		return types.PricePair{}, err
	}

	pair := types.PricePair{
		SolPrice:  solPrice,
		BtcPrice:  btcPrice,
		Timestamp: time.Now().UnixNano(),
	}

	query := `
		INSERT INTO price_snapshot (id, sol_price, btc_price, ts)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET sol_price = EXCLUDED.sol_price,
		    btc_price = EXCLUDED.btc_price,
		    ts = EXCLUDED.ts;
	`
	if _, err := s.db.ExecContext(ctx, query, pair.SolPrice, pair.BtcPrice, pair.Timestamp); err != nil {
		return types.PricePair{}, fmt.Errorf("failed to store price snapshot: %w", err)
	}

	s.logger.Info().
		Float64("solPrice", pair.SolPrice).
		Float64("btcPrice", pair.BtcPrice).
		Int64("ts", pair.Timestamp).
		Msg("Price snapshot updated")

	return pair, nil
}
