/*

This file manages the persistent append-only reward ledger. Entries are never
updated or deleted; the BIGSERIAL sequence fixes insertion order and the
timestamp clamp keeps entries monotonically time-ordered even if the server
clock steps backwards between appends.

*/

package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wind-network/wind/internal/logger"
	"github.com/wind-network/wind/internal/types"
)

// PostgresRewardLedger stores reward events in the reward_events table.
type PostgresRewardLedger struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPostgresRewardLedger wires a reward ledger onto an initialized pool.
func NewPostgresRewardLedger(db *sql.DB) *PostgresRewardLedger {
	return &PostgresRewardLedger{
		db:     db,
		logger: logger.GetForComponent("reward_ledger"),
	}
}

// Append validates the event, stamps a server instant no earlier than any
// prior entry's, and inserts it at the end of the sequence.
func (l *PostgresRewardLedger) Append(ctx context.Context, recipient string, amount sdkmath.LegacyDec, triggerCondition string) (types.RewardEvent, error) {
	if err := validateRewardEvent(recipient, amount, triggerCondition); err != nil {
		return types.RewardEvent{}, err
	}

	event := types.RewardEvent{
		ID:               uuid.New().String(),
		Recipient:        recipient,
		Amount:           amount,
		TriggerCondition: triggerCondition,
	}

	query := `
		INSERT INTO reward_events (event_id, recipient, amount, trigger_condition, ts)
		VALUES ($1, $2, $3, $4, GREATEST($5::BIGINT, COALESCE((SELECT MAX(ts) FROM reward_events), 0)))
		RETURNING ts;
	`
	err := l.db.QueryRowContext(ctx, query,
		event.ID, event.Recipient, event.Amount.String(), event.TriggerCondition, time.Now().UnixNano(),
	).Scan(&event.Timestamp)
	if err != nil {
		return types.RewardEvent{}, fmt.Errorf("failed to append reward event: %w", err)
	}

	l.logger.Info().
		Str("eventId", event.ID).
		Str("recipient", event.Recipient).
		Str("amount", event.Amount.String()).
		Str("trigger", event.TriggerCondition).
		Msg("Reward event appended")

	return event, nil
}

// List returns every reward event in insertion order.
func (l *PostgresRewardLedger) List(ctx context.Context) ([]types.RewardEvent, error) {
	query := `
		SELECT event_id, recipient, amount, trigger_condition, ts
		FROM reward_events
		ORDER BY seq ASC;
	`
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reward events: %w", err)
	}
	defer rows.Close()

	events := []types.RewardEvent{}
	for rows.Next() {
		var event types.RewardEvent
		var amountStr string
		if err := rows.Scan(&event.ID, &event.Recipient, &amountStr, &event.TriggerCondition, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reward event: %w", err)
		}
		amount, err := sdkmath.LegacyNewDecFromStr(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored reward amount %q: %w", amountStr, err)
		}
		event.Amount = amount
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reward events: %w", err)
	}

	return events, nil
}
