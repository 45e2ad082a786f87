/*

Store contracts for the Wind backend. Each store is an explicitly constructed
object passed into the service by reference, never ambient package state.
Two implementations exist: Postgres for deployments and an in-memory variant
for development mode and unit tests.

*/

package state

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/wind-network/wind/internal/types"
)

// PriceStore holds the single current price snapshot. Set replaces the whole
// snapshot atomically; a reader never observes one fresh field paired with a
// stale one.
type PriceStore interface {
	// Get returns the current snapshot, or nil when no price has been set.
	Get(ctx context.Context) (*types.PricePair, error)

	// Set validates and stores a new snapshot, stamping the server's current
	// instant. Fails InvalidInput on non-positive or non-finite values.
	Set(ctx context.Context, solPrice, btcPrice float64) (types.PricePair, error)
}

// BenchmarkStore holds the reference price pair anchoring percentage-change
// math. The pair is written as one atomic unit: both symbols or neither.
type BenchmarkStore interface {
	// Get returns [SOL, BTC] benchmarks in that order, or an empty slice when
	// no benchmark has been set.
	Get(ctx context.Context) ([]types.Benchmark, error)

	// Set validates and stores both reference prices as a single dual update.
	Set(ctx context.Context, solValue, btcValue float64) ([]types.Benchmark, error)
}

// RewardLedger is the append-only history of reward distributions. Entries are
// immutable, insertion-ordered, and stamped with monotonically non-decreasing
// server instants.
type RewardLedger interface {
	// Append validates and stores one reward event, returning the stored
	// record including its assigned id and timestamp.
	Append(ctx context.Context, recipient string, amount sdkmath.LegacyDec, triggerCondition string) (types.RewardEvent, error)

	// List returns every reward event in insertion order.
	List(ctx context.Context) ([]types.RewardEvent, error)
}

// ProfileStore keeps the name and wallet address per caller principal.
type ProfileStore interface {
	// Get returns the profile for a principal, or nil when none exists.
	Get(ctx context.Context, principal types.Principal) (*types.UserProfile, error)

	// Save upserts the profile for a principal.
	Save(ctx context.Context, principal types.Principal, profile types.UserProfile) error
}

// Stores bundles the full store set for dependency injection.
type Stores struct {
	Prices     PriceStore
	Benchmarks BenchmarkStore
	Rewards    RewardLedger
	Profiles   ProfileStore
}
