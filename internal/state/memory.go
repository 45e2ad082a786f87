/*

In-memory store implementations. These back STATE_BACKEND=memory development
runs and the unit tests; they honor exactly the same validation and atomicity
contracts as the Postgres stores.

*/

package state

import (
	"context"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/wind-network/wind/internal/types"
)

// MemoryPriceStore holds the snapshot behind a RWMutex; Set swaps the whole
// value under the write lock.
type MemoryPriceStore struct {
	mu      sync.RWMutex
	current *types.PricePair
}

// NewMemoryPriceStore returns an empty price store.
func NewMemoryPriceStore() *MemoryPriceStore {
	return &MemoryPriceStore{}
}

func (s *MemoryPriceStore) Get(ctx context.Context) (*types.PricePair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, nil
	}
	pair := *s.current
	return &pair, nil
}

func (s *MemoryPriceStore) Set(ctx context.Context, solPrice, btcPrice float64) (types.PricePair, error) {
	if err := validatePricePair(solPrice, btcPrice); err != nil {
		return types.PricePair{}, err
	}

	pair := types.PricePair{
		SolPrice:  solPrice,
		BtcPrice:  btcPrice,
		Timestamp: time.Now().UnixNano(),
	}

	s.mu.Lock()
	s.current = &pair
	s.mu.Unlock()

	return pair, nil
}

// MemoryBenchmarkStore holds the reference pair as one value, so both symbols
// always come from the same logical update.
type MemoryBenchmarkStore struct {
	mu      sync.RWMutex
	current *[2]float64 // [SOL, BTC]
}

// NewMemoryBenchmarkStore returns an empty benchmark store.
func NewMemoryBenchmarkStore() *MemoryBenchmarkStore {
	return &MemoryBenchmarkStore{}
}

func (s *MemoryBenchmarkStore) Get(ctx context.Context) ([]types.Benchmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return []types.Benchmark{}, nil
	}
	return benchmarkPair(s.current[0], s.current[1]), nil
}

func (s *MemoryBenchmarkStore) Set(ctx context.Context, solValue, btcValue float64) ([]types.Benchmark, error) {
	if err := validatePricePair(solValue, btcValue); err != nil {
		return nil, err
	}

	pair := [2]float64{solValue, btcValue}

	s.mu.Lock()
	s.current = &pair
	s.mu.Unlock()

	return benchmarkPair(solValue, btcValue), nil
}

// MemoryRewardLedger serializes appends behind a mutex and clamps timestamps
// so each entry's instant is never earlier than its predecessor's.
type MemoryRewardLedger struct {
	mu     sync.RWMutex
	events []types.RewardEvent
}

// NewMemoryRewardLedger returns an empty ledger.
func NewMemoryRewardLedger() *MemoryRewardLedger {
	return &MemoryRewardLedger{}
}

func (l *MemoryRewardLedger) Append(ctx context.Context, recipient string, amount sdkmath.LegacyDec, triggerCondition string) (types.RewardEvent, error) {
	if err := validateRewardEvent(recipient, amount, triggerCondition); err != nil {
		return types.RewardEvent{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().UnixNano()
	if n := len(l.events); n > 0 && l.events[n-1].Timestamp > ts {
		ts = l.events[n-1].Timestamp
	}

	event := types.RewardEvent{
		ID:               uuid.New().String(),
		Recipient:        recipient,
		Amount:           amount,
		TriggerCondition: triggerCondition,
		Timestamp:        ts,
	}
	l.events = append(l.events, event)

	return event, nil
}

func (l *MemoryRewardLedger) List(ctx context.Context) ([]types.RewardEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	events := make([]types.RewardEvent, len(l.events))
	copy(events, l.events)
	return events, nil
}

// MemoryProfileStore keeps profiles in a map behind a RWMutex.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[types.Principal]types.UserProfile
}

// NewMemoryProfileStore returns an empty profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[types.Principal]types.UserProfile)}
}

func (s *MemoryProfileStore) Get(ctx context.Context, principal types.Principal) (*types.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[principal]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (s *MemoryProfileStore) Save(ctx context.Context, principal types.Principal, profile types.UserProfile) error {
	s.mu.Lock()
	s.profiles[principal] = profile
	s.mu.Unlock()
	return nil
}

// NewMemoryStores bundles the in-memory store set.
func NewMemoryStores() Stores {
	return Stores{
		Prices:     NewMemoryPriceStore(),
		Benchmarks: NewMemoryBenchmarkStore(),
		Rewards:    NewMemoryRewardLedger(),
		Profiles:   NewMemoryProfileStore(),
	}
}
