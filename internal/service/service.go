package service

import (
	"context"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/wind-network/wind/internal/auth"
	"github.com/wind-network/wind/internal/logger"
	"github.com/wind-network/wind/internal/oracle"
	"github.com/wind-network/wind/internal/state"
	"github.com/wind-network/wind/internal/types"
)

// Service is the operational surface of the Wind backend: every boundary
// operation goes through here. Reads are unrestricted; every mutation passes
// the authorization guard before any store is touched.
type Service struct {
	logger   zerolog.Logger
	guard    *auth.Guard
	registry *auth.AdminRegistry
	stores   state.Stores
	oracle   *oracle.Client
}

// Config holds the dependencies for creating a new Service instance.
type Config struct {
	Guard    *auth.Guard
	Registry *auth.AdminRegistry
	Stores   state.Stores
	Oracle   *oracle.Client
}

// New creates a Service with dependency injection.
func New(cfg Config) (*Service, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("service configuration validation failed: %w", err)
	}

	svc := &Service{
		logger:   logger.GetForComponent("service"),
		guard:    cfg.Guard,
		registry: cfg.Registry,
		stores:   cfg.Stores,
		oracle:   cfg.Oracle,
	}

	svc.logger.Info().Msg("Service instance created")
	return svc, nil
}

func validateConfig(cfg Config) error {
	if cfg.Guard == nil {
		return fmt.Errorf("authorization guard cannot be nil")
	}
	if cfg.Registry == nil {
		return fmt.Errorf("admin registry cannot be nil")
	}
	if cfg.Stores.Prices == nil || cfg.Stores.Benchmarks == nil || cfg.Stores.Rewards == nil || cfg.Stores.Profiles == nil {
		return fmt.Errorf("all stores must be provided")
	}
	if cfg.Oracle == nil {
		return fmt.Errorf("oracle client cannot be nil")
	}
	return nil
}

// GetCurrentPrices returns the current snapshot, or nil when no price has
// been set. Unrestricted read.
func (s *Service) GetCurrentPrices(ctx context.Context) (*types.PricePair, error) {
	return s.stores.Prices.Get(ctx)
}

// GetPriceBenchmarks returns the ordered benchmark pairs, both-or-none.
// Unrestricted read.
func (s *Service) GetPriceBenchmarks(ctx context.Context) ([]types.Benchmark, error) {
	return s.stores.Benchmarks.Get(ctx)
}

// GetRewardHistory returns every reward event in insertion order.
// Unrestricted read.
func (s *Service) GetRewardHistory(ctx context.Context) ([]types.RewardEvent, error) {
	return s.stores.Rewards.List(ctx)
}

// IsCallerAdmin reports admin membership. Never fails; anonymous and unknown
// callers are simply not admins.
func (s *Service) IsCallerAdmin(caller types.Principal) bool {
	return s.registry.IsAdmin(caller)
}

// UpdateCurrentPrices replaces the price snapshot with an admin-supplied pair.
func (s *Service) UpdateCurrentPrices(ctx context.Context, caller types.Principal, solPrice, btcPrice float64) (types.PricePair, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return types.PricePair{}, err
	}
	return s.stores.Prices.Set(ctx, solPrice, btcPrice)
}

// SetBenchmarks writes an explicit admin-chosen benchmark pair. This is the
// explicit-value form; SnapshotBenchmarks copies current prices instead.
func (s *Service) SetBenchmarks(ctx context.Context, caller types.Principal, solValue, btcValue float64) ([]types.Benchmark, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}
	return s.stores.Benchmarks.Set(ctx, solValue, btcValue)
}

// SnapshotBenchmarks re-anchors the baseline to the current prices as one
// atomic dual update. Fails NoCurrentPrice when the price store is empty.
func (s *Service) SnapshotBenchmarks(ctx context.Context, caller types.Principal) ([]types.Benchmark, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}

	current, err := s.stores.Prices.Get(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, types.NewError(types.KindNoCurrentPrice, "cannot snapshot benchmarks: no current price set")
	}

	benchmarks, err := s.stores.Benchmarks.Set(ctx, current.SolPrice, current.BtcPrice)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Float64("solValue", current.SolPrice).
		Float64("btcValue", current.BtcPrice).
		Msg("Benchmarks re-anchored to current prices")

	return benchmarks, nil
}

// RecordRewardEvent appends a reward distribution to the ledger. The claimed
// trigger condition is verified against live price and benchmark state before
// anything is written: the named asset's percentage change over its benchmark
// must meet that asset's threshold.
func (s *Service) RecordRewardEvent(ctx context.Context, caller types.Principal, recipient string, amount sdkmath.LegacyDec, triggerCondition string) (types.RewardEvent, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return types.RewardEvent{}, err
	}

	if err := s.verifyTrigger(ctx, triggerCondition); err != nil {
		return types.RewardEvent{}, err
	}

	return s.stores.Rewards.Append(ctx, recipient, amount, triggerCondition)
}

// verifyTrigger recomputes the percentage change the trigger condition claims.
func (s *Service) verifyTrigger(ctx context.Context, triggerCondition string) error {
	if strings.TrimSpace(triggerCondition) == "" {
		return types.NewError(types.KindInvalidInput, "trigger condition cannot be empty")
	}

	symbol, ok := parseTriggerSymbol(triggerCondition)
	if !ok {
		return types.NewError(types.KindInvalidInput, "trigger condition %q does not name a tracked asset", triggerCondition)
	}

	current, err := s.stores.Prices.Get(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return types.NewError(types.KindInvalidInput, "cannot verify trigger %q: no current price set", triggerCondition)
	}

	benchmarks, err := s.stores.Benchmarks.Get(ctx)
	if err != nil {
		return err
	}
	if len(benchmarks) == 0 {
		return types.NewError(types.KindInvalidInput, "cannot verify trigger %q: no benchmarks set", triggerCondition)
	}

	var price, benchmark float64
	switch symbol {
	case types.SymbolSOL:
		price = current.SolPrice
	case types.SymbolBTC:
		price = current.BtcPrice
	}
	for _, b := range benchmarks {
		if b.Symbol == symbol {
			benchmark = b.Value
		}
	}

	threshold, _ := TriggerThreshold(symbol)
	change := ChangePercent(price, benchmark)
	if change < threshold {
		return types.NewError(types.KindInvalidInput,
			"trigger %q not satisfied: %s change is %.4f%%, threshold is %.1f%%",
			triggerCondition, symbol, change, threshold)
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Float64("change", change).
		Float64("threshold", threshold).
		Msg("Trigger condition verified against live state")

	return nil
}

// FetchPriceData is the read-through oracle call: it returns the raw
// serialized quote without persisting anything. Admin-gated like every other
// write-side entrypoint, since it drives the update workflow.
func (s *Service) FetchPriceData(ctx context.Context, caller types.Principal) (string, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return "", err
	}
	return s.oracle.FetchRaw(ctx)
}

// GetCallerProfile returns the caller's own profile, or nil when none exists.
func (s *Service) GetCallerProfile(ctx context.Context, caller types.Principal) (*types.UserProfile, error) {
	if caller.Anonymous() {
		return nil, types.NewError(types.KindNotAuthenticated, "caller identity required to read profile")
	}
	return s.stores.Profiles.Get(ctx, caller)
}

// SaveCallerProfile upserts the caller's own profile. Self-scoped: any
// authenticated caller may write its own entry.
func (s *Service) SaveCallerProfile(ctx context.Context, caller types.Principal, profile types.UserProfile) error {
	if caller.Anonymous() {
		return types.NewError(types.KindNotAuthenticated, "caller identity required to save profile")
	}
	if strings.TrimSpace(profile.Name) == "" {
		return types.NewError(types.KindInvalidInput, "profile name cannot be empty")
	}
	if strings.TrimSpace(profile.Wallet) == "" {
		return types.NewError(types.KindInvalidInput, "profile wallet cannot be empty")
	}
	return s.stores.Profiles.Save(ctx, caller, profile)
}
