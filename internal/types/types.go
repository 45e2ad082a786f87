/*

Core domain types for the Wind price and reward backend. Prices live as USD
floats, timestamps as Unix nanoseconds stamped by the server, and reward
amounts as exact decimals so ledger entries round-trip without precision loss.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// Asset symbols tracked by the dashboard.
const (
	SymbolSOL = "SOL"
	SymbolBTC = "BTC"
)

// Principal is the opaque caller identity supplied by the external identity
// provider. An empty principal means the caller is anonymous.
type Principal string

// Anonymous reports whether the principal carries no identity.
func (p Principal) Anonymous() bool {
	return p == ""
}

// PricePair is the single current SOL/BTC quote. The timestamp is assigned by
// the server at write time; caller-supplied timestamps are ignored.
type PricePair struct {
	SolPrice  float64 `json:"sol_price"`
	BtcPrice  float64 `json:"btc_price"`
	Timestamp int64   `json:"timestamp"`
}

// Benchmark is one reference price used as the baseline for percentage-change
// math. Benchmarks are only ever written as a coherent SOL+BTC pair.
type Benchmark struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// RewardEvent is one immutable entry in the append-only reward ledger.
type RewardEvent struct {
	ID               string            `json:"id"`
	Recipient        string            `json:"recipient"`
	Amount           sdkmath.LegacyDec `json:"amount"`
	TriggerCondition string            `json:"trigger_condition"`
	Timestamp        int64             `json:"timestamp"`
}

// UserProfile holds the display name and wallet address for a caller. Profiles
// supply the recipient wallet when an admin records a reward.
type UserProfile struct {
	Name   string `json:"name"`
	Wallet string `json:"wallet"`
}
