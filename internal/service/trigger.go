/*

Threshold math for reward triggers. A reward is justified when an asset's
percentage change over its benchmark meets a fixed threshold: 30% for SOL,
10% for BTC, strict >= at the boundary.

*/

package service

import (
	"strings"

	"github.com/wind-network/wind/internal/types"
)

// Reward trigger thresholds, percent change over benchmark.
const (
	SolTriggerThreshold = 30.0
	BtcTriggerThreshold = 10.0
)

// ChangePercent computes (current - benchmark) / benchmark * 100.
func ChangePercent(current, benchmark float64) float64 {
	return (current - benchmark) / benchmark * 100
}

// TriggerThreshold returns the reward threshold for a symbol. The second
// return is false for unknown symbols.
func TriggerThreshold(symbol string) (float64, bool) {
	switch symbol {
	case types.SymbolSOL:
		return SolTriggerThreshold, true
	case types.SymbolBTC:
		return BtcTriggerThreshold, true
	default:
		return 0, false
	}
}

// parseTriggerSymbol extracts the asset symbol a trigger condition claims,
// e.g. "SOL+30%" or "BTC price up 10% over benchmark". The condition must
// start with a known symbol.
func parseTriggerSymbol(condition string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(condition))
	for _, symbol := range []string{types.SymbolSOL, types.SymbolBTC} {
		if strings.HasPrefix(upper, symbol) {
			return symbol, true
		}
	}
	return "", false
}
