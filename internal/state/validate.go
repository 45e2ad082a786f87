package state

import (
	"math"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/wind-network/wind/internal/types"
)

// validatePricePair enforces the price invariant shared by both store
// implementations: strictly positive, finite values for both symbols.
func validatePricePair(solPrice, btcPrice float64) error {
	prices := []struct {
		symbol string
		value  float64
	}{
		{types.SymbolSOL, solPrice},
		{types.SymbolBTC, btcPrice},
	}

	for _, price := range prices {
		if math.IsNaN(price.value) || math.IsInf(price.value, 0) {
			return types.NewError(types.KindInvalidInput, "%s price is not finite: %f", price.symbol, price.value)
		}
		if price.value <= 0 {
			return types.NewError(types.KindInvalidInput, "%s price must be positive: %f", price.symbol, price.value)
		}
	}
	return nil
}

// validateRewardEvent checks all three reward fields before any mutation.
func validateRewardEvent(recipient string, amount sdkmath.LegacyDec, triggerCondition string) error {
	if strings.TrimSpace(recipient) == "" {
		return types.NewError(types.KindInvalidInput, "reward recipient cannot be empty")
	}
	if strings.TrimSpace(triggerCondition) == "" {
		return types.NewError(types.KindInvalidInput, "trigger condition cannot be empty")
	}
	if amount.IsNil() {
		return types.NewError(types.KindInvalidInput, "reward amount is required")
	}
	if !amount.IsPositive() {
		return types.NewError(types.KindInvalidInput, "reward amount must be positive: %s", amount.String())
	}
	return nil
}
