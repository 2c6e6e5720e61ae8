package swap

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// slippageScale keeps two decimal places of slippage precision as basis
// points, so the whole minimum-return computation stays in integers.
var slippageScale = big.NewInt(10000)

// ComputeMinReturn returns the slippage-adjusted minimum acceptable output:
//
//	floor(expectedOut × (10000 − floor(slippagePercent × 100)) / 10000)
//
// The slippage percent is floored to basis points once, then everything is
// big.Int arithmetic. A floating-point version can be off by one minor unit,
// which either reverts an acceptable fill or tolerates excess slippage.
func ComputeMinReturn(expectedOut *big.Int, slippagePercent decimal.Decimal) (*big.Int, error) {
	if expectedOut == nil || expectedOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: expected output must be positive", domain.ErrValidation)
	}
	if slippagePercent.IsNegative() {
		return nil, fmt.Errorf("%w: slippage must not be negative, got %s", domain.ErrValidation, slippagePercent)
	}
	if slippagePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: slippage above 100%%, got %s", domain.ErrValidation, slippagePercent)
	}

	bps := slippagePercent.Mul(decimal.NewFromInt(100)).Floor().BigInt()

	factor := new(big.Int).Sub(slippageScale, bps)
	out := new(big.Int).Mul(expectedOut, factor)
	return out.Quo(out, slippageScale), nil
}
