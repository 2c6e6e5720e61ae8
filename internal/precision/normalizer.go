// Package precision implements the exchange's lot-size and amount-formatting
// rules. Order quantity precision is derived from the order price, the
// quantity is rounded to that precision, and the payment amount is recomputed
// from the rounded quantity so that price × quantity stays self-consistent to
// the platform's accepted precision. All arithmetic uses decimal values; a
// float64 implementation would reintroduce the binary-float artifacts these
// rules exist to avoid.
package precision

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// amountPrecision is the number of fractional digits the exchange accepts on
// payment amounts, for every supported quote asset.
const amountPrecision = 8

// priceTierBoundary is the price below which order quantities must be whole
// numbers. At or above it, four fractional digits are accepted.
var priceTierBoundary = decimal.RequireFromString("0.0001")

// QuantityPrecision returns the number of fractional digits allowed on an
// order quantity at the given price: 0 below the tier boundary, 4 otherwise.
// Getting this wrong causes silent order rejection upstream.
func QuantityPrecision(price decimal.Decimal) int32 {
	if price.LessThan(priceTierBoundary) {
		return 0
	}
	return 4
}

// RoundQuantity rounds a raw quantity to prec fractional digits using round
// half away from zero. The operation is idempotent: rounding an
// already-rounded value is a no-op.
func RoundQuantity(quantity decimal.Decimal, prec int32) decimal.Decimal {
	return quantity.Round(prec)
}

// NormalizeQuantity derives the quantity precision from price and rounds the
// quantity to it. It rejects non-positive price or quantity, and quantities
// that round to zero under the derived precision; such orders must surface as
// a submit-blocking error, never be sent as zero.
func NormalizeQuantity(price, quantity decimal.Decimal) (decimal.Decimal, error) {
	if price.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: price must be positive, got %s", domain.ErrValidation, price)
	}
	if quantity.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: quantity must be positive, got %s", domain.ErrValidation, quantity)
	}

	rounded := RoundQuantity(quantity, QuantityPrecision(price))
	if rounded.Sign() == 0 {
		return decimal.Zero, fmt.Errorf("%w: quantity %s rounds to zero at price %s", domain.ErrValidation, quantity, price)
	}
	return rounded, nil
}

// RecomputeAmount multiplies price by the rounded quantity and formats the
// product to at most eight fractional digits. Trailing zeros are trimmed but
// at least one fractional digit is always kept ("1.0", never "1"), which is
// the form the exchange expects in payment details.
func RecomputeAmount(price, roundedQuantity decimal.Decimal) string {
	return FormatAmount(price.Mul(roundedQuantity))
}

// FormatAmount renders an amount to the exchange's accepted precision with a
// guaranteed decimal point.
func FormatAmount(amount decimal.Decimal) string {
	s := amount.Round(amountPrecision).StringFixed(amountPrecision)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
