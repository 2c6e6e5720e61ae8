package swap

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// maxUint256Bits bounds amounts to what a uint256 call parameter can carry.
const maxUint256Bits = 256

// ToMinorUnits converts a human-readable token amount into integer minor
// units at the token's decimal count. It rejects amounts with precision the
// token cannot represent (a sub-minor-unit fraction would be silently
// truncated on-chain) and amounts that do not fit in a uint256.
func ToMinorUnits(amount string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q is not a decimal: %v", domain.ErrEncoding, amount, err)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", domain.ErrEncoding, d)
	}
	if decimals < 0 {
		return nil, fmt.Errorf("%w: negative decimal count %d", domain.ErrEncoding, decimals)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: amount %s has sub-minor-unit precision at %d decimals", domain.ErrEncoding, amount, decimals)
	}

	units := shifted.BigInt()
	if units.BitLen() > maxUint256Bits {
		return nil, fmt.Errorf("%w: amount %s overflows uint256 at %d decimals", domain.ErrEncoding, amount, decimals)
	}
	return units, nil
}

// FromMinorUnits renders integer minor units back into a human-readable
// decimal string at the token's decimal count.
func FromMinorUnits(units *big.Int, decimals int) string {
	return decimal.NewFromBigInt(units, -int32(decimals)).String()
}
