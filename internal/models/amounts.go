package models

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Default display precision of the reserve asset and entity tokens.
const DefaultDecimals int32 = 6

// Units converts a base-unit amount to a decimal without scaling.
func Units(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// Human renders a base-unit amount with the given number of decimals,
// e.g. Human(1_500_000, 6) == 1.5.
func Human(v uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -decimals)
}

// ParseUnits converts a human amount to base units, truncating below the
// given precision. Negative amounts and amounts above 2^64-1 are rejected.
func ParseUnits(s string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return UnitsFromDecimal(d.Shift(decimals).Truncate(0))
}

// UnitsFromDecimal converts an integral decimal to base units.
func UnitsFromDecimal(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", d.String())
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("amount %s is not integral", d.String())
	}
	b := d.BigInt()
	if !b.IsUint64() {
		return 0, fmt.Errorf("amount %s exceeds 64 bits", d.String())
	}
	return b.Uint64(), nil
}
