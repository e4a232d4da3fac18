// Package curve prices entity tokens on a quadratic bonding curve.
//
//	price(s) = base_price * (1 + s/max_supply)^2
//
// evaluated in 10^6 fixed point with truncating integer division at each
// step. All intermediates use arbitrary precision so no step can wrap.
package curve

import (
	"errors"
	"math/big"

	"bonding-rewards-go/internal/models"
)

// Scale is the fixed-point denominator shared by prices and amounts.
const Scale = 1_000_000

// Sell proceeds keep FeeNumerator/FeeDenominator of the gross amount.
const (
	FeeNumerator   = 99
	FeeDenominator = 100
)

var (
	ErrInvalidBondingCurve = errors.New("invalid bonding curve parameters")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
)

var (
	bigScale          = big.NewInt(Scale)
	bigFeeNumerator   = big.NewInt(FeeNumerator)
	bigFeeDenominator = big.NewInt(FeeDenominator)
)

// Validate rejects parameters that cannot price a token.
func Validate(p models.BondingCurveParams) error {
	if p.MaxSupply == 0 {
		return ErrInvalidBondingCurve
	}
	if p.BasePrice == 0 {
		return ErrInvalidBondingCurve
	}
	return nil
}

// Price returns the unit price at the given supply. Price(p, 0) == p.BasePrice.
func Price(p models.BondingCurveParams, supply uint64) (uint64, error) {
	if p.MaxSupply == 0 {
		return 0, ErrInvalidBondingCurve
	}
	price := bigPrice(p, supply)
	if !price.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return price.Uint64(), nil
}

// TokensOut quotes the tokens bought by usdtAmount at the current supply.
// The whole order fills at the spot price.
func TokensOut(p models.BondingCurveParams, usdtAmount, supply uint64) (uint64, error) {
	if err := Validate(p); err != nil {
		return 0, err
	}
	price := bigPrice(p, supply)

	out := new(big.Int).SetUint64(usdtAmount)
	out.Mul(out, bigScale)
	out.Quo(out, price)
	if !out.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return out.Uint64(), nil
}

// SellProceeds quotes a sale of tokenAmount at the current supply. gross is
// the pre-fee amount, net what the seller receives.
func SellProceeds(p models.BondingCurveParams, tokenAmount, supply uint64) (gross, net uint64, err error) {
	if err := Validate(p); err != nil {
		return 0, 0, err
	}
	price := bigPrice(p, supply)

	g := new(big.Int).SetUint64(tokenAmount)
	g.Mul(g, price)
	g.Quo(g, bigScale)
	if !g.IsUint64() {
		return 0, 0, ErrArithmeticOverflow
	}

	n := new(big.Int).Mul(g, bigFeeNumerator)
	n.Quo(n, bigFeeDenominator)
	return g.Uint64(), n.Uint64(), nil
}

func bigPrice(p models.BondingCurveParams, supply uint64) *big.Int {
	ratio := new(big.Int).SetUint64(supply)
	ratio.Mul(ratio, bigScale)
	ratio.Quo(ratio, new(big.Int).SetUint64(p.MaxSupply))

	multiplier := ratio.Add(ratio, bigScale)
	squared := new(big.Int).Mul(multiplier, multiplier)
	squared.Quo(squared, bigScale)

	price := new(big.Int).SetUint64(p.BasePrice)
	price.Mul(price, squared)
	return price.Quo(price, bigScale)
}
