package curve

import (
	"math"
	"math/rand"
	"testing"

	"bonding-rewards-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = models.BondingCurveParams{
	BasePrice:   1_000_000,
	CurveFactor: 1,
	MaxSupply:   1_000_000_000,
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name   string
		params models.BondingCurveParams
		supply uint64
		want   uint64
	}{
		{"zero supply is base price", reference, 0, 1_000_000},
		{"half supply", reference, 500_000_000, 2_250_000},
		{"full supply", reference, 1_000_000_000, 4_000_000},
		{"below ratio resolution", reference, 999, 1_000_000},
		{"one ratio step", reference, 1_000, 1_000_002},
		{"tiny base price", models.BondingCurveParams{BasePrice: 1, MaxSupply: 10}, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Price(tt.params, tt.supply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrice_InvalidCurve(t *testing.T) {
	_, err := Price(models.BondingCurveParams{BasePrice: 1_000_000}, 10)
	assert.ErrorIs(t, err, ErrInvalidBondingCurve)

	_, err = TokensOut(models.BondingCurveParams{BasePrice: 1_000_000}, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidBondingCurve)

	_, _, err = SellProceeds(models.BondingCurveParams{MaxSupply: 10}, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidBondingCurve)
}

func TestPrice_Overflow(t *testing.T) {
	p := models.BondingCurveParams{BasePrice: math.MaxUint64, MaxSupply: 1}
	_, err := Price(p, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	p0, err := Price(p, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), p0)
}

func TestPrice_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a := rng.Uint64() % reference.MaxSupply
		b := rng.Uint64() % reference.MaxSupply
		if a > b {
			a, b = b, a
		}
		pa, err := Price(reference, a)
		require.NoError(t, err)
		pb, err := Price(reference, b)
		require.NoError(t, err)
		assert.LessOrEqual(t, pa, pb, "price(%d) > price(%d)", a, b)
	}

	// Strict at the 10^-6 granularity of max supply.
	step := reference.MaxSupply / Scale
	prev, err := Price(reference, 0)
	require.NoError(t, err)
	for s := step; s <= 100*step; s += step {
		p, err := Price(reference, s)
		require.NoError(t, err)
		assert.Greater(t, p, prev, "supply %d", s)
		prev = p
	}
}

func TestTokensOut(t *testing.T) {
	got, err := TokensOut(reference, 1_000_000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), got)

	got, err = TokensOut(reference, 1_000_000, 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(250_000), got)

	got, err = TokensOut(reference, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, got)

	// 2^64-1 units at price 1 buys more than 2^64-1 tokens
	_, err = TokensOut(models.BondingCurveParams{BasePrice: 1, MaxSupply: 1}, math.MaxUint64, 0)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestSellProceeds(t *testing.T) {
	gross, net, err := SellProceeds(reference, 1_000_000, 1_000_000)
	require.NoError(t, err)

	price, err := Price(reference, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, price, gross)
	assert.Equal(t, gross*FeeNumerator/FeeDenominator, net)

	gross, net, err = SellProceeds(reference, 99, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), gross)
	assert.Equal(t, uint64(98), net)
}

func TestRoundTripLosesValue(t *testing.T) {
	// Buys that move the supply by at most 0.25% of max supply change the
	// price by less than the sell fee.
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		supply := rng.Uint64() % (reference.MaxSupply / 2)
		usdt := 1 + rng.Uint64()%2_500_000

		tokens, err := TokensOut(reference, usdt, supply)
		require.NoError(t, err)
		_, net, err := SellProceeds(reference, tokens, supply+tokens)
		require.NoError(t, err)
		assert.Less(t, net, usdt, "supply=%d usdt=%d tokens=%d", supply, usdt, tokens)
	}
}

func TestAsymmetricQuote_LargeBuy(t *testing.T) {
	// Both sides fill at the spot price, so a buy that moves the price past
	// the fee can be sold back for more than it cost.
	tokens, err := TokensOut(reference, 1_000_000_000, 0)
	require.NoError(t, err)
	assert.Equal(t, reference.MaxSupply, tokens)

	_, net, err := SellProceeds(reference, tokens, tokens)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_960_000_000), net)
}
