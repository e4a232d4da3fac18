package engine

import (
	"errors"

	"bonding-rewards-go/internal/codec"
	"bonding-rewards-go/internal/curve"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"
)

var (
	ErrSlippageExceeded    = errors.New("slippage tolerance exceeded")
	ErrMaxSupplyReached    = errors.New("maximum supply reached")
	ErrInsufficientReserve = errors.New("insufficient reserve balance")
	ErrUnauthorizedOracle  = errors.New("unauthorized oracle")
	ErrNoRewardsToClaim    = errors.New("no rewards to claim")
	ErrInvalidBondingCurve = curve.ErrInvalidBondingCurve
	ErrArithmeticOverflow  = curve.ErrArithmeticOverflow

	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientSupply = errors.New("insufficient circulating supply")
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrUnauthorized       = errors.New("caller is not the platform authority")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrSlippageExceeded, "slippage_exceeded"},
	{ErrMaxSupplyReached, "max_supply_reached"},
	{ErrInsufficientReserve, "insufficient_reserve"},
	{ErrUnauthorizedOracle, "unauthorized_oracle"},
	{ErrNoRewardsToClaim, "no_rewards_to_claim"},
	{ErrInvalidBondingCurve, "invalid_bonding_curve"},
	{ErrArithmeticOverflow, "arithmetic_overflow"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInsufficientSupply, "insufficient_supply"},
	{ErrInvalidIdentity, "invalid_identity"},
	{ErrUnauthorized, "unauthorized"},
	{models.ErrInvariantViolation, "invariant_violation"},
	{store.ErrInsufficientFunds, "insufficient_funds"},
	{store.ErrDuplicateTransaction, "duplicate_transaction"},
	{store.ErrConcurrentModification, "concurrent_modification"},
	{store.ErrAlreadyExists, "already_exists"},
	{store.ErrNotFound, "not_found"},
	{codec.ErrFieldTooLong, "field_too_long"},
	{codec.ErrInvalidUTF8, "invalid_utf8"},
}

// ErrorKind names the failure class of err for logs and metrics. Errors
// outside the known set are reported as "internal".
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
