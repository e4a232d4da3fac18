package models

import (
	"errors"
	"fmt"
	"time"

	"bonding-rewards-go/internal/keys"
)

// Field bounds for persisted strings.
const (
	MaxEntityIdLen = 32
	MaxNameLen     = 64
	MaxSymbolLen   = 16
	MaxUriLen      = 200
	MaxIdentityLen = 64
	MaxAssetLen    = 16
)

var ErrInvariantViolation = errors.New("entity invariant violated")

// Platform is the singleton configuration record.
type Platform struct {
	Authority       string
	ReserveAsset    string
	Oracle          string
	DailyRewardPool uint64
	TotalEntities   uint64
	Version         uint8
}

// BondingCurveParams prices an entity's token. BasePrice uses a 10^6 scale.
// CurveFactor is carried but not used in pricing.
type BondingCurveParams struct {
	BasePrice   uint64
	CurveFactor uint64
	MaxSupply   uint64
}

// PerformanceMetrics holds cumulative counters and the current daily window.
type PerformanceMetrics struct {
	TotalLikes     uint64
	TotalViews     uint64
	TotalComments  uint64
	TotalFollowers uint64
	LastUpdated    time.Time

	DailyLikes        uint64
	DailyViews        uint64
	DailyComments     uint64
	DailyNewFollowers uint64
}

// ResetDaily clears the daily window. Cumulative counters are untouched.
func (m *PerformanceMetrics) ResetDaily() {
	m.DailyLikes = 0
	m.DailyViews = 0
	m.DailyComments = 0
	m.DailyNewFollowers = 0
}

// Entity is a performance-backed token with its own bonding curve.
type Entity struct {
	Id        string
	Authority string
	TokenMint keys.Address
	Name      string
	Symbol    string
	Uri       string

	Curve             BondingCurveParams
	TotalSupply       uint64
	CirculatingSupply uint64
	ReserveBalance    uint64

	Performance PerformanceMetrics

	TotalRewardsEarned     uint64
	LastRewardDistribution time.Time
}

// Key returns the derived record address of the entity.
func (e *Entity) Key() keys.Address {
	return keys.Entity(e.Id)
}

// ReserveKey returns the derived address of the entity's reserve account.
func (e *Entity) ReserveKey() keys.Address {
	return keys.Reserve(e.Key())
}

// TokenAsset is the ledger asset identifier of the entity's token.
func (e *Entity) TokenAsset() string {
	return e.TokenMint.String()
}

// Validate checks the at-rest invariants. The reserve may hold sell fees
// after all tokens have been sold back, so an empty supply only implies an
// empty reserve for entities that never charged a fee.
func (e *Entity) Validate() error {
	if e.Curve.MaxSupply == 0 {
		return fmt.Errorf("%w: max supply is zero", ErrInvariantViolation)
	}
	if e.CirculatingSupply > e.Curve.MaxSupply {
		return fmt.Errorf("%w: circulating supply %d exceeds max supply %d",
			ErrInvariantViolation, e.CirculatingSupply, e.Curve.MaxSupply)
	}
	return nil
}

// UserRewards tracks a user's reward position for one entity.
type UserRewards struct {
	User      string
	Entity    keys.Address
	Pending   uint64
	Claimed   uint64
	LastClaim time.Time
}

func (r *UserRewards) Key() keys.Address {
	return keys.UserRewards(r.User, r.Entity)
}
