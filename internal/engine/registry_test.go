package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"bonding-rewards-go/internal/codec"
	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/memory"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) platform(t *testing.T) *models.Platform {
	t.Helper()
	var platform *models.Platform
	err := f.store.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		platform, err = tx.GetPlatform(ctx)
		return err
	})
	require.NoError(t, err)
	return platform
}

func TestInitializePlatform_Once(t *testing.T) {
	f := newFixture(t)

	platform := f.platform(t)
	assert.Equal(t, testAuthority, platform.Authority)
	assert.Equal(t, testOracle, platform.Oracle)
	assert.Equal(t, codec.LayoutVersion, platform.Version)
	assert.Equal(t, uint64(1), platform.TotalEntities)

	_, err := f.engine.InitializePlatform(context.Background(), "other", PlatformParams{ReserveAsset: testAsset, Oracle: testOracle})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Equal(t, testAuthority, f.platform(t).Authority)
}

func TestCreateEntity_InitialState(t *testing.T) {
	f := newFixture(t)

	entity := f.entity(t, testEntityId)
	assert.Equal(t, testAuthority, entity.Authority)
	assert.Equal(t, keys.TokenMint(testEntityId), entity.TokenMint)
	assert.Equal(t, uint64(1_000_000_000), entity.TotalSupply)
	assert.Zero(t, entity.CirculatingSupply)
	assert.Zero(t, entity.ReserveBalance)
	assert.Zero(t, entity.TotalRewardsEarned)
	assert.Equal(t, testNow, entity.LastRewardDistribution)
}

func TestCreateEntity_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		authority string
		req       CreateEntityRequest
		wantErr   error
	}{
		{
			name:      "duplicate id",
			authority: testAuthority,
			req:       CreateEntityRequest{Id: testEntityId, Curve: scenarioCurve},
			wantErr:   store.ErrAlreadyExists,
		},
		{
			name:      "zero max supply",
			authority: testAuthority,
			req:       CreateEntityRequest{Id: "zero_max", Curve: models.BondingCurveParams{BasePrice: 1}},
			wantErr:   ErrInvalidBondingCurve,
		},
		{
			name:      "zero base price",
			authority: testAuthority,
			req:       CreateEntityRequest{Id: "zero_base", Curve: models.BondingCurveParams{MaxSupply: 1}},
			wantErr:   ErrInvalidBondingCurve,
		},
		{
			name:      "name too long",
			authority: testAuthority,
			req:       CreateEntityRequest{Id: "long_name", Name: strings.Repeat("n", models.MaxNameLen+1), Curve: scenarioCurve},
			wantErr:   codec.ErrFieldTooLong,
		},
		{
			name:      "id too long",
			authority: testAuthority,
			req:       CreateEntityRequest{Id: strings.Repeat("i", models.MaxEntityIdLen+1), Curve: scenarioCurve},
			wantErr:   codec.ErrFieldTooLong,
		},
		{
			name:      "invalid authority",
			authority: "bad:authority",
			req:       CreateEntityRequest{Id: "bad_authority", Curve: scenarioCurve},
			wantErr:   ErrInvalidIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.engine.CreateEntity(context.Background(), tt.authority, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, uint64(1), f.platform(t).TotalEntities)
		})
	}
}

func TestCreateEntity_RequiresPlatform(t *testing.T) {
	e := New(memory.NewStore())

	_, err := e.CreateEntity(context.Background(), testAuthority, CreateEntityRequest{Id: "orphan", Curve: scenarioCurve})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "slippage_exceeded", ErrorKind(fmt.Errorf("buy: %w", ErrSlippageExceeded)))
	assert.Equal(t, "insufficient_funds", ErrorKind(fmt.Errorf("debit: %w", store.ErrInsufficientFunds)))
	assert.Equal(t, "invalid_bonding_curve", ErrorKind(ErrInvalidBondingCurve))
	assert.Equal(t, "internal", ErrorKind(errors.New("disk on fire")))
}
