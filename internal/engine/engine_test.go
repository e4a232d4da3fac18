package engine

import (
	"context"
	"testing"
	"time"

	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/memory"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/stretchr/testify/require"
)

const (
	testAuthority = "admin"
	testOracle    = "oracle"
	testAsset     = "USDT"
	testEntityId  = "agent_one"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var scenarioCurve = models.BondingCurveParams{
	BasePrice:   1_000_000,
	CurveFactor: 1,
	MaxSupply:   1_000_000_000,
}

type fixture struct {
	engine *Engine
	store  *memory.Store
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), clock: testNow}
	f.engine = New(f.store, WithClock(func() time.Time { return f.clock }))

	ctx := context.Background()
	_, err := f.engine.InitializePlatform(ctx, testAuthority, PlatformParams{
		ReserveAsset:    testAsset,
		Oracle:          testOracle,
		DailyRewardPool: 1_000_000_000,
	})
	require.NoError(t, err)

	_, err = f.engine.CreateEntity(ctx, testAuthority, CreateEntityRequest{
		Id:            testEntityId,
		Name:          "Agent One",
		Symbol:        "ONE",
		Uri:           "https://example.com/one.json",
		InitialSupply: 1_000_000_000,
		Curve:         scenarioCurve,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) fund(t *testing.T, user string, amount uint64) {
	t.Helper()
	_, err := f.engine.FundHolder(context.Background(), testAuthority, user, amount, "")
	require.NoError(t, err)
}

func (f *fixture) entity(t *testing.T, id string) *models.Entity {
	t.Helper()
	var entity *models.Entity
	err := f.store.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		entity, err = tx.GetEntity(ctx, id)
		return err
	})
	require.NoError(t, err)
	return entity
}

func (f *fixture) balance(t *testing.T, account store.Account, asset string) uint64 {
	t.Helper()
	var bal uint64
	err := f.store.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		bal, err = tx.Balance(ctx, account, asset)
		return err
	})
	require.NoError(t, err)
	return bal
}

func (f *fixture) rewards(t *testing.T, user, entityId string) *models.UserRewards {
	t.Helper()
	var rewards *models.UserRewards
	err := f.store.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		rewards, err = tx.GetUserRewards(ctx, user, keys.Entity(entityId))
		return err
	})
	require.NoError(t, err)
	return rewards
}
