package api

import (
	"context"
	"testing"

	"bonding-rewards-go/internal/engine"
	"bonding-rewards-go/internal/memory"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMarket(t *testing.T) (*Service, *engine.Engine) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	e := engine.New(s)

	_, err := e.InitializePlatform(ctx, "admin", engine.PlatformParams{
		ReserveAsset:    "USDT",
		Oracle:          "oracle",
		DailyRewardPool: 5_000_000,
	})
	require.NoError(t, err)
	_, err = e.CreateEntity(ctx, "admin", engine.CreateEntityRequest{
		Id:     "agent_one",
		Name:   "Agent One",
		Symbol: "ONE",
		Curve:  models.BondingCurveParams{BasePrice: 1_000_000, CurveFactor: 1, MaxSupply: 1_000_000_000},
	})
	require.NoError(t, err)

	_, err = e.FundHolder(ctx, "admin", "alice", 100_000_000, "")
	require.NoError(t, err)
	_, err = e.Buy(ctx, engine.BuyRequest{EntityId: "agent_one", Buyer: "alice", UsdtAmount: 1_000_000})
	require.NoError(t, err)

	return NewService(s, models.DefaultDecimals), e
}

func TestHealthCheck(t *testing.T) {
	svc := NewService(memory.NewStore(), 0)
	assert.Error(t, svc.HealthCheck(context.Background()), "no platform yet")

	svc, _ = setupMarket(t)
	assert.NoError(t, svc.HealthCheck(context.Background()))
}

func TestGetPlatform(t *testing.T) {
	svc, e := setupMarket(t)
	_, err := e.FundRewardPool(context.Background(), 2_500_000, "pool-1")
	require.NoError(t, err)

	view, err := svc.GetPlatform(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", view.Authority)
	assert.Equal(t, uint64(1), view.TotalEntities)
	assert.Equal(t, "5", view.DailyRewardPool.String())
	assert.Equal(t, "2.5", view.RewardPoolBalance.String())
}

func TestGetEntity(t *testing.T) {
	svc, e := setupMarket(t)
	_, err := e.ReportPerformance(context.Background(), "oracle", engine.PerformanceReport{
		EntityId: "agent_one",
		Likes:    10,
		Views:    100,
	})
	require.NoError(t, err)

	view, err := svc.GetEntity(context.Background(), "agent_one")
	require.NoError(t, err)
	assert.Equal(t, "1.002001", view.SpotPrice.String())
	assert.Equal(t, "1", view.CirculatingSupply.String())
	assert.Equal(t, "1", view.ReserveBalance.String())
	assert.Equal(t, uint64(20), view.CurrentScore)

	_, err = svc.GetEntity(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListEntities(t *testing.T) {
	svc, e := setupMarket(t)
	_, err := e.CreateEntity(context.Background(), "admin", engine.CreateEntityRequest{
		Id:    "agent_zero",
		Curve: models.BondingCurveParams{BasePrice: 1, MaxSupply: 1},
	})
	require.NoError(t, err)

	views, err := svc.ListEntities(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "agent_one", views[0].Id)
	assert.Equal(t, "agent_zero", views[1].Id)
}

func TestGetHolderBalances(t *testing.T) {
	svc, _ := setupMarket(t)

	balances, err := svc.GetHolderBalances(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "USDT", balances[0].Asset)
	assert.Equal(t, "99", balances[0].Balance.String())
	assert.Equal(t, "ONE", balances[1].Asset)
	assert.Equal(t, "agent_one", balances[1].EntityId)
	assert.Equal(t, "1", balances[1].Balance.String())

	balances, err = svc.GetHolderBalances(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestGetUserRewards(t *testing.T) {
	svc, e := setupMarket(t)
	ctx := context.Background()

	view, err := svc.GetUserRewards(ctx, "alice", "agent_one")
	require.NoError(t, err)
	assert.True(t, view.Pending.IsZero())

	_, err = e.Accrue(ctx, "admin", "alice", "agent_one", 750_000)
	require.NoError(t, err)

	view, err = svc.GetUserRewards(ctx, "alice", "agent_one")
	require.NoError(t, err)
	assert.Equal(t, "0.75", view.Pending.String())

	_, err = svc.GetUserRewards(ctx, "alice", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetTransactionHistory(t *testing.T) {
	svc, _ := setupMarket(t)

	records, err := svc.GetTransactionHistory(context.Background(), store.HolderAccount("alice"), "USDT", 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "debit", records[0].Type)
	assert.Equal(t, "buy", records[0].Operation)
	assert.Equal(t, "-1", records[0].Amount.String())
	assert.Equal(t, "99", records[0].BalanceAfter.String())
	assert.Equal(t, "mint", records[1].Type)
	assert.Equal(t, "fund_holder", records[1].Operation)
}

type noHistoryStore struct{ store.Store }

func TestGetTransactionHistory_Unsupported(t *testing.T) {
	svc := NewService(noHistoryStore{memory.NewStore()}, 0)
	_, err := svc.GetTransactionHistory(context.Background(), store.HolderAccount("alice"), "USDT", 10, 0)
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}
