package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %s", cfg.Store.Backend)
	}
	if cfg.Platform.ReserveAsset != "USDT" || cfg.Platform.Decimals != 6 {
		t.Errorf("unexpected platform defaults %+v", cfg.Platform)
	}
	if cfg.Funding.WalletSymbol != cfg.Platform.ReserveAsset {
		t.Errorf("funding wallet should default to the reserve asset, got %s", cfg.Funding.WalletSymbol)
	}
	if cfg.Funding.PortfolioName != "Default Portfolio" {
		t.Errorf("expected Default Portfolio, got %s", cfg.Funding.PortfolioName)
	}
	if cfg.Distributor.Schedule != "@daily" {
		t.Errorf("expected @daily schedule, got %s", cfg.Distributor.Schedule)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("RESERVE_ASSET", "USDC")
	t.Setenv("DAILY_REWARD_POOL", "42")
	t.Setenv("FUNDING_POLLING_INTERVAL", "5s")
	t.Setenv("DISTRIBUTE_ON_START", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("expected memory backend, got %s", cfg.Store.Backend)
	}
	if cfg.Platform.DailyRewardPool != 42 {
		t.Errorf("expected daily pool 42, got %d", cfg.Platform.DailyRewardPool)
	}
	if cfg.Funding.PollingInterval != 5*time.Second {
		t.Errorf("expected 5s polling, got %s", cfg.Funding.PollingInterval)
	}
	if cfg.Funding.WalletSymbol != "USDC" {
		t.Errorf("expected USDC wallet, got %s", cfg.Funding.WalletSymbol)
	}
	if !cfg.Distributor.RunOnStart {
		t.Error("expected RunOnStart")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"STORE_BACKEND":           "postgres",
		"DAILY_REWARD_POOL":       "-1",
		"FUNDING_LOOKBACK_WINDOW": "soon",
		"DB_PING_TIMEOUT":         "5",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
