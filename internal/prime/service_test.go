package prime

import (
	"testing"

	"bonding-rewards-go/internal/models"
)

func TestSelectFundingWallet(t *testing.T) {
	wallets := []models.Wallet{
		{Id: "w-usdc", Symbol: "USDC", Type: "TRADING"},
		{Id: "w-usdt", Symbol: "usdt", Type: "TRADING"},
		{Id: "w-usdt-2", Symbol: "USDT", Type: "TRADING"},
	}

	info, ok := selectFundingWallet(wallets, "USDT")
	if !ok {
		t.Fatal("Expected a USDT wallet")
	}
	if info.Id != "w-usdt" {
		t.Errorf("Expected first matching wallet w-usdt, got %s", info.Id)
	}
	if info.AssetSymbol != "USDT" {
		t.Errorf("Expected normalized symbol USDT, got %s", info.AssetSymbol)
	}

	if _, ok := selectFundingWallet(wallets, "ETH"); ok {
		t.Error("Expected no ETH wallet")
	}
	if _, ok := selectFundingWallet(nil, "USDT"); ok {
		t.Error("Expected no wallet from an empty list")
	}
}
