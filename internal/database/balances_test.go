package database

import (
	"context"
	"testing"

	"bonding-rewards-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestGetBalance_NoBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	balance, err := service.GetBalance(context.Background(), store.HolderAccount("user1"), "USDT/6")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}

	if !balance.Equal(decimal.Zero) {
		t.Errorf("Expected balance 0, got %s", balance.String())
	}
}

func TestGetAllBalances(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	account := store.HolderAccount("user1")

	_, err := applyLegs(t, service,
		LegParams{account, "USDT/6", legCredit, decimal.NewFromInt(5_000_000), nil},
		LegParams{account, "TKNA1B2C3D4E5F6/6", legMint, decimal.NewFromInt(42), nil},
		LegParams{account, "TKN000000000000/6", legMint, decimal.NewFromInt(7), nil},
		LegParams{account, "TKN000000000000/6", legBurn, decimal.NewFromInt(-7), nil},
	)
	if err != nil {
		t.Fatalf("ApplyLeg failed: %v", err)
	}

	balances, err := service.GetAllBalances(ctx, account)
	if err != nil {
		t.Fatalf("GetAllBalances failed: %v", err)
	}

	// The fully burned token is omitted
	if len(balances) != 2 {
		t.Fatalf("Expected 2 balances, got %d", len(balances))
	}
	if balances[0].Asset != "TKNA1B2C3D4E5F6/6" || !balances[0].Balance.Equal(decimal.NewFromInt(42)) {
		t.Errorf("Unexpected first balance %s %s", balances[0].Asset, balances[0].Balance.String())
	}
	if balances[1].Asset != "USDT/6" || balances[1].Account != string(account) {
		t.Errorf("Unexpected second balance %s for %s", balances[1].Asset, balances[1].Account)
	}
}

func TestReconcileBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	account := store.HolderAccount("user1")

	_, err := applyLegs(t, service,
		LegParams{account, "USDT/6", legCredit, decimal.NewFromInt(300), nil},
		LegParams{account, "USDT/6", legDebit, decimal.NewFromInt(-120), nil},
	)
	if err != nil {
		t.Fatalf("ApplyLeg failed: %v", err)
	}

	if err := service.ReconcileBalance(ctx, account, "USDT/6"); err != nil {
		t.Fatalf("ReconcileBalance failed: %v", err)
	}

	// Tamper with the hot balance and expect a mismatch
	if _, err := service.db.Exec("UPDATE account_balances SET balance = '999' WHERE account = ?", string(account)); err != nil {
		t.Fatalf("Failed to tamper balance: %v", err)
	}
	if err := service.ReconcileBalance(ctx, account, "USDT/6"); err == nil {
		t.Error("Expected reconciliation mismatch, got nil")
	}
}
