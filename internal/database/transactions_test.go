package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	service, err := newServiceFromDB(db)
	if err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func applyLegs(t *testing.T, service *Service, legs ...LegParams) ([]*models.Transaction, error) {
	t.Helper()
	ctx := context.Background()

	tx, err := service.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}

	var results []*models.Transaction
	for _, leg := range legs {
		result, err := service.subledger.ApplyLeg(ctx, tx, leg)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		results = append(results, result)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return results, nil
}

func TestApplyLeg_Credit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := store.HolderAccount("alice")
	amount := decimal.NewFromInt(1_500_000)

	results, err := applyLegs(t, service, LegParams{account, "USDT/6", legCredit, amount, nil})
	if err != nil {
		t.Fatalf("ApplyLeg failed: %v", err)
	}

	result := results[0]
	if result.Account != string(account) {
		t.Errorf("Expected account %s, got %s", account, result.Account)
	}
	if result.Asset != "USDT/6" {
		t.Errorf("Expected asset USDT/6, got %s", result.Asset)
	}
	if !result.Amount.Equal(amount) {
		t.Errorf("Expected amount %s, got %s", amount.String(), result.Amount.String())
	}
	if !result.BalanceBefore.IsZero() {
		t.Errorf("Expected balance before 0, got %s", result.BalanceBefore.String())
	}
	if !result.BalanceAfter.Equal(amount) {
		t.Errorf("Expected balance %s, got %s", amount.String(), result.BalanceAfter.String())
	}
}

func TestApplyLeg_Debit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := store.HolderAccount("alice")

	results, err := applyLegs(t, service,
		LegParams{account, "USDT/6", legCredit, decimal.NewFromInt(2_000_000), nil},
		LegParams{account, "USDT/6", legDebit, decimal.NewFromInt(-500_000), nil},
	)
	if err != nil {
		t.Fatalf("ApplyLeg failed: %v", err)
	}

	expectedBalance := decimal.NewFromInt(1_500_000)
	if !results[1].BalanceAfter.Equal(expectedBalance) {
		t.Errorf("Expected balance %s, got %s", expectedBalance.String(), results[1].BalanceAfter.String())
	}
}

func TestApplyLeg_InsufficientFunds(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := store.HolderAccount("bob")

	_, err := applyLegs(t, service,
		LegParams{account, "USDT/6", legCredit, decimal.NewFromInt(10), nil},
		LegParams{account, "USDT/6", legDebit, decimal.NewFromInt(-11), nil},
	)
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected insufficient funds error, got: %v", err)
	}

	// The rolled back credit must not be visible either
	balance, err := service.GetBalance(context.Background(), account, "USDT/6")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("Expected balance 0 after rollback, got %s", balance.String())
	}
}

func TestApplyLeg_Overflow(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := store.HolderAccount("whale")

	_, err := applyLegs(t, service,
		LegParams{account, "TKN", legMint, maxUnits, nil},
		LegParams{account, "TKN", legMint, decimal.NewFromInt(1), nil},
	)
	if err == nil {
		t.Fatal("Expected overflow error, got nil")
	}
}

func TestApplyLeg_JournalEntries(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := store.HolderAccount("carol")
	op := &models.Operation{Reference: "op-1", Kind: "buy", EntityId: "e1"}

	results, err := applyLegs(t, service,
		LegParams{account, "TKN", legMint, decimal.NewFromInt(40), op},
		LegParams{account, "TKN", legBurn, decimal.NewFromInt(-15), op},
	)
	if err != nil {
		t.Fatalf("ApplyLeg failed: %v", err)
	}
	if results[0].OperationRef != "op-1" || results[0].EntityId != "e1" {
		t.Errorf("Expected operation metadata on leg, got %+v", results[0])
	}

	var count int
	if err := service.db.QueryRow("SELECT COUNT(*) FROM journal_entries").Scan(&count); err != nil {
		t.Fatalf("Failed to count journal entries: %v", err)
	}
	if count != 4 {
		t.Errorf("Expected 4 journal entries, got %d", count)
	}

	var issued string
	err = service.db.QueryRow(
		"SELECT credit_amount FROM journal_entries WHERE account_id = 'issued_TKN' AND transaction_id = ?",
		results[0].Id).Scan(&issued)
	if err != nil {
		t.Fatalf("Failed to read issuance entry: %v", err)
	}
	if issued != "40" {
		t.Errorf("Expected issuance credit 40, got %s", issued)
	}
}

func TestGetTransactionHistory_NewestFirst(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	account := store.HolderAccount("dave")
	for _, amount := range []int64{1, 2, 3} {
		if _, err := applyLegs(t, service, LegParams{account, "USDT/6", legCredit, decimal.NewFromInt(amount), nil}); err != nil {
			t.Fatalf("ApplyLeg failed: %v", err)
		}
	}

	history, err := service.GetTransactionHistory(context.Background(), account, "USDT/6", 2, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(history))
	}
	if !history[0].Amount.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected newest amount 3, got %s", history[0].Amount.String())
	}
	if !history[1].BalanceAfter.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected second balance after 3, got %s", history[1].BalanceAfter.String())
	}
}
