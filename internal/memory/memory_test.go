package memory

import (
	"context"
	"errors"
	"testing"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"
)

var errBoom = errors.New("boom")

func TestAtomic_CommitsOnSuccess(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := store.HolderAccount("alice")

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Mint(ctx, alice, "USDT", 100); err != nil {
			return err
		}
		return tx.PutPlatform(ctx, &models.Platform{Authority: "admin", ReserveAsset: "USDT", Oracle: "oracle"})
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		bal, err := tx.Balance(ctx, alice, "USDT")
		if err != nil {
			return err
		}
		if bal != 100 {
			t.Errorf("expected balance 100, got %d", bal)
		}
		p, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		if p.Authority != "admin" {
			t.Errorf("expected authority admin, got %s", p.Authority)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read Atomic failed: %v", err)
	}
}

func TestAtomic_RollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := store.HolderAccount("alice")

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Mint(ctx, alice, "USDT", 100); err != nil {
			return err
		}
		if err := tx.PutEntity(ctx, &models.Entity{Id: "e1", Curve: models.BondingCurveParams{BasePrice: 1, MaxSupply: 1}}); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}

	_ = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if bal, _ := tx.Balance(ctx, alice, "USDT"); bal != 0 {
			t.Errorf("expected rolled back balance 0, got %d", bal)
		}
		if _, err := tx.GetEntity(ctx, "e1"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected rolled back entity, got %v", err)
		}
		return nil
	})
}

func TestLedger_InsufficientFunds(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	bob := store.HolderAccount("bob")

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Credit(ctx, bob, "USDT", 10); err != nil {
			return err
		}
		return tx.Debit(ctx, bob, "USDT", 11)
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Burn(ctx, bob, "TKN", 1)
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds on burn, got %v", err)
	}
}

func TestAtomic_DuplicateOperation(t *testing.T) {
	s := NewStore()
	ctx := models.WithOperation(context.Background(), &models.Operation{Reference: "prime-tx-1", Kind: "fund_pool"})
	pool := store.RewardPoolAccount()

	fund := func(ctx context.Context, tx store.Tx) error {
		return tx.Mint(ctx, pool, "USDT", 50)
	}
	if err := s.Atomic(ctx, fund); err != nil {
		t.Fatalf("first Atomic failed: %v", err)
	}
	if err := s.Atomic(ctx, fund); !errors.Is(err, store.ErrDuplicateTransaction) {
		t.Fatalf("expected ErrDuplicateTransaction, got %v", err)
	}

	history, err := s.GetTransactionHistory(ctx, pool, "USDT", 10, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(history))
	}
	if history[0].OperationRef != "prime-tx-1" || history[0].TransactionType != "mint" {
		t.Errorf("unexpected leg %+v", history[0])
	}
}

func TestAccounts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_ = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		_ = tx.Mint(ctx, store.HolderAccount("b"), "TKN", 1)
		_ = tx.Mint(ctx, store.HolderAccount("a"), "TKN", 2)
		return tx.Mint(ctx, store.HolderAccount("c"), "USDT", 3)
	})

	got := s.Accounts("TKN")
	if len(got) != 2 || got[0] != "holders:a" || got[1] != "holders:b" {
		t.Errorf("unexpected accounts %v", got)
	}
}
