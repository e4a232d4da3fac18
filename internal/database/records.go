package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bonding-rewards-go/internal/codec"
	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// txn is the unit-of-work handle over a single *sql.Tx. Record writes are
// versioned: a write only succeeds against the version this txn read.
type txn struct {
	store.Repository

	tx        *sql.Tx
	subledger *SubledgerService
	op        *models.Operation
	versions  map[keys.Address]int64 // 0 means known absent
	legs      int
}

func newTxn(tx *sql.Tx, subledger *SubledgerService, op *models.Operation) *txn {
	t := &txn{
		tx:        tx,
		subledger: subledger,
		op:        op,
		versions:  make(map[keys.Address]int64),
	}
	t.Repository = store.NewRepository(t)
	return t
}

func (t *txn) Load(ctx context.Context, addr keys.Address) ([]byte, error) {
	var data []byte
	var version int64
	err := t.tx.QueryRowContext(ctx, queryGetRecord, addr.String()).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		t.versions[addr] = 0
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", addr, err)
	}
	t.versions[addr] = version
	return data, nil
}

func (t *txn) Save(ctx context.Context, addr keys.Address, kind codec.Kind, data []byte) error {
	version, known := t.versions[addr]
	if !known {
		err := t.tx.QueryRowContext(ctx, queryGetRecordVersion, addr.String()).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			version = 0
		} else if err != nil {
			return fmt.Errorf("failed to read record version %s: %w", addr, err)
		}
	}

	if version == 0 {
		if _, err := t.tx.ExecContext(ctx, queryInsertRecord, addr.String(), string(kind), data); err != nil {
			if isConstraintError(err) {
				return fmt.Errorf("record %s insert failed - %w", addr, store.ErrConcurrentModification)
			}
			return fmt.Errorf("failed to insert record %s: %w", addr, err)
		}
		t.versions[addr] = 1
		return nil
	}

	result, err := t.tx.ExecContext(ctx, queryUpdateRecord, data, addr.String(), version)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", addr, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("record %s update failed - %w", addr, store.ErrConcurrentModification)
	}
	t.versions[addr] = version + 1
	return nil
}

func (t *txn) List(ctx context.Context, kind codec.Kind) ([][]byte, error) {
	rows, err := t.tx.QueryContext(ctx, queryListRecordsByKind, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", kind, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, data)
	}
	return out, rows.Err()
}

func (t *txn) Balance(ctx context.Context, account store.Account, asset string) (uint64, error) {
	var balanceStr string
	err := t.tx.QueryRowContext(ctx, queryGetBalance, string(account), asset).Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return 0, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}
	return models.UnitsFromDecimal(balance)
}

func (t *txn) Debit(ctx context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(ctx, account, asset, legDebit, models.Units(amount).Neg())
}

func (t *txn) Credit(ctx context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(ctx, account, asset, legCredit, models.Units(amount))
}

func (t *txn) Mint(ctx context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(ctx, account, asset, legMint, models.Units(amount))
}

func (t *txn) Burn(ctx context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(ctx, account, asset, legBurn, models.Units(amount).Neg())
}

func (t *txn) apply(ctx context.Context, account store.Account, asset, legType string, amount decimal.Decimal) error {
	_, err := t.subledger.ApplyLeg(ctx, t.tx, LegParams{
		Account:         account,
		Asset:           asset,
		TransactionType: legType,
		Amount:          amount,
		Operation:       t.op,
	})
	if err != nil {
		return err
	}
	t.legs++
	return nil
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
