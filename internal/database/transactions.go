package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Leg types recorded in the transactions table.
const (
	legDebit  = "debit"
	legCredit = "credit"
	legMint   = "mint"
	legBurn   = "burn"
)

var maxUnits = models.Units(math.MaxUint64)

// LegParams contains the parameters for applying one ledger leg
type LegParams struct {
	Account         store.Account
	Asset           string
	TransactionType string
	Amount          decimal.Decimal // signed; negative for debit and burn
	Operation       *models.Operation
}

// ApplyLeg updates one balance and records the leg inside tx
func (s *SubledgerService) ApplyLeg(ctx context.Context, tx *sql.Tx, params LegParams) (*models.Transaction, error) {
	zap.L().Debug("Applying ledger leg",
		zap.String("account", string(params.Account)),
		zap.String("asset", params.Asset),
		zap.String("type", params.TransactionType),
		zap.String("amount", params.Amount.String()))

	// Get current balance
	var currentBalanceStr string
	var accountId string
	var version int64

	err := tx.QueryRowContext(ctx, queryGetAccountBalance, string(params.Account), params.Asset).Scan(&accountId, &currentBalanceStr, &version)

	var currentBalance decimal.Decimal
	if errors.Is(err, sql.ErrNoRows) {
		// Create new account balance record
		accountId = uuid.New().String()
		currentBalance = decimal.Zero
		version = 1

		_, err = tx.ExecContext(ctx, queryInsertAccountBalance, accountId, string(params.Account), params.Asset, "0", 1)
		if err != nil {
			return nil, fmt.Errorf("failed to create account balance: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	} else {
		currentBalance, err = decimal.NewFromString(currentBalanceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse current balance '%s': %w", currentBalanceStr, err)
		}
	}

	// Calculate new balance; balances never go negative
	newBalance := currentBalance.Add(params.Amount)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: %s holds %s %s, needs %s", store.ErrInsufficientFunds,
			params.Account, currentBalance.String(), params.Asset, params.Amount.Neg().String())
	}
	if newBalance.GreaterThan(maxUnits) {
		return nil, fmt.Errorf("%s %s on %s: balance overflow", params.TransactionType, params.Asset, params.Account)
	}

	transaction := &models.Transaction{
		Id:              uuid.New().String(),
		Account:         string(params.Account),
		Asset:           params.Asset,
		TransactionType: params.TransactionType,
		Amount:          params.Amount,
		BalanceBefore:   currentBalance,
		BalanceAfter:    newBalance,
		Status:          "confirmed",
		CreatedAt:       time.Now().UTC(),
	}
	if op := params.Operation; op != nil {
		transaction.OperationRef = op.Reference
		transaction.OperationKind = op.Kind
		transaction.EntityId = op.EntityId
	}

	_, err = tx.ExecContext(ctx, queryInsertTransaction,
		transaction.Id, transaction.Account, transaction.Asset, transaction.TransactionType,
		transaction.Amount.String(), transaction.BalanceBefore.String(), transaction.BalanceAfter.String(),
		transaction.OperationRef, transaction.OperationKind, transaction.EntityId,
		transaction.Status, transaction.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	// Update account balance (with optimistic locking)
	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance, newBalance.String(), transaction.Id, string(params.Account), params.Asset, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	if err := s.addJournalEntries(ctx, tx, transaction); err != nil {
		return nil, fmt.Errorf("failed to add journal entries: %w", err)
	}

	return transaction, nil
}

type journalEntry struct {
	accountType  string
	accountId    string
	debitAmount  decimal.Decimal
	creditAmount decimal.Decimal
}

// addJournalEntries creates double-entry bookkeeping entries. Debits and
// credits of one operation net to zero on the clearing account; mints and
// burns move against the asset's issuance account.
func (s *SubledgerService) addJournalEntries(ctx context.Context, tx *sql.Tx, transaction *models.Transaction) error {
	holder := fmt.Sprintf("%s_%s", transaction.Account, transaction.Asset)
	amount := transaction.Amount.Abs()

	var entries []journalEntry
	switch transaction.TransactionType {
	case legCredit:
		entries = []journalEntry{
			{"account_asset", holder, amount, decimal.Zero},
			{"clearing", "clearing_" + transaction.Asset, decimal.Zero, amount},
		}
	case legDebit:
		entries = []journalEntry{
			{"account_asset", holder, decimal.Zero, amount},
			{"clearing", "clearing_" + transaction.Asset, amount, decimal.Zero},
		}
	case legMint:
		entries = []journalEntry{
			{"account_asset", holder, amount, decimal.Zero},
			{"issuance", "issued_" + transaction.Asset, decimal.Zero, amount},
		}
	case legBurn:
		entries = []journalEntry{
			{"account_asset", holder, decimal.Zero, amount},
			{"issuance", "issued_" + transaction.Asset, amount, decimal.Zero},
		}
	}

	for _, entry := range entries {
		entryId := uuid.New().String()
		_, err := tx.ExecContext(ctx, queryInsertJournalEntry,
			entryId, transaction.Id, entry.accountType, entry.accountId, entry.debitAmount.String(), entry.creditAmount.String())
		if err != nil {
			return err
		}
	}

	return nil
}

// GetTransactionHistory returns paginated transaction history for an account
func (s *SubledgerService) GetTransactionHistory(ctx context.Context, account store.Account, asset string, limit, offset int) ([]models.Transaction, error) {
	zap.L().Debug("Getting transaction history",
		zap.String("account", string(account)),
		zap.String("asset", asset),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetTransactionHistory, string(account), asset, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amountStr, balanceBeforeStr, balanceAfterStr string
		err := rows.Scan(&tx.Id, &tx.Account, &tx.Asset, &tx.TransactionType,
			&amountStr, &balanceBeforeStr, &balanceAfterStr,
			&tx.OperationRef, &tx.OperationKind, &tx.EntityId,
			&tx.Status, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}

		tx.BalanceBefore, err = decimal.NewFromString(balanceBeforeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance before '%s': %w", balanceBeforeStr, err)
		}

		tx.BalanceAfter, err = decimal.NewFromString(balanceAfterStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance after '%s': %w", balanceAfterStr, err)
		}

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// GetMostRecentOperationTime returns when the last operation of the given
// kind committed, or the zero time if none has.
func (s *SubledgerService) GetMostRecentOperationTime(ctx context.Context, kind string) (time.Time, error) {
	var timestampStr sql.NullString
	err := s.db.QueryRowContext(ctx, queryGetMostRecentOperationTime, kind).Scan(&timestampStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get most recent operation time: %w", err)
	}

	if !timestampStr.Valid || timestampStr.String == "" {
		return time.Time{}, nil
	}

	// SQLite's CURRENT_TIMESTAMP is "2006-01-02 15:04:05" in UTC; fall back
	// to the driver's own time formats.
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
	} {
		if parsedTime, err := time.Parse(layout, timestampStr.String); err == nil {
			return parsedTime.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", timestampStr.String)
}
