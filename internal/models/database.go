package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance represents current balance state (hot data)
type AccountBalance struct {
	Id                string          `db:"id"`
	Account           string          `db:"account"`
	Asset             string          `db:"asset"`
	Balance           decimal.Decimal `db:"balance"`
	LastTransactionId string          `db:"last_transaction_id"`
	Version           int64           `db:"version"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Transaction represents one immutable ledger leg (cold data)
type Transaction struct {
	Id              string          `db:"id"`
	Account         string          `db:"account"`
	Asset           string          `db:"asset"`
	TransactionType string          `db:"transaction_type"`
	Amount          decimal.Decimal `db:"amount"`
	BalanceBefore   decimal.Decimal `db:"balance_before"`
	BalanceAfter    decimal.Decimal `db:"balance_after"`
	OperationRef    string          `db:"operation_ref"`
	OperationKind   string          `db:"operation_kind"`
	EntityId        string          `db:"entity_id"`
	Status          string          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
}
