/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time checks: *Service must satisfy store.Store and store.HistoryReader.
var (
	_ store.Store         = (*Service)(nil)
	_ store.HistoryReader = (*Service)(nil)
)

type Service struct {
	db        *sql.DB
	subledger *SubledgerService
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	// _txlock=immediate takes the write lock at BEGIN so units of work serialize
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_txlock=immediate&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service, err := newServiceFromDB(db)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, err
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func newServiceFromDB(db *sql.DB) (*Service, error) {
	subledger := NewSubledgerService(db)
	if err := subledger.InitSchema(); err != nil {
		return nil, fmt.Errorf("unable to initialize subledger schema: %w", err)
	}
	return &Service{db: db, subledger: subledger}, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

// Atomic runs fn inside one SQL transaction. Records and balances written
// through tx commit together or not at all.
func (s *Service) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	op := models.GetOperation(ctx)

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := sqlTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			zap.L().Warn("Failed to rollback transaction", zap.Error(err))
		}
	}()

	if op != nil && op.Reference != "" {
		var existing string
		err := sqlTx.QueryRowContext(ctx, queryCheckDuplicateOperation, op.Reference).Scan(&existing)
		if err == nil {
			zap.L().Info("Duplicate operation detected, skipping", zap.String("reference", op.Reference))
			return fmt.Errorf("%w: operation %s already applied", store.ErrDuplicateTransaction, op.Reference)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check duplicate operation: %w", err)
		}
	}

	t := newTxn(sqlTx, s.subledger, op)
	if err := fn(ctx, t); err != nil {
		return err
	}

	if op != nil && op.Reference != "" && t.legs > 0 {
		if _, err := sqlTx.ExecContext(ctx, queryInsertOperation, op.Reference, op.Kind, op.EntityId, op.Actor); err != nil {
			if isConstraintError(err) {
				return fmt.Errorf("%w: operation %s already applied", store.ErrDuplicateTransaction, op.Reference)
			}
			return fmt.Errorf("failed to record operation: %w", err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AtomicRecords runs fn against the records table only. Ledger backends that
// keep balances elsewhere use it to persist state alongside their own postings.
func (s *Service) AtomicRecords(ctx context.Context, fn func(ctx context.Context, records store.Records) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := sqlTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			zap.L().Warn("Failed to rollback transaction", zap.Error(err))
		}
	}()

	t := newTxn(sqlTx, s.subledger, models.GetOperation(ctx))
	if err := fn(ctx, t.Repository); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Subledger convenience methods

func (s *Service) GetBalance(ctx context.Context, account store.Account, asset string) (decimal.Decimal, error) {
	return s.subledger.GetBalance(ctx, account, asset)
}

func (s *Service) GetAllBalances(ctx context.Context, account store.Account) ([]models.AccountBalance, error) {
	return s.subledger.GetAllBalances(ctx, account)
}

func (s *Service) GetTransactionHistory(ctx context.Context, account store.Account, asset string, limit, offset int) ([]models.Transaction, error) {
	return s.subledger.GetTransactionHistory(ctx, account, asset, limit, offset)
}

func (s *Service) ReconcileBalance(ctx context.Context, account store.Account, asset string) error {
	return s.subledger.ReconcileBalance(ctx, account, asset)
}

func (s *Service) GetMostRecentOperationTime(ctx context.Context, kind string) (time.Time, error) {
	return s.subledger.GetMostRecentOperationTime(ctx, kind)
}
