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

package api

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"go.uber.org/zap"
)

// ErrHistoryUnavailable is returned when the store keeps no per-account history.
var ErrHistoryUnavailable = errors.New("transaction history not supported by this store")

// GetHolderBalances returns a holder's non-zero reserve-asset and token balances
func (s *Service) GetHolderBalances(ctx context.Context, user string) ([]models.HolderBalance, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required")
	}

	account := store.HolderAccount(user)
	var result []models.HolderBalance
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		reserve, err := tx.Balance(ctx, account, platform.ReserveAsset)
		if err != nil {
			return err
		}
		if reserve > 0 {
			result = append(result, models.HolderBalance{
				Asset:   platform.ReserveAsset,
				Balance: models.Human(reserve, s.decimals),
			})
		}

		entities, err := tx.ListEntities(ctx)
		if err != nil {
			return err
		}
		sort.Slice(entities, func(i, j int) bool { return entities[i].Id < entities[j].Id })
		for _, entity := range entities {
			held, err := tx.Balance(ctx, account, entity.TokenAsset())
			if err != nil {
				return err
			}
			if held == 0 {
				continue
			}
			result = append(result, models.HolderBalance{
				Asset:    entity.Symbol,
				EntityId: entity.Id,
				Balance:  models.Human(held, s.decimals),
			})
		}
		return nil
	})
	if err != nil {
		zap.L().Error("Failed to get holder balances", zap.String("user", user), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve balances: %w", err)
	}
	return result, nil
}

// GetTransactionHistory returns paginated ledger legs for an account and asset
func (s *Service) GetTransactionHistory(ctx context.Context, account store.Account, asset string, limit, offset int) ([]models.TransactionRecord, error) {
	if account == "" || asset == "" {
		return nil, fmt.Errorf("account and asset are required")
	}
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.history.GetTransactionHistory(ctx, account, asset, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history",
			zap.String("account", string(account)),
			zap.String("asset", asset),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve transaction history")
	}

	result := make([]models.TransactionRecord, len(transactions))
	for i, tx := range transactions {
		result[i] = models.TransactionRecord{
			Id:           tx.Id,
			Type:         tx.TransactionType,
			Asset:        tx.Asset,
			Amount:       tx.Amount.Shift(-s.decimals),
			BalanceAfter: tx.BalanceAfter.Shift(-s.decimals),
			Operation:    tx.OperationKind,
			Reference:    tx.OperationRef,
			EntityId:     tx.EntityId,
			Status:       tx.Status,
			CreatedAt:    tx.CreatedAt,
		}
	}

	return result, nil
}
