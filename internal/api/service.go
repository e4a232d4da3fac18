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
	"fmt"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"
)

// Service is the read-only view over platform state
type Service struct {
	store    store.Store
	history  store.HistoryReader // nil when the backend keeps no audit trail
	decimals int32
}

func NewService(s store.Store, decimals int32) *Service {
	if decimals <= 0 {
		decimals = models.DefaultDecimals
	}
	history, _ := s.(store.HistoryReader)
	return &Service{
		store:    s,
		history:  history,
		decimals: decimals,
	}
}

func (s *Service) HealthCheck(ctx context.Context) error {
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.GetPlatform(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}
	return nil
}

// GetPlatform returns the platform configuration and the reward pool balance
func (s *Service) GetPlatform(ctx context.Context) (*models.PlatformView, error) {
	var view *models.PlatformView
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		pool, err := tx.Balance(ctx, store.RewardPoolAccount(), platform.ReserveAsset)
		if err != nil {
			return err
		}
		view = &models.PlatformView{
			Authority:         platform.Authority,
			Oracle:            platform.Oracle,
			ReserveAsset:      platform.ReserveAsset,
			TotalEntities:     platform.TotalEntities,
			DailyRewardPool:   models.Human(platform.DailyRewardPool, s.decimals),
			RewardPoolBalance: models.Human(pool, s.decimals),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve platform: %w", err)
	}
	return view, nil
}
