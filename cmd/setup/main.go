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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"bonding-rewards-go/internal/common"
	"bonding-rewards-go/internal/config"
	"bonding-rewards-go/internal/engine"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"go.uber.org/zap"
)

type setupStats struct {
	created int
	skipped int
	failed  int
	funded  int
}

func initializePlatform(ctx context.Context, e *engine.Engine, cfg *models.Config) error {
	_, err := e.InitializePlatform(ctx, cfg.Platform.Authority, engine.PlatformParams{
		ReserveAsset:    cfg.Platform.ReserveAsset,
		Oracle:          cfg.Platform.Oracle,
		DailyRewardPool: cfg.Platform.DailyRewardPool,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		zap.L().Info("Platform already initialized")
		return nil
	}
	return err
}

func createEntities(ctx context.Context, e *engine.Engine, authority string, entities []common.EntityConfig) setupStats {
	stats := setupStats{}

	for _, entityConfig := range entities {
		entity, err := e.CreateEntity(ctx, authority, engine.CreateEntityRequest{
			Id:            entityConfig.Id,
			Name:          entityConfig.Name,
			Symbol:        entityConfig.Symbol,
			Uri:           entityConfig.Uri,
			InitialSupply: entityConfig.InitialSupply,
			Curve:         entityConfig.Curve(),
		})
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			stats.skipped++
			fmt.Printf("  ~ %-20s already exists\n", entityConfig.Id)
		case err != nil:
			stats.failed++
			fmt.Printf("  ✗ %-20s %v\n", entityConfig.Id, err)
		default:
			stats.created++
			fmt.Printf("  ✓ %-20s mint %s\n", entity.Id, entity.TokenAsset())
		}
	}

	return stats
}

func fundHolders(ctx context.Context, e *engine.Engine, cfg *models.Config, holders []common.HolderConfig) int {
	funded := 0
	for _, holder := range holders {
		amount, err := models.ParseUnits(holder.Funding, cfg.Platform.Decimals)
		if err != nil {
			zap.L().Error("Invalid holder funding", zap.String("identity", holder.Identity), zap.Error(err))
			continue
		}
		if amount == 0 {
			continue
		}

		// A fixed reference keeps re-runs from funding twice.
		credited, err := e.FundHolder(ctx, cfg.Platform.Authority, holder.Identity, amount, "setup-fund-"+holder.Identity)
		if err != nil {
			zap.L().Error("Failed to fund holder", zap.String("identity", holder.Identity), zap.Error(err))
			continue
		}
		if credited {
			funded++
			fmt.Printf("  ✓ %-20s %s %s\n", holder.Identity, holder.Funding, cfg.Platform.ReserveAsset)
		}
	}
	return funded
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	entitiesFlag := flag.String("entities", "", "Path to the entity catalog (default: ENTITIES_FILE)")
	skipHolders := flag.Bool("skip-holders", false, "Do not fund the development holders listed in the catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	catalogFile := cfg.Platform.EntitiesFile
	if *entitiesFlag != "" {
		catalogFile = *entitiesFlag
	}

	catalog, err := common.LoadEntityCatalog(catalogFile)
	if err != nil {
		logger.Fatal("Failed to load entity catalog", zap.Error(err))
	}
	logger.Info("Entity catalog loaded",
		zap.String("file", catalogFile),
		zap.Int("entities", len(catalog.Entities)),
		zap.Int("holders", len(catalog.Holders)))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := initializePlatform(ctx, services.Engine, cfg); err != nil {
		logger.Fatal("Failed to initialize platform", zap.Error(err))
	}

	common.PrintHeader("ENTITY SETUP", common.DefaultWidth)
	stats := createEntities(ctx, services.Engine, cfg.Platform.Authority, catalog.Entities)

	if !*skipHolders && len(catalog.Holders) > 0 {
		common.PrintHeader("HOLDER FUNDING", common.DefaultWidth)
		stats.funded = fundHolders(ctx, services.Engine, cfg, catalog.Holders)
	}

	summary := fmt.Sprintf("SUMMARY: %d entities created, %d already existed, %d failed, %d holders funded",
		stats.created, stats.skipped, stats.failed, stats.funded)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Setup completed",
		zap.Int("entities_created", stats.created),
		zap.Int("entities_skipped", stats.skipped),
		zap.Int("entities_failed", stats.failed),
		zap.Int("holders_funded", stats.funded))
}
