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
	"flag"
	"fmt"
	"strings"

	"bonding-rewards-go/internal/api"
	"bonding-rewards-go/internal/common"
	"bonding-rewards-go/internal/config"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers        int
	totalBalances     int
	usersWithBalances int
}

func formatTransactionId(txId string) string {
	if txId == "" {
		return "none"
	}
	if len(txId) > 8 {
		return txId[:8] + "..."
	}
	return txId
}

func printPlatform(platform *models.PlatformView, entities []models.EntityView) {
	common.PrintHeader("PLATFORM", common.DefaultWidth)
	fmt.Printf("Authority: %s   Oracle: %s   Entities: %d\n", platform.Authority, platform.Oracle, platform.TotalEntities)
	fmt.Printf("Reward pool: %s (daily budget %s)\n",
		common.FormatAmount(platform.RewardPoolBalance, platform.ReserveAsset),
		common.FormatAmount(platform.DailyRewardPool, platform.ReserveAsset))

	for _, entity := range entities {
		fmt.Printf("\n┌─ Entity: %s (%s)\n", entity.Name, entity.Symbol)
		fmt.Printf("│  ID: %s   Mint: %s\n", entity.Id, entity.TokenMint)
		common.PrintBoxSeparator(78)
		common.PrintDetails([]common.Detail{
			{Label: "Spot price", Value: common.FormatAmount(entity.SpotPrice, platform.ReserveAsset)},
			{Label: "Supply", Value: entity.CirculatingSupply.String() + " / " + entity.MaxSupply.String()},
			{Label: "Reserve", Value: common.FormatAmount(entity.ReserveBalance, platform.ReserveAsset)},
			{Label: "Daily score", Value: fmt.Sprintf("%d", entity.CurrentScore)},
		})
	}
}

func printBalances(balances []models.HolderBalance) {
	for i, balance := range balances {
		fmt.Printf("%s %-15s: %20s\n", common.BoxPrefix(i == len(balances)-1), balance.Asset, balance.Balance.String())
	}
}

func processUser(ctx context.Context, user string, apiService *api.Service) (int, error) {
	balances, err := apiService.GetHolderBalances(ctx, user)
	if err != nil {
		return 0, err
	}
	if len(balances) == 0 {
		return 0, nil
	}

	fmt.Printf("\n┌─ Holder: %s\n", user)
	fmt.Printf("│  Assets: %d\n", len(balances))
	common.PrintBoxSeparator(78)
	printBalances(balances)

	return len(balances), nil
}

func processUsersAndGenerateReport(ctx context.Context, users []string, apiService *api.Service, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		balanceCount, err := processUser(ctx, user, apiService)
		if err != nil {
			logger.Error("Failed to process holder", zap.String("user", user), zap.Error(err))
			continue
		}

		if balanceCount > 0 {
			stats.usersWithBalances++
			stats.totalBalances += balanceCount
		}
	}

	return stats
}

func printHistory(ctx context.Context, apiService *api.Service, account, asset string, limit int) error {
	records, err := apiService.GetTransactionHistory(ctx, store.Account(account), asset, limit, 0)
	if err != nil {
		return err
	}

	common.PrintHeader(fmt.Sprintf("HISTORY: %s %s", account, asset), common.WideWidth)
	for i, r := range records {
		fmt.Printf("%s %s %-8s %-12s %14s -> %14s  ref=%s (%s)\n",
			common.BoxPrefix(i == len(records)-1),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Type,
			r.Operation,
			r.Amount.String(),
			r.BalanceAfter.String(),
			formatTransactionId(r.Reference),
			r.Status)
	}
	common.PrintFooter(fmt.Sprintf("%d entries", len(records)), common.WideWidth)
	return nil
}

type accountBalanceReader interface {
	GetAllBalances(ctx context.Context, account store.Account) ([]models.AccountBalance, error)
}

type reconciler interface {
	ReconcileBalance(ctx context.Context, account store.Account, asset string) error
}

// printAccount prints the backend's raw balances for one ledger account and,
// when requested, reconciles each one against its legs.
func printAccount(ctx context.Context, s store.Store, account string, reconcile bool, decimals int32, logger *zap.Logger) error {
	reader, ok := s.(accountBalanceReader)
	if !ok {
		return fmt.Errorf("store backend does not expose account balances")
	}
	balances, err := reader.GetAllBalances(ctx, store.Account(account))
	if err != nil {
		return err
	}

	checker, canReconcile := s.(reconciler)
	if reconcile && !canReconcile {
		logger.Warn("Store backend does not support reconciliation")
	}

	fmt.Printf("\n┌─ Account: %s\n", account)
	fmt.Printf("│  Assets: %d\n", len(balances))
	common.PrintBoxSeparator(78)
	for i, balance := range balances {
		status := ""
		if reconcile && canReconcile {
			status = "reconciled"
			if err := checker.ReconcileBalance(ctx, store.Account(account), balance.Asset); err != nil {
				status = "MISMATCH"
				logger.Error("Reconciliation failed",
					zap.String("account", account),
					zap.String("asset", balance.Asset),
					zap.Error(err))
			}
		}
		fmt.Printf("%s %-15s: %20s (v%d, last_tx: %s) %s\n",
			common.BoxPrefix(i == len(balances)-1),
			balance.Asset,
			balance.Balance.Shift(-decimals).String(),
			balance.Version,
			formatTransactionId(balance.LastTransactionId),
			status)
	}
	return nil
}

// holderList returns the -users flag entries, or the catalog's development
// holders when none are given.
func holderList(usersFlag, catalogFile string, logger *zap.Logger) []string {
	if usersFlag != "" {
		var users []string
		for _, u := range strings.Split(usersFlag, ",") {
			if u = strings.TrimSpace(u); u != "" {
				users = append(users, u)
			}
		}
		return users
	}

	catalog, err := common.LoadEntityCatalog(catalogFile)
	if err != nil {
		logger.Warn("No -users given and entity catalog unavailable", zap.String("file", catalogFile), zap.Error(err))
		return nil
	}
	users := make([]string, 0, len(catalog.Holders))
	for _, h := range catalog.Holders {
		users = append(users, h.Identity)
	}
	return users
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usersFlag := flag.String("users", "", "Comma-separated holder identities (default: holders from the entity catalog)")
	historyFlag := flag.String("history", "", "Print ledger history for this account, e.g. holders:alice")
	assetFlag := flag.String("asset", "", "Asset for -history (default: reserve asset)")
	limitFlag := flag.Int("limit", 20, "Maximum history entries")
	accountFlag := flag.String("account", "", "Print raw backend balances for this ledger account, e.g. holders:alice")
	reconcileFlag := flag.Bool("reconcile", false, "With -account, reconcile every balance against its legs")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *accountFlag != "" {
		if err := printAccount(ctx, services.Store, *accountFlag, *reconcileFlag, cfg.Platform.Decimals, logger); err != nil {
			logger.Fatal("Failed to read account", zap.String("account", *accountFlag), zap.Error(err))
		}
		return
	}

	if *historyFlag != "" {
		asset := *assetFlag
		if asset == "" {
			asset = cfg.Platform.ReserveAsset
		}
		if err := printHistory(ctx, services.Api, *historyFlag, asset, *limitFlag); err != nil {
			logger.Fatal("Failed to read history", zap.String("account", *historyFlag), zap.Error(err))
		}
		return
	}

	platform, err := services.Api.GetPlatform(ctx)
	if err != nil {
		logger.Fatal("Failed to read platform", zap.Error(err))
	}
	entities, err := services.Api.ListEntities(ctx)
	if err != nil {
		logger.Fatal("Failed to list entities", zap.Error(err))
	}
	printPlatform(platform, entities)

	users := holderList(*usersFlag, cfg.Platform.EntitiesFile, logger)

	common.PrintHeader("HOLDER BALANCE REPORT", common.DefaultWidth)
	stats := processUsersAndGenerateReport(ctx, users, services.Api, logger)

	summary := fmt.Sprintf("SUMMARY: %d holders with balances (%d total balances across %d holders queried)",
		stats.usersWithBalances, stats.totalBalances, stats.totalUsers)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("holders_queried", stats.totalUsers),
		zap.Int("holders_with_balances", stats.usersWithBalances),
		zap.Int("total_balances", stats.totalBalances))
}
