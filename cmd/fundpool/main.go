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
	"os"
	"os/signal"
	"syscall"
	"time"

	"bonding-rewards-go/internal/common"
	"bonding-rewards-go/internal/config"
	"bonding-rewards-go/internal/funding"
	"bonding-rewards-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	walletFlag := flag.String("wallet", "", "Prime wallet id to watch (default: first wallet matching FUNDING_WALLET_SYMBOL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting reward pool funder")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	primeService, portfolio, err := common.InitializePrime(ctx, cfg.Funding.PortfolioName)
	if err != nil {
		zap.L().Fatal("Failed to initialize Prime", zap.Error(err))
	}

	wallet := models.WalletInfo{Id: *walletFlag, AssetSymbol: cfg.Funding.WalletSymbol}
	if wallet.Id == "" {
		found, err := primeService.FindFundingWallet(ctx, portfolio.Id, cfg.Funding.WalletType, cfg.Funding.WalletSymbol)
		if err != nil {
			zap.L().Fatal("No funding wallet found",
				zap.String("portfolio_id", portfolio.Id),
				zap.String("symbol", cfg.Funding.WalletSymbol),
				zap.String("type", cfg.Funding.WalletType),
				zap.Error(err))
		}
		wallet = *found
	}

	// Only the SQLite backend records operation times.
	history, _ := services.Store.(funding.FundingHistory)

	poller := funding.NewPoller(funding.Config{
		Source:          primeService,
		Funder:          services.Engine,
		History:         history,
		PortfolioId:     portfolio.Id,
		Wallet:          wallet,
		Decimals:        cfg.Platform.Decimals,
		LookbackWindow:  cfg.Funding.LookbackWindow,
		PollingInterval: cfg.Funding.PollingInterval,
		CleanupInterval: cfg.Funding.CleanupInterval,
	})
	if err := poller.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start funder", zap.Error(err))
	}

	zap.L().Info("Reward pool funder running",
		zap.String("portfolio_id", portfolio.Id),
		zap.String("wallet_id", wallet.Id))
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping funder...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Funder stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
