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

package funding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bonding-rewards-go/internal/models"

	"go.uber.org/zap"
)

// Only imported deposits are final.
const (
	depositType     = "DEPOSIT"
	fundPoolKind    = "fund_pool"
	statusImported  = "TRANSACTION_IMPORTED"
	referencePrefix = "prime-"
	defaultDecimals = models.DefaultDecimals
	defaultLookback = 6 * time.Hour
	defaultPolling  = 30 * time.Second
	defaultCleanup  = 15 * time.Minute
)

// WalletSource lists deposits into a custody wallet.
type WalletSource interface {
	ListWalletTransactions(ctx context.Context, portfolioId, walletId string, startTime time.Time) ([]models.PrimeTransaction, error)
}

// PoolFunder credits the reward pool.
type PoolFunder interface {
	FundRewardPool(ctx context.Context, amount uint64, reference string) (bool, error)
}

// FundingHistory reports when the reward pool was last funded.
type FundingHistory interface {
	GetMostRecentOperationTime(ctx context.Context, kind string) (time.Time, error)
}

// Config contains configuration for Poller
type Config struct {
	Source          WalletSource
	Funder          PoolFunder
	History         FundingHistory // optional; widens the startup recovery window
	PortfolioId     string
	Wallet          models.WalletInfo
	Decimals        int32
	LookbackWindow  time.Duration
	PollingInterval time.Duration
	CleanupInterval time.Duration
}

// Poller watches the rewards wallet and funds the reward pool with every
// completed deposit, once per Prime transaction id.
type Poller struct {
	source      WalletSource
	funder      PoolFunder
	history     FundingHistory
	portfolioId string
	wallet      models.WalletInfo
	decimals    int32

	// State management for processed transactions
	processedTxIds  map[string]time.Time
	mutex           sync.RWMutex
	lookbackWindow  time.Duration
	pollingInterval time.Duration
	cleanupInterval time.Duration

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewPoller creates a new reward pool funding poller
func NewPoller(cfg Config) *Poller {
	p := &Poller{
		source:          cfg.Source,
		funder:          cfg.Funder,
		history:         cfg.History,
		portfolioId:     cfg.PortfolioId,
		wallet:          cfg.Wallet,
		decimals:        cfg.Decimals,
		processedTxIds:  make(map[string]time.Time),
		lookbackWindow:  cfg.LookbackWindow,
		pollingInterval: cfg.PollingInterval,
		cleanupInterval: cfg.CleanupInterval,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
	if p.decimals == 0 {
		p.decimals = defaultDecimals
	}
	if p.lookbackWindow <= 0 {
		p.lookbackWindow = defaultLookback
	}
	if p.pollingInterval <= 0 {
		p.pollingInterval = defaultPolling
	}
	if p.cleanupInterval <= 0 {
		p.cleanupInterval = defaultCleanup
	}
	return p
}

// Start polls once synchronously, so deposits made during downtime are
// picked up before Start returns, then keeps polling in the background.
func (p *Poller) Start(ctx context.Context) error {
	if p.wallet.Id == "" {
		return fmt.Errorf("no rewards wallet to monitor")
	}

	zap.L().Info("Starting reward pool funding poller",
		zap.String("wallet_id", p.wallet.Id),
		zap.String("asset_symbol", p.wallet.AssetSymbol))

	if _, err := p.pollSince(ctx, p.recoveryStart(ctx)); err != nil {
		return fmt.Errorf("startup recovery failed: %w", err)
	}

	go p.pollLoop(ctx)
	go p.cleanupLoop(ctx)

	zap.L().Info("Reward pool funding poller started",
		zap.Duration("polling_interval", p.pollingInterval),
		zap.Duration("lookback_window", p.lookbackWindow))
	return nil
}

// Stop gracefully stops the poller
func (p *Poller) Stop() {
	zap.L().Info("Stopping reward pool funding poller")
	close(p.stopChan)
	<-p.doneChan
	zap.L().Info("Reward pool funding poller stopped")
}

func (p *Poller) pollLoop(ctx context.Context) {
	defer close(p.doneChan)

	ticker := time.NewTicker(p.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil {
				zap.L().Error("Failed to poll rewards wallet",
					zap.String("wallet_id", p.wallet.Id),
					zap.Error(err))
			}
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Poll fetches deposits within the lookback window and funds the pool with
// each new one. It returns how many deposits were credited.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	return p.pollSince(ctx, time.Now().UTC().Add(-p.lookbackWindow))
}

// recoveryStart goes back to the last recorded pool funding when that is
// older than the lookback window.
func (p *Poller) recoveryStart(ctx context.Context) time.Time {
	now := time.Now().UTC()
	recoveryStart := now.Add(-p.lookbackWindow)
	if p.history == nil {
		return recoveryStart
	}

	mostRecent, err := p.history.GetMostRecentOperationTime(ctx, fundPoolKind)
	if err != nil {
		zap.L().Warn("Failed to get most recent funding time, using lookback window", zap.Error(err))
		return recoveryStart
	}
	if !mostRecent.IsZero() && mostRecent.Before(recoveryStart) {
		recoveryStart = mostRecent
	}

	zap.L().Info("Recovery window calculated",
		zap.Time("most_recent_funding", mostRecent),
		zap.Time("current_time", now),
		zap.Time("recovery_start", recoveryStart),
		zap.Duration("lookback_window", p.lookbackWindow))
	return recoveryStart
}

func (p *Poller) pollSince(ctx context.Context, since time.Time) (int, error) {
	txs, err := p.source.ListWalletTransactions(ctx, p.portfolioId, p.wallet.Id, since)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	funded := 0
	for _, tx := range txs {
		if p.isTransactionProcessed(tx.Id) {
			continue
		}
		credited, err := p.processDeposit(ctx, tx)
		if err != nil {
			zap.L().Error("Failed to process deposit",
				zap.String("transaction_id", tx.Id),
				zap.String("wallet_id", p.wallet.Id),
				zap.Error(err))
			continue
		}
		if credited {
			funded++
		}
	}
	return funded, nil
}

// processDeposit credits one completed deposit. Pending deposits are left
// unmarked so a later poll picks them up once imported.
func (p *Poller) processDeposit(ctx context.Context, tx models.PrimeTransaction) (bool, error) {
	if tx.Type != depositType {
		p.markTransactionProcessed(tx.Id)
		return false, nil
	}
	if tx.Status != statusImported {
		zap.L().Debug("Skipping incomplete deposit",
			zap.String("transaction_id", tx.Id),
			zap.String("status", tx.Status))
		return false, nil
	}
	if p.wallet.AssetSymbol != "" && tx.Symbol != p.wallet.AssetSymbol {
		p.markTransactionProcessed(tx.Id)
		return false, fmt.Errorf("deposit symbol %s does not match wallet asset %s", tx.Symbol, p.wallet.AssetSymbol)
	}

	amount, err := models.ParseUnits(tx.Amount, p.decimals)
	if err != nil {
		p.markTransactionProcessed(tx.Id)
		return false, err
	}
	if amount == 0 {
		p.markTransactionProcessed(tx.Id)
		return false, nil
	}

	credited, err := p.funder.FundRewardPool(ctx, amount, referencePrefix+tx.Id)
	if err != nil {
		return false, fmt.Errorf("failed to fund reward pool: %w", err)
	}
	p.markTransactionProcessed(tx.Id)

	if credited {
		zap.L().Info("Reward pool funded from deposit",
			zap.String("transaction_id", tx.Id),
			zap.String("asset_symbol", tx.Symbol),
			zap.String("amount", tx.Amount))
	}
	return credited, nil
}

// isTransactionProcessed checks if we've already processed this transaction
func (p *Poller) isTransactionProcessed(txId string) bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	_, exists := p.processedTxIds[txId]
	return exists
}

// markTransactionProcessed marks a transaction as processed
func (p *Poller) markTransactionProcessed(txId string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.processedTxIds[txId] = time.Now()
}

// cleanupLoop periodically cleans old processed transaction IDs
func (p *Poller) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(p.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.cleanupProcessedTransactions()
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// cleanupProcessedTransactions removes entries older than the lookback
// window. A forgotten id that reappears is still rejected by the funder's
// reference check.
func (p *Poller) cleanupProcessedTransactions() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	cutoff := time.Now().UTC().Add(-p.lookbackWindow)
	cleaned := 0

	for txId, processedTime := range p.processedTxIds {
		if processedTime.Before(cutoff) {
			delete(p.processedTxIds, txId)
			cleaned++
		}
	}

	if cleaned > 0 {
		zap.L().Debug("Cleaned up old processed transactions",
			zap.Int("cleaned", cleaned),
			zap.Int("remaining", len(p.processedTxIds)))
	}
}
