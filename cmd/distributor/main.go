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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bonding-rewards-go/internal/common"
	"bonding-rewards-go/internal/config"
	"bonding-rewards-go/internal/engine"
	"bonding-rewards-go/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func distribute(ctx context.Context, e *engine.Engine) {
	start := time.Now()
	results, err := e.DistributeAll(ctx)
	for _, r := range results {
		zap.L().Info("Entity distributed",
			zap.String("entity_id", r.EntityId),
			zap.Uint64("score", r.Score),
			zap.Time("distributed_at", r.DistributedAt))
	}
	if err != nil {
		zap.L().Error("Distribution round finished with errors",
			zap.Int("distributed", len(results)),
			zap.Error(err))
		return
	}
	zap.L().Info("Distribution round completed",
		zap.Int("distributed", len(results)),
		zap.Duration("took", time.Since(start)))
}

func main() {
	once := flag.Bool("once", false, "Run a single distribution round and exit")
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

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *once {
		distribute(ctx, services.Engine)
		return
	}

	zap.L().Info("Starting reward distributor",
		zap.String("schedule", cfg.Distributor.Schedule),
		zap.String("metrics_addr", cfg.Distributor.MetricsAddr))

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{
		Addr:              cfg.Distributor.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("Metrics server stopped", zap.Error(err))
		}
	}()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Distributor.Schedule, func() { distribute(ctx, services.Engine) }); err != nil {
		zap.L().Fatal("Invalid distribution schedule",
			zap.String("schedule", cfg.Distributor.Schedule),
			zap.Error(err))
	}

	if cfg.Distributor.RunOnStart {
		distribute(ctx, services.Engine)
	}

	scheduler.Start()
	zap.L().Info("Distributor running")
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping distributor...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Waits for a running round to finish.
	stopped := scheduler.Stop()
	select {
	case <-stopped.Done():
		zap.L().Info("Scheduler stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Metrics server shutdown failed", zap.Error(err))
	}
}
