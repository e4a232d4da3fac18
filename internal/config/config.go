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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bonding-rewards-go/internal/models"
)

func Load() (*models.Config, error) {
	lookbackWindow, err := getEnvDuration("FUNDING_LOOKBACK_WINDOW", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	pollingInterval, err := getEnvDuration("FUNDING_POLLING_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cleanupInterval, err := getEnvDuration("FUNDING_CLEANUP_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	dailyRewardPool, err := getEnvUint64("DAILY_REWARD_POOL", 1_000_000_000)
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getEnvString("STORE_BACKEND", "sqlite"))
	switch backend {
	case "sqlite", "memory", "formance":
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q (want sqlite, memory or formance)", backend)
	}

	reserveAsset := getEnvString("RESERVE_ASSET", "USDT")

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "bonding-rewards.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Store: models.StoreConfig{
			Backend: backend,
		},
		Formance: models.FormanceConfig{
			StackURL:     getEnvString("FORMANCE_STACK_URL", ""),
			ClientID:     getEnvString("FORMANCE_CLIENT_ID", ""),
			ClientSecret: getEnvString("FORMANCE_CLIENT_SECRET", ""),
			LedgerName:   getEnvString("FORMANCE_LEDGER", "bonding-rewards"),
		},
		Platform: models.PlatformConfig{
			ReserveAsset:    reserveAsset,
			Decimals:        int32(getEnvInt("RESERVE_DECIMALS", int(models.DefaultDecimals))),
			Authority:       getEnvString("PLATFORM_AUTHORITY", "admin"),
			Oracle:          getEnvString("ORACLE_IDENTITY", "oracle"),
			DailyRewardPool: dailyRewardPool,
			EntitiesFile:    getEnvString("ENTITIES_FILE", "entities.yaml"),
		},
		Distributor: models.DistributorConfig{
			Schedule:    getEnvString("DISTRIBUTION_SCHEDULE", "@daily"),
			MetricsAddr: getEnvString("METRICS_ADDR", ":9102"),
			RunOnStart:  getEnvBool("DISTRIBUTE_ON_START", false),
		},
		Funding: models.FundingConfig{
			LookbackWindow:  lookbackWindow,
			PollingInterval: pollingInterval,
			CleanupInterval: cleanupInterval,
			PortfolioName:   getEnvString("FUNDING_PORTFOLIO_NAME", "Default Portfolio"),
			WalletSymbol:    getEnvString("FUNDING_WALLET_SYMBOL", reserveAsset),
			WalletType:      getEnvString("FUNDING_WALLET_TYPE", "TRADING"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) (uint64, error) {
	if value := os.Getenv(key); value != "" {
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid unsigned integer for %s: %q (%w)", key, value, err)
		}
		return v, nil
	}
	return defaultValue, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
