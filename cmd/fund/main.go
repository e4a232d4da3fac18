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

	"bonding-rewards-go/internal/common"
	"bonding-rewards-go/internal/config"
	"bonding-rewards-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "Holder identity to fund (required)")
	amountFlag := flag.String("amount", "", "Amount of the reserve asset, e.g. 100.5 (required)")
	referenceFlag := flag.String("reference", "", "Idempotency reference (optional; re-running with the same reference is a no-op)")
	poolFlag := flag.Bool("pool", false, "Fund the platform reward pool instead of a holder")
	flag.Parse()

	if *amountFlag == "" || (*userFlag == "" && !*poolFlag) {
		flag.Usage()
		logger.Fatal("Missing required flags: -amount and one of -user or -pool")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	amount, err := models.ParseUnits(*amountFlag, cfg.Platform.Decimals)
	if err != nil {
		logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	var credited bool
	target := *userFlag
	if *poolFlag {
		target = "reward pool"
		credited, err = services.Engine.FundRewardPool(ctx, amount, *referenceFlag)
	} else {
		credited, err = services.Engine.FundHolder(ctx, cfg.Platform.Authority, *userFlag, amount, *referenceFlag)
	}
	if err != nil {
		logger.Fatal("Funding failed", zap.String("target", target), zap.Error(err))
	}

	if !credited {
		fmt.Printf("Reference %q was already applied; nothing credited\n", *referenceFlag)
		return
	}
	fmt.Printf("Credited %s %s to %s\n",
		models.Human(amount, cfg.Platform.Decimals).String(), cfg.Platform.ReserveAsset, target)
}
