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
	"bonding-rewards-go/internal/engine"
	"bonding-rewards-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	actionFlag := flag.String("action", "show", "Action: accrue, claim or show")
	userFlag := flag.String("user", "", "Holder identity (required)")
	entityFlag := flag.String("entity", "", "Entity id (required)")
	amountFlag := flag.String("amount", "", "Reward amount to accrue (accrue only)")
	referenceFlag := flag.String("reference", "", "Idempotency reference for a claim (optional)")
	flag.Parse()

	if *userFlag == "" || *entityFlag == "" {
		flag.Usage()
		logger.Fatal("Missing required flags: -user and -entity")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	switch *actionFlag {
	case "accrue":
		amount, err := models.ParseUnits(*amountFlag, cfg.Platform.Decimals)
		if err != nil {
			logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
		}
		rewards, err := services.Engine.Accrue(ctx, cfg.Platform.Authority, *userFlag, *entityFlag, amount)
		if err != nil {
			logger.Fatal("Accrue failed", zap.String("kind", engine.ErrorKind(err)), zap.Error(err))
		}
		fmt.Printf("Accrued %s %s to %s on %s (pending %s)\n",
			models.Human(amount, cfg.Platform.Decimals).String(), cfg.Platform.ReserveAsset,
			*userFlag, *entityFlag,
			models.Human(rewards.Pending, cfg.Platform.Decimals).String())

	case "claim":
		result, err := services.Engine.Claim(ctx, *userFlag, *entityFlag, *referenceFlag)
		if err != nil {
			logger.Fatal("Claim failed", zap.String("kind", engine.ErrorKind(err)), zap.Error(err))
		}
		fmt.Printf("Claimed %s %s for %s on %s (lifetime %s)\n",
			models.Human(result.Amount, cfg.Platform.Decimals).String(), cfg.Platform.ReserveAsset,
			result.User, result.EntityId,
			models.Human(result.TotalClaimed, cfg.Platform.Decimals).String())

	case "show":
		view, err := services.Api.GetUserRewards(ctx, *userFlag, *entityFlag)
		if err != nil {
			logger.Fatal("Failed to read rewards", zap.Error(err))
		}
		common.PrintHeader(fmt.Sprintf("REWARDS: %s on %s", view.User, view.EntityId), common.DefaultWidth)
		lastClaim := "never"
		if !view.LastClaim.IsZero() {
			lastClaim = view.LastClaim.Format("2006-01-02 15:04:05 MST")
		}
		common.PrintDetails([]common.Detail{
			{Label: "Pending", Value: common.FormatAmount(view.Pending, cfg.Platform.ReserveAsset)},
			{Label: "Claimed", Value: common.FormatAmount(view.Claimed, cfg.Platform.ReserveAsset)},
			{Label: "Last claim", Value: lastClaim},
		})
		common.PrintFooter("", common.DefaultWidth)

	default:
		logger.Fatal("Unknown action", zap.String("action", *actionFlag))
	}
}
