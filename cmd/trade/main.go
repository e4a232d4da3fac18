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

	"bonding-rewards-go/internal/common"
	"bonding-rewards-go/internal/config"
	"bonding-rewards-go/internal/engine"
	"bonding-rewards-go/internal/models"

	"go.uber.org/zap"
)

func printTrade(result *models.TradeResult, reserveAsset string, decimals int32, quoted bool) {
	title := "TRADE EXECUTED"
	if quoted {
		title = "TRADE QUOTE (not executed)"
	}
	common.PrintHeader(title, common.DefaultWidth)

	details := []common.Detail{
		{Label: "Entity", Value: result.EntityId},
		{Label: "Side", Value: result.Side},
		{Label: "Spot price", Value: common.FormatAmount(models.Human(result.Price, models.DefaultDecimals), reserveAsset)},
		{Label: "Tokens", Value: models.Human(result.TokenAmount, decimals).String()},
		{Label: "Value", Value: common.FormatAmount(models.Human(result.UsdtAmount, decimals), reserveAsset)},
	}
	if result.Fee > 0 {
		details = append(details, common.Detail{Label: "Fee", Value: common.FormatAmount(models.Human(result.Fee, decimals), reserveAsset)})
	}
	if !quoted {
		details = append(details,
			common.Detail{Label: "Supply", Value: models.Human(result.CirculatingSupply, decimals).String()},
			common.Detail{Label: "Reserve", Value: common.FormatAmount(models.Human(result.ReserveBalance, decimals), reserveAsset)},
			common.Detail{Label: "Reference", Value: result.Reference})
	}
	common.PrintDetails(details)

	common.PrintFooter(fmt.Sprintf("%s %s", strings.ToUpper(result.Side), result.EntityId), common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	entityFlag := flag.String("entity", "", "Entity id to trade (required)")
	userFlag := flag.String("user", "", "Trader identity (required unless -quote)")
	sideFlag := flag.String("side", "buy", "Trade side: buy or sell")
	amountFlag := flag.String("amount", "", "Reserve asset to spend on a buy, or tokens to sell (required)")
	minFlag := flag.String("min", "0", "Minimum tokens (buy) or reserve asset (sell) to receive")
	quoteFlag := flag.Bool("quote", false, "Only print a quote; nothing is executed")
	referenceFlag := flag.String("reference", "", "Idempotency reference (optional)")
	flag.Parse()

	side := strings.ToLower(*sideFlag)
	if side != "buy" && side != "sell" {
		logger.Fatal("Invalid side", zap.String("side", *sideFlag))
	}
	if *entityFlag == "" || *amountFlag == "" || (*userFlag == "" && !*quoteFlag) {
		flag.Usage()
		logger.Fatal("Missing required flags: -entity, -amount and -user")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	amount, err := models.ParseUnits(*amountFlag, cfg.Platform.Decimals)
	if err != nil {
		logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}
	minOut, err := models.ParseUnits(*minFlag, cfg.Platform.Decimals)
	if err != nil {
		logger.Fatal("Invalid minimum", zap.String("min", *minFlag), zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	var result *models.TradeResult
	switch {
	case *quoteFlag && side == "buy":
		result, err = services.Engine.QuoteBuy(ctx, *entityFlag, amount)
	case *quoteFlag:
		result, err = services.Engine.QuoteSell(ctx, *entityFlag, amount)
	case side == "buy":
		result, err = services.Engine.Buy(ctx, engine.BuyRequest{
			EntityId:     *entityFlag,
			Buyer:        *userFlag,
			UsdtAmount:   amount,
			MinTokensOut: minOut,
			Reference:    *referenceFlag,
		})
	default:
		result, err = services.Engine.Sell(ctx, engine.SellRequest{
			EntityId:    *entityFlag,
			Seller:      *userFlag,
			TokenAmount: amount,
			MinUsdtOut:  minOut,
			Reference:   *referenceFlag,
		})
	}
	if err != nil {
		logger.Fatal("Trade failed",
			zap.String("entity_id", *entityFlag),
			zap.String("side", side),
			zap.String("kind", engine.ErrorKind(err)),
			zap.Error(err))
	}

	printTrade(result, cfg.Platform.ReserveAsset, cfg.Platform.Decimals, *quoteFlag)
}
