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

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	entityFlag := flag.String("entity", "", "Entity id the report is for (required)")
	likesFlag := flag.Uint64("likes", 0, "New likes since the last report")
	viewsFlag := flag.Uint64("views", 0, "New views since the last report")
	commentsFlag := flag.Uint64("comments", 0, "New comments since the last report")
	followersFlag := flag.Uint64("followers", 0, "New followers since the last report")
	reporterFlag := flag.String("reporter", "", "Reporting identity (default: ORACLE_IDENTITY)")
	flag.Parse()

	if *entityFlag == "" {
		flag.Usage()
		logger.Fatal("Missing required flag: -entity")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	reporter := cfg.Platform.Oracle
	if *reporterFlag != "" {
		reporter = *reporterFlag
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	updated, err := services.Engine.ReportPerformance(ctx, reporter, engine.PerformanceReport{
		EntityId:     *entityFlag,
		Likes:        *likesFlag,
		Views:        *viewsFlag,
		Comments:     *commentsFlag,
		NewFollowers: *followersFlag,
	})
	if err != nil {
		logger.Fatal("Performance report rejected",
			zap.String("entity_id", *entityFlag),
			zap.String("reporter", reporter),
			zap.String("kind", engine.ErrorKind(err)),
			zap.Error(err))
	}

	score, err := engine.Score(*updated)
	if err != nil {
		logger.Warn("Score overflowed", zap.String("entity_id", *entityFlag), zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("PERFORMANCE: %s", *entityFlag), common.DefaultWidth)
	fmt.Printf("%-12s %12s %12s\n", "", "daily", "total")
	fmt.Printf("%-12s %12d %12d\n", "likes", updated.DailyLikes, updated.TotalLikes)
	fmt.Printf("%-12s %12d %12d\n", "views", updated.DailyViews, updated.TotalViews)
	fmt.Printf("%-12s %12d %12d\n", "comments", updated.DailyComments, updated.TotalComments)
	fmt.Printf("%-12s %12d %12d\n", "followers", updated.DailyNewFollowers, updated.TotalFollowers)
	common.PrintFooter(fmt.Sprintf("Current daily score: %d", score), common.DefaultWidth)
}
