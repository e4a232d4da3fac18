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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeResult describes an executed (or quoted) buy or sell
type TradeResult struct {
	EntityId          string    `json:"entity_id"`
	Side              string    `json:"side"` // "buy", "sell"
	Trader            string    `json:"trader"`
	Price             uint64    `json:"price"`
	TokenAmount       uint64    `json:"token_amount"`
	UsdtAmount        uint64    `json:"usdt_amount"`
	Fee               uint64    `json:"fee,omitempty"`
	CirculatingSupply uint64    `json:"circulating_supply"`
	ReserveBalance    uint64    `json:"reserve_balance"`
	Reference         string    `json:"reference,omitempty"`
	ExecutedAt        time.Time `json:"executed_at"`
}

// DistributionResult is the outcome of closing an entity's daily window
type DistributionResult struct {
	EntityId      string    `json:"entity_id"`
	Score         uint64    `json:"score"`
	DistributedAt time.Time `json:"distributed_at"`
}

// ClaimResult is the outcome of a successful reward claim
type ClaimResult struct {
	EntityId     string    `json:"entity_id"`
	User         string    `json:"user"`
	Amount       uint64    `json:"amount"`
	TotalClaimed uint64    `json:"total_claimed"`
	ClaimedAt    time.Time `json:"claimed_at"`
}

// EntityView is the read-model of an entity with human-readable amounts
type EntityView struct {
	Id                string             `json:"id"`
	Name              string             `json:"name"`
	Symbol            string             `json:"symbol"`
	Uri               string             `json:"uri"`
	TokenMint         string             `json:"token_mint"`
	ReserveAccount    string             `json:"reserve_account"`
	SpotPrice         decimal.Decimal    `json:"spot_price"`
	CirculatingSupply decimal.Decimal    `json:"circulating_supply"`
	MaxSupply         decimal.Decimal    `json:"max_supply"`
	ReserveBalance    decimal.Decimal    `json:"reserve_balance"`
	CurrentScore      uint64             `json:"current_score"`
	Performance       PerformanceMetrics `json:"performance"`
	LastDistribution  time.Time          `json:"last_distribution"`
}

// PlatformView is the read-model of the platform singleton
type PlatformView struct {
	Authority         string          `json:"authority"`
	Oracle            string          `json:"oracle"`
	ReserveAsset      string          `json:"reserve_asset"`
	TotalEntities     uint64          `json:"total_entities"`
	DailyRewardPool   decimal.Decimal `json:"daily_reward_pool"`
	RewardPoolBalance decimal.Decimal `json:"reward_pool_balance"`
}

// HolderBalance represents a holder's balance for a specific asset
type HolderBalance struct {
	Asset    string          `json:"asset"`
	EntityId string          `json:"entity_id,omitempty"` // set for entity tokens
	Balance  decimal.Decimal `json:"balance"`
}

// TransactionRecord is one ledger leg as returned by the API
type TransactionRecord struct {
	Id           string          `json:"id"`
	Type         string          `json:"type"`
	Asset        string          `json:"asset"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Operation    string          `json:"operation"`
	Reference    string          `json:"reference"`
	EntityId     string          `json:"entity_id,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RewardsView represents a user's reward position for one entity
type RewardsView struct {
	EntityId  string          `json:"entity_id"`
	User      string          `json:"user"`
	Pending   decimal.Decimal `json:"pending"`
	Claimed   decimal.Decimal `json:"claimed"`
	LastClaim time.Time       `json:"last_claim,omitempty"`
}
