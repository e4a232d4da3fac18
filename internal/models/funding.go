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

import "time"

// Portfolio is a Prime portfolio holding the rewards wallet
type Portfolio struct {
	Id   string
	Name string
}

// Wallet is a Prime custody or trading wallet
type Wallet struct {
	Id     string
	Name   string
	Symbol string
	Type   string
}

// WalletInfo identifies the wallet whose deposits fund the reward pool
type WalletInfo struct {
	Id          string `json:"id"`
	AssetSymbol string `json:"asset_symbol"`
}

// PrimeTransaction is a wallet transaction as listed by Prime. Amount is the
// human decimal string Prime returns.
type PrimeTransaction struct {
	Id        string    `json:"id"`
	WalletId  string    `json:"wallet_id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Symbol    string    `json:"symbol"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
