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

package database

const (
	// Record queries
	queryGetRecord = `
		SELECT data, version
		FROM records
		WHERE address = ?`

	queryGetRecordVersion = `
		SELECT version
		FROM records
		WHERE address = ?`

	queryInsertRecord = `
		INSERT INTO records (address, kind, data, version)
		VALUES (?, ?, ?, 1)`

	queryUpdateRecord = `
		UPDATE records
		SET data = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE address = ? AND version = ?`

	queryListRecordsByKind = `
		SELECT data
		FROM records
		WHERE kind = ?
		ORDER BY address`

	// Operation queries
	queryCheckDuplicateOperation = `
		SELECT reference FROM operations WHERE reference = ? LIMIT 1`

	queryInsertOperation = `
		INSERT INTO operations (reference, kind, entity_id, actor)
		VALUES (?, ?, ?, ?)`

	// Balance queries
	queryGetBalance = `
		SELECT balance 
		FROM account_balances 
		WHERE account = ? AND asset = ?`

	queryGetAllAccountBalances = `
		SELECT id, account, asset, balance, COALESCE(last_transaction_id, ''), version, updated_at
		FROM account_balances 
		WHERE account = ? AND balance != '0'
		ORDER BY asset`

	queryReconcileBalance = `
		SELECT amount
		FROM transactions 
		WHERE account = ? AND asset = ? AND status = 'confirmed'`

	queryGetAccountBalance = `
		SELECT id, balance, version 
		FROM account_balances 
		WHERE account = ? AND asset = ?`

	queryInsertAccountBalance = `
		INSERT INTO account_balances (id, account, asset, balance, version)
		VALUES (?, ?, ?, ?, ?)`

	queryUpdateAccountBalance = `
		UPDATE account_balances 
		SET balance = ?, last_transaction_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE account = ? AND asset = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, account, asset, transaction_type, amount, balance_before, balance_after,
			operation_ref, operation_kind, entity_id, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertJournalEntry = `
		INSERT INTO journal_entries (id, transaction_id, account_type, account_id, debit_amount, credit_amount)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetTransactionHistory = `
		SELECT id, account, asset, transaction_type, amount, balance_before, balance_after,
		       operation_ref, operation_kind, entity_id, status, created_at
		FROM transactions 
		WHERE account = ? AND asset = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	queryGetMostRecentOperationTime = `
		SELECT MAX(created_at) 
		FROM operations 
		WHERE kind = ?`
)
