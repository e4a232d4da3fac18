package formance

import (
	"context"
	"errors"
	"fmt"
	"math/bits"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type balanceKey struct {
	account store.Account
	asset   string
}

// txn buffers ledger legs until the unit of work finishes. Balances seen
// through it include the legs buffered so far.
type txn struct {
	store.Records

	svc      *Service
	balances map[balanceKey]uint64
	legs     []leg
}

func (t *txn) Balance(ctx context.Context, account store.Account, asset string) (uint64, error) {
	return t.balance(ctx, balanceKey{account, asset})
}

func (t *txn) balance(ctx context.Context, key balanceKey) (uint64, error) {
	if bal, ok := t.balances[key]; ok {
		return bal, nil
	}
	bal, err := t.svc.accountBalance(ctx, key.account, key.asset)
	if err != nil {
		return 0, err
	}
	t.balances[key] = bal
	return bal, nil
}

func (t *txn) Debit(ctx context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(ctx, leg{legDebit, account, asset, amount}, false)
}

func (t *txn) Credit(ctx context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(ctx, leg{legCredit, account, asset, amount}, true)
}

func (t *txn) Mint(ctx context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(ctx, leg{legMint, account, asset, amount}, true)
}

func (t *txn) Burn(ctx context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(ctx, leg{legBurn, account, asset, amount}, false)
}

func (t *txn) apply(ctx context.Context, l leg, increase bool) error {
	key := balanceKey{l.account, l.asset}
	before, err := t.balance(ctx, key)
	if err != nil {
		return err
	}

	var after uint64
	if increase {
		sum, carry := bits.Add64(before, l.amount, 0)
		if carry != 0 {
			return fmt.Errorf("%s %s on %s: balance overflow", l.kind, l.asset, l.account)
		}
		after = sum
	} else {
		if before < l.amount {
			return fmt.Errorf("%w: %s holds %d %s, needs %d", store.ErrInsufficientFunds, l.account, before, l.asset, l.amount)
		}
		after = before - l.amount
	}
	t.balances[key] = after
	if l.amount > 0 {
		t.legs = append(t.legs, l)
	}
	return nil
}

// Atomic runs fn inside a record transaction and posts its ledger legs as a
// single Formance transaction before the records commit. If the record
// commit fails after posting, the posting is reverted.
func (s *Service) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	op := models.GetOperation(ctx)
	reference := ""
	if op != nil {
		reference = op.Reference
	}

	// A reverted posting frees its reference for a retry, but Formance keeps
	// the reference reserved, so the retry posts without one.
	useFormanceRef := true
	if reference != "" {
		prior, err := s.findByReference(ctx, reference)
		if err != nil {
			return err
		}
		if prior != nil && !prior.Reverted {
			return fmt.Errorf("%w: operation %s already applied", store.ErrDuplicateTransaction, reference)
		}
		useFormanceRef = prior == nil
	} else {
		reference = uuid.New().String()
	}

	posted := false
	err := s.records.AtomicRecords(ctx, func(ctx context.Context, records store.Records) error {
		t := &txn{Records: records, svc: s, balances: make(map[balanceKey]uint64)}
		if err := fn(ctx, t); err != nil {
			return err
		}
		if len(t.legs) == 0 {
			return nil
		}
		if err := s.post(ctx, reference, useFormanceRef, op, t.legs); err != nil {
			return err
		}
		posted = true
		return nil
	})
	if err != nil && posted {
		if revertErr := s.revertTransaction(ctx, reference); revertErr != nil {
			zap.L().Error("Failed to revert ledger posting after record commit failure",
				zap.String("reference", reference),
				zap.Error(revertErr))
			return errors.Join(err, revertErr)
		}
	}
	return err
}

// post creates one ledger transaction carrying every leg of an operation.
func (s *Service) post(ctx context.Context, reference string, useFormanceRef bool, op *models.Operation, legs []leg) error {
	script, vars := buildScript(reference, op, legs)

	postTx := shared.V2PostTransaction{
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars:  vars,
		},
	}
	if useFormanceRef {
		postTx.Reference = strPtr(reference)
	}

	_, err := s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		switch {
		case isConflictError(err):
			return fmt.Errorf("%w: operation %s already applied", store.ErrDuplicateTransaction, reference)
		case isInsufficientFundError(err):
			return fmt.Errorf("%w: %v", store.ErrInsufficientFunds, err)
		}
		return fmt.Errorf("error posting ledger transaction: %w", err)
	}

	zap.L().Debug("Ledger transaction posted in Formance",
		zap.String("reference", reference),
		zap.Int("legs", len(legs)))
	return nil
}

// findByReference returns the most recent transaction tagged with reference,
// or nil.
func (s *Service) findByReference(ctx context.Context, reference string) (*shared.V2Transaction, error) {
	pageSize := int64(1)
	resp, err := s.client.Ledger.V2.ListTransactions(ctx, operations.V2ListTransactionsRequest{
		Ledger:   s.ledger,
		PageSize: &pageSize,
		RequestBody: map[string]any{
			"$match": map[string]any{
				"metadata[reference]": reference,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up reference %s: %w", reference, err)
	}
	if len(resp.V2TransactionsCursorResponse.Cursor.Data) == 0 {
		return nil, nil
	}
	tx := resp.V2TransactionsCursorResponse.Cursor.Data[0]
	return &tx, nil
}

// revertTransaction uses Formance's native RevertTransaction API to undo the
// posting tagged with reference. If already reverted, returns nil.
func (s *Service) revertTransaction(ctx context.Context, reference string) error {
	zap.L().Info("Reverting transaction in Formance", zap.String("reference", reference))

	tx, err := s.findByReference(ctx, reference)
	if err != nil {
		return err
	}
	if tx == nil {
		return fmt.Errorf("no transaction found with reference %s", reference)
	}
	if tx.Reverted {
		return nil
	}

	_, err = s.client.Ledger.V2.RevertTransaction(ctx, operations.V2RevertTransactionRequest{
		Ledger:          s.ledger,
		ID:              tx.ID,
		AtEffectiveDate: ptrBool(true),
	})
	if err != nil {
		if isConflictError(err) || isAlreadyRevertedError(err) {
			return nil
		}
		return fmt.Errorf("failed to revert transaction %s: %w", reference, err)
	}

	zap.L().Info("Transaction reverted in Formance",
		zap.String("reference", reference),
		zap.String("tx_id", tx.ID.String()))
	return nil
}

// GetTransactionHistory returns the legs touching account in asset, newest first.
func (s *Service) GetTransactionHistory(ctx context.Context, account store.Account, asset string, limit, offset int) ([]models.Transaction, error) {
	address := string(account)
	fAsset := formanceAsset(asset)
	pageSize := int64(limit + offset) // fetch enough to skip offset

	resp, err := s.client.Ledger.V2.ListTransactions(ctx, operations.V2ListTransactionsRequest{
		Ledger:   s.ledger,
		PageSize: &pageSize,
		RequestBody: map[string]any{
			"$or": []any{
				map[string]any{"$match": map[string]any{"source": address}},
				map[string]any{"$match": map[string]any{"destination": address}},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var result []models.Transaction
	skipped := 0
	for _, tx := range resp.V2TransactionsCursorResponse.Cursor.Data {
		for i, p := range tx.Postings {
			if p.Asset != fAsset || (p.Source != address && p.Destination != address) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}

			amount := decimal.NewFromBigInt(p.Amount, 0)
			legType := legCredit
			switch {
			case p.Source == address && p.Destination == "world":
				legType, amount = legBurn, amount.Neg()
			case p.Source == address:
				legType, amount = legDebit, amount.Neg()
			case p.Source == "world":
				legType = legMint
			}

			status := "confirmed"
			if tx.Reverted {
				status = "reverted"
			}
			result = append(result, models.Transaction{
				Id:              fmt.Sprintf("%s-%d", tx.ID.String(), i),
				Account:         address,
				Asset:           asset,
				TransactionType: legType,
				Amount:          amount,
				OperationRef:    tx.Metadata["reference"],
				OperationKind:   tx.Metadata["operation_kind"],
				EntityId:        tx.Metadata["entity_id"],
				Status:          status,
				CreatedAt:       tx.Timestamp,
			})
			if limit > 0 && len(result) >= limit {
				return result, nil
			}
		}
	}
	return result, nil
}
