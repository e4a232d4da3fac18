// Package memory is an in-process store.Store. Units of work run one at a
// time and stage their writes until they succeed.
package memory

import (
	"context"
	"fmt"
	"math/bits"
	"sort"
	"sync"
	"time"

	"bonding-rewards-go/internal/codec"
	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/google/uuid"
)

// Compile-time checks: *Store must satisfy store.Store and store.HistoryReader.
var (
	_ store.Store         = (*Store)(nil)
	_ store.HistoryReader = (*Store)(nil)
)

type balanceKey struct {
	account store.Account
	asset   string
}

type record struct {
	kind codec.Kind
	data []byte
}

// Store keeps records, balances and the ledger history in maps.
type Store struct {
	mu         sync.Mutex
	records    map[keys.Address]record
	balances   map[balanceKey]uint64
	operations map[string]struct{}
	history    []models.Transaction
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		records:    make(map[keys.Address]record),
		balances:   make(map[balanceKey]uint64),
		operations: make(map[string]struct{}),
		now:        time.Now,
	}
}

func (s *Store) Close() {}

// Atomic runs fn against a staged view. Staged writes are applied only when
// fn returns nil.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := models.GetOperation(ctx)
	if op != nil && op.Reference != "" {
		if _, seen := s.operations[op.Reference]; seen {
			return fmt.Errorf("%w: operation %s already applied", store.ErrDuplicateTransaction, op.Reference)
		}
	}

	t := &txn{
		parent:   s,
		op:       op,
		records:  make(map[keys.Address]record),
		balances: make(map[balanceKey]uint64),
	}
	t.Repository = store.NewRepository(t)

	if err := fn(ctx, t); err != nil {
		return err
	}

	for addr, rec := range t.records {
		s.records[addr] = rec
	}
	for key, bal := range t.balances {
		s.balances[key] = bal
	}
	s.history = append(s.history, t.legs...)
	if op != nil && op.Reference != "" && len(t.legs) > 0 {
		s.operations[op.Reference] = struct{}{}
	}
	return nil
}

// GetTransactionHistory returns ledger legs for an account, newest first.
func (s *Store) GetTransactionHistory(_ context.Context, account store.Account, asset string, limit, offset int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Transaction
	for i := len(s.history) - 1; i >= 0; i-- {
		leg := s.history[i]
		if leg.Account == string(account) && leg.Asset == asset {
			matched = append(matched, leg)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Accounts lists every account holding a non-zero balance of asset.
func (s *Store) Accounts(asset string) []store.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.Account
	for key, bal := range s.balances {
		if key.asset == asset && bal > 0 {
			out = append(out, key.account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type txn struct {
	store.Repository

	parent   *Store
	op       *models.Operation
	records  map[keys.Address]record
	balances map[balanceKey]uint64
	legs     []models.Transaction
}

func (t *txn) Load(_ context.Context, addr keys.Address) ([]byte, error) {
	if rec, ok := t.records[addr]; ok {
		return rec.data, nil
	}
	rec, ok := t.parent.records[addr]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.data, nil
}

func (t *txn) Save(_ context.Context, addr keys.Address, kind codec.Kind, data []byte) error {
	t.records[addr] = record{kind: kind, data: append([]byte(nil), data...)}
	return nil
}

func (t *txn) List(_ context.Context, kind codec.Kind) ([][]byte, error) {
	merged := make(map[keys.Address]record, len(t.parent.records))
	for addr, rec := range t.parent.records {
		merged[addr] = rec
	}
	for addr, rec := range t.records {
		merged[addr] = rec
	}
	var out [][]byte
	for _, rec := range merged {
		if rec.kind == kind {
			out = append(out, rec.data)
		}
	}
	return out, nil
}

func (t *txn) Balance(_ context.Context, account store.Account, asset string) (uint64, error) {
	return t.balance(balanceKey{account, asset}), nil
}

func (t *txn) balance(key balanceKey) uint64 {
	if bal, ok := t.balances[key]; ok {
		return bal
	}
	return t.parent.balances[key]
}

func (t *txn) Debit(_ context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(account, asset, "debit", amount, false)
}

func (t *txn) Credit(_ context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(account, asset, "credit", amount, true)
}

func (t *txn) Mint(_ context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(account, asset, "mint", amount, true)
}

func (t *txn) Burn(_ context.Context, account store.Account, asset string, amount uint64) error {
	return t.apply(account, asset, "burn", amount, false)
}

func (t *txn) apply(account store.Account, asset, legType string, amount uint64, increase bool) error {
	key := balanceKey{account, asset}
	before := t.balance(key)

	var after uint64
	if increase {
		sum, carry := bits.Add64(before, amount, 0)
		if carry != 0 {
			return fmt.Errorf("%s %s on %s: balance overflow", legType, asset, account)
		}
		after = sum
	} else {
		if before < amount {
			return fmt.Errorf("%w: %s holds %d %s, needs %d", store.ErrInsufficientFunds, account, before, asset, amount)
		}
		after = before - amount
	}
	t.balances[key] = after

	signed := models.Units(amount)
	if !increase {
		signed = signed.Neg()
	}
	leg := models.Transaction{
		Id:              uuid.New().String(),
		Account:         string(account),
		Asset:           asset,
		TransactionType: legType,
		Amount:          signed,
		BalanceBefore:   models.Units(before),
		BalanceAfter:    models.Units(after),
		Status:          "confirmed",
		CreatedAt:       t.parent.now(),
	}
	if t.op != nil {
		leg.OperationRef = t.op.Reference
		leg.OperationKind = t.op.Kind
		leg.EntityId = t.op.EntityId
	}
	t.legs = append(t.legs, leg)
	return nil
}
