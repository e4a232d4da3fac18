// Package engine executes market, performance and reward operations. Every
// operation runs as one store unit of work: it either commits all of its
// record writes and ledger movements or none of them.
//
// Callers pass an identity that the calling boundary has already
// authenticated. The engine only compares it with the identities stored on
// the platform and entity records.
package engine

import (
	"context"
	"fmt"
	"math/bits"
	"regexp"
	"time"

	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"github.com/google/uuid"
)

// Operation kinds recorded with ledger entries.
const (
	KindBuy        = "buy"
	KindSell       = "sell"
	KindReport     = "report"
	KindDistribute = "distribute"
	KindAccrue     = "accrue"
	KindClaim      = "claim"
	KindFundPool   = "fund_pool"
	KindFundHolder = "fund_holder"
)

// Identities become ledger account segments, so they are restricted to a
// charset every backend accepts.
var identityPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Engine struct {
	store store.Store
	clock func() time.Time
}

type Option func(*Engine)

// WithClock overrides the engine clock for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// now is truncated to whole seconds, the precision records persist.
func (e *Engine) now() time.Time {
	return e.clock().UTC().Truncate(time.Second)
}

func (e *Engine) withOperation(ctx context.Context, kind, reference, entityId, actor string) (context.Context, string) {
	if reference == "" {
		reference = fmt.Sprintf("%s-%s", kind, uuid.New().String())
	}
	return models.WithOperation(ctx, &models.Operation{
		Reference: reference,
		Kind:      kind,
		EntityId:  entityId,
		Actor:     actor,
	}), reference
}

func validateIdentity(identity string) error {
	if !identityPattern.MatchString(identity) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentity, identity)
	}
	return nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

func human(v uint64) string {
	return models.Human(v, models.DefaultDecimals).String()
}
