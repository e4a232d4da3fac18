package models

import (
	"context"
)

type operationContextKey struct{}

// Operation describes the core operation driving a unit of work. Backends
// read it from the context to tag ledger entries and to reject replays of the
// same Reference, without widening the Ledger interface.
type Operation struct {
	Reference string // idempotency key, unique per operation
	Kind      string // "buy", "sell", "claim", "fund_pool", ...
	EntityId  string
	Actor     string
}

// WithOperation attaches operation data to a context.
func WithOperation(ctx context.Context, op *Operation) context.Context {
	return context.WithValue(ctx, operationContextKey{}, op)
}

// GetOperation retrieves operation data from context, or nil if absent.
func GetOperation(ctx context.Context) *Operation {
	op, _ := ctx.Value(operationContextKey{}).(*Operation)
	return op
}
