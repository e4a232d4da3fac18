package store

import (
	"context"
	"errors"

	"bonding-rewards-go/internal/codec"
	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("record not found")
	ErrAlreadyExists          = errors.New("record already exists")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// Account names a ledger account, e.g. "holders:alice".
type Account string

// HolderAccount is the account holding a user's reserve asset and tokens.
func HolderAccount(identity string) Account {
	return Account("holders:" + identity)
}

// ReserveAccount is the account backing an entity's curve.
func ReserveAccount(reserve keys.Address) Account {
	return Account("reserves:" + reserve.String())
}

// RewardPoolAccount is the platform account rewards are paid from.
func RewardPoolAccount() Account {
	return Account("platform:rewards:" + keys.RewardPool().String())
}

// Ledger moves value between accounts. Amounts are in base units.
// Debit and Burn fail with ErrInsufficientFunds rather than overdraw.
type Ledger interface {
	Debit(ctx context.Context, account Account, asset string, amount uint64) error
	Credit(ctx context.Context, account Account, asset string, amount uint64) error
	Mint(ctx context.Context, account Account, asset string, amount uint64) error
	Burn(ctx context.Context, account Account, asset string, amount uint64) error
	Balance(ctx context.Context, account Account, asset string) (uint64, error)
}

// Records is the typed view of the keyed record repository.
type Records interface {
	GetPlatform(ctx context.Context) (*models.Platform, error)
	PutPlatform(ctx context.Context, p *models.Platform) error
	GetEntity(ctx context.Context, id string) (*models.Entity, error)
	PutEntity(ctx context.Context, e *models.Entity) error
	ListEntities(ctx context.Context) ([]*models.Entity, error)
	GetUserRewards(ctx context.Context, user string, entity keys.Address) (*models.UserRewards, error)
	PutUserRewards(ctx context.Context, r *models.UserRewards) error
}

// Tx is the handle an operation works through. Nothing it writes is visible
// to other operations until the unit of work commits.
type Tx interface {
	Records
	Ledger
}

// Store runs units of work. If fn returns an error, every record write and
// ledger movement made through tx is discarded.
type Store interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close()
}

// HistoryReader is implemented by backends that keep a per-account audit trail.
type HistoryReader interface {
	GetTransactionHistory(ctx context.Context, account Account, asset string, limit, offset int) ([]models.Transaction, error)
}

// KV is the raw record storage a backend exposes inside a unit of work.
// Load returns ErrNotFound for a missing address.
type KV interface {
	Load(ctx context.Context, addr keys.Address) ([]byte, error)
	Save(ctx context.Context, addr keys.Address, kind codec.Kind, data []byte) error
	List(ctx context.Context, kind codec.Kind) ([][]byte, error)
}
