// Package keys derives the deterministic addresses under which records and
// ledger accounts are stored. The same seeds always produce the same address,
// so any component can locate a record without a lookup table.
package keys

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLen is the size of a derived address in bytes.
const AddressLen = 32

// namespace is appended to every derivation.
const namespace = "bonding-rewards/v1"

const (
	seedPlatform    = "platform"
	seedEntity      = "entity"
	seedTokenMint   = "token_mint"
	seedReserve     = "reserve"
	seedUserRewards = "user_rewards"
	seedRewardPool  = "reward_pool"
)

// Address is a derived 32-byte record key.
type Address [AddressLen]byte

// Derive hashes the seeds into an address. Each seed is length-prefixed so
// ("ab", "c") and ("a", "bc") derive different addresses.
func Derive(seeds ...[]byte) Address {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write([]byte{byte(len(seed))})
		h.Write(seed)
	}
	h.Write([]byte(namespace))

	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Parse decodes a base58 address.
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != AddressLen {
		return Address{}, fmt.Errorf("invalid address %q: expected %d bytes, got %d", s, AddressLen, len(raw))
	}
	var addr Address
	copy(addr[:], raw)
	return addr, nil
}

func Platform() Address {
	return Derive([]byte(seedPlatform))
}

func Entity(id string) Address {
	return Derive([]byte(seedEntity), []byte(id))
}

func TokenMint(entityID string) Address {
	return Derive([]byte(seedTokenMint), []byte(entityID))
}

// Reserve is the address of the reserve account backing an entity's curve.
func Reserve(entity Address) Address {
	return Derive([]byte(seedReserve), entity[:])
}

func UserRewards(user string, entity Address) Address {
	return Derive([]byte(seedUserRewards), []byte(user), entity[:])
}

func RewardPool() Address {
	return Derive([]byte(seedRewardPool))
}
