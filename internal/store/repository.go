package store

import (
	"context"
	"fmt"
	"sort"

	"bonding-rewards-go/internal/codec"
	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/models"
)

// Compile-time check: Repository must satisfy Records.
var _ Records = Repository{}

// Repository implements Records on top of a backend's KV using the codec
// layout and derived addresses.
type Repository struct {
	kv KV
}

func NewRepository(kv KV) Repository {
	return Repository{kv: kv}
}

func (r Repository) GetPlatform(ctx context.Context) (*models.Platform, error) {
	data, err := r.kv.Load(ctx, keys.Platform())
	if err != nil {
		return nil, fmt.Errorf("load platform: %w", err)
	}
	return codec.DecodePlatform(data)
}

func (r Repository) PutPlatform(ctx context.Context, p *models.Platform) error {
	data, err := codec.EncodePlatform(p)
	if err != nil {
		return err
	}
	return r.kv.Save(ctx, keys.Platform(), codec.KindPlatform, data)
}

func (r Repository) GetEntity(ctx context.Context, id string) (*models.Entity, error) {
	data, err := r.kv.Load(ctx, keys.Entity(id))
	if err != nil {
		return nil, fmt.Errorf("load entity %q: %w", id, err)
	}
	return codec.DecodeEntity(data)
}

func (r Repository) PutEntity(ctx context.Context, e *models.Entity) error {
	data, err := codec.EncodeEntity(e)
	if err != nil {
		return err
	}
	return r.kv.Save(ctx, e.Key(), codec.KindEntity, data)
}

// ListEntities returns all entities ordered by id.
func (r Repository) ListEntities(ctx context.Context) ([]*models.Entity, error) {
	blobs, err := r.kv.List(ctx, codec.KindEntity)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	entities := make([]*models.Entity, 0, len(blobs))
	for _, data := range blobs {
		e, err := codec.DecodeEntity(data)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].Id < entities[j].Id })
	return entities, nil
}

func (r Repository) GetUserRewards(ctx context.Context, user string, entity keys.Address) (*models.UserRewards, error) {
	data, err := r.kv.Load(ctx, keys.UserRewards(user, entity))
	if err != nil {
		return nil, fmt.Errorf("load rewards for %q: %w", user, err)
	}
	return codec.DecodeUserRewards(data)
}

func (r Repository) PutUserRewards(ctx context.Context, u *models.UserRewards) error {
	data, err := codec.EncodeUserRewards(u)
	if err != nil {
		return err
	}
	return r.kv.Save(ctx, u.Key(), codec.KindUserRewards, data)
}
