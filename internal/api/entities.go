package api

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"bonding-rewards-go/internal/curve"
	"bonding-rewards-go/internal/engine"
	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"go.uber.org/zap"
)

// GetEntity returns one entity with its spot price and current daily score.
func (s *Service) GetEntity(ctx context.Context, id string) (*models.EntityView, error) {
	if id == "" {
		return nil, fmt.Errorf("entity_id is required")
	}

	var view *models.EntityView
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		entity, err := tx.GetEntity(ctx, id)
		if err != nil {
			return err
		}
		view, err = s.entityView(entity)
		return err
	})
	if err != nil {
		zap.L().Error("Failed to get entity", zap.String("entity_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve entity %s: %w", id, err)
	}
	return view, nil
}

// ListEntities returns every entity ordered by id.
func (s *Service) ListEntities(ctx context.Context) ([]models.EntityView, error) {
	var views []models.EntityView
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		entities, err := tx.ListEntities(ctx)
		if err != nil {
			return err
		}
		for _, entity := range entities {
			view, err := s.entityView(entity)
			if err != nil {
				return err
			}
			views = append(views, *view)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Id < views[j].Id })
	return views, nil
}

// GetUserRewards returns a user's reward position for an entity. A user who
// never accrued anything gets a zero position.
func (s *Service) GetUserRewards(ctx context.Context, user, entityId string) (*models.RewardsView, error) {
	if user == "" || entityId == "" {
		return nil, fmt.Errorf("user and entity_id are required")
	}

	view := &models.RewardsView{EntityId: entityId, User: user}
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.GetEntity(ctx, entityId); err != nil {
			return err
		}
		rewards, err := tx.GetUserRewards(ctx, user, keys.Entity(entityId))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		view.Pending = models.Human(rewards.Pending, s.decimals)
		view.Claimed = models.Human(rewards.Claimed, s.decimals)
		view.LastClaim = rewards.LastClaim
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve rewards: %w", err)
	}
	return view, nil
}

func (s *Service) entityView(entity *models.Entity) (*models.EntityView, error) {
	price, err := curve.Price(entity.Curve, entity.CirculatingSupply)
	if err != nil {
		return nil, err
	}
	score, err := engine.Score(entity.Performance)
	if err != nil {
		return nil, err
	}
	return &models.EntityView{
		Id:                entity.Id,
		Name:              entity.Name,
		Symbol:            entity.Symbol,
		Uri:               entity.Uri,
		TokenMint:         entity.TokenMint.String(),
		ReserveAccount:    string(store.ReserveAccount(entity.ReserveKey())),
		SpotPrice:         models.Human(price, models.DefaultDecimals),
		CirculatingSupply: models.Human(entity.CirculatingSupply, s.decimals),
		MaxSupply:         models.Human(entity.Curve.MaxSupply, s.decimals),
		ReserveBalance:    models.Human(entity.ReserveBalance, s.decimals),
		CurrentScore:      score,
		Performance:       entity.Performance,
		LastDistribution:  entity.LastRewardDistribution,
	}, nil
}
