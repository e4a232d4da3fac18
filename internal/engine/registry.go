package engine

import (
	"context"
	"errors"
	"fmt"

	"bonding-rewards-go/internal/codec"
	"bonding-rewards-go/internal/curve"
	"bonding-rewards-go/internal/keys"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"go.uber.org/zap"
)

// PlatformParams configures the platform singleton.
type PlatformParams struct {
	ReserveAsset    string
	Oracle          string
	DailyRewardPool uint64
}

// CreateEntityRequest describes a new tradable entity.
type CreateEntityRequest struct {
	Id            string
	Name          string
	Symbol        string
	Uri           string
	InitialSupply uint64
	Curve         models.BondingCurveParams
}

// InitializePlatform creates the platform singleton with authority as its
// administrator. It fails with store.ErrAlreadyExists if one exists.
func (e *Engine) InitializePlatform(ctx context.Context, authority string, params PlatformParams) (*models.Platform, error) {
	if err := validateIdentity(authority); err != nil {
		return nil, err
	}
	if err := validateIdentity(params.Oracle); err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}
	if params.ReserveAsset == "" || len(params.ReserveAsset) > models.MaxAssetLen {
		return nil, fmt.Errorf("reserve asset %q must be 1-%d bytes", params.ReserveAsset, models.MaxAssetLen)
	}

	platform := &models.Platform{
		Authority:       authority,
		ReserveAsset:    params.ReserveAsset,
		Oracle:          params.Oracle,
		DailyRewardPool: params.DailyRewardPool,
		Version:         codec.LayoutVersion,
	}

	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.GetPlatform(ctx)
		if err == nil {
			return fmt.Errorf("platform: %w", store.ErrAlreadyExists)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.PutPlatform(ctx, platform)
	})
	if err != nil {
		zap.L().Warn("Platform initialization rejected", zap.String("reason", ErrorKind(err)))
		return nil, err
	}

	zap.L().Info("Platform initialized",
		zap.String("authority", authority),
		zap.String("oracle", params.Oracle),
		zap.String("reserve_asset", params.ReserveAsset),
		zap.String("daily_reward_pool", human(params.DailyRewardPool)))
	return platform, nil
}

// CreateEntity registers a new entity owned by authority and increments the
// platform's entity count. Supply and reserve start at zero.
func (e *Engine) CreateEntity(ctx context.Context, authority string, req CreateEntityRequest) (*models.Entity, error) {
	if err := validateIdentity(authority); err != nil {
		return nil, err
	}
	if req.Id == "" {
		return nil, fmt.Errorf("entity id cannot be empty")
	}
	if err := curve.Validate(req.Curve); err != nil {
		return nil, err
	}

	entity := &models.Entity{
		Id:                     req.Id,
		Authority:              authority,
		TokenMint:              keys.TokenMint(req.Id),
		Name:                   req.Name,
		Symbol:                 req.Symbol,
		Uri:                    req.Uri,
		Curve:                  req.Curve,
		TotalSupply:            req.InitialSupply,
		LastRewardDistribution: e.now(),
	}

	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}

		_, err = tx.GetEntity(ctx, req.Id)
		if err == nil {
			return fmt.Errorf("entity %q: %w", req.Id, store.ErrAlreadyExists)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := entity.Validate(); err != nil {
			return err
		}
		if err := tx.PutEntity(ctx, entity); err != nil {
			return err
		}

		platform.TotalEntities, err = checkedAdd(platform.TotalEntities, 1)
		if err != nil {
			return err
		}
		return tx.PutPlatform(ctx, platform)
	})
	if err != nil {
		zap.L().Warn("Entity creation rejected", zap.String("entity_id", req.Id), zap.String("reason", ErrorKind(err)))
		return nil, err
	}

	zap.L().Info("Entity created",
		zap.String("entity_id", entity.Id),
		zap.String("name", entity.Name),
		zap.String("symbol", entity.Symbol),
		zap.String("token_mint", entity.TokenMint.String()),
		zap.String("max_supply", human(entity.Curve.MaxSupply)))
	return entity, nil
}
