package engine

import (
	"context"
	"errors"
	"fmt"

	"bonding-rewards-go/internal/metrics"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"go.uber.org/zap"
)

// Score weights of the daily counters. Views count in tenths.
const (
	likeWeight        = 1
	viewDivisor       = 10
	commentWeight     = 2
	newFollowerWeight = 5
)

// Score computes an entity's score from its daily window:
//
//	likes + views/10 + comments*2 + new_followers*5
func Score(m models.PerformanceMetrics) (uint64, error) {
	comments, err := checkedMul(m.DailyComments, commentWeight)
	if err != nil {
		return 0, err
	}
	followers, err := checkedMul(m.DailyNewFollowers, newFollowerWeight)
	if err != nil {
		return 0, err
	}

	score := m.DailyLikes * likeWeight
	for _, term := range []uint64{m.DailyViews / viewDivisor, comments, followers} {
		if score, err = checkedAdd(score, term); err != nil {
			return 0, err
		}
	}
	return score, nil
}

// Distribute closes the entity's daily window: it scores the window, resets
// the daily counters and stamps the distribution time. No rewards are
// credited; allocating the pool across entities is left to the caller,
// which records the outcome with Accrue.
func (e *Engine) Distribute(ctx context.Context, entityId string) (*models.DistributionResult, error) {
	var result *models.DistributionResult

	ctx, _ = e.withOperation(ctx, KindDistribute, "", entityId, "")
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		entity, err := tx.GetEntity(ctx, entityId)
		if err != nil {
			return err
		}

		score, err := Score(entity.Performance)
		if err != nil {
			return err
		}

		now := e.now()
		entity.Performance.ResetDaily()
		entity.LastRewardDistribution = now
		if err := tx.PutEntity(ctx, entity); err != nil {
			return err
		}

		result = &models.DistributionResult{EntityId: entityId, Score: score, DistributedAt: now}
		return nil
	})
	if err != nil {
		zap.L().Warn("Distribution failed", zap.String("entity_id", entityId), zap.String("reason", ErrorKind(err)))
		return nil, err
	}

	metrics.RecordDistribution(result.Score)
	zap.L().Info("Rewards distributed",
		zap.String("entity_id", entityId),
		zap.Uint64("score", result.Score))
	return result, nil
}

// DistributeAll runs Distribute for every entity, each in its own unit of
// work. It returns the results that succeeded and the joined errors of the
// ones that did not.
func (e *Engine) DistributeAll(ctx context.Context) ([]models.DistributionResult, error) {
	var ids []string
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		entities, err := tx.ListEntities(ctx)
		if err != nil {
			return err
		}
		for _, entity := range entities {
			ids = append(ids, entity.Id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	var results []models.DistributionResult
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := e.Distribute(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %q: %w", id, err))
			continue
		}
		results = append(results, *result)
	}
	return results, errors.Join(errs...)
}

// Accrue adds amount to a user's pending rewards for an entity, creating the
// record on first accrual. Only the platform authority may accrue.
func (e *Engine) Accrue(ctx context.Context, caller, user, entityId string, amount uint64) (*models.UserRewards, error) {
	if err := validateIdentity(user); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: accrual must be positive", ErrInvalidAmount)
	}

	var rewards *models.UserRewards
	ctx, _ = e.withOperation(ctx, KindAccrue, "", entityId, caller)
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		if caller != platform.Authority {
			return fmt.Errorf("%w: %q", ErrUnauthorized, caller)
		}

		entity, err := tx.GetEntity(ctx, entityId)
		if err != nil {
			return err
		}

		rewards, err = tx.GetUserRewards(ctx, user, entity.Key())
		if errors.Is(err, store.ErrNotFound) {
			rewards = &models.UserRewards{User: user, Entity: entity.Key()}
		} else if err != nil {
			return err
		}

		if rewards.Pending, err = checkedAdd(rewards.Pending, amount); err != nil {
			return err
		}
		if entity.TotalRewardsEarned, err = checkedAdd(entity.TotalRewardsEarned, amount); err != nil {
			return err
		}
		if err := tx.PutUserRewards(ctx, rewards); err != nil {
			return err
		}
		return tx.PutEntity(ctx, entity)
	})
	if err != nil {
		zap.L().Warn("Accrual rejected",
			zap.String("entity_id", entityId),
			zap.String("user", user),
			zap.String("reason", ErrorKind(err)))
		return nil, err
	}

	zap.L().Info("Rewards accrued",
		zap.String("entity_id", entityId),
		zap.String("user", user),
		zap.String("amount", human(amount)),
		zap.String("pending", human(rewards.Pending)))
	return rewards, nil
}

// Claim pays out a user's pending rewards for an entity from the platform
// reward pool and zeroes the pending balance.
func (e *Engine) Claim(ctx context.Context, user, entityId, reference string) (*models.ClaimResult, error) {
	result, err := e.claim(ctx, user, entityId, reference)
	var paid uint64
	if result != nil {
		paid = result.Amount
	}
	metrics.RecordClaim(paid, err)
	if err != nil {
		zap.L().Warn("Claim rejected",
			zap.String("entity_id", entityId),
			zap.String("user", user),
			zap.String("reason", ErrorKind(err)))
		return nil, err
	}

	zap.L().Info("Rewards claimed",
		zap.String("entity_id", entityId),
		zap.String("user", user),
		zap.String("amount", human(result.Amount)),
		zap.String("total_claimed", human(result.TotalClaimed)))
	return result, nil
}

func (e *Engine) claim(ctx context.Context, user, entityId, reference string) (*models.ClaimResult, error) {
	if err := validateIdentity(user); err != nil {
		return nil, err
	}

	var result *models.ClaimResult
	ctx, _ = e.withOperation(ctx, KindClaim, reference, entityId, user)
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		entity, err := tx.GetEntity(ctx, entityId)
		if err != nil {
			return err
		}

		rewards, err := tx.GetUserRewards(ctx, user, entity.Key())
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoRewardsToClaim
		}
		if err != nil {
			return err
		}
		amount := rewards.Pending
		if amount == 0 {
			return ErrNoRewardsToClaim
		}

		claimed, err := checkedAdd(rewards.Claimed, amount)
		if err != nil {
			return err
		}

		if err := tx.Debit(ctx, store.RewardPoolAccount(), platform.ReserveAsset, amount); err != nil {
			return err
		}
		if err := tx.Credit(ctx, store.HolderAccount(user), platform.ReserveAsset, amount); err != nil {
			return err
		}

		now := e.now()
		rewards.Claimed = claimed
		rewards.Pending = 0
		rewards.LastClaim = now
		if err := tx.PutUserRewards(ctx, rewards); err != nil {
			return err
		}

		result = &models.ClaimResult{
			EntityId:     entityId,
			User:         user,
			Amount:       amount,
			TotalClaimed: claimed,
			ClaimedAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FundRewardPool mints amount of the reserve asset into the platform reward
// pool. It is idempotent by reference: a replayed reference returns
// (false, nil).
func (e *Engine) FundRewardPool(ctx context.Context, amount uint64, reference string) (bool, error) {
	if amount == 0 {
		return false, fmt.Errorf("%w: funding must be positive", ErrInvalidAmount)
	}

	ctx, reference = e.withOperation(ctx, KindFundPool, reference, "", "")
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		return tx.Mint(ctx, store.RewardPoolAccount(), platform.ReserveAsset, amount)
	})
	if errors.Is(err, store.ErrDuplicateTransaction) {
		zap.L().Info("Reward pool funding already applied", zap.String("reference", reference))
		return false, nil
	}
	if err != nil {
		zap.L().Warn("Reward pool funding failed", zap.String("reference", reference), zap.String("reason", ErrorKind(err)))
		return false, err
	}

	zap.L().Info("Reward pool funded",
		zap.String("amount", human(amount)),
		zap.String("reference", reference))
	return true, nil
}

// FundHolder mints amount of the reserve asset to a holder. Only the
// platform authority may fund holders; replays of reference are ignored.
func (e *Engine) FundHolder(ctx context.Context, caller, user string, amount uint64, reference string) (bool, error) {
	if err := validateIdentity(user); err != nil {
		return false, err
	}
	if amount == 0 {
		return false, fmt.Errorf("%w: funding must be positive", ErrInvalidAmount)
	}

	ctx, reference = e.withOperation(ctx, KindFundHolder, reference, "", caller)
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		if caller != platform.Authority {
			return fmt.Errorf("%w: %q", ErrUnauthorized, caller)
		}
		return tx.Mint(ctx, store.HolderAccount(user), platform.ReserveAsset, amount)
	})
	if errors.Is(err, store.ErrDuplicateTransaction) {
		zap.L().Info("Holder funding already applied", zap.String("reference", reference))
		return false, nil
	}
	if err != nil {
		zap.L().Warn("Holder funding failed", zap.String("user", user), zap.String("reason", ErrorKind(err)))
		return false, err
	}

	zap.L().Info("Holder funded",
		zap.String("user", user),
		zap.String("amount", human(amount)),
		zap.String("reference", reference))
	return true, nil
}
