package engine

import (
	"context"
	"fmt"

	"bonding-rewards-go/internal/metrics"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/store"

	"go.uber.org/zap"
)

// PerformanceReport carries engagement deltas observed since the last report.
type PerformanceReport struct {
	EntityId     string
	Likes        uint64
	Views        uint64
	Comments     uint64
	NewFollowers uint64
}

// ReportPerformance adds the deltas to both the cumulative and the daily
// counters. Only the platform oracle may report. A counter that would
// overflow fails the whole report.
func (e *Engine) ReportPerformance(ctx context.Context, reporter string, report PerformanceReport) (*models.PerformanceMetrics, error) {
	var updated models.PerformanceMetrics

	ctx, _ = e.withOperation(ctx, KindReport, "", report.EntityId, reporter)
	err := e.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		platform, err := tx.GetPlatform(ctx)
		if err != nil {
			return err
		}
		if reporter != platform.Oracle {
			return fmt.Errorf("%w: %q", ErrUnauthorizedOracle, reporter)
		}

		entity, err := tx.GetEntity(ctx, report.EntityId)
		if err != nil {
			return err
		}

		updated, err = applyReport(entity.Performance, report)
		if err != nil {
			return err
		}
		updated.LastUpdated = e.now()
		entity.Performance = updated
		return tx.PutEntity(ctx, entity)
	})
	metrics.RecordPerformanceReport(err)
	if err != nil {
		zap.L().Warn("Performance report rejected",
			zap.String("entity_id", report.EntityId),
			zap.String("reporter", reporter),
			zap.String("reason", ErrorKind(err)))
		return nil, err
	}

	zap.L().Info("Performance updated",
		zap.String("entity_id", report.EntityId),
		zap.Uint64("likes", report.Likes),
		zap.Uint64("views", report.Views),
		zap.Uint64("comments", report.Comments),
		zap.Uint64("new_followers", report.NewFollowers))
	return &updated, nil
}

func applyReport(m models.PerformanceMetrics, r PerformanceReport) (models.PerformanceMetrics, error) {
	counters := []struct {
		total, daily *uint64
		delta        uint64
	}{
		{&m.TotalLikes, &m.DailyLikes, r.Likes},
		{&m.TotalViews, &m.DailyViews, r.Views},
		{&m.TotalComments, &m.DailyComments, r.Comments},
		{&m.TotalFollowers, &m.DailyNewFollowers, r.NewFollowers},
	}
	for _, c := range counters {
		total, err := checkedAdd(*c.total, c.delta)
		if err != nil {
			return m, err
		}
		daily, err := checkedAdd(*c.daily, c.delta)
		if err != nil {
			return m, err
		}
		*c.total = total
		*c.daily = daily
	}
	return m, nil
}
