package engine

import (
	"context"
	"math"
	"testing"

	"bonding-rewards-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportPerformance_Accumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := PerformanceReport{EntityId: testEntityId, Likes: 100, Views: 1000, Comments: 10, NewFollowers: 5}
	_, err := f.engine.ReportPerformance(ctx, testOracle, report)
	require.NoError(t, err)
	updated, err := f.engine.ReportPerformance(ctx, testOracle, report)
	require.NoError(t, err)

	assert.Equal(t, uint64(200), updated.TotalLikes)
	assert.Equal(t, uint64(2000), updated.TotalViews)
	assert.Equal(t, uint64(20), updated.TotalComments)
	assert.Equal(t, uint64(10), updated.TotalFollowers)
	assert.Equal(t, uint64(200), updated.DailyLikes)
	assert.Equal(t, uint64(10), updated.DailyNewFollowers)
	assert.Equal(t, testNow, updated.LastUpdated)

	assert.Equal(t, *updated, f.entity(t, testEntityId).Performance)
}

func TestReportPerformance_UnauthorizedNeverMutates(t *testing.T) {
	f := newFixture(t)
	before := f.entity(t, testEntityId).Performance

	for _, reporter := range []string{"mallory", testAuthority, ""} {
		_, err := f.engine.ReportPerformance(context.Background(), reporter,
			PerformanceReport{EntityId: testEntityId, Likes: 1})
		require.ErrorIs(t, err, ErrUnauthorizedOracle, "reporter %q", reporter)
	}

	assert.Equal(t, before, f.entity(t, testEntityId).Performance)
}

func TestReportPerformance_OverflowFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.ReportPerformance(ctx, testOracle, PerformanceReport{EntityId: testEntityId, Views: 7, Likes: math.MaxUint64})
	require.NoError(t, err)
	before := f.entity(t, testEntityId).Performance

	_, err = f.engine.ReportPerformance(ctx, testOracle, PerformanceReport{EntityId: testEntityId, Views: 1, Likes: 1})
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, before, f.entity(t, testEntityId).Performance)
}

func TestReportPerformance_UnknownEntity(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ReportPerformance(context.Background(), testOracle, PerformanceReport{EntityId: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
