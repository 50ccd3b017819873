package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/chronolens/chronolens/engine/domain"
	"github.com/chronolens/chronolens/engine/repository"
)

func TestCostTracker_AccumulatesCosts(t *testing.T) {
	ctx := context.Background()
	tracker := NewCostTracker(repository.NewMemoryContentStore())
	tracker.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	tracker.LogAPICost(ctx, 0.002, 0.04, 0)
	tracker.LogAPICost(ctx, 0.002, 0, 0.35)

	rec, err := tracker.GetDailyCost(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2026-03-01", rec.Date)
	assert.InDelta(t, 0.004, rec.TextCost, 1e-9)
	assert.InDelta(t, 0.04, rec.ImageCost, 1e-9)
	assert.InDelta(t, 0.35, rec.VideoCost, 1e-9)
	assert.InDelta(t, rec.TextCost+rec.ImageCost+rec.VideoCost, rec.TotalCost, 1e-9)
	assert.Equal(t, int64(2), rec.APICalls)
}

func TestCostTracker_CountsCacheHits(t *testing.T) {
	ctx := context.Background()
	tracker := NewCostTracker(repository.NewMemoryContentStore())
	tracker.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	tracker.LogAPICost(ctx, 0.002, 0, 0)
	tracker.LogCacheHit(ctx)
	tracker.LogCacheHit(ctx)
	tracker.LogCacheHit(ctx)

	rec, err := tracker.GetDailyCost(ctx, "2026-03-01")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(3), rec.CacheHits)
	assert.Equal(t, int64(1), rec.APICalls)
	assert.InDelta(t, 0.75, rec.HitRate(), 1e-9)
}

func TestCostTracker_InactiveDayReturnsNil(t *testing.T) {
	tracker := NewCostTracker(repository.NewMemoryContentStore())

	rec, err := tracker.GetDailyCost(context.Background(), "2019-01-01")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCostTracker_SplitsRecordsAcrossDays(t *testing.T) {
	ctx := context.Background()
	tracker := NewCostTracker(repository.NewMemoryContentStore())

	tracker.now = fixedClock(time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC))
	tracker.LogAPICost(ctx, 0.01, 0, 0)

	tracker.now = fixedClock(time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC))
	tracker.LogAPICost(ctx, 0.02, 0, 0)

	day1, err := tracker.GetDailyCost(ctx, "2026-03-01")
	require.NoError(t, err)
	require.NotNil(t, day1)
	assert.InDelta(t, 0.01, day1.TotalCost, 1e-9)

	day2, err := tracker.GetDailyCost(ctx, "2026-03-02")
	require.NoError(t, err)
	require.NotNil(t, day2)
	assert.InDelta(t, 0.02, day2.TotalCost, 1e-9)
}

func TestDailyCostRecord_HitRate(t *testing.T) {
	assert.Equal(t, 0.0, costRecord(0, 0).HitRate())
	assert.Equal(t, 1.0, costRecord(0, 5).HitRate())
	assert.Equal(t, 0.5, costRecord(2, 2).HitRate())
}

func costRecord(calls, hits int64) domain.DailyCostRecord {
	return domain.DailyCostRecord{APICalls: calls, CacheHits: hits}
}
