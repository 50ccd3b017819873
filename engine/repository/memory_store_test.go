package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/chronolens/chronolens/engine/domain"
)

func testEntry(key string, size int64, at time.Time) *domain.Entry {
	return &domain.Entry{
		Content: domain.Content{Narrative: "n", Image: []byte{1, 2, 3}},
		Meta: domain.CacheMetadata{
			CacheKey:     key,
			CachedAt:     at,
			ExpiresAt:    at.Add(time.Hour),
			LastAccessed: at,
			SizeBytes:    size,
			Version:      1,
		},
	}
}

func TestMemoryContentStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, "k1", testEntry("k1", 100, at)))

	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "k1", got.Meta.CacheKey)
	assert.Equal(t, []byte{1, 2, 3}, got.Content.Image)

	absent, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestMemoryContentStore_GetReturnsIsolatedCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	at := time.Now()
	require.NoError(t, s.Put(ctx, "k1", testEntry("k1", 100, at)))

	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	got.Content.Image[0] = 99
	got.Meta.SizeBytes = 12345

	fresh, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, byte(1), fresh.Content.Image[0], "caller mutations must not leak into the store")
	assert.Equal(t, int64(100), fresh.Meta.SizeBytes)
}

func TestMemoryContentStore_PutClonesInput(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	entry := testEntry("k1", 100, time.Now())
	require.NoError(t, s.Put(ctx, "k1", entry))
	entry.Content.Image[0] = 99

	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, byte(1), got.Content.Image[0])
}

func TestMemoryContentStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	require.NoError(t, s.Put(ctx, "k1", testEntry("k1", 100, time.Now())))
	require.NoError(t, s.Delete(ctx, "k1"))

	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, s.Delete(ctx, "k1"), "deleting an absent key is not an error")
}

func TestMemoryContentStore_TotalSizeAndListMetadata(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	at := time.Now()
	require.NoError(t, s.Put(ctx, "a", testEntry("a", 100, at)))
	require.NoError(t, s.Put(ctx, "b", testEntry("b", 250, at)))

	total, err := s.TotalSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(350), total)

	metas, err := s.ListMetadata(ctx)
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestMemoryContentStore_TouchIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, "k1", testEntry("k1", 100, at)))

	later := at.Add(time.Hour)
	require.NoError(t, s.Touch(ctx, "k1", later))
	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, later, got.Meta.LastAccessed)

	// An older timestamp never moves LastAccessed backwards.
	require.NoError(t, s.Touch(ctx, "k1", at))
	got, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, later, got.Meta.LastAccessed)

	assert.NoError(t, s.Touch(ctx, "nope", later), "touching an absent key is a no-op")
}

func TestMemoryContentStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	require.NoError(t, s.Put(ctx, "a", testEntry("a", 100, time.Now())))
	require.NoError(t, s.Put(ctx, "b", testEntry("b", 100, time.Now())))
	require.NoError(t, s.Clear(ctx))

	total, err := s.TotalSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestMemoryContentStore_DailyCosts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContentStore()

	rec, err := s.GetDailyCost(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Nil(t, rec)

	put := &domain.DailyCostRecord{Date: "2026-03-01", TextCost: 0.01, TotalCost: 0.01, APICalls: 1}
	require.NoError(t, s.PutDailyCost(ctx, put))

	got, err := s.GetDailyCost(ctx, "2026-03-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.APICalls)

	// Stored records are copies.
	put.APICalls = 99
	again, err := s.GetDailyCost(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.APICalls)
}
