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

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func putEntry(t *testing.T, store *repository.MemoryContentStore, key string, size int64, lastAccessed time.Time) {
	t.Helper()
	err := store.Put(context.Background(), key, &domain.Entry{
		Content: domain.Content{Narrative: "n"},
		Meta: domain.CacheMetadata{
			CacheKey:     key,
			CachedAt:     lastAccessed,
			ExpiresAt:    lastAccessed.Add(24 * time.Hour),
			LastAccessed: lastAccessed,
			SizeBytes:    size,
			Version:      1,
		},
	})
	require.NoError(t, err)
}

func TestCacheManager_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, 30*24*time.Hour, 50<<20, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = fixedClock(base)

	content := domain.Content{Narrative: "a shallow tropical sea", Image: []byte{1, 2, 3}}
	stored, err := m.StoreContent(ctx, "k1", content)
	require.NoError(t, err)
	assert.Equal(t, base, stored.Meta.CachedAt)
	assert.Equal(t, base.Add(30*24*time.Hour), stored.Meta.ExpiresAt)
	assert.Equal(t, EstimateSize(content), stored.Meta.SizeBytes)
	assert.Equal(t, 1, stored.Meta.Version)

	got, err := m.GetContent(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a shallow tropical sea", got.Content.Narrative)
}

func TestCacheManager_MissReturnsNil(t *testing.T) {
	m := NewCacheManager(repository.NewMemoryContentStore(), time.Hour, 1<<20, nil)

	got, err := m.GetContent(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheManager_ExpiredEntryDeletedOnRead(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, time.Hour, 1<<20, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = fixedClock(base)
	_, err := m.StoreContent(ctx, "k1", domain.Content{Narrative: "n"})
	require.NoError(t, err)

	m.now = fixedClock(base.Add(time.Hour + time.Second))
	got, err := m.GetContent(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)

	raw, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, raw, "expired entry must be deleted, not just hidden")
}

func TestCacheManager_EntryValidAtBoundary(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, time.Hour, 1<<20, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = fixedClock(base)
	_, err := m.StoreContent(ctx, "k1", domain.Content{Narrative: "n"})
	require.NoError(t, err)

	// Exactly at ExpiresAt the entry is no longer valid.
	m.now = fixedClock(base.Add(time.Hour))
	got, err := m.GetContent(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheManager_HitPersistsLastAccessed(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, 48*time.Hour, 1<<20, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = fixedClock(base)
	_, err := m.StoreContent(ctx, "k1", domain.Content{Narrative: "n"})
	require.NoError(t, err)

	later := base.Add(3 * time.Hour)
	m.now = fixedClock(later)
	got, err := m.GetContent(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, later, got.Meta.LastAccessed)

	raw, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, later, raw.Meta.LastAccessed, "touch must be persisted")
}

func TestCacheManager_EvictOldEntries_LRUOrder(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, time.Hour, 1000, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	putEntry(t, store, "old", 300, base)
	putEntry(t, store, "mid", 300, base.Add(time.Minute))
	putEntry(t, store, "new", 300, base.Add(2*time.Minute))

	// 900 > 800 target: only the coldest entry goes.
	evicted := m.EvictOldEntries(ctx)
	assert.Equal(t, 1, evicted)

	gone, err := store.Get(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, gone)
	for _, key := range []string{"mid", "new"} {
		kept, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.NotNil(t, kept, "entry %s must survive", key)
	}
}

func TestCacheManager_ReadSavesEntryFromEviction(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, 24*time.Hour, 1000, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	putEntry(t, store, "cold", 450, base)
	putEntry(t, store, "warm", 450, base.Add(time.Minute))

	// Reading the coldest entry makes it the warmest.
	m.now = fixedClock(base.Add(2 * time.Minute))
	got, err := m.GetContent(ctx, "cold")
	require.NoError(t, err)
	require.NotNil(t, got)

	evicted := m.EvictOldEntries(ctx)
	assert.Equal(t, 1, evicted)

	kept, err := store.Get(ctx, "cold")
	require.NoError(t, err)
	assert.NotNil(t, kept, "recently read entry must not be evicted first")
	gone, err := store.Get(ctx, "warm")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCacheManager_EvictOldEntries_UnderTargetNoop(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, time.Hour, 1000, nil)

	putEntry(t, store, "a", 400, time.Now())
	putEntry(t, store, "b", 400, time.Now())

	assert.Equal(t, 0, m.EvictOldEntries(ctx))
}

func TestCacheManager_EvictOldEntries_TieBreaksOnKey(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, time.Hour, 1000, nil)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	putEntry(t, store, "bbb", 450, at)
	putEntry(t, store, "aaa", 450, at)

	evicted := m.EvictOldEntries(ctx)
	assert.Equal(t, 1, evicted)

	gone, err := store.Get(ctx, "aaa")
	require.NoError(t, err)
	assert.Nil(t, gone)
	kept, err := store.Get(ctx, "bbb")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestCacheManager_StoreEvictsBeforeWrite(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, time.Hour, 1000, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	putEntry(t, store, "cold", 500, base)
	putEntry(t, store, "warm", 500, base.Add(time.Minute))

	m.now = fixedClock(base.Add(2 * time.Minute))
	content := domain.Content{Narrative: "fresh"} // ~261 bytes
	_, err := m.StoreContent(ctx, "fresh", content)
	require.NoError(t, err)

	gone, err := store.Get(ctx, "cold")
	require.NoError(t, err)
	assert.Nil(t, gone, "coldest entry evicted to make room")

	total, err := store.TotalSize(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, total, int64(1000))
}

func TestCacheManager_InvalidateRemovesEntry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, time.Hour, 1<<20, nil)

	_, err := m.StoreContent(ctx, "k1", domain.Content{Narrative: "n"})
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(ctx, "k1"))

	got, err := m.GetContent(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheManager_EmitsEvents(t *testing.T) {
	ctx := context.Background()
	events := NewEventPublisher()
	store := repository.NewMemoryContentStore()
	m := NewCacheManager(store, time.Hour, 1<<20, events)

	_, err := m.StoreContent(ctx, "k1", domain.Content{Narrative: "n"})
	require.NoError(t, err)
	_, err = m.GetContent(ctx, "k1")
	require.NoError(t, err)
	_, err = m.GetContent(ctx, "nope")
	require.NoError(t, err)

	recent := events.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, EventStore, recent[0].Type)
	assert.Equal(t, EventHit, recent[1].Type)
	assert.Equal(t, EventMiss, recent[2].Type)
}

func TestEstimateSize(t *testing.T) {
	c := domain.Content{
		Narrative: "abcd",
		Image:     make([]byte, 10),
		Video:     make([]byte, 20),
	}
	assert.Equal(t, int64(4+10+20+256), EstimateSize(c))
	assert.Equal(t, int64(256), EstimateSize(domain.Content{}))
}
