package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/chronolens/chronolens/engine/domain"
)

func openTestStore(t *testing.T) *GormContentStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single pinned connection keeps every query on the same in-memory
	// database and isolates it per test.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	store := NewGormContentStore(db)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func gormEntry(key string, image []byte, size int64) *domain.Entry {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Entry{
		Content: domain.Content{Narrative: "a warm shallow sea", Image: image},
		Meta: domain.CacheMetadata{
			CacheKey:     key,
			CachedAt:     at,
			ExpiresAt:    at.Add(24 * time.Hour),
			LastAccessed: at,
			SizeBytes:    size,
			Version:      1,
		},
	}
}

func TestGormContentStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Put(ctx, "k1", gormEntry("k1", []byte{1, 2, 3}, 300)))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a warm shallow sea", got.Content.Narrative)
	assert.Equal(t, []byte{1, 2, 3}, got.Content.Image)
	assert.Equal(t, int64(300), got.Meta.SizeBytes)

	absent, err := store.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestGormContentStore_ThumbnailCountsAgainstCeiling(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	store.ThumbnailFn = func(data []byte) []byte { return make([]byte, 40) }

	require.NoError(t, store.Put(ctx, "k1", gormEntry("k1", []byte{1, 2, 3}, 300)))

	total, err := store.TotalSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(340), total, "thumbnail bytes must be part of the accounted size")

	metas, err := store.ListMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, int64(340), metas[0].SizeBytes)

	thumb, err := store.Thumbnail(ctx, "k1")
	require.NoError(t, err)
	assert.Len(t, thumb, 40)
}

func TestGormContentStore_DeleteRemovesBlobs(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	store.ThumbnailFn = func(data []byte) []byte { return make([]byte, 40) }

	require.NoError(t, store.Put(ctx, "k1", gormEntry("k1", []byte{1, 2, 3}, 300)))
	require.NoError(t, store.Delete(ctx, "k1"))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)

	thumb, err := store.Thumbnail(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, thumb)

	total, err := store.TotalSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormContentStore_TouchIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Put(ctx, "k1", gormEntry("k1", nil, 260)))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := at.Add(time.Hour)
	require.NoError(t, store.Touch(ctx, "k1", later))
	require.NoError(t, store.Touch(ctx, "k1", at))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, later.Unix(), got.Meta.LastAccessed.Unix())
}
