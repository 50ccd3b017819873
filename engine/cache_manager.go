package engine

import (
	"context"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// CacheManager enforces TTL validity and LRU eviction on top of the
// ContentStore. It is the only component that deletes entries for space
// reasons.
type CacheManager struct {
	store    domain.ContentStore
	ttl      time.Duration
	maxBytes int64
	events   *EventPublisher

	// now is injectable for tests.
	now func() time.Time
}

// NewCacheManager wires a manager over store. A nil events publisher
// disables telemetry.
func NewCacheManager(store domain.ContentStore, ttl time.Duration, maxBytes int64, events *EventPublisher) *CacheManager {
	if ttl <= 0 {
		ttl = domain.ContentTTL
	}
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxCacheBytes
	}
	return &CacheManager{
		store:    store,
		ttl:      ttl,
		maxBytes: maxBytes,
		events:   events,
		now:      time.Now,
	}
}

// IsValid reports whether metadata is still within its TTL.
func (m *CacheManager) IsValid(meta domain.CacheMetadata) bool {
	return m.now().Before(meta.ExpiresAt)
}

// GetContent returns the valid entry under key or nil. Expired entries are
// deleted on read, not proactively swept. A hit persists the new
// LastAccessed timestamp before returning. Storage failures degrade to a
// miss.
func (m *CacheManager) GetContent(ctx context.Context, key string) (*domain.Entry, error) {
	entry, err := m.store.Get(ctx, key)
	if err != nil {
		logrus.Warnf("[CACHE] Read failed for %s, treating as miss: %v", key, err)
		m.emit(EventMiss, key, 0)
		return nil, nil
	}
	if entry == nil {
		m.emit(EventMiss, key, 0)
		return nil, nil
	}

	if !m.IsValid(entry.Meta) {
		if err := m.store.Delete(ctx, key); err != nil {
			logrus.Warnf("[CACHE] Failed to delete expired entry %s: %v", key, err)
		}
		m.emit(EventExpire, key, entry.Meta.SizeBytes)
		return nil, nil
	}

	now := m.now()
	if err := m.store.Touch(ctx, key, now); err != nil {
		// Losing a touch only makes the entry look colder to eviction.
		logrus.Warnf("[CACHE] Failed to persist last_accessed for %s: %v", key, err)
	}
	if now.After(entry.Meta.LastAccessed) {
		entry.Meta.LastAccessed = now
	}

	m.emit(EventHit, key, entry.Meta.SizeBytes)
	return entry, nil
}

// StoreContent writes content under key with a fresh TTL, evicting first
// when the write would push the store past its ceiling. Returns the stored
// entry.
func (m *CacheManager) StoreContent(ctx context.Context, key string, content domain.Content) (*domain.Entry, error) {
	now := m.now()
	size := EstimateSize(content)

	if total, err := m.store.TotalSize(ctx); err == nil {
		if total+size > m.maxBytes {
			evicted := m.EvictOldEntries(ctx)
			logrus.Infof("[CACHE] Evicted %d entries to make room for %s (%s)",
				evicted, key, humanize.Bytes(uint64(size)))
		}
	} else {
		logrus.Warnf("[CACHE] Could not compute total size, skipping eviction check: %v", err)
	}

	entry := &domain.Entry{
		Content: content,
		Meta: domain.CacheMetadata{
			CacheKey:     key,
			CachedAt:     now,
			ExpiresAt:    now.Add(m.ttl),
			LastAccessed: now,
			SizeBytes:    size,
			Version:      1,
		},
	}

	if err := m.store.Put(ctx, key, entry); err != nil {
		return nil, err
	}

	m.emit(EventStore, key, size)
	return entry, nil
}

// Invalidate unconditionally deletes the entry under key. Used by
// user-triggered refresh actions.
func (m *CacheManager) Invalidate(ctx context.Context, key string) error {
	if err := m.store.Delete(ctx, key); err != nil {
		return err
	}
	m.emit(EventInvalidate, key, 0)
	return nil
}

// EvictOldEntries deletes least-recently-accessed entries until the total
// size is at most the eviction target (80% of the ceiling). Best-effort:
// an entry that cannot be deleted is skipped, never an error.
func (m *CacheManager) EvictOldEntries(ctx context.Context) int {
	metas, err := m.store.ListMetadata(ctx)
	if err != nil {
		logrus.Warnf("[CACHE] Eviction skipped, cannot list entries: %v", err)
		return 0
	}

	var total int64
	for _, meta := range metas {
		total += meta.SizeBytes
	}

	target := int64(float64(m.maxBytes) * domain.EvictTargetFraction)
	if total <= target {
		return 0
	}

	// Oldest access first; ties break on key so a single call is
	// deterministic.
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].LastAccessed.Equal(metas[j].LastAccessed) {
			return metas[i].CacheKey < metas[j].CacheKey
		}
		return metas[i].LastAccessed.Before(metas[j].LastAccessed)
	})

	evicted := 0
	for _, meta := range metas {
		if total <= target {
			break
		}
		if err := m.store.Delete(ctx, meta.CacheKey); err != nil {
			logrus.Warnf("[CACHE] Eviction skip %s: %v", meta.CacheKey, err)
			continue
		}
		total -= meta.SizeBytes
		evicted++
		m.emit(EventEvict, meta.CacheKey, meta.SizeBytes)
	}

	if evicted > 0 {
		logrus.Infof("[CACHE] Evicted %d entries, now at %s of %s ceiling",
			evicted, humanize.Bytes(uint64(total)), humanize.Bytes(uint64(m.maxBytes)))
	}
	return evicted
}

// TotalSize exposes the store's current footprint.
func (m *CacheManager) TotalSize(ctx context.Context) (int64, error) {
	return m.store.TotalSize(ctx)
}

// MaxBytes returns the configured ceiling.
func (m *CacheManager) MaxBytes() int64 { return m.maxBytes }

// ListMetadata exposes stored metadata for the stats surface.
func (m *CacheManager) ListMetadata(ctx context.Context) ([]domain.CacheMetadata, error) {
	return m.store.ListMetadata(ctx)
}

// Clear drops every entry. Storage failures surface to the caller here
// because an explicit clear is a user action, not a cache optimization.
func (m *CacheManager) Clear(ctx context.Context) error {
	return m.store.Clear(ctx)
}

func (m *CacheManager) emit(t EventType, key string, size int64) {
	if m.events != nil {
		m.events.publish(t, key, size)
	}
}

// EstimateSize approximates an entry's storage cost: JSON-ish size of the
// narrative plus raw byte length of attached blobs.
func EstimateSize(c domain.Content) int64 {
	const metaOverhead = 256 // key, timestamps, struct framing
	return int64(len(c.Narrative)) + int64(len(c.Image)) + int64(len(c.Video)) + metaOverhead
}
