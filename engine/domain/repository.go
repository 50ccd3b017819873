package domain

import (
	"context"
	"time"
)

// ContentStore is the durable key/value persistence layer for content
// entries, their blobs, and the per-date cost ledger. Implementations can
// be in-memory (tests, no-DB mode) or gorm-backed.
//
// All mutations are durable before the call returns. Storage failures are
// reported as cache_error; callers treat them as misses, never as fatal.
type ContentStore interface {
	// Get returns the entry under key with blobs loaded, or nil when absent.
	// "Not found" is not an error.
	Get(ctx context.Context, key string) (*Entry, error)

	// Put upserts the entry under key, overwriting any prior one.
	Put(ctx context.Context, key string, entry *Entry) error

	// Delete removes the entry and its blobs. Idempotent.
	Delete(ctx context.Context, key string) error

	// ListMetadata returns metadata for every stored entry without loading
	// blob payloads. Safe on stores with thousands of entries.
	ListMetadata(ctx context.Context) ([]CacheMetadata, error)

	// TotalSize is the sum of SizeBytes across entries plus the blob
	// namespace.
	TotalSize(ctx context.Context) (int64, error)

	// Touch persists a new LastAccessed timestamp for key.
	Touch(ctx context.Context, key string, at time.Time) error

	// Clear drops every entry and blob. Used by the cache-clear surface.
	Clear(ctx context.Context) error
}

// CostStore is the per-date cost ledger surface of the store.
type CostStore interface {
	// GetDailyCost returns the record for date (YYYY-MM-DD) or nil when no
	// activity was recorded.
	GetDailyCost(ctx context.Context, date string) (*DailyCostRecord, error)

	// PutDailyCost upserts a day's record.
	PutDailyCost(ctx context.Context, rec *DailyCostRecord) error
}

// ContextCacheStore keeps references to provider-side explicit caches.
// Implementations can be in-memory (default) or distributed (Valkey).
type ContextCacheStore interface {
	// Get retrieves an entry by key. Returns nil if not found. Expiry is
	// checked by the caller (lazy expiry).
	Get(ctx context.Context, key string) (*ExplicitCacheEntry, error)

	// Save stores an entry under key. The TTL should match the provider's
	// cache TTL.
	Save(ctx context.Context, key string, entry *ExplicitCacheEntry, ttl time.Duration) error

	// Delete removes an entry.
	Delete(ctx context.Context, key string) error

	// Cleanup removes all expired entries.
	Cleanup(ctx context.Context) error
}
