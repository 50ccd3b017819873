package domain

import (
	"time"
)

// Location is a geographic point as reported by the device.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Content is the composite generated payload cached under one key.
// Image and Video are independently nullable: a narrative may be served
// while its media slots are still empty (progressive content).
type Content struct {
	Narrative string `json:"narrative"`
	Image     []byte `json:"image,omitempty"`
	Video     []byte `json:"video,omitempty"`
	// VideoOperation holds a provider operation handle while video
	// generation is still running. Pollable via Generator.PollVideo.
	VideoOperation string `json:"video_operation,omitempty"`
}

// HasImage reports whether the image slot is populated.
func (c Content) HasImage() bool { return len(c.Image) > 0 }

// HasVideo reports whether the video slot is populated.
func (c Content) HasVideo() bool { return len(c.Video) > 0 }

// VideoPending reports whether a video generation is still in flight.
func (c Content) VideoPending() bool { return c.VideoOperation != "" && len(c.Video) == 0 }

// CacheMetadata describes the lifecycle state of a stored entry.
// ExpiresAt is always after CachedAt; LastAccessed never decreases.
type CacheMetadata struct {
	CacheKey     string    `json:"cache_key"`
	CachedAt     time.Time `json:"cached_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastAccessed time.Time `json:"last_accessed"`
	SizeBytes    int64     `json:"size_bytes"`
	Version      int       `json:"version"`
}

// Entry pairs cached content with its metadata. Both are created together
// at generation time and replaced together on refresh.
type Entry struct {
	Content Content       `json:"content"`
	Meta    CacheMetadata `json:"meta"`
}

// RequestOptions tunes a single content-retrieval call.
type RequestOptions struct {
	// ForceRefresh bypasses a valid cache entry and regenerates.
	ForceRefresh bool `json:"force_refresh"`
	// SkipImage omits image generation.
	SkipImage bool `json:"skip_image"`
	// SkipVideo omits video generation.
	SkipVideo bool `json:"skip_video"`
	// UseFallbackOnError substitutes deterministic placeholder content
	// per failed slot instead of surfacing the error.
	UseFallbackOnError bool `json:"use_fallback_on_error"`
}

// ContentResult is what the orchestrator hands back to callers.
type ContentResult struct {
	Content   Content       `json:"content"`
	Meta      CacheMetadata `json:"meta"`
	FromCache bool          `json:"from_cache"`
	// Fallback marks statically derived content served because the
	// device was offline, uncredentialed, or generation failed.
	Fallback bool `json:"fallback"`
}

// DailyCostRecord accumulates generation spend for one calendar day.
// TotalCost is always the sum of the three components.
type DailyCostRecord struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	TextCost  float64 `json:"text_cost"`
	ImageCost float64 `json:"image_cost"`
	VideoCost float64 `json:"video_cost"`
	TotalCost float64 `json:"total_cost"`
	APICalls  int64   `json:"api_calls"`
	CacheHits int64   `json:"cache_hits"`
}

// HitRate derives the cache-hit rate for the day. Defined as 0 when no
// activity was recorded.
func (r DailyCostRecord) HitRate() float64 {
	denom := r.APICalls + r.CacheHits
	if denom == 0 {
		return 0
	}
	return float64(r.CacheHits) / float64(denom)
}

// CostDateFormat is the ledger's canonical date layout.
const CostDateFormat = "2006-01-02"

// CostDate formats t as a ledger date (UTC).
func CostDate(t time.Time) string {
	return t.UTC().Format(CostDateFormat)
}

// ExplicitCacheEntry references a provider-side long-lived context cache
// object (distinct from the engine's own local cache).
type ExplicitCacheEntry struct {
	// CacheHandle is the provider-assigned identifier.
	CacheHandle string    `json:"cache_handle"`
	Key         string    `json:"key"`
	TokenCount  int       `json:"token_count"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the entry must be treated as absent.
// Expiry is lazy: no background sweep is guaranteed.
func (e ExplicitCacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

const (
	// ContentTTL is how long a cached entry stays valid.
	ContentTTL = 30 * 24 * time.Hour

	// ExplicitCacheTTL is the fixed lifetime of provider-side context caches.
	ExplicitCacheTTL = 24 * time.Hour

	// ExplicitCacheMinTokens is the smallest context worth a provider-side
	// cache object.
	ExplicitCacheMinTokens = 512

	// DefaultMaxCacheBytes is the total storage ceiling (content + blobs).
	DefaultMaxCacheBytes = 50 * 1024 * 1024

	// EvictTargetFraction is the post-eviction size target relative to the
	// ceiling. The 20% buffer prevents immediate re-eviction on the next
	// write.
	EvictTargetFraction = 0.8

	// VideoPollMaxAttempts bounds the long-running video poll loop.
	VideoPollMaxAttempts = 30

	// VideoPollInterval is the delay between video status polls.
	VideoPollInterval = 10 * time.Second
)
