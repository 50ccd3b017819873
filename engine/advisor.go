package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// ExplicitCacheAdvisor decides when a context payload is large enough to
// warrant a provider-side cache object and tracks those objects' lifetime
// in a registry. Provider caches live a fixed 24 hours; expiry is lazy
// (re-checked on access, removed from the registry then).
type ExplicitCacheAdvisor struct {
	registry  domain.ContextCacheStore
	minTokens int
	ttl       time.Duration

	now func() time.Time
}

func NewExplicitCacheAdvisor(registry domain.ContextCacheStore) *ExplicitCacheAdvisor {
	return &ExplicitCacheAdvisor{
		registry:  registry,
		minTokens: domain.ExplicitCacheMinTokens,
		ttl:       domain.ExplicitCacheTTL,
		now:       time.Now,
	}
}

// EstimateTokens applies the 4-characters-per-token heuristic, rounding up.
func (a *ExplicitCacheAdvisor) EstimateTokens(payload string) int {
	if payload == "" {
		return 0
	}
	return (len(payload) + 3) / 4
}

// ShouldUseExplicitCache is true iff the estimate reaches the minimum
// cacheable size.
func (a *ExplicitCacheAdvisor) ShouldUseExplicitCache(estimatedTokens int) bool {
	return estimatedTokens >= a.minTokens
}

// GetOrCreate returns an existing non-expired registry entry for key.
// When no usable entry exists and the payload is worth caching, it creates
// a provider-side cache through creator and registers it. Returns nil when
// the payload is below the threshold or the provider cannot cache.
func (a *ExplicitCacheAdvisor) GetOrCreate(ctx context.Context, key, payload string, creator domain.ContextCacheCreator) (*domain.ExplicitCacheEntry, error) {
	now := a.now()

	if existing, err := a.registry.Get(ctx, key); err == nil && existing != nil {
		if !existing.Expired(now) {
			return existing, nil
		}
		// Lazy expiry: stale entries are treated as absent and dropped on
		// access.
		if err := a.registry.Delete(ctx, key); err != nil {
			logrus.Warnf("[EXPLICIT_CACHE] Failed to drop expired entry %s: %v", key, err)
		}
	} else if err != nil {
		logrus.Warnf("[EXPLICIT_CACHE] Registry read failed for %s: %v", key, err)
	}

	tokens := a.EstimateTokens(payload)
	if !a.ShouldUseExplicitCache(tokens) {
		return nil, nil
	}
	if creator == nil {
		return nil, nil
	}

	handle, err := creator.CreateCachedContext(ctx, payload)
	if err != nil {
		return nil, err
	}
	if handle == "" {
		return nil, nil
	}

	entry := &domain.ExplicitCacheEntry{
		CacheHandle: handle,
		Key:         key,
		TokenCount:  tokens,
		CreatedAt:   now,
		ExpiresAt:   now.Add(a.ttl),
	}
	if err := a.registry.Save(ctx, key, entry, a.ttl); err != nil {
		logrus.Warnf("[EXPLICIT_CACHE] Failed to register %s: %v", key, err)
	}

	logrus.WithFields(logrus.Fields{
		"key":    key,
		"tokens": tokens,
		"handle": handle,
	}).Info("[EXPLICIT_CACHE] Created provider-side context cache")

	return entry, nil
}
