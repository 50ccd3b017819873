package usecase

import (
	"context"
	"time"

	domainCache "github.com/chronolens/chronolens/domains/cache"
	"github.com/chronolens/chronolens/engine"
	engineDomain "github.com/chronolens/chronolens/engine/domain"
	pkgError "github.com/chronolens/chronolens/pkg/error"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

type cacheService struct {
	eng *engine.Engine
}

func NewCacheService(eng *engine.Engine) domainCache.ICacheUsecase {
	return &cacheService{eng: eng}
}

func (s *cacheService) GetStats(ctx context.Context) (domainCache.CacheStats, error) {
	metas, err := s.eng.Cache.ListMetadata(ctx)
	if err != nil {
		return domainCache.CacheStats{}, pkgError.InternalServerError(err.Error())
	}

	var total int64
	perEra := make(map[string]int)
	for _, m := range metas {
		total += m.SizeBytes
		if era := engineDomain.EraFromKey(m.CacheKey); era != "" {
			perEra[era]++
		}
	}

	maxBytes := s.eng.Cache.MaxBytes()
	stats := domainCache.CacheStats{
		EntryCount: len(metas),
		TotalSize:  total,
		HumanSize:  humanize.Bytes(uint64(total)),
		MaxSize:    maxBytes,
		PerEra:     perEra,
	}
	if maxBytes > 0 {
		stats.UsagePercent = float64(total) / float64(maxBytes) * 100
	}
	return stats, nil
}

func (s *cacheService) ListEntries(ctx context.Context) ([]domainCache.EntrySummary, error) {
	metas, err := s.eng.Cache.ListMetadata(ctx)
	if err != nil {
		return nil, pkgError.InternalServerError(err.Error())
	}

	now := time.Now()
	out := make([]domainCache.EntrySummary, 0, len(metas))
	for _, m := range metas {
		out = append(out, domainCache.EntrySummary{
			CacheKey:     m.CacheKey,
			EraID:        engineDomain.EraFromKey(m.CacheKey),
			SizeBytes:    m.SizeBytes,
			HumanSize:    humanize.Bytes(uint64(m.SizeBytes)),
			CreatedAt:    m.CachedAt.Format(time.RFC3339),
			LastAccessed: m.LastAccessed.Format(time.RFC3339),
			ExpiresAt:    m.ExpiresAt.Format(time.RFC3339),
			Expired:      now.After(m.ExpiresAt),
		})
	}
	return out, nil
}

func (s *cacheService) Invalidate(ctx context.Context, cacheKey string) error {
	if cacheKey == "" {
		return pkgError.ValidationError("cache key is required")
	}
	if err := s.eng.Cache.Invalidate(ctx, cacheKey); err != nil {
		return pkgError.InternalServerError(err.Error())
	}
	return nil
}

func (s *cacheService) Clear(ctx context.Context) error {
	if err := s.eng.Cache.Clear(ctx); err != nil {
		return pkgError.InternalServerError(err.Error())
	}
	logrus.Info("[CACHE] All entries cleared")
	return nil
}

func (s *cacheService) RunEviction(ctx context.Context) (int, error) {
	return s.eng.Cache.EvictOldEntries(ctx), nil
}

// StartBackgroundCleanup periodically sweeps expired entries and runs
// size-based eviction.
func (s *cacheService) StartBackgroundCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := s.sweepExpired(ctx)
				evicted := s.eng.Cache.EvictOldEntries(ctx)
				if removed > 0 || evicted > 0 {
					logrus.Infof("[CACHE] Scheduled cleanup removed %d expired, evicted %d entries", removed, evicted)
				}
			}
		}
	}()
}

func (s *cacheService) sweepExpired(ctx context.Context) int {
	metas, err := s.eng.Cache.ListMetadata(ctx)
	if err != nil {
		logrus.Warnf("[CACHE] Cleanup sweep failed to list entries: %v", err)
		return 0
	}

	now := time.Now()
	removed := 0
	for _, m := range metas {
		if now.After(m.ExpiresAt) {
			if err := s.eng.Cache.Invalidate(ctx, m.CacheKey); err == nil {
				removed++
			}
		}
	}
	return removed
}
