package cache

import "context"

type CacheStats struct {
	EntryCount   int            `json:"entry_count"`
	TotalSize    int64          `json:"total_size"`
	HumanSize    string         `json:"human_size"`
	MaxSize      int64          `json:"max_size"`
	UsagePercent float64        `json:"usage_percent"`
	PerEra       map[string]int `json:"per_era"`
}

type EntrySummary struct {
	CacheKey     string `json:"cache_key"`
	EraID        string `json:"era_id"`
	SizeBytes    int64  `json:"size_bytes"`
	HumanSize    string `json:"human_size"`
	CreatedAt    string `json:"created_at"`
	LastAccessed string `json:"last_accessed"`
	ExpiresAt    string `json:"expires_at"`
	Expired      bool   `json:"expired"`
}

type ICacheUsecase interface {
	GetStats(ctx context.Context) (CacheStats, error)
	ListEntries(ctx context.Context) ([]EntrySummary, error)
	Invalidate(ctx context.Context, cacheKey string) error
	Clear(ctx context.Context) error
	RunEviction(ctx context.Context) (int, error)
	StartBackgroundCleanup(ctx context.Context)
}
