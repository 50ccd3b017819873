// Package engine implements the content caching & orchestration core:
// cache-first retrieval of AI-generated historical narratives keyed by
// (location, era), bounded persistent storage with LRU eviction, per-day
// cost accounting, and graceful degradation when the device is offline or
// uncredentialed.
package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/chronolens/chronolens/engine/domain"
	"github.com/chronolens/chronolens/engine/repository"
	"github.com/chronolens/chronolens/pkg/worker"
)

// Store is the combined persistence surface the engine needs. Both the
// gorm and in-memory repositories satisfy it.
type Store interface {
	domain.ContentStore
	domain.CostStore
}

// Config assembles an Engine. Zero values fall back to the engine's
// defaults (30-day TTL, 50 MB ceiling, standard retry policy, in-memory
// explicit-cache registry).
type Config struct {
	Store           Store
	Generator       domain.Generator
	ContextRegistry domain.ContextCacheStore
	Exporter        SyncExporter
	Online          Reachability
	Credentials     CredentialCheck

	ContentTTL    time.Duration
	MaxCacheBytes int64
	Retry         *RetryPolicy

	PreloadWorkers   int
	PreloadQueueSize int
}

// Engine owns the engine's components as explicit instances: no
// process-wide registries, so multiple independent engines can coexist in
// one process (and in tests).
type Engine struct {
	Cache        *CacheManager
	Orchestrator *Orchestrator
	Costs        *CostTracker
	Advisor      *ExplicitCacheAdvisor
	Events       *EventPublisher

	preload       *worker.Pool
	cancel        context.CancelFunc
	ownedRegistry *repository.MemoryContextCacheStore
}

// New wires an Engine from cfg and starts its preload pool.
func New(cfg Config) *Engine {
	events := NewEventPublisher()
	cache := NewCacheManager(cfg.Store, cfg.ContentTTL, cfg.MaxCacheBytes, events)
	costs := NewCostTracker(cfg.Store)

	registry := cfg.ContextRegistry
	var ownedRegistry *repository.MemoryContextCacheStore
	if registry == nil {
		// In-memory fallback, same as when Valkey is not enabled.
		ownedRegistry = repository.NewMemoryContextCacheStore()
		registry = ownedRegistry
	}
	advisor := NewExplicitCacheAdvisor(registry)

	retry := DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	exporter := cfg.Exporter
	if exporter == nil {
		exporter = NoopExporter{}
	}

	pool := worker.NewPool(cfg.PreloadWorkers, cfg.PreloadQueueSize)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	orch := NewOrchestrator(OrchestratorConfig{
		Cache:       cache,
		Generator:   cfg.Generator,
		Retry:       retry,
		Costs:       costs,
		Advisor:     advisor,
		Events:      events,
		Exporter:    exporter,
		PreloadPool: pool,
		Online:      cfg.Online,
		Credentials: cfg.Credentials,
	})

	logrus.Info("[ENGINE] Content engine initialized")

	return &Engine{
		Cache:         cache,
		Orchestrator:  orch,
		Costs:         costs,
		Advisor:       advisor,
		Events:        events,
		preload:       pool,
		cancel:        cancel,
		ownedRegistry: ownedRegistry,
	}
}

// Close stops background work. Safe to call more than once.
func (e *Engine) Close() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.preload != nil {
		e.preload.Stop()
	}
	if e.ownedRegistry != nil {
		e.ownedRegistry.Close()
	}
}

// PreloadStats exposes the preload pool's metrics for monitoring.
func (e *Engine) PreloadStats() worker.PoolStats {
	return e.preload.GetStats()
}
