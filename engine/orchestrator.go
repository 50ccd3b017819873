package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/chronolens/chronolens/engine/domain"
	"github.com/chronolens/chronolens/pkg/worker"
)

// Reachability reports whether the process currently has network access.
// Injected so orchestration can be tested without a real probe.
type Reachability func() bool

// CredentialCheck reports whether a valid generation API credential is
// configured.
type CredentialCheck func() bool

// Orchestrator implements the cache-first retrieval flow: consult the
// cache, generate on miss when online and credentialed, merge partial
// results, persist the composite, and degrade to deterministic fallback
// content everywhere else.
//
// Concurrent requests for the same key are not deduplicated: two
// simultaneous misses may both generate and both write (last-write-wins).
// Callers needing single-flight behavior must hold their own in-flight
// map keyed by cache key.
type Orchestrator struct {
	cache    *CacheManager
	gen      domain.Generator
	retry    RetryPolicy
	costs    *CostTracker
	advisor  *ExplicitCacheAdvisor
	events   *EventPublisher
	exporter SyncExporter
	preload  *worker.Pool

	online      Reachability
	credentials CredentialCheck

	pollInterval time.Duration
	pollAttempts int
}

// OrchestratorConfig carries the orchestrator's collaborators. Online and
// Credentials default to "always true" when nil.
type OrchestratorConfig struct {
	Cache       *CacheManager
	Generator   domain.Generator
	Retry       RetryPolicy
	Costs       *CostTracker
	Advisor     *ExplicitCacheAdvisor
	Events      *EventPublisher
	Exporter    SyncExporter
	PreloadPool *worker.Pool
	Online      Reachability
	Credentials CredentialCheck
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	online := cfg.Online
	if online == nil {
		online = func() bool { return true }
	}
	creds := cfg.Credentials
	if creds == nil {
		creds = func() bool { return true }
	}
	return &Orchestrator{
		cache:        cfg.Cache,
		gen:          cfg.Generator,
		retry:        cfg.Retry,
		costs:        cfg.Costs,
		advisor:      cfg.Advisor,
		events:       cfg.Events,
		exporter:     cfg.Exporter,
		preload:      cfg.PreloadPool,
		online:       online,
		credentials:  creds,
		pollInterval: domain.VideoPollInterval,
		pollAttempts: domain.VideoPollMaxAttempts,
	}
}

// GetContent resolves content for a (location, era) pair. Evaluated in
// fixed order; each step is terminal when it applies:
//
//  1. offline      -> cached if valid, else static fallback
//  2. no creds     -> same as offline
//  3. cache hit    -> return it (unless ForceRefresh)
//  4. generate     -> text mandatory, image/video optional, per-slot fallback
//  5. persist      -> composite written through the cache manager
func (o *Orchestrator) GetContent(ctx context.Context, loc domain.Location, eraID string, opts domain.RequestOptions) (*domain.ContentResult, error) {
	era, ok := domain.EraByID(eraID)
	if !ok {
		return nil, domain.NewError(domain.ErrKindParse, "orchestrator.get", fmt.Errorf("unknown era %q", eraID))
	}
	key := domain.CacheKey(loc, era.ID)

	if !o.online() {
		logrus.Debugf("[ORCHESTRATOR] Offline, degrading for %s", key)
		return o.degrade(ctx, key, loc, era)
	}
	if !o.credentials() {
		logrus.Debugf("[ORCHESTRATOR] No API credential, degrading for %s", key)
		return o.degrade(ctx, key, loc, era)
	}

	if !opts.ForceRefresh {
		if entry, _ := o.cache.GetContent(ctx, key); entry != nil {
			o.costs.LogCacheHit(ctx)
			return &domain.ContentResult{
				Content:   entry.Content,
				Meta:      entry.Meta,
				FromCache: true,
			}, nil
		}
	}

	return o.generate(ctx, key, loc, era, opts)
}

// Refresh invalidates the existing entry before regenerating, so a refresh
// never silently returns stale content. Trade-off, kept intentionally: if
// generation then fails, the previously cached copy is already gone and
// the caller gets fallback content instead of the old entry.
func (o *Orchestrator) Refresh(ctx context.Context, loc domain.Location, eraID string, opts domain.RequestOptions) (*domain.ContentResult, error) {
	era, ok := domain.EraByID(eraID)
	if !ok {
		return nil, domain.NewError(domain.ErrKindParse, "orchestrator.refresh", fmt.Errorf("unknown era %q", eraID))
	}
	key := domain.CacheKey(loc, era.ID)

	if err := o.cache.Invalidate(ctx, key); err != nil {
		logrus.Warnf("[ORCHESTRATOR] Invalidate before refresh failed for %s: %v", key, err)
	}

	opts.ForceRefresh = true
	return o.GetContent(ctx, loc, eraID, opts)
}

// PollVideo resumes a stored pending video operation for the key. When the
// provider reports completion, the blob is attached to the existing entry
// without touching the narrative or image. Still-pending polls return the
// entry unchanged.
func (o *Orchestrator) PollVideo(ctx context.Context, loc domain.Location, eraID string) (*domain.ContentResult, error) {
	key := domain.CacheKey(loc, eraID)

	entry, _ := o.cache.GetContent(ctx, key)
	if entry == nil {
		return nil, domain.NewError(domain.ErrKindParse, "orchestrator.poll", fmt.Errorf("no cached entry for %s", key))
	}
	if !entry.Content.VideoPending() {
		return &domain.ContentResult{Content: entry.Content, Meta: entry.Meta, FromCache: true}, nil
	}

	res, err := o.gen.PollVideo(ctx, entry.Content.VideoOperation)
	if err != nil {
		return nil, err
	}
	if res.Pending {
		return &domain.ContentResult{Content: entry.Content, Meta: entry.Meta, FromCache: true}, nil
	}

	entry.Content.Video = res.Data
	entry.Content.VideoOperation = ""
	o.costs.LogAPICost(ctx, 0, 0, res.CostUSD)

	stored, err := o.cache.StoreContent(ctx, key, entry.Content)
	if err != nil {
		// Video arrived but could not be persisted; still serve it.
		logrus.Warnf("[ORCHESTRATOR] Failed to persist completed video for %s: %v", key, err)
		return &domain.ContentResult{Content: entry.Content, Meta: entry.Meta}, nil
	}
	exportAsync(o.exporter, stored.Meta)

	return &domain.ContentResult{Content: stored.Content, Meta: stored.Meta}, nil
}

// AwaitVideo polls a pending operation until completion, bounded at the
// configured attempt budget (~5 minutes). Exceeding it surfaces
// generation_timeout; early cancellation via ctx leaves the stored handle
// valid for later resumption.
func (o *Orchestrator) AwaitVideo(ctx context.Context, loc domain.Location, eraID string) (*domain.ContentResult, error) {
	for attempt := 0; attempt < o.pollAttempts; attempt++ {
		res, err := o.PollVideo(ctx, loc, eraID)
		if err != nil {
			return nil, err
		}
		if !res.Content.VideoPending() {
			return res, nil
		}

		timer := time.NewTimer(o.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, domain.NewError(domain.ErrKindTimeout, "orchestrator.await_video",
		fmt.Errorf("video not ready after %d polls", o.pollAttempts))
}

// PreloadAdjacentEras warms the cache for the chronological neighbors of
// eraID. Fire-and-forget: jobs run on the preload pool, individual
// failures are logged, never propagated, and video is always skipped to
// control cost.
func (o *Orchestrator) PreloadAdjacentEras(loc domain.Location, eraID string) {
	if o.preload == nil {
		return
	}
	for _, era := range domain.AdjacentEras(eraID) {
		era := era
		key := domain.CacheKey(loc, era.ID)
		o.preload.Dispatch(worker.Job{
			Key: key,
			Handler: func(ctx context.Context) error {
				_, err := o.GetContent(ctx, loc, era.ID, domain.RequestOptions{
					SkipVideo:          true,
					UseFallbackOnError: true,
				})
				if err != nil {
					logrus.Debugf("[PRELOAD] %s failed: %v", key, err)
				}
				return nil
			},
		})
	}
}

// degrade serves cached content if any survives, else static fallback.
// Generation is never attempted here.
func (o *Orchestrator) degrade(ctx context.Context, key string, loc domain.Location, era domain.Era) (*domain.ContentResult, error) {
	if entry, _ := o.cache.GetContent(ctx, key); entry != nil {
		o.costs.LogCacheHit(ctx)
		return &domain.ContentResult{Content: entry.Content, Meta: entry.Meta, FromCache: true}, nil
	}
	return &domain.ContentResult{
		Content:  FallbackContent(loc, era),
		Fallback: true,
	}, nil
}

func (o *Orchestrator) generate(ctx context.Context, key string, loc domain.Location, era domain.Era, opts domain.RequestOptions) (*domain.ContentResult, error) {
	req := domain.GenerationRequest{Location: loc, Era: era, Context: generationContext(loc, era)}

	// Large contexts get promoted to a provider-side cache so repeated
	// generations for nearby keys stop resending the same payload.
	if o.advisor != nil {
		if creator, ok := o.gen.(domain.ContextCacheCreator); ok {
			if entry, err := o.advisor.GetOrCreate(ctx, key, req.Context, creator); err == nil && entry != nil {
				req.CachedContextHandle = entry.CacheHandle
			}
		}
	}

	var content domain.Content
	var fellBack bool
	var textCost, imageCost, videoCost float64

	// Text is mandatory.
	var text *domain.TextResult
	err := o.retry.Do(ctx, func(ctx context.Context) error {
		var genErr error
		text, genErr = o.gen.GenerateText(ctx, req)
		return genErr
	})
	if err != nil {
		if !opts.UseFallbackOnError {
			return nil, err
		}
		logrus.Warnf("[ORCHESTRATOR] Narrative generation failed for %s, using fallback: %v", key, err)
		content.Narrative = FallbackNarrative(loc, era)
		fellBack = true
	} else {
		content.Narrative = text.Narrative
		textCost = text.CostUSD
	}

	// Image is optional and independently skippable. A failed image never
	// discards an already-succeeded narrative.
	if !opts.SkipImage {
		var img *domain.ImageResult
		err := o.retry.Do(ctx, func(ctx context.Context) error {
			var genErr error
			img, genErr = o.gen.GenerateImage(ctx, req)
			return genErr
		})
		switch {
		case err == nil:
			content.Image = img.Data
			imageCost = img.CostUSD
		case opts.UseFallbackOnError:
			logrus.Warnf("[ORCHESTRATOR] Image generation failed for %s, using placeholder: %v", key, err)
			content.Image = PlaceholderImage(era)
			fellBack = true
		default:
			return nil, err
		}
	}

	if !opts.SkipVideo {
		var vid *domain.VideoResult
		err := o.retry.Do(ctx, func(ctx context.Context) error {
			var genErr error
			vid, genErr = o.gen.GenerateVideo(ctx, req)
			return genErr
		})
		switch {
		case err == nil:
			if vid.Pending {
				content.VideoOperation = vid.Operation
			} else {
				content.Video = vid.Data
			}
			videoCost = vid.CostUSD
		case opts.UseFallbackOnError:
			// No deterministic video placeholder exists; the slot stays
			// empty, which is a normal value.
			logrus.Warnf("[ORCHESTRATOR] Video generation failed for %s, slot left empty: %v", key, err)
			fellBack = true
		default:
			return nil, err
		}
	}

	// Every generation pass counts as one external call, even when the
	// provider reports zero cost or every slot fell back.
	o.costs.LogAPICost(ctx, textCost, imageCost, videoCost)

	stored, err := o.cache.StoreContent(ctx, key, content)
	if err != nil {
		// Persisting is an optimization; the generated content still goes
		// back to the caller.
		logrus.Warnf("[ORCHESTRATOR] Failed to cache generated content for %s: %v", key, err)
		return &domain.ContentResult{Content: content, Fallback: fellBack}, nil
	}
	exportAsync(o.exporter, stored.Meta)

	return &domain.ContentResult{
		Content:  stored.Content,
		Meta:     stored.Meta,
		Fallback: fellBack,
	}, nil
}

// generationContext serializes the stable prompt context for a pair. It
// also feeds the explicit-cache token estimate, so it must be
// deterministic for a given (location, era).
func generationContext(loc domain.Location, era domain.Era) string {
	return fmt.Sprintf(
		"location: %.5f,%.5f\nera: %s (%s)\nspan_mya: %.1f-%.1f\ndepth_m: %.0f-%.0f\nsetting: %s",
		domain.RoundCoord(loc.Latitude), domain.RoundCoord(loc.Longitude),
		era.ID, era.Name, era.StartMya, era.EndMya, era.DepthMinM, era.DepthMaxM, era.Description,
	)
}
