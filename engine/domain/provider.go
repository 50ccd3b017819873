package domain

import "context"

// GenerationRequest carries everything a provider needs to produce
// content for one (location, era) pair.
type GenerationRequest struct {
	Location Location
	Era      Era
	// Context is extra serialized context (place name, prior narratives)
	// appended to the prompt. Large contexts may be promoted to a
	// provider-side explicit cache.
	Context string
	// CachedContextHandle, when set, references a provider-side explicit
	// cache to reuse instead of resending Context.
	CachedContextHandle string
}

// TextResult is a finished narrative generation.
type TextResult struct {
	Narrative string
	CostUSD   float64
}

// ImageResult is a finished image generation.
type ImageResult struct {
	Data    []byte
	MIME    string
	CostUSD float64
}

// VideoResult is the outcome of a video generation or poll. Video
// generation is long-running: Pending with a non-empty Operation means
// the caller should poll later; Data is only set once Pending is false.
type VideoResult struct {
	Data      []byte
	MIME      string
	Operation string
	Pending   bool
	CostUSD   float64
}

// Generator is the opaque external generation capability. Every call
// returns content or a classified *EngineError; the engine never inspects
// vendor request/response schemas.
type Generator interface {
	GenerateText(ctx context.Context, req GenerationRequest) (*TextResult, error)
	GenerateImage(ctx context.Context, req GenerationRequest) (*ImageResult, error)
	GenerateVideo(ctx context.Context, req GenerationRequest) (*VideoResult, error)

	// PollVideo checks a pending operation handle. Returns Pending=true
	// while the provider is still rendering.
	PollVideo(ctx context.Context, operation string) (*VideoResult, error)
}

// ContextCacheCreator is implemented by providers that support explicit
// (provider-side) context caching.
type ContextCacheCreator interface {
	// CreateCachedContext uploads payload as a provider-side cache object
	// and returns its handle.
	CreateCachedContext(ctx context.Context, payload string) (string, error)
}
