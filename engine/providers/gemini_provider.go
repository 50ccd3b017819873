package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// Default Gemini models per capability.
const (
	DefaultGeminiTextModel  = "gemini-2.5-flash"
	DefaultGeminiImageModel = "imagen-3.0-generate-002"
	DefaultGeminiVideoModel = "veo-2.0-generate-001"
)

// Flat pricing estimates used for the cost ledger (USD).
const (
	geminiTextPerMToken = 0.30
	geminiImagePerCall  = 0.04
	geminiVideoPerCall  = 0.50
)

// GeminiProvider is the Generator adapter for the Google Gemini API.
type GeminiProvider struct {
	apiKey     string
	textModel  string
	imageModel string
	videoModel string
}

// GeminiConfig configures the provider. Empty model names fall back to
// the defaults above.
type GeminiConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
	VideoModel string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultGeminiTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultGeminiImageModel
	}
	if cfg.VideoModel == "" {
		cfg.VideoModel = DefaultGeminiVideoModel
	}
	return &GeminiProvider{
		apiKey:     cfg.APIKey,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		videoModel: cfg.VideoModel,
	}
}

const narrativeSystemPrompt = `You are a historical narrator for an augmented-reality time travel app.
Given a location and a geological era, write an immersive second-person narrative
(150-250 words) describing what the user would see, hear and feel standing at
exactly that spot during that era. Ground the scene in the era's actual flora,
fauna and climate. Never mention the app, coordinates, or the present day.`

func (p *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	if p.apiKey == "" {
		return nil, domain.NewError(domain.ErrKindInvalidKey, "gemini", fmt.Errorf("no API key configured"))
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, classifyGemini("gemini.client", err)
	}
	return client, nil
}

// GenerateText produces the narrative for a (location, era) pair.
func (p *GeminiProvider) GenerateText(ctx context.Context, req domain.GenerationRequest) (*domain.TextResult, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{}
	if req.CachedContextHandle != "" {
		// Reusing a provider-side cache: the system instruction lives in it.
		cfg.CachedContent = req.CachedContextHandle
	} else {
		cfg.SystemInstruction = genai.NewContentFromText(narrativeSystemPrompt, "")
	}

	prompt := textPrompt(req)
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}

	result, err := client.Models.GenerateContent(ctx, p.textModel, contents, cfg)
	if err != nil {
		return nil, classifyGemini("gemini.text", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, domain.NewError(domain.ErrKindParse, "gemini.text", fmt.Errorf("empty response"))
	}

	var narrative string
	for _, part := range result.Candidates[0].Content.Parts {
		narrative += part.Text
	}
	if strings.TrimSpace(narrative) == "" {
		return nil, domain.NewError(domain.ErrKindParse, "gemini.text", fmt.Errorf("no text in response"))
	}

	cost := p.textCost(result)
	logrus.WithFields(logrus.Fields{
		"model":    p.textModel,
		"era":      req.Era.ID,
		"cost_usd": fmt.Sprintf("$%.6f", cost),
	}).Debug("[GEMINI] Narrative generated")

	return &domain.TextResult{Narrative: narrative, CostUSD: cost}, nil
}

// GenerateImage renders a still of the scene.
func (p *GeminiProvider) GenerateImage(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResult, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	result, err := client.Models.GenerateImages(ctx, p.imageModel, imagePrompt(req), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, classifyGemini("gemini.image", err)
	}
	if result == nil || len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil {
		return nil, domain.NewError(domain.ErrKindParse, "gemini.image", fmt.Errorf("no image in response"))
	}

	img := result.GeneratedImages[0].Image
	return &domain.ImageResult{
		Data:    img.ImageBytes,
		MIME:    img.MIMEType,
		CostUSD: geminiImagePerCall,
	}, nil
}

// GenerateVideo starts a long-running video render. The returned result is
// pending with an operation handle unless the provider finished
// immediately.
func (p *GeminiProvider) GenerateVideo(ctx context.Context, req domain.GenerationRequest) (*domain.VideoResult, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	op, err := client.Models.GenerateVideos(ctx, p.videoModel, imagePrompt(req), nil, nil)
	if err != nil {
		return nil, classifyGemini("gemini.video", err)
	}

	if op.Done {
		return videoFromOperation(op)
	}

	logrus.WithFields(logrus.Fields{
		"model":     p.videoModel,
		"era":       req.Era.ID,
		"operation": op.Name,
	}).Debug("[GEMINI] Video render started")

	return &domain.VideoResult{
		Operation: op.Name,
		Pending:   true,
		CostUSD:   geminiVideoPerCall,
	}, nil
}

// PollVideo checks a pending video operation.
func (p *GeminiProvider) PollVideo(ctx context.Context, operation string) (*domain.VideoResult, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	op, err := client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: operation}, nil)
	if err != nil {
		return nil, classifyGemini("gemini.video_poll", err)
	}
	if !op.Done {
		return &domain.VideoResult{Operation: operation, Pending: true}, nil
	}
	return videoFromOperation(op)
}

// CreateCachedContext uploads the payload as a provider-side cached
// content object and returns its handle. Implements
// domain.ContextCacheCreator.
func (p *GeminiProvider) CreateCachedContext(ctx context.Context, payload string) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	cache, err := client.Caches.Create(ctx, p.textModel, &genai.CreateCachedContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: narrativeSystemPrompt + "\n\n" + payload}},
		},
		TTL: domain.ExplicitCacheTTL,
	})
	if err != nil {
		// Google rejects contexts below its own model-specific minimum;
		// just skip explicit caching then.
		if strings.Contains(err.Error(), "too small") {
			logrus.Debug("[GEMINI] Context below provider cache minimum, skipping")
			return "", nil
		}
		return "", classifyGemini("gemini.cache_create", err)
	}
	return cache.Name, nil
}

func videoFromOperation(op *genai.GenerateVideosOperation) (*domain.VideoResult, error) {
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, domain.NewError(domain.ErrKindParse, "gemini.video", fmt.Errorf("operation done but no video"))
	}
	vid := op.Response.GeneratedVideos[0].Video
	return &domain.VideoResult{
		Data:    vid.VideoBytes,
		MIME:    vid.MIMEType,
		CostUSD: geminiVideoPerCall,
	}, nil
}

func (p *GeminiProvider) textCost(result *genai.GenerateContentResponse) float64 {
	if result.UsageMetadata == nil {
		return 0
	}
	total := int(result.UsageMetadata.PromptTokenCount) + int(result.UsageMetadata.CandidatesTokenCount)
	return float64(total) * geminiTextPerMToken / 1_000_000
}

func textPrompt(req domain.GenerationRequest) string {
	return fmt.Sprintf("Narrate this place during the %s.\n\n%s", req.Era.Name, req.Context)
}

func imagePrompt(req domain.GenerationRequest) string {
	return fmt.Sprintf(
		"Photorealistic first-person view of a landscape during the %s period: %s. Natural lighting, no text, no people.",
		req.Era.Name, req.Era.Description,
	)
}

// classifyGemini maps SDK errors onto the engine taxonomy. The SDK does
// not expose typed errors for these cases, so this matches on status text
// the way the upstream examples do.
func classifyGemini(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "rate") || strings.Contains(strings.ToLower(msg), "quota"):
		return domain.NewError(domain.ErrKindRateLimit, op, err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(strings.ToLower(msg), "api key"):
		return domain.NewError(domain.ErrKindInvalidKey, op, err)
	case strings.Contains(msg, "503") || strings.Contains(strings.ToLower(msg), "connection") || strings.Contains(strings.ToLower(msg), "timeout") || strings.Contains(strings.ToLower(msg), "unavailable"):
		return domain.NewError(domain.ErrKindNetwork, op, err)
	default:
		return domain.NewError(domain.ErrKindAPI, op, err)
	}
}
