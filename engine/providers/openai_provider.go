package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// Default OpenAI models per capability.
const (
	DefaultOpenAITextModel  = "gpt-4o-mini"
	DefaultOpenAIImageModel = "dall-e-3"
)

const (
	openaiTextPerMToken = 0.60
	openaiImagePerCall  = 0.04
)

// OpenAIProvider is the Generator adapter for the OpenAI API. OpenAI has
// no long-running video capability here, so video requests report
// api_error and the orchestrator leaves the slot empty.
type OpenAIProvider struct {
	apiKey     string
	textModel  string
	imageModel string
}

// OpenAIConfig configures the provider.
type OpenAIConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultOpenAITextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultOpenAIImageModel
	}
	return &OpenAIProvider{
		apiKey:     cfg.APIKey,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}
}

// GenerateText produces the narrative for a (location, era) pair.
func (p *OpenAIProvider) GenerateText(ctx context.Context, req domain.GenerationRequest) (*domain.TextResult, error) {
	if p.apiKey == "" {
		return nil, domain.NewError(domain.ErrKindInvalidKey, "openai.text", fmt.Errorf("no API key configured"))
	}

	client := openai.NewClient(
		option.WithAPIKey(p.apiKey),
	)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(narrativeSystemPrompt),
			openai.UserMessage(textPrompt(req)),
		},
	})
	if err != nil {
		return nil, classifyOpenAI("openai.text", err)
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return nil, domain.NewError(domain.ErrKindParse, "openai.text", fmt.Errorf("empty response"))
	}

	cost := float64(completion.Usage.PromptTokens+completion.Usage.CompletionTokens) * openaiTextPerMToken / 1_000_000

	logrus.WithFields(logrus.Fields{
		"model":    p.textModel,
		"era":      req.Era.ID,
		"cost_usd": fmt.Sprintf("$%.6f", cost),
	}).Debug("[OPENAI] Narrative generated")

	return &domain.TextResult{
		Narrative: completion.Choices[0].Message.Content,
		CostUSD:   cost,
	}, nil
}

// GenerateImage renders a still of the scene.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResult, error) {
	if p.apiKey == "" {
		return nil, domain.NewError(domain.ErrKindInvalidKey, "openai.image", fmt.Errorf("no API key configured"))
	}

	client := openai.NewClient(
		option.WithAPIKey(p.apiKey),
	)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:          openai.ImageModel(p.imageModel),
		Prompt:         imagePrompt(req),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		N:              openai.Int(1),
	})
	if err != nil {
		return nil, classifyOpenAI("openai.image", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, domain.NewError(domain.ErrKindParse, "openai.image", fmt.Errorf("no image in response"))
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, domain.NewError(domain.ErrKindParse, "openai.image", fmt.Errorf("invalid image payload: %w", err))
	}

	return &domain.ImageResult{
		Data:    data,
		MIME:    "image/png",
		CostUSD: openaiImagePerCall,
	}, nil
}

// GenerateVideo is unsupported on this provider.
func (p *OpenAIProvider) GenerateVideo(ctx context.Context, req domain.GenerationRequest) (*domain.VideoResult, error) {
	return nil, domain.NewError(domain.ErrKindAPI, "openai.video", fmt.Errorf("video generation not supported"))
}

// PollVideo is unsupported on this provider.
func (p *OpenAIProvider) PollVideo(ctx context.Context, operation string) (*domain.VideoResult, error) {
	return nil, domain.NewError(domain.ErrKindAPI, "openai.video_poll", fmt.Errorf("video generation not supported"))
}

func classifyOpenAI(op string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return domain.NewError(domain.ErrKindRateLimit, op, err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "invalid api key") || strings.Contains(msg, "incorrect api key"):
		return domain.NewError(domain.ErrKindInvalidKey, op, err)
	case strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") || strings.Contains(msg, "503"):
		return domain.NewError(domain.ErrKindNetwork, op, err)
	default:
		return domain.NewError(domain.ErrKindAPI, op, err)
	}
}
