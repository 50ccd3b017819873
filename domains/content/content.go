package content

import (
	"context"
)

type ContentRequest struct {
	Latitude      float64 `json:"latitude" query:"latitude"`
	Longitude     float64 `json:"longitude" query:"longitude"`
	EraID         string  `json:"era_id" query:"era_id"`
	ForceRefresh  bool    `json:"force_refresh" query:"force_refresh"`
	SkipImage     bool    `json:"skip_image" query:"skip_image"`
	SkipVideo     bool    `json:"skip_video" query:"skip_video"`
	AllowFallback bool    `json:"allow_fallback" query:"allow_fallback"`
}

type ContentResponse struct {
	CacheKey     string `json:"cache_key"`
	EraID        string `json:"era_id"`
	Narrative    string `json:"narrative"`
	HasImage     bool   `json:"has_image"`
	HasVideo     bool   `json:"has_video"`
	VideoPending bool   `json:"video_pending"`
	FromCache    bool   `json:"from_cache"`
	Fallback     bool   `json:"fallback"`
	SizeBytes    int64  `json:"size_bytes"`
	CreatedAt    string `json:"created_at"`
	ExpiresAt    string `json:"expires_at"`
	ImageURL     string `json:"image_url,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
}

type EraResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StartMya    float64 `json:"start_mya"`
	EndMya      float64 `json:"end_mya"`
	Description string  `json:"description"`
}

type IContentUsecase interface {
	GetContent(ctx context.Context, request ContentRequest) (ContentResponse, error)
	Refresh(ctx context.Context, request ContentRequest) (ContentResponse, error)
	PollVideo(ctx context.Context, lat, lon float64, eraID string) (ContentResponse, error)
	PreloadAdjacentEras(ctx context.Context, lat, lon float64, eraID string)
	GetMedia(ctx context.Context, cacheKey, kind string) ([]byte, string, error)
	ListEras(ctx context.Context) []EraResponse
	AdjacentEras(ctx context.Context, eraID string) ([]EraResponse, error)
}
