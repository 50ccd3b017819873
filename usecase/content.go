package usecase

import (
	"context"
	"fmt"
	"time"

	domainContent "github.com/chronolens/chronolens/domains/content"
	"github.com/chronolens/chronolens/engine"
	engineDomain "github.com/chronolens/chronolens/engine/domain"
	pkgError "github.com/chronolens/chronolens/pkg/error"
	"github.com/chronolens/chronolens/validations"
	"github.com/sirupsen/logrus"
)

// ThumbnailStore is satisfied by repositories that keep a derived preview
// blob next to the image payload.
type ThumbnailStore interface {
	Thumbnail(ctx context.Context, key string) ([]byte, error)
}

type contentService struct {
	eng      *engine.Engine
	thumbs   ThumbnailStore
	basePath string
}

func NewContentService(eng *engine.Engine, thumbs ThumbnailStore, basePath string) domainContent.IContentUsecase {
	return &contentService{eng: eng, thumbs: thumbs, basePath: basePath}
}

func (s *contentService) GetContent(ctx context.Context, request domainContent.ContentRequest) (domainContent.ContentResponse, error) {
	if err := validations.ValidateContentRequest(ctx, request); err != nil {
		return domainContent.ContentResponse{}, err
	}

	loc := engineDomain.Location{Latitude: request.Latitude, Longitude: request.Longitude}
	result, err := s.eng.Orchestrator.GetContent(ctx, loc, request.EraID, engineDomain.RequestOptions{
		ForceRefresh:       request.ForceRefresh,
		SkipImage:          request.SkipImage,
		SkipVideo:          request.SkipVideo,
		UseFallbackOnError: request.AllowFallback,
	})
	if err != nil {
		return domainContent.ContentResponse{}, mapEngineError(err)
	}

	return s.toResponse(result, request.EraID), nil
}

func (s *contentService) Refresh(ctx context.Context, request domainContent.ContentRequest) (domainContent.ContentResponse, error) {
	if err := validations.ValidateContentRequest(ctx, request); err != nil {
		return domainContent.ContentResponse{}, err
	}

	loc := engineDomain.Location{Latitude: request.Latitude, Longitude: request.Longitude}
	result, err := s.eng.Orchestrator.Refresh(ctx, loc, request.EraID, engineDomain.RequestOptions{
		SkipImage:          request.SkipImage,
		SkipVideo:          request.SkipVideo,
		UseFallbackOnError: request.AllowFallback,
	})
	if err != nil {
		return domainContent.ContentResponse{}, mapEngineError(err)
	}

	return s.toResponse(result, request.EraID), nil
}

func (s *contentService) PollVideo(ctx context.Context, lat, lon float64, eraID string) (domainContent.ContentResponse, error) {
	if err := validations.ValidateCoordinates(ctx, lat, lon, eraID); err != nil {
		return domainContent.ContentResponse{}, err
	}

	loc := engineDomain.Location{Latitude: lat, Longitude: lon}
	result, err := s.eng.Orchestrator.PollVideo(ctx, loc, eraID)
	if err != nil {
		return domainContent.ContentResponse{}, mapEngineError(err)
	}

	return s.toResponse(result, eraID), nil
}

func (s *contentService) PreloadAdjacentEras(ctx context.Context, lat, lon float64, eraID string) {
	loc := engineDomain.Location{Latitude: lat, Longitude: lon}
	s.eng.Orchestrator.PreloadAdjacentEras(loc, eraID)
	logrus.Debugf("[CONTENT] Preload scheduled for eras adjacent to %s", eraID)
}

func (s *contentService) GetMedia(ctx context.Context, cacheKey, kind string) ([]byte, string, error) {
	if kind == "thumbnail" {
		if s.thumbs == nil {
			return nil, "", pkgError.NotFoundError("thumbnails are not available on this store")
		}
		data, err := s.thumbs.Thumbnail(ctx, cacheKey)
		if err != nil {
			return nil, "", pkgError.InternalServerError(err.Error())
		}
		if len(data) == 0 {
			return nil, "", pkgError.NotFoundError("entry has no thumbnail")
		}
		return data, "image/jpeg", nil
	}

	entry, err := s.eng.Cache.GetContent(ctx, cacheKey)
	if err != nil {
		return nil, "", pkgError.InternalServerError(err.Error())
	}
	if entry == nil {
		return nil, "", pkgError.NotFoundError(fmt.Sprintf("no cached content for key %s", cacheKey))
	}

	switch kind {
	case "image":
		if !entry.Content.HasImage() {
			return nil, "", pkgError.NotFoundError("entry has no image")
		}
		return entry.Content.Image, "image/png", nil
	case "video":
		if !entry.Content.HasVideo() {
			return nil, "", pkgError.NotFoundError("entry has no video")
		}
		return entry.Content.Video, "video/mp4", nil
	default:
		return nil, "", pkgError.ValidationError(fmt.Sprintf("unknown media kind %q", kind))
	}
}

func (s *contentService) ListEras(ctx context.Context) []domainContent.EraResponse {
	eras := engineDomain.Eras()
	out := make([]domainContent.EraResponse, 0, len(eras))
	for _, e := range eras {
		out = append(out, toEraResponse(e))
	}
	return out
}

func (s *contentService) AdjacentEras(ctx context.Context, eraID string) ([]domainContent.EraResponse, error) {
	if _, ok := engineDomain.EraByID(eraID); !ok {
		return nil, pkgError.NotFoundError(fmt.Sprintf("unknown era %q", eraID))
	}
	var out []domainContent.EraResponse
	for _, e := range engineDomain.AdjacentEras(eraID) {
		out = append(out, toEraResponse(e))
	}
	return out, nil
}

func (s *contentService) toResponse(result *engineDomain.ContentResult, eraID string) domainContent.ContentResponse {
	resp := domainContent.ContentResponse{
		CacheKey:     result.Meta.CacheKey,
		EraID:        eraID,
		Narrative:    result.Content.Narrative,
		HasImage:     result.Content.HasImage(),
		HasVideo:     result.Content.HasVideo(),
		VideoPending: result.Content.VideoPending(),
		FromCache:    result.FromCache,
		Fallback:     result.Fallback,
		SizeBytes:    result.Meta.SizeBytes,
	}
	if !result.Meta.CachedAt.IsZero() {
		resp.CreatedAt = result.Meta.CachedAt.Format(time.RFC3339)
		resp.ExpiresAt = result.Meta.ExpiresAt.Format(time.RFC3339)
	}
	if resp.HasImage {
		resp.ImageURL = fmt.Sprintf("%s/api/content/media/%s/image", s.basePath, result.Meta.CacheKey)
	}
	if resp.HasVideo {
		resp.VideoURL = fmt.Sprintf("%s/api/content/media/%s/video", s.basePath, result.Meta.CacheKey)
	}
	return resp
}

func toEraResponse(e engineDomain.Era) domainContent.EraResponse {
	return domainContent.EraResponse{
		ID:          e.ID,
		Name:        e.Name,
		StartMya:    e.StartMya,
		EndMya:      e.EndMya,
		Description: e.Description,
	}
}

// mapEngineError translates engine error kinds into API errors.
func mapEngineError(err error) error {
	switch engineDomain.KindOf(err) {
	case engineDomain.ErrKindParse:
		return pkgError.ValidationError(err.Error())
	case engineDomain.ErrKindRateLimit, engineDomain.ErrKindNetwork, engineDomain.ErrKindTimeout, engineDomain.ErrKindInvalidKey:
		return pkgError.UpstreamError(err.Error())
	default:
		return pkgError.InternalServerError(err.Error())
	}
}
