package cost

import "context"

type DailyCostResponse struct {
	Date       string  `json:"date"`
	TextCost   float64 `json:"text_cost"`
	ImageCost  float64 `json:"image_cost"`
	VideoCost  float64 `json:"video_cost"`
	TotalCost  float64 `json:"total_cost"`
	CacheHits  int64   `json:"cache_hits"`
	APICalls   int64   `json:"api_calls"`
	HitRate    float64 `json:"hit_rate"`
	TotalHuman string  `json:"total_human"`
}

type ICostUsecase interface {
	GetToday(ctx context.Context) (DailyCostResponse, error)
	GetDay(ctx context.Context, date string) (DailyCostResponse, error)
}
