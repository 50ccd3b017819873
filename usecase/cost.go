package usecase

import (
	"context"
	"fmt"
	"time"

	domainCost "github.com/chronolens/chronolens/domains/cost"
	"github.com/chronolens/chronolens/engine"
	engineDomain "github.com/chronolens/chronolens/engine/domain"
	pkgError "github.com/chronolens/chronolens/pkg/error"
)

type costService struct {
	eng *engine.Engine
}

func NewCostService(eng *engine.Engine) domainCost.ICostUsecase {
	return &costService{eng: eng}
}

func (s *costService) GetToday(ctx context.Context) (domainCost.DailyCostResponse, error) {
	return s.GetDay(ctx, engineDomain.CostDate(time.Now()))
}

func (s *costService) GetDay(ctx context.Context, date string) (domainCost.DailyCostResponse, error) {
	if _, err := time.Parse(engineDomain.CostDateFormat, date); err != nil {
		return domainCost.DailyCostResponse{}, pkgError.ValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}

	rec, err := s.eng.Costs.GetDailyCost(ctx, date)
	if err != nil {
		return domainCost.DailyCostResponse{}, pkgError.InternalServerError(err.Error())
	}
	if rec == nil {
		// No activity that day, report zeros.
		rec = &engineDomain.DailyCostRecord{Date: date}
	}

	return domainCost.DailyCostResponse{
		Date:       rec.Date,
		TextCost:   rec.TextCost,
		ImageCost:  rec.ImageCost,
		VideoCost:  rec.VideoCost,
		TotalCost:  rec.TotalCost,
		CacheHits:  rec.CacheHits,
		APICalls:   rec.APICalls,
		HitRate:    rec.HitRate(),
		TotalHuman: fmt.Sprintf("$%.4f", rec.TotalCost),
	}, nil
}
