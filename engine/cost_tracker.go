package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// CostTracker accumulates generation spend and cache-hit counts per
// calendar day. It records, never blocks: a ledger failure is logged and
// swallowed so accounting can never break a content request.
//
// The underlying store offers no atomic increment, so every
// read-modify-write is serialized through a mutex to avoid lost updates
// under concurrent logging.
type CostTracker struct {
	store domain.CostStore
	mu    sync.Mutex

	now func() time.Time
}

func NewCostTracker(store domain.CostStore) *CostTracker {
	return &CostTracker{store: store, now: time.Now}
}

// LogAPICost adds one external call's component costs to today's record.
func (t *CostTracker) LogAPICost(ctx context.Context, textCost, imageCost, videoCost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.todayLocked(ctx)
	if err != nil {
		logrus.Warnf("[COST] Ledger read failed, dropping cost record: %v", err)
		return
	}

	rec.TextCost += textCost
	rec.ImageCost += imageCost
	rec.VideoCost += videoCost
	rec.TotalCost = rec.TextCost + rec.ImageCost + rec.VideoCost
	rec.APICalls++

	if err := t.store.PutDailyCost(ctx, rec); err != nil {
		logrus.Warnf("[COST] Ledger write failed: %v", err)
	}
}

// LogCacheHit counts one served-from-cache request for today.
func (t *CostTracker) LogCacheHit(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.todayLocked(ctx)
	if err != nil {
		logrus.Warnf("[COST] Ledger read failed, dropping hit record: %v", err)
		return
	}

	rec.CacheHits++

	if err := t.store.PutDailyCost(ctx, rec); err != nil {
		logrus.Warnf("[COST] Ledger write failed: %v", err)
	}
}

// GetDailyCost returns the record for date (YYYY-MM-DD), or nil when that
// day saw no activity. An empty date means today.
func (t *CostTracker) GetDailyCost(ctx context.Context, date string) (*domain.DailyCostRecord, error) {
	if date == "" {
		date = domain.CostDate(t.now())
	}
	return t.store.GetDailyCost(ctx, date)
}

// todayLocked loads or lazily creates today's record. Caller holds t.mu.
func (t *CostTracker) todayLocked(ctx context.Context) (*domain.DailyCostRecord, error) {
	date := domain.CostDate(t.now())
	rec, err := t.store.GetDailyCost(ctx, date)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &domain.DailyCostRecord{Date: date}
	}
	return rec, nil
}
