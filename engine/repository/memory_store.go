package repository

import (
	"context"
	"sync"
	"time"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// MemoryContentStore is an in-memory implementation of ContentStore and
// CostStore. Used for tests and for running without a database.
type MemoryContentStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry
	costs   map[string]*domain.DailyCostRecord
}

// NewMemoryContentStore creates an empty in-memory store.
func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{
		entries: make(map[string]*domain.Entry),
		costs:   make(map[string]*domain.DailyCostRecord),
	}
}

func (s *MemoryContentStore) Get(ctx context.Context, key string) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	cp := cloneEntry(entry)
	return &cp, nil
}

func (s *MemoryContentStore) Put(ctx context.Context, key string, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneEntry(entry)
	s.entries[key] = &cp
	return nil
}

func (s *MemoryContentStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryContentStore) ListMetadata(ctx context.Context) ([]domain.CacheMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CacheMetadata, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Meta)
	}
	return out, nil
}

func (s *MemoryContentStore) TotalSize(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, e := range s.entries {
		total += e.Meta.SizeBytes
	}
	return total, nil
}

func (s *MemoryContentStore) Touch(ctx context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	// Monotonic: never move LastAccessed backwards.
	if at.After(entry.Meta.LastAccessed) {
		entry.Meta.LastAccessed = at
	}
	return nil
}

func (s *MemoryContentStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*domain.Entry)
	return nil
}

func (s *MemoryContentStore) GetDailyCost(ctx context.Context, date string) (*domain.DailyCostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.costs[date]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryContentStore) PutDailyCost(ctx context.Context, rec *domain.DailyCostRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.costs[rec.Date] = &cp
	return nil
}

func cloneEntry(e *domain.Entry) domain.Entry {
	cp := *e
	if e.Content.Image != nil {
		cp.Content.Image = append([]byte(nil), e.Content.Image...)
	}
	if e.Content.Video != nil {
		cp.Content.Video = append([]byte(nil), e.Content.Video...)
	}
	return cp
}
