package repository

import (
	"context"
	"sync"
	"time"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// MemoryContextCacheStore is an in-memory implementation of
// ContextCacheStore. Used as fallback when Valkey is not enabled.
type MemoryContextCacheStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.ExplicitCacheEntry
	done    chan struct{}
	once    sync.Once
}

// NewMemoryContextCacheStore creates a new in-memory context cache store.
func NewMemoryContextCacheStore() *MemoryContextCacheStore {
	store := &MemoryContextCacheStore{
		entries: make(map[string]*domain.ExplicitCacheEntry),
		done:    make(chan struct{}),
	}
	go store.cleanupLoop()
	return store
}

func (s *MemoryContextCacheStore) Get(ctx context.Context, key string) (*domain.ExplicitCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (s *MemoryContextCacheStore) Save(ctx context.Context, key string, entry *domain.ExplicitCacheEntry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.entries[key] = &cp
	return nil
}

func (s *MemoryContextCacheStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryContextCacheStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
		}
	}
	return nil
}

// List returns all active (non-expired) cache entries for inspection.
func (s *MemoryContextCacheStore) List(ctx context.Context) ([]*domain.ExplicitCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var result []*domain.ExplicitCacheEntry
	for _, entry := range s.entries {
		if !entry.Expired(now) {
			cp := *entry
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Close stops the background cleanup loop.
func (s *MemoryContextCacheStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryContextCacheStore) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_ = s.Cleanup(context.Background())
		}
	}
}
