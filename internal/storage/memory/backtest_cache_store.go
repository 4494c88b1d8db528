package memory

import (
	"context"
	"sync"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

// BacktestCacheStore is an in-memory implementation of storage.BacktestCacheStore.
type BacktestCacheStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BacktestCacheEntry
}

// NewBacktestCacheStore creates a new in-memory backtest cache.
func NewBacktestCacheStore() *BacktestCacheStore {
	return &BacktestCacheStore{
		data: make(map[string]*domain.BacktestCacheEntry),
	}
}

// Get retrieves an entry. Returns ErrNotFound if not exists.
func (s *BacktestCacheStore) Get(_ context.Context, key string) (*domain.BacktestCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneEntry(e), nil
}

// Put replaces the entry stored under entry.Key.
func (s *BacktestCacheStore) Put(_ context.Context, entry *domain.BacktestCacheEntry) error {
	if entry == nil || entry.Key == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[entry.Key] = cloneEntry(entry)
	return nil
}

// Delete removes an entry.
func (s *BacktestCacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Len returns the number of cached keys.
func (s *BacktestCacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func cloneEntry(e *domain.BacktestCacheEntry) *domain.BacktestCacheEntry {
	copy := *e
	copy.Results = make([]domain.BacktestResult, len(e.Results))
	for i, r := range e.Results {
		r.Predicted = append([]domain.Combination(nil), r.Predicted...)
		r.Matches = append([]int(nil), r.Matches...)
		copy.Results[i] = r
	}
	return &copy
}

var _ storage.BacktestCacheStore = (*BacktestCacheStore)(nil)
