package memory

import (
	"context"
	"sort"
	"sync"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

// DrawStore is an in-memory implementation of storage.DrawStore.
type DrawStore struct {
	mu   sync.RWMutex
	data map[int]*domain.DrawRecord // keyed by round
}

// NewDrawStore creates a new in-memory draw store.
func NewDrawStore() *DrawStore {
	return &DrawStore{
		data: make(map[int]*domain.DrawRecord),
	}
}

// Insert adds a new draw. Returns ErrDuplicateKey if the round exists.
func (s *DrawStore) Insert(_ context.Context, d *domain.DrawRecord) error {
	if d == nil || d.Validate() != nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[d.Round]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *d
	s.data[d.Round] = &copy
	return nil
}

// InsertBulk adds multiple draws atomically. Fails entire batch on any duplicate.
func (s *DrawStore) InsertBulk(_ context.Context, draws []*domain.DrawRecord) error {
	if len(draws) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[int]struct{}, len(draws))
	for _, d := range draws {
		if d == nil || d.Validate() != nil {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[d.Round]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[d.Round]; exists {
			return storage.ErrDuplicateKey
		}
		batch[d.Round] = struct{}{}
	}

	for _, d := range draws {
		copy := *d
		s.data[d.Round] = &copy
	}
	return nil
}

// GetByRound retrieves one draw. Returns ErrNotFound if not exists.
func (s *DrawStore) GetByRound(_ context.Context, round int) (*domain.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.data[round]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

// GetAll retrieves every draw, ordered by round ASC.
func (s *DrawStore) GetAll(_ context.Context) ([]*domain.DrawRecord, error) {
	return s.collect(func(int) bool { return true }), nil
}

// GetUntilRound retrieves draws with round <= cutoff, ordered by round ASC.
func (s *DrawStore) GetUntilRound(_ context.Context, cutoff int) ([]*domain.DrawRecord, error) {
	return s.collect(func(round int) bool { return round <= cutoff }), nil
}

// LatestRound returns the highest stored round, or 0 when empty.
func (s *DrawStore) LatestRound(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := 0
	for round := range s.data {
		if round > latest {
			latest = round
		}
	}
	return latest, nil
}

func (s *DrawStore) collect(keep func(round int) bool) []*domain.DrawRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DrawRecord
	for round, d := range s.data {
		if keep(round) {
			copy := *d
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Round < result[j].Round })
	return result
}

var _ storage.DrawStore = (*DrawStore)(nil)
