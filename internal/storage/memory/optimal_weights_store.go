package memory

import (
	"context"
	"sort"
	"sync"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

type latestKey struct {
	strategy  string
	threshold int
}

// OptimalWeightsStore is an in-memory implementation of storage.OptimalWeightsStore.
type OptimalWeightsStore struct {
	mu     sync.RWMutex
	runs   map[string]*domain.OptimizationRun
	order  []string // insertion order
	latest map[latestKey]string
}

// NewOptimalWeightsStore creates a new in-memory optimal weights store.
func NewOptimalWeightsStore() *OptimalWeightsStore {
	return &OptimalWeightsStore{
		runs:   make(map[string]*domain.OptimizationRun),
		latest: make(map[latestKey]string),
	}
}

// SaveRun appends run to history and marks it latest.
func (s *OptimalWeightsStore) SaveRun(_ context.Context, run *domain.OptimizationRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}
	s.runs[run.RunID] = cloneRun(run)
	s.order = append(s.order, run.RunID)
	s.latest[latestKey{run.Strategy, run.Threshold}] = run.RunID
	return nil
}

// GetLatest returns the most recently saved run for (strategy, threshold).
func (s *OptimalWeightsStore) GetLatest(_ context.Context, strategy string, threshold int) (*domain.OptimizationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.latest[latestKey{strategy, threshold}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRun(s.runs[id]), nil
}

// GetRun retrieves one run by id.
func (s *OptimalWeightsStore) GetRun(_ context.Context, runID string) (*domain.OptimizationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRun(r), nil
}

// ListRuns returns runs for (strategy, threshold), newest first.
func (s *OptimalWeightsStore) ListRuns(_ context.Context, strategy string, threshold int) ([]*domain.OptimizationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.OptimizationRun
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.runs[s.order[i]]
		if r.Strategy == strategy && r.Threshold == threshold {
			result = append(result, cloneRun(r))
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func cloneRun(r *domain.OptimizationRun) *domain.OptimizationRun {
	copy := *r
	copy.Trials = append([]domain.OptimizationTrial(nil), r.Trials...)
	return &copy
}

var _ storage.OptimalWeightsStore = (*OptimalWeightsStore)(nil)
