package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

// OptimalWeightsStore writes each run to a timestamped history file and
// overwrites a latest file per (strategy, threshold):
//
//	optimal_weights_<strategy>_<threshold>plus_<timestamp>_<run>.json
//	optimal_weights_<strategy>_<threshold>plus.json
type OptimalWeightsStore struct {
	dir string
	mu  sync.RWMutex
}

// NewOptimalWeightsStore creates the directory if needed.
func NewOptimalWeightsStore(dir string) (*OptimalWeightsStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &OptimalWeightsStore{dir: dir}, nil
}

// Compile-time interface check.
var _ storage.OptimalWeightsStore = (*OptimalWeightsStore)(nil)

// validStrategy keeps strategy names inside the store directory and out of
// glob patterns.
func validStrategy(strategy string) bool {
	return strategy != "" &&
		filepath.Base(strategy) == strategy &&
		!strings.ContainsAny(strategy, `*?[]\/.`)
}

func (s *OptimalWeightsStore) latestPath(strategy string, threshold int) string {
	return filepath.Join(s.dir, fmt.Sprintf("optimal_weights_%s_%dplus.json", strategy, threshold))
}

func (s *OptimalWeightsStore) historyPath(run *domain.OptimizationRun) string {
	id := run.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return filepath.Join(s.dir, fmt.Sprintf("optimal_weights_%s_%dplus_%s_%s.json",
		run.Strategy, run.Threshold, run.CreatedAt.UTC().Format("20060102_150405"), id))
}

// SaveRun appends the run to history and makes it the latest for its
// (strategy, threshold). Returns ErrDuplicateKey if RunID exists.
func (s *OptimalWeightsStore) SaveRun(_ context.Context, run *domain.OptimizationRun) error {
	if run == nil || run.RunID == "" || !validStrategy(run.Strategy) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.history("*", 0)
	if err != nil {
		return err
	}
	for _, r := range runs {
		if r.RunID == run.RunID {
			return storage.ErrDuplicateKey
		}
	}

	if err := writeJSON(s.historyPath(run), run); err != nil {
		return fmt.Errorf("write run history: %w", err)
	}
	if err := writeJSON(s.latestPath(run.Strategy, run.Threshold), run); err != nil {
		return fmt.Errorf("write latest run: %w", err)
	}
	return nil
}

// GetLatest returns the most recently saved run. Returns ErrNotFound if none.
func (s *OptimalWeightsStore) GetLatest(_ context.Context, strategy string, threshold int) (*domain.OptimizationRun, error) {
	if !validStrategy(strategy) {
		return nil, storage.ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var run domain.OptimizationRun
	if err := readJSON(s.latestPath(strategy, threshold), &run); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read latest run: %w", err)
	}
	return &run, nil
}

// GetRun retrieves one run by id. Returns ErrNotFound if not exists.
func (s *OptimalWeightsStore) GetRun(_ context.Context, runID string) (*domain.OptimizationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.history("*", 0)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListRuns returns runs for (strategy, threshold), newest first.
func (s *OptimalWeightsStore) ListRuns(_ context.Context, strategy string, threshold int) ([]*domain.OptimizationRun, error) {
	if !validStrategy(strategy) {
		return nil, storage.ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.history(strategy, threshold)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

// history decodes history files. strategy "*" matches every run; threshold is
// then ignored.
func (s *OptimalWeightsStore) history(strategy string, threshold int) ([]*domain.OptimizationRun, error) {
	pattern := "optimal_weights_*plus_*.json"
	if strategy != "*" {
		pattern = fmt.Sprintf("optimal_weights_%s_%dplus_*.json", strategy, threshold)
	}
	paths, err := filepath.Glob(filepath.Join(s.dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob run history: %w", err)
	}
	sort.Strings(paths)

	runs := make([]*domain.OptimizationRun, 0, len(paths))
	for _, p := range paths {
		var run domain.OptimizationRun
		if err := readJSON(p, &run); err != nil {
			return nil, fmt.Errorf("read run history: %w", err)
		}
		if strategy != "*" && (run.Strategy != strategy || run.Threshold != threshold) {
			continue
		}
		runs = append(runs, &run)
	}
	return runs, nil
}
