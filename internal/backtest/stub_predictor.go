package backtest

import (
	"context"
	"sort"
	"sync"

	"lotto-lab/internal/domain"
)

// StubPredictor is a fixed predictor for testing.
// It returns the same combinations every round and collects the training
// cutoffs it was given.
type StubPredictor struct {
	mu      sync.Mutex
	combos  []domain.Combination
	cutoffs []int
}

// NewStubPredictor creates a new stub predictor.
func NewStubPredictor(combos ...domain.Combination) *StubPredictor {
	return &StubPredictor{combos: combos}
}

// Train records the last training round.
func (s *StubPredictor) Train(_ context.Context, training *domain.Series) (Model, error) {
	s.mu.Lock()
	s.cutoffs = append(s.cutoffs, training.LastRound())
	s.mu.Unlock()
	return stubModel(s.combos), nil
}

// Name returns the strategy identifier.
func (s *StubPredictor) Name() string {
	return "stub"
}

// Cutoffs returns collected training cutoffs in ascending order.
func (s *StubPredictor) Cutoffs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.cutoffs))
	copy(out, s.cutoffs)
	sort.Ints(out)
	return out
}

type stubModel []domain.Combination

func (m stubModel) Predict(_ context.Context, n int, _ uint64) ([]domain.Combination, error) {
	if n > len(m) {
		n = len(m)
	}
	out := make([]domain.Combination, n)
	copy(out, m[:n])
	return out, nil
}

// Ensure StubPredictor implements Predictor
var _ Predictor = (*StubPredictor)(nil)
