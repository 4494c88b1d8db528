package metrics

import (
	"errors"
	"math"
	"testing"

	"lotto-lab/internal/domain"
)

func rateResults(maxMatches ...int) []domain.BacktestResult {
	out := make([]domain.BacktestResult, len(maxMatches))
	for i, m := range maxMatches {
		out[i] = domain.BacktestResult{Round: 100 + i, MaxMatch: m}
	}
	return out
}

func TestComputeRate_Empty(t *testing.T) {
	m, err := ComputeRate(nil, 3, 10)
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if m.Baseline == 0 {
		t.Error("baseline should be filled even without results")
	}
}

func TestComputeRate_Counts(t *testing.T) {
	results := rateResults(0, 3, 1, 4, 2, 1)
	m, err := ComputeRate(results, 3, 10)
	if err != nil {
		t.Fatalf("ComputeRate failed: %v", err)
	}

	if m.TotalRounds != 6 {
		t.Errorf("expected 6 rounds, got %d", m.TotalRounds)
	}
	if m.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", m.Hits)
	}
	if math.Abs(m.HitRate-100.0/3) > 1e-9 {
		t.Errorf("expected hit rate 33.33, got %v", m.HitRate)
	}
	if math.Abs(m.AvgMatch-11.0/6) > 1e-9 {
		t.Errorf("expected avg 1.8333, got %v", m.AvgMatch)
	}
	if m.MaxMatch != 4 {
		t.Errorf("expected max 4, got %d", m.MaxMatch)
	}
	want := [7]int{1, 2, 1, 1, 1, 0, 0}
	if m.Distribution != want {
		t.Errorf("expected distribution %v, got %v", want, m.Distribution)
	}
	if math.Abs(m.Lift-(m.HitRate-m.ExpectedRate)) > 1e-12 {
		t.Error("lift should be hit rate minus expected rate")
	}
}

func TestComputeRate_ThresholdIsExplicit(t *testing.T) {
	results := rateResults(3, 3, 4)
	m3, _ := ComputeRate(results, 3, 1)
	m4, _ := ComputeRate(results, 4, 1)
	if m3.Hits != 3 || m4.Hits != 1 {
		t.Errorf("expected 3 hits at 3 and 1 at 4, got %d and %d", m3.Hits, m4.Hits)
	}
}

func TestComputeRate_MissStreakUsesRoundOrder(t *testing.T) {
	// Rounds out of order: sorted order is 3,0,0,0,3
	results := []domain.BacktestResult{
		{Round: 5, MaxMatch: 3},
		{Round: 2, MaxMatch: 0},
		{Round: 1, MaxMatch: 3},
		{Round: 4, MaxMatch: 0},
		{Round: 3, MaxMatch: 0},
	}
	m, err := ComputeRate(results, 3, 1)
	if err != nil {
		t.Fatalf("ComputeRate failed: %v", err)
	}
	if m.LongestMissStreak != 3 {
		t.Errorf("expected streak 3, got %d", m.LongestMissStreak)
	}
}

func TestComputeMeanStddev_Small(t *testing.T) {
	if mean, std := computeMeanStddev([]float64{2}); mean != 2 || std != 0 {
		t.Errorf("single sample: got (%v, %v)", mean, std)
	}
	// sample stddev of 1,2,3 = 1
	if _, std := computeMeanStddev([]float64{1, 2, 3}); math.Abs(std-1) > 1e-12 {
		t.Errorf("expected stddev 1, got %v", std)
	}
}

func TestComputeRate_ShortfallLowersExpectation(t *testing.T) {
	// two rounds asked for 20 tickets but only carried 10
	results := rateResults(2, 3)
	for i := range results {
		results[i].Requested = 20
		results[i].Shortfall = 10
	}
	m, err := ComputeRate(results, 3, 20)
	if err != nil {
		t.Fatalf("ComputeRate failed: %v", err)
	}

	if m.Shortfalls != 20 || m.ShortRounds != 2 {
		t.Errorf("expected 20 missing tickets over 2 rounds, got %d over %d", m.Shortfalls, m.ShortRounds)
	}
	if math.Abs(m.ExpectedRate-ExpectedRate(3, 10)) > 1e-9 {
		t.Errorf("expected rate at 10 tickets %v, got %v", ExpectedRate(3, 10), m.ExpectedRate)
	}
	if math.Abs(m.Lift-(50-ExpectedRate(3, 10))) > 1e-9 {
		t.Errorf("lift should use the tickets actually played, got %v", m.Lift)
	}
}

func TestComputeRate_EmptyRoundExpectsNothing(t *testing.T) {
	results := rateResults(0, 0)
	results[0].Requested = 10
	results[0].Shortfall = 10
	m, err := ComputeRate(results, 3, 10)
	if err != nil {
		t.Fatalf("ComputeRate failed: %v", err)
	}
	if math.Abs(m.ExpectedRate-ExpectedRate(3, 10)/2) > 1e-9 {
		t.Errorf("expected half the full-round rate, got %v", m.ExpectedRate)
	}
}
