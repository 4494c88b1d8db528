package metrics

import (
	"errors"
	"testing"

	"lotto-lab/internal/domain"
)

func TestComputeWager_Empty(t *testing.T) {
	if _, err := ComputeWager(nil, 1000); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestComputeWager_Totals(t *testing.T) {
	results := []domain.WagerResult{
		{Round: 1, Rank: 0},
		{Round: 2, Rank: 5, Prize: 5000},
		{Round: 3, Rank: 0},
		{Round: 4, Rank: 4, Prize: 50000},
	}
	m, err := ComputeWager(results, 1000)
	if err != nil {
		t.Fatalf("ComputeWager failed: %v", err)
	}
	if m.TotalCost != 4000 {
		t.Errorf("expected cost 4000, got %d", m.TotalCost)
	}
	if m.TotalPrize != 55000 {
		t.Errorf("expected prize 55000, got %d", m.TotalPrize)
	}
	if m.NetProfit != 51000 {
		t.Errorf("expected net 51000, got %d", m.NetProfit)
	}
	if m.ROI != 1375 {
		t.Errorf("expected ROI 1375, got %v", m.ROI)
	}
	if m.RankCounts[0] != 2 || m.RankCounts[4] != 1 || m.RankCounts[5] != 1 {
		t.Errorf("unexpected rank counts %v", m.RankCounts)
	}
	if m.WinRounds != 2 {
		t.Errorf("expected 2 win rounds, got %d", m.WinRounds)
	}
	// -1000, +4000 (peak 3000), -1000 (2000) -> drawdown 1000
	if m.MaxDrawdown != 1000 {
		t.Errorf("expected drawdown 1000, got %v", m.MaxDrawdown)
	}
}

func TestAccumulateProfit(t *testing.T) {
	results := []domain.WagerResult{
		{Round: 1},
		{Round: 2, Prize: 5000},
		{Round: 3},
	}
	AccumulateProfit(results, 1000)
	want := []int64{-1000, 3000, 2000}
	for i, r := range results {
		if r.CumulativeProfit != want[i] {
			t.Errorf("round %d: expected cumulative %d, got %d", r.Round, want[i], r.CumulativeProfit)
		}
	}
	if results[1].Profit != 4000 {
		t.Errorf("expected profit 4000, got %d", results[1].Profit)
	}
}

func TestComputeMaxDrawdown_StartsFromZero(t *testing.T) {
	// Losing from the start counts against the zero starting peak.
	if got := computeMaxDrawdown([]float64{-1000, -1000}); got != 2000 {
		t.Errorf("expected 2000, got %v", got)
	}
}

func TestComputeWager_NoTicketCostsNothing(t *testing.T) {
	results := []domain.WagerResult{
		{Round: 1},
		{Round: 2, NoTicket: true},
		{Round: 3, Rank: 5, Prize: 5000},
	}
	AccumulateProfit(results, 1000)
	m, err := ComputeWager(results, 1000)
	if err != nil {
		t.Fatalf("ComputeWager failed: %v", err)
	}

	if m.TotalCost != 2000 {
		t.Errorf("expected cost 2000 for two tickets, got %d", m.TotalCost)
	}
	if m.Shortfalls != 1 {
		t.Errorf("expected 1 round without a ticket, got %d", m.Shortfalls)
	}
	if m.RankCounts[0] != 1 {
		t.Errorf("skipped round should not count as a losing ticket, got %v", m.RankCounts)
	}
	if results[1].Profit != 0 || results[1].CumulativeProfit != -1000 {
		t.Errorf("skipped round: profit %d cumulative %d", results[1].Profit, results[1].CumulativeProfit)
	}
	if m.NetProfit != 3000 {
		t.Errorf("expected net 3000, got %d", m.NetProfit)
	}
}
