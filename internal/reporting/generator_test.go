package reporting

import (
	"strings"
	"testing"
	"time"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/ingestion/fixtures"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func sampleRate(strategy string, threshold int) *backtest.RateReport {
	return &backtest.RateReport{
		Strategy: strategy,
		Weights:  domain.DefaultWeights(),
		From:     101,
		To:       200,
		Metrics: domain.RateMetrics{
			Threshold:      threshold,
			CombosPerRound: 10,
			TotalRounds:    100,
			Hits:           21,
			HitRate:        21,
			ExpectedRate:   21.4,
			Lift:           -0.4,
			Distribution:   [7]int{30, 40, 20, 8, 2, 0, 0},
		},
		Cache: backtest.CacheStatus{Served: 60, Computed: 40},
	}
}

func TestGenerator_SortsRows(t *testing.T) {
	r := NewGenerator().WithClock(func() time.Time { return fixedNow }).
		AddRate(sampleRate("random", 3)).
		AddRate(sampleRate("hybrid", 4)).
		AddRate(sampleRate("hybrid", 3)).
		Generate()

	if !r.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v", r.GeneratedAt)
	}
	if len(r.Rate) != 3 {
		t.Fatalf("expected 3 rate rows, got %d", len(r.Rate))
	}
	got := []string{r.Rate[0].Strategy, r.Rate[1].Strategy, r.Rate[2].Strategy}
	if got[0] != "hybrid" || r.Rate[0].Metrics.Threshold != 3 || got[2] != "random" {
		t.Errorf("unexpected order: %v", got)
	}
	if r.Rate[0].Served != 60 || r.Rate[0].Computed != 40 {
		t.Errorf("cache counts not carried: %+v", r.Rate[0])
	}
}

func TestGenerator_OptimizationTopTrials(t *testing.T) {
	run := &domain.OptimizationRun{RunID: "abc", Strategy: "score", Threshold: 3, BestScore: 25}
	for i := 0; i < 15; i++ {
		run.Trials = append(run.Trials, domain.OptimizationTrial{Index: i, Phase: domain.PhaseRandom, Score: float64(i)})
	}

	r := NewGenerator().SetOptimization(run).Generate()
	if r.Optimization == nil {
		t.Fatal("optimization section missing")
	}
	if r.Optimization.Trials != 15 {
		t.Errorf("Trials = %d, want 15", r.Optimization.Trials)
	}
	if len(r.Optimization.TopTrials) != DefaultTopTrials {
		t.Fatalf("TopTrials = %d, want %d", len(r.Optimization.TopTrials), DefaultTopTrials)
	}
	if r.Optimization.TopTrials[0].Index != 14 {
		t.Errorf("best trial first, got index %d", r.Optimization.TopTrials[0].Index)
	}
}

func TestRenderMarkdown(t *testing.T) {
	series := fixtures.UniformSeries(200, 3)
	wager := &backtest.WagerReport{Strategy: "score", From: 101, To: 200, Metrics: domain.WagerMetrics{
		TotalRounds: 100, TotalCost: 100000, TotalPrize: 15000, NetProfit: -85000, ROI: 15,
		RankCounts: [6]int{97, 0, 0, 0, 0, 3},
	}}
	r := NewGenerator().WithClock(func() time.Time { return fixedNow }).
		AddSeries(series).
		AddRate(sampleRate("score", 3)).
		AddWager(wager).
		Generate()

	md := RenderMarkdown(r)

	for _, want := range []string{
		"# Backtest Report",
		"Generated: 2026-10-01T12:00:00Z",
		"| Draws | 200 |",
		"| score | 101-200 | 3+ | 10 | 21/100 | 21.00% | 21.40% | -0.40 |",
		"| score | 3+ | 30 | 40 | 20 | 8 | 2 | 0 | 0 |",
		"| score | 101-200 | 100000 | 15000 | -85000 | 15.00% |",
		"3+ matches with 2.38% and 4+ with 0.139%",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "Weight Optimization") {
		t.Error("optimization section rendered without a run")
	}
	if strings.Contains(md, "**Warning:**") {
		t.Error("warning rendered for a complete run")
	}
}

func TestRenderMarkdown_ShortfallWarnings(t *testing.T) {
	rate := sampleRate("hybrid", 3)
	rate.Metrics.Shortfalls = 30
	rate.Metrics.ShortRounds = 3
	wager := &backtest.WagerReport{Strategy: "hybrid", From: 101, To: 200, Metrics: domain.WagerMetrics{
		TotalRounds: 100, Shortfalls: 4,
	}}
	md := RenderMarkdown(NewGenerator().AddRate(rate).AddWager(wager).Generate())

	for _, want := range []string{
		"**Warning:** hybrid 3+ is 30 tickets short over 3 rounds.",
		"**Warning:** hybrid played 4 rounds without a ticket; they were not charged.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(NewGenerator().Generate())
	if !strings.Contains(md, "No rate-regime runs.") || !strings.Contains(md, "No fixed-wager runs.") {
		t.Errorf("empty report should say so:\n%s", md)
	}
}

func TestRenderCSV(t *testing.T) {
	rows := NewGenerator().AddRate(sampleRate("score", 3)).Generate().Rate
	out := RenderRateCSV(rows)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "score,101,200,3,10,100,21,21.000000,") {
		t.Errorf("unexpected row: %s", lines[1])
	}

	rounds := RenderRoundsCSV([]domain.BacktestResult{{
		Round:     5,
		Predicted: []domain.Combination{domain.MustCombination(1, 2, 3, 4, 5, 6), domain.MustCombination(7, 8, 9, 10, 11, 12)},
		Actual:    domain.MustCombination(1, 2, 3, 40, 41, 42),
		Bonus:     9,
		Matches:   []int{3, 0},
		MaxMatch:  3,
		Hit:       true,
	}})
	if !strings.Contains(rounds, "5,1 2 3 40 41 42,9,3,true,1 2 3 4 5 6|7 8 9 10 11 12,3 0") {
		t.Errorf("unexpected rounds csv:\n%s", rounds)
	}

	wager := RenderWagerCSV([]domain.WagerResult{{Round: 9, Rank: 5, Prize: 5000, Profit: 4000, CumulativeProfit: 4000}})
	if !strings.Contains(wager, "9,0 0 0 0 0 0,0 0 0 0 0 0,0,0,false,5,5000,4000,4000") {
		t.Errorf("unexpected wager csv:\n%s", wager)
	}
}
