package reporting

import (
	"sort"
	"time"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/domain"
)

// DefaultTopTrials is how many trials the optimization section lists.
const DefaultTopTrials = 10

// Generator assembles a Report from run outputs.
type Generator struct {
	data  DataSummary
	rate  []RateRow
	wager []WagerRow
	opt   *OptimizationSection
	now   func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// AddSeries records the history summary.
func (g *Generator) AddSeries(s *domain.Series) *Generator {
	g.data = DataSummary{TotalDraws: s.Len(), FirstRound: s.FirstRound(), LastRound: s.LastRound()}
	if s.Len() > 0 {
		g.data.FirstDate = s.At(0).Date
		g.data.LastDate = s.At(s.Len() - 1).Date
	}
	return g
}

// AddRate appends a rate-regime run.
func (g *Generator) AddRate(r *backtest.RateReport) *Generator {
	g.rate = append(g.rate, RateRow{
		Strategy: r.Strategy,
		Weights:  r.Weights,
		From:     r.From,
		To:       r.To,
		Metrics:  r.Metrics,
		Served:   r.Cache.Served,
		Computed: r.Cache.Computed,
	})
	return g
}

// AddWager appends a fixed-wager run.
func (g *Generator) AddWager(r *backtest.WagerReport) *Generator {
	g.wager = append(g.wager, WagerRow{Strategy: r.Strategy, From: r.From, To: r.To, Metrics: r.Metrics})
	return g
}

// SetOptimization records an optimizer run.
func (g *Generator) SetOptimization(run *domain.OptimizationRun) *Generator {
	top := append([]domain.OptimizationTrial(nil), run.Trials...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score > top[j].Score })
	if len(top) > DefaultTopTrials {
		top = top[:DefaultTopTrials]
	}
	g.opt = &OptimizationSection{
		RunID:     run.RunID,
		Strategy:  run.Strategy,
		Threshold: run.Threshold,
		From:      run.FromRound,
		To:        run.ToRound,
		Best:      run.Best,
		BestScore: run.BestScore,
		Trials:    len(run.Trials),
		TopTrials: top,
	}
	return g
}

// Generate produces the report. Rows are sorted for stable output.
func (g *Generator) Generate() *Report {
	rate := append([]RateRow(nil), g.rate...)
	sort.SliceStable(rate, func(i, j int) bool {
		if rate[i].Strategy != rate[j].Strategy {
			return rate[i].Strategy < rate[j].Strategy
		}
		return rate[i].Metrics.Threshold < rate[j].Metrics.Threshold
	})
	wager := append([]WagerRow(nil), g.wager...)
	sort.SliceStable(wager, func(i, j int) bool { return wager[i].Strategy < wager[j].Strategy })

	return &Report{
		GeneratedAt:  g.now(),
		Data:         g.data,
		Rate:         rate,
		Wager:        wager,
		Optimization: g.opt,
	}
}
