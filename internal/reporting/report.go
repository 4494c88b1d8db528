package reporting

import (
	"time"

	"lotto-lab/internal/domain"
)

// Report collects backtest and optimizer output for rendering.
type Report struct {
	GeneratedAt time.Time

	Data DataSummary

	// Rate rows sorted by (strategy, threshold); wager rows by strategy.
	Rate  []RateRow
	Wager []WagerRow

	Optimization *OptimizationSection
}

// DataSummary describes the draw history the runs used.
type DataSummary struct {
	TotalDraws int
	FirstRound int
	LastRound  int
	FirstDate  time.Time
	LastDate   time.Time
}

// RateRow is one rate-regime run.
type RateRow struct {
	Strategy string
	Weights  domain.WeightConfiguration
	From     int
	To       int
	Metrics  domain.RateMetrics
	Served   int // rounds served from cache
	Computed int
}

// WagerRow is one fixed-wager run.
type WagerRow struct {
	Strategy string
	From     int
	To       int
	Metrics  domain.WagerMetrics
}

// OptimizationSection summarizes one optimizer run.
type OptimizationSection struct {
	RunID     string
	Strategy  string
	Threshold int
	From      int
	To        int
	Best      domain.WeightConfiguration
	BestScore float64
	Trials    int
	TopTrials []domain.OptimizationTrial // best first
}
