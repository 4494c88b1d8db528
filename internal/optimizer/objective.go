package optimizer

import (
	"context"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/domain"
)

// Objective scores a weight configuration. Higher is better.
type Objective interface {
	Evaluate(ctx context.Context, w domain.WeightConfiguration) (float64, error)
}

// ObjectiveFunc adapts a function to Objective.
type ObjectiveFunc func(ctx context.Context, w domain.WeightConfiguration) (float64, error)

// Evaluate calls f.
func (f ObjectiveFunc) Evaluate(ctx context.Context, w domain.WeightConfiguration) (float64, error) {
	return f(ctx, w)
}

// BacktestObjective scores weights by the rate-regime hit rate over a fixed
// round range. Evaluations go through the backtest cache, so revisiting a
// configuration is cheap.
type BacktestObjective struct {
	runner   *backtest.Runner
	series   *domain.Series
	template backtest.RateRequest
}

// NewBacktestObjective creates an objective that runs template with the
// candidate weights over series.
func NewBacktestObjective(runner *backtest.Runner, series *domain.Series, template backtest.RateRequest) *BacktestObjective {
	template.Progress = nil
	return &BacktestObjective{runner: runner, series: series, template: template}
}

// Evaluate returns the hit rate in percent.
func (o *BacktestObjective) Evaluate(ctx context.Context, w domain.WeightConfiguration) (float64, error) {
	req := o.template
	req.Weights = w
	report, err := o.runner.RunRateSeries(ctx, o.series, req)
	if err != nil {
		return 0, err
	}
	return report.Metrics.HitRate, nil
}

var _ Objective = (*BacktestObjective)(nil)
