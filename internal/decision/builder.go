package decision

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/metrics"
)

// ErrEmptyReport is returned when the report carries no per-round results.
var ErrEmptyReport = errors.New("backtest report has no results")

// Build creates Input from a rate-regime report. Metrics are taken at the
// report's own threshold; halves split the window by round.
func Build(report *backtest.RateReport) (*Input, error) {
	if report == nil || len(report.Results) == 0 {
		return nil, ErrEmptyReport
	}
	m := report.Metrics
	combos := m.CombosPerRound

	in := &Input{
		Strategy:          report.Strategy,
		Threshold:         m.Threshold,
		Combos:            combos,
		From:              report.From,
		To:                report.To,
		Rounds:            m.TotalRounds,
		Hits:              m.Hits,
		HitRate:           m.HitRate,
		ExpectedRate:      m.ExpectedRate,
		Lift:              m.Lift,
		AvgMatch:          m.AvgMatch,
		ExpectedAvgMatch:  ExpectedBestMatch(combos),
		LongestMissStreak: m.LongestMissStreak,
		Shortfalls:        m.Shortfalls,
	}
	if m.Shortfalls > 0 {
		in.ExpectedAvgMatch = expectedBestMatchPlayed(report.Results, combos)
	}

	p := m.ExpectedRate / 100
	in.ExpectedMissStreak = ExpectedLongestMiss(m.TotalRounds, p)
	in.PValue = binomialTail(m.TotalRounds, m.Hits, p)

	first, second, err := halfLifts(report.Results, m.Threshold, combos)
	if err != nil {
		return nil, err
	}
	in.FirstHalfLift, in.SecondHalfLift = first, second
	return in, nil
}

// expectedBestMatchPlayed averages ExpectedBestMatch over the tickets each
// round actually carried.
func expectedBestMatchPlayed(results []domain.BacktestResult, combos int) float64 {
	sum := 0.0
	for _, r := range results {
		requested := combos
		if r.Requested > 0 {
			requested = r.Requested
		}
		sum += ExpectedBestMatch(requested - r.Shortfall)
	}
	return sum / float64(len(results))
}

// ExpectedBestMatch is the mean of the best match count over combos random
// tickets: the sum over k of P(best >= k).
func ExpectedBestMatch(combos int) float64 {
	sum := 0.0
	for k := 1; k <= domain.PickCount; k++ {
		sum += metrics.ExpectedRate(k, combos) / 100
	}
	return sum
}

// ExpectedLongestMiss approximates the longest run of misses in n rounds
// with per-round hit probability p.
func ExpectedLongestMiss(n int, p float64) float64 {
	switch {
	case n == 0:
		return 0
	case p <= 0:
		return float64(n)
	case p >= 1:
		return 0
	}
	np := float64(n) * p
	if np <= 1 {
		return float64(n)
	}
	return math.Log(np) / -math.Log(1-p)
}

func binomialTail(n, hits int, p float64) float64 {
	if hits <= 0 || p <= 0 {
		return 1
	}
	if p >= 1 {
		return 1
	}
	b := distuv.Binomial{N: float64(n), P: p}
	tail := 1 - b.CDF(float64(hits-1))
	return math.Max(0, math.Min(1, tail))
}

func halfLifts(results []domain.BacktestResult, threshold, combos int) (float64, float64, error) {
	sorted := append([]domain.BacktestResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Round < sorted[j].Round })

	if len(sorted) < 2 {
		m, err := metrics.ComputeRate(sorted, threshold, combos)
		if err != nil {
			return 0, 0, err
		}
		return m.Lift, m.Lift, nil
	}
	mid := len(sorted) / 2
	a, err := metrics.ComputeRate(sorted[:mid], threshold, combos)
	if err != nil {
		return 0, 0, err
	}
	b, err := metrics.ComputeRate(sorted[mid:], threshold, combos)
	if err != nil {
		return 0, 0, err
	}
	return a.Lift, b.Lift, nil
}
