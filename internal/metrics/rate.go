// Package metrics computes rate and wager aggregates from per-round backtest
// results. All functions are pure.
package metrics

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"

	"lotto-lab/internal/domain"
)

// ErrNoResults is returned when there is nothing to aggregate.
var ErrNoResults = errors.New("no results available for aggregation")

// ComputeRate aggregates rate-regime results for threshold. Results are
// ordered by round before order-dependent metrics (LongestMissStreak).
// ExpectedRate is the random rate at the number of tickets each round
// actually carried, so rounds cut short by the generator lower it.
func ComputeRate(results []domain.BacktestResult, threshold, combosPerRound int) (domain.RateMetrics, error) {
	m := domain.RateMetrics{
		Threshold:      threshold,
		CombosPerRound: combosPerRound,
		Baseline:       BaselineRate(threshold),
		ExpectedRate:   ExpectedRate(threshold, combosPerRound),
	}
	n := len(results)
	if n == 0 {
		return m, ErrNoResults
	}

	sorted := make([]domain.BacktestResult, n)
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Round < sorted[j].Round })

	matches := make([]float64, n)
	hits := make([]bool, n)
	expected := 0.0
	for i, r := range sorted {
		if r.Shortfall > 0 {
			m.Shortfalls += r.Shortfall
			m.ShortRounds++
		}
		expected += ExpectedRate(threshold, ticketsPlayed(r, combosPerRound))
		matches[i] = float64(r.MaxMatch)
		hits[i] = r.MaxMatch >= threshold
		if hits[i] {
			m.Hits++
		}
		if r.MaxMatch > m.MaxMatch {
			m.MaxMatch = r.MaxMatch
		}
		if r.MaxMatch >= 0 && r.MaxMatch <= domain.PickCount {
			m.Distribution[r.MaxMatch]++
		}
	}

	if m.ShortRounds > 0 {
		m.ExpectedRate = expected / float64(n)
	}
	m.TotalRounds = n
	m.HitRate = computeRate(m.Hits, n)
	m.AvgMatch, m.StdMatch = computeMeanStddev(matches)
	m.Lift = m.HitRate - m.ExpectedRate
	m.LongestMissStreak = computeLongestMissStreak(hits)
	return m, nil
}

// ticketsPlayed returns how many tickets a round carried.
func ticketsPlayed(r domain.BacktestResult, combosPerRound int) int {
	requested := combosPerRound
	if r.Requested > 0 {
		requested = r.Requested
	}
	if played := requested - r.Shortfall; played > 0 {
		return played
	}
	return 0
}

// computeRate returns count / total as a percentage.
func computeRate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// computeMeanStddev returns the mean and sample standard deviation (n-1).
func computeMeanStddev(xs []float64) (mean, std float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

// computeLongestMissStreak finds the longest run of rounds without a hit.
// hits must be in round order.
func computeLongestMissStreak(hits []bool) int {
	maxStreak := 0
	currentStreak := 0
	for _, hit := range hits {
		if !hit {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}
