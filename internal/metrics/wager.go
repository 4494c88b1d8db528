package metrics

import (
	"sort"

	"lotto-lab/internal/domain"
)

// ComputeWager aggregates fixed-wager results. Each round that carried a
// ticket costs unitCost; NoTicket rounds cost nothing and are counted in
// Shortfalls. Results are ordered by round before MaxDrawdown is computed.
func ComputeWager(results []domain.WagerResult, unitCost int64) (domain.WagerMetrics, error) {
	var m domain.WagerMetrics
	n := len(results)
	if n == 0 {
		return m, ErrNoResults
	}

	sorted := make([]domain.WagerResult, n)
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Round < sorted[j].Round })

	profits := make([]float64, n)
	played := 0
	for i, r := range sorted {
		if r.NoTicket {
			m.Shortfalls++
			continue
		}
		played++
		m.TotalPrize += r.Prize
		if r.Rank >= 0 && r.Rank < len(m.RankCounts) {
			m.RankCounts[r.Rank]++
		}
		if r.Prize > 0 {
			m.WinRounds++
		}
		profits[i] = float64(r.Prize - unitCost)
	}

	m.TotalRounds = n
	m.TotalCost = unitCost * int64(played)
	m.NetProfit = m.TotalPrize - m.TotalCost
	if m.TotalCost > 0 {
		m.ROI = float64(m.TotalPrize) / float64(m.TotalCost) * 100
	}
	m.MaxDrawdown = computeMaxDrawdown(profits)
	return m, nil
}

// AccumulateProfit fills Profit and CumulativeProfit in round order.
// results must already be sorted by round.
func AccumulateProfit(results []domain.WagerResult, unitCost int64) {
	var cumulative int64
	for i := range results {
		results[i].Profit = 0
		if !results[i].NoTicket {
			results[i].Profit = results[i].Prize - unitCost
		}
		cumulative += results[i].Profit
		results[i].CumulativeProfit = cumulative
	}
}

// computeMaxDrawdown calculates worst peak-to-trough on cumulative profit.
// max_drawdown = MAX(peak_cumulative - trough_cumulative)
// Profits must be in round order.
func computeMaxDrawdown(profits []float64) float64 {
	if len(profits) == 0 {
		return 0
	}

	cumulative := 0.0
	peak := 0.0
	maxDrawdown := 0.0

	for _, p := range profits {
		cumulative += p
		if cumulative > peak {
			peak = cumulative
		}
		drawdown := peak - cumulative
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown
}
