package reporting

import (
	"fmt"
	"strings"

	"lotto-lab/internal/domain"
)

// RenderRateCSV renders rate-regime summaries as CSV string.
func RenderRateCSV(rows []RateRow) string {
	var sb strings.Builder

	sb.WriteString("strategy,from_round,to_round,threshold,combos_per_round,total_rounds,hits,hit_rate,")
	sb.WriteString("expected_rate,lift,avg_match,std_match,max_match,longest_miss_streak,")
	sb.WriteString("w_frequency,w_trend,w_absence,w_hotness\n")

	for _, r := range rows {
		m := r.Metrics
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%d,%.4f,%.4f,%.4f,%.4f\n",
			r.Strategy, r.From, r.To,
			m.Threshold, m.CombosPerRound, m.TotalRounds, m.Hits,
			m.HitRate, m.ExpectedRate, m.Lift, m.AvgMatch, m.StdMatch, m.MaxMatch, m.LongestMissStreak,
			r.Weights.Frequency, r.Weights.Trend, r.Weights.Absence, r.Weights.Hotness,
		))
	}

	return sb.String()
}

// RenderRoundsCSV renders per-round rate results, one line per round.
// Predicted combinations are joined with '|'.
func RenderRoundsCSV(results []domain.BacktestResult) string {
	var sb strings.Builder

	sb.WriteString("round,actual,bonus,max_match,hit,predicted,matches\n")
	for _, r := range results {
		predicted := make([]string, len(r.Predicted))
		for i, c := range r.Predicted {
			predicted[i] = joinInts(c[:], " ")
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%d,%d,%t,%s,%s\n",
			r.Round, joinInts(r.Actual[:], " "), r.Bonus, r.MaxMatch, r.Hit,
			strings.Join(predicted, "|"), joinInts(r.Matches, " ")))
	}

	return sb.String()
}

// RenderWagerCSV renders fixed-wager rounds with the running profit.
func RenderWagerCSV(results []domain.WagerResult) string {
	var sb strings.Builder

	sb.WriteString("round,predicted,actual,bonus,match_count,bonus_hit,rank,prize,profit,cumulative_profit\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%d,%d,%t,%d,%d,%d,%d\n",
			r.Round, joinInts(r.Predicted[:], " "), joinInts(r.Actual[:], " "), r.Bonus,
			r.MatchCount, r.BonusHit, r.Rank, r.Prize, r.Profit, r.CumulativeProfit))
	}

	return sb.String()
}

func joinInts(v []int, sep string) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, sep)
}
