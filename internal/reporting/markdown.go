package reporting

import (
	"fmt"
	"strings"
	"time"

	"lotto-lab/internal/metrics"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Draws | %d |\n", r.Data.TotalDraws))
	sb.WriteString(fmt.Sprintf("| Rounds | %d - %d |\n", r.Data.FirstRound, r.Data.LastRound))
	if !r.Data.FirstDate.IsZero() {
		sb.WriteString(fmt.Sprintf("| Dates | %s - %s |\n",
			r.Data.FirstDate.Format("2006-01-02"), r.Data.LastDate.Format("2006-01-02")))
	}
	sb.WriteString("\n")

	// Rate regime
	sb.WriteString("## Hit Rate\n\n")
	if len(r.Rate) > 0 {
		sb.WriteString("| Strategy | Rounds | Threshold | Combos | Hits | HitRate | Random | Lift | AvgMatch | StdMatch | MaxMatch | MissStreak | Cache |\n")
		sb.WriteString("|----------|--------|-----------|--------|------|---------|--------|------|----------|----------|----------|------------|-------|\n")
		for _, row := range r.Rate {
			m := row.Metrics
			sb.WriteString(fmt.Sprintf("| %s | %d-%d | %d+ | %d | %d/%d | %.2f%% | %.2f%% | %+.2f | %.3f | %.3f | %d | %d | %d/%d |\n",
				row.Strategy, row.From, row.To, m.Threshold, m.CombosPerRound,
				m.Hits, m.TotalRounds, m.HitRate, m.ExpectedRate, m.Lift,
				m.AvgMatch, m.StdMatch, m.MaxMatch, m.LongestMissStreak,
				row.Served, row.Served+row.Computed))
		}
		sb.WriteString("\n" + metrics.BaselineNote() + "\n")
		for _, row := range r.Rate {
			if m := row.Metrics; m.Shortfalls > 0 {
				sb.WriteString(fmt.Sprintf("\n**Warning:** %s %d+ is %d tickets short over %d rounds.\n",
					row.Strategy, m.Threshold, m.Shortfalls, m.ShortRounds))
			}
		}
		sb.WriteString("\n### Match Distribution\n\n")
		sb.WriteString("| Strategy | Threshold | 0 | 1 | 2 | 3 | 4 | 5 | 6 |\n")
		sb.WriteString("|----------|-----------|---|---|---|---|---|---|---|\n")
		for _, row := range r.Rate {
			d := row.Metrics.Distribution
			sb.WriteString(fmt.Sprintf("| %s | %d+ | %d | %d | %d | %d | %d | %d | %d |\n",
				row.Strategy, row.Metrics.Threshold, d[0], d[1], d[2], d[3], d[4], d[5], d[6]))
		}
	} else {
		sb.WriteString("No rate-regime runs.\n")
	}
	sb.WriteString("\n")

	// Fixed wager
	sb.WriteString("## Fixed Wager\n\n")
	if len(r.Wager) > 0 {
		sb.WriteString("| Strategy | Rounds | Cost | Prize | Net | ROI | MaxDD | 1st | 2nd | 3rd | 4th | 5th |\n")
		sb.WriteString("|----------|--------|------|-------|-----|-----|-------|-----|-----|-----|-----|-----|\n")
		for _, row := range r.Wager {
			m := row.Metrics
			sb.WriteString(fmt.Sprintf("| %s | %d-%d | %d | %d | %d | %.2f%% | %.0f | %d | %d | %d | %d | %d |\n",
				row.Strategy, row.From, row.To, m.TotalCost, m.TotalPrize, m.NetProfit, m.ROI, m.MaxDrawdown,
				m.RankCounts[1], m.RankCounts[2], m.RankCounts[3], m.RankCounts[4], m.RankCounts[5]))
		}
		for _, row := range r.Wager {
			if row.Metrics.Shortfalls > 0 {
				sb.WriteString(fmt.Sprintf("\n**Warning:** %s played %d rounds without a ticket; they were not charged.\n",
					row.Strategy, row.Metrics.Shortfalls))
			}
		}
	} else {
		sb.WriteString("No fixed-wager runs.\n")
	}
	sb.WriteString("\n")

	// Optimization
	if o := r.Optimization; o != nil {
		sb.WriteString("## Weight Optimization\n\n")
		sb.WriteString(fmt.Sprintf("Run `%s`: %s, %d+ matches, rounds %d-%d, %d trials.\n\n",
			o.RunID, o.Strategy, o.Threshold, o.From, o.To, o.Trials))
		sb.WriteString(fmt.Sprintf("Best: %s (%.2f%%)\n\n", o.Best, o.BestScore))
		if len(o.TopTrials) > 0 {
			sb.WriteString("| # | Phase | Frequency | Trend | Absence | Hotness | Score |\n")
			sb.WriteString("|---|-------|-----------|-------|---------|---------|-------|\n")
			for _, tr := range o.TopTrials {
				sb.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.2f | %.2f | %.2f | %.2f%% |\n",
					tr.Index, tr.Phase, tr.Weights.Frequency, tr.Weights.Trend,
					tr.Weights.Absence, tr.Weights.Hotness, tr.Score))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
