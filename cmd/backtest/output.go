package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/decision"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/metrics"
	"lotto-lab/internal/verification"
)

// progressLogger logs every tenth of the run.
func progressLogger(log zerolog.Logger) backtest.ProgressFunc {
	return func(done, total int) {
		step := total / 10
		if step == 0 {
			step = 1
		}
		if done%step == 0 || done == total {
			log.Debug().Int("done", done).Int("total", total).Msg("backtest progress")
		}
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}

func printRate(r *backtest.RateReport) {
	m := r.Metrics
	fmt.Println()
	fmt.Println("=== Hit Rate Backtest ===")
	fmt.Printf("Strategy:           %s\n", r.Strategy)
	fmt.Printf("Weights:            %s\n", r.Weights)
	fmt.Printf("Rounds:             %d - %d (%d)\n", r.From, r.To, m.TotalRounds)
	fmt.Printf("Tickets per round:  %d\n", m.CombosPerRound)
	fmt.Printf("Cache:              hit=%t served=%d computed=%d\n", r.Cache.Hit, r.Cache.Served, r.Cache.Computed)
	fmt.Println()

	fmt.Printf("Hits (%d+ matches):  %d\n", m.Threshold, m.Hits)
	fmt.Printf("Hit rate:           %.2f%%\n", m.HitRate)
	fmt.Printf("Random expectation: %.2f%% (single ticket %.3f%%)\n", m.ExpectedRate, m.Baseline)
	fmt.Printf("Lift:               %+.2f pp\n", m.Lift)
	fmt.Printf("Average match:      %.3f (sd %.3f)\n", m.AvgMatch, m.StdMatch)
	fmt.Printf("Best match:         %d\n", m.MaxMatch)
	fmt.Printf("Longest miss run:   %d\n", m.LongestMissStreak)
	if m.Shortfalls > 0 {
		fmt.Printf("WARNING: %d tickets short over %d rounds; random expectation uses tickets played\n", m.Shortfalls, m.ShortRounds)
	}
	fmt.Println(metrics.BaselineNote())
	fmt.Println()

	fmt.Println("Best match per round:")
	for k := domain.PickCount; k >= 0; k-- {
		if m.Distribution[k] == 0 {
			continue
		}
		pct := 100 * float64(m.Distribution[k]) / float64(m.TotalRounds)
		fmt.Printf("  %d matches:  %4d  %5.1f%%  %s\n", k, m.Distribution[k], pct, strings.Repeat("#", int(pct/2)))
	}
}

func printGate(r *backtest.RateReport) {
	in, err := decision.Build(r)
	if err != nil {
		return
	}
	res := decision.NewEvaluator(decision.DefaultCriteria()).Evaluate(*in)
	fmt.Println()
	fmt.Printf("Decision: %s (p = %.4f)\n", res.Decision, in.PValue)
	for _, c := range append(res.GOCriteria, res.NOGOChecks...) {
		mark := "ok  "
		if !c.Pass {
			mark = "FAIL"
		}
		fmt.Printf("  [%s] %-28s %s\n", mark, c.Name, c.Actual)
	}
}

func printVerification(r *verification.Report) {
	fmt.Println()
	fmt.Println("=== Cache Verification ===")
	fmt.Printf("Key:                %s\n", r.Key)
	fmt.Printf("Rounds replayed:    %d\n", r.TotalRounds)
	fmt.Printf("Matched:            %d\n", r.MatchedRounds)
	fmt.Printf("Divergent:          %d\n", r.DivergentRounds)
	if r.Repaired {
		fmt.Println("Entry deleted; the next run recomputes it.")
	}
	for _, res := range r.Results {
		for _, d := range res.Divergences {
			fmt.Printf("  round %d %s: cached=%v replayed=%v\n", res.Round, d.Field, d.Expected, d.Actual)
		}
	}
}

func printWager(r *backtest.WagerReport) {
	m := r.Metrics
	fmt.Println()
	fmt.Println("=== Fixed Wager Backtest ===")
	fmt.Printf("Strategy:           %s\n", r.Strategy)
	fmt.Printf("Rounds:             %d - %d (%d)\n", r.From, r.To, m.TotalRounds)
	fmt.Println()

	fmt.Printf("Total cost:         %d\n", m.TotalCost)
	fmt.Printf("Total prize:        %d\n", m.TotalPrize)
	fmt.Printf("Net profit:         %d\n", m.NetProfit)
	fmt.Printf("ROI:                %.2f%%\n", m.ROI)
	fmt.Printf("Winning rounds:     %d\n", m.WinRounds)
	fmt.Printf("Max drawdown:       %.0f\n", m.MaxDrawdown)
	if m.Shortfalls > 0 {
		fmt.Printf("Rounds w/o ticket:  %d (not charged)\n", m.Shortfalls)
	}
	fmt.Println()

	fmt.Println("Prize ranks:")
	for rank := 1; rank < len(m.RankCounts); rank++ {
		fmt.Printf("  rank %d:  %d\n", rank, m.RankCounts[rank])
	}
	fmt.Printf("  none:    %d\n", m.RankCounts[0])
}
