// Command report backtests several strategies over the same window and
// writes a markdown report with CSV tables alongside, plus a GO/NO-GO gate
// per strategy and threshold.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lotto-lab/internal/app"
	"lotto-lab/internal/backtest"
	"lotto-lab/internal/config"
	"lotto-lab/internal/decision"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/ingestion/fixtures"
	"lotto-lab/internal/orchestrator"
	"lotto-lab/internal/reporting"
	"lotto-lab/internal/storage/memory"
	"lotto-lab/pkg/logger"
)

// fixtureRounds is the size of the synthetic history used with -use-fixtures.
const fixtureRounds = 300

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	strategies := flag.String("strategies", strings.Join(domain.Strategies, ","), "Comma-separated strategies to compare")
	thresholds := flag.String("thresholds", "3,4", "Comma-separated hit thresholds")
	from := flag.Int("from", 0, "First target round (0 = latest minus optimizer window)")
	to := flag.Int("to", 0, "Last target round (0 = latest)")
	fixed := flag.Bool("fixed", true, "Also run the fixed-wager regime per strategy")
	useFixtures := flag.Bool("use-fixtures", false, "Use a synthetic in-memory history instead of the configured stores")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel, Pretty: true})
	ctx := context.Background()

	names := splitList(*strategies)
	for _, name := range names {
		if !domain.IsStrategy(name) {
			log.Fatal().Str("strategy", name).Msg("unknown strategy")
		}
	}
	var levels []int
	for _, s := range splitList(*thresholds) {
		var n int
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 1 || n > domain.PickCount {
			log.Fatal().Str("threshold", s).Msg("thresholds must be 1-6")
		}
		levels = append(levels, n)
	}

	orch, cleanup, err := openOrchestrator(ctx, cfg, *useFixtures, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open stores")
	}
	defer cleanup()

	series, err := orch.Series(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load history")
	}
	gen := reporting.NewGenerator().AddSeries(series)
	if *useFixtures {
		// fixed clock keeps fixture reports byte-stable
		gen.WithClock(func() time.Time { return time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC) })
	}

	// per-round tables cover the first strategy only
	var (
		rounds      []domain.BacktestResult
		wagerRounds []domain.WagerResult
		verdicts    []*decision.Result
	)
	gate := decision.NewEvaluator(decision.DefaultCriteria())
	for i, name := range names {
		for _, threshold := range levels {
			report, err := orch.RunBacktest(ctx, backtest.RateRequest{From: *from, To: *to, Strategy: name, Threshold: threshold})
			if err != nil {
				log.Fatal().Err(err).Str("strategy", name).Int("threshold", threshold).Msg("rate backtest")
			}
			gen.AddRate(report)
			if in, err := decision.Build(report); err == nil {
				verdicts = append(verdicts, gate.Evaluate(*in))
			} else {
				log.Warn().Err(err).Str("strategy", name).Msg("decision gate skipped")
			}
			if i == 0 && threshold == levels[0] {
				rounds = report.Results
			}
			log.Info().Str("strategy", name).Int("threshold", threshold).Float64("hit_rate", report.Metrics.HitRate).Msg("rate backtest done")
		}
		if *fixed {
			report, err := orch.RunFixedWager(ctx, backtest.FixedRequest{From: *from, To: *to, Strategy: name})
			if err != nil {
				log.Fatal().Err(err).Str("strategy", name).Msg("fixed backtest")
			}
			gen.AddWager(report)
			if i == 0 {
				wagerRounds = report.Results
			}
		}
	}

	t := orch.Tuning().Optimizer
	if run, err := orch.LatestWeights(ctx, t.Strategy, t.Threshold); err == nil {
		gen.SetOptimization(run)
	} else if !orchestrator.IsNotFound(err) {
		log.Warn().Err(err).Msg("latest optimization")
	}

	report := gen.Generate()
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output dir")
	}
	files := map[string]string{
		"BACKTEST_REPORT.md": reporting.RenderMarkdown(report),
		"hit_rate.csv":       reporting.RenderRateCSV(report.Rate),
		"DECISION_GATE.md":   decision.RenderMarkdown(verdicts),
	}
	if len(rounds) > 0 {
		files["rounds.csv"] = reporting.RenderRoundsCSV(rounds)
	}
	if len(wagerRounds) > 0 {
		files["wager.csv"] = reporting.RenderWagerCSV(wagerRounds)
	}

	fmt.Println("Report generated:")
	for name, content := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("write report")
		}
		fmt.Printf("  - %s\n", path)
	}
}

func openOrchestrator(ctx context.Context, cfg *config.Config, useFixtures bool, log zerolog.Logger) (*orchestrator.Orchestrator, func(), error) {
	if useFixtures {
		draws := memory.NewDrawStore()
		if err := draws.InsertBulk(ctx, fixtures.Pointers(fixtures.UniformDraws(fixtureRounds, 1))); err != nil {
			return nil, nil, err
		}
		orch := orchestrator.New(orchestrator.Options{
			Draws:   draws,
			Cache:   memory.NewBacktestCacheStore(),
			Weights: memory.NewOptimalWeightsStore(),
			Tuning:  cfg.Tuning,
			Logger:  log,
		})
		return orch, func() {}, nil
	}

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return app.NewOrchestrator(cfg, stores, log), stores.Close, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
