// Command recommend prints number scores and generates ticket combinations
// from the model trained on the full draw history.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lotto-lab/internal/app"
	"lotto-lab/internal/config"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/orchestrator"
	"lotto-lab/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	strategy := flag.String("strategy", domain.StrategyHybrid, "Strategy: score, probability, pattern, grid, spatial, consecutive, random, safe, hybrid")
	count := flag.Int("count", 5, "Combinations to generate")
	strict := flag.Bool("strict", false, "Also reject forbidden pairs and overheated numbers")
	deterministic := flag.Bool("deterministic", false, "Best combinations from the top of the pool, no sampling")
	seed := flag.Uint64("seed", 0, "Generator seed (0 = clock)")
	weightsFlag := flag.String("weights", "", "Weights frequency,trend,absence,hotness (empty = latest optimized)")
	top := flag.Int("top", 10, "Top-scored numbers to list (0 = none)")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel, Pretty: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()
	orch := app.NewOrchestrator(cfg, stores, log)

	req := orchestrator.GenerateRequest{
		Strategy:      *strategy,
		Count:         *count,
		Strict:        *strict,
		Deterministic: *deterministic,
		Seed:          *seed,
	}
	if *weightsFlag != "" {
		w, err := domain.ParseWeights(*weightsFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -weights")
		}
		req.Weights = &w
	}

	resp, err := orch.Generate(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("generate")
	}

	var topNumbers []domain.ScoreRecord
	if *top > 0 {
		if topNumbers, err = orch.TopNumbers(ctx, *top, resp.Weights); err != nil {
			log.Fatal().Err(err).Msg("top numbers")
		}
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(struct {
			Top        []domain.ScoreRecord           `json:"top,omitempty"`
			Generation *orchestrator.GenerateResponse `json:"generation"`
		}{topNumbers, resp})
		return
	}

	fmt.Println()
	fmt.Printf("Model:     rounds through %d, %s\n", resp.Cutoff, resp.Weights)
	if len(topNumbers) > 0 {
		fmt.Println()
		fmt.Println("Top numbers:")
		for i, rec := range topNumbers {
			fmt.Printf("  %2d. %2d  total %6.2f  (freq %5.2f trend %5.2f absence %5.2f hot %5.2f)\n",
				i+1, rec.Number, rec.Total, rec.Frequency, rec.Trend, rec.Absence, rec.Hotness)
		}
	}

	fmt.Println()
	fmt.Printf("Strategy:  %s  seed %d\n", resp.Strategy, resp.Seed)
	for i, sc := range resp.Combinations {
		fmt.Printf("  %d. %-20s score %6.2f\n", i+1, sc.Combination, sc.Score)
	}
	if resp.Note != "" {
		fmt.Printf("\nwarning: %s\n", resp.Note)
	}
}
