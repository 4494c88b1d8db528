// Command replay walks forward over one round or a range of rounds and shows,
// for each, what the model knew beforehand and how its tickets fared against
// the actual draw.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
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

	round := flag.Int("round", 0, "Round to replay (required unless -from/-to)")
	from := flag.Int("from", 0, "First round of a range")
	to := flag.Int("to", 0, "Last round of a range")
	strategy := flag.String("strategy", domain.StrategyHybrid, "Generation strategy")
	count := flag.Int("count", 5, "Tickets per round")
	seed := flag.Uint64("seed", 0, "Generator seed (0 = round number)")
	weightsFlag := flag.String("weights", "", "Weights frequency,trend,absence,hotness (empty = latest optimized)")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel, Pretty: true})

	if *round > 0 {
		*from, *to = *round, *round
	}
	if *from <= 0 || *to < *from {
		log.Fatal().Msg("-round or a valid -from/-to range is required")
	}

	var weights *domain.WeightConfiguration
	if *weightsFlag != "" {
		w, err := domain.ParseWeights(*weightsFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -weights")
		}
		weights = &w
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()
	orch := app.NewOrchestrator(cfg, stores, log)

	var out []*orchestrator.RoundInspection
	for r := *from; r <= *to; r++ {
		insp, err := orch.InspectRound(ctx, orchestrator.InspectRequest{
			Round:    r,
			Strategy: *strategy,
			Count:    *count,
			Seed:     *seed,
			Weights:  weights,
		})
		if err != nil {
			log.Fatal().Err(err).Int("round", r).Msg("replay round")
		}
		out = append(out, insp)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	for _, insp := range out {
		printInspection(insp)
	}
}

func printInspection(in *orchestrator.RoundInspection) {
	fmt.Println()
	fmt.Printf("=== Round %d ===\n", in.Target.Round)
	fmt.Printf("Drawn:              %s + %d\n", in.Target.Winning(), in.Target.Bonus)
	fmt.Printf("Trained on:         %d rounds (through %d)\n", in.Training, in.Cutoff)
	fmt.Printf("Weights:            %s\n", in.Weights)

	nums := make([]string, len(in.Top))
	for i, rec := range in.Top {
		nums[i] = fmt.Sprintf("%d", rec.Number)
	}
	fmt.Printf("Top %d numbers:      %s (%d drawn)\n", len(in.Top), strings.Join(nums, " "), in.TopHits)

	fmt.Println("Drawn numbers before the round:")
	for _, p := range in.DrawnProfiles {
		fmt.Printf("  %2d  seen %3d  last 50 %2d  absent %3d  hotness %5.2f\n",
			p.Number, p.TotalFrequency, p.Recent50, p.Absence, p.Hotness)
	}
	fmt.Printf("Drawn set score:    %.2f\n", in.DrawnScore.Total())

	fmt.Println("Tickets:")
	for _, p := range in.Predictions {
		rank := "-"
		if p.Rank > 0 {
			rank = fmt.Sprintf("rank %d", p.Rank)
		}
		fmt.Printf("  %-20s score %6.2f  matches %d  %s\n", p.Combination, p.Score, p.Matches, rank)
	}
	if in.Warning != "" {
		fmt.Printf("warning: %s\n", in.Warning)
	}
}
