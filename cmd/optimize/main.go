// Command optimize searches scoring weights that maximize the walk-forward
// hit rate and saves the run as the latest weights for its strategy and
// threshold.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"lotto-lab/internal/app"
	"lotto-lab/internal/config"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/optimizer"
	"lotto-lab/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	t := cfg.Tuning.Optimizer

	strategy := flag.String("strategy", t.Strategy, "Strategy whose hit rate is optimized")
	threshold := flag.Int("threshold", t.Threshold, "Minimum matches for a hit (1-6)")
	from := flag.Int("from", 0, "First target round (0 = latest minus window)")
	to := flag.Int("to", 0, "Last target round (0 = latest)")
	trials := flag.Int("trials", t.Trials, "Random-search evaluations")
	refine := flag.Bool("refine", t.Refine, "Probe ±step and ±2·step around the best")
	step := flag.Float64("step", t.Step, "Refine step")
	fineTune := flag.Int("fine-tune", t.FineTuneTrials, "Fine-tune evaluations (0 = off)")
	fineStep := flag.Float64("fine-tune-step", t.FineTuneStep, "Fine-tune perturbation radius")
	seed := flag.Uint64("seed", t.Seed, "Search seed")
	save := flag.Bool("save-tuning", false, "Write the best weights into the tuning file as the new defaults")
	outputJSON := flag.Bool("json", false, "Output the run as JSON")
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

	run, err := orch.Optimize(ctx, optimizer.Request{
		Strategy:       *strategy,
		Threshold:      *threshold,
		From:           *from,
		To:             *to,
		Trials:         *trials,
		Refine:         *refine,
		Step:           *step,
		FineTuneTrials: *fineTune,
		FineTuneStep:   *fineStep,
		Seed:           *seed,
		Progress: func(p optimizer.Progress) {
			log.Info().
				Int("done", p.Done).
				Int("planned", p.Planned).
				Str("phase", p.Trial.Phase).
				Float64("score", p.Trial.Score).
				Float64("best", p.BestScore).
				Msg("trial")
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("optimize")
	}

	if *save {
		cfg.Tuning.Weights = run.Best
		if err := config.SaveTuning(cfg.TuningFile, cfg.Tuning); err != nil {
			log.Fatal().Err(err).Str("path", cfg.TuningFile).Msg("save tuning")
		}
		log.Info().Str("path", cfg.TuningFile).Msg("tuning updated")
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(run)
		return
	}
	printRun(run)
}

func printRun(run *domain.OptimizationRun) {
	fmt.Println()
	fmt.Println("=== Weight Optimization ===")
	fmt.Printf("Run:                %s\n", run.RunID)
	fmt.Printf("Strategy:           %s (%d+ matches)\n", run.Strategy, run.Threshold)
	fmt.Printf("Rounds:             %d - %d\n", run.FromRound, run.ToRound)
	fmt.Printf("Evaluations:        %d\n", len(run.Trials))
	fmt.Printf("Best weights:       %s\n", run.Best)
	fmt.Printf("Best hit rate:      %.2f%%\n", run.BestScore)
	fmt.Println()

	trials := append([]domain.OptimizationTrial(nil), run.Trials...)
	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Score > trials[j].Score })
	if len(trials) > 5 {
		trials = trials[:5]
	}
	fmt.Println("Top trials:")
	for _, tr := range trials {
		fmt.Printf("  %-9s %6.2f%%  %s\n", tr.Phase, tr.Score, tr.Weights)
	}
}
