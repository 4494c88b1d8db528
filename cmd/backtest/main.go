// Command backtest runs walk-forward backtests over the stored draw history:
// the hit-rate regime (N tickets per round against a match threshold) or the
// fixed-wager regime (one ticket per round against a prize table).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lotto-lab/internal/app"
	"lotto-lab/internal/backtest"
	"lotto-lab/internal/config"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/reporting"
	"lotto-lab/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	regime := flag.String("regime", backtest.RegimeRate, "Backtest regime: rate or fixed")
	strategy := flag.String("strategy", domain.StrategyScore, "Generation strategy")
	weightsFlag := flag.String("weights", "", "Weights frequency,trend,absence,hotness (empty = latest optimized)")
	from := flag.Int("from", 0, "First target round (0 = window end minus optimizer window)")
	to := flag.Int("to", 0, "Last target round (0 = latest)")
	threshold := flag.Int("threshold", backtest.DefaultThreshold, "Rate regime: minimum matches for a hit (1-6)")
	combos := flag.Int("combos", 0, "Rate regime: tickets per round (0 = tuning)")
	seed := flag.Uint64("seed", 0, "Rate regime: generator seed (0 = tuning)")
	deterministic := flag.Bool("deterministic", false, "Enumerate the best-scored pool instead of sampling")
	noCache := flag.Bool("no-cache", false, "Rate regime: recompute every round")
	published := flag.Bool("published-payouts", false, "Fixed regime: pay the per-winner amounts each draw published")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	rounds := flag.Bool("rounds", false, "Output per-round results as CSV")
	gate := flag.Bool("gate", true, "Rate regime: print the GO/NO-GO decision gate")
	verify := flag.Bool("verify", false, "Rate regime: replay cached rounds and compare instead of running")
	repair := flag.Bool("repair", false, "With -verify: delete a cache entry that no longer reproduces")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel, Pretty: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var weights domain.WeightConfiguration
	if *weightsFlag != "" {
		if weights, err = domain.ParseWeights(*weightsFlag); err != nil {
			log.Fatal().Err(err).Msg("invalid -weights")
		}
	}

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()
	orch := app.NewOrchestrator(cfg, stores, log)

	switch *regime {
	case backtest.RegimeRate:
		req := backtest.RateRequest{
			From:           *from,
			To:             *to,
			Strategy:       *strategy,
			Weights:        weights,
			Threshold:      *threshold,
			CombosPerRound: *combos,
			Seed:           *seed,
			Deterministic:  *deterministic,
			NoCache:        *noCache,
		}
		if *verify {
			vr, err := orch.VerifyCache(ctx, req, *repair)
			if err != nil {
				log.Fatal().Err(err).Msg("verify cache")
			}
			if *outputJSON {
				printJSON(vr)
			} else {
				printVerification(vr)
			}
			if !vr.OK() && !vr.Repaired {
				os.Exit(1)
			}
			return
		}

		req.Progress = progressLogger(log)
		report, err := orch.RunBacktest(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("rate backtest")
		}
		switch {
		case *outputJSON:
			printJSON(report)
		case *rounds:
			fmt.Print(reporting.RenderRoundsCSV(report.Results))
		default:
			printRate(report)
			if *gate {
				printGate(report)
			}
		}

	case backtest.RegimeFixed:
		report, err := orch.RunFixedWager(ctx, backtest.FixedRequest{
			From:             *from,
			To:               *to,
			Strategy:         *strategy,
			Weights:          weights,
			Deterministic:    *deterministic,
			PublishedPayouts: *published,
			Progress:         progressLogger(log),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("fixed backtest")
		}
		switch {
		case *outputJSON:
			printJSON(report)
		case *rounds:
			fmt.Print(reporting.RenderWagerCSV(report.Results))
		default:
			printWager(report)
		}

	default:
		log.Fatal().Str("regime", *regime).Msg("regime must be rate or fixed")
	}
}
