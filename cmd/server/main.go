// Command server runs the HTTP API with Prometheus metrics, the optimizer
// progress websocket and the scheduled weight re-tuning job.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lotto-lab/internal/app"
	"lotto-lab/internal/config"
	"lotto-lab/internal/server"
	"lotto-lab/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.HTTPPort, "HTTP port")
	schedule := flag.String("retune-schedule", cfg.Tuning.Optimizer.Schedule, "Cron expression for automatic re-tuning (empty = off)")
	flag.Parse()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()
	orch := app.NewOrchestrator(cfg, stores, log)

	if series, err := orch.Series(ctx); err != nil {
		log.Warn().Err(err).Msg("no draw history loaded yet")
	} else {
		log.Info().Int("draws", series.Len()).Int("latest_round", series.LastRound()).Msg("draw history loaded")
	}

	srv, err := server.New(server.Config{
		Port:         *port,
		Orchestrator: orch,
		Log:          log,
		Schedule:     *schedule,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create server")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("Shutdown complete")
}
