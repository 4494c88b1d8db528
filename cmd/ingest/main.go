// Command ingest loads a draw history export into the configured draw store,
// optionally appends a newly published draw, and can write the history back
// out as CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lotto-lab/internal/app"
	"lotto-lab/internal/config"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/ingestion"
	"lotto-lab/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	csvPath := flag.String("csv", cfg.DataCSV, "Draw history CSV export")
	add := flag.String("add", "", "Append one draw: round,date,n1,n2,n3,n4,n5,n6,bonus")
	writePath := flag.String("write", "", "Write the stored history to this CSV path (newest first)")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (empty = in-memory from CSV)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	cfg.DataCSV = *csvPath
	cfg.PostgresDSN = *postgresDSN
	log := logger.New(logger.Config{Level: *logLevel, Pretty: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open stores")
	}
	defer stores.Close()

	// the in-memory store was filled from the CSV on open
	if stores.DrawBackend == app.BackendPostgres {
		if _, err := os.Stat(cfg.DataCSV); err == nil {
			m := ingestion.NewManager(ingestion.ManagerOptions{
				Source: ingestion.CSVFileSource{Path: cfg.DataCSV},
				Store:  stores.Draws,
				Logger: log,
			})
			if _, err := m.Sync(ctx); err != nil {
				log.Fatal().Err(err).Msg("sync draws")
			}
		}
	}

	if *add != "" {
		d, err := ingestion.ParseDrawLine(*add)
		if err != nil {
			log.Fatal().Err(err).Msg("parse draw")
		}
		latest, err := stores.Draws.LatestRound(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("latest round")
		}
		if latest > 0 && d.Round != latest+1 {
			log.Warn().Int("round", d.Round).Int("latest", latest).Msg("appended round is not the next one")
		}
		if err := stores.Draws.Insert(ctx, &d); err != nil {
			log.Fatal().Err(err).Int("round", d.Round).Msg("insert draw")
		}
		log.Info().Int("round", d.Round).Str("numbers", d.Winning().String()).Int("bonus", d.Bonus).Msg("draw added")
		if stores.DrawBackend == app.BackendMemory && *writePath == "" {
			log.Warn().Msg("in-memory store: pass -write to keep the added draw")
		}
	}

	series, err := ingestion.LoadSeries(ctx, stores.Draws)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			log.Fatal().Str("csv", cfg.DataCSV).Msg("no draws stored")
		}
		log.Fatal().Err(err).Msg("load series")
	}
	draws := series.Draws()

	if *writePath != "" {
		if err := writeCSV(*writePath, draws); err != nil {
			log.Fatal().Err(err).Msg("write csv")
		}
		log.Info().Str("path", *writePath).Int("draws", len(draws)).Msg("history written")
	}

	fmt.Printf("backend:      %s\n", stores.DrawBackend)
	fmt.Printf("draws:        %d\n", series.Len())
	fmt.Printf("rounds:       %d - %d\n", series.FirstRound(), series.LastRound())
	if gaps := ingestion.Gaps(draws); len(gaps) > 0 {
		fmt.Printf("missing:      %v\n", gaps)
	}
}

func writeCSV(path string, draws []domain.DrawRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ingestion.WriteCSV(f, draws); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
