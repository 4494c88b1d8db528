// Package app wires configuration, storage backends and the orchestrator
// for the command-line tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"lotto-lab/internal/config"
	"lotto-lab/internal/ingestion"
	"lotto-lab/internal/orchestrator"
	"lotto-lab/internal/storage"
	chstore "lotto-lab/internal/storage/clickhouse"
	"lotto-lab/internal/storage/filestore"
	"lotto-lab/internal/storage/memory"
	"lotto-lab/internal/storage/migrations"
	pgstore "lotto-lab/internal/storage/postgres"
)

// Backend names.
const (
	BackendMemory     = "memory"
	BackendFile       = "file"
	BackendPostgres   = "postgres"
	BackendClickhouse = "clickhouse"
)

// Stores bundles the storage backends selected by configuration.
//
// Draws live in PostgreSQL when POSTGRES_DSN is set, otherwise in memory,
// loaded from the CSV export on open. Optimizer runs follow the draws
// (PostgreSQL or the file store). The backtest cache is ClickHouse when
// CLICKHOUSE_DSN is set, otherwise the file store.
type Stores struct {
	Draws   storage.DrawStore
	Cache   storage.BacktestCacheStore
	Weights storage.OptimalWeightsStore

	DrawBackend  string
	CacheBackend string

	closers []func()
}

// Close releases database connections.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenStores connects the configured backends and applies migrations.
func OpenStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	s := &Stores{}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		s.Draws = pgstore.NewDrawStore(pool)
		s.Weights = pgstore.NewOptimalWeightsStore(pool)
		s.DrawBackend = BackendPostgres
	} else {
		draws := memory.NewDrawStore()
		if err := loadCSV(ctx, cfg.DataCSV, draws, log); err != nil {
			return nil, err
		}
		weights, err := filestore.NewOptimalWeightsStore(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		s.Draws = draws
		s.Weights = weights
		s.DrawBackend = BackendMemory
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })
		s.Cache = chstore.NewBacktestCacheStore(conn)
		s.CacheBackend = BackendClickhouse
	} else {
		cache, err := filestore.NewBacktestCacheStore(cfg.CacheDir)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Cache = cache
		s.CacheBackend = BackendFile
	}

	log.Debug().
		Str("draws", s.DrawBackend).
		Str("cache", s.CacheBackend).
		Msg("stores opened")
	return s, nil
}

// loadCSV fills an in-memory store from the export. A missing file leaves
// the store empty; callers fail later with ErrInsufficientData.
func loadCSV(ctx context.Context, path string, store storage.DrawStore, log zerolog.Logger) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("draw csv not found")
		return nil
	}
	m := ingestion.NewManager(ingestion.ManagerOptions{
		Source: ingestion.CSVFileSource{Path: path},
		Store:  store,
		Logger: log,
	})
	if _, err := m.Sync(ctx); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// NewOrchestrator builds the orchestrator over s with the configured tuning.
func NewOrchestrator(cfg *config.Config, s *Stores, log zerolog.Logger) *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Options{
		Draws:   s.Draws,
		Cache:   s.Cache,
		Weights: s.Weights,
		Tuning:  cfg.Tuning,
		Logger:  log,
	})
}
