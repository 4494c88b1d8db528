// Package ingestion loads draw histories and syncs them into a DrawStore.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/observability"
	"lotto-lab/internal/storage"
)

// DrawSource provides historical draws in any order.
type DrawSource interface {
	Fetch(ctx context.Context) ([]domain.DrawRecord, error)
}

// CSVFileSource reads draws from a CSV export on disk.
type CSVFileSource struct {
	Path string
}

// Fetch implements DrawSource.
func (s CSVFileSource) Fetch(_ context.Context) ([]domain.DrawRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open draw csv: %w", err)
	}
	defer f.Close()

	draws, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return draws, nil
}

// StaticSource serves a fixed slice. Useful for fixtures.
type StaticSource []domain.DrawRecord

// Fetch implements DrawSource.
func (s StaticSource) Fetch(_ context.Context) ([]domain.DrawRecord, error) {
	out := make([]domain.DrawRecord, len(s))
	copy(out, s)
	return out, nil
}

// SyncResult summarizes one Sync call.
type SyncResult struct {
	Fetched     int
	Inserted    int
	Skipped     int // already stored
	LatestRound int
	Gaps        []int
}

// Manager moves draws from a source into a store. Draws are append-only:
// rounds at or below the store's latest round are skipped, never updated.
type Manager struct {
	source DrawSource
	store  storage.DrawStore
	log    zerolog.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Source DrawSource
	Store  storage.DrawStore
	Logger zerolog.Logger
}

// NewManager creates a new ingestion manager.
func NewManager(opts ManagerOptions) *Manager {
	return &Manager{
		source: opts.Source,
		store:  opts.Store,
		log:    opts.Logger.With().Str("component", "ingestion").Logger(),
	}
}

// Sync fetches every draw and inserts the rounds newer than the store's latest.
func (m *Manager) Sync(ctx context.Context) (SyncResult, error) {
	if m.source == nil || m.store == nil {
		return SyncResult{}, errors.New("ingestion: source and store are required")
	}

	draws, err := m.source.Fetch(ctx)
	if err != nil {
		observability.RecordDrawRejected("fetch")
		return SyncResult{}, err
	}
	SortDraws(draws)
	if err := ValidateDrawOrdering(draws); err != nil {
		observability.RecordDrawRejected("ordering")
		return SyncResult{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	latest, err := m.store.LatestRound(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("latest stored round: %w", err)
	}

	res := SyncResult{Fetched: len(draws), LatestRound: latest, Gaps: Gaps(draws)}
	var fresh []*domain.DrawRecord
	for i := range draws {
		if draws[i].Round <= latest {
			res.Skipped++
			continue
		}
		fresh = append(fresh, &draws[i])
	}

	if len(fresh) > 0 {
		if err := m.store.InsertBulk(ctx, fresh); err != nil {
			if errors.Is(err, storage.ErrInvalidInput) {
				observability.RecordDrawRejected("invalid")
			}
			return res, fmt.Errorf("insert draws: %w", err)
		}
		res.Inserted = len(fresh)
		res.LatestRound = fresh[len(fresh)-1].Round
	}

	observability.RecordDrawsIngested(res.Inserted, res.LatestRound)
	observability.RecordIngestionSuccess(time.Now().Unix())
	m.log.Info().
		Int("fetched", res.Fetched).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Int("latest_round", res.LatestRound).
		Ints("gaps", res.Gaps).
		Msg("draw sync complete")
	return res, nil
}

// LoadSeries reads every stored draw into a Series.
func LoadSeries(ctx context.Context, store storage.DrawStore) (*domain.Series, error) {
	draws, err := store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load draws: %w", err)
	}
	if len(draws) == 0 {
		return nil, fmt.Errorf("%w: no draws stored", domain.ErrInsufficientData)
	}
	return domain.NewSeriesFromPointers(draws)
}
