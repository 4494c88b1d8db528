package storage

import (
	"context"

	"lotto-lab/internal/domain"
)

// DrawStore provides access to the historical draw series. Draws are
// append-only facts.
type DrawStore interface {
	// Insert adds a new draw. Returns ErrDuplicateKey if the round exists.
	Insert(ctx context.Context, d *domain.DrawRecord) error

	// InsertBulk adds multiple draws atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, draws []*domain.DrawRecord) error

	// GetByRound retrieves one draw. Returns ErrNotFound if not exists.
	GetByRound(ctx context.Context, round int) (*domain.DrawRecord, error)

	// GetAll retrieves every draw, ordered by round ASC.
	GetAll(ctx context.Context) ([]*domain.DrawRecord, error)

	// GetUntilRound retrieves draws with round <= cutoff, ordered by round ASC.
	GetUntilRound(ctx context.Context, cutoff int) ([]*domain.DrawRecord, error)

	// LatestRound returns the highest stored round, or 0 when empty.
	LatestRound(ctx context.Context) (int, error)
}

// BacktestCacheStore holds memoized rate-regime results by cache key.
// Writers to the same key must be serialized by the caller.
type BacktestCacheStore interface {
	// Get retrieves an entry. Returns ErrNotFound if not exists.
	Get(ctx context.Context, key string) (*domain.BacktestCacheEntry, error)

	// Put replaces the entry stored under entry.Key.
	Put(ctx context.Context, entry *domain.BacktestCacheEntry) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// OptimalWeightsStore persists optimizer runs: an append-only history plus a
// latest pointer per (strategy, threshold).
type OptimalWeightsStore interface {
	// SaveRun appends the run to history and makes it the latest for its
	// (strategy, threshold). Returns ErrDuplicateKey if RunID exists.
	SaveRun(ctx context.Context, run *domain.OptimizationRun) error

	// GetLatest returns the most recently saved run. Returns ErrNotFound if none.
	GetLatest(ctx context.Context, strategy string, threshold int) (*domain.OptimizationRun, error)

	// GetRun retrieves one run by id. Returns ErrNotFound if not exists.
	GetRun(ctx context.Context, runID string) (*domain.OptimizationRun, error)

	// ListRuns returns runs for (strategy, threshold), newest first.
	ListRuns(ctx context.Context, strategy string, threshold int) ([]*domain.OptimizationRun, error)
}
