package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

// OptimalWeightsStore implements storage.OptimalWeightsStore using PostgreSQL.
// Trials are stored as a JSONB document next to the run summary.
type OptimalWeightsStore struct {
	pool *Pool
}

// NewOptimalWeightsStore creates a new OptimalWeightsStore.
func NewOptimalWeightsStore(pool *Pool) *OptimalWeightsStore {
	return &OptimalWeightsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OptimalWeightsStore = (*OptimalWeightsStore)(nil)

const selectRunColumns = `
	SELECT run_id, strategy, threshold, from_round, to_round,
		best_frequency, best_trend, best_absence, best_hotness, best_score,
		trials, created_at
	FROM optimization_runs
`

// SaveRun appends the run to history. Returns ErrDuplicateKey if RunID exists.
func (s *OptimalWeightsStore) SaveRun(ctx context.Context, run *domain.OptimizationRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}
	trials, err := json.Marshal(run.Trials)
	if err != nil {
		return fmt.Errorf("marshal trials: %w", err)
	}

	query := `
		INSERT INTO optimization_runs (
			run_id, strategy, threshold, from_round, to_round,
			best_frequency, best_trend, best_absence, best_hotness, best_score,
			trials, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.pool.Exec(ctx, query,
		run.RunID, run.Strategy, run.Threshold, run.FromRound, run.ToRound,
		run.Best.Frequency, run.Best.Trend, run.Best.Absence, run.Best.Hotness, run.BestScore,
		trials, run.CreatedAt.UTC(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert optimization run: %w", err)
	}
	return nil
}

// GetLatest returns the most recently saved run. Returns ErrNotFound if none.
func (s *OptimalWeightsStore) GetLatest(ctx context.Context, strategy string, threshold int) (*domain.OptimizationRun, error) {
	row := s.pool.QueryRow(ctx, selectRunColumns+`
		WHERE strategy = $1 AND threshold = $2
		ORDER BY saved_seq DESC
		LIMIT 1
	`, strategy, threshold)
	run, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest optimization run: %w", err)
	}
	return run, nil
}

// GetRun retrieves one run by id. Returns ErrNotFound if not exists.
func (s *OptimalWeightsStore) GetRun(ctx context.Context, runID string) (*domain.OptimizationRun, error) {
	row := s.pool.QueryRow(ctx, selectRunColumns+` WHERE run_id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get optimization run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs for (strategy, threshold), newest first.
func (s *OptimalWeightsStore) ListRuns(ctx context.Context, strategy string, threshold int) ([]*domain.OptimizationRun, error) {
	rows, err := s.pool.Query(ctx, selectRunColumns+`
		WHERE strategy = $1 AND threshold = $2
		ORDER BY saved_seq DESC
	`, strategy, threshold)
	if err != nil {
		return nil, fmt.Errorf("list optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.OptimizationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan optimization run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate optimization run rows: %w", err)
	}
	return runs, nil
}

// scanRun scans a single row into an OptimizationRun.
func scanRun(row pgx.Row) (*domain.OptimizationRun, error) {
	var (
		run    domain.OptimizationRun
		trials []byte
	)
	err := row.Scan(
		&run.RunID, &run.Strategy, &run.Threshold, &run.FromRound, &run.ToRound,
		&run.Best.Frequency, &run.Best.Trend, &run.Best.Absence, &run.Best.Hotness, &run.BestScore,
		&trials, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(trials, &run.Trials); err != nil {
		return nil, fmt.Errorf("unmarshal trials of run %s: %w", run.RunID, err)
	}
	run.CreatedAt = run.CreatedAt.UTC()
	return &run, nil
}
