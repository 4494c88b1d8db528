package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/observability"
	"lotto-lab/internal/storage"
)

// BacktestCacheStore implements storage.BacktestCacheStore using ClickHouse.
// Each cached round is one row keyed by (cache_key, round). Put rewrites
// every round of the entry with a newer updated_at and ReplacingMergeTree
// collapses older versions; reads use FINAL.
type BacktestCacheStore struct {
	conn *Conn
}

// NewBacktestCacheStore creates a new BacktestCacheStore.
func NewBacktestCacheStore(conn *Conn) *BacktestCacheStore {
	return &BacktestCacheStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BacktestCacheStore = (*BacktestCacheStore)(nil)

// Get retrieves an entry. Returns ErrNotFound if not exists.
func (s *BacktestCacheStore) Get(ctx context.Context, key string) (*domain.BacktestCacheEntry, error) {
	query := `
		SELECT
			strategy, freq_weight, trend_weight, absence_weight, hotness_weight,
			threshold, combos_per_round, seed,
			round, predicted, actual, bonus, matches, max_match, hit, requested, shortfall, updated_at
		FROM backtest_cache FINAL
		WHERE cache_key = ?
		ORDER BY round ASC
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, key)
	observability.RecordDBQuery("clickhouse", "get_backtest_cache", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query backtest cache: %w", err)
	}
	defer rows.Close()

	entry := &domain.BacktestCacheEntry{Key: key}
	for rows.Next() {
		var (
			threshold, bonus, maxMatch uint8
			combos, requested, short   uint16
			round                      uint32
			predicted                  string
			actual, matches            []uint8
			hit                        bool
			updatedAt                  time.Time
		)
		err := rows.Scan(
			&entry.Strategy, &entry.Weights.Frequency, &entry.Weights.Trend, &entry.Weights.Absence, &entry.Weights.Hotness,
			&threshold, &combos, &entry.Seed,
			&round, &predicted, &actual, &bonus, &matches, &maxMatch, &hit, &requested, &short, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan backtest cache row: %w", err)
		}

		r := domain.BacktestResult{
			Round:     int(round),
			Bonus:     int(bonus),
			MaxMatch:  int(maxMatch),
			Hit:       hit,
			Threshold: int(threshold),
			Requested: int(requested),
			Shortfall: int(short),
		}
		if err := json.Unmarshal([]byte(predicted), &r.Predicted); err != nil {
			return nil, fmt.Errorf("decode predicted for round %d: %w", round, err)
		}
		for i := 0; i < len(actual) && i < domain.PickCount; i++ {
			r.Actual[i] = int(actual[i])
		}
		r.Matches = make([]int, len(matches))
		for i, m := range matches {
			r.Matches[i] = int(m)
		}

		entry.Threshold = int(threshold)
		entry.CombosPerRound = int(combos)
		if updatedAt.After(entry.UpdatedAt) {
			entry.UpdatedAt = updatedAt.UTC()
		}
		entry.Results = append(entry.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest cache rows: %w", err)
	}

	if len(entry.Results) == 0 {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// Put replaces the entry stored under entry.Key.
func (s *BacktestCacheStore) Put(ctx context.Context, entry *domain.BacktestCacheEntry) error {
	if entry == nil || entry.Key == "" {
		return storage.ErrInvalidInput
	}
	if len(entry.Results) == 0 {
		return nil
	}

	updatedAt := entry.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO backtest_cache (
			cache_key, strategy, freq_weight, trend_weight, absence_weight, hotness_weight,
			threshold, combos_per_round, seed,
			round, predicted, actual, bonus, matches, max_match, hit, requested, shortfall, updated_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range entry.Results {
		predicted, err := json.Marshal(r.Predicted)
		if err != nil {
			return fmt.Errorf("encode predicted for round %d: %w", r.Round, err)
		}
		actual := make([]uint8, len(r.Actual))
		for i, n := range r.Actual {
			actual[i] = uint8(n)
		}
		matches := make([]uint8, len(r.Matches))
		for i, m := range r.Matches {
			matches[i] = uint8(m)
		}

		err = batch.Append(
			entry.Key, entry.Strategy,
			entry.Weights.Frequency, entry.Weights.Trend, entry.Weights.Absence, entry.Weights.Hotness,
			uint8(entry.Threshold), uint16(entry.CombosPerRound), entry.Seed,
			uint32(r.Round), string(predicted), actual, uint8(r.Bonus), matches, uint8(r.MaxMatch), r.Hit,
			uint16(r.Requested), uint16(r.Shortfall), updatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	start := time.Now()
	err = batch.Send()
	observability.RecordDBQuery("clickhouse", "put_backtest_cache", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Delete removes an entry. Deleting a missing key is not an error.
func (s *BacktestCacheStore) Delete(ctx context.Context, key string) error {
	if err := s.conn.Exec(ctx, `DELETE FROM backtest_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("delete backtest cache: %w", err)
	}
	return nil
}
