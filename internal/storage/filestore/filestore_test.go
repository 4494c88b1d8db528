package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

func TestBacktestCacheStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBacktestCacheStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	entry := &domain.BacktestCacheEntry{
		Key:            "abc",
		Strategy:       domain.StrategyScore,
		Weights:        domain.DefaultWeights(),
		Threshold:      3,
		CombosPerRound: 1,
		Seed:           42,
		Results: []domain.BacktestResult{{
			Round:     7,
			Predicted: []domain.Combination{domain.MustCombination(1, 2, 3, 4, 5, 6)},
			Actual:    domain.MustCombination(1, 2, 3, 10, 20, 30),
			Bonus:     44,
			Matches:   []int{3},
			MaxMatch:  3,
			Hit:       true,
			Threshold: 3,
		}},
	}
	require.NoError(t, store.Put(ctx, entry))
	assert.FileExists(t, filepath.Join(dir, "backtest_cache_abc.json"))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, entry.Results, got.Results)
	assert.Equal(t, entry.Weights, got.Weights)

	require.NoError(t, store.Delete(ctx, "abc"))
	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBacktestCacheStore_RejectsPathKeys(t *testing.T) {
	store, err := NewBacktestCacheStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), &domain.BacktestCacheEntry{Key: "../escape"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestBacktestCacheStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBacktestCacheStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), &domain.BacktestCacheEntry{Key: "k"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "backtest_cache_k.json", entries[0].Name())
}

func TestOptimalWeightsStore_HistoryAndLatest(t *testing.T) {
	dir := t.TempDir()
	store, err := NewOptimalWeightsStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	first := &domain.OptimizationRun{RunID: "11111111-a", Strategy: "score", Threshold: 3, BestScore: 21, CreatedAt: base}
	second := &domain.OptimizationRun{RunID: "22222222-b", Strategy: "score", Threshold: 3, BestScore: 19, CreatedAt: base.Add(time.Hour)}
	other := &domain.OptimizationRun{RunID: "33333333-c", Strategy: "score", Threshold: 4, BestScore: 2, CreatedAt: base}

	require.NoError(t, store.SaveRun(ctx, first))
	require.NoError(t, store.SaveRun(ctx, second))
	require.NoError(t, store.SaveRun(ctx, other))

	assert.FileExists(t, filepath.Join(dir, "optimal_weights_score_3plus.json"))
	assert.FileExists(t, filepath.Join(dir, "optimal_weights_score_3plus_20260501_090000_11111111.json"))

	latest, err := store.GetLatest(ctx, "score", 3)
	require.NoError(t, err)
	assert.Equal(t, "22222222-b", latest.RunID)

	runs, err := store.ListRuns(ctx, "score", 3)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "22222222-b", runs[0].RunID)

	got, err := store.GetRun(ctx, "33333333-c")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Threshold)

	assert.ErrorIs(t, store.SaveRun(ctx, first), storage.ErrDuplicateKey)

	_, err = store.GetLatest(ctx, "hybrid", 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOptimalWeightsStore_RejectsPathStrategies(t *testing.T) {
	dir := t.TempDir()
	store, err := NewOptimalWeightsStore(filepath.Join(dir, "runs"))
	require.NoError(t, err)
	ctx := context.Background()

	// a file one level up must stay unreachable
	require.NoError(t, os.WriteFile(filepath.Join(dir, "optimal_weights_x_3plus.json"), []byte(`{"run_id":"leak"}`), 0o644))

	for _, strategy := range []string{"../optimal_weights_x", "..", "sub/score", "*", "sco?e", ""} {
		_, err := store.GetLatest(ctx, strategy, 3)
		assert.ErrorIs(t, err, storage.ErrInvalidInput, strategy)

		_, err = store.ListRuns(ctx, strategy, 3)
		assert.ErrorIs(t, err, storage.ErrInvalidInput, strategy)

		err = store.SaveRun(ctx, &domain.OptimizationRun{RunID: "r", Strategy: strategy})
		assert.ErrorIs(t, err, storage.ErrInvalidInput, strategy)
	}
}
