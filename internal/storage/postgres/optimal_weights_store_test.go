package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

func testRun(id string, score float64, created time.Time) *domain.OptimizationRun {
	w := domain.WeightConfiguration{Frequency: 32, Trend: 28, Absence: 12, Hotness: 18}
	return &domain.OptimizationRun{
		RunID:     id,
		Strategy:  "score",
		Threshold: 3,
		FromRound: 900,
		ToRound:   1000,
		Best:      w,
		BestScore: score,
		CreatedAt: created,
		Trials: []domain.OptimizationTrial{
			{Index: 0, Phase: domain.PhaseRandom, Weights: domain.DefaultWeights(), Score: score - 1},
			{Index: 1, Phase: domain.PhaseRefine, Weights: w, Score: score},
		},
	}
}

func TestOptimalWeightsStore_SaveAndGetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOptimalWeightsStore(pool)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, testRun("run-a", 20, now)))
	require.NoError(t, store.SaveRun(ctx, testRun("run-b", 18, now.Add(time.Hour))))

	latest, err := store.GetLatest(ctx, "score", 3)
	require.NoError(t, err)
	assert.Equal(t, "run-b", latest.RunID, "latest is the last saved, not the best scored")
	assert.Equal(t, 18.0, latest.BestScore)
	require.Len(t, latest.Trials, 2)
	assert.Equal(t, domain.PhaseRefine, latest.Trials[1].Phase)

	runs, err := store.ListRuns(ctx, "score", 3)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].RunID)
	assert.Equal(t, "run-a", runs[1].RunID)
}

func TestOptimalWeightsStore_Duplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOptimalWeightsStore(pool)
	ctx := context.Background()
	run := testRun("run-dup", 10, time.Now().UTC())

	require.NoError(t, store.SaveRun(ctx, run))
	assert.ErrorIs(t, store.SaveRun(ctx, run), storage.ErrDuplicateKey)
}

func TestOptimalWeightsStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOptimalWeightsStore(pool)
	ctx := context.Background()

	_, err := store.GetLatest(ctx, "score", 4)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
