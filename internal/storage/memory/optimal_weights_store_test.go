package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

func TestOptimalWeightsStore_LatestAndHistory(t *testing.T) {
	store := NewOptimalWeightsStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := &domain.OptimizationRun{RunID: "a", Strategy: "score", Threshold: 3, BestScore: 10, CreatedAt: base}
	second := &domain.OptimizationRun{RunID: "b", Strategy: "score", Threshold: 3, BestScore: 12, CreatedAt: base.Add(time.Hour)}
	other := &domain.OptimizationRun{RunID: "c", Strategy: "score", Threshold: 4, BestScore: 1, CreatedAt: base}

	for _, r := range []*domain.OptimizationRun{first, second, other} {
		if err := store.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun %s: %v", r.RunID, err)
		}
	}

	latest, err := store.GetLatest(ctx, "score", 3)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest.RunID != "b" {
		t.Errorf("expected latest b, got %s", latest.RunID)
	}

	runs, _ := store.ListRuns(ctx, "score", 3)
	if len(runs) != 2 || runs[0].RunID != "b" || runs[1].RunID != "a" {
		t.Errorf("unexpected history order: %+v", runs)
	}

	if err := store.SaveRun(ctx, first); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	if _, err := store.GetLatest(ctx, "grid", 3); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
