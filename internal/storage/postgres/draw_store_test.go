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

func testDraw(t *testing.T, round int, numbers []int, bonus int) *domain.DrawRecord {
	t.Helper()
	d, err := domain.NewDrawRecord(round, time.Date(2024, 1, 6, 20, 45, 0, 0, time.UTC).AddDate(0, 0, 7*round), numbers, bonus)
	require.NoError(t, err)
	return d
}

func TestDrawStore_InsertAndGetByRound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDrawStore(pool)
	ctx := context.Background()

	d := testDraw(t, 1, []int{3, 11, 17, 25, 38, 44}, 7)
	d.Prizes[0] = domain.PrizeTier{Winners: 2, Payout: 1_800_000_000}
	d.Prizes[4] = domain.PrizeTier{Winners: 900_000, Payout: 5000}

	require.NoError(t, store.Insert(ctx, d))

	got, err := store.GetByRound(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, d.Numbers, got.Numbers)
	assert.Equal(t, d.Bonus, got.Bonus)
	assert.Equal(t, d.Prizes, got.Prizes)
	assert.True(t, d.Date.Equal(got.Date))
}

func TestDrawStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDrawStore(pool)
	ctx := context.Background()

	d := testDraw(t, 5, []int{1, 2, 3, 4, 5, 6}, 7)
	require.NoError(t, store.Insert(ctx, d))

	err := store.Insert(ctx, d)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestDrawStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDrawStore(pool)
	d := &domain.DrawRecord{Round: 1, Numbers: [6]int{1, 2, 3, 4, 5, 6}, Bonus: 6}

	err := store.Insert(context.Background(), d)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestDrawStore_GetByRoundNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewDrawStore(pool).GetByRound(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDrawStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDrawStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testDraw(t, 2, []int{7, 8, 9, 10, 11, 12}, 13)))

	batch := []*domain.DrawRecord{
		testDraw(t, 1, []int{1, 2, 3, 4, 5, 6}, 7),
		testDraw(t, 2, []int{7, 8, 9, 10, 11, 12}, 13),
	}
	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByRound(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound, "failed batch must not leave partial rows")
}

func TestDrawStore_RangeQueries(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDrawStore(pool)
	ctx := context.Background()

	latest, err := store.LatestRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, latest)

	require.NoError(t, store.InsertBulk(ctx, []*domain.DrawRecord{
		testDraw(t, 3, []int{5, 10, 15, 20, 25, 30}, 35),
		testDraw(t, 1, []int{1, 2, 3, 4, 5, 6}, 7),
		testDraw(t, 2, []int{40, 41, 42, 43, 44, 45}, 1),
	}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].Round)
	assert.Equal(t, 3, all[2].Round)

	until, err := store.GetUntilRound(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, until, 2)

	latest, err = store.LatestRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, latest)
}
