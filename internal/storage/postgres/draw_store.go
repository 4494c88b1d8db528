package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/observability"
	"lotto-lab/internal/storage"
)

// DrawStore implements storage.DrawStore using PostgreSQL.
type DrawStore struct {
	pool *Pool
}

// NewDrawStore creates a new DrawStore.
func NewDrawStore(pool *Pool) *DrawStore {
	return &DrawStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DrawStore = (*DrawStore)(nil)

const insertDrawQuery = `
	INSERT INTO draws (
		round, draw_date, numbers, bonus, prize_winners, prize_payouts
	) VALUES ($1, $2, $3, $4, $5, $6)
`

const selectDrawColumns = `
	SELECT round, draw_date, numbers, bonus, prize_winners, prize_payouts
	FROM draws
`

// Insert adds a new draw. Returns ErrDuplicateKey if the round exists.
func (s *DrawStore) Insert(ctx context.Context, d *domain.DrawRecord) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	start := time.Now()
	_, err := s.pool.Exec(ctx, insertDrawQuery, drawArgs(d)...)
	observability.RecordDBQuery("postgres", "insert_draw", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert draw: %w", err)
	}
	return nil
}

// InsertBulk adds multiple draws atomically. Fails entire batch on any duplicate.
func (s *DrawStore) InsertBulk(ctx context.Context, draws []*domain.DrawRecord) error {
	if len(draws) == 0 {
		return nil
	}
	for _, d := range draws {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: round %d: %v", storage.ErrInvalidInput, d.Round, err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, d := range draws {
		batch.Queue(insertDrawQuery, drawArgs(d)...)
	}

	start := time.Now()
	results := tx.SendBatch(ctx, batch)
	for range draws {
		if _, err := results.Exec(); err != nil {
			results.Close()
			observability.RecordDBQuery("postgres", "insert_draws", time.Since(start).Seconds(), err)
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert draw in bulk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	observability.RecordDBQuery("postgres", "insert_draws", time.Since(start).Seconds(), nil)

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRound retrieves one draw. Returns ErrNotFound if not exists.
func (s *DrawStore) GetByRound(ctx context.Context, round int) (*domain.DrawRecord, error) {
	row := s.pool.QueryRow(ctx, selectDrawColumns+` WHERE round = $1`, round)
	d, err := scanDraw(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get draw by round: %w", err)
	}
	return d, nil
}

// GetAll retrieves every draw, ordered by round ASC.
func (s *DrawStore) GetAll(ctx context.Context) ([]*domain.DrawRecord, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, selectDrawColumns+` ORDER BY round ASC`)
	observability.RecordDBQuery("postgres", "get_draws", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get all draws: %w", err)
	}
	defer rows.Close()

	return scanDraws(rows)
}

// GetUntilRound retrieves draws with round <= cutoff, ordered by round ASC.
func (s *DrawStore) GetUntilRound(ctx context.Context, cutoff int) ([]*domain.DrawRecord, error) {
	rows, err := s.pool.Query(ctx, selectDrawColumns+` WHERE round <= $1 ORDER BY round ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("get draws until round: %w", err)
	}
	defer rows.Close()

	return scanDraws(rows)
}

// LatestRound returns the highest stored round, or 0 when empty.
func (s *DrawStore) LatestRound(ctx context.Context) (int, error) {
	var latest int
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(round), 0) FROM draws`).Scan(&latest); err != nil {
		return 0, fmt.Errorf("get latest round: %w", err)
	}
	return latest, nil
}

func drawArgs(d *domain.DrawRecord) []any {
	numbers := make([]int32, len(d.Numbers))
	for i, n := range d.Numbers {
		numbers[i] = int32(n)
	}
	winners := make([]int64, len(d.Prizes))
	payouts := make([]int64, len(d.Prizes))
	for i, p := range d.Prizes {
		winners[i] = p.Winners
		payouts[i] = p.Payout
	}
	return []any{d.Round, d.Date.UTC(), numbers, int32(d.Bonus), winners, payouts}
}

// scanDraw scans a single row into a DrawRecord.
func scanDraw(row pgx.Row) (*domain.DrawRecord, error) {
	var (
		d       domain.DrawRecord
		numbers []int32
		bonus   int32
		winners []int64
		payouts []int64
	)
	if err := row.Scan(&d.Round, &d.Date, &numbers, &bonus, &winners, &payouts); err != nil {
		return nil, err
	}
	if len(numbers) != domain.PickCount {
		return nil, fmt.Errorf("round %d: stored %d numbers", d.Round, len(numbers))
	}
	for i, n := range numbers {
		d.Numbers[i] = int(n)
	}
	d.Bonus = int(bonus)
	for i := range d.Prizes {
		if i < len(winners) {
			d.Prizes[i].Winners = winners[i]
		}
		if i < len(payouts) {
			d.Prizes[i].Payout = payouts[i]
		}
	}
	d.Date = d.Date.UTC()
	return &d, nil
}

// scanDraws scans multiple rows into a slice of DrawRecord.
func scanDraws(rows pgx.Rows) ([]*domain.DrawRecord, error) {
	var draws []*domain.DrawRecord

	for rows.Next() {
		d, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draw row: %w", err)
		}
		draws = append(draws, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate draw rows: %w", err)
	}

	return draws, nil
}
