package scoring

import (
	"sync"

	"lotto-lab/internal/domain"
)

// TableKey identifies a trained table. A series cutoff fully determines the
// training data because series are append-only.
type TableKey struct {
	Weights domain.WeightConfiguration
	Cutoff  int
}

// Cache memoizes trained tables by TableKey. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	tables  map[TableKey]*Table
	maxSize int
	hits    int
	misses  int
}

// NewCache creates a cache bounded to maxSize entries (0 = unbounded).
func NewCache(maxSize int) *Cache {
	return &Cache{tables: make(map[TableKey]*Table), maxSize: maxSize}
}

// Get returns the table for (w, series), training it on a miss. The series
// passed in must already be truncated to the intended cutoff.
func (c *Cache) Get(series *domain.Series, w domain.WeightConfiguration) (*Table, error) {
	key := TableKey{Weights: w, Cutoff: series.LastRound()}

	c.mu.Lock()
	if t, ok := c.tables[key]; ok {
		c.hits++
		c.mu.Unlock()
		return t, nil
	}
	c.misses++
	c.mu.Unlock()

	t, err := Train(series, w)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxSize > 0 && len(c.tables) >= c.maxSize {
		// full reset on overflow
		c.tables = make(map[TableKey]*Table)
	}
	c.tables[key] = t
	return t, nil
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Invalidate drops every cached table, e.g. after new draws are ingested.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = make(map[TableKey]*Table)
}
