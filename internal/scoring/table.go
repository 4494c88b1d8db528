package scoring

import (
	"fmt"
	"sort"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/features"
)

// Table is the trained model: every number scored under one weight
// configuration at one historical cutoff. It is immutable once built and
// safe to share across goroutines.
type Table struct {
	weights  domain.WeightConfiguration
	cutoff   int
	rounds   int
	profiles *features.Profiles
	patterns *features.Patterns
	records  [domain.MaxNumber + 1]domain.ScoreRecord
	ranked   []domain.ScoreRecord
}

// Train extracts features from series and scores them with w.
func Train(series *domain.Series, w domain.WeightConfiguration) (*Table, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	profiles, err := features.Extract(series)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	patterns, err := features.AnalyzePatterns(series)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	t := &Table{
		weights:  w,
		cutoff:   series.LastRound(),
		rounds:   series.Len(),
		profiles: profiles,
		patterns: patterns,
	}
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		t.records[n] = Score(profiles.Get(n), w)
	}
	t.ranked = rank(t.records[domain.MinNumber:])
	return t, nil
}

// rank orders by total desc, number asc on ties.
func rank(records []domain.ScoreRecord) []domain.ScoreRecord {
	out := make([]domain.ScoreRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// Weights returns the configuration the table was scored with.
func (t *Table) Weights() domain.WeightConfiguration { return t.weights }

// Cutoff returns the last round included in training.
func (t *Table) Cutoff() int { return t.cutoff }

// Rounds returns the number of training draws.
func (t *Table) Rounds() int { return t.rounds }

// Profiles returns the underlying features.
func (t *Table) Profiles() *features.Profiles { return t.profiles }

// Patterns returns the structural statistics of the training series.
func (t *Table) Patterns() *features.Patterns { return t.patterns }

// Record returns the score record of n.
func (t *Table) Record(n int) domain.ScoreRecord { return t.records[n] }

// Total returns the total score of n.
func (t *Table) Total(n int) float64 { return t.records[n].Total }

// Rank returns all records, best first.
func (t *Table) Rank() []domain.ScoreRecord {
	out := make([]domain.ScoreRecord, len(t.ranked))
	copy(out, t.ranked)
	return out
}

// Top returns the n best numbers.
func (t *Table) Top(n int) []int {
	if n > len(t.ranked) {
		n = len(t.ranked)
	}
	if n < 0 {
		n = 0
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = t.ranked[i].Number
	}
	return out
}

// Probabilities normalizes totals into a distribution indexed by number
// (index 0 unused). Falls back to uniform when every total is zero.
func (t *Table) Probabilities() []float64 {
	out := make([]float64, domain.MaxNumber+1)
	sum := 0.0
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		sum += t.records[n].Total
	}
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		if sum > 0 {
			out[n] = t.records[n].Total / sum
		} else {
			out[n] = 1.0 / domain.NumberSpan
		}
	}
	return out
}
