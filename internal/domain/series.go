package domain

import (
	"fmt"
	"sort"
)

// Series is an immutable, round-ascending view over historical draws.
type Series struct {
	draws []DrawRecord
}

// NewSeries validates draws, rejects duplicate rounds, and sorts by round.
// Input may be in either order.
func NewSeries(draws []DrawRecord) (*Series, error) {
	out := make([]DrawRecord, len(draws))
	for i := range draws {
		d := draws[i]
		d.normalize()
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("round %d: %w", d.Round, err)
		}
		out[i] = d
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	for i := 1; i < len(out); i++ {
		if out[i].Round == out[i-1].Round {
			return nil, newValidationError("round", ReasonDuplicate, "round %d appears twice", out[i].Round)
		}
	}
	return &Series{draws: out}, nil
}

// NewSeriesFromPointers is NewSeries for storage results.
func NewSeriesFromPointers(draws []*DrawRecord) (*Series, error) {
	flat := make([]DrawRecord, 0, len(draws))
	for _, d := range draws {
		if d != nil {
			flat = append(flat, *d)
		}
	}
	return NewSeries(flat)
}

// Len returns the number of draws.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.draws)
}

// At returns the i-th draw in ascending order.
func (s *Series) At(i int) DrawRecord {
	return s.draws[i]
}

// Draws returns a copy of the underlying draws.
func (s *Series) Draws() []DrawRecord {
	out := make([]DrawRecord, len(s.draws))
	copy(out, s.draws)
	return out
}

// FirstRound returns the lowest round, or 0 if empty.
func (s *Series) FirstRound() int {
	if s.Len() == 0 {
		return 0
	}
	return s.draws[0].Round
}

// LastRound returns the highest round, or 0 if empty.
func (s *Series) LastRound() int {
	if s.Len() == 0 {
		return 0
	}
	return s.draws[len(s.draws)-1].Round
}

// Round looks up a single round.
func (s *Series) Round(round int) (DrawRecord, bool) {
	i := sort.Search(len(s.draws), func(i int) bool { return s.draws[i].Round >= round })
	if i < len(s.draws) && s.draws[i].Round == round {
		return s.draws[i], true
	}
	return DrawRecord{}, false
}

// Until returns the draws with round <= cutoff. The result shares storage
// with s; Series is never mutated so this is safe.
func (s *Series) Until(cutoff int) *Series {
	i := sort.Search(len(s.draws), func(i int) bool { return s.draws[i].Round > cutoff })
	return &Series{draws: s.draws[:i:i]}
}

// Before returns the draws with round < r.
func (s *Series) Before(r int) *Series {
	return s.Until(r - 1)
}

// Recent returns the last n draws, newest first.
func (s *Series) Recent(n int) []DrawRecord {
	if n > len(s.draws) {
		n = len(s.draws)
	}
	out := make([]DrawRecord, 0, n)
	for i := len(s.draws) - 1; i >= len(s.draws)-n; i-- {
		out = append(out, s.draws[i])
	}
	return out
}
