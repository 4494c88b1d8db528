// Package verification re-runs cached rate-regime rounds from scratch and
// checks that the memoized results still match. A divergence means the
// cache was written by a predictor that no longer behaves the same way.
package verification

import "lotto-lab/internal/domain"

// FieldDivergence represents a mismatch between cached and replayed values.
type FieldDivergence struct {
	Field    string `json:"field"`
	Expected any    `json:"expected"` // cached value
	Actual   any    `json:"actual"`   // replayed value
}

// RoundResult contains the result of verifying a single round.
type RoundResult struct {
	Round       int               `json:"round"`
	Match       bool              `json:"match"`
	Divergences []FieldDivergence `json:"divergences,omitempty"`
}

// Report contains results for one cache entry.
type Report struct {
	Key             string        `json:"key"`
	TotalRounds     int           `json:"total_rounds"`
	MatchedRounds   int           `json:"matched_rounds"`
	DivergentRounds int           `json:"divergent_rounds"`
	Repaired        bool          `json:"repaired"` // entry deleted after divergence
	Results         []RoundResult `json:"results"`
}

// OK reports whether every cached round reproduced.
func (r *Report) OK() bool {
	return r.DivergentRounds == 0
}

// CompareResults compares a cached round result with its replay.
func CompareResults(cached, replayed *domain.BacktestResult) []FieldDivergence {
	var divergences []FieldDivergence

	if cached.Round != replayed.Round {
		divergences = append(divergences, FieldDivergence{Field: "Round", Expected: cached.Round, Actual: replayed.Round})
	}
	if !equalCombinations(cached.Predicted, replayed.Predicted) {
		divergences = append(divergences, FieldDivergence{Field: "Predicted", Expected: cached.Predicted, Actual: replayed.Predicted})
	}
	if cached.Actual != replayed.Actual {
		divergences = append(divergences, FieldDivergence{Field: "Actual", Expected: cached.Actual, Actual: replayed.Actual})
	}
	if cached.Bonus != replayed.Bonus {
		divergences = append(divergences, FieldDivergence{Field: "Bonus", Expected: cached.Bonus, Actual: replayed.Bonus})
	}
	if !equalInts(cached.Matches, replayed.Matches) {
		divergences = append(divergences, FieldDivergence{Field: "Matches", Expected: cached.Matches, Actual: replayed.Matches})
	}
	if cached.MaxMatch != replayed.MaxMatch {
		divergences = append(divergences, FieldDivergence{Field: "MaxMatch", Expected: cached.MaxMatch, Actual: replayed.MaxMatch})
	}
	if cached.Hit != replayed.Hit {
		divergences = append(divergences, FieldDivergence{Field: "Hit", Expected: cached.Hit, Actual: replayed.Hit})
	}
	if cached.Shortfall != replayed.Shortfall {
		divergences = append(divergences, FieldDivergence{Field: "Shortfall", Expected: cached.Shortfall, Actual: replayed.Shortfall})
	}

	return divergences
}

func equalCombinations(a, b []domain.Combination) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
