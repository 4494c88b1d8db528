// Package decision judges whether a strategy's rate-regime backtest beats
// uniformly random tickets by enough to act on.
package decision

// Decision represents the final GO/NO-GO result.
type Decision string

const (
	DecisionGO   Decision = "GO"
	DecisionNOGO Decision = "NO-GO"
)

// Input contains the numeric facts the gate evaluates.
type Input struct {
	Strategy  string
	Threshold int
	Combos    int
	From, To  int

	Rounds       int
	Hits         int
	HitRate      float64 // percent
	ExpectedRate float64 // percent, random tickets at Combos per round
	Lift         float64 // percentage points

	AvgMatch         float64
	ExpectedAvgMatch float64 // random best-of-Combos mean

	// Lift over each half of the window, earlier half first.
	FirstHalfLift  float64
	SecondHalfLift float64

	LongestMissStreak  int
	ExpectedMissStreak float64
	PValue             float64 // one-sided binomial, P(X >= Hits) under random play

	Shortfalls int // tickets the generator failed to produce
}

// CriterionResult represents pass/fail for one criterion.
type CriterionResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// Result contains the final decision with checklist.
type Result struct {
	Strategy   string
	Threshold  int
	Decision   Decision
	GOCriteria []CriterionResult
	NOGOChecks []CriterionResult // Pass=false means triggered
}
