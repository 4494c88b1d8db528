package decision

import "fmt"

// Criteria holds the gate's tunable limits.
type Criteria struct {
	MinRounds int     // smallest window worth judging
	Alpha     float64 // significance level for the binomial test
	// LeakagePValue flags results too good to be true; a hit rate this far
	// above random usually means the target round leaked into training.
	LeakagePValue float64
	StreakFactor  float64 // allowed multiple of the expected longest miss run
}

// DefaultCriteria returns the standard gate limits.
func DefaultCriteria() Criteria {
	return Criteria{
		MinRounds:     30,
		Alpha:         0.05,
		LeakagePValue: 1e-9,
		StreakFactor:  2,
	}
}

// Evaluator evaluates decision criteria.
type Evaluator struct {
	c Criteria
}

// NewEvaluator creates a new decision evaluator.
func NewEvaluator(c Criteria) *Evaluator {
	return &Evaluator{c: c}
}

// Evaluate produces Result from Input.
// GO if ALL criteria pass and NO NO-GO triggers.
func (e *Evaluator) Evaluate(in Input) *Result {
	goCriteria := e.evaluateGOCriteria(in)
	nogoChecks := e.evaluateNOGOTriggers(in)

	decision := DecisionGO
	for _, c := range append(append([]CriterionResult(nil), goCriteria...), nogoChecks...) {
		if !c.Pass {
			decision = DecisionNOGO
			break
		}
	}

	return &Result{
		Strategy:   in.Strategy,
		Threshold:  in.Threshold,
		Decision:   decision,
		GOCriteria: goCriteria,
		NOGOChecks: nogoChecks,
	}
}

func (e *Evaluator) evaluateGOCriteria(in Input) []CriterionResult {
	return []CriterionResult{
		{
			Name:      "Rounds evaluated",
			Threshold: fmt.Sprintf(">= %d", e.c.MinRounds),
			Actual:    fmt.Sprintf("%d", in.Rounds),
			Pass:      in.Rounds >= e.c.MinRounds,
		},
		{
			Name:      "Lift over random",
			Threshold: "> 0",
			Actual:    fmt.Sprintf("%+.2fpp (%.2f%% vs %.2f%%)", in.Lift, in.HitRate, in.ExpectedRate),
			Pass:      in.Lift > 0,
		},
		{
			Name:      "Binomial significance",
			Threshold: fmt.Sprintf("p < %g", e.c.Alpha),
			Actual:    fmt.Sprintf("p = %.4f", in.PValue),
			Pass:      in.PValue < e.c.Alpha,
		},
		{
			Name:      "Average best match",
			Threshold: fmt.Sprintf("> %.3f", in.ExpectedAvgMatch),
			Actual:    fmt.Sprintf("%.3f", in.AvgMatch),
			Pass:      in.AvgMatch > in.ExpectedAvgMatch,
		},
	}
}

// evaluateNOGOTriggers evaluates the NO-GO triggers.
// Pass=true means NOT triggered.
func (e *Evaluator) evaluateNOGOTriggers(in Input) []CriterionResult {
	streakLimit := e.c.StreakFactor * in.ExpectedMissStreak
	return []CriterionResult{
		{
			Name:      "Edge disappears in a half",
			Threshold: "either half lift <= 0",
			Actual:    fmt.Sprintf("first=%+.2fpp, second=%+.2fpp", in.FirstHalfLift, in.SecondHalfLift),
			Pass:      in.FirstHalfLift > 0 && in.SecondHalfLift > 0,
		},
		{
			Name:      "Miss streak",
			Threshold: fmt.Sprintf("> %.1f rounds", streakLimit),
			Actual:    fmt.Sprintf("%d", in.LongestMissStreak),
			Pass:      float64(in.LongestMissStreak) <= streakLimit,
		},
		{
			Name:      "Suspected look-ahead",
			Threshold: fmt.Sprintf("p < %g", e.c.LeakagePValue),
			Actual:    fmt.Sprintf("p = %.2g", in.PValue),
			Pass:      in.PValue >= e.c.LeakagePValue,
		},
		{
			Name:      "Prediction shortfall",
			Threshold: "> 0 missing tickets",
			Actual:    fmt.Sprintf("%d", in.Shortfalls),
			Pass:      in.Shortfalls == 0,
		},
	}
}
