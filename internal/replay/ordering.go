package replay

import (
	"fmt"

	"lotto-lab/internal/domain"
)

// TargetRounds returns the rounds of series within [from, to], ascending.
// Every round in the range must be present.
func TargetRounds(series *domain.Series, from, to int) ([]int, error) {
	if from <= 0 || to < from {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, from, to)
	}
	rounds := make([]int, 0, to-from+1)
	for r := from; r <= to; r++ {
		if _, ok := series.Round(r); !ok {
			return nil, fmt.Errorf("%w: %d", ErrRoundNotFound, r)
		}
		rounds = append(rounds, r)
	}
	return rounds, nil
}

// CheckNoLookahead verifies the leakage invariant of a prepared round.
func CheckNoLookahead(r *Round) error {
	if r.Training.Len() > 0 && r.Training.LastRound() >= r.Target.Round {
		return fmt.Errorf("%w: round %d trained through %d", ErrLookahead, r.Target.Round, r.Training.LastRound())
	}
	return nil
}

// compareRounds returns negative, zero or positive like strings.Compare.
func compareRounds(a, b *Round) int {
	return a.Target.Round - b.Target.Round
}
