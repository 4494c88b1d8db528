package ingestion

import (
	"errors"
	"sort"

	"lotto-lab/internal/domain"
)

// ErrInvalidOrdering is returned when draws are not strictly ascending by round.
var ErrInvalidOrdering = errors.New("draws are not in ascending round order")

// SortDraws orders draws by round ASC.
func SortDraws(draws []domain.DrawRecord) {
	sort.SliceStable(draws, func(i, j int) bool {
		return draws[i].Round < draws[j].Round
	})
}

// ValidateDrawOrdering checks that rounds strictly increase.
// Returns ErrInvalidOrdering on a repeat or a step back.
func ValidateDrawOrdering(draws []domain.DrawRecord) error {
	for i := 1; i < len(draws); i++ {
		if draws[i-1].Round >= draws[i].Round {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// Gaps lists rounds missing between the first and last draw. Draws must be sorted.
func Gaps(draws []domain.DrawRecord) []int {
	var gaps []int
	for i := 1; i < len(draws); i++ {
		for r := draws[i-1].Round + 1; r < draws[i].Round; r++ {
			gaps = append(gaps, r)
		}
	}
	return gaps
}
