package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"lotto-lab/internal/domain"
)

// MatchProbability returns the probability that one uniformly random ticket
// matches exactly k winning numbers (hypergeometric).
func MatchProbability(k int) float64 {
	if k < 0 || k > domain.PickCount {
		return 0
	}
	losing := domain.NumberSpan - domain.PickCount
	return float64(combin.Binomial(domain.PickCount, k)) *
		float64(combin.Binomial(losing, domain.PickCount-k)) /
		float64(combin.Binomial(domain.NumberSpan, domain.PickCount))
}

// BaselineRate returns the percent probability that one random ticket
// matches at least threshold numbers.
func BaselineRate(threshold int) float64 {
	if threshold <= 0 {
		return 100
	}
	p := 0.0
	for k := threshold; k <= domain.PickCount; k++ {
		p += MatchProbability(k)
	}
	return p * 100
}

// ExpectedRate returns the percent probability that the best of n random
// tickets reaches threshold, treating tickets as independent. Zero tickets
// never hit.
func ExpectedRate(threshold, n int) float64 {
	if n <= 0 {
		return 0
	}
	if n == 1 {
		return BaselineRate(threshold)
	}
	p := BaselineRate(threshold) / 100
	return (1 - math.Pow(1-p, float64(n))) * 100
}

// BaselineNote states how the random baselines in reports are derived.
func BaselineNote() string {
	return fmt.Sprintf("Random baselines are exact hypergeometric probabilities: "+
		"one ticket reaches 3+ matches with %.2f%% and 4+ with %.3f%%. "+
		"Expected rates compound them over the tickets each round carried.",
		BaselineRate(3), BaselineRate(4))
}
