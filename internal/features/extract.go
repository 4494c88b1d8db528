// Package features derives per-number statistics from a draw series.
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"lotto-lab/internal/domain"
)

// Recent window sizes, counted back from the newest draw in the series.
const (
	ShortWindow = 50
	LongWindow  = 100
)

// Profiles is indexed by number; index 0 is unused.
type Profiles [domain.MaxNumber + 1]domain.NumberProfile

// Get returns the profile for n.
func (p *Profiles) Get(n int) domain.NumberProfile {
	return p[n]
}

// All returns profiles for 1..45 in number order.
func (p *Profiles) All() []domain.NumberProfile {
	out := make([]domain.NumberProfile, 0, domain.NumberSpan)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		out = append(out, p[n])
	}
	return out
}

// Extract computes the profile of every number from series. Every profile is
// recomputed from scratch; nothing is carried over between calls.
func Extract(series *domain.Series) (*Profiles, error) {
	total := series.Len()
	if total == 0 {
		return nil, fmt.Errorf("extract features: %w: empty series", domain.ErrInsufficientData)
	}

	// age 0 is the newest draw
	ages := make([][]float64, domain.MaxNumber+1)
	var out Profiles
	for i := total - 1; i >= 0; i-- {
		age := total - 1 - i
		for _, n := range series.At(i).Numbers {
			p := &out[n]
			p.TotalFrequency++
			if age < ShortWindow {
				p.Recent50++
			}
			if age < LongWindow {
				p.Recent100++
			}
			ages[n] = append(ages[n], float64(age))
		}
	}

	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		p := &out[n]
		p.Number = n
		p.Zone = domain.ZoneOf(n)
		p.Odd = n%2 == 1
		if len(ages[n]) == 0 {
			p.Absence = total
		} else {
			p.Absence = int(ages[n][0])
		}
		p.GapMean, p.GapStdDev = gapStats(ages[n])
		p.Hotness = float64(p.Recent50) / float64(p.Absence+1) * 100
	}
	return &out, nil
}

// gapStats returns mean and population stddev of the gaps between
// consecutive appearances. Zero when there are fewer than two appearances.
func gapStats(ages []float64) (float64, float64) {
	if len(ages) < 2 {
		return 0, 0
	}
	gaps := make([]float64, len(ages)-1)
	for i := 1; i < len(ages); i++ {
		gaps[i-1] = ages[i] - ages[i-1]
	}
	mean, variance := stat.PopMeanVariance(gaps, nil)
	return mean, sqrtNonNeg(variance)
}

// sqrtNonNeg guards against tiny negative variances from rounding.
func sqrtNonNeg(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
