package features

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"lotto-lab/internal/domain"
)

// Overheat rule: a number is overheated when it appeared in at least
// OverheatMinHits of the last OverheatWindow draws.
const (
	OverheatWindow  = 10
	OverheatMinHits = 4
)

// ZoneSplit counts numbers per zone (low, mid, high).
type ZoneSplit [domain.ZoneCount]int

// SplitOf returns the zone split of c.
func SplitOf(c domain.Combination) ZoneSplit {
	var z ZoneSplit
	for _, n := range c {
		z[domain.ZoneOf(n)]++
	}
	return z
}

// OddCount returns the number of odd values in c.
func OddCount(c domain.Combination) int {
	odd := 0
	for _, n := range c {
		if n%2 == 1 {
			odd++
		}
	}
	return odd
}

// PairCount is a consecutive pair and how often it was drawn.
type PairCount struct {
	Low   int `json:"low"`
	Count int `json:"count"`
}

// High returns the upper number of the pair.
func (p PairCount) High() int { return p.Low + 1 }

// Patterns are structural statistics of the winning sets of a series.
type Patterns struct {
	SumMean float64
	SumStd  float64

	CommonSplit    ZoneSplit
	CommonOddCount int

	// ConsecutivePairs is sorted by count desc, then low asc.
	ConsecutivePairs []PairCount
	ConsecutiveRate  float64 // share of draws holding at least one consecutive pair

	ForbiddenPairs domain.PairSet   // pairs never drawn together
	Overheated     domain.NumberSet // see OverheatWindow
}

// PopularPairs returns the top n consecutive pairs.
func (p *Patterns) PopularPairs(n int) []PairCount {
	if n > len(p.ConsecutivePairs) {
		n = len(p.ConsecutivePairs)
	}
	return p.ConsecutivePairs[:n]
}

// AnalyzePatterns computes Patterns over every draw of series.
func AnalyzePatterns(series *domain.Series) (*Patterns, error) {
	total := series.Len()
	if total == 0 {
		return nil, fmt.Errorf("analyze patterns: %w: empty series", domain.ErrInsufficientData)
	}

	sums := make([]float64, total)
	splits := make(map[ZoneSplit]int)
	odds := make(map[int]int)
	pairFreq := make(map[int]int)
	withConsecutive := 0
	var seen [domain.MaxNumber + 1][domain.MaxNumber + 1]bool

	for i := 0; i < total; i++ {
		d := series.At(i)
		c := d.Winning()
		sums[i] = float64(c.Sum())
		splits[SplitOf(c)]++
		odds[OddCount(c)]++

		found := false
		for j := 0; j+1 < domain.PickCount; j++ {
			if c[j+1] == c[j]+1 {
				pairFreq[c[j]]++
				found = true
			}
		}
		if found {
			withConsecutive++
		}
		for a := 0; a < domain.PickCount; a++ {
			for b := a + 1; b < domain.PickCount; b++ {
				seen[c[a]][c[b]] = true
			}
		}
	}

	p := &Patterns{}
	var variance float64
	p.SumMean, variance = stat.PopMeanVariance(sums, nil)
	p.SumStd = sqrtNonNeg(variance)
	p.CommonSplit = mostCommonSplit(splits)
	p.CommonOddCount = mostCommonInt(odds)
	p.ConsecutiveRate = float64(withConsecutive) / float64(total)

	for low, count := range pairFreq {
		p.ConsecutivePairs = append(p.ConsecutivePairs, PairCount{Low: low, Count: count})
	}
	sort.Slice(p.ConsecutivePairs, func(i, j int) bool {
		a, b := p.ConsecutivePairs[i], p.ConsecutivePairs[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Low < b.Low
	})

	for a := domain.MinNumber; a <= domain.MaxNumber; a++ {
		for b := a + 1; b <= domain.MaxNumber; b++ {
			if !seen[a][b] {
				p.ForbiddenPairs.Add(a, b)
			}
		}
	}

	var recentHits [domain.MaxNumber + 1]int
	for _, d := range series.Recent(OverheatWindow) {
		for _, n := range d.Numbers {
			recentHits[n]++
		}
	}
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		if recentHits[n] >= OverheatMinHits {
			p.Overheated.Add(n)
		}
	}
	return p, nil
}

// Ties resolve to the lexicographically smallest split for determinism.
func mostCommonSplit(m map[ZoneSplit]int) ZoneSplit {
	var best ZoneSplit
	bestCount := -1
	for s, c := range m {
		if c > bestCount || (c == bestCount && lessSplit(s, best)) {
			best, bestCount = s, c
		}
	}
	return best
}

func lessSplit(a, b ZoneSplit) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func mostCommonInt(m map[int]int) int {
	best, bestCount := 0, -1
	for v, c := range m {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}
