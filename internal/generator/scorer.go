package generator

import (
	"lotto-lab/internal/domain"
	"lotto-lab/internal/features"
	"lotto-lab/internal/scoring"
)

// Combination score bonuses.
const (
	consecutiveBonus = 10.0
	zoneBalanceBonus = 15.0
	parityBonus      = 10.0
	sumRangeBonus    = 10.0
	forbiddenPenalty = -10.0
	gridFactor       = 0.5
	spatialFactor    = 0.3
)

// Breakdown explains a combination score.
type Breakdown struct {
	Numbers     float64 `json:"numbers"`
	Consecutive float64 `json:"consecutive"`
	ZoneBalance float64 `json:"zone_balance"`
	Parity      float64 `json:"parity"`
	SumRange    float64 `json:"sum_range"`
	Grid        float64 `json:"grid"`
	Spatial     float64 `json:"spatial"`
	Forbidden   float64 `json:"forbidden"`
}

// Total sums every component.
func (b Breakdown) Total() float64 {
	return b.Numbers + b.Consecutive + b.ZoneBalance + b.Parity + b.SumRange + b.Grid + b.Spatial + b.Forbidden
}

// Scorer computes combination-level scores against a trained table.
type Scorer struct {
	table *scoring.Table
}

// NewScorer binds a scorer to table.
func NewScorer(table *scoring.Table) *Scorer {
	return &Scorer{table: table}
}

// Score returns the breakdown for c.
func (s *Scorer) Score(c domain.Combination) Breakdown {
	var b Breakdown
	for _, n := range c {
		b.Numbers += s.table.Total(n)
	}
	for i := 0; i+1 < len(c); i++ {
		if c[i+1] == c[i]+1 {
			b.Consecutive = consecutiveBonus
			break
		}
	}

	balanced := true
	for _, k := range features.SplitOf(c) {
		if k < 1 || k > 3 {
			balanced = false
		}
	}
	if balanced {
		b.ZoneBalance = zoneBalanceBonus
	}
	if odd := features.OddCount(c); odd >= 2 && odd <= 4 {
		b.Parity = parityBonus
	}

	p := s.table.Patterns()
	sum := float64(c.Sum())
	if sum >= p.SumMean-p.SumStd && sum <= p.SumMean+p.SumStd {
		b.SumRange = sumRangeBonus
	}
	b.Grid = GridScore(c) * gridFactor
	b.Spatial = SpatialScore(c).Total() * spatialFactor
	if p.ForbiddenPairs.CountIn(c) > 0 {
		b.Forbidden = forbiddenPenalty
	}
	return b
}
