package generator

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/scoring"
)

// Pool sizes, by rank.
const (
	scorePoolSize       = 20
	hybridScorePoolSize = 15
	wideTopPoolSize     = 30
	spatialPoolSize     = 35
	popularPairCount    = 10
	minSpatialScore     = 70.0
	minGridDistance     = 3.5
	maxGridDistance     = 6.0

	// DeterministicPoolSize bounds best-only enumeration to C(12, 6) = 924 sets.
	DeterministicPoolSize = 12
)

// Policy proposes candidate numbers for the rejection loop.
type Policy interface {
	// Name returns the strategy name.
	Name() string

	// Draw proposes up to six numbers. ok is false when the pool cannot
	// produce a full proposal on this attempt.
	Draw(rng *rand.Rand) (nums []int, ok bool)

	// Accept applies policy-specific filters after structural validation.
	Accept(c domain.Combination) bool

	// Pool returns the numbers used for deterministic enumeration, best first.
	Pool() []int

	// ForceFilters reports whether strict mode with history filters is
	// mandatory for this policy.
	ForceFilters() bool
}

// PolicyFor creates the pool policy for a strategy name. Hybrid is not a
// pool policy; the Generator composes it from the others.
func PolicyFor(name string, table *scoring.Table) (Policy, error) {
	switch name {
	case domain.StrategyScore:
		return newTopPolicy(name, table, scorePoolSize, false), nil
	case domain.StrategyProbability:
		return newProbabilityPolicy(table), nil
	case domain.StrategyPattern:
		return newPatternPolicy(table), nil
	case domain.StrategyGrid:
		return newGridPolicy(table), nil
	case domain.StrategySpatial:
		return &spatialPolicy{topPolicy: newTopPolicy(name, table, spatialPoolSize, false)}, nil
	case domain.StrategyConsecutive:
		return newConsecutivePolicy(table), nil
	case domain.StrategySafe:
		return newTopPolicy(name, table, wideTopPoolSize, true), nil
	case domain.StrategyRandom:
		return newRandomPolicy(table), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, name)
	}
}

// sample draws k distinct elements of pool uniformly.
func sample(rng *rand.Rand, pool []int, k int) ([]int, bool) {
	if len(pool) < k {
		return nil, false
	}
	tmp := make([]int, len(pool))
	copy(tmp, pool)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(tmp)-i)
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp[:k], true
}

func without(pool []int, exclude []int) []int {
	skip := domain.NewNumberSet(exclude...)
	out := make([]int, 0, len(pool))
	for _, n := range pool {
		if !skip.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func filterSet(pool []int, keep *domain.NumberSet) []int {
	out := make([]int, 0, len(pool))
	for _, n := range pool {
		if keep.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func head(pool []int, n int) []int {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]int, n)
	copy(out, pool[:n])
	return out
}

// topPolicy samples uniformly from the top-N numbers by score.
type topPolicy struct {
	name   string
	pool   []int
	strict bool
}

func newTopPolicy(name string, table *scoring.Table, size int, forceFilters bool) *topPolicy {
	return &topPolicy{name: name, pool: table.Top(size), strict: forceFilters}
}

func (p *topPolicy) Name() string                   { return p.name }
func (p *topPolicy) Accept(domain.Combination) bool { return true }
func (p *topPolicy) Pool() []int                    { return head(p.pool, DeterministicPoolSize) }
func (p *topPolicy) ForceFilters() bool             { return p.strict }

func (p *topPolicy) Draw(rng *rand.Rand) ([]int, bool) {
	return sample(rng, p.pool, domain.PickCount)
}

// probabilityPolicy draws over all numbers weighted by normalized score,
// without replacement.
type probabilityPolicy struct {
	weights []float64 // index i holds number i+1
	ranked  []int
}

func newProbabilityPolicy(table *scoring.Table) *probabilityPolicy {
	probs := table.Probabilities()
	return &probabilityPolicy{weights: probs[domain.MinNumber:], ranked: table.Top(domain.NumberSpan)}
}

func (p *probabilityPolicy) Name() string                   { return domain.StrategyProbability }
func (p *probabilityPolicy) Accept(domain.Combination) bool { return true }
func (p *probabilityPolicy) Pool() []int                    { return head(p.ranked, DeterministicPoolSize) }
func (p *probabilityPolicy) ForceFilters() bool             { return false }

func (p *probabilityPolicy) Draw(rng *rand.Rand) ([]int, bool) {
	w := sampleuv.NewWeighted(p.weights, rng)
	out := make([]int, 0, domain.PickCount)
	for len(out) < domain.PickCount {
		idx, ok := w.Take()
		if !ok {
			return nil, false
		}
		out = append(out, idx+domain.MinNumber)
	}
	return out, true
}

// patternPolicy fills the most common zone split from the top 30 and keeps
// sets whose odd count is within one of the most common odd count.
type patternPolicy struct {
	top      []int
	zones    [domain.ZoneCount][]int
	split    [domain.ZoneCount]int
	oddCount int
}

func newPatternPolicy(table *scoring.Table) *patternPolicy {
	p := &patternPolicy{top: table.Top(wideTopPoolSize)}
	pat := table.Patterns()
	p.split = pat.CommonSplit
	p.oddCount = pat.CommonOddCount
	for _, n := range p.top {
		z := domain.ZoneOf(n)
		p.zones[z] = append(p.zones[z], n)
	}
	return p
}

func (p *patternPolicy) Name() string       { return domain.StrategyPattern }
func (p *patternPolicy) Pool() []int        { return head(p.top, DeterministicPoolSize) }
func (p *patternPolicy) ForceFilters() bool { return false }

func (p *patternPolicy) Accept(c domain.Combination) bool {
	odd := 0
	for _, n := range c {
		if n%2 == 1 {
			odd++
		}
	}
	return abs(odd-p.oddCount) <= 1
}

func (p *patternPolicy) Draw(rng *rand.Rand) ([]int, bool) {
	selected := make([]int, 0, domain.PickCount)
	for z, want := range p.split {
		if picked, ok := sample(rng, p.zones[z], want); ok {
			selected = append(selected, picked...)
		}
	}
	for len(selected) < domain.PickCount {
		rest := without(p.top, selected)
		if len(rest) == 0 {
			return nil, false
		}
		selected = append(selected, rest[rng.IntN(len(rest))])
	}
	return selected[:domain.PickCount], true
}

// gridPolicy favors the middle of the ticket grid, adds anti-diagonal cells,
// and avoids corners.
type gridPolicy struct {
	middle []int
	anti   []int
	rest   []int
}

func newGridPolicy(table *scoring.Table) *gridPolicy {
	top := table.Top(wideTopPoolSize)
	return &gridPolicy{
		middle: filterSet(top, &middleCells),
		anti:   filterSet(top, &antiDiagonalCells),
		rest:   without(top, cornerCells.Members()),
	}
}

func (p *gridPolicy) Name() string       { return domain.StrategyGrid }
func (p *gridPolicy) Pool() []int        { return head(p.rest, DeterministicPoolSize) }
func (p *gridPolicy) ForceFilters() bool { return false }

func (p *gridPolicy) Accept(c domain.Combination) bool {
	d := avgManhattan(c[:])
	return d >= minGridDistance && d <= maxGridDistance
}

func (p *gridPolicy) Draw(rng *rand.Rand) ([]int, bool) {
	selected := make([]int, 0, domain.PickCount)
	if len(p.middle) >= 3 {
		k := 3 + rng.IntN(2)
		if k > len(p.middle) {
			k = len(p.middle)
		}
		picked, _ := sample(rng, p.middle, k)
		selected = append(selected, picked...)
	}
	if anti := without(p.anti, selected); len(anti) >= 1 {
		k := 1 + rng.IntN(2)
		if k > len(anti) {
			k = len(anti)
		}
		picked, _ := sample(rng, anti, k)
		selected = append(selected, picked...)
	}
	rest := without(p.rest, selected)
	for len(selected) < domain.PickCount && len(rest) > 0 {
		i := rng.IntN(len(rest))
		selected = append(selected, rest[i])
		rest = append(rest[:i:i], rest[i+1:]...)
	}
	if len(selected) != domain.PickCount {
		return nil, false
	}
	return selected, true
}

// spatialPolicy samples the top 35 and keeps visually balanced layouts.
type spatialPolicy struct {
	*topPolicy
}

func (p *spatialPolicy) Accept(c domain.Combination) bool {
	return SpatialScore(c).Total() >= minSpatialScore
}

// consecutivePolicy seeds each set with a popular consecutive pair.
type consecutivePolicy struct {
	pairs [][2]int
	top   []int
}

func newConsecutivePolicy(table *scoring.Table) *consecutivePolicy {
	p := &consecutivePolicy{top: table.Top(wideTopPoolSize)}
	for _, pc := range table.Patterns().PopularPairs(popularPairCount) {
		p.pairs = append(p.pairs, [2]int{pc.Low, pc.High()})
	}
	return p
}

func (p *consecutivePolicy) Name() string       { return domain.StrategyConsecutive }
func (p *consecutivePolicy) ForceFilters() bool { return false }

func (p *consecutivePolicy) Accept(c domain.Combination) bool {
	for _, pair := range p.pairs {
		if c.Contains(pair[0]) && c.Contains(pair[1]) {
			return true
		}
	}
	return false
}

func (p *consecutivePolicy) Pool() []int {
	if len(p.pairs) == 0 {
		return head(p.top, DeterministicPoolSize)
	}
	lead := p.pairs[0][:]
	return append(append([]int{}, lead...), head(without(p.top, lead), DeterministicPoolSize-len(lead))...)
}

func (p *consecutivePolicy) Draw(rng *rand.Rand) ([]int, bool) {
	if len(p.pairs) == 0 {
		return nil, false
	}
	pair := p.pairs[rng.IntN(len(p.pairs))]
	rest, ok := sample(rng, without(p.top, pair[:]), domain.PickCount-2)
	if !ok {
		return nil, false
	}
	return append([]int{pair[0], pair[1]}, rest...), true
}

// randomPolicy is the uniform control group.
type randomPolicy struct {
	all    []int
	ranked []int
}

func newRandomPolicy(table *scoring.Table) *randomPolicy {
	all := make([]int, 0, domain.NumberSpan)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		all = append(all, n)
	}
	return &randomPolicy{all: all, ranked: table.Top(domain.NumberSpan)}
}

func (p *randomPolicy) Name() string                   { return domain.StrategyRandom }
func (p *randomPolicy) Accept(domain.Combination) bool { return true }
func (p *randomPolicy) Pool() []int                    { return head(p.ranked, DeterministicPoolSize) }
func (p *randomPolicy) ForceFilters() bool             { return false }

func (p *randomPolicy) Draw(rng *rand.Rand) ([]int, bool) {
	return sample(rng, p.all, domain.PickCount)
}
