// Package generator produces ranked, validated number combinations from a
// trained score table.
package generator

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/combin"

	"lotto-lab/internal/constraint"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/scoring"
)

// DefaultMaxAttempts is the per-request rejection budget.
const DefaultMaxAttempts = 10000

// hybridShare is how many combinations each component strategy contributes.
const hybridShare = 2

var hybridComponents = []string{
	domain.StrategyScore,
	domain.StrategyProbability,
	domain.StrategyPattern,
	domain.StrategyGrid,
	domain.StrategySpatial,
}

// Request describes one generation call.
type Request struct {
	Strategy      string
	Count         int
	Strict        bool
	MaxAttempts   int // 0 = DefaultMaxAttempts
	Seed          uint64
	Deterministic bool // best-only: enumerate the policy pool instead of sampling
}

// Scored is a generated combination with its score explanation.
type Scored struct {
	Combination domain.Combination `json:"combination"`
	Score       float64            `json:"score"`
	Breakdown   Breakdown          `json:"breakdown"`
}

// Result is the outcome of a generation call. A shortfall is reported
// explicitly rather than inferred from the slice length.
type Result struct {
	Strategy     string   `json:"strategy"`
	Combinations []Scored `json:"combinations"`
	Requested    int      `json:"requested"`
	Attempts     int      `json:"attempts"`
	Shortfall    int      `json:"shortfall"`
	Exhausted    bool     `json:"exhausted"`
}

// Combos returns the bare combinations in rank order.
func (r *Result) Combos() []domain.Combination {
	out := make([]domain.Combination, len(r.Combinations))
	for i, s := range r.Combinations {
		out[i] = s.Combination
	}
	return out
}

// Warning returns a wrapped domain.ErrExhaustedSearch when the result is
// short, nil otherwise.
func (r *Result) Warning() error {
	if r.Shortfall == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s produced %d of %d after %d attempts",
		domain.ErrExhaustedSearch, r.Strategy, len(r.Combinations), r.Requested, r.Attempts)
}

// Options configures a Generator.
type Options struct {
	Logger zerolog.Logger
	// ForbiddenFilter and OverheatFilter enable the history filters for
	// every strict request, not only for policies that force them.
	ForbiddenFilter bool
	OverheatFilter  bool
	MaxAttempts     int
}

// Generator draws combinations against one trained table. It holds no
// mutable state and may be shared.
type Generator struct {
	table    *scoring.Table
	scorer   *Scorer
	plain    *constraint.Validator
	filtered *constraint.Validator
	opts     Options
	log      zerolog.Logger
}

// New creates a Generator for table.
func New(table *scoring.Table, opts Options) *Generator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	pat := table.Patterns()
	return &Generator{
		table:    table,
		scorer:   NewScorer(table),
		plain:    constraint.New(constraint.FromPatterns(pat, opts.ForbiddenFilter, opts.OverheatFilter)),
		filtered: constraint.New(constraint.FromPatterns(pat, true, true)),
		opts:     opts,
		log:      opts.Logger.With().Str("component", "generator").Logger(),
	}
}

// Table returns the table the generator scores against.
func (g *Generator) Table() *scoring.Table { return g.table }

// Scorer returns the combination scorer.
func (g *Generator) Scorer() *Scorer { return g.scorer }

// Generate runs the requested strategy.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Count <= 0 {
		return nil, &domain.ValidationError{Field: "count", Reason: domain.ReasonCount, Detail: fmt.Sprintf("count %d", req.Count)}
	}
	if req.Strategy == domain.StrategyHybrid {
		return g.generateHybrid(ctx, req)
	}
	policy, err := PolicyFor(req.Strategy, g.table)
	if err != nil {
		return nil, err
	}
	return g.GenerateWith(ctx, policy, req)
}

// GenerateWith runs an explicit policy. req.Strategy is ignored.
func (g *Generator) GenerateWith(ctx context.Context, policy Policy, req Request) (*Result, error) {
	var (
		res *Result
		err error
	)
	if req.Deterministic {
		res, err = g.enumerate(ctx, policy, req)
	} else {
		res, err = g.sample(ctx, policy, req)
	}
	if err != nil {
		return nil, err
	}
	if res.Exhausted {
		g.log.Warn().
			Str("strategy", res.Strategy).
			Int("requested", res.Requested).
			Int("produced", len(res.Combinations)).
			Int("attempts", res.Attempts).
			Msg("attempt budget exhausted")
	}
	return res, nil
}

func (g *Generator) validatorFor(policy Policy, strict bool) (*constraint.Validator, bool) {
	if policy.ForceFilters() {
		return g.filtered, true
	}
	return g.plain, strict
}

func (g *Generator) sample(ctx context.Context, policy Policy, req Request) (*Result, error) {
	budget := req.MaxAttempts
	if budget <= 0 {
		budget = g.opts.MaxAttempts
	}
	validator, strict := g.validatorFor(policy, req.Strict)
	rng := rand.New(rand.NewPCG(req.Seed, seedStream(policy.Name())))

	seen := make(map[domain.Combination]struct{}, req.Count)
	found := make([]domain.Combination, 0, req.Count)
	attempts := 0
	for len(found) < req.Count && attempts < budget {
		if attempts%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		attempts++

		nums, ok := policy.Draw(rng)
		if !ok {
			continue
		}
		c, err := domain.NewCombination(nums)
		if err != nil {
			continue
		}
		if validator.CheckCombination(c, strict) != nil || !policy.Accept(c) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		found = append(found, c)
	}
	return g.finish(policy.Name(), req.Count, attempts, found), nil
}

// enumerate scores every 6-subset of the policy pool and keeps the best.
func (g *Generator) enumerate(ctx context.Context, policy Policy, req Request) (*Result, error) {
	pool := policy.Pool()
	validator, strict := g.validatorFor(policy, req.Strict)

	var found []domain.Combination
	attempts := 0
	if len(pool) >= domain.PickCount {
		gen := combin.NewCombinationGenerator(len(pool), domain.PickCount)
		idx := make([]int, domain.PickCount)
		nums := make([]int, domain.PickCount)
		for gen.Next() {
			if attempts%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			attempts++
			gen.Combination(idx)
			for i, j := range idx {
				nums[i] = pool[j]
			}
			c, err := domain.NewCombination(nums)
			if err != nil {
				continue
			}
			if validator.CheckCombination(c, strict) != nil || !policy.Accept(c) {
				continue
			}
			found = append(found, c)
		}
	}
	return g.finish(policy.Name(), req.Count, attempts, found), nil
}

// finish ranks found, truncates to count and fills in the shortfall.
func (g *Generator) finish(name string, count, attempts int, found []domain.Combination) *Result {
	ranked := g.Rank(found)
	if len(ranked) > count {
		ranked = ranked[:count]
	}
	res := &Result{
		Strategy:     name,
		Combinations: ranked,
		Requested:    count,
		Attempts:     attempts,
		Shortfall:    count - len(ranked),
	}
	res.Exhausted = res.Shortfall > 0
	return res
}

// Rank scores combos and orders them by score desc, then lexicographically.
func (g *Generator) Rank(combos []domain.Combination) []Scored {
	out := make([]Scored, len(combos))
	for i, c := range combos {
		b := g.scorer.Score(c)
		out[i] = Scored{Combination: c, Score: b.Total(), Breakdown: b}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return lessCombination(out[i].Combination, out[j].Combination)
	})
	return out
}

func (g *Generator) generateHybrid(ctx context.Context, req Request) (*Result, error) {
	seen := make(map[domain.Combination]struct{})
	var merged []domain.Combination
	attempts := 0

	for _, name := range hybridComponents {
		var policy Policy
		if name == domain.StrategyScore {
			policy = newTopPolicy(name, g.table, hybridScorePoolSize, false)
		} else {
			p, err := PolicyFor(name, g.table)
			if err != nil {
				return nil, err
			}
			policy = p
		}
		sub := req
		sub.Count = hybridShare
		res, err := g.GenerateWith(ctx, policy, sub)
		if err != nil {
			return nil, fmt.Errorf("hybrid %s: %w", name, err)
		}
		attempts += res.Attempts
		for _, s := range res.Combinations {
			if _, dup := seen[s.Combination]; !dup {
				seen[s.Combination] = struct{}{}
				merged = append(merged, s.Combination)
			}
		}
	}
	return g.finish(domain.StrategyHybrid, req.Count, attempts, merged), nil
}

func lessCombination(a, b domain.Combination) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// seedStream derives a per-policy PCG stream so strategies sharing a seed do
// not draw identical sequences.
func seedStream(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}
