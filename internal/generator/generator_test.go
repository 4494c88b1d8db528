package generator

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"lotto-lab/internal/constraint"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/ingestion/fixtures"
	"lotto-lab/internal/scoring"
)

func trainedTable(t *testing.T) *scoring.Table {
	t.Helper()
	table, err := scoring.Train(fixtures.UniformSeries(300, 7), domain.DefaultWeights())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return table
}

func assertWellFormed(t *testing.T, res *Result) {
	t.Helper()
	seen := make(map[domain.Combination]bool)
	for _, s := range res.Combinations {
		c := s.Combination
		if err := c.Validate(); err != nil {
			t.Fatalf("%s produced invalid combination %v: %v", res.Strategy, c, err)
		}
		if seen[c] {
			t.Fatalf("%s produced duplicate %v", res.Strategy, c)
		}
		seen[c] = true
	}
	if res.Shortfall != res.Requested-len(res.Combinations) {
		t.Errorf("%s: shortfall %d inconsistent with %d/%d", res.Strategy, res.Shortfall, len(res.Combinations), res.Requested)
	}
	for i := 1; i < len(res.Combinations); i++ {
		if res.Combinations[i].Score > res.Combinations[i-1].Score {
			t.Errorf("%s: not ranked by score at %d", res.Strategy, i)
		}
	}
}

func TestGenerator_AllStrategiesWellFormed(t *testing.T) {
	g := New(trainedTable(t), Options{})
	ctx := context.Background()

	for _, name := range domain.Strategies {
		for _, strict := range []bool{false, true} {
			res, err := g.Generate(ctx, Request{Strategy: name, Count: 5, Strict: strict, Seed: 42})
			if err != nil {
				t.Fatalf("%s strict=%v: %v", name, strict, err)
			}
			assertWellFormed(t, res)
			if res.Attempts == 0 {
				t.Errorf("%s: expected attempts to be counted", name)
			}
		}
	}
}

func TestGenerator_StrictOutputPassesValidator(t *testing.T) {
	g := New(trainedTable(t), Options{})
	v := constraint.New(constraint.Options{})

	res, err := g.Generate(context.Background(), Request{Strategy: domain.StrategyScore, Count: 10, Strict: true, Seed: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, s := range res.Combinations {
		if err := v.CheckCombination(s.Combination, true); err != nil {
			t.Errorf("%v failed strict validation: %v", s.Combination, err)
		}
	}
}

func TestGenerator_SafeAppliesHistoryFilters(t *testing.T) {
	table := trainedTable(t)
	g := New(table, Options{})
	pat := table.Patterns()

	res, err := g.Generate(context.Background(), Request{Strategy: domain.StrategySafe, Count: 5, Seed: 11})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, s := range res.Combinations {
		if pat.ForbiddenPairs.CountIn(s.Combination) > 0 {
			t.Errorf("%v holds a forbidden pair", s.Combination)
		}
		for _, n := range s.Combination {
			if pat.Overheated.Has(n) {
				t.Errorf("%v holds overheated %d", s.Combination, n)
			}
		}
	}
}

func TestGenerator_SeedReproducible(t *testing.T) {
	g := New(trainedTable(t), Options{})
	ctx := context.Background()
	for _, name := range []string{domain.StrategyProbability, domain.StrategyHybrid, domain.StrategyGrid} {
		a, _ := g.Generate(ctx, Request{Strategy: name, Count: 4, Seed: 99})
		b, _ := g.Generate(ctx, Request{Strategy: name, Count: 4, Seed: 99})
		if len(a.Combinations) != len(b.Combinations) {
			t.Fatalf("%s: lengths differ", name)
		}
		for i := range a.Combinations {
			if a.Combinations[i].Combination != b.Combinations[i].Combination {
				t.Errorf("%s: result %d differs across identical seeds", name, i)
			}
		}
	}
}

func TestGenerator_DeterministicIgnoresSeed(t *testing.T) {
	g := New(trainedTable(t), Options{})
	ctx := context.Background()

	a, err := g.Generate(ctx, Request{Strategy: domain.StrategyScore, Count: 3, Deterministic: true, Seed: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, _ := g.Generate(ctx, Request{Strategy: domain.StrategyScore, Count: 3, Deterministic: true, Seed: 2})
	if len(a.Combinations) != 3 {
		t.Fatalf("expected 3 combinations, got %d", len(a.Combinations))
	}
	for i := range a.Combinations {
		if a.Combinations[i].Combination != b.Combinations[i].Combination {
			t.Errorf("best-only result %d depends on seed", i)
		}
	}
	if a.Attempts != 924 {
		t.Errorf("expected C(12,6)=924 enumerated, got %d", a.Attempts)
	}
}

type fixedPool struct{ nums []int }

func (p fixedPool) Name() string                   { return "fixed" }
func (p fixedPool) Accept(domain.Combination) bool { return true }
func (p fixedPool) Pool() []int                    { return p.nums }
func (p fixedPool) ForceFilters() bool             { return false }
func (p fixedPool) Draw(rng *rand.Rand) ([]int, bool) {
	return sample(rng, p.nums, domain.PickCount)
}

func TestGenerator_TooSmallPoolReturnsShortResult(t *testing.T) {
	g := New(trainedTable(t), Options{})
	pool := fixedPool{nums: []int{3, 14, 25, 36}}

	for _, deterministic := range []bool{false, true} {
		res, err := g.GenerateWith(context.Background(), pool, Request{Count: 5, Strict: true, MaxAttempts: 500, Deterministic: deterministic})
		if err != nil {
			t.Fatalf("deterministic=%v: unexpected error %v", deterministic, err)
		}
		if len(res.Combinations) != 0 {
			t.Errorf("expected no combinations, got %d", len(res.Combinations))
		}
		if !res.Exhausted || res.Shortfall != 5 {
			t.Errorf("expected exhausted with shortfall 5, got %v/%d", res.Exhausted, res.Shortfall)
		}
		if !errors.Is(res.Warning(), domain.ErrExhaustedSearch) {
			t.Errorf("expected ErrExhaustedSearch warning, got %v", res.Warning())
		}
	}
}

func TestGenerator_RespectsAttemptBudget(t *testing.T) {
	g := New(trainedTable(t), Options{})
	res, err := g.Generate(context.Background(), Request{Strategy: domain.StrategySpatial, Count: 1000, MaxAttempts: 50, Seed: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Attempts != 50 {
		t.Errorf("expected 50 attempts, got %d", res.Attempts)
	}
	if !res.Exhausted {
		t.Error("expected exhausted flag")
	}
}

func TestGenerator_UnknownStrategy(t *testing.T) {
	g := New(trainedTable(t), Options{})
	_, err := g.Generate(context.Background(), Request{Strategy: "astrology", Count: 1})
	if !errors.Is(err, domain.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestGenerator_RejectsNonPositiveCount(t *testing.T) {
	g := New(trainedTable(t), Options{})
	_, err := g.Generate(context.Background(), Request{Strategy: domain.StrategyScore})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGenerator_CancelledContext(t *testing.T) {
	g := New(trainedTable(t), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Generate(ctx, Request{Strategy: domain.StrategyScore, Count: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
