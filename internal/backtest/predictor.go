package backtest

import (
	"context"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/generator"
	"lotto-lab/internal/scoring"
)

// Predictor trains on a round's history and yields a Model for that round.
type Predictor interface {
	// Train builds a model from draws strictly before the target round.
	Train(ctx context.Context, training *domain.Series) (Model, error)

	// Name returns the strategy identifier.
	Name() string
}

// Model produces predictions for one target round.
type Model interface {
	// Predict returns up to n combinations. Fewer are returned when the
	// generator exhausts its budget.
	Predict(ctx context.Context, n int, seed uint64) ([]domain.Combination, error)
}

// GeneratorPredictor predicts with the scoring table and combination
// generator, training one table per round.
type GeneratorPredictor struct {
	Strategy      string
	Weights       domain.WeightConfiguration
	Deterministic bool
	Tables        *scoring.Cache // optional, shared across runs
	Options       generator.Options
}

// Name returns the strategy identifier.
func (p *GeneratorPredictor) Name() string {
	return p.Strategy
}

// Train builds (or reuses) the score table for training.
func (p *GeneratorPredictor) Train(_ context.Context, training *domain.Series) (Model, error) {
	var (
		table *scoring.Table
		err   error
	)
	if p.Tables != nil {
		table, err = p.Tables.Get(training, p.Weights)
	} else {
		table, err = scoring.Train(training, p.Weights)
	}
	if err != nil {
		return nil, err
	}
	return &generatorModel{gen: generator.New(table, p.Options), predictor: p}, nil
}

type generatorModel struct {
	gen       *generator.Generator
	predictor *GeneratorPredictor
}

func (m *generatorModel) Predict(ctx context.Context, n int, seed uint64) ([]domain.Combination, error) {
	res, err := m.gen.Generate(ctx, generator.Request{
		Strategy:      m.predictor.Strategy,
		Count:         n,
		Seed:          seed,
		Deterministic: m.predictor.Deterministic,
	})
	if err != nil {
		return nil, err
	}
	return res.Combos(), nil
}

var _ Predictor = (*GeneratorPredictor)(nil)
