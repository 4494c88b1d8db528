package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/generator"
	"lotto-lab/internal/optimizer"
	"lotto-lab/internal/replay"
)

// Tuning holds engine parameters read from the TOML tuning file.
type Tuning struct {
	Weights   domain.WeightConfiguration `toml:"weights"`
	Bounds    domain.WeightBounds        `toml:"bounds"`
	Generator GeneratorTuning            `toml:"generator"`
	Backtest  BacktestTuning             `toml:"backtest"`
	Optimizer OptimizerTuning            `toml:"optimizer"`
}

// GeneratorTuning configures combination generation.
type GeneratorTuning struct {
	MaxAttempts     int  `toml:"max_attempts"`
	ForbiddenFilter bool `toml:"forbidden_filter"`
	OverheatFilter  bool `toml:"overheat_filter"`
}

// BacktestTuning configures both backtest regimes.
type BacktestTuning struct {
	MinTrainRounds int                 `toml:"min_train_rounds"`
	CombosPerRound int                 `toml:"combos_per_round"`
	Seed           uint64              `toml:"seed"`
	Workers        int                 `toml:"workers"` // 0 = GOMAXPROCS
	Prizes         backtest.PrizeTable `toml:"prizes"`
}

// OptimizerTuning configures the weight search and the scheduled re-tune.
type OptimizerTuning struct {
	Strategy       string  `toml:"strategy"`
	Threshold      int     `toml:"threshold"`
	Window         int     `toml:"window"` // rounds ending at the latest draw
	Trials         int     `toml:"trials"`
	Refine         bool    `toml:"refine"`
	Step           float64 `toml:"step"`
	FineTuneTrials int     `toml:"fine_tune_trials"`
	FineTuneStep   float64 `toml:"fine_tune_step"`
	Seed           uint64  `toml:"seed"`
	Schedule       string  `toml:"schedule"` // cron expression, empty = disabled
}

// DefaultTuning returns the stock engine parameters.
func DefaultTuning() *Tuning {
	return &Tuning{
		Weights: domain.DefaultWeights(),
		Bounds:  domain.DefaultWeightBounds(),
		Generator: GeneratorTuning{
			MaxAttempts: generator.DefaultMaxAttempts,
		},
		Backtest: BacktestTuning{
			MinTrainRounds: replay.DefaultMinTrainRounds,
			CombosPerRound: backtest.DefaultCombosPerRound,
			Seed:           backtest.DefaultSeed,
			Prizes:         backtest.DefaultPrizeTable(),
		},
		Optimizer: OptimizerTuning{
			Strategy:     domain.StrategyScore,
			Threshold:    backtest.DefaultThreshold,
			Window:       100,
			Trials:       optimizer.DefaultTrials,
			Refine:       true,
			Step:         optimizer.DefaultStep,
			FineTuneStep: optimizer.DefaultFineTuneStep,
			Seed:         backtest.DefaultSeed,
			Schedule:     "0 22 * * 6",
		},
	}
}

// Validate checks the tuning for values the engine would reject later.
func (t *Tuning) Validate() error {
	if err := t.Weights.Validate(); err != nil {
		return err
	}
	if err := t.Bounds.Validate(); err != nil {
		return err
	}
	if t.Backtest.CombosPerRound <= 0 {
		return fmt.Errorf("backtest.combos_per_round must be positive, got %d", t.Backtest.CombosPerRound)
	}
	if t.Backtest.MinTrainRounds <= 0 {
		return fmt.Errorf("backtest.min_train_rounds must be positive, got %d", t.Backtest.MinTrainRounds)
	}
	if t.Backtest.Prizes.UnitCost <= 0 {
		return errors.New("backtest.prizes.unit_cost must be positive")
	}
	if !domain.IsStrategy(t.Optimizer.Strategy) {
		return fmt.Errorf("%w: optimizer.strategy %q", domain.ErrUnknownStrategy, t.Optimizer.Strategy)
	}
	if t.Optimizer.Threshold < 1 || t.Optimizer.Threshold > domain.PickCount {
		return fmt.Errorf("optimizer.threshold %d outside 1-%d", t.Optimizer.Threshold, domain.PickCount)
	}
	if t.Optimizer.Window <= 0 {
		return fmt.Errorf("optimizer.window must be positive, got %d", t.Optimizer.Window)
	}
	if t.Optimizer.Schedule != "" {
		if _, err := cron.ParseStandard(t.Optimizer.Schedule); err != nil {
			return fmt.Errorf("optimizer.schedule: %w", err)
		}
	}
	return nil
}

// GeneratorOptions converts the generator section.
func (t *Tuning) GeneratorOptions() generator.Options {
	return generator.Options{
		MaxAttempts:     t.Generator.MaxAttempts,
		ForbiddenFilter: t.Generator.ForbiddenFilter,
		OverheatFilter:  t.Generator.OverheatFilter,
	}
}

// OptimizerRequest builds a request over [from, to] from the optimizer section.
func (t *Tuning) OptimizerRequest(from, to int) optimizer.Request {
	bounds := t.Bounds
	return optimizer.Request{
		Strategy:       t.Optimizer.Strategy,
		Threshold:      t.Optimizer.Threshold,
		From:           from,
		To:             to,
		Trials:         t.Optimizer.Trials,
		Refine:         t.Optimizer.Refine,
		Step:           t.Optimizer.Step,
		FineTuneTrials: t.Optimizer.FineTuneTrials,
		FineTuneStep:   t.Optimizer.FineTuneStep,
		Seed:           t.Optimizer.Seed,
		Bounds:         &bounds,
	}
}
