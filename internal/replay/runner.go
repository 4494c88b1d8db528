package replay

import (
	"context"
	"fmt"
	"sort"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

// DefaultMinTrainRounds is the minimum training window for a target round.
const DefaultMinTrainRounds = 50

// Options configures walk-forward replay.
type Options struct {
	MinTrainRounds int // 0 = DefaultMinTrainRounds
	// AllowShortTraining downgrades the minimum window from an error to a
	// requirement of at least one training draw.
	AllowShortTraining bool
}

// Runner loads the draw history and replays it round by round so that each
// target round only sees strictly earlier draws.
type Runner struct {
	store storage.DrawStore
	opts  Options
}

// NewRunner creates a new replay runner.
func NewRunner(store storage.DrawStore, opts Options) *Runner {
	if opts.MinTrainRounds <= 0 {
		opts.MinTrainRounds = DefaultMinTrainRounds
	}
	return &Runner{store: store, opts: opts}
}

// Load reads the full history. The store order is not trusted; the series
// sorts explicitly.
func (r *Runner) Load(ctx context.Context) (*domain.Series, error) {
	draws, err := r.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load draws: %w", err)
	}
	return domain.NewSeriesFromPointers(draws)
}

// Prepare builds the walk-forward rounds for [from, to] over series.
func (r *Runner) Prepare(series *domain.Series, from, to int) ([]*Round, error) {
	targets, err := TargetRounds(series, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]*Round, 0, len(targets))
	for _, t := range targets {
		round, err := r.PrepareRound(series, t)
		if err != nil {
			return nil, err
		}
		out = append(out, round)
	}
	sort.Slice(out, func(i, j int) bool { return compareRounds(out[i], out[j]) < 0 })
	return out, nil
}

// PrepareRound builds the training view for a single target round.
func (r *Runner) PrepareRound(series *domain.Series, target int) (*Round, error) {
	d, ok := series.Round(target)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoundNotFound, target)
	}
	round := &Round{Target: d, Training: series.Before(target)}
	if err := CheckNoLookahead(round); err != nil {
		return nil, err
	}
	if err := r.checkWindow(round); err != nil {
		return nil, err
	}
	return round, nil
}

func (r *Runner) checkWindow(round *Round) error {
	have := round.Training.Len()
	need := r.opts.MinTrainRounds
	if r.opts.AllowShortTraining {
		need = 1
	}
	if have < need {
		return fmt.Errorf("%w: round %d has %d training rounds, need %d",
			domain.ErrInsufficientData, round.Target.Round, have, need)
	}
	return nil
}

// Run loads history and replays [from, to] through engine sequentially.
func (r *Runner) Run(ctx context.Context, from, to int, engine RoundEngine) error {
	series, err := r.Load(ctx)
	if err != nil {
		return err
	}
	return r.RunSeries(ctx, series, from, to, engine)
}

// RunSeries replays [from, to] of an already loaded series.
func (r *Runner) RunSeries(ctx context.Context, series *domain.Series, from, to int, engine RoundEngine) error {
	rounds, err := r.Prepare(series, from, to)
	if err != nil {
		return err
	}
	for _, round := range rounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := engine.OnRound(ctx, round); err != nil {
			return err
		}
	}
	return nil
}

// TrainableFrom returns the first round of series that satisfies the
// minimum training window, or 0 if none does.
func (r *Runner) TrainableFrom(series *domain.Series) int {
	if series.Len() <= r.opts.MinTrainRounds {
		return 0
	}
	return series.At(r.opts.MinTrainRounds).Round
}
