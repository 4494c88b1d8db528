// Package optimizer searches the weight space for the configuration with the
// best backtest score: a uniform random phase, a coordinate refine phase and
// an optional local fine-tune phase.
package optimizer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/idhash"
	"lotto-lab/internal/observability"
	"lotto-lab/internal/storage"
)

// Search defaults.
const (
	DefaultTrials       = 30
	DefaultStep         = 2.0
	DefaultFineTuneStep = 3.0
)

// Request describes one optimizer run.
type Request struct {
	Strategy  string
	Threshold int
	From, To  int

	Trials         int     // random phase evaluations, 0 = DefaultTrials
	Refine         bool    // probe ±Step and ±2·Step per dimension around the best
	Step           float64 // 0 = DefaultStep
	FineTuneTrials int     // 0 disables the fine-tune phase
	FineTuneStep   float64 // 0 = DefaultFineTuneStep
	Seed           uint64

	Bounds   *domain.WeightBounds // nil = domain.DefaultWeightBounds
	Progress func(Progress)
}

// Progress is emitted after every evaluation.
type Progress struct {
	Trial     domain.OptimizationTrial   `json:"trial"`
	Best      domain.WeightConfiguration `json:"best"`
	BestScore float64                    `json:"best_score"`
	Done      int                        `json:"done"`
	Planned   int                        `json:"planned"`
}

// Options configures an Optimizer.
type Options struct {
	Logger zerolog.Logger
	// Store persists finished runs. nil skips persistence.
	Store storage.OptimalWeightsStore
	Now   func() time.Time
}

// Optimizer runs weight searches against one objective.
type Optimizer struct {
	objective Objective
	store     storage.OptimalWeightsStore
	now       func() time.Time
	log       zerolog.Logger
}

// New creates an Optimizer.
func New(objective Objective, opts Options) *Optimizer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Optimizer{
		objective: objective,
		store:     opts.Store,
		now:       opts.Now,
		log:       opts.Logger.With().Str("component", "optimizer").Logger(),
	}
}

// search holds the state of one run.
type search struct {
	ctx       context.Context
	req       Request
	bounds    domain.WeightBounds
	objective Objective
	seen      map[domain.WeightConfiguration]float64
	trials    []domain.OptimizationTrial
	best      domain.WeightConfiguration
	bestScore float64
	planned   int
}

// Optimize runs the search, persists the run when a store is configured and
// returns it.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*domain.OptimizationRun, error) {
	req, bounds, err := normalize(req)
	if err != nil {
		return nil, err
	}
	created := o.now().UTC()

	s := &search{
		ctx:       ctx,
		req:       req,
		bounds:    bounds,
		objective: o.objective,
		seen:      make(map[domain.WeightConfiguration]float64),
		bestScore: math.Inf(-1),
		planned:   req.Trials + req.FineTuneTrials,
	}
	if req.Refine {
		s.planned += 4 * domain.WeightDimensions
	}
	rng := rand.New(rand.NewPCG(req.Seed, 0x77656967687473))

	o.log.Info().
		Str("strategy", req.Strategy).
		Int("threshold", req.Threshold).
		Int("from", req.From).
		Int("to", req.To).
		Int("trials", req.Trials).
		Bool("refine", req.Refine).
		Int("fine_tune", req.FineTuneTrials).
		Msg("optimization started")

	if err := s.random(rng); err != nil {
		return nil, o.fail(req, err)
	}
	if req.Refine {
		if err := s.refine(); err != nil {
			return nil, o.fail(req, err)
		}
	}
	if req.FineTuneTrials > 0 {
		if err := s.fineTune(rng); err != nil {
			return nil, o.fail(req, err)
		}
	}

	run := &domain.OptimizationRun{
		RunID:     idhash.ComputeRunID(req.Strategy, req.Threshold, req.From, req.To, req.Seed, created.UnixNano()),
		Strategy:  req.Strategy,
		Threshold: req.Threshold,
		FromRound: req.From,
		ToRound:   req.To,
		Best:      s.best,
		BestScore: s.bestScore,
		CreatedAt: created,
		Trials:    s.trials,
	}
	if o.store != nil {
		if err := o.store.SaveRun(ctx, run); err != nil {
			return nil, o.fail(req, fmt.Errorf("save run: %w", err))
		}
	}

	observability.RecordOptimizerRun(req.Strategy, strconv.Itoa(req.Threshold), "success", run.BestScore, created.Unix())
	o.log.Info().
		Str("run_id", run.RunID).
		Str("best", run.Best.String()).
		Float64("best_score", run.BestScore).
		Int("evaluations", len(run.Trials)).
		Msg("optimization complete")
	return run, nil
}

func (o *Optimizer) fail(req Request, err error) error {
	observability.RecordOptimizerRun(req.Strategy, strconv.Itoa(req.Threshold), "failure", 0, 0)
	o.log.Error().Err(err).Str("strategy", req.Strategy).Msg("optimization failed")
	return err
}

func normalize(req Request) (Request, domain.WeightBounds, error) {
	if req.Trials == 0 {
		req.Trials = DefaultTrials
	}
	if req.Step == 0 {
		req.Step = DefaultStep
	}
	if req.FineTuneStep == 0 {
		req.FineTuneStep = DefaultFineTuneStep
	}
	if req.Trials < 0 || req.FineTuneTrials < 0 {
		return req, domain.WeightBounds{}, &domain.ValidationError{Field: "trials", Reason: domain.ReasonCount, Detail: "trial counts must be non-negative"}
	}
	if req.Step < 0 || req.FineTuneStep < 0 {
		return req, domain.WeightBounds{}, &domain.ValidationError{Field: "step", Reason: domain.ReasonWeightBounds, Detail: "steps must be positive"}
	}
	bounds := domain.DefaultWeightBounds()
	if req.Bounds != nil {
		bounds = *req.Bounds
	}
	if err := bounds.Validate(); err != nil {
		return req, bounds, err
	}
	return req, bounds, nil
}

// evaluate scores w once per run and records the trial. It reports whether
// w strictly improved on the incumbent.
func (s *search) evaluate(phase string, w domain.WeightConfiguration) (bool, error) {
	if err := s.ctx.Err(); err != nil {
		return false, err
	}
	score, ok := s.seen[w]
	if !ok {
		var err error
		score, err = s.objective.Evaluate(s.ctx, w)
		if err != nil {
			return false, fmt.Errorf("evaluate %s: %w", w, err)
		}
		s.seen[w] = score
	}

	trial := domain.OptimizationTrial{Index: len(s.trials) + 1, Phase: phase, Weights: w, Score: score}
	s.trials = append(s.trials, trial)
	observability.RecordOptimizerTrial(phase)

	improved := score > s.bestScore
	if improved {
		s.best = w
		s.bestScore = score
	}
	if s.req.Progress != nil {
		s.req.Progress(Progress{
			Trial:     trial,
			Best:      s.best,
			BestScore: s.bestScore,
			Done:      len(s.trials),
			Planned:   s.planned,
		})
	}
	return improved, nil
}

func (s *search) random(rng *rand.Rand) error {
	for i := 0; i < s.req.Trials; i++ {
		var v [domain.WeightDimensions]float64
		for d := range v {
			iv := s.bounds.Dimension(d)
			v[d] = iv.Min + rng.Float64()*(iv.Max-iv.Min)
		}
		if _, err := s.evaluate(domain.PhaseRandom, domain.WeightsFromVector(v)); err != nil {
			return err
		}
	}
	return nil
}

// refine probes each dimension of the random-phase best independently.
func (s *search) refine() error {
	base := s.best
	deltas := []float64{-2 * s.req.Step, -s.req.Step, s.req.Step, 2 * s.req.Step}
	for d := 0; d < domain.WeightDimensions; d++ {
		for _, delta := range deltas {
			v := base.Vector()
			v[d] += delta
			if !s.bounds.Dimension(d).Contains(v[d]) {
				continue
			}
			if _, err := s.evaluate(domain.PhaseRefine, domain.WeightsFromVector(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// fineTune perturbs every dimension of the incumbent, clamped to bounds.
func (s *search) fineTune(rng *rand.Rand) error {
	step := s.req.FineTuneStep
	for i := 0; i < s.req.FineTuneTrials; i++ {
		v := s.best.Vector()
		for d := range v {
			v[d] += (rng.Float64()*2 - 1) * step
		}
		w := s.bounds.Clamp(domain.WeightsFromVector(v))
		if _, err := s.evaluate(domain.PhaseFineTune, w); err != nil {
			return err
		}
	}
	return nil
}
