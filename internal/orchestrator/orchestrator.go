// Package orchestrator is the facade the CLIs and the HTTP server use. It
// owns the loaded draw series, the shared score-table cache and the backtest
// runner, and resolves request defaults from the tuning file.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/config"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/generator"
	"lotto-lab/internal/observability"
	"lotto-lab/internal/optimizer"
	"lotto-lab/internal/replay"
	"lotto-lab/internal/scoring"
	"lotto-lab/internal/storage"
	"lotto-lab/internal/verification"
)

// tableCacheSize bounds the shared score-table cache.
const tableCacheSize = 4096

// Orchestrator coordinates scoring, generation, backtests and optimization
// over one draw history.
type Orchestrator struct {
	draws    storage.DrawStore
	weights  storage.OptimalWeightsStore
	tuning   *config.Tuning
	tables   *scoring.Cache
	runner   *backtest.Runner
	verifier *verification.CacheVerifier
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	series *domain.Series
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Draws storage.DrawStore

	// Optional; nil disables caching or persistence
	Cache   storage.BacktestCacheStore
	Weights storage.OptimalWeightsStore

	Tuning *config.Tuning // nil = config.DefaultTuning
	Logger zerolog.Logger
	Now    func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	tuning := opts.Tuning
	if tuning == nil {
		tuning = config.DefaultTuning()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tables := scoring.NewCache(tableCacheSize)

	replayRunner := replay.NewRunner(opts.Draws, replay.Options{MinTrainRounds: tuning.Backtest.MinTrainRounds})
	runner := backtest.NewRunner(replayRunner, opts.Cache, backtest.Options{
		Workers:   tuning.Backtest.Workers,
		Tables:    tables,
		Generator: tuning.GeneratorOptions(),
		Logger:    opts.Logger,
	})

	return &Orchestrator{
		draws:    opts.Draws,
		weights:  opts.Weights,
		tuning:   tuning,
		tables:   tables,
		runner:   runner,
		verifier: verification.NewCacheVerifier(runner, opts.Cache, opts.Logger),
		log:      opts.Logger.With().Str("component", "orchestrator").Logger(),
		now:      now,
	}
}

// Tuning returns the engine parameters in use.
func (o *Orchestrator) Tuning() *config.Tuning {
	return o.tuning
}

// Series returns the loaded history, reading the store on first use.
func (o *Orchestrator) Series(ctx context.Context) (*domain.Series, error) {
	o.mu.RLock()
	s := o.series
	o.mu.RUnlock()
	if s != nil {
		return s, nil
	}
	return o.Refresh(ctx)
}

// Refresh reloads the history from the store and drops trained tables.
// Call after ingesting new draws.
func (o *Orchestrator) Refresh(ctx context.Context) (*domain.Series, error) {
	s, err := o.runner.Replay().Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: no draws stored", domain.ErrInsufficientData)
	}

	o.mu.Lock()
	o.series = s
	o.mu.Unlock()
	o.tables.Invalidate()

	o.log.Debug().Int("draws", s.Len()).Int("latest_round", s.LastRound()).Msg("series loaded")
	return s, nil
}

// CurrentWeights returns the latest optimized weights for (strategy,
// threshold), falling back to the tuning defaults.
func (o *Orchestrator) CurrentWeights(ctx context.Context, strategy string, threshold int) domain.WeightConfiguration {
	if run, err := o.LatestWeights(ctx, strategy, threshold); err == nil {
		return run.Best
	}
	return o.tuning.Weights
}

// LatestWeights returns the latest saved optimizer run.
// Returns storage.ErrNotFound when none exists or persistence is disabled.
func (o *Orchestrator) LatestWeights(ctx context.Context, strategy string, threshold int) (*domain.OptimizationRun, error) {
	if !domain.IsStrategy(strategy) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, strategy)
	}
	if o.weights == nil {
		return nil, storage.ErrNotFound
	}
	return o.weights.GetLatest(ctx, strategy, threshold)
}

// table returns the table trained on the full history.
func (o *Orchestrator) table(ctx context.Context, w domain.WeightConfiguration) (*scoring.Table, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	s, err := o.Series(ctx)
	if err != nil {
		return nil, err
	}
	return o.tables.Get(s, w)
}

// TopNumbers returns the n best-scored numbers under w.
func (o *Orchestrator) TopNumbers(ctx context.Context, n int, w domain.WeightConfiguration) ([]domain.ScoreRecord, error) {
	if n <= 0 || n > domain.NumberSpan {
		return nil, fmt.Errorf("%w: top %d outside 1-%d", domain.ErrValidation, n, domain.NumberSpan)
	}
	t, err := o.table(ctx, w)
	if err != nil {
		return nil, err
	}
	return t.Rank()[:n], nil
}

// NumberProbability is one entry of the normalized score distribution.
type NumberProbability struct {
	Number      int     `json:"number"`
	Probability float64 `json:"probability"`
}

// ProbabilityWeights returns the normalized score distribution under w,
// ordered by number.
func (o *Orchestrator) ProbabilityWeights(ctx context.Context, w domain.WeightConfiguration) ([]NumberProbability, error) {
	t, err := o.table(ctx, w)
	if err != nil {
		return nil, err
	}
	probs := t.Probabilities()
	out := make([]NumberProbability, 0, domain.NumberSpan)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		out = append(out, NumberProbability{Number: n, Probability: probs[n]})
	}
	return out, nil
}

// GenerateRequest describes a recommendation call.
type GenerateRequest struct {
	Strategy      string                      `json:"strategy"`
	Count         int                         `json:"count"`
	Strict        bool                        `json:"strict"`
	Deterministic bool                        `json:"deterministic"`
	Seed          uint64                      `json:"seed"`    // 0 = clock-derived
	Weights       *domain.WeightConfiguration `json:"weights"` // nil = CurrentWeights
}

// GenerateResponse carries the generated combinations and the inputs that
// produced them, so a call can be replayed.
type GenerateResponse struct {
	*generator.Result
	Weights domain.WeightConfiguration `json:"weights"`
	Seed    uint64                     `json:"seed"`
	Cutoff  int                        `json:"cutoff_round"`
	Note    string                     `json:"warning,omitempty"`
}

// Generate produces combinations from the table trained on the full history.
// A shortfall is returned as a warning, not an error.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Strategy == "" {
		req.Strategy = domain.StrategyHybrid
	}
	if !domain.IsStrategy(req.Strategy) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, req.Strategy)
	}
	if req.Count <= 0 {
		req.Count = 5
	}
	if req.Seed == 0 {
		req.Seed = uint64(o.now().UnixNano())
	}
	var w domain.WeightConfiguration
	if req.Weights != nil {
		w = *req.Weights
	} else {
		w = o.CurrentWeights(ctx, domain.StrategyScore, o.tuning.Optimizer.Threshold)
	}

	t, err := o.table(ctx, w)
	if err != nil {
		return nil, err
	}
	gen := generator.New(t, o.tuning.GeneratorOptions())
	res, err := gen.Generate(ctx, generator.Request{
		Strategy:      req.Strategy,
		Count:         req.Count,
		Strict:        req.Strict,
		Seed:          req.Seed,
		Deterministic: req.Deterministic,
	})
	if err != nil {
		return nil, err
	}

	observability.RecordGeneration(res.Strategy, len(res.Combinations), res.Shortfall > 0)
	resp := &GenerateResponse{Result: res, Weights: w, Seed: req.Seed, Cutoff: t.Cutoff()}
	if warn := res.Warning(); warn != nil {
		resp.Note = warn.Error()
		o.log.Warn().Err(warn).Str("strategy", res.Strategy).Msg("generation short")
	}
	return resp, nil
}

// RunBacktest runs the rate regime. Zero fields take the tuning defaults;
// the range defaults to the last optimizer window.
func (o *Orchestrator) RunBacktest(ctx context.Context, req backtest.RateRequest) (*backtest.RateReport, error) {
	s, err := o.Series(ctx)
	if err != nil {
		return nil, err
	}
	req = o.rateDefaults(ctx, req)
	req.From, req.To = o.window(s, req.From, req.To)

	return o.runner.RunRateSeries(ctx, s, req)
}

// VerifyCache replays the cached rounds a rate request would be served and
// compares them with the stored results. Zero bounds cover the whole entry.
func (o *Orchestrator) VerifyCache(ctx context.Context, req backtest.RateRequest, repair bool) (*verification.Report, error) {
	s, err := o.Series(ctx)
	if err != nil {
		return nil, err
	}
	return o.verifier.Verify(ctx, s, o.rateDefaults(ctx, req), repair)
}

func (o *Orchestrator) rateDefaults(ctx context.Context, req backtest.RateRequest) backtest.RateRequest {
	if req.Strategy == "" {
		req.Strategy = domain.StrategyScore
	}
	if req.Threshold == 0 {
		req.Threshold = backtest.DefaultThreshold
	}
	if req.CombosPerRound == 0 {
		req.CombosPerRound = o.tuning.Backtest.CombosPerRound
	}
	if req.Seed == 0 {
		req.Seed = o.tuning.Backtest.Seed
	}
	if req.Weights == (domain.WeightConfiguration{}) {
		req.Weights = o.CurrentWeights(ctx, req.Strategy, req.Threshold)
	}
	return req
}

// RunFixedWager runs the fixed-wager regime with the tuning prize table
// unless the request carries one.
func (o *Orchestrator) RunFixedWager(ctx context.Context, req backtest.FixedRequest) (*backtest.WagerReport, error) {
	s, err := o.Series(ctx)
	if err != nil {
		return nil, err
	}
	if req.Strategy == "" {
		req.Strategy = domain.StrategyHybrid
	}
	if req.Prizes == nil {
		prizes := o.tuning.Backtest.Prizes
		req.Prizes = &prizes
	}
	if req.Weights == (domain.WeightConfiguration{}) {
		req.Weights = o.CurrentWeights(ctx, req.Strategy, backtest.DefaultThreshold)
	}
	req.From, req.To = o.window(s, req.From, req.To)

	return o.runner.RunFixedSeries(ctx, s, req)
}

// Optimize searches weights for req and saves the run when a weights store
// is configured. Zero budgets take the tuning values; a zero range is the
// tuning window ending at the latest draw.
func (o *Orchestrator) Optimize(ctx context.Context, req optimizer.Request) (*domain.OptimizationRun, error) {
	s, err := o.Series(ctx)
	if err != nil {
		return nil, err
	}
	if req.Strategy == "" {
		req.Strategy = o.tuning.Optimizer.Strategy
	}
	if req.Threshold == 0 {
		req.Threshold = o.tuning.Optimizer.Threshold
	}
	if req.Bounds == nil {
		bounds := o.tuning.Bounds
		req.Bounds = &bounds
	}
	if req.Trials == 0 {
		req.Trials = o.tuning.Optimizer.Trials
	}
	if req.Step == 0 {
		req.Step = o.tuning.Optimizer.Step
	}
	if req.FineTuneStep == 0 {
		req.FineTuneStep = o.tuning.Optimizer.FineTuneStep
	}
	req.From, req.To = o.window(s, req.From, req.To)

	objective := optimizer.NewBacktestObjective(o.runner, s, backtest.RateRequest{
		From:           req.From,
		To:             req.To,
		Strategy:       req.Strategy,
		Threshold:      req.Threshold,
		CombosPerRound: o.tuning.Backtest.CombosPerRound,
		Seed:           o.tuning.Backtest.Seed,
	})
	opt := optimizer.New(objective, optimizer.Options{
		Logger: o.log,
		Store:  o.weights,
		Now:    o.now,
	})
	return opt.Optimize(ctx, req)
}

// InspectRequest selects one walk-forward round to inspect.
type InspectRequest struct {
	Round    int
	Strategy string
	Count    int
	Seed     uint64 // 0 = the round number
	Weights  *domain.WeightConfiguration
	Top      int // numbers to list, 0 = 10
}

// Prediction is one generated ticket scored against the target draw.
type Prediction struct {
	generator.Scored
	Matches  int  `json:"matches"`
	BonusHit bool `json:"bonus_hit"`
	Rank     int  `json:"rank"` // 0 = no prize
}

// RoundInspection shows what the model knew before a round and how its
// tickets fared.
type RoundInspection struct {
	Target      domain.DrawRecord          `json:"target"`
	Training    int                        `json:"training_rounds"`
	Cutoff      int                        `json:"cutoff_round"`
	Weights     domain.WeightConfiguration `json:"weights"`
	Top         []domain.ScoreRecord       `json:"top"`
	TopHits     int                        `json:"top_hits"`
	Predictions []Prediction               `json:"predictions"`
	Warning     string                     `json:"warning,omitempty"`

	// DrawnProfiles are the drawn numbers' profiles as of the cutoff.
	DrawnProfiles []domain.NumberProfile `json:"drawn_profiles"`
	// DrawnScore is what the generator's scorer gives the drawn combination.
	DrawnScore generator.Breakdown `json:"drawn_score"`
}

// InspectRound trains on the rounds strictly before req.Round, generates
// tickets and scores them against the actual draw.
func (o *Orchestrator) InspectRound(ctx context.Context, req InspectRequest) (*RoundInspection, error) {
	if req.Strategy == "" {
		req.Strategy = domain.StrategyHybrid
	}
	if req.Count <= 0 {
		req.Count = 5
	}
	if req.Top <= 0 {
		req.Top = 10
	}
	if req.Seed == 0 {
		req.Seed = backtest.RoundSeed(req.Round)
	}
	s, err := o.Series(ctx)
	if err != nil {
		return nil, err
	}
	round, err := o.runner.Replay().PrepareRound(s, req.Round)
	if err != nil {
		return nil, err
	}
	w := o.CurrentWeights(ctx, domain.StrategyScore, backtest.DefaultThreshold)
	if req.Weights != nil {
		w = *req.Weights
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	t, err := o.tables.Get(round.Training, w)
	if err != nil {
		return nil, err
	}

	gen := generator.New(t, o.tuning.GeneratorOptions())
	res, err := gen.Generate(ctx, generator.Request{
		Strategy: req.Strategy,
		Count:    req.Count,
		Seed:     req.Seed,
	})
	if err != nil {
		return nil, err
	}

	target := round.Target
	winning := target.Winning()
	out := &RoundInspection{
		Target:   target,
		Training: round.Training.Len(),
		Cutoff:   t.Cutoff(),
		Weights:  w,
		Top:      t.Rank()[:min(req.Top, domain.NumberSpan)],
	}
	for _, rec := range out.Top {
		if winning.Contains(rec.Number) {
			out.TopHits++
		}
	}
	for _, p := range t.Profiles().All() {
		if winning.Contains(p.Number) {
			out.DrawnProfiles = append(out.DrawnProfiles, p)
		}
	}
	out.DrawnScore = gen.Scorer().Score(winning)
	for _, sc := range res.Combinations {
		matches := sc.Combination.Matches(winning)
		bonus := sc.Combination.Contains(target.Bonus)
		out.Predictions = append(out.Predictions, Prediction{
			Scored:   sc,
			Matches:  matches,
			BonusHit: bonus,
			Rank:     backtest.Rank(matches, bonus),
		})
	}
	if warn := res.Warning(); warn != nil {
		out.Warning = warn.Error()
	}
	return out, nil
}

// ScheduledRequest is the optimizer request the tuning file describes,
// over the window ending at the latest draw.
func (o *Orchestrator) ScheduledRequest(ctx context.Context) (optimizer.Request, error) {
	s, err := o.Series(ctx)
	if err != nil {
		return optimizer.Request{}, err
	}
	from, to := o.window(s, 0, 0)
	return o.tuning.OptimizerRequest(from, to), nil
}

// window fills a zero range with the tuning window ending at the latest
// draw, never starting before the first trainable round.
func (o *Orchestrator) window(s *domain.Series, from, to int) (int, int) {
	if to == 0 {
		to = s.LastRound()
	}
	if from == 0 {
		from = to - o.tuning.Optimizer.Window + 1
		if first := o.runner.Replay().TrainableFrom(s); first > from {
			from = first
		}
	}
	return from, to
}

// IsNotFound reports whether err means no stored record exists.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
