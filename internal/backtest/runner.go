// Package backtest replays the draw history round by round, predicting each
// round from strictly earlier draws, and scores the predictions.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/generator"
	"lotto-lab/internal/idhash"
	"lotto-lab/internal/metrics"
	"lotto-lab/internal/observability"
	"lotto-lab/internal/replay"
	"lotto-lab/internal/scoring"
	"lotto-lab/internal/storage"
)

// Rate regime defaults.
const (
	DefaultCombosPerRound = 10
	DefaultSeed           = 42
	DefaultThreshold      = 3
)

// Regime labels.
const (
	RegimeRate  = "rate"
	RegimeFixed = "fixed"
)

// ErrInvalidThreshold is returned for a hit threshold outside 1..6.
var ErrInvalidThreshold = errors.New("invalid hit threshold")

// ProgressFunc reports completed rounds. It may be called concurrently.
type ProgressFunc func(done, total int)

// Options configures a Runner.
type Options struct {
	Workers   int            // 0 = GOMAXPROCS
	Tables    *scoring.Cache // shared score tables, optional
	Generator generator.Options
	Logger    zerolog.Logger
}

// RateRequest describes a rate-regime backtest.
type RateRequest struct {
	From, To       int
	Strategy       string
	Weights        domain.WeightConfiguration
	Threshold      int
	CombosPerRound int // 0 = DefaultCombosPerRound
	Seed           uint64
	Deterministic  bool
	NoCache        bool
	// Predictor overrides the generator-backed predictor. The cache key is
	// still derived from Strategy.
	Predictor Predictor
	Progress  ProgressFunc
}

// CacheKey returns the key the request's results are memoized under.
func (req RateRequest) CacheKey() string {
	combos := req.CombosPerRound
	if combos == 0 {
		combos = DefaultCombosPerRound
	}
	return idhash.ComputeCacheKey(idhash.CacheKeyParams{
		Strategy:       req.Strategy,
		Weights:        req.Weights,
		Threshold:      req.Threshold,
		CombosPerRound: combos,
		Seed:           req.Seed,
		Deterministic:  req.Deterministic,
	})
}

// CacheStatus reports how a rate run used the cache.
type CacheStatus struct {
	Key      string `json:"key"`
	Hit      bool   `json:"hit"`
	Served   int    `json:"served"`
	Computed int    `json:"computed"`
}

// RateReport is the output of a rate-regime run.
type RateReport struct {
	Strategy string                     `json:"strategy"`
	Weights  domain.WeightConfiguration `json:"weights"`
	From     int                        `json:"from"`
	To       int                        `json:"to"`
	Results  []domain.BacktestResult    `json:"results"`
	Metrics  domain.RateMetrics         `json:"metrics"`
	Cache    CacheStatus                `json:"cache"`
}

// MetricsAt recomputes the aggregate for another threshold from the same
// per-round results.
func (r *RateReport) MetricsAt(threshold int) (domain.RateMetrics, error) {
	return metrics.ComputeRate(r.Results, threshold, r.Metrics.CombosPerRound)
}

// FixedRequest describes a fixed-wager backtest: one ticket per round,
// seeded with the round number.
type FixedRequest struct {
	From, To      int
	Strategy      string
	Weights       domain.WeightConfiguration
	Deterministic bool
	Prizes        *PrizeTable // nil = DefaultPrizeTable
	// PublishedPayouts pays each rank at the per-winner amount the draw
	// published, when present.
	PublishedPayouts bool
	Predictor        Predictor
	Progress         ProgressFunc
}

// WagerReport is the output of a fixed-wager run.
type WagerReport struct {
	Strategy string               `json:"strategy"`
	From     int                  `json:"from"`
	To       int                  `json:"to"`
	Results  []domain.WagerResult `json:"results"`
	Metrics  domain.WagerMetrics  `json:"metrics"`
}

// Runner executes walk-forward backtests.
type Runner struct {
	replayRunner *replay.Runner
	cache        storage.BacktestCacheStore
	locks        *keyLock
	opts         Options
	log          zerolog.Logger
	now          func() time.Time
}

// NewRunner creates a new backtest runner. cache may be nil to disable
// result caching.
func NewRunner(replayRunner *replay.Runner, cache storage.BacktestCacheStore, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		replayRunner: replayRunner,
		cache:        cache,
		locks:        newKeyLock(),
		opts:         opts,
		log:          opts.Logger.With().Str("component", "backtest").Logger(),
		now:          time.Now,
	}
}

// Replay returns the underlying replay runner.
func (r *Runner) Replay() *replay.Runner {
	return r.replayRunner
}

// RunRate loads the history and runs a rate-regime backtest.
func (r *Runner) RunRate(ctx context.Context, req RateRequest) (*RateReport, error) {
	series, err := r.replayRunner.Load(ctx)
	if err != nil {
		return nil, err
	}
	return r.RunRateSeries(ctx, series, req)
}

// RunRateSeries runs a rate-regime backtest over an already loaded series.
// Rounds already held in the cache for the same key are served without
// recomputation; newly computed rounds are merged into the entry.
func (r *Runner) RunRateSeries(ctx context.Context, series *domain.Series, req RateRequest) (*RateReport, error) {
	if req.CombosPerRound == 0 {
		req.CombosPerRound = DefaultCombosPerRound
	}
	if err := validateRate(req); err != nil {
		return nil, err
	}
	start := r.now()

	rounds, err := r.replayRunner.Prepare(series, req.From, req.To)
	if err != nil {
		return nil, err
	}

	key := req.CacheKey()
	useCache := r.cache != nil && !req.NoCache
	if useCache {
		unlock := r.locks.Lock(key)
		defer unlock()
	}

	var entry *domain.BacktestCacheEntry
	if useCache {
		entry = r.loadEntry(ctx, key)
	}

	cached := make(map[int]domain.BacktestResult)
	if entry != nil {
		for _, res := range entry.Results {
			cached[res.Round] = res
		}
	}

	results := make([]domain.BacktestResult, 0, len(rounds))
	missing := make([]*replay.Round, 0, len(rounds))
	for _, round := range rounds {
		if res, ok := cached[round.Target.Round]; ok {
			results = append(results, res)
			continue
		}
		missing = append(missing, round)
	}
	served := len(results)

	predictor := req.Predictor
	if predictor == nil {
		predictor = r.predictorFor(req.Strategy, req.Weights, req.Deterministic)
	}
	computed, err := r.evaluate(ctx, predictor, missing, req.CombosPerRound, req.Threshold, FixedSeed(req.Seed), req.Progress)
	if err != nil {
		return nil, err
	}
	results = append(results, computed...)
	sortResults(results)

	if useCache && len(computed) > 0 {
		r.storeEntry(ctx, key, req, entry, computed)
	}

	m, err := metrics.ComputeRate(results, req.Threshold, req.CombosPerRound)
	if err != nil {
		return nil, err
	}

	if m.Shortfalls > 0 {
		r.log.Warn().
			Str("strategy", req.Strategy).
			Int("shortfalls", m.Shortfalls).
			Int("short_rounds", m.ShortRounds).
			Float64("expected_rate", m.ExpectedRate).
			Msg("generator produced fewer combinations than requested")
	}

	status := CacheStatus{Key: key, Hit: served > 0, Served: served, Computed: len(computed)}
	observability.RecordBacktest(RegimeRate, status.Computed, status.Served, status.Hit, r.now().Sub(start).Seconds())
	r.log.Info().
		Str("strategy", req.Strategy).
		Int("from", req.From).
		Int("to", req.To).
		Int("threshold", req.Threshold).
		Int("served", served).
		Int("computed", len(computed)).
		Float64("hit_rate", m.HitRate).
		Msg("rate backtest complete")

	return &RateReport{
		Strategy: req.Strategy,
		Weights:  req.Weights,
		From:     req.From,
		To:       req.To,
		Results:  results,
		Metrics:  m,
		Cache:    status,
	}, nil
}

// RunFixed loads the history and runs a fixed-wager backtest.
func (r *Runner) RunFixed(ctx context.Context, req FixedRequest) (*WagerReport, error) {
	series, err := r.replayRunner.Load(ctx)
	if err != nil {
		return nil, err
	}
	return r.RunFixedSeries(ctx, series, req)
}

// RunFixedSeries runs a fixed-wager backtest over an already loaded series.
func (r *Runner) RunFixedSeries(ctx context.Context, series *domain.Series, req FixedRequest) (*WagerReport, error) {
	if req.Predictor == nil && !domain.IsStrategy(req.Strategy) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, req.Strategy)
	}
	if err := req.Weights.Validate(); err != nil {
		return nil, err
	}
	prizes := DefaultPrizeTable()
	if req.Prizes != nil {
		prizes = *req.Prizes
	}
	start := r.now()

	rounds, err := r.replayRunner.Prepare(series, req.From, req.To)
	if err != nil {
		return nil, err
	}

	predictor := req.Predictor
	if predictor == nil {
		predictor = r.predictorFor(req.Strategy, req.Weights, req.Deterministic)
	}
	raw, err := r.evaluate(ctx, predictor, rounds, 1, 3, RoundSeed, req.Progress)
	if err != nil {
		return nil, err
	}

	results := make([]domain.WagerResult, len(raw))
	for i, res := range raw {
		target, _ := series.Round(res.Round)
		results[i] = wagerResult(&target, res, prizes, req.PublishedPayouts)
	}
	metrics.AccumulateProfit(results, prizes.UnitCost)

	m, err := metrics.ComputeWager(results, prizes.UnitCost)
	if err != nil {
		return nil, err
	}

	if m.Shortfalls > 0 {
		r.log.Warn().
			Str("strategy", req.Strategy).
			Int("rounds_without_ticket", m.Shortfalls).
			Msg("fixed-wager rounds skipped without a ticket")
	}

	observability.RecordBacktest(RegimeFixed, len(results), 0, false, r.now().Sub(start).Seconds())
	r.log.Info().
		Str("strategy", req.Strategy).
		Int("from", req.From).
		Int("to", req.To).
		Int64("net_profit", m.NetProfit).
		Float64("roi", m.ROI).
		Msg("fixed-wager backtest complete")

	return &WagerReport{
		Strategy: req.Strategy,
		From:     req.From,
		To:       req.To,
		Results:  results,
		Metrics:  m,
	}, nil
}

func wagerResult(target *domain.DrawRecord, res domain.BacktestResult, prizes PrizeTable, published bool) domain.WagerResult {
	out := domain.WagerResult{
		Round:  res.Round,
		Actual: res.Actual,
		Bonus:  res.Bonus,
	}
	if len(res.Predicted) == 0 {
		out.NoTicket = true
		return out
	}
	ticket := res.Predicted[0]
	out.Predicted = ticket
	out.MatchCount = res.Matches[0]
	out.BonusHit = ticket.Contains(target.Bonus)
	out.Rank = Rank(out.MatchCount, out.BonusHit)
	if published {
		out.Prize = prizes.PublishedPayout(target, out.Rank)
	} else {
		out.Prize = prizes.Payout(out.Rank)
	}
	return out
}

func (r *Runner) predictorFor(strategy string, w domain.WeightConfiguration, deterministic bool) Predictor {
	return &GeneratorPredictor{
		Strategy:      strategy,
		Weights:       w,
		Deterministic: deterministic,
		Tables:        r.opts.Tables,
		Options:       r.opts.Generator,
	}
}

// evaluate runs rounds through a pool of engines. Rounds are dealt to
// workers round-robin; each worker owns one Engine. The merged results are
// sorted by round.
func (r *Runner) evaluate(ctx context.Context, predictor Predictor, rounds []*replay.Round, combos, threshold int, seed SeedFunc, progress ProgressFunc) ([]domain.BacktestResult, error) {
	if len(rounds) == 0 {
		return nil, nil
	}
	workers := r.opts.Workers
	if workers > len(rounds) {
		workers = len(rounds)
	}

	parts := make([][]domain.BacktestResult, workers)
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			engine := NewEngine(predictor, combos, threshold, seed)
			for i := w; i < len(rounds); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := engine.OnRound(gctx, rounds[i]); err != nil {
					return err
				}
				if progress != nil {
					progress(int(done.Add(1)), len(rounds))
				}
			}
			res, err := engine.Finish()
			parts[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.BacktestResult, 0, len(rounds))
	for _, p := range parts {
		out = append(out, p...)
	}
	sortResults(out)
	return out, nil
}

func (r *Runner) loadEntry(ctx context.Context, key string) *domain.BacktestCacheEntry {
	entry, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Warn().Err(err).Str("key", key).Msg("cache read failed, recomputing")
		}
		return nil
	}
	return entry
}

// storeEntry merges computed into entry and writes it back. Existing rounds
// are never recomputed, so the merge is a disjoint union.
func (r *Runner) storeEntry(ctx context.Context, key string, req RateRequest, entry *domain.BacktestCacheEntry, computed []domain.BacktestResult) {
	merged := &domain.BacktestCacheEntry{
		Key:            key,
		Strategy:       req.Strategy,
		Weights:        req.Weights,
		Threshold:      req.Threshold,
		CombosPerRound: req.CombosPerRound,
		Seed:           req.Seed,
		UpdatedAt:      r.now().UTC(),
	}
	if entry != nil {
		merged.Results = append(merged.Results, entry.Results...)
	}
	merged.Results = append(merged.Results, computed...)
	sortResults(merged.Results)

	if err := r.cache.Put(ctx, merged); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func validateRate(req RateRequest) error {
	if req.Threshold < 1 || req.Threshold > domain.PickCount {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, req.Threshold)
	}
	if req.CombosPerRound < 1 {
		return &domain.ValidationError{Field: "combos_per_round", Reason: domain.ReasonCount, Detail: fmt.Sprintf("combos %d", req.CombosPerRound)}
	}
	if req.Predictor == nil && !domain.IsStrategy(req.Strategy) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, req.Strategy)
	}
	return req.Weights.Validate()
}

func sortResults(results []domain.BacktestResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Round < results[j].Round })
}
