package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"lotto-lab/internal/backtest"
	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

// ErrNotCached is returned when no cached rounds exist for the request.
var ErrNotCached = errors.New("no cached rounds for request")

// CacheVerifier replays cached rate-regime rounds.
type CacheVerifier struct {
	runner *backtest.Runner
	cache  storage.BacktestCacheStore
	log    zerolog.Logger
}

// NewCacheVerifier creates a new CacheVerifier.
func NewCacheVerifier(runner *backtest.Runner, cache storage.BacktestCacheStore, log zerolog.Logger) *CacheVerifier {
	return &CacheVerifier{
		runner: runner,
		cache:  cache,
		log:    log.With().Str("component", "verification").Logger(),
	}
}

// Verify recomputes the cached rounds of req that fall inside [From, To]
// (zero bounds are open) and compares them field by field. With repair set,
// a divergent entry is deleted so the next run recomputes it.
func (v *CacheVerifier) Verify(ctx context.Context, series *domain.Series, req backtest.RateRequest, repair bool) (*Report, error) {
	if v.cache == nil {
		return nil, ErrNotCached
	}
	key := req.CacheKey()
	entry, err := v.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: key %s", ErrNotCached, key)
		}
		return nil, err
	}

	var cached []domain.BacktestResult
	for _, res := range entry.Results {
		if (req.From == 0 || res.Round >= req.From) && (req.To == 0 || res.Round <= req.To) {
			cached = append(cached, res)
		}
	}
	if len(cached) == 0 {
		return nil, fmt.Errorf("%w: key %s has no rounds in %d-%d", ErrNotCached, key, req.From, req.To)
	}

	// cached results are sorted by round
	req.From, req.To = cached[0].Round, cached[len(cached)-1].Round
	req.NoCache = true
	fresh, err := v.runner.RunRateSeries(ctx, series, req)
	if err != nil {
		return nil, fmt.Errorf("replay rounds %d-%d: %w", req.From, req.To, err)
	}
	replayed := make(map[int]*domain.BacktestResult, len(fresh.Results))
	for i := range fresh.Results {
		replayed[fresh.Results[i].Round] = &fresh.Results[i]
	}

	report := &Report{
		Key:         key,
		TotalRounds: len(cached),
		Results:     make([]RoundResult, 0, len(cached)),
	}
	for i := range cached {
		stored := &cached[i]
		result := RoundResult{Round: stored.Round}
		if r, ok := replayed[stored.Round]; ok {
			result.Divergences = CompareResults(stored, r)
		} else {
			result.Divergences = []FieldDivergence{{Field: "Round", Expected: stored.Round, Actual: nil}}
		}
		result.Match = len(result.Divergences) == 0
		if result.Match {
			report.MatchedRounds++
		} else {
			report.DivergentRounds++
		}
		report.Results = append(report.Results, result)
	}

	if !report.OK() && repair {
		if err := v.cache.Delete(ctx, key); err != nil {
			return report, fmt.Errorf("delete divergent entry: %w", err)
		}
		report.Repaired = true
	}

	v.log.Info().
		Str("key", key).
		Int("rounds", report.TotalRounds).
		Int("divergent", report.DivergentRounds).
		Bool("repaired", report.Repaired).
		Msg("cache verified")
	return report, nil
}
