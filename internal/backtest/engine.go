package backtest

import (
	"context"
	"errors"
	"fmt"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/replay"
)

// ErrInvalidTransition is returned when the engine is driven out of order.
var ErrInvalidTransition = errors.New("invalid engine state transition")

// State is the engine lifecycle state.
type State string

// State constants.
const (
	StateInitialized State = "INITIALIZED"
	StateTraining    State = "TRAINING"
	StateGenerating  State = "GENERATING"
	StateScoring     State = "SCORING"
	StateAggregated  State = "AGGREGATED"
)

// transitions lists the legal next states. SCORING loops back to TRAINING
// for the next round.
var transitions = map[State][]State{
	StateInitialized: {StateTraining, StateAggregated},
	StateTraining:    {StateGenerating},
	StateGenerating:  {StateScoring},
	StateScoring:     {StateTraining, StateAggregated},
}

// SeedFunc returns the generator seed for a target round.
type SeedFunc func(round int) uint64

// FixedSeed uses the same seed for every round.
func FixedSeed(seed uint64) SeedFunc {
	return func(int) uint64 { return seed }
}

// RoundSeed seeds each round with its own round number.
func RoundSeed(round int) uint64 {
	return uint64(round)
}

// Engine runs the predictor through one walk-forward pass.
// Implements replay.RoundEngine.
type Engine struct {
	predictor Predictor
	combos    int
	threshold int
	seed      SeedFunc

	state   State
	results []domain.BacktestResult
}

// NewEngine creates a new backtest engine that predicts combos combinations
// per round and counts a hit at threshold matches.
func NewEngine(predictor Predictor, combos, threshold int, seed SeedFunc) *Engine {
	return &Engine{
		predictor: predictor,
		combos:    combos,
		threshold: threshold,
		seed:      seed,
		state:     StateInitialized,
		results:   make([]domain.BacktestResult, 0),
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

func (e *Engine) transition(to State) error {
	for _, next := range transitions[e.state] {
		if next == to {
			e.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.state, to)
}

// OnRound trains on the round's history, predicts, and scores against the
// target draw. Implements replay.RoundEngine.
func (e *Engine) OnRound(ctx context.Context, round *replay.Round) error {
	if err := replay.CheckNoLookahead(round); err != nil {
		return err
	}

	if err := e.transition(StateTraining); err != nil {
		return err
	}
	model, err := e.predictor.Train(ctx, round.Training)
	if err != nil {
		return fmt.Errorf("train round %d: %w", round.Target.Round, err)
	}

	if err := e.transition(StateGenerating); err != nil {
		return err
	}
	predicted, err := model.Predict(ctx, e.combos, e.seed(round.Target.Round))
	if err != nil {
		return fmt.Errorf("predict round %d: %w", round.Target.Round, err)
	}

	if err := e.transition(StateScoring); err != nil {
		return err
	}
	res := ScoreRound(&round.Target, predicted, e.threshold)
	res.Requested = e.combos
	if short := e.combos - len(predicted); short > 0 {
		res.Shortfall = short
	}
	e.results = append(e.results, res)
	return nil
}

// Finish closes the pass and returns the per-round results in the order
// they were processed.
func (e *Engine) Finish() ([]domain.BacktestResult, error) {
	if err := e.transition(StateAggregated); err != nil {
		return nil, err
	}
	return e.results, nil
}

// ScoreRound compares predictions against a draw.
func ScoreRound(target *domain.DrawRecord, predicted []domain.Combination, threshold int) domain.BacktestResult {
	actual := target.Winning()
	res := domain.BacktestResult{
		Round:     target.Round,
		Predicted: predicted,
		Actual:    actual,
		Bonus:     target.Bonus,
		Matches:   make([]int, len(predicted)),
		Threshold: threshold,
	}
	for i, c := range predicted {
		m := c.Matches(actual)
		res.Matches[i] = m
		if m > res.MaxMatch {
			res.MaxMatch = m
		}
	}
	res.Hit = len(predicted) > 0 && res.MaxMatch >= threshold
	return res
}

var _ replay.RoundEngine = (*Engine)(nil)
