package replay

import (
	"context"

	"lotto-lab/internal/domain"
)

// Round is one walk-forward step: the draw to predict plus the history that
// may be used to predict it.
type Round struct {
	Target domain.DrawRecord
	// Training holds only rounds strictly before Target.Round.
	Training *domain.Series
}

// RoundEngine processes rounds in ascending order.
type RoundEngine interface {
	// OnRound is called once per target round, in round order.
	OnRound(ctx context.Context, round *Round) error
}

// RoundEngineFunc adapts a function to RoundEngine.
type RoundEngineFunc func(ctx context.Context, round *Round) error

// OnRound calls f.
func (f RoundEngineFunc) OnRound(ctx context.Context, round *Round) error {
	return f(ctx, round)
}
