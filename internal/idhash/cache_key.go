package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"

	"lotto-lab/internal/domain"
)

// CacheKeyParams are the inputs that determine a rate-regime backtest result.
type CacheKeyParams struct {
	Strategy       string
	Weights        domain.WeightConfiguration
	Threshold      int
	CombosPerRound int
	Seed           uint64
	Deterministic  bool
}

// ComputeCacheKey computes a deterministic backtest cache key using SHA256.
// Formula: SHA256(strategy|freq|trend|absence|hotness|threshold|combos|seed|deterministic)
// Returns the base58-encoded hash.
func ComputeCacheKey(p CacheKeyParams) string {
	w := p.Weights
	data := fmt.Sprintf("%s|%.6f|%.6f|%.6f|%.6f|%d|%d|%d|%t",
		p.Strategy,
		w.Frequency,
		w.Trend,
		w.Absence,
		w.Hotness,
		p.Threshold,
		p.CombosPerRound,
		p.Seed,
		p.Deterministic,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
