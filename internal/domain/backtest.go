package domain

import (
	"sort"
	"time"
)

// BacktestResult is the per-round outcome of the rate regime.
type BacktestResult struct {
	Round     int           `json:"round"`
	Predicted []Combination `json:"predicted"`
	Actual    Combination   `json:"actual"`
	Bonus     int           `json:"bonus"`
	Matches   []int         `json:"matches"`
	MaxMatch  int           `json:"max_match"`
	Hit       bool          `json:"hit"`
	Threshold int           `json:"threshold"`
	Requested int           `json:"requested,omitempty"`
	// Shortfall counts requested tickets the generator could not produce.
	Shortfall int `json:"shortfall,omitempty"`
}

// RateMetrics aggregates a rate-regime run for one explicit threshold.
type RateMetrics struct {
	Threshold         int                `json:"threshold"`
	CombosPerRound    int                `json:"combos_per_round"`
	TotalRounds       int                `json:"total_rounds"`
	Hits              int                `json:"hits"`
	HitRate           float64            `json:"hit_rate"` // percent
	AvgMatch          float64            `json:"avg_match"`
	StdMatch          float64            `json:"std_match"`
	MaxMatch          int                `json:"max_match"`
	Distribution      [PickCount + 1]int `json:"distribution"`
	Baseline          float64            `json:"baseline"`      // single-ticket rate, percent
	ExpectedRate      float64            `json:"expected_rate"` // random rate at CombosPerRound, percent
	Lift              float64            `json:"lift"`          // HitRate - ExpectedRate, percentage points
	LongestMissStreak int                `json:"longest_miss_streak"`
	Shortfalls        int                `json:"shortfalls"`   // tickets requested but not generated
	ShortRounds       int                `json:"short_rounds"` // rounds with a shortfall
}

// WagerResult is the per-round outcome of the fixed-wager regime.
type WagerResult struct {
	Round            int         `json:"round"`
	Predicted        Combination `json:"predicted"`
	Actual           Combination `json:"actual"`
	Bonus            int         `json:"bonus"`
	MatchCount       int         `json:"match_count"`
	BonusHit         bool        `json:"bonus_hit"`
	Rank             int         `json:"rank"` // 0 = no prize
	Prize            int64       `json:"prize"`
	Profit           int64       `json:"profit"`
	CumulativeProfit int64       `json:"cumulative_profit"`
	// NoTicket marks a round where no ticket was generated; it costs nothing.
	NoTicket bool `json:"no_ticket,omitempty"`
}

// WagerMetrics aggregates a fixed-wager run.
type WagerMetrics struct {
	TotalRounds int     `json:"total_rounds"`
	TotalCost   int64   `json:"total_cost"`
	TotalPrize  int64   `json:"total_prize"`
	NetProfit   int64   `json:"net_profit"`
	ROI         float64 `json:"roi"`         // prize / cost * 100
	RankCounts  [6]int  `json:"rank_counts"` // index = rank, 0 = no prize
	MaxDrawdown float64 `json:"max_drawdown"`
	WinRounds   int     `json:"win_rounds"`
	Shortfalls  int     `json:"shortfalls"` // rounds played without a ticket
}

// BacktestCacheEntry is the memoized rate-regime output for one cache key.
// Results are kept sorted by round; Rounds lists the covered rounds.
type BacktestCacheEntry struct {
	Key            string              `json:"key"`
	Strategy       string              `json:"strategy"`
	Weights        WeightConfiguration `json:"weights"`
	Threshold      int                 `json:"threshold"`
	CombosPerRound int                 `json:"combos_per_round"`
	Seed           uint64              `json:"seed"`
	Results        []BacktestResult    `json:"results"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Covers reports whether the entry holds a result for round.
func (e *BacktestCacheEntry) Covers(round int) bool {
	i := sort.Search(len(e.Results), func(i int) bool { return e.Results[i].Round >= round })
	return i < len(e.Results) && e.Results[i].Round == round
}
