package backtest

import "lotto-lab/internal/domain"

// DefaultUnitCost is the price of one ticket.
const DefaultUnitCost int64 = 1000

// PrizeTable maps ranks 1..5 to fixed payouts.
type PrizeTable struct {
	Payouts  [5]int64 `json:"payouts" toml:"payouts"` // index 0 = rank 1
	UnitCost int64    `json:"unit_cost" toml:"unit_cost"`
}

// DefaultPrizeTable returns the fixed payout schedule.
func DefaultPrizeTable() PrizeTable {
	return PrizeTable{
		Payouts:  [5]int64{2_000_000_000, 50_000_000, 1_500_000, 50_000, 5_000},
		UnitCost: DefaultUnitCost,
	}
}

// Rank returns the prize rank for a ticket, 0 when it wins nothing.
//
//	6 matches          -> 1
//	5 matches + bonus  -> 2
//	5 matches          -> 3
//	4 matches          -> 4
//	3 matches          -> 5
func Rank(matches int, bonusHit bool) int {
	switch {
	case matches == domain.PickCount:
		return 1
	case matches == 5 && bonusHit:
		return 2
	case matches == 5:
		return 3
	case matches == 4:
		return 4
	case matches == 3:
		return 5
	default:
		return 0
	}
}

// Payout returns the fixed payout for rank.
func (t PrizeTable) Payout(rank int) int64 {
	if rank < 1 || rank > len(t.Payouts) {
		return 0
	}
	return t.Payouts[rank-1]
}

// PublishedPayout returns the per-winner payout the draw published for rank,
// falling back to the fixed table when the draw carries none.
func (t PrizeTable) PublishedPayout(d *domain.DrawRecord, rank int) int64 {
	if rank < 1 || rank > len(d.Prizes) {
		return 0
	}
	if p := d.Prizes[rank-1].Payout; p > 0 {
		return p
	}
	return t.Payout(rank)
}
