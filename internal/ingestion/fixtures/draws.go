// Package fixtures builds synthetic draw histories for tests and demos.
package fixtures

import (
	"math/rand/v2"
	"time"

	"lotto-lab/internal/domain"
)

// FirstDrawDate anchors synthetic rounds; round r is drawn r-1 weeks later.
var FirstDrawDate = time.Date(2002, time.December, 7, 20, 45, 0, 0, time.UTC)

// DefaultPrizes is a plausible published prize table (winners, payout).
var DefaultPrizes = [5]domain.PrizeTier{
	{Winners: 8, Payout: 2_000_000_000},
	{Winners: 60, Payout: 50_000_000},
	{Winners: 2_500, Payout: 1_500_000},
	{Winners: 120_000, Payout: 50_000},
	{Winners: 2_000_000, Payout: 5_000},
}

// UniformDraws returns count rounds (1..count) of uniformly random draws.
func UniformDraws(count int, seed uint64) []domain.DrawRecord {
	rng := rand.New(rand.NewPCG(seed, 0x6c6f74746f))
	out := make([]domain.DrawRecord, count)
	for i := range out {
		perm := rng.Perm(domain.NumberSpan)
		nums := make([]int, domain.PickCount)
		for j := range nums {
			nums[j] = perm[j] + domain.MinNumber
		}
		c, err := domain.NewCombination(nums)
		if err != nil {
			panic(err)
		}
		out[i] = domain.DrawRecord{
			Round:   i + 1,
			Date:    FirstDrawDate.AddDate(0, 0, 7*i),
			Numbers: c,
			Bonus:   perm[domain.PickCount] + domain.MinNumber,
			Prizes:  DefaultPrizes,
		}
	}
	return out
}

// RepeatedDraws returns count rounds that all draw nums.
func RepeatedDraws(count int, nums ...int) []domain.DrawRecord {
	c := domain.MustCombination(nums...)
	bonus := domain.MaxNumber
	for c.Contains(bonus) {
		bonus--
	}
	out := make([]domain.DrawRecord, count)
	for i := range out {
		out[i] = domain.DrawRecord{
			Round:   i + 1,
			Date:    FirstDrawDate.AddDate(0, 0, 7*i),
			Numbers: c,
			Bonus:   bonus,
			Prizes:  DefaultPrizes,
		}
	}
	return out
}

// UniformSeries is UniformDraws wrapped in a Series.
func UniformSeries(count int, seed uint64) *domain.Series {
	s, err := domain.NewSeries(UniformDraws(count, seed))
	if err != nil {
		panic(err)
	}
	return s
}

// Pointers converts records for storage APIs.
func Pointers(draws []domain.DrawRecord) []*domain.DrawRecord {
	out := make([]*domain.DrawRecord, len(draws))
	for i := range draws {
		d := draws[i]
		out[i] = &d
	}
	return out
}
