// Package constraint decides whether a 6-number combination is admissible.
package constraint

import (
	"sort"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/features"
)

// Strict-mode limits.
const (
	MaxPerZone = 4
	MaxRunLen  = 3 // a run of 4 consecutive integers is rejected
)

// Options enables the history-driven strict filters. A nil set disables the
// corresponding filter.
type Options struct {
	ForbiddenPairs *domain.PairSet
	Overheated     *domain.NumberSet
}

// FromPatterns builds Options from analyzed patterns.
func FromPatterns(p *features.Patterns, forbidden, overheated bool) Options {
	var o Options
	if p == nil {
		return o
	}
	if forbidden {
		o.ForbiddenPairs = &p.ForbiddenPairs
	}
	if overheated {
		o.Overheated = &p.Overheated
	}
	return o
}

// Validator is stateless apart from its filter sets and safe for concurrent use.
type Validator struct {
	opts Options
}

// New creates a Validator.
func New(opts Options) *Validator {
	return &Validator{opts: opts}
}

// Check validates an unsorted candidate. Baseline rules always apply;
// strict adds the structural rules and any enabled filters.
func (v *Validator) Check(nums []int, strict bool) error {
	c, err := domain.NewCombination(nums)
	if err != nil {
		return err
	}
	if !strict {
		return nil
	}
	return v.CheckStrict(c)
}

// IsValid is Check reduced to a bool.
func (v *Validator) IsValid(nums []int, strict bool) bool {
	return v.Check(nums, strict) == nil
}

// CheckCombination validates an already built combination.
func (v *Validator) CheckCombination(c domain.Combination, strict bool) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !strict {
		return nil
	}
	return v.CheckStrict(c)
}

// CheckStrict runs every strict predicate in a fixed order and returns the
// first violation.
func (v *Validator) CheckStrict(c domain.Combination) error {
	for _, check := range []func(domain.Combination) error{
		checkZones,
		checkParity,
		checkRuns,
		v.checkForbidden,
		v.checkOverheated,
	} {
		if err := check(c); err != nil {
			return err
		}
	}
	return nil
}

func checkZones(c domain.Combination) error {
	split := features.SplitOf(c)
	for z, count := range split {
		if count > MaxPerZone {
			return &domain.ValidationError{Field: "combination", Reason: domain.ReasonZone, Detail: domain.Zone(z).String()}
		}
	}
	return nil
}

func checkParity(c domain.Combination) error {
	odd := features.OddCount(c)
	if odd == 0 || odd == domain.PickCount {
		return &domain.ValidationError{Field: "combination", Reason: domain.ReasonParity}
	}
	return nil
}

func checkRuns(c domain.Combination) error {
	if LongestRun(c) > MaxRunLen {
		return &domain.ValidationError{Field: "combination", Reason: domain.ReasonRun}
	}
	return nil
}

func (v *Validator) checkForbidden(c domain.Combination) error {
	if v.opts.ForbiddenPairs == nil {
		return nil
	}
	if v.opts.ForbiddenPairs.CountIn(c) > 0 {
		return &domain.ValidationError{Field: "combination", Reason: domain.ReasonForbidden}
	}
	return nil
}

func (v *Validator) checkOverheated(c domain.Combination) error {
	if v.opts.Overheated == nil {
		return nil
	}
	for _, n := range c {
		if v.opts.Overheated.Has(n) {
			return &domain.ValidationError{Field: "combination", Reason: domain.ReasonOverheated}
		}
	}
	return nil
}

// LongestRun returns the length of the longest run of consecutive integers.
func LongestRun(c domain.Combination) int {
	nums := c.Slice()
	sort.Ints(nums)
	best, cur := 1, 1
	for i := 1; i < len(nums); i++ {
		if nums[i] == nums[i-1]+1 {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 1
		}
	}
	return best
}
