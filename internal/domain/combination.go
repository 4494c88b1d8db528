package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Combination is a set of PickCount distinct numbers, held sorted ascending
// so that array equality is set equality.
type Combination [PickCount]int

// NewCombination validates nums and returns the sorted combination.
func NewCombination(nums []int) (Combination, error) {
	var c Combination
	if len(nums) != PickCount {
		return c, newValidationError("combination", ReasonCount, "got %d numbers, want %d", len(nums), PickCount)
	}
	copy(c[:], nums)
	sort.Ints(c[:])
	if err := c.Validate(); err != nil {
		return Combination{}, err
	}
	return c, nil
}

// MustCombination is NewCombination that panics. Intended for tests and literals.
func MustCombination(nums ...int) Combination {
	c, err := NewCombination(nums)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate enforces range and distinctness. The receiver must be sorted.
func (c Combination) Validate() error {
	for i, n := range c {
		if n < MinNumber || n > MaxNumber {
			return newValidationError("combination", ReasonRange, "number %d", n)
		}
		if i > 0 && c[i-1] >= n {
			if c[i-1] == n {
				return newValidationError("combination", ReasonDuplicate, "number %d", n)
			}
			return newValidationError("combination", ReasonRange, "numbers not sorted")
		}
	}
	return nil
}

// Contains reports whether n is part of the combination.
func (c Combination) Contains(n int) bool {
	i := sort.SearchInts(c[:], n)
	return i < len(c) && c[i] == n
}

// Matches counts numbers shared with other.
func (c Combination) Matches(other Combination) int {
	i, j, m := 0, 0, 0
	for i < PickCount && j < PickCount {
		switch {
		case c[i] == other[j]:
			m++
			i++
			j++
		case c[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return m
}

// Sum returns the sum of the numbers.
func (c Combination) Sum() int {
	s := 0
	for _, n := range c {
		s += n
	}
	return s
}

// Slice returns a copy of the numbers as a slice.
func (c Combination) Slice() []int {
	out := make([]int, PickCount)
	copy(out, c[:])
	return out
}

func (c Combination) String() string {
	parts := make([]string, PickCount)
	for i, n := range c {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, "-")
}
