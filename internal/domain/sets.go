package domain

// NumberSet is a set over 1..45.
type NumberSet [MaxNumber + 1]bool

// NewNumberSet builds a set from nums, ignoring out-of-range values.
func NewNumberSet(nums ...int) NumberSet {
	var s NumberSet
	for _, n := range nums {
		s.Add(n)
	}
	return s
}

// Add inserts n.
func (s *NumberSet) Add(n int) {
	if n >= MinNumber && n <= MaxNumber {
		s[n] = true
	}
}

// Has reports membership.
func (s *NumberSet) Has(n int) bool {
	return n >= MinNumber && n <= MaxNumber && s[n]
}

// Members returns the numbers in ascending order.
func (s *NumberSet) Members() []int {
	var out []int
	for n := MinNumber; n <= MaxNumber; n++ {
		if s[n] {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the set size.
func (s *NumberSet) Len() int {
	c := 0
	for n := MinNumber; n <= MaxNumber; n++ {
		if s[n] {
			c++
		}
	}
	return c
}

// PairSet is a symmetric set of unordered number pairs.
type PairSet struct {
	m    [MaxNumber + 1][MaxNumber + 1]bool
	size int
}

// Add inserts the pair {a, b}.
func (p *PairSet) Add(a, b int) {
	if a == b || a < MinNumber || b < MinNumber || a > MaxNumber || b > MaxNumber {
		return
	}
	if !p.m[a][b] {
		p.m[a][b] = true
		p.m[b][a] = true
		p.size++
	}
}

// Has reports whether {a, b} is in the set.
func (p *PairSet) Has(a, b int) bool {
	if a < MinNumber || b < MinNumber || a > MaxNumber || b > MaxNumber {
		return false
	}
	return p.m[a][b]
}

// Len returns the number of pairs.
func (p *PairSet) Len() int {
	return p.size
}

// CountIn returns how many pairs of c are in the set.
func (p *PairSet) CountIn(c Combination) int {
	count := 0
	for i := 0; i < PickCount; i++ {
		for j := i + 1; j < PickCount; j++ {
			if p.m[c[i]][c[j]] {
				count++
			}
		}
	}
	return count
}
