package generator

import (
	"math"

	"lotto-lab/internal/domain"
)

// Numbers are laid out row-major on a 7-column ticket grid.
const gridCols = 7

type gridZone int

const (
	gridEdge gridZone = iota
	gridCorner
	gridMiddle
	gridCenter
)

var (
	cornerCells       = domain.NewNumberSet(1, 7, 43, 45)
	middleCells       = domain.NewNumberSet(16, 17, 18, 19, 20, 23, 24, 25, 26, 27, 31, 32, 33, 34)
	centerCells       = domain.NewNumberSet(24, 25, 26, 31, 32, 33, 38, 39, 40)
	antiDiagonalCells = domain.NewNumberSet(7, 13, 19, 25, 31, 37, 43)
)

// Relative hit rate per cell class, observed over the full draw history.
var gridZoneWeight = map[gridZone]float64{
	gridMiddle: 1.46,
	gridCenter: 1.09,
	gridEdge:   0.91,
	gridCorner: 0.83,
}

func position(n int) (row, col int) {
	return (n - 1) / gridCols, (n - 1) % gridCols
}

func zoneOfCell(n int) gridZone {
	switch {
	case cornerCells.Has(n):
		return gridCorner
	case middleCells.Has(n):
		return gridMiddle
	case centerCells.Has(n):
		return gridCenter
	default:
		return gridEdge
	}
}

func countIn(c domain.Combination, s *domain.NumberSet) int {
	k := 0
	for _, n := range c {
		if s.Has(n) {
			k++
		}
	}
	return k
}

// avgManhattan is the mean pairwise Manhattan distance on the grid.
func avgManhattan(nums []int) float64 {
	if len(nums) < 2 {
		return 0
	}
	sum, pairs := 0, 0
	for i := range nums {
		r1, c1 := position(nums[i])
		for j := i + 1; j < len(nums); j++ {
			r2, c2 := position(nums[j])
			sum += abs(r1-r2) + abs(c1-c2)
			pairs++
		}
	}
	return float64(sum) / float64(pairs)
}

// GridScore rewards middle-heavy placements with one or two anti-diagonal
// cells and moderate dispersion, and penalizes corners.
func GridScore(c domain.Combination) float64 {
	score := 0.0
	for _, n := range c {
		score += gridZoneWeight[zoneOfCell(n)] * 10
	}
	if k := countIn(c, &middleCells); k >= 3 && k <= 4 {
		score += 20
	}
	if k := countIn(c, &antiDiagonalCells); k >= 1 && k <= 2 {
		score += 15
	}
	if countIn(c, &cornerCells) >= 2 {
		score -= 15
	}
	d := avgManhattan(c[:])
	switch {
	case d >= 4.0 && d <= 5.5:
		score += 20
	case d < 3.0 || d > 6.0:
		score -= 10
	}
	return score
}

// SpatialBreakdown is the visual-layout score of a combination on the grid.
type SpatialBreakdown struct {
	Density     float64 `json:"density"`
	Quadrants   float64 `json:"quadrants"`
	Balance     float64 `json:"balance"`
	Symmetry    float64 `json:"symmetry"`
	AvgDistance float64 `json:"avg_distance"`
	Deviation   float64 `json:"deviation"`
}

// Total sums the four component scores (max 100).
func (s SpatialBreakdown) Total() float64 {
	return s.Density + s.Quadrants + s.Balance + s.Symmetry
}

// SpatialScore grades density, quadrant coverage, centroid balance and
// left/right symmetry of the ticket layout.
func SpatialScore(c domain.Combination) SpatialBreakdown {
	var out SpatialBreakdown

	sum, pairs := 0.0, 0
	for i := range c {
		r1, c1 := position(c[i])
		for j := i + 1; j < len(c); j++ {
			r2, c2 := position(c[j])
			sum += math.Hypot(float64(r2-r1), float64(c2-c1))
			pairs++
		}
	}
	out.AvgDistance = sum / float64(pairs)
	switch {
	case out.AvgDistance >= 3.0 && out.AvgDistance <= 4.5:
		out.Density = 25
	case out.AvgDistance >= 2.5 && out.AvgDistance <= 5.0:
		out.Density = 15
	default:
		out.Density = 5
	}

	var quads [4]bool
	rowSum, colSum := 0, 0
	left, right := 0, 0
	for _, n := range c {
		r, col := position(n)
		q := 0
		if float64(r) >= 3.5 {
			q += 2
		}
		if float64(col) >= 3.5 {
			q++
		}
		quads[q] = true
		rowSum += r
		colSum += col
		if col < 3 {
			left++
		} else if col > 3 {
			right++
		}
	}
	covered := 0
	for _, q := range quads {
		if q {
			covered++
		}
	}
	switch covered {
	case 4:
		out.Quadrants = 25
	case 3:
		out.Quadrants = 15
	default:
		out.Quadrants = 5
	}

	cr := float64(rowSum) / domain.PickCount
	cc := float64(colSum) / domain.PickCount
	out.Deviation = math.Hypot(cr-3, cc-3)
	switch {
	case out.Deviation < 1.0:
		out.Balance = 25
	case out.Deviation < 1.5:
		out.Balance = 15
	default:
		out.Balance = 5
	}

	if abs(left-right) <= 1 {
		out.Symmetry = 25
	} else {
		out.Symmetry = 10
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
