package metrics

import (
	"math"
	"testing"
)

func TestMatchProbability_SumsToOne(t *testing.T) {
	total := 0.0
	for k := 0; k <= 6; k++ {
		total += MatchProbability(k)
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("expected probabilities to sum to 1, got %v", total)
	}
	if MatchProbability(7) != 0 || MatchProbability(-1) != 0 {
		t.Error("out of range match counts should have probability 0")
	}
}

func TestBaselineRate_ClosedForm(t *testing.T) {
	// C(6,3)C(39,3) + C(6,4)C(39,2) + C(6,5)C(39,1) + 1 = 194130 of C(45,6) = 8145060
	want3 := 194130.0 / 8145060.0 * 100
	if got := BaselineRate(3); math.Abs(got-want3) > 1e-9 {
		t.Errorf("BaselineRate(3) = %v, want %v", got, want3)
	}
	want4 := 11350.0 / 8145060.0 * 100
	if got := BaselineRate(4); math.Abs(got-want4) > 1e-9 {
		t.Errorf("BaselineRate(4) = %v, want %v", got, want4)
	}
	if got := BaselineRate(0); got != 100 {
		t.Errorf("BaselineRate(0) = %v, want 100", got)
	}
}

func TestExpectedRate_GrowsWithTickets(t *testing.T) {
	one := ExpectedRate(3, 1)
	ten := ExpectedRate(3, 10)
	if one != BaselineRate(3) {
		t.Errorf("single ticket should equal baseline")
	}
	if ten <= one || ten >= 10*one {
		t.Errorf("expected %v < ExpectedRate(3,10)=%v < %v", one, ten, 10*one)
	}
}
