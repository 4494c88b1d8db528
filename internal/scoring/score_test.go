package scoring

import (
	"math"
	"testing"

	"lotto-lab/internal/domain"
)

func TestScore_DefaultWeights(t *testing.T) {
	p := domain.NumberProfile{Number: 7, TotalFrequency: 50, Recent50: 10, Absence: 5, Hotness: 10.0 / 6.0 * 100}
	r := Score(p, domain.DefaultWeights())

	if r.Frequency != 15 {
		t.Errorf("expected frequency 15, got %f", r.Frequency)
	}
	if math.Abs(r.Trend-6) > 1e-9 {
		t.Errorf("expected trend 6, got %f", r.Trend)
	}
	if r.Absence != 5 {
		t.Errorf("expected absence 5, got %f", r.Absence)
	}
	if r.Hotness != HotnessCap {
		t.Errorf("expected hotness capped at %f, got %f", HotnessCap, r.Hotness)
	}
	if r.Total != r.Frequency+r.Trend+r.Absence+r.Hotness {
		t.Errorf("total %f does not sum components", r.Total)
	}
}

func TestScore_CapsHoldForLargeWeights(t *testing.T) {
	p := domain.NumberProfile{TotalFrequency: 500, Recent50: 50, Absence: 200, Hotness: 5000}
	w := domain.WeightConfiguration{Frequency: 1000, Trend: 1000, Absence: 1000, Hotness: 1000}
	r := Score(p, w)
	if r.Frequency != FrequencyCap || r.Trend != TrendCap || r.Absence != AbsenceCap || r.Hotness != HotnessCap {
		t.Errorf("expected all caps, got %+v", r)
	}
	if r.Total != MaxTotal {
		t.Errorf("expected total %f, got %f", MaxTotal, r.Total)
	}
}

func TestScore_MonotonicInEachFeature(t *testing.T) {
	bounds := domain.DefaultWeightBounds()
	weights := []domain.WeightConfiguration{
		{Frequency: bounds.Frequency.Min, Trend: bounds.Trend.Min, Absence: bounds.Absence.Min, Hotness: bounds.Hotness.Min},
		domain.DefaultWeights(),
		{Frequency: bounds.Frequency.Max, Trend: bounds.Trend.Max, Absence: bounds.Absence.Max, Hotness: bounds.Hotness.Max},
	}
	base := domain.NumberProfile{TotalFrequency: 40, Recent50: 8, Absence: 3, Hotness: 50}
	bumps := []func(p *domain.NumberProfile, step int){
		func(p *domain.NumberProfile, step int) { p.TotalFrequency = base.TotalFrequency + step },
		func(p *domain.NumberProfile, step int) { p.Recent50 = step % 51 },
		func(p *domain.NumberProfile, step int) { p.Absence = base.Absence + step },
		func(p *domain.NumberProfile, step int) { p.Hotness = base.Hotness + float64(step) },
	}

	for _, w := range weights {
		for i, bump := range bumps {
			prev := -1.0
			for step := 0; step <= 50; step++ {
				p := base
				bump(&p, step)
				got := Score(p, w).Total
				if got < prev {
					t.Fatalf("weights %v feature %d step %d: total decreased %f -> %f", w, i, step, prev, got)
				}
				prev = got
			}
		}
	}
}

func TestScore_ZeroWeightsScoreZero(t *testing.T) {
	p := domain.NumberProfile{TotalFrequency: 80, Recent50: 20, Absence: 7, Hotness: 250}
	if r := Score(p, domain.WeightConfiguration{}); r.Total != 0 {
		t.Errorf("expected 0 total, got %f", r.Total)
	}
}
