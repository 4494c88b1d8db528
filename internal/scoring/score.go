// Package scoring turns number profiles into weighted scores, rankings and
// sampling probabilities.
package scoring

import (
	"math"

	"lotto-lab/internal/domain"
)

// Sub-score caps. They hold regardless of weight magnitude.
const (
	FrequencyCap = 30.0
	TrendCap     = 30.0
	AbsenceCap   = 20.0
	HotnessCap   = 20.0
)

// Feature normalizers: the feature value that maps to one full weight unit.
const (
	frequencyScale = 100.0
	trendScale     = 50.0
	absenceScale   = 20.0
	hotnessScale   = 10.0
)

// MaxTotal is the highest reachable total score.
const MaxTotal = FrequencyCap + TrendCap + AbsenceCap + HotnessCap

// Score computes the clamped sub-scores and total for one profile.
func Score(p domain.NumberProfile, w domain.WeightConfiguration) domain.ScoreRecord {
	r := domain.ScoreRecord{
		Number:    p.Number,
		Frequency: math.Min(float64(p.TotalFrequency)/frequencyScale*w.Frequency, FrequencyCap),
		Trend:     math.Min(float64(p.Recent50)/trendScale*w.Trend, TrendCap),
		Absence:   math.Min(float64(p.Absence)/absenceScale*w.Absence, AbsenceCap),
		Hotness:   math.Min(p.Hotness/hotnessScale*w.Hotness, HotnessCap),
	}
	r.Total = r.Frequency + r.Trend + r.Absence + r.Hotness
	return r
}
