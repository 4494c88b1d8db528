package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// WeightConfiguration parameterizes the scoring model. Comparable, so it can
// key maps directly.
type WeightConfiguration struct {
	Frequency float64 `json:"frequency" toml:"frequency"`
	Trend     float64 `json:"trend" toml:"trend"`
	Absence   float64 `json:"absence" toml:"absence"`
	Hotness   float64 `json:"hotness" toml:"hotness"`
}

// WeightDimensions is the number of tunable weights.
const WeightDimensions = 4

// DefaultWeights returns the stock configuration (30, 30, 20, 20).
func DefaultWeights() WeightConfiguration {
	return WeightConfiguration{Frequency: 30, Trend: 30, Absence: 20, Hotness: 20}
}

// Validate rejects negative weights.
func (w WeightConfiguration) Validate() error {
	for i, v := range w.Vector() {
		if v < 0 {
			return newValidationError("weights", ReasonWeightBounds, "%s=%.4f is negative", WeightNames[i], v)
		}
	}
	return nil
}

// WeightNames labels the dimensions in Vector order.
var WeightNames = [WeightDimensions]string{"frequency", "trend", "absence", "hotness"}

// Vector returns the weights in a fixed dimension order.
func (w WeightConfiguration) Vector() [WeightDimensions]float64 {
	return [WeightDimensions]float64{w.Frequency, w.Trend, w.Absence, w.Hotness}
}

// WeightsFromVector is the inverse of Vector.
func WeightsFromVector(v [WeightDimensions]float64) WeightConfiguration {
	return WeightConfiguration{Frequency: v[0], Trend: v[1], Absence: v[2], Hotness: v[3]}
}

func (w WeightConfiguration) String() string {
	return fmt.Sprintf("freq=%.2f trend=%.2f absence=%.2f hot=%.2f", w.Frequency, w.Trend, w.Absence, w.Hotness)
}

// ParseWeights reads "frequency,trend,absence,hotness", e.g. "30,30,20,20".
func ParseWeights(s string) (WeightConfiguration, error) {
	parts := strings.Split(s, ",")
	if len(parts) != WeightDimensions {
		return WeightConfiguration{}, newValidationError("weights", ReasonCount, "want %d values, got %d", WeightDimensions, len(parts))
	}
	var v [WeightDimensions]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return WeightConfiguration{}, newValidationError("weights", ReasonRange, "%s: %v", WeightNames[i], err)
		}
		v[i] = f
	}
	w := WeightsFromVector(v)
	return w, w.Validate()
}

// Interval is a closed range [Min, Max].
type Interval struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// Contains reports whether v lies within the interval.
func (i Interval) Contains(v float64) bool {
	return v >= i.Min && v <= i.Max
}

// Clamp limits v to the interval.
func (i Interval) Clamp(v float64) float64 {
	if v < i.Min {
		return i.Min
	}
	if v > i.Max {
		return i.Max
	}
	return v
}

// WeightBounds is the search rectangle for the optimizer.
type WeightBounds struct {
	Frequency Interval `json:"frequency" toml:"frequency"`
	Trend     Interval `json:"trend" toml:"trend"`
	Absence   Interval `json:"absence" toml:"absence"`
	Hotness   Interval `json:"hotness" toml:"hotness"`
}

// DefaultWeightBounds returns freq/trend 10-50 and absence/hotness 5-40.
func DefaultWeightBounds() WeightBounds {
	return WeightBounds{
		Frequency: Interval{Min: 10, Max: 50},
		Trend:     Interval{Min: 10, Max: 50},
		Absence:   Interval{Min: 5, Max: 40},
		Hotness:   Interval{Min: 5, Max: 40},
	}
}

// Dimension returns the interval for dimension i in Vector order.
func (b WeightBounds) Dimension(i int) Interval {
	return [WeightDimensions]Interval{b.Frequency, b.Trend, b.Absence, b.Hotness}[i]
}

// Contains reports whether every weight lies within its interval.
func (b WeightBounds) Contains(w WeightConfiguration) bool {
	v := w.Vector()
	for i := range v {
		if !b.Dimension(i).Contains(v[i]) {
			return false
		}
	}
	return true
}

// Clamp limits every weight to its interval.
func (b WeightBounds) Clamp(w WeightConfiguration) WeightConfiguration {
	v := w.Vector()
	for i := range v {
		v[i] = b.Dimension(i).Clamp(v[i])
	}
	return WeightsFromVector(v)
}

// Validate checks that each interval is non-empty and non-negative.
func (b WeightBounds) Validate() error {
	for i := 0; i < WeightDimensions; i++ {
		iv := b.Dimension(i)
		if iv.Min < 0 || iv.Max < iv.Min {
			return newValidationError("bounds", ReasonWeightBounds, "%s [%.2f, %.2f]", WeightNames[i], iv.Min, iv.Max)
		}
	}
	return nil
}
