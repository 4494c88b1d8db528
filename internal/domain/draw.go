package domain

import (
	"sort"
	"time"
)

// Number range and draw shape.
const (
	MinNumber  = 1
	MaxNumber  = 45
	PickCount  = 6
	NumberSpan = MaxNumber - MinNumber + 1
)

// PrizeTier holds the published outcome of one prize tier for a round.
type PrizeTier struct {
	Winners int64 `json:"winners"`
	Payout  int64 `json:"payout"` // per winner
}

// DrawRecord is one historical draw. Numbers are stored sorted ascending.
type DrawRecord struct {
	Round   int            `json:"round"`
	Date    time.Time      `json:"date"`
	Numbers [PickCount]int `json:"numbers"`
	Bonus   int            `json:"bonus"`
	Prizes  [5]PrizeTier   `json:"prizes"` // index 0 = tier 1
}

// NewDrawRecord validates and normalizes a draw record.
func NewDrawRecord(round int, date time.Time, numbers []int, bonus int) (*DrawRecord, error) {
	c, err := NewCombination(numbers)
	if err != nil {
		return nil, err
	}
	d := &DrawRecord{Round: round, Date: date, Numbers: c, Bonus: bonus}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the structural invariants of the record.
func (d *DrawRecord) Validate() error {
	if d.Round <= 0 {
		return newValidationError("round", ReasonRound, "round %d", d.Round)
	}
	if err := Combination(d.Numbers).Validate(); err != nil {
		return err
	}
	if d.Bonus < MinNumber || d.Bonus > MaxNumber {
		return newValidationError("bonus", ReasonRange, "bonus %d", d.Bonus)
	}
	if Combination(d.Numbers).Contains(d.Bonus) {
		return newValidationError("bonus", ReasonBonus, "bonus %d is a winning number", d.Bonus)
	}
	return nil
}

// Winning returns the winning numbers as a Combination.
func (d *DrawRecord) Winning() Combination {
	return Combination(d.Numbers)
}

// normalize sorts the winning numbers in place.
func (d *DrawRecord) normalize() {
	sort.Ints(d.Numbers[:])
}
