package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientData is returned when fewer rounds are available than
	// the configured minimum training window.
	ErrInsufficientData = errors.New("insufficient historical data")

	// ErrExhaustedSearch marks a generator run that hit its attempt budget
	// before collecting the requested number of combinations. It is a soft
	// condition carried by results, not returned as a failure.
	ErrExhaustedSearch = errors.New("attempt budget exhausted")

	// ErrUnknownStrategy is returned for an unrecognized strategy name.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Validation reason codes.
const (
	ReasonCount        = "COUNT"
	ReasonRange        = "RANGE"
	ReasonDuplicate    = "DUPLICATE"
	ReasonBonus        = "BONUS"
	ReasonRound        = "ROUND"
	ReasonZone         = "ZONE_CONCENTRATION"
	ReasonParity       = "PARITY_DEGENERATE"
	ReasonRun          = "CONSECUTIVE_RUN"
	ReasonForbidden    = "FORBIDDEN_PAIR"
	ReasonOverheated   = "OVERHEATED"
	ReasonWeightBounds = "WEIGHT_BOUNDS"
)

// ValidationError reports a structural violation in a combination, draw
// record or weight configuration.
type ValidationError struct {
	Field  string
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s (%s)", e.Field, e.Reason, e.Detail)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, reason, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
