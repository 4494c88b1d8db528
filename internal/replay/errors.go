package replay

import "errors"

var (
	// ErrLookahead is returned when a training view would include the target
	// round or anything after it.
	ErrLookahead = errors.New("training data reaches the target round")

	// ErrInvalidRange is returned for an empty or inverted round range.
	ErrInvalidRange = errors.New("invalid round range")

	// ErrRoundNotFound is returned when a requested target round is missing
	// from the history.
	ErrRoundNotFound = errors.New("target round not in history")
)
