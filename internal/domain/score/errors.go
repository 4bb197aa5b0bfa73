package score

import "errors"

var (
	// ErrDegenerateShape is returned when the route or template has no area
	// after alignment. Callers absorb this as a zero score rather than a
	// hard failure.
	ErrDegenerateShape = errors.New("degenerate shape")

	// ErrTimeout is returned when the similarity computation is cancelled
	// before completing. Callers may retry with a coarser scorer.
	ErrTimeout = errors.New("similarity computation timed out")

	// ErrUnknownStrategy is returned for a strategy name that does not map
	// to a scorer.
	ErrUnknownStrategy = errors.New("unknown scoring strategy")
)
