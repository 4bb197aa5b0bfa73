package geom

import "errors"

// Sentinel kinds for geometry errors.
var (
	ErrInvalidInput    = errors.New("invalid point sequence")
	ErrDegenerateShape = errors.New("degenerate shape")
)
