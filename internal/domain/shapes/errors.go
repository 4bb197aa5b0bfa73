package shapes

import "errors"

var (
	// ErrUnknownShape is returned when a shape id has no registered template.
	ErrUnknownShape = errors.New("unknown shape")

	// ErrInvalidSVG is returned when an SVG document contains no supported
	// drawable element or its geometry cannot be parsed.
	ErrInvalidSVG = errors.New("invalid svg")
)
