package gps

import "errors"

var (
	// ErrTooFewPoints is returned when a route has fewer points than a
	// closed shape needs.
	ErrTooFewPoints = errors.New("route has too few points")

	// ErrInvalidCoordinate is returned when a latitude or longitude is
	// outside its valid range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrBadPolyline is returned when an encoded polyline cannot be decoded.
	ErrBadPolyline = errors.New("malformed polyline")
)
