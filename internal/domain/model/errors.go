package model

import "errors"

var (
	// ErrMissingSubmissionID is returned when a grading request has no
	// submission id for deduplication.
	ErrMissingSubmissionID = errors.New("missing submission id")

	// ErrMissingAthleteID is returned when a grading request has no athlete.
	ErrMissingAthleteID = errors.New("missing athlete id")

	// ErrMissingActivityID is returned when a grading request has no
	// activity reference.
	ErrMissingActivityID = errors.New("missing activity id")

	// ErrMissingShape is returned when no target shape is named.
	ErrMissingShape = errors.New("missing shape")

	// ErrMissingRoute is returned when neither coordinates nor an encoded
	// polyline is supplied.
	ErrMissingRoute = errors.New("missing route data")

	// ErrBadCoordinates is returned when the coordinates array is malformed.
	ErrBadCoordinates = errors.New("malformed coordinates")
)
