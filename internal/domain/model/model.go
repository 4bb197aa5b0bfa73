// Package model defines the grading request and result types shared by the
// service, queue and repository layers.
package model

import (
	"fmt"
	"time"

	"github.com/inshape/inshape/internal/domain/geom"
	"github.com/inshape/inshape/internal/domain/gps"
	"github.com/inshape/inshape/internal/domain/score"
)

// GradeRequest is one grading job: an athlete's recorded route to be scored
// against a named shape template. The route arrives either as raw
// coordinates or as an encoded polyline.
type GradeRequest struct {
	SubmissionID   string      `json:"submission_id"`
	AthleteID      string      `json:"athlete_id"`
	ActivityID     string      `json:"activity_id"`
	Shape          string      `json:"shape"`
	Strategy       string      `json:"strategy,omitempty"`
	Coordinates    [][]float64 `json:"coordinates,omitempty"`
	Polyline       string      `json:"polyline,omitempty"`
	IncludeOverlay bool        `json:"include_overlay,omitempty"`
	SubmittedAt    time.Time   `json:"submitted_at,omitempty"`
}

// Validate checks the request's identifying fields and route payload.
func (r GradeRequest) Validate() error {
	if r.SubmissionID == "" {
		return ErrMissingSubmissionID
	}
	if r.AthleteID == "" {
		return ErrMissingAthleteID
	}
	if r.ActivityID == "" {
		return ErrMissingActivityID
	}
	if r.Shape == "" {
		return ErrMissingShape
	}
	if len(r.Coordinates) == 0 && r.Polyline == "" {
		return ErrMissingRoute
	}
	for i, c := range r.Coordinates {
		if len(c) != 2 {
			return fmt.Errorf("%w: point %d has %d components", ErrBadCoordinates, i, len(c))
		}
	}
	return nil
}

// Route materializes the GPS track from whichever encoding the request
// carries. Coordinates win over a polyline when both are present.
func (r GradeRequest) Route() (gps.Route, error) {
	if len(r.Coordinates) > 0 {
		route := make(gps.Route, len(r.Coordinates))
		for i, c := range r.Coordinates {
			if len(c) != 2 {
				return nil, fmt.Errorf("%w: point %d has %d components", ErrBadCoordinates, i, len(c))
			}
			route[i] = gps.LatLng{Lat: c[0], Lng: c[1]}
		}
		return route, nil
	}
	return gps.DecodePolyline(r.Polyline)
}

// GradeResult is the outcome of grading one request.
type GradeResult struct {
	SubmissionID string       `json:"submission_id"`
	AthleteID    string       `json:"athlete_id"`
	ActivityID   string       `json:"activity_id"`
	Shape        string       `json:"shape"`
	Grade        string       `json:"grade"`
	Cached       bool         `json:"cached"`
	Result       score.Result `json:"result"`
	Overlay      *Overlay     `json:"overlay,omitempty"`
	GradedAt     time.Time    `json:"graded_at"`
}

// Overlay is the visualization payload: both shapes placed in one display
// frame at a common scale.
type Overlay struct {
	Route           geom.Sequence `json:"route"`
	Template        geom.Sequence `json:"template"`
	Scale           float64       `json:"scale"`
	BestRotationDeg float64       `json:"best_rotation_deg"`
}

// LetterGrade maps a 0-100 score onto the displayed letter grade.
func LetterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 80:
		return "A-"
	case score >= 75:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 65:
		return "B-"
	case score >= 60:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 50:
		return "C-"
	default:
		return "F"
	}
}
