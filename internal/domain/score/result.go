// Package score implements the two similarity strategies that grade a run
// against a template: Procrustes superimposition and area coverage.
package score

import (
	"context"
	"math"

	"github.com/inshape/inshape/internal/domain/geom"
	"github.com/inshape/inshape/internal/domain/shapes"
)

// Algorithm tags which strategy produced a result.
type Algorithm string

const (
	AlgorithmProcrustes Algorithm = "procrustes"
	AlgorithmCoverage   Algorithm = "coverage"
)

// Scorer grades a route against a shape template.
type Scorer interface {
	Algorithm() Algorithm
	Score(ctx context.Context, route geom.Sequence, tmpl shapes.Shape) (Result, error)
}

// Result is the outcome of one grading call. Score, Message and Algorithm
// are always present; exactly one of the metrics payloads is set, matching
// the algorithm tag.
type Result struct {
	Score     float64   `json:"score"`
	Message   string    `json:"message"`
	Algorithm Algorithm `json:"algorithm"`

	Procrustes *ProcrustesMetrics `json:"procrustes,omitempty"`
	Coverage   *CoverageMetrics   `json:"coverage,omitempty"`
}

// ProcrustesMetrics carries the full transform payload for visualization
// consumers of the residual-based strategy.
type ProcrustesMetrics struct {
	RotationMatrix   [2][2]float64 `json:"rotation_matrix"`
	BestShift        int           `json:"best_shift"`
	BestDirection    int           `json:"best_direction"`
	RouteCenter      geom.Point    `json:"strava_center"`
	TemplateCenter   geom.Point    `json:"svg_center"`
	RouteScale       float64       `json:"strava_scale"`
	TemplateScale    float64       `json:"svg_scale"`
	RouteTransformed geom.Sequence `json:"strava_transformed"`
	TemplateUnit     geom.Sequence `json:"svg_normalized"`
}

// CoverageMetrics carries the area diagnostics of the coverage strategy.
type CoverageMetrics struct {
	CoverageOfTargetPct float64     `json:"coverage_of_target_pct"`
	CoverageOfGPSPct    float64     `json:"coverage_of_gps_pct"`
	BestRotationDeg     int         `json:"best_rotation_deg"`
	Full                FullMetrics `json:"full_metrics"`
}

// FullMetrics are the secondary overlap measures reported alongside the
// coverage percentages.
type FullMetrics struct {
	OverlapIoUPct    float64 `json:"overlap_iou_pct"`
	OverlapSignedPct float64 `json:"overlap_signed_pct"`
	HarmonicMeanPct  float64 `json:"harmonic_mean_pct"`
	PathIoUPct       float64 `json:"path_iou_pct"`
}

// ByStrategy returns the scorer registered under the given strategy name.
// An empty name selects coverage.
func ByStrategy(name string) (Scorer, error) {
	switch Algorithm(name) {
	case AlgorithmProcrustes:
		return NewProcrustes(), nil
	case AlgorithmCoverage, "":
		return NewCoverage(), nil
	default:
		return nil, ErrUnknownStrategy
	}
}

// round1 rounds to one decimal place, the precision every reported score
// and percentage uses.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
