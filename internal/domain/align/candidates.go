// Package align finds the rotation and scale that best fit a point sequence
// into a target display frame, and builds the invertible transform that
// places it there.
package align

import (
	"math"
	"sort"

	"github.com/inshape/inshape/internal/domain/geom"
)

const longestEdges = 4

// Profile controls how densely the orientation search samples its
// candidate space.
type Profile struct {
	SweepStepDeg int
	ScaleFactors []float64
}

// DefaultProfile is the full-resolution search: a 10 degree sweep plus PCA
// and edge-derived angles, each tried at six scale factors.
func DefaultProfile() Profile {
	return Profile{
		SweepStepDeg: 10,
		ScaleFactors: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}
}

// CoarseProfile is the fallback used after a timeout: a 30 degree sweep and
// three scale factors.
func CoarseProfile() Profile {
	return Profile{
		SweepStepDeg: 30,
		ScaleFactors: []float64{0.6, 0.8, 1.0},
	}
}

// Candidate is one (rotation, scale factor) pair to evaluate.
type Candidate struct {
	Angle       float64
	ScaleFactor float64
}

// candidateAngles produces the deterministic angle sequence: the coarse
// sweep, then the principal axis and its three perpendiculars, then the
// negated angles of the longest edges and their perpendiculars. Order
// matters because exact fitness ties resolve to the earliest candidate.
func candidateAngles(n *geom.Normalized, p Profile) []float64 {
	var angles []float64

	for deg := 0; deg < 360; deg += p.SweepStepDeg {
		angles = append(angles, float64(deg)*math.Pi/180)
	}

	pca := n.PrincipalAngle()
	for _, off := range []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2} {
		angles = append(angles, geom.NormalizeAngle(pca+off))
	}

	edges := n.Points.Edges()
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Length() > edges[j].Length()
	})
	if len(edges) > longestEdges {
		edges = edges[:longestEdges]
	}
	for _, e := range edges {
		a := e.Angle()
		// Rotating by the negated edge angle lays the edge along an axis.
		angles = append(angles, geom.NormalizeAngle(-a))
		angles = append(angles, geom.NormalizeAngle(-(a + math.Pi/2)))
	}

	return angles
}

// Candidates expands the profile into the full evaluation sequence,
// angle-major so every angle is tried at every scale factor.
func Candidates(n *geom.Normalized, p Profile) []Candidate {
	angles := candidateAngles(n, p)
	out := make([]Candidate, 0, len(angles)*len(p.ScaleFactors))
	for _, a := range angles {
		for _, sf := range p.ScaleFactors {
			out = append(out, Candidate{Angle: a, ScaleFactor: sf})
		}
	}
	return out
}
