package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Normalized holds a centered point set together with its extent metrics.
// The derived scale travels with the coordinates as an explicit value rather
// than being attached to the slice out of band.
type Normalized struct {
	Points   Sequence // centroid at origin
	Centroid Point    // original centroid
	Bounds   Bounds   // bounds of the centered points
	MaxAbs   float64  // largest absolute coordinate after centering
}

// Width returns the horizontal extent of the centered point set.
func (n Normalized) Width() float64 { return n.Bounds.Width() }

// Height returns the vertical extent of the centered point set.
func (n Normalized) Height() float64 { return n.Bounds.Height() }

// Normalize centers the sequence at its centroid and measures its extent.
// It fails with ErrInvalidInput for fewer than MinPoints points or when all
// points coincide (zero extent).
func Normalize(s Sequence) (Normalized, error) {
	if err := s.Validate(); err != nil {
		return Normalized{}, err
	}

	centroid := s.Centroid()
	centered := s.Centered()

	var maxAbs float64
	for _, p := range centered {
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if maxAbs == 0 {
		return Normalized{}, fmt.Errorf("%w: zero extent", ErrInvalidInput)
	}

	return Normalized{
		Points:   centered,
		Centroid: centroid,
		Bounds:   centered.Bounds(),
		MaxAbs:   maxAbs,
	}, nil
}

// Unit returns the centered points scaled so the largest absolute
// coordinate is 1. Aspect ratio is preserved.
func (n Normalized) Unit() Sequence {
	out := make(Sequence, len(n.Points))
	inv := 1 / n.MaxAbs
	for i, p := range n.Points {
		out[i] = p.Scale(inv)
	}
	return out
}

// PrincipalAngle returns the direction of greatest variance of the point
// set in radians, derived from the 2x2 covariance matrix of point
// deviations: angle = ½·atan2(2·cov_xy, cov_xx − cov_yy).
func (n Normalized) PrincipalAngle() float64 {
	data := mat.NewDense(len(n.Points), 2, nil)
	for i, p := range n.Points {
		data.Set(i, 0, p.X)
		data.Set(i, 1, p.Y)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	cxx := cov.At(0, 0)
	cxy := cov.At(0, 1)
	cyy := cov.At(1, 1)

	return 0.5 * math.Atan2(2*cxy, cxx-cyy)
}
