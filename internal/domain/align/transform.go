package align

import (
	"github.com/inshape/inshape/internal/domain/geom"
)

// Transform is a rigid placement: rotate about Center, scale uniformly about
// Center, then translate. Scale is always positive and Rotation is kept in
// [0, 2π).
type Transform struct {
	Rotation    float64    `json:"rotation"`
	Scale       float64    `json:"scale"`
	Center      geom.Point `json:"center"`
	Translation geom.Point `json:"translation"`
}

// Option tweaks transform construction.
type Option func(*Transform)

// WithForcedScale overrides the searched scale, used when two shapes must
// render at one common scale for side-by-side comparison.
func WithForcedScale(scale float64) Option {
	return func(t *Transform) {
		if scale > 0 {
			t.Scale = scale
		}
	}
}

// NewTransform builds the placement that rotates by angle about the shape's
// center, applies the given uniform scale, and moves the center onto target.
func NewTransform(angle, scale float64, center, target geom.Point, opts ...Option) Transform {
	t := Transform{
		Rotation:    geom.NormalizeAngle(angle),
		Scale:       scale,
		Center:      center,
		Translation: target.Sub(center),
	}
	for _, o := range opts {
		o(&t)
	}
	return t
}

// Apply maps every point of the sequence through the transform.
func (t Transform) Apply(s geom.Sequence) geom.Sequence {
	out := s.RotateAbout(t.Center, t.Rotation)
	out = out.ScaleAbout(t.Center, t.Scale)
	return out.Translate(t.Translation.X, t.Translation.Y)
}

// Inverse returns the transform mapping outputs of Apply back onto the
// original coordinates within floating-point tolerance.
func (t Transform) Inverse() Transform {
	return Transform{
		Rotation:    geom.NormalizeAngle(-t.Rotation),
		Scale:       1 / t.Scale,
		Center:      t.Center.Add(t.Translation),
		Translation: geom.Point{X: -t.Translation.X, Y: -t.Translation.Y},
	}
}
