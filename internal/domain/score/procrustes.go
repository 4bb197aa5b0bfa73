package score

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/inshape/inshape/internal/domain/geom"
	"github.com/inshape/inshape/internal/domain/shapes"
)

const defaultResamplePoints = 256

// Procrustes scores shapes by closed-loop Procrustes superimposition with
// cyclic shift: both outlines are resampled to the same number of points by
// arc length, and every start offset in both traversal directions is tried
// for the best rigid alignment.
type Procrustes struct {
	k int
}

// ProcrustesOption configures a Procrustes scorer.
type ProcrustesOption func(*Procrustes)

// WithResamplePoints sets the arc-length resampling count. Lower values
// trade accuracy for speed; the coarse retry profile uses this.
func WithResamplePoints(k int) ProcrustesOption {
	return func(p *Procrustes) {
		if k >= geom.MinPoints {
			p.k = k
		}
	}
}

// NewProcrustes builds a Procrustes scorer with the default resolution.
func NewProcrustes(opts ...ProcrustesOption) *Procrustes {
	p := &Procrustes{k: defaultResamplePoints}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Algorithm implements Scorer.
func (p *Procrustes) Algorithm() Algorithm { return AlgorithmProcrustes }

// Score implements Scorer. Similarity is the clamped Procrustes correlation
// of the best alignment, mapped to [0,100].
func (p *Procrustes) Score(ctx context.Context, route geom.Sequence, tmpl shapes.Shape) (Result, error) {
	if err := route.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDegenerateShape, err)
	}

	a := route.ResampleClosed(p.k)
	b := tmpl.Outline.ResampleClosed(p.k)

	routeCenter := a.Centroid()
	tmplCenter := b.Centroid()
	a = a.Centered()
	b = b.Centered()

	na := frobenius(a)
	nb := frobenius(b)
	if na == 0 || nb == 0 {
		return Result{}, fmt.Errorf("%w: zero extent after centering", ErrDegenerateShape)
	}
	a = scaled(a, 1/na)
	b = scaled(b, 1/nb)

	var (
		best      float64
		bestShift int
		bestDir   = 1
	)

	for _, dir := range []int{1, -1} {
		bd := b
		if dir == -1 {
			bd = reversed(b)
		}
		for k := 0; k < p.k; k++ {
			if k%32 == 0 && ctx.Err() != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			}
			sim := alignmentSimilarity(crossCovariance(a, bd, k))
			if sim > best {
				best = sim
				bestShift = k
				bestDir = dir
			}
		}
	}

	bd := b
	if bestDir == -1 {
		bd = reversed(b)
	}
	rot := optimalRotation(crossCovariance(a, bd, bestShift))

	sim := clamp01(best)
	final := round1(sim * 100)

	return Result{
		Score:     final,
		Message:   fmt.Sprintf("Your run scored %.1f%% similarity to a %s!", final, tmpl.ID),
		Algorithm: AlgorithmProcrustes,
		Procrustes: &ProcrustesMetrics{
			RotationMatrix:   rot,
			BestShift:        bestShift,
			BestDirection:    bestDir,
			RouteCenter:      routeCenter,
			TemplateCenter:   tmplCenter,
			RouteScale:       na,
			TemplateScale:    nb,
			RouteTransformed: applyRotation(a, rot),
			TemplateUnit:     b,
		},
	}, nil
}

// crossCovariance builds the 2x2 matrix AᵀB with B cyclically shifted by k.
func crossCovariance(a, b geom.Sequence, shift int) *mat.Dense {
	var c00, c01, c10, c11 float64
	n := len(a)
	for i := 0; i < n; i++ {
		p := a[i]
		q := b[(i+shift)%n]
		c00 += p.X * q.X
		c01 += p.X * q.Y
		c10 += p.Y * q.X
		c11 += p.Y * q.Y
	}
	return mat.NewDense(2, 2, []float64{c00, c01, c10, c11})
}

// alignmentSimilarity is the Procrustes correlation of the alignment given
// by the cross covariance: the sum of its singular values with the smaller
// one sign-flipped when the optimal orthogonal map would be a reflection.
func alignmentSimilarity(c *mat.Dense) float64 {
	var svd mat.SVD
	if !svd.Factorize(c, mat.SVDFull) {
		return 0
	}
	vals := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	sign := 1.0
	if mat.Det(&u)*mat.Det(&v) < 0 {
		sign = -1.0
	}
	return vals[0] + sign*vals[1]
}

// optimalRotation returns the proper rotation U·D·Vᵀ for the alignment.
func optimalRotation(c *mat.Dense) [2][2]float64 {
	var svd mat.SVD
	if !svd.Factorize(c, mat.SVDFull) {
		return [2][2]float64{{1, 0}, {0, 1}}
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	d := mat.NewDiagDense(2, []float64{1, 1})
	if mat.Det(&u)*mat.Det(&v) < 0 {
		d.SetDiag(1, -1)
	}

	var r mat.Dense
	r.Product(&u, d, v.T())
	return [2][2]float64{
		{r.At(0, 0), r.At(0, 1)},
		{r.At(1, 0), r.At(1, 1)},
	}
}

func applyRotation(s geom.Sequence, r [2][2]float64) geom.Sequence {
	out := make(geom.Sequence, len(s))
	for i, p := range s {
		out[i] = geom.Point{
			X: r[0][0]*p.X + r[0][1]*p.Y,
			Y: r[1][0]*p.X + r[1][1]*p.Y,
		}
	}
	return out
}

func frobenius(s geom.Sequence) float64 {
	var sum float64
	for _, p := range s {
		sum += p.X*p.X + p.Y*p.Y
	}
	return math.Sqrt(sum)
}

func scaled(s geom.Sequence, f float64) geom.Sequence {
	out := make(geom.Sequence, len(s))
	for i, p := range s {
		out[i] = p.Scale(f)
	}
	return out
}

func reversed(s geom.Sequence) geom.Sequence {
	out := make(geom.Sequence, len(s))
	for i, p := range s {
		out[len(s)-1-i] = p
	}
	return out
}
