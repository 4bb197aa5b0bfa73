package score

import (
	"context"
	"fmt"
	"math"

	"github.com/inshape/inshape/internal/domain/geom"
	"github.com/inshape/inshape/internal/domain/shapes"
)

const (
	defaultGridSize    = 256
	defaultStrokeWidth = 0.02
	defaultCoarseStep  = 5
	defaultFineStep    = 1
)

// Coverage scores shapes by rasterized area overlap: both outlines are
// normalized into [-1,1]², the route is swept through a coarse-then-fine
// rotation search maximizing signed overlap with the target, and the final
// score combines how much of the target the route covers with how much of
// the route lies inside the target.
type Coverage struct {
	grid       int
	stroke     float64
	coarseStep int
	fineStep   int
}

// CoverageOption configures a Coverage scorer.
type CoverageOption func(*Coverage)

// WithGridSize sets the rasterization resolution.
func WithGridSize(n int) CoverageOption {
	return func(c *Coverage) {
		if n > 1 {
			c.grid = n
		}
	}
}

// WithRotationSteps sets the coarse and fine sweep steps in degrees. The
// coarse retry profile uses wider steps.
func WithRotationSteps(coarse, fine int) CoverageOption {
	return func(c *Coverage) {
		if coarse > 0 {
			c.coarseStep = coarse
		}
		if fine > 0 {
			c.fineStep = fine
		}
	}
}

// WithStrokeWidth sets the normalized stroke radius used for the path
// overlap diagnostic.
func WithStrokeWidth(w float64) CoverageOption {
	return func(c *Coverage) {
		if w > 0 {
			c.stroke = w
		}
	}
}

// NewCoverage builds a Coverage scorer with the default resolution.
func NewCoverage(opts ...CoverageOption) *Coverage {
	c := &Coverage{
		grid:       defaultGridSize,
		stroke:     defaultStrokeWidth,
		coarseStep: defaultCoarseStep,
		fineStep:   defaultFineStep,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Algorithm implements Scorer.
func (c *Coverage) Algorithm() Algorithm { return AlgorithmCoverage }

// Score implements Scorer. The final score is the signed overlap at the best
// rotation, so a route that swallows the target or hides inside it is
// penalized just like one that misses it.
func (c *Coverage) Score(ctx context.Context, route geom.Sequence, tmpl shapes.Shape) (Result, error) {
	routeUnit, err := unitFrame(route)
	if err != nil {
		return Result{}, err
	}
	tmplUnit, err := unitFrame(tmpl.Outline)
	if err != nil {
		return Result{}, err
	}

	tmplMask := geom.PolygonMask(tmplUnit, c.grid)
	tmplArea := tmplMask.Count()
	if tmplArea == 0 {
		return Result{}, fmt.Errorf("%w: template %q has no area", ErrDegenerateShape, tmpl.ID)
	}

	bestDeg, err := c.searchRotation(ctx, routeUnit, tmplMask, tmplArea)
	if err != nil {
		return Result{}, err
	}

	rotated := rotatedUnit(routeUnit, bestDeg)
	routeMask := geom.PolygonMask(rotated, c.grid)
	routeArea := routeMask.Count()
	if routeArea == 0 {
		return Result{}, fmt.Errorf("%w: route has no area", ErrDegenerateShape)
	}

	inter := routeMask.IntersectCount(tmplMask)
	covTarget := float64(inter) / float64(tmplArea) * 100
	covRoute := float64(inter) / float64(routeArea) * 100

	// Signed overlap penalizes both route area outside the target and
	// target area the route misses, so engulfing the target scores as
	// badly as missing it.
	signed := float64(inter-routeMask.DiffCount(tmplMask)-tmplMask.DiffCount(routeMask)) /
		float64(tmplArea) * 100
	final := round1(clamp01(signed/100) * 100)

	var harmonic float64
	if covTarget+covRoute > 0 {
		harmonic = 2 * covTarget * covRoute / (covTarget + covRoute)
	}

	union := routeMask.UnionCount(tmplMask)
	var iouPct float64
	if union > 0 {
		iouPct = float64(inter) / float64(union) * 100
	}

	pathMask := geom.PathMask(rotated, c.grid, c.stroke)
	pathUnion := pathMask.UnionCount(tmplMask)
	var pathIoU float64
	if pathUnion > 0 {
		pathIoU = float64(pathMask.IntersectCount(tmplMask)) / float64(pathUnion) * 100
	}

	return Result{
		Score:     final,
		Message:   fmt.Sprintf("Your run scored %.1f%% similarity to a %s!", final, tmpl.ID),
		Algorithm: AlgorithmCoverage,
		Coverage: &CoverageMetrics{
			CoverageOfTargetPct: round1(covTarget),
			CoverageOfGPSPct:    round1(covRoute),
			BestRotationDeg:     bestDeg,
			Full: FullMetrics{
				OverlapIoUPct:    round1(iouPct),
				OverlapSignedPct: round1(signed),
				HarmonicMeanPct:  round1(harmonic),
				PathIoUPct:       round1(pathIoU),
			},
		},
	}, nil
}

// searchRotation maximizes signed overlap with a coarse sweep followed by a
// fine sweep around the coarse winner. Strictly greater wins, so the
// earliest best angle is kept and results stay deterministic.
func (c *Coverage) searchRotation(ctx context.Context, route geom.Sequence, tmplMask *geom.Mask, tmplArea int) (int, error) {
	best := math.Inf(-1)
	bestDeg := 0

	eval := func(deg int) error {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		norm := ((deg % 360) + 360) % 360
		m := geom.PolygonMask(rotatedUnit(route, norm), c.grid)
		val := float64(m.IntersectCount(tmplMask)-m.DiffCount(tmplMask)-tmplMask.DiffCount(m)) /
			float64(tmplArea)
		if val > best {
			best = val
			bestDeg = norm
		}
		return nil
	}

	for deg := 0; deg < 360; deg += c.coarseStep {
		if err := eval(deg); err != nil {
			return 0, err
		}
	}
	start, end := bestDeg-c.coarseStep, bestDeg+c.coarseStep
	for deg := start; deg <= end; deg += c.fineStep {
		if err := eval(deg); err != nil {
			return 0, err
		}
	}
	return bestDeg, nil
}

// unitFrame centers a sequence and scales it into [-1,1]² by its largest
// absolute extent.
func unitFrame(s geom.Sequence) (geom.Sequence, error) {
	n, err := geom.Normalize(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateShape, err)
	}
	return n.Unit(), nil
}

// rotatedUnit rotates a centered sequence about the origin and rescales it to
// its own [-1,1]² frame. The max-abs extent changes with orientation, so each
// candidate must be renormalized or the score would depend on the orientation
// the route arrived in.
func rotatedUnit(s geom.Sequence, deg int) geom.Sequence {
	rot := s.RotateAbout(geom.Point{}, float64(deg)*math.Pi/180)
	var maxAbs float64
	for _, p := range rot {
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if maxAbs == 0 {
		return rot
	}
	inv := 1 / maxAbs
	for i, p := range rot {
		rot[i] = p.Scale(inv)
	}
	return rot
}
