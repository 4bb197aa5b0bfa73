package align

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inshape/inshape/internal/domain/geom"
)

func normalized(t *testing.T, s geom.Sequence) *geom.Normalized {
	t.Helper()
	n, err := geom.Normalize(s)
	require.NoError(t, err)
	return &n
}

func rectangle(w, h float64) geom.Sequence {
	return geom.Sequence{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

func TestCandidateCounts(t *testing.T) {
	n := normalized(t, rectangle(4, 2))

	// 36 sweep angles + 4 PCA + 8 edge angles, each at 6 scale factors.
	cands := Candidates(n, DefaultProfile())
	assert.Len(t, cands, (36+4+8)*6)

	// Coarse profile: 12 sweep angles + 4 PCA + 8 edge, at 3 factors.
	coarse := Candidates(n, CoarseProfile())
	assert.Len(t, coarse, (12+4+8)*3)
}

func TestCandidatesDeterministic(t *testing.T) {
	n := normalized(t, rectangle(4, 2))
	a := Candidates(n, DefaultProfile())
	b := Candidates(n, DefaultProfile())
	assert.Equal(t, a, b)

	// Angle-major ordering: the first len(ScaleFactors) entries share angle 0.
	for i := 0; i < 6; i++ {
		assert.Equal(t, 0.0, a[i].Angle)
	}
	assert.Equal(t, 0.5, a[0].ScaleFactor)
	assert.Equal(t, 1.0, a[5].ScaleFactor)
}

func TestSearchAlignsRotatedSquare(t *testing.T) {
	// A square rotated by 30 degrees fits a square frame best when rotated
	// back to axis alignment, where its bounding box is smallest.
	rot := rectangle(4, 4).RotateAbout(geom.Point{}, 30*math.Pi/180)
	n := normalized(t, rot)

	res, err := Search(context.Background(), n, Frame{Width: 4, Height: 4}, DefaultProfile())
	require.NoError(t, err)
	assert.Equal(t, (36+4+8)*6, res.Candidates)

	b := res.Rotated.Bounds()
	assert.InDelta(t, 4.0, b.Width(), 0.05)
	assert.InDelta(t, 4.0, b.Height(), 0.05)
	assert.Equal(t, 0.8, res.ScaleFactor)
}

func TestSearchDeterministic(t *testing.T) {
	n := normalized(t, rectangle(3, 3))
	frame := Frame{Width: 4, Height: 4}

	a, err := Search(context.Background(), n, frame, DefaultProfile())
	require.NoError(t, err)
	b, err := Search(context.Background(), n, frame, DefaultProfile())
	require.NoError(t, err)

	assert.Equal(t, a.Angle, b.Angle)
	assert.Equal(t, a.ScaleFactor, b.ScaleFactor)
	assert.Equal(t, a.Fitness, b.Fitness)
}

func TestSearchCancellation(t *testing.T) {
	n := normalized(t, rectangle(4, 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Search(ctx, n, Frame{Width: 4, Height: 4}, DefaultProfile())
	assert.ErrorIs(t, err, ErrSearchTimeout)

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Minute)
	defer cancel2()
	_, err = Search(ctx2, n, Frame{Width: 4, Height: 4}, DefaultProfile())
	assert.NoError(t, err)
}

func TestFitnessPrefersMatchingAspect(t *testing.T) {
	frame := Frame{Width: 10, Height: 5}
	matched := fitness(4, 2, frame, 0.4)
	mismatched := fitness(2, 4, frame, 0.4)
	assert.Greater(t, matched, mismatched)
}

func TestFitnessPenalizesOverflow(t *testing.T) {
	frame := Frame{Width: 10, Height: 10}
	modest := fitness(8, 8, frame, 0.8)
	// A scale factor of 1.0 fills the frame completely, past the 80% sweet
	// spot, so fitness drops.
	full := fitness(8, 8, frame, 1.0)
	assert.Greater(t, modest, full)
}

func TestTransformRoundTrip(t *testing.T) {
	s := geom.Sequence{{X: 1, Y: 2}, {X: 5, Y: 2}, {X: 5, Y: 7}, {X: 1, Y: 7}}
	tr := NewTransform(0.6, 2.5, s.Centroid(), geom.Point{X: 100, Y: 50})

	applied := tr.Apply(s)
	back := tr.Inverse().Apply(applied)

	require.Len(t, back, len(s))
	for i := range s {
		assert.InDelta(t, s[i].X, back[i].X, 1e-6)
		assert.InDelta(t, s[i].Y, back[i].Y, 1e-6)
	}
}

func TestTransformMovesCentroid(t *testing.T) {
	s := rectangle(4, 2)
	target := geom.Point{X: 10, Y: -3}
	tr := NewTransform(math.Pi/4, 1.0, s.Centroid(), target)

	c := tr.Apply(s).Centroid()
	assert.InDelta(t, target.X, c.X, 1e-9)
	assert.InDelta(t, target.Y, c.Y, 1e-9)
}

func TestWithForcedScale(t *testing.T) {
	s := rectangle(4, 2)
	tr := NewTransform(0, 3.0, s.Centroid(), geom.Point{}, WithForcedScale(1.5))
	assert.Equal(t, 1.5, tr.Scale)

	// Non-positive forced scales are ignored.
	tr = NewTransform(0, 3.0, s.Centroid(), geom.Point{}, WithForcedScale(0))
	assert.Equal(t, 3.0, tr.Scale)
}

func TestTransformNormalizesRotation(t *testing.T) {
	tr := NewTransform(-math.Pi/2, 1, geom.Point{}, geom.Point{})
	assert.InDelta(t, 3*math.Pi/2, tr.Rotation, 1e-12)
}
