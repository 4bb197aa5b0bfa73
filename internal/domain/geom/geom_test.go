package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() Sequence {
	return Sequence{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
}

func regularPolygon(n int, r float64) Sequence {
	s := make(Sequence, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		s[i] = Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return s
}

func TestValidate(t *testing.T) {
	assert.NoError(t, unitSquare().Validate())

	err := Sequence{{0, 0}, {1, 1}}.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = Sequence{{2, 2}, {2, 2}, {2, 2}}.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Collinear points still have extent; zero area is caught downstream.
	assert.NoError(t, Sequence{{2, 0}, {2, 1}, {2, 5}}.Validate())
}

func TestCentroidAndBounds(t *testing.T) {
	s := unitSquare()
	c := s.Centroid()
	assert.InDelta(t, 0.5, c.X, 1e-12)
	assert.InDelta(t, 0.5, c.Y, 1e-12)

	b := s.Bounds()
	assert.Equal(t, 1.0, b.Width())
	assert.Equal(t, 1.0, b.Height())
}

func TestAreaAndPerimeter(t *testing.T) {
	s := unitSquare()
	assert.InDelta(t, 1.0, s.Area(), 1e-12)
	assert.InDelta(t, 4.0, s.Perimeter(), 1e-12)

	// Clockwise traversal flips the sign but not the magnitude.
	rev := Sequence{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	assert.InDelta(t, -1.0, rev.SignedArea(), 1e-12)
	assert.InDelta(t, 1.0, rev.Area(), 1e-12)
}

func TestRotateAboutPreservesShape(t *testing.T) {
	s := unitSquare()
	r := s.RotateAbout(s.Centroid(), math.Pi/2)

	assert.InDelta(t, s.Area(), r.Area(), 1e-9)
	assert.InDelta(t, s.Perimeter(), r.Perimeter(), 1e-9)

	c := r.Centroid()
	assert.InDelta(t, 0.5, c.X, 1e-9)
	assert.InDelta(t, 0.5, c.Y, 1e-9)
}

func TestNormalize(t *testing.T) {
	s := Sequence{{2, 2}, {6, 2}, {6, 4}, {2, 4}}
	n, err := Normalize(s)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, n.Centroid.X, 1e-12)
	assert.InDelta(t, 3.0, n.Centroid.Y, 1e-12)
	assert.InDelta(t, 2.0, n.MaxAbs, 1e-12)

	u := n.Unit()
	b := u.Bounds()
	assert.InDelta(t, -1.0, b.MinX, 1e-12)
	assert.InDelta(t, 1.0, b.MaxX, 1e-12)
	assert.InDelta(t, 0.5, b.MaxY, 1e-12)
}

func TestNormalizeRejectsDegenerate(t *testing.T) {
	_, err := Normalize(Sequence{{1, 1}, {1, 1}, {1, 1}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPrincipalAngle(t *testing.T) {
	// An elongated horizontal rectangle has its principal axis near 0.
	s := Sequence{{-10, -1}, {10, -1}, {10, 1}, {-10, 1}}
	n, err := Normalize(s)
	require.NoError(t, err)
	assert.InDelta(t, 0, n.PrincipalAngle(), 1e-9)

	// Rotating the shape rotates its principal axis with it.
	rot := s.RotateAbout(s.Centroid(), math.Pi/6)
	nr, err := Normalize(rot)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/6, nr.PrincipalAngle(), 1e-6)
}

func TestResampleClosed(t *testing.T) {
	s := unitSquare()
	r := s.ResampleClosed(8)
	require.Len(t, r, 8)

	// Equal arc-length spacing on a square of perimeter 4 means every
	// consecutive pair (including the closing one) is 0.5 apart.
	for i := range r {
		next := r[(i+1)%len(r)]
		assert.InDelta(t, 0.5, r[i].Distance(next), 1e-9)
	}
	assert.Equal(t, s[0], r[0])
}

func TestResampleClosedPreservesCircle(t *testing.T) {
	c := regularPolygon(100, 2)
	r := c.ResampleClosed(64)
	require.Len(t, r, 64)
	for _, p := range r {
		assert.InDelta(t, 2.0, math.Hypot(p.X, p.Y), 0.01)
	}
}

func TestDownsample(t *testing.T) {
	s := regularPolygon(1000, 1)
	d := s.Downsample(100)
	assert.LessOrEqual(t, len(d), 100)
	assert.GreaterOrEqual(t, len(d), MinPoints)
	assert.Equal(t, s[0], d[0])

	// Small inputs pass through untouched.
	sq := unitSquare()
	assert.Equal(t, sq, sq.Downsample(100))
}

func TestPolygonMaskArea(t *testing.T) {
	// A square spanning [-1,1]² fills essentially the whole grid.
	full := Sequence{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	m := PolygonMask(full, 64)
	assert.InDelta(t, 64*64, m.Count(), 64*2)

	// A square half as wide covers about a quarter of the grid.
	half := Sequence{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	mh := PolygonMask(half, 64)
	ratio := float64(mh.Count()) / float64(m.Count())
	assert.InDelta(t, 0.25, ratio, 0.03)
}

func TestMaskSetOperations(t *testing.T) {
	a := Sequence{{-1, -1}, {0.5, -1}, {0.5, 1}, {-1, 1}}
	b := Sequence{{-0.5, -1}, {1, -1}, {1, 1}, {-0.5, 1}}

	ma := PolygonMask(a, 128)
	mb := PolygonMask(b, 128)

	inter := ma.IntersectCount(mb)
	union := ma.UnionCount(mb)
	assert.Greater(t, inter, 0)
	assert.Equal(t, union, ma.Count()+mb.Count()-inter)
	assert.Equal(t, ma.Count()-inter, ma.DiffCount(mb))
}

func TestPathMask(t *testing.T) {
	line := Sequence{{-0.9, 0}, {0.9, 0}}
	m := PathMask(line, 128, 0.05)
	assert.Greater(t, m.Count(), 0)

	// Every set cell sits within the stroke radius of the segment.
	for row := 0; row < 128; row++ {
		for col := 0; col < 128; col++ {
			if !m.At(col, row) {
				continue
			}
			y := cellCoord(row, 128)
			assert.LessOrEqual(t, math.Abs(y), 0.05+2.0/127)
		}
	}
}
