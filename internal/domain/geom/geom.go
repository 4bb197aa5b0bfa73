// Package geom provides the 2D point-sequence primitives used by the
// alignment and scoring engine. A Sequence is an ordered list of points
// that is treated as implicitly closed (the last point connects back to
// the first) when interpreted as a polygon.
package geom

import (
	"fmt"
	"math"
)

// MinPoints is the minimum number of points required to form a polygon.
const MinPoints = 3

// Point represents a 2D point with floating-point coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sequence is an ordered list of 2D points forming an implicitly closed polygon.
type Sequence []Point

// Bounds describes the axis-aligned bounding box of a sequence.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Validate checks that the sequence can form a non-degenerate polygon.
func (s Sequence) Validate() error {
	if len(s) < MinPoints {
		return fmt.Errorf("%w: need at least %d points, got %d", ErrInvalidInput, MinPoints, len(s))
	}
	b := s.Bounds()
	if b.Width() == 0 && b.Height() == 0 {
		return fmt.Errorf("%w: all points coincide", ErrInvalidInput)
	}
	return nil
}

// Clone returns a deep copy of the sequence.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Centroid returns the arithmetic mean of all points.
func (s Sequence) Centroid() Point {
	if len(s) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range s {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(s))
	return Point{X: sx / n, Y: sy / n}
}

// Bounds returns the axis-aligned bounding box of the sequence.
func (s Sequence) Bounds() Bounds {
	if len(s) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: s[0].X, MinY: s[0].Y, MaxX: s[0].X, MaxY: s[0].Y}
	for _, p := range s[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// Centered returns a copy of the sequence translated so its centroid is at the origin.
func (s Sequence) Centered() Sequence {
	c := s.Centroid()
	out := make(Sequence, len(s))
	for i, p := range s {
		out[i] = p.Sub(c)
	}
	return out
}

// Translate returns a copy of the sequence shifted by dx, dy.
func (s Sequence) Translate(dx, dy float64) Sequence {
	out := make(Sequence, len(s))
	for i, p := range s {
		out[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// RotateAbout returns a copy of the sequence rotated by angle radians
// counter-clockwise around the given center.
func (s Sequence) RotateAbout(center Point, angle float64) Sequence {
	sin, cos := math.Sincos(angle)
	out := make(Sequence, len(s))
	for i, p := range s {
		dx := p.X - center.X
		dy := p.Y - center.Y
		out[i] = Point{
			X: center.X + dx*cos - dy*sin,
			Y: center.Y + dx*sin + dy*cos,
		}
	}
	return out
}

// ScaleAbout returns a copy of the sequence uniformly scaled around the given center.
func (s Sequence) ScaleAbout(center Point, factor float64) Sequence {
	out := make(Sequence, len(s))
	for i, p := range s {
		out[i] = Point{
			X: center.X + (p.X-center.X)*factor,
			Y: center.Y + (p.Y-center.Y)*factor,
		}
	}
	return out
}

// Edge is a single polygon edge from A to B, including the closing edge.
type Edge struct {
	A, B Point
}

// Length returns the Euclidean length of the edge.
func (e Edge) Length() float64 { return e.A.Distance(e.B) }

// Angle returns the edge direction in radians.
func (e Edge) Angle() float64 { return math.Atan2(e.B.Y-e.A.Y, e.B.X-e.A.X) }

// Edges returns all polygon edges including the implicit closing edge.
func (s Sequence) Edges() []Edge {
	if len(s) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(s))
	for i := 0; i < len(s)-1; i++ {
		edges = append(edges, Edge{A: s[i], B: s[i+1]})
	}
	edges = append(edges, Edge{A: s[len(s)-1], B: s[0]})
	return edges
}

// Perimeter returns the closed-loop length of the sequence.
func (s Sequence) Perimeter() float64 {
	var total float64
	for _, e := range s.Edges() {
		total += e.Length()
	}
	return total
}

// SignedArea returns the signed polygon area via the shoelace formula.
// Positive for counter-clockwise winding.
func (s Sequence) SignedArea() float64 {
	if len(s) < MinPoints {
		return 0
	}
	var sum float64
	for i := range s {
		j := (i + 1) % len(s)
		sum += s[i].X*s[j].Y - s[j].X*s[i].Y
	}
	return sum / 2
}

// Area returns the absolute polygon area.
func (s Sequence) Area() float64 {
	return math.Abs(s.SignedArea())
}

// NormalizeAngle maps an angle in radians into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
