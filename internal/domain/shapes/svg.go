// Package shapes provides the built-in geometric templates that routes are
// graded against, along with the SVG parsing needed to turn template
// documents into point sequences.
package shapes

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inshape/inshape/internal/domain/geom"
)

const (
	circleSamples   = 100
	ellipseSamples  = 256
	edgeSubdivision = 20
	cubicSamples    = 12
	quadSamples     = 10
)

// ParseSVG extracts the outline of the first supported drawable element in an
// SVG document. Supported elements are path (absolute M/L/H/V/C/Q/Z commands),
// circle, ellipse, rect and polygon. Curves are flattened into line segments
// and straight edges are subdivided so that downstream resampling sees a
// dense, evenly described outline.
func ParseSVG(doc []byte) (geom.Sequence, error) {
	dec := xml.NewDecoder(strings.NewReader(string(doc)))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "path":
			if d := attr(start, "d"); d != "" {
				return ParsePath(d)
			}
		case "circle":
			return circleOutline(start)
		case "ellipse":
			return ellipseOutline(start)
		case "rect":
			return rectOutline(start)
		case "polygon":
			return polygonOutline(start)
		}
	}
	return nil, fmt.Errorf("%w: no supported drawable element", ErrInvalidSVG)
}

// ParsePath converts an SVG path data string into a point sequence. Only
// absolute commands are supported; cubic and quadratic curves are sampled
// into line segments.
func ParsePath(d string) (geom.Sequence, error) {
	tokens := tokenizePath(d)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty path data", ErrInvalidSVG)
	}

	var (
		pts   geom.Sequence
		cur   geom.Point
		start geom.Point
	)

	num := func(i int) (float64, error) {
		if i >= len(tokens) {
			return 0, fmt.Errorf("%w: truncated path data", ErrInvalidSVG)
		}
		v, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad number %q", ErrInvalidSVG, tokens[i])
		}
		return v, nil
	}
	pair := func(i int) (geom.Point, error) {
		x, err := num(i)
		if err != nil {
			return geom.Point{}, err
		}
		y, err := num(i + 1)
		if err != nil {
			return geom.Point{}, err
		}
		return geom.Point{X: x, Y: y}, nil
	}

	i := 0
	for i < len(tokens) {
		switch tokens[i] {
		case "M":
			p, err := pair(i + 1)
			if err != nil {
				return nil, err
			}
			cur, start = p, p
			pts = append(pts, p)
			i += 3
		case "L":
			p, err := pair(i + 1)
			if err != nil {
				return nil, err
			}
			cur = p
			pts = append(pts, p)
			i += 3
		case "H":
			x, err := num(i + 1)
			if err != nil {
				return nil, err
			}
			cur = geom.Point{X: x, Y: cur.Y}
			pts = append(pts, cur)
			i += 2
		case "V":
			y, err := num(i + 1)
			if err != nil {
				return nil, err
			}
			cur = geom.Point{X: cur.X, Y: y}
			pts = append(pts, cur)
			i += 2
		case "C":
			p1, err := pair(i + 1)
			if err != nil {
				return nil, err
			}
			p2, err := pair(i + 3)
			if err != nil {
				return nil, err
			}
			p3, err := pair(i + 5)
			if err != nil {
				return nil, err
			}
			for k := 1; k <= cubicSamples; k++ {
				t := float64(k) / float64(cubicSamples)
				pts = append(pts, cubicAt(cur, p1, p2, p3, t))
			}
			cur = p3
			i += 7
		case "Q":
			p1, err := pair(i + 1)
			if err != nil {
				return nil, err
			}
			p2, err := pair(i + 3)
			if err != nil {
				return nil, err
			}
			for k := 1; k <= quadSamples; k++ {
				t := float64(k) / float64(quadSamples)
				pts = append(pts, quadAt(cur, p1, p2, t))
			}
			cur = p2
			i += 5
		case "Z", "z":
			cur = start
			i++
		default:
			// A bare number where a command was expected: skip it.
			i++
		}
	}

	if len(pts) < geom.MinPoints {
		return nil, fmt.Errorf("%w: path yielded %d points", ErrInvalidSVG, len(pts))
	}
	return pts, nil
}

func tokenizePath(d string) []string {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range d {
		switch {
		case r == ' ' || r == ',' || r == '\n' || r == '\t' || r == '\r':
			flush()
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			flush()
			tokens = append(tokens, string(r))
		case r == '-' || r == '+':
			// A sign starts a new number unless it follows an exponent.
			if cur.Len() > 0 && !strings.HasSuffix(cur.String(), "e") {
				flush()
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func cubicAt(p0, p1, p2, p3 geom.Point, t float64) geom.Point {
	mt := 1 - t
	return geom.Point{
		X: mt*mt*mt*p0.X + 3*mt*mt*t*p1.X + 3*mt*t*t*p2.X + t*t*t*p3.X,
		Y: mt*mt*mt*p0.Y + 3*mt*mt*t*p1.Y + 3*mt*t*t*p2.Y + t*t*t*p3.Y,
	}
}

func quadAt(p0, p1, p2 geom.Point, t float64) geom.Point {
	mt := 1 - t
	return geom.Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func floatAttr(e xml.StartElement, name string) (float64, error) {
	v := attr(e, name)
	if v == "" {
		return 0, fmt.Errorf("%w: missing attribute %q", ErrInvalidSVG, name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad attribute %s=%q", ErrInvalidSVG, name, v)
	}
	return f, nil
}

func circleOutline(e xml.StartElement) (geom.Sequence, error) {
	cx, err := floatAttr(e, "cx")
	if err != nil {
		return nil, err
	}
	cy, err := floatAttr(e, "cy")
	if err != nil {
		return nil, err
	}
	r, err := floatAttr(e, "r")
	if err != nil {
		return nil, err
	}
	return arcSamples(cx, cy, r, r, circleSamples), nil
}

func ellipseOutline(e xml.StartElement) (geom.Sequence, error) {
	cx, err := floatAttr(e, "cx")
	if err != nil {
		return nil, err
	}
	cy, err := floatAttr(e, "cy")
	if err != nil {
		return nil, err
	}
	rx, err := floatAttr(e, "rx")
	if err != nil {
		return nil, err
	}
	ry, err := floatAttr(e, "ry")
	if err != nil {
		return nil, err
	}
	return arcSamples(cx, cy, rx, ry, ellipseSamples), nil
}

func arcSamples(cx, cy, rx, ry float64, n int) geom.Sequence {
	pts := make(geom.Sequence, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Point{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)}
	}
	return pts
}

func rectOutline(e xml.StartElement) (geom.Sequence, error) {
	w, err := floatAttr(e, "width")
	if err != nil {
		return nil, err
	}
	h, err := floatAttr(e, "height")
	if err != nil {
		return nil, err
	}
	var x, y float64
	if v := attr(e, "x"); v != "" {
		if x, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: bad attribute x=%q", ErrInvalidSVG, v)
		}
	}
	if v := attr(e, "y"); v != "" {
		if y, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: bad attribute y=%q", ErrInvalidSVG, v)
		}
	}
	corners := geom.Sequence{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
	return subdivide(corners, edgeSubdivision), nil
}

func polygonOutline(e xml.StartElement) (geom.Sequence, error) {
	raw := attr(e, "points")
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("%w: odd coordinate count in polygon", ErrInvalidSVG)
	}
	verts := make(geom.Sequence, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad polygon coordinate %q", ErrInvalidSVG, fields[i])
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad polygon coordinate %q", ErrInvalidSVG, fields[i+1])
		}
		verts = append(verts, geom.Point{X: x, Y: y})
	}
	if len(verts) < geom.MinPoints {
		return nil, fmt.Errorf("%w: polygon has %d vertices", ErrInvalidSVG, len(verts))
	}
	return subdivide(verts, edgeSubdivision), nil
}

// subdivide inserts n evenly spaced points along every edge of the closed
// polygon, vertex included. Dense outlines keep arc-length resampling stable
// on shapes with few vertices.
func subdivide(verts geom.Sequence, n int) geom.Sequence {
	out := make(geom.Sequence, 0, len(verts)*n)
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		for k := 0; k < n; k++ {
			t := float64(k) / float64(n)
			out = append(out, geom.Point{
				X: a.X + t*(b.X-a.X),
				Y: a.Y + t*(b.Y-a.Y),
			})
		}
	}
	return out
}
