package shapes

import (
	"embed"
	"fmt"
	"sort"

	"github.com/inshape/inshape/internal/domain/geom"
)

//go:embed assets/*.svg
var assets embed.FS

// Shape is a registered grading template.
type Shape struct {
	ID      string
	Name    string
	Outline geom.Sequence
}

var registry = map[string]Shape{}

func init() {
	templates := []struct {
		id, name, file string
	}{
		{"rectangle", "Rectangle", "assets/rectangle.svg"},
		{"circle", "Circle", "assets/circle.svg"},
		{"triangle", "Triangle", "assets/triangle.svg"},
		{"star", "Star", "assets/star.svg"},
		{"heart", "Heart", "assets/heart.svg"},
	}

	for _, t := range templates {
		doc, err := assets.ReadFile(t.file)
		if err != nil {
			panic(fmt.Sprintf("shapes: missing embedded template %s: %v", t.file, err))
		}
		outline, err := ParseSVG(doc)
		if err != nil {
			panic(fmt.Sprintf("shapes: parsing template %s: %v", t.file, err))
		}
		registry[t.id] = Shape{
			ID:   t.id,
			Name: t.name,
			// SVG documents grow downward; flip into the y-up frame that
			// projected GPS coordinates use.
			Outline: flipY(outline),
		}
	}
}

func flipY(s geom.Sequence) geom.Sequence {
	out := make(geom.Sequence, len(s))
	for i, p := range s {
		out[i] = geom.Point{X: p.X, Y: -p.Y}
	}
	return out
}

// Lookup returns the template registered under the given id.
func Lookup(id string) (Shape, error) {
	s, ok := registry[id]
	if !ok {
		return Shape{}, fmt.Errorf("%w: %q", ErrUnknownShape, id)
	}
	return s, nil
}

// IDs returns all registered shape ids in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every registered template, ordered by id.
func All() []Shape {
	out := make([]Shape, 0, len(registry))
	for _, id := range IDs() {
		out = append(out, registry[id])
	}
	return out
}
