package geom

import (
	"math"
	"sort"
)

// Mask is a square occupancy grid over the normalized frame [-1,1]².
// Cell (col, row) covers the point (-1 + 2·col/(n-1), -1 + 2·row/(n-1)).
type Mask struct {
	n     int
	cells []bool
}

// NewMask creates an empty n×n mask.
func NewMask(n int) *Mask {
	return &Mask{n: n, cells: make([]bool, n*n)}
}

// Size returns the grid dimension.
func (m *Mask) Size() int { return m.n }

// At reports whether the cell at (col, row) is set.
func (m *Mask) At(col, row int) bool {
	return m.cells[row*m.n+col]
}

// Set marks the cell at (col, row).
func (m *Mask) Set(col, row int) {
	m.cells[row*m.n+col] = true
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	var c int
	for _, b := range m.cells {
		if b {
			c++
		}
	}
	return c
}

// IntersectCount returns the number of cells set in both masks.
func (m *Mask) IntersectCount(other *Mask) int {
	var c int
	for i, b := range m.cells {
		if b && other.cells[i] {
			c++
		}
	}
	return c
}

// UnionCount returns the number of cells set in either mask.
func (m *Mask) UnionCount(other *Mask) int {
	var c int
	for i, b := range m.cells {
		if b || other.cells[i] {
			c++
		}
	}
	return c
}

// DiffCount returns the number of cells set in m but not in other.
func (m *Mask) DiffCount(other *Mask) int {
	var c int
	for i, b := range m.cells {
		if b && !other.cells[i] {
			c++
		}
	}
	return c
}

// cellCoord maps a grid index to its normalized coordinate in [-1,1].
func cellCoord(i, n int) float64 {
	return -1 + 2*float64(i)/float64(n-1)
}

// coordCell maps a normalized coordinate to the nearest grid index, clamped.
func coordCell(x float64, n int) int {
	i := int(math.Round((x + 1) / 2 * float64(n-1)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// PolygonMask rasterizes the closed polygon into an n×n mask using even-odd
// scanline filling. The sequence is expected in normalized [-1,1] coordinates.
func PolygonMask(s Sequence, n int) *Mask {
	mask := NewMask(n)
	if len(s) < MinPoints {
		return mask
	}

	edges := s.Edges()
	crossings := make([]float64, 0, len(edges))

	for row := 0; row < n; row++ {
		y := cellCoord(row, n)
		crossings = crossings[:0]

		for _, e := range edges {
			y1, y2 := e.A.Y, e.B.Y
			if y1 == y2 {
				continue // horizontal edge contributes no crossing
			}
			// Half-open interval keeps shared vertices from double-counting.
			if (y >= math.Min(y1, y2)) && (y < math.Max(y1, y2)) {
				t := (y - y1) / (y2 - y1)
				crossings = append(crossings, e.A.X+t*(e.B.X-e.A.X))
			}
		}

		if len(crossings) < 2 {
			continue
		}
		sort.Float64s(crossings)

		for i := 0; i+1 < len(crossings); i += 2 {
			lo := coordCell(crossings[i], n)
			hi := coordCell(crossings[i+1], n)
			for col := lo; col <= hi; col++ {
				mask.Set(col, row)
			}
		}
	}
	return mask
}

// PathMask rasterizes the closed polyline as a stroke of the given radius
// (in normalized units) into an n×n mask. Only cells within each segment's
// padded bounding box are tested, which keeps the cost proportional to the
// stroked area rather than the whole grid.
func PathMask(s Sequence, n int, radius float64) *Mask {
	mask := NewMask(n)
	if len(s) < 2 {
		return mask
	}

	for _, e := range s.Edges() {
		minCol := coordCell(math.Min(e.A.X, e.B.X)-radius, n)
		maxCol := coordCell(math.Max(e.A.X, e.B.X)+radius, n)
		minRow := coordCell(math.Min(e.A.Y, e.B.Y)-radius, n)
		maxRow := coordCell(math.Max(e.A.Y, e.B.Y)+radius, n)

		vx := e.B.X - e.A.X
		vy := e.B.Y - e.A.Y
		vv := vx*vx + vy*vy

		for row := minRow; row <= maxRow; row++ {
			y := cellCoord(row, n)
			for col := minCol; col <= maxCol; col++ {
				x := cellCoord(col, n)

				var dist float64
				if vv == 0 {
					dist = math.Hypot(x-e.A.X, y-e.A.Y)
				} else {
					t := ((x-e.A.X)*vx + (y-e.A.Y)*vy) / vv
					t = math.Max(0, math.Min(1, t))
					dist = math.Hypot(x-(e.A.X+t*vx), y-(e.A.Y+t*vy))
				}
				if dist <= radius {
					mask.Set(col, row)
				}
			}
		}
	}
	return mask
}
