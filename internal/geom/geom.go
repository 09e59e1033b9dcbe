package geom

import (
	"math"
	"sort"
)

type Point struct {
	Row float64
	Col float64
}

func (p Point) Add(q Point) Point     { return Point{p.Row + q.Row, p.Col + q.Col} }
func (p Point) Sub(q Point) Point     { return Point{p.Row - q.Row, p.Col - q.Col} }
func (p Point) Scale(f float64) Point { return Point{p.Row * f, p.Col * f} }

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.Row) && !math.IsInf(p.Row, 0) &&
		!math.IsNaN(p.Col) && !math.IsInf(p.Col, 0)
}

// Norm returns the Euclidean length of p treated as a vector.
func (p Point) Norm() float64 {
	return math.Sqrt(p.Row*p.Row + p.Col*p.Col)
}

// Dist returns the Euclidean distance between p and q in cell units.
func Dist(p, q Point) float64 {
	dr := p.Row - q.Row
	dc := p.Col - q.Col
	return math.Sqrt(dr*dr + dc*dc)
}

// Lerp interpolates between p and q; t=0 gives p, t=1 gives q.
func Lerp(p, q Point, t float64) Point {
	return Point{p.Row + (q.Row-p.Row)*t, p.Col + (q.Col-p.Col)*t}
}

type Quad [4]Point

func (q Quad) Centroid() Point {
	var r, c float64
	for _, p := range q {
		r += p.Row
		c += p.Col
	}
	return Point{r / 4, c / 4}
}

func (q Quad) IsFinite() bool {
	for _, p := range q {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// Extent returns the minimum and maximum corner coordinates.
func (q Quad) Extent() (min, max Point) {
	min, max = q[0], q[0]
	for _, p := range q[1:] {
		min.Row = math.Min(min.Row, p.Row)
		min.Col = math.Min(min.Col, p.Col)
		max.Row = math.Max(max.Row, p.Row)
		max.Col = math.Max(max.Col, p.Col)
	}
	return min, max
}

// MaxCornerDist returns the largest distance between corresponding corners
// of q and r.
func (q Quad) MaxCornerDist(r Quad) float64 {
	max := 0.0
	for i := range q {
		if d := Dist(q[i], r[i]); d > max {
			max = d
		}
	}
	return max
}

// SortClockwise reorders the corners into clockwise screen order (the row
// axis points down), starting from the top-most corner, ties broken toward
// the left. An axis-aligned cell quad comes out as top-left, top-right,
// bottom-right, bottom-left.
func (q *Quad) SortClockwise() {
	c := q.Centroid()
	sort.Slice(q[:], func(i, j int) bool {
		ai := math.Atan2(q[i].Row-c.Row, q[i].Col-c.Col)
		aj := math.Atan2(q[j].Row-c.Row, q[j].Col-c.Col)
		return ai < aj
	})
	start := 0
	for i := 1; i < len(q); i++ {
		if q[i].Row < q[start].Row ||
			(q[i].Row == q[start].Row && q[i].Col < q[start].Col) {
			start = i
		}
	}
	if start != 0 {
		var rot Quad
		for i := range rot {
			rot[i] = q[(start+i)%len(q)]
		}
		*q = rot
	}
}

// CellQuad returns the unit quad covering the cell at (row, col).
func CellQuad(row, col int) Quad {
	r, c := float64(row), float64(col)
	return Quad{
		{Row: r, Col: c},
		{Row: r, Col: c + 1},
		{Row: r + 1, Col: c + 1},
		{Row: r + 1, Col: c},
	}
}
