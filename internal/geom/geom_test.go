package geom

import (
	"math"
	"testing"
)

func TestCentroid(t *testing.T) {
	q := CellQuad(2, 3)
	c := q.Centroid()
	if c.Row != 2.5 || c.Col != 3.5 {
		t.Errorf("expected centroid (2.5, 3.5), got (%v, %v)", c.Row, c.Col)
	}
}

func TestSortClockwise(t *testing.T) {
	// Shuffled unit square around (0,0)-(1,1).
	q := Quad{
		{Row: 1, Col: 1},
		{Row: 0, Col: 0},
		{Row: 1, Col: 0},
		{Row: 0, Col: 1},
	}
	q.SortClockwise()

	want := Quad{
		{Row: 0, Col: 0},
		{Row: 0, Col: 1},
		{Row: 1, Col: 1},
		{Row: 1, Col: 0},
	}
	if q != want {
		t.Errorf("expected %v, got %v", want, q)
	}
}

func TestSortClockwiseSheared(t *testing.T) {
	q := Quad{
		{Row: 2.0, Col: 5.0},
		{Row: 0.5, Col: 1.0},
		{Row: 1.5, Col: 4.5},
		{Row: 1.0, Col: 1.5},
	}
	q.SortClockwise()

	if q[0].Row != 0.5 {
		t.Errorf("expected top-most corner first, got %v", q[0])
	}
	// Clockwise in screen coordinates: signed area of the polygon is
	// positive when the row axis points down.
	area := 0.0
	for i := range q {
		j := (i + 1) % 4
		area += q[i].Col*q[j].Row - q[j].Col*q[i].Row
	}
	if area <= 0 {
		t.Errorf("expected clockwise order, signed area %v", area)
	}
}

func TestDistAndLerp(t *testing.T) {
	p := Point{Row: 1, Col: 1}
	q := Point{Row: 4, Col: 5}
	if d := Dist(p, q); math.Abs(d-5) > 1e-12 {
		t.Errorf("expected distance 5, got %v", d)
	}
	m := Lerp(p, q, 0.5)
	if m.Row != 2.5 || m.Col != 3 {
		t.Errorf("expected midpoint (2.5, 3), got %v", m)
	}
}

func TestIsFinite(t *testing.T) {
	q := CellQuad(0, 0)
	if !q.IsFinite() {
		t.Error("cell quad should be finite")
	}
	q[2].Col = math.NaN()
	if q.IsFinite() {
		t.Error("NaN corner should make quad non-finite")
	}
	q[2].Col = math.Inf(1)
	if q.IsFinite() {
		t.Error("Inf corner should make quad non-finite")
	}
}

func TestExtent(t *testing.T) {
	q := Quad{
		{Row: 1.2, Col: 3.4},
		{Row: 0.8, Col: 5.1},
		{Row: 2.6, Col: 4.0},
		{Row: 1.9, Col: 3.0},
	}
	min, max := q.Extent()
	if min.Row != 0.8 || min.Col != 3.0 || max.Row != 2.6 || max.Col != 5.1 {
		t.Errorf("unexpected extent min=%v max=%v", min, max)
	}
}

func TestMaxCornerDist(t *testing.T) {
	a := CellQuad(0, 0)
	b := CellQuad(0, 3)
	if d := a.MaxCornerDist(b); d != 3 {
		t.Errorf("expected 3, got %v", d)
	}
}
