package plan

import (
	"math"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/geom"
	"github.com/san-kum/smear/internal/glyph"
)

type edgeKind uint8

const (
	edgeNone edgeKind = iota
	edgeTop
	edgeBottom
	edgeLeft
	edgeRight
	edgeDiagLeft
	edgeDiagRight
)

// Edges shorter than this in both axes cut nothing.
const edgeEps = 1e-6

type edge struct {
	kind edgeKind
	p1   geom.Point

	// slope is rows per column for horizontal-ish edges, inv is columns
	// per row for vertical-ish and diagonal ones. Only the one matching
	// the kind is ever read, so extrapolation along the supporting line
	// stays bounded.
	slope float64
	inv   float64

	snap    int
	snapped bool
	side    glyph.Side
}

// classify labels the four directed edges of a clockwise quad by the
// flank they form. Clockwise order fixes the interior side: top edges
// travel right, bottom edges left, right flanks down and left flanks up.
func classify(q geom.Quad, pc config.PlannerConfig, aspect float64) [4]edge {
	var out [4]edge
	for i := range q {
		out[i] = makeEdge(q[i], q[(i+1)%4], pc, aspect)
	}
	return out
}

func makeEdge(p1, p2 geom.Point, pc config.PlannerConfig, aspect float64) edge {
	e := edge{kind: edgeNone, p1: p1}
	dr, dc := p2.Row-p1.Row, p2.Col-p1.Col
	if math.Abs(dr) < edgeEps && math.Abs(dc) < edgeEps {
		return e
	}
	if math.Abs(dc) < 1e-12 {
		if dr > 0 {
			e.kind = edgeRight
		} else {
			e.kind = edgeLeft
		}
		return e
	}
	slope := dr / dc
	switch {
	case math.Abs(slope) <= pc.SlopeMaxHorizontal:
		e.slope = slope
		if dc > 0 {
			e.kind = edgeTop
		} else {
			e.kind = edgeBottom
		}
	case math.Abs(slope) >= pc.SlopeMinVertical:
		e.inv = dc / dr
		if dr > 0 {
			e.kind = edgeRight
		} else {
			e.kind = edgeLeft
		}
	default:
		e.inv = dc / dr
		if dr > 0 {
			e.kind = edgeDiagRight
		} else {
			e.kind = edgeDiagLeft
		}
		if dc > 0 {
			e.side = glyph.FillBelow
		} else {
			e.side = glyph.FillAbove
		}
		e.snap, e.snapped = glyph.SnapSlope(slope, aspect, pc.DiagonalTolerance)
	}
	return e
}

func (e *edge) rowAt(col float64) float64 { return e.p1.Row + (col-e.p1.Col)*e.slope }
func (e *edge) colAt(row float64) float64 { return e.p1.Col + (row-e.p1.Row)*e.inv }

// intrusion measures how far the edge's supporting line cuts into the
// unit cell at (row, col) from the edge's own flank, in cell fractions.
// 0 leaves the cell untouched, values >= 1 exclude it entirely.
// Horizontal-ish edges are sampled at the cell's center column, the rest
// at its center row.
func (e *edge) intrusion(row, col int) float64 {
	var in float64
	switch e.kind {
	case edgeTop:
		in = e.rowAt(float64(col)+0.5) - float64(row)
	case edgeBottom:
		in = float64(row+1) - e.rowAt(float64(col)+0.5)
	case edgeLeft, edgeDiagLeft:
		in = e.colAt(float64(row)+0.5) - float64(col)
	case edgeRight, edgeDiagRight:
		in = float64(col+1) - e.colAt(float64(row)+0.5)
	default:
		return 0
	}
	if in < 0 {
		return 0
	}
	return in
}

// inside reports whether a point lies on the edge's interior side.
func (e *edge) inside(pt geom.Point) bool {
	switch e.kind {
	case edgeTop:
		return pt.Row >= e.rowAt(pt.Col)
	case edgeBottom:
		return pt.Row <= e.rowAt(pt.Col)
	case edgeLeft, edgeDiagLeft:
		return pt.Col >= e.colAt(pt.Row)
	case edgeRight, edgeDiagRight:
		return pt.Col <= e.colAt(pt.Row)
	}
	return true
}
