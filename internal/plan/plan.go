package plan

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/geom"
	"github.com/san-kum/smear/internal/glyph"
	"github.com/san-kum/smear/internal/motion"
	"github.com/san-kum/smear/internal/palette"
)

// Stacking layers within one frame. Particles always render above the
// smear body.
const (
	StackSmear = iota
	StackParticles
)

// CellOp is one terminal cell write: which glyph to place where and the
// shade to color it with.
type CellOp struct {
	Row, Col int
	Stacking int
	Glyph    rune
	HL       palette.Ref
}

// Probe reports the character occupying a screen cell underneath the
// overlay layer. Zero or space means blank. A nil Probe treats the whole
// screen as blank.
type Probe func(row, col int) rune

// Frame is everything one frame plan depends on.
type Frame struct {
	Corners   geom.Quad
	TargetRow int
	TargetCol int
	Particles []motion.Particle
	Rows      int
	Cols      int
	Bulge     bool
}

// Result is a planned frame.
type Result struct {
	Ops []CellOp

	// Bulge is the flag the next frame should be planned with.
	Bulge bool

	// Signature fingerprints the op stream. Two frames with equal
	// signatures render identically.
	Signature uint64

	// Particles marks frames that must not be served from a signature
	// cache because particle motion is still in flight.
	Particles bool
}

// Build plans the cell operations for one frame.
func Build(fr Frame, cfg *config.Config, pal *palette.Palette, probe Probe) Result {
	res := Result{Bulge: !fr.Bulge}
	if fr.Corners.IsFinite() {
		res.Ops = smearOps(fr, cfg, pal.Levels())
	}
	if cfg.Particles.Enabled && len(fr.Particles) > 0 {
		res.Particles = true
		res.Ops = append(res.Ops, particleOps(fr, cfg, pal.Levels(), probe)...)
	}
	sort.Slice(res.Ops, func(i, j int) bool {
		a, b := res.Ops[i], res.Ops[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.Stacking < b.Stacking
	})
	res.Signature = signature(res.Ops)
	return res
}

func smearOps(fr Frame, cfg *config.Config, levels int) []CellOp {
	q := fr.Corners
	q.SortClockwise()

	w := walker{
		edges:  classify(q, cfg.Planner, cfg.Physics.CellAspect),
		pc:     cfg.Planner,
		levels: levels,
		target: [2]int{fr.TargetRow, fr.TargetCol},
		bulge:  fr.Bulge,
	}
	allNone := true
	for i := range w.edges {
		if w.edges[i].kind != edgeNone {
			allNone = false
			break
		}
	}
	if allNone {
		return nil
	}

	tc := geom.Point{Row: float64(fr.TargetRow) + 0.5, Col: float64(fr.TargetCol) + 0.5}
	w.head, w.tail = headTail(q, tc)
	w.axis = w.tail.Sub(w.head)
	w.axisSq = w.axis.Row*w.axis.Row + w.axis.Col*w.axis.Col

	lo, hi := q.Extent()
	r0 := clampInt(int(math.Floor(lo.Row)), 0, fr.Rows)
	r1 := clampInt(int(math.Ceil(hi.Row)), 0, fr.Rows)
	c0 := clampInt(int(math.Floor(lo.Col)), 0, fr.Cols)
	c1 := clampInt(int(math.Ceil(hi.Col)), 0, fr.Cols)

	var ops []CellOp
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			if op, ok := w.cell(row, col); ok {
				ops = append(ops, op)
			}
		}
	}
	return ops
}

type walker struct {
	edges  [4]edge
	pc     config.PlannerConfig
	levels int
	head   geom.Point
	tail   geom.Point
	axis   geom.Point
	axisSq float64
	target [2]int
	bulge  bool
}

// cell plans the smear op for one cell, or reports the cell empty.
func (w *walker) cell(row, col int) (CellOp, bool) {
	cov := 1.0
	cutters := 0
	dominant := -1
	for i := range w.edges {
		in := w.edges[i].intrusion(row, col)
		if in >= 1 {
			return CellOp{}, false
		}
		if in > 0 {
			cov *= 1 - in
			cutters++
			dominant = i
		}
	}
	cov = w.fade(row, col, cov)
	shade := shadeLevel(cov, w.levels)
	if shade == 0 {
		return CellOp{}, false
	}
	if w.pc.NeverDrawOverTarget && row == w.target[0] && col == w.target[1] && shade >= w.levels {
		return CellOp{}, false
	}

	g := '█'
	inverted := false
	if cutters == 1 {
		e := &w.edges[dominant]
		frac := 1 - e.intrusion(row, col)
		switch e.kind {
		case edgeTop:
			k := biasedEighths(frac, w.bulge)
			if k == 0 {
				return CellOp{}, false
			}
			g = glyph.LowerBlocks[k]
		case edgeBottom:
			k := biasedEighths(frac, !w.bulge)
			switch {
			case k == 0:
				return CellOp{}, false
			case k == 8:
			case w.pc.LegacyBlocks:
				g = glyph.UpperBlocks[k]
			default:
				g, inverted = glyph.LowerBlocks[8-k], true
			}
		case edgeRight:
			k := glyph.Eighths(frac)
			if k == 0 {
				return CellOp{}, false
			}
			g = glyph.LeftBlocks[k]
		case edgeLeft:
			k := glyph.Eighths(frac)
			switch {
			case k == 0:
				return CellOp{}, false
			case k == 8:
			case w.pc.LegacyBlocks:
				g = glyph.RightBlocks[k]
			default:
				g, inverted = glyph.LeftBlocks[8-k], true
			}
		default:
			if e.snapped {
				g = glyph.Diagonal(e.snap, e.side)
			} else {
				var ok bool
				if g, ok = w.matrix(row, col, cov); !ok {
					return CellOp{}, false
				}
			}
		}
	} else if cutters > 1 {
		var ok bool
		if g, ok = w.matrix(row, col, cov); !ok {
			return CellOp{}, false
		}
	}
	return CellOp{
		Row:      row,
		Col:      col,
		Stacking: StackSmear,
		Glyph:    g,
		HL:       palette.Ref{Level: shade, Inverted: inverted},
	}, true
}

// matrix approximates an ambiguous cut with a quadrant mosaic, sampling
// the quad at each quadrant center. Cells below the shade cutoff are
// dropped rather than rendered as noise.
func (w *walker) matrix(row, col int, cov float64) (rune, bool) {
	if cov < w.pc.MatrixShadeCutoff {
		return 0, false
	}
	var mask uint8
	for qr := 0; qr < 2; qr++ {
		for qc := 0; qc < 2; qc++ {
			pt := geom.Point{
				Row: float64(row) + 0.25 + 0.5*float64(qr),
				Col: float64(col) + 0.25 + 0.5*float64(qc),
			}
			if w.inside(pt) {
				mask |= glyph.QuadrantBit(qr, qc)
			}
		}
	}
	if mask == 0 {
		return 0, false
	}
	return glyph.Quadrants[mask], true
}

func (w *walker) inside(pt geom.Point) bool {
	for i := range w.edges {
		if !w.edges[i].inside(pt) {
			return false
		}
	}
	return true
}

// fade scales coverage down along the head-to-tail axis.
func (w *walker) fade(row, col int, cov float64) float64 {
	g := w.pc.Gradient
	if g <= 0 || w.axisSq == 0 {
		return cov
	}
	center := geom.Point{Row: float64(row) + 0.5, Col: float64(col) + 0.5}
	d := center.Sub(w.head)
	t := (d.Row*w.axis.Row + d.Col*w.axis.Col) / w.axisSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	s := 1 - g*t
	if s < 0 {
		s = 0
	}
	return cov * s
}

// headTail picks the corners nearest and farthest from the target cell
// center. They anchor the gradient axis.
func headTail(q geom.Quad, target geom.Point) (head, tail geom.Point) {
	head, tail = q[0], q[0]
	best := geom.Dist(q[0], target)
	worst := best
	for _, c := range q[1:] {
		d := geom.Dist(c, target)
		if d < best {
			best, head = d, c
		}
		if d > worst {
			worst, tail = d, c
		}
	}
	return head, tail
}

// biasedEighths rounds a fill fraction to eighths, breaking near-halves
// toward the thicker glyph when thick is set. Alternating the flag per
// frame moves the extra eighth between the two sides of a cut.
func biasedEighths(frac float64, thick bool) int {
	bias := -0.125
	if thick {
		bias = 0.125
	}
	k := int(math.Round(frac*8 + bias))
	if k < 0 {
		return 0
	}
	if k > 8 {
		return 8
	}
	return k
}

func shadeLevel(cov float64, levels int) int {
	s := int(math.Round(cov * float64(levels)))
	if s < 0 {
		return 0
	}
	if s > levels {
		return levels
	}
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// signature hashes the op stream only. The bulge flag flips on every
// planned frame, so hashing it would keep equal frames from deduping.
func signature(ops []CellOp) uint64 {
	h := fnv.New64a()
	var buf [15]byte
	for _, op := range ops {
		binary.LittleEndian.PutUint32(buf[0:], uint32(op.Row))
		binary.LittleEndian.PutUint32(buf[4:], uint32(op.Col))
		buf[8] = byte(op.Stacking)
		binary.LittleEndian.PutUint32(buf[9:], uint32(op.Glyph))
		buf[13] = byte(op.HL.Level)
		buf[14] = 0
		if op.HL.Inverted {
			buf[14] = 1
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}
