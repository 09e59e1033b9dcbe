package plan

import (
	"math"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/glyph"
	"github.com/san-kum/smear/internal/palette"
)

type dotCell struct {
	braille uint8
	octant  uint8
	life    float64
	chunky  bool
}

// particleOps rasterizes the particle cloud into per-cell dot patterns.
// Cells whose underlying screen content is not blank are skipped so dust
// never obscures text. Fresh particles switch to the solid octant grid
// when octants are enabled, fading ones stay braille.
func particleOps(fr Frame, cfg *config.Config, levels int, probe Probe) []CellOp {
	pa := cfg.Particles
	cells := make(map[[2]int]*dotCell)
	for _, p := range fr.Particles {
		if p.Life <= 0 || !p.Pos.IsFinite() {
			continue
		}
		row := int(math.Floor(p.Pos.Row))
		col := int(math.Floor(p.Pos.Col))
		if row < 0 || row >= fr.Rows || col < 0 || col >= fr.Cols {
			continue
		}
		if !blank(probe, row, col) {
			continue
		}
		dr := clampInt(int((p.Pos.Row-float64(row))*4), 0, 3)
		dc := clampInt(int((p.Pos.Col-float64(col))*2), 0, 1)
		key := [2]int{row, col}
		cell := cells[key]
		if cell == nil {
			cell = &dotCell{}
			cells[key] = cell
		}
		cell.braille |= glyph.BrailleDot(dr, dc)
		cell.octant |= glyph.OctantDot(dr, dc)
		lf := p.LifeFrac()
		if lf > cell.life {
			cell.life = lf
		}
		if pa.Octants && lf >= pa.OctantThreshold {
			cell.chunky = true
		}
	}

	ops := make([]CellOp, 0, len(cells))
	for key, cell := range cells {
		shade := shadeLevel(cell.life, levels)
		if shade == 0 {
			continue
		}
		g := glyph.Braille(cell.braille)
		if cell.chunky {
			g = glyph.Octant(cell.octant)
		}
		ops = append(ops, CellOp{
			Row:      key[0],
			Col:      key[1],
			Stacking: StackParticles,
			Glyph:    g,
			HL:       palette.Ref{Level: shade},
		})
	}
	return ops
}

func blank(probe Probe, row, col int) bool {
	if probe == nil {
		return true
	}
	ch := probe(row, col)
	return ch == 0 || ch == ' '
}
