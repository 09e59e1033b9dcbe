package glyph

import "math"

// Eighth-block strips, indexed by the number of filled eighths (0..8).
// Upper and right strips lean on Symbols for Legacy Computing for the
// sizes the base Block Elements range lacks.
var (
	LowerBlocks = [9]rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	UpperBlocks = [9]rune{' ', '▔', '\U0001FB82', '\U0001FB83', '▀', '\U0001FB84', '\U0001FB85', '\U0001FB86', '█'}
	LeftBlocks  = [9]rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}
	RightBlocks = [9]rune{' ', '▕', '\U0001FB87', '\U0001FB88', '▐', '\U0001FB89', '\U0001FB8A', '\U0001FB8B', '█'}
)

// Quadrant mosaics. Bitmap encoding: bit0=UL, bit1=UR, bit2=LL, bit3=LR.
var Quadrants = [16]rune{
	' ', '▘', '▝', '▀',
	'▖', '▌', '▞', '▛',
	'▗', '▚', '▐', '▜',
	'▄', '▙', '▟', '█',
}

// QuadrantBit returns the mask bit for the quadrant at (qRow, qCol),
// each in [0,2).
func QuadrantBit(qRow, qCol int) uint8 {
	return 1 << (2*qRow + qCol)
}

// Eighths discretizes a fraction in [0,1] to a strip index.
func Eighths(frac float64) int {
	k := int(math.Round(frac * 8))
	if k < 0 {
		return 0
	}
	if k > 8 {
		return 8
	}
	return k
}
