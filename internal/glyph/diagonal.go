package glyph

import "math"

// Side selects which half-plane of a diagonal edge is filled.
type Side uint8

const (
	FillBelow Side = iota
	FillAbove
)

// CanonicalSlopes are the row-per-col slopes with pre-drawn diagonal block
// glyphs, ascending. Slope sign follows screen coordinates: positive means
// the edge descends to the right.
var CanonicalSlopes = [...]float64{
	-2, -4.0 / 3, -1, -2.0 / 3, -1.0 / 3,
	1.0 / 3, 2.0 / 3, 1, 4.0 / 3, 2,
}

// Indexed by canonical slope, then [FillBelow, FillAbove]. Slope +-1 uses
// the half-cell triangles; the rest come from the legacy-computing smooth
// mosaic diagonals.
var diagonals = [len(CanonicalSlopes)][2]rune{
	{'\U0001FB4B', '\U0001FB56'}, // -2
	{'\U0001FB49', '\U0001FB54'}, // -4/3
	{'◢', '◤'},                   // -1
	{'\U0001FB4A', '\U0001FB55'}, // -2/3
	{'\U0001FB48', '\U0001FB53'}, // -1/3
	{'\U0001FB3D', '\U0001FB5E'}, // 1/3
	{'\U0001FB3F', '\U0001FB60'}, // 2/3
	{'◣', '◥'},                   // 1
	{'\U0001FB3E', '\U0001FB5F'}, // 4/3
	{'\U0001FB40', '\U0001FB61'}, // 2
}

// SnapSlope finds the canonical slope whose visual angle is nearest to
// that of slope, returning its index. aspect is the cell height/width
// ratio used to convert row/col slopes to visual angles; tol is the
// largest acceptable angular difference in radians.
func SnapSlope(slope, aspect, tol float64) (int, bool) {
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, false
	}
	angle := math.Atan(slope * aspect)
	best, bestDiff := 0, math.Inf(1)
	for i, c := range CanonicalSlopes {
		if d := math.Abs(math.Atan(c*aspect) - angle); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	if bestDiff > tol {
		return 0, false
	}
	return best, true
}

// Diagonal returns the pre-drawn glyph for canonical slope index i with
// the given side filled.
func Diagonal(i int, side Side) rune {
	return diagonals[i][side]
}
