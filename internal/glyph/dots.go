package glyph

// Braille patterns: 2x4 dots per cell.
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800.
var brailleDots = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// BrailleDot returns the mask bit for the dot at (dotRow, dotCol),
// dotRow in [0,4), dotCol in [0,2).
func BrailleDot(dotRow, dotCol int) uint8 {
	return brailleDots[dotRow][dotCol]
}

// Braille composes a braille pattern from a dot mask.
func Braille(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// Octant grid: 2x4 solid sub-blocks per cell, mask bits row-major from the
// top left. Patterns with an older equivalent (quadrant combinations,
// quarter rows, lone corners) use that; everything else maps into the
// Unicode 16 octant range starting at U+1CD00.
//
// TODO: audit this alias set against the U+1CD00 chart's exclusion list;
// any unified pattern missing here shifts every later sequential
// assignment by one.
var octantAliases = map[uint8]rune{
	0x03: '\U0001FB82', // top quarter row
	0xC0: '▂',
	0x3F: '\U0001FB85', // top three quarter rows
	0xFC: '▆',
	0x01: '\U0001CEA8',
	0x02: '\U0001CEAB',
	0x40: '\U0001CEA3',
	0x80: '\U0001CEA0',
}

var octantTable = buildOctantTable()

func buildOctantTable() [256]rune {
	var t [256]rune

	// Quadrant combinations collapse pairs of octant rows.
	for q := 0; q < 16; q++ {
		var mask uint8
		if q&1 != 0 {
			mask |= 0x05 // UL
		}
		if q&2 != 0 {
			mask |= 0x0A // UR
		}
		if q&4 != 0 {
			mask |= 0x50 // LL
		}
		if q&8 != 0 {
			mask |= 0xA0 // LR
		}
		t[mask] = Quadrants[q]
	}
	for mask, r := range octantAliases {
		t[mask] = r
	}

	next := rune(0x1CD00)
	for m := range t {
		if t[m] == 0 {
			t[m] = next
			next++
		}
	}
	return t
}

// OctantDot returns the mask bit for the sub-block at (dotRow, dotCol),
// dotRow in [0,4), dotCol in [0,2).
func OctantDot(dotRow, dotCol int) uint8 {
	return 1 << (2*uint(dotRow) + uint(dotCol))
}

// Octant composes an octant pattern from a dot mask.
func Octant(mask uint8) rune {
	return octantTable[mask]
}
