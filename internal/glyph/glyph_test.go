package glyph

import (
	"math"
	"testing"
)

func TestQuadrantEncoding(t *testing.T) {
	if Quadrants[0] != ' ' {
		t.Errorf("expected blank for empty mask, got %q", Quadrants[0])
	}
	if Quadrants[15] != '█' {
		t.Errorf("expected full block for full mask, got %q", Quadrants[15])
	}
	if g := Quadrants[QuadrantBit(0, 0)]; g != '▘' {
		t.Errorf("expected upper-left quadrant, got %q", g)
	}
	if g := Quadrants[QuadrantBit(0, 1)]; g != '▝' {
		t.Errorf("expected upper-right quadrant, got %q", g)
	}
	if g := Quadrants[QuadrantBit(1, 0)]; g != '▖' {
		t.Errorf("expected lower-left quadrant, got %q", g)
	}
	if g := Quadrants[QuadrantBit(1, 1)]; g != '▗' {
		t.Errorf("expected lower-right quadrant, got %q", g)
	}
	if g := Quadrants[QuadrantBit(0, 0)|QuadrantBit(0, 1)]; g != '▀' {
		t.Errorf("expected upper half, got %q", g)
	}
}

func TestEighths(t *testing.T) {
	tests := []struct {
		frac     float64
		expected int
	}{
		{-0.5, 0},
		{0, 0},
		{0.0624, 0},
		{0.0626, 1},
		{0.5, 4},
		{1, 8},
		{1.5, 8},
	}
	for _, tt := range tests {
		if k := Eighths(tt.frac); k != tt.expected {
			t.Errorf("Eighths(%v): expected %d, got %d", tt.frac, tt.expected, k)
		}
	}
}

func TestBlockStripEnds(t *testing.T) {
	for _, strip := range [][9]rune{LowerBlocks, UpperBlocks, LeftBlocks, RightBlocks} {
		if strip[0] != ' ' {
			t.Errorf("expected blank at strip start, got %q", strip[0])
		}
		if strip[8] != '█' {
			t.Errorf("expected full block at strip end, got %q", strip[8])
		}
	}
	if LowerBlocks[4] != '▄' {
		t.Errorf("expected lower half at 4/8, got %q", LowerBlocks[4])
	}
	if LeftBlocks[4] != '▌' {
		t.Errorf("expected left half at 4/8, got %q", LeftBlocks[4])
	}
}

func TestBrailleComposition(t *testing.T) {
	if Braille(0) != '⠀' {
		t.Errorf("expected blank braille, got %q", Braille(0))
	}
	mask := BrailleDot(0, 0) | BrailleDot(3, 1)
	if mask != 0x01|0x80 {
		t.Errorf("unexpected mask %#x", mask)
	}
	if Braille(mask) != rune(0x2800+0x81) {
		t.Errorf("unexpected glyph %q", Braille(mask))
	}

	// All eight dot bits are distinct.
	seen := map[uint8]bool{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 2; c++ {
			b := BrailleDot(r, c)
			if seen[b] {
				t.Errorf("duplicate dot bit %#x", b)
			}
			seen[b] = true
		}
	}
}

func TestOctantAliases(t *testing.T) {
	if Octant(0x00) != ' ' {
		t.Errorf("expected blank, got %q", Octant(0x00))
	}
	if Octant(0xFF) != '█' {
		t.Errorf("expected full block, got %q", Octant(0xFF))
	}
	// Quadrant-shaped masks collapse onto the quadrant mosaics.
	if Octant(0x05) != '▘' {
		t.Errorf("expected upper-left quadrant, got %q", Octant(0x05))
	}
	if Octant(0x0F) != '▀' {
		t.Errorf("expected upper half, got %q", Octant(0x0F))
	}
	if Octant(0x55) != '▌' {
		t.Errorf("expected left half, got %q", Octant(0x55))
	}
	// Quarter rows reuse the pre-existing block elements.
	if Octant(0x03) != '\U0001FB82' {
		t.Errorf("expected top quarter row, got %q", Octant(0x03))
	}
	if Octant(0x3F) != '\U0001FB85' {
		t.Errorf("expected top three quarter rows, got %q", Octant(0x3F))
	}
	if Octant(0xC0) != '▂' {
		t.Errorf("expected bottom quarter row, got %q", Octant(0xC0))
	}
	if Octant(0xFC) != '▆' {
		t.Errorf("expected bottom three quarter rows, got %q", Octant(0xFC))
	}
	// Lone corners live outside the sequential octant range.
	corners := map[uint8]rune{
		OctantDot(0, 0): '\U0001CEA8',
		OctantDot(0, 1): '\U0001CEAB',
		OctantDot(3, 0): '\U0001CEA3',
		OctantDot(3, 1): '\U0001CEA0',
	}
	for mask, want := range corners {
		if g := Octant(mask); g != want {
			t.Errorf("corner mask %#x: expected %#x, got %#x", mask, want, g)
		}
	}
	// The first pattern with no older equivalent opens the sequential
	// range.
	if Octant(0x04) != '\U0001CD00' {
		t.Errorf("expected the sequential range to open at U+1CD00, got %#x", Octant(0x04))
	}
}

func TestOctantTableDense(t *testing.T) {
	// Every mask maps to some glyph and non-alias masks are distinct.
	seen := map[rune]uint8{}
	for m := 0; m < 256; m++ {
		g := Octant(uint8(m))
		if g == 0 {
			t.Fatalf("mask %#x has no glyph", m)
		}
		if prev, dup := seen[g]; dup {
			t.Errorf("masks %#x and %#x share glyph %q", prev, m, g)
		}
		seen[g] = uint8(m)
	}
}

func TestSnapSlope(t *testing.T) {
	aspect := 2.0
	tol := 0.1

	i, ok := SnapSlope(1.0, aspect, tol)
	if !ok || CanonicalSlopes[i] != 1.0 {
		t.Errorf("expected snap to 1.0, got index %d ok=%v", i, ok)
	}

	i, ok = SnapSlope(-0.35, aspect, tol)
	if !ok || CanonicalSlopes[i] != -1.0/3 {
		t.Errorf("expected snap to -1/3, got %v ok=%v", CanonicalSlopes[i], ok)
	}

	// Midway between canonical angles with a tight tolerance: no snap.
	if _, ok := SnapSlope(0.5, aspect, 0.01); ok {
		t.Error("expected no snap for off-canonical slope under tight tolerance")
	}

	if _, ok := SnapSlope(math.NaN(), aspect, tol); ok {
		t.Error("expected no snap for NaN slope")
	}
}

func TestDiagonalLookup(t *testing.T) {
	i, ok := SnapSlope(1.0, 2.0, 0.05)
	if !ok {
		t.Fatal("expected canonical snap")
	}
	if g := Diagonal(i, FillBelow); g != '◣' {
		t.Errorf("expected lower-left triangle, got %q", g)
	}
	if g := Diagonal(i, FillAbove); g != '◥' {
		t.Errorf("expected upper-right triangle, got %q", g)
	}
}
