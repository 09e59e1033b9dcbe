// Package palette precomputes the shade-level highlight colors used by
// the render planner: N levels blending the cursor color toward the
// background, each in a normal and an inverted variant.
package palette

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/smear/internal/config"
)

// FallbackCursor is used when no cursor color can be resolved.
const FallbackCursor = "#c8c8c8"

// Ref identifies one precomputed shade highlight. Level counts from 1;
// level 0 means "emit nothing" and is never a valid Ref.
type Ref struct {
	Level    int
	Inverted bool
}

// Entry is the concrete color pair for one shade level. An empty Bg
// keeps the cell background untouched.
type Entry struct {
	Fg string
	Bg string
}

type Palette struct {
	levels   int
	normal   []Entry
	inverted []Entry
}

// Build precomputes the shade table. Empty cursor or background strings
// fall back to [FallbackCursor] and the configured transparent-background
// fallback respectively.
func Build(co config.ColorConfig) (*Palette, error) {
	cursorHex := co.CursorColor
	if cursorHex == "" {
		cursorHex = FallbackCursor
	}
	bgHex := co.BackgroundHex
	if bgHex == "" {
		bgHex = co.TransparentBg
	}

	cursor, err := colorful.Hex(cursorHex)
	if err != nil {
		return nil, fmt.Errorf("palette: cursor color %q: %w", cursorHex, err)
	}
	bg, err := colorful.Hex(bgHex)
	if err != nil {
		return nil, fmt.Errorf("palette: background color %q: %w", bgHex, err)
	}

	p := &Palette{
		levels:   co.Levels,
		normal:   make([]Entry, co.Levels),
		inverted: make([]Entry, co.Levels),
	}
	for i := 0; i < co.Levels; i++ {
		t := float64(i+1) / float64(co.Levels)
		blended := blend(bg, cursor, t, co.Gamma).Hex()
		p.normal[i] = Entry{Fg: blended}
		p.inverted[i] = Entry{Fg: bg.Hex(), Bg: blended}
	}
	return p, nil
}

// blend interpolates channel-wise in gamma-decoded space, the usual trick
// for keeping mid-blend shades from looking muddy.
func blend(a, b colorful.Color, t, gamma float64) colorful.Color {
	if gamma == 1 {
		return a.BlendRgb(b, t).Clamped()
	}
	inv := 1 / gamma
	return colorful.Color{
		R: math.Pow(math.Pow(a.R, gamma)*(1-t)+math.Pow(b.R, gamma)*t, inv),
		G: math.Pow(math.Pow(a.G, gamma)*(1-t)+math.Pow(b.G, gamma)*t, inv),
		B: math.Pow(math.Pow(a.B, gamma)*(1-t)+math.Pow(b.B, gamma)*t, inv),
	}.Clamped()
}

func (p *Palette) Levels() int { return p.levels }

// Lookup resolves a Ref to its colors. The bool is false for out-of-range
// levels.
func (p *Palette) Lookup(ref Ref) (Entry, bool) {
	if ref.Level < 1 || ref.Level > p.levels {
		return Entry{}, false
	}
	if ref.Inverted {
		return p.inverted[ref.Level-1], true
	}
	return p.normal[ref.Level-1], true
}
