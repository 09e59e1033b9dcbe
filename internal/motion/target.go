package motion

import (
	"strings"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/geom"
)

// Shape is the cursor silhouette the smear settles into.
type Shape uint8

const (
	ShapeBlock Shape = iota
	ShapeVerticalBar
	ShapeHorizontalBar
)

func (s Shape) String() string {
	switch s {
	case ShapeVerticalBar:
		return "vertical-bar"
	case ShapeHorizontalBar:
		return "horizontal-bar"
	default:
		return "block"
	}
}

// BarWidth is the fraction of a cell occupied by bar-shaped cursors.
const BarWidth = 0.125

// Mode selects the spring parameter set.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeInsert
)

// TargetQuad returns the destination corners for a cursor at (row, col)
// with the given shape, in clockwise order.
func TargetQuad(row, col int, shape Shape) geom.Quad {
	r, c := float64(row), float64(col)
	switch shape {
	case ShapeVerticalBar:
		return geom.Quad{
			{Row: r, Col: c},
			{Row: r, Col: c + BarWidth},
			{Row: r + 1, Col: c + BarWidth},
			{Row: r + 1, Col: c},
		}
	case ShapeHorizontalBar:
		return geom.Quad{
			{Row: r + 1 - BarWidth, Col: c},
			{Row: r + 1 - BarWidth, Col: c + 1},
			{Row: r + 1, Col: c + 1},
			{Row: r + 1, Col: c},
		}
	default:
		return geom.CellQuad(row, col)
	}
}

// ShapeFor maps an editor mode string to a cursor shape per the mode
// configuration. Mode strings follow the usual editor convention: "i" for
// insert, "R" for replace, "c" for command-line, "t" for terminal.
func ShapeFor(mode string, mc config.ModeConfig) Shape {
	switch {
	case strings.HasPrefix(mode, "i") && mc.BarInsert:
		return ShapeVerticalBar
	case strings.HasPrefix(mode, "c") && mc.BarCmdline:
		return ShapeVerticalBar
	case strings.HasPrefix(mode, "R") && mc.BarReplace:
		return ShapeHorizontalBar
	default:
		return ShapeBlock
	}
}

// ModeFor maps an editor mode string to the spring parameter set.
func ModeFor(mode string) Mode {
	if strings.HasPrefix(mode, "i") || strings.HasPrefix(mode, "R") {
		return ModeInsert
	}
	return ModeNormal
}

// SmearAllowed reports whether the given editor mode animates at all.
// Modes switched off in the configuration jump instantly instead.
func SmearAllowed(mode string, mc config.ModeConfig) bool {
	switch {
	case strings.HasPrefix(mode, "i"):
		return mc.SmearInsert
	case strings.HasPrefix(mode, "R"):
		return mc.SmearReplace
	case strings.HasPrefix(mode, "c"):
		return mc.SmearCmdline
	case strings.HasPrefix(mode, "t"):
		return mc.SmearTerminal
	}
	return true
}
