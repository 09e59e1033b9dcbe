package overlay

import "github.com/san-kum/smear/internal/palette"

// WindowID identifies one window on a Surface.
type WindowID int

// Placement positions a one-cell overlay window on the screen grid.
// Z orders windows at the same cell, higher on top.
type Placement struct {
	Row int
	Col int
	Z   int
}

// Surface is the terminal layer the pool draws through.
type Surface interface {
	// Create opens a new visible window at p.
	Create(p Placement) (WindowID, error)

	// Move repositions an existing window and makes it visible.
	Move(id WindowID, p Placement) error

	// Hide makes a window invisible without closing it.
	Hide(id WindowID) error

	// Close destroys a window.
	Close(id WindowID) error

	// SetCell replaces the window's content.
	SetCell(id WindowID, glyph rune, hl palette.Ref) error
}
