// Package term models a terminal in memory: a background text grid
// plus floating single-cell windows with z-ordering. It implements the
// overlay surface and the viewport/probe pair the animation reads, and
// is the canvas the scenario runner and the interactive demo render
// against.
package term

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/smear/internal/overlay"
	"github.com/san-kum/smear/internal/palette"
)

var (
	// ErrInjected is the cause of every test-induced failure.
	ErrInjected = errors.New("injected failure")
	// ErrUnknownWindow reports an operation on a closed or never
	// created window.
	ErrUnknownWindow = errors.New("unknown window")
)

type window struct {
	pl      overlay.Placement
	visible bool
	glyph   rune
	hl      palette.Ref
}

// Screen is an in-memory terminal. Not safe for concurrent use; the
// animation drives it from a single callback context.
type Screen struct {
	rows, cols int
	background [][]rune
	windows    map[overlay.WindowID]*window
	order      []overlay.WindowID
	nextID     overlay.WindowID

	// Failure injection: each counter fails that many upcoming calls
	// with ErrInjected.
	FailCreates int
	FailMoves   int
	FailHides   int
	FailSets    int

	creates int
	moves   int
}

func NewScreen(rows, cols int) *Screen {
	bg := make([][]rune, rows)
	for r := range bg {
		bg[r] = make([]rune, cols)
		for c := range bg[r] {
			bg[r][c] = ' '
		}
	}
	return &Screen{
		rows:       rows,
		cols:       cols,
		background: bg,
		windows:    make(map[overlay.WindowID]*window),
	}
}

// Viewport returns the grid size.
func (s *Screen) Viewport() (rows, cols int) { return s.rows, s.cols }

// CharAt returns the background character under a cell. Overlays are
// never probed; out-of-range cells read as blank.
func (s *Screen) CharAt(row, col int) rune {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return ' '
	}
	return s.background[row][col]
}

// SetText writes background text starting at (row, col), clipped to
// the grid.
func (s *Screen) SetText(row, col int, text string) {
	if row < 0 || row >= s.rows {
		return
	}
	for i, r := range []rune(text) {
		c := col + i
		if c < 0 || c >= s.cols {
			continue
		}
		s.background[row][c] = r
	}
}

// Create opens a new visible window at the placement.
func (s *Screen) Create(pl overlay.Placement) (overlay.WindowID, error) {
	if s.FailCreates > 0 {
		s.FailCreates--
		return 0, fmt.Errorf("create window: %w", ErrInjected)
	}
	s.nextID++
	id := s.nextID
	s.windows[id] = &window{pl: pl, visible: true}
	s.order = append(s.order, id)
	s.creates++
	return id, nil
}

// Move repositions a window and makes it visible.
func (s *Screen) Move(id overlay.WindowID, pl overlay.Placement) error {
	w, ok := s.windows[id]
	if !ok {
		return fmt.Errorf("move window %d: %w", id, ErrUnknownWindow)
	}
	if s.FailMoves > 0 {
		s.FailMoves--
		return fmt.Errorf("move window %d: %w", id, ErrInjected)
	}
	w.pl = pl
	w.visible = true
	s.moves++
	return nil
}

func (s *Screen) Hide(id overlay.WindowID) error {
	w, ok := s.windows[id]
	if !ok {
		return fmt.Errorf("hide window %d: %w", id, ErrUnknownWindow)
	}
	if s.FailHides > 0 {
		s.FailHides--
		return fmt.Errorf("hide window %d: %w", id, ErrInjected)
	}
	w.visible = false
	return nil
}

func (s *Screen) Close(id overlay.WindowID) error {
	if _, ok := s.windows[id]; !ok {
		return fmt.Errorf("close window %d: %w", id, ErrUnknownWindow)
	}
	delete(s.windows, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Screen) SetCell(id overlay.WindowID, glyph rune, hl palette.Ref) error {
	w, ok := s.windows[id]
	if !ok {
		return fmt.Errorf("set window %d: %w", id, ErrUnknownWindow)
	}
	if s.FailSets > 0 {
		s.FailSets--
		return fmt.Errorf("set window %d: %w", id, ErrInjected)
	}
	w.glyph = glyph
	w.hl = hl
	return nil
}

// OverlayCount returns how many windows are visible right now.
func (s *Screen) OverlayCount() int {
	n := 0
	for _, w := range s.windows {
		if w.visible {
			n++
		}
	}
	return n
}

// OpenCount returns how many windows exist, visible or not.
func (s *Screen) OpenCount() int { return len(s.windows) }

// Creates reports cumulative window creations.
func (s *Screen) Creates() int { return s.creates }

// Moves reports cumulative window moves.
func (s *Screen) Moves() int { return s.moves }

// GlyphAt returns what a cell shows: the topmost visible overlay glyph,
// or the background character when nothing covers it. Ties on Z go to
// the most recently created window.
func (s *Screen) GlyphAt(row, col int) rune {
	g := s.CharAt(row, col)
	bestZ := 0
	found := false
	for _, id := range s.order {
		w := s.windows[id]
		if !w.visible || w.pl.Row != row || w.pl.Col != col {
			continue
		}
		if !found || w.pl.Z >= bestZ {
			g, bestZ, found = w.glyph, w.pl.Z, true
		}
	}
	return g
}

// HLAt returns the highlight of the topmost visible overlay at a cell
// and whether one covers it.
func (s *Screen) HLAt(row, col int) (palette.Ref, bool) {
	var hl palette.Ref
	bestZ := 0
	found := false
	for _, id := range s.order {
		w := s.windows[id]
		if !w.visible || w.pl.Row != row || w.pl.Col != col {
			continue
		}
		if !found || w.pl.Z >= bestZ {
			hl, bestZ, found = w.hl, w.pl.Z, true
		}
	}
	return hl, found
}

// Compose renders the grid with overlays over the background, one
// string per row.
func (s *Screen) Compose() []string {
	out := make([]string, s.rows)
	for r := 0; r < s.rows; r++ {
		var b strings.Builder
		for c := 0; c < s.cols; c++ {
			g := s.GlyphAt(r, c)
			if g == 0 {
				g = ' '
			}
			b.WriteRune(g)
		}
		out[r] = b.String()
	}
	return out
}
