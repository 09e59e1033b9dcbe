package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/cursor"
	"github.com/san-kum/smear/internal/scenario"
	"github.com/san-kum/smear/internal/term"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Player replays a scenario against the real clock, printing composed
// frames straight to the terminal. It is the plain fallback for
// terminals where the full-screen app misbehaves.
type Player struct {
	frameRate int
	lastFrame time.Time

	// Base replaces the default configuration underneath the scenario's
	// own options. Nil means config.Default().
	Base *config.Config

	// Logger receives runtime diagnostics. Nil discards them.
	Logger *log.Logger
}

func NewPlayer(frameRate int) *Player {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Player{frameRate: frameRate}
}

// Play builds a screen and runtime for the scenario and walks its steps
// with wall-clock pacing. It returns when every step has run and the
// animation has settled.
func (p *Player) Play(scn *scenario.Scenario) error {
	if err := scn.Validate(); err != nil {
		return err
	}

	rows, cols := scn.Rows, scn.Cols
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}

	disp := term.NewScreen(rows, cols)
	for _, span := range scn.Text {
		disp.SetText(span.Row, span.Col, span.Text)
	}

	cfg := config.Default()
	if p.Base != nil {
		c := *p.Base
		cfg = &c
	}
	cfg.Seed = scn.Seed
	if scn.Options != nil {
		var err error
		cfg, err = config.Apply(cfg, scn.Options)
		if err != nil {
			return err
		}
	}

	logger := p.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sched := &demoSched{}
	rt, err := cursor.NewRuntime(cfg, disp, disp, sched, logger)
	if err != nil {
		return err
	}
	defer rt.Teardown()

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)

	mode, ctxName := "n", "main"
	for _, st := range scn.Steps {
		if st.Options != nil {
			if err := rt.ApplyOptions(st.Options); err != nil {
				return err
			}
		}
		if st.Mode != "" {
			mode = st.Mode
		}
		if st.Context != "" {
			ctxName = st.Context
		}
		if len(st.Move) == 2 {
			rt.OnCursorEvent(cursor.CursorEvent{Row: st.Move[0], Col: st.Move[1], Context: ctxName, Mode: mode})
			p.render(disp, scn.Name, mode)
		}

		hold := st.Hold
		if hold <= 0 {
			hold = 0.6
		}
		deadline := time.Now().Add(time.Duration(hold * float64(time.Second)))
		p.drain(rt, disp, sched, scn.Name, mode, deadline)
		if left := time.Until(deadline); left > 0 {
			time.Sleep(left)
		}
	}

	// Let the final move finish.
	p.drain(rt, disp, sched, scn.Name, mode, time.Now().Add(3*time.Second))
	p.render(disp, scn.Name, mode)
	fmt.Println()
	return nil
}

// drain fires pending ticks at their due times until the runtime stops
// scheduling or the deadline passes.
func (p *Player) drain(rt *cursor.Runtime, disp *term.Screen, sched *demoSched, name, mode string, deadline time.Time) {
	for sched.pending && time.Now().Before(deadline) {
		if wait := time.Until(sched.due); wait > 0 {
			time.Sleep(wait)
		}
		dt := time.Since(sched.at).Seconds()
		sched.pending = false
		rt.OnTick(sched.gen, dt)
		p.render(disp, name, mode)
	}
}

func (p *Player) render(disp *term.Screen, name, mode string) {
	if time.Since(p.lastFrame) < time.Second/time.Duration(p.frameRate) {
		return
	}
	p.lastFrame = time.Now()

	_, cols := disp.Viewport()

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  mode=%s  overlays=%d\n", name, mode, disp.OverlayCount()))
	b.WriteString("  " + strings.Repeat("-", cols) + "\n")

	for _, row := range disp.Compose() {
		b.WriteString("  ")
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", cols) + "\n")

	fmt.Print(b.String())
}
