package cursor

import (
	"math"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/geom"
	"github.com/san-kum/smear/internal/motion"
	"github.com/san-kum/smear/internal/plan"
)

// Phase is the animation lifecycle.
type Phase uint8

const (
	// PhaseNew means no cursor has been observed yet.
	PhaseNew Phase = iota
	// PhaseIdle means the smear rests exactly on the cursor.
	PhaseIdle
	// PhaseRunning means ticks are scheduled and physics is live.
	PhaseRunning
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	default:
		return "new"
	}
}

// Machine is the pure reducer at the heart of the animation. Feed it
// cursor events and ticks; interpret the returned Action and Command.
// It never touches a clock, a terminal or a lock.
type Machine struct {
	cfg *config.Config
	eng *motion.Engine

	phase      Phase
	motion     motion.State
	targetRow  int
	targetCol  int
	targetQuad geom.Quad
	shape      motion.Shape
	mode       motion.Mode
	context    string
	generation uint64
	lag        float64
	elapsed    float64
	bulge      bool
}

func NewMachine(cfg *config.Config, eng *motion.Engine) *Machine {
	return &Machine{cfg: cfg, eng: eng}
}

// SetConfig swaps the configuration snapshot used by later events.
func (m *Machine) SetConfig(cfg *config.Config) { m.cfg = cfg }

// Phase reports where the animation lifecycle stands.
func (m *Machine) Phase() Phase { return m.phase }

// Generation tags the current run. Ticks carrying any other value are
// stale deliveries from a run that has since ended.
func (m *Machine) Generation() uint64 { return m.generation }

// Target returns the cell the smear is heading for, or resting on.
func (m *Machine) Target() (row, col int) { return m.targetRow, m.targetCol }

// Corners returns the smear quad as it currently stands.
func (m *Machine) Corners() geom.Quad { return m.motion.Corners }

// Elapsed is how long the current run has been animating, in seconds.
func (m *Machine) Elapsed() float64 { return m.elapsed }

// SetBulge feeds the planner's alternation flag back in for the next
// frame. Toggling happens in the planner, once per planned frame.
func (m *Machine) SetBulge(b bool) { m.bulge = b }

// Frame assembles the planner input for the current state.
func (m *Machine) Frame(rows, cols int) plan.Frame {
	return plan.Frame{
		Corners:   m.motion.Corners,
		TargetRow: m.targetRow,
		TargetCol: m.targetCol,
		Particles: m.motion.Particles,
		Rows:      rows,
		Cols:      cols,
		Bulge:     m.bulge,
	}
}

// ReduceCursor folds an observed cursor position into the machine.
func (m *Machine) ReduceCursor(ev CursorEvent) (Action, Command) {
	if !m.cfg.Enabled {
		m.Halt()
		return ActionClear, Command{}
	}

	shape := motion.ShapeFor(ev.Mode, m.cfg.Modes)
	mode := motion.ModeFor(ev.Mode)

	if m.phase == PhaseNew {
		m.place(ev, shape, mode)
		motion.Init(&m.motion, m.targetQuad)
		m.phase = PhaseIdle
		// One draw so the overlay agrees with the real cursor; no
		// ticks until something moves.
		return ActionDraw, Command{}
	}

	if ev.Context != m.context && !m.cfg.Modes.SmearBetweenBuffer {
		m.jump(ev, shape, mode)
		return ActionClear, Command{}
	}

	sameTarget := ev.Row == m.targetRow && ev.Col == m.targetCol && shape == m.shape

	if !motion.SmearAllowed(ev.Mode, m.cfg.Modes) {
		if sameTarget {
			// A run heading here already is left alone.
			m.adopt(ev, mode)
			return ActionNoop, Command{}
		}
		m.jump(ev, shape, mode)
		return ActionClear, Command{}
	}

	if sameTarget {
		m.adopt(ev, mode)
		return ActionNoop, Command{}
	}

	if shouldJump(ev.Row-m.targetRow, ev.Col-m.targetCol, m.cfg.Modes) {
		m.jump(ev, shape, mode)
		return ActionClear, Command{}
	}

	m.place(ev, shape, mode)
	if m.phase == PhaseRunning {
		// Retarget mid-flight. Only ticks step physics; the one
		// already scheduled will pull the corners the new way.
		return ActionNoop, Command{}
	}

	// Idle to running: step once at the base interval so the smear
	// shows up this frame, then hand pacing to the tick loop.
	m.phase = PhaseRunning
	m.generation++
	m.lag = 0
	m.elapsed = 0
	res := m.eng.Step(&m.motion, m.cfg, m.targetQuad, m.cfg.BaseInterval(), m.mode)
	if res.DelayDisabled {
		return m.giveUp()
	}
	delay, _ := m.pace(m.cfg.BaseInterval())
	return ActionDraw, Command{ScheduleTick: true, Delay: delay, Generation: m.generation}
}

// ReduceTick folds a scheduled animation callback into the machine.
func (m *Machine) ReduceTick(ev TickEvent) (Action, Command) {
	if ev.Generation != m.generation || m.phase != PhaseRunning {
		// Stale or idle ticks change nothing, ever.
		return ActionNoop, Command{}
	}
	if !m.cfg.Enabled {
		m.Halt()
		return ActionClear, Command{}
	}

	base := m.cfg.BaseInterval()
	dt := ev.Elapsed
	if dt <= 0 {
		dt = base
	}
	m.elapsed += dt

	res := m.eng.Step(&m.motion, m.cfg, m.targetQuad, dt, m.mode)
	if res.DelayDisabled {
		return m.giveUp()
	}
	if motion.Reached(&m.motion, m.cfg, m.targetQuad, m.shape) {
		elapsed := m.elapsed
		m.settle()
		return ActionClear, Command{Settled: true, Elapsed: elapsed}
	}

	delay, behind := m.pace(dt)
	cmd := Command{ScheduleTick: true, Delay: delay, Generation: m.generation}
	if behind {
		// Physics has advanced; skip the paint and let the next,
		// sooner tick catch the screen up.
		return ActionNoop, cmd
	}
	return ActionDraw, cmd
}

// Halt stops any run and invalidates scheduled ticks. The tracked
// position survives so the next event still diffs against it.
func (m *Machine) Halt() {
	if m.phase == PhaseRunning {
		m.phase = PhaseIdle
	}
	m.generation++
	m.lag = 0
	m.motion.Particles = nil
}

// place records a new destination without touching the physics.
func (m *Machine) place(ev CursorEvent, shape motion.Shape, mode motion.Mode) {
	m.targetRow, m.targetCol = ev.Row, ev.Col
	m.targetQuad = motion.TargetQuad(ev.Row, ev.Col, shape)
	m.shape, m.mode, m.context = shape, mode, ev.Context
}

// adopt updates the bookkeeping a same-target event can change.
func (m *Machine) adopt(ev CursorEvent, mode motion.Mode) {
	m.mode, m.context = mode, ev.Context
}

// jump snaps everything to the new cell with no animation.
func (m *Machine) jump(ev CursorEvent, shape motion.Shape, mode motion.Mode) {
	m.place(ev, shape, mode)
	motion.Snap(&m.motion, m.targetQuad)
	m.motion.Particles = nil
	m.phase = PhaseIdle
	m.generation++
	m.lag = 0
}

// settle ends a run exactly on target.
func (m *Machine) settle() {
	motion.Snap(&m.motion, m.targetQuad)
	m.motion.Particles = nil
	m.phase = PhaseIdle
	m.generation++
	m.lag = 0
}

// giveUp abandons a run because ticks arrive too slowly to animate.
func (m *Machine) giveUp() (Action, Command) {
	elapsed := m.elapsed
	m.settle()
	return ActionClear, Command{
		Notice:  "animation ticks arriving too slowly, jumping to cursor",
		Settled: true,
		Elapsed: elapsed,
	}
}

// pace runs the lag-compensated scheduler. Time spent over the base
// interval accumulates as lag; each schedule pays down as much as the
// next delay can absorb. A true second return means debt remains even
// at zero delay, so the frame is not worth painting.
func (m *Machine) pace(dt float64) (delay float64, behind bool) {
	base := m.cfg.BaseInterval()
	m.lag += dt - base
	if m.lag < 0 {
		m.lag = 0
	}
	avail := base - m.cfg.CallbackOverhead()
	if avail < 0 {
		avail = 0
	}
	consumed := m.lag
	if consumed > avail {
		consumed = avail
	}
	m.lag -= consumed
	return avail - consumed, m.lag > 0
}

// shouldJump classifies a move: true snaps instantly, false animates.
// Any single satisfied condition forces the snap.
func shouldJump(dRow, dCol int, mc config.ModeConfig) bool {
	if dRow == 0 && dCol == 0 {
		// Shape morph in place; movement gates do not apply.
		return false
	}
	adRow, adCol := dRow, dCol
	if adRow < 0 {
		adRow = -adRow
	}
	if adCol < 0 {
		adCol = -adCol
	}
	horizontal := adRow == 0
	vertical := adCol == 0
	switch {
	case horizontal && !mc.SmearHorizontal:
		return true
	case vertical && !mc.SmearVertical:
		return true
	case !horizontal && !vertical && !mc.SmearDiagonal:
		return true
	}
	if !mc.SmearNeighborLines && adRow == 1 {
		return true
	}
	if horizontal && float64(adCol) < mc.MinHorizontal {
		return true
	}
	if vertical && float64(adRow) < mc.MinVertical {
		return true
	}
	return math.Hypot(float64(adRow), float64(adCol)) < mc.MinDistance
}
