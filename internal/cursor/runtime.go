package cursor

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/geom"
	"github.com/san-kum/smear/internal/metrics"
	"github.com/san-kum/smear/internal/motion"
	"github.com/san-kum/smear/internal/overlay"
	"github.com/san-kum/smear/internal/palette"
	"github.com/san-kum/smear/internal/plan"
)

// Host supplies the terminal facts the animation reads: the viewport
// size and the character under a cell, used to keep particles off text.
type Host interface {
	Viewport() (rows, cols int)
	CharAt(row, col int) rune
}

// Scheduler arranges a future call to [Runtime.OnTick] after delay
// seconds, tagged with a generation. Implementations may coalesce or
// drop callbacks; the generation tag makes stale deliveries harmless.
// Schedule must not call back into the runtime synchronously.
type Scheduler interface {
	Schedule(delay float64, generation uint64)
}

// Runtime owns one Machine behind a mutex and executes its decisions:
// planning frames, driving the overlay pool, scheduling ticks, logging.
// Every entry point recovers from panics by resetting to a
// default-configured machine, so the mutex is never poisoned and one
// bad frame cannot wedge the host.
type Runtime struct {
	mu sync.Mutex

	cfg     *config.Config
	pal     *palette.Palette
	machine *Machine
	pool    *overlay.Pool
	surf    overlay.Surface
	host    Host
	sched   Scheduler
	log     *log.Logger

	collectors []metrics.Collector

	lastSig uint64
	hasSig  bool
}

// NewRuntime wires the animation against a surface and host. A nil
// logger falls back to the package default.
func NewRuntime(cfg *config.Config, surf overlay.Surface, host Host, sched Scheduler, logger *log.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pal, err := palette.Build(cfg.Color)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runtime{
		cfg:     cfg,
		pal:     pal,
		machine: NewMachine(cfg, motion.NewEngine(cfg.Seed)),
		pool:    overlay.New(surf, cfg.Pool, logger),
		surf:    surf,
		host:    host,
		sched:   sched,
		log:     logger,
	}, nil
}

// Observe registers collectors fed one FrameStats per drawn or settled
// frame.
func (r *Runtime) Observe(cs ...metrics.Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors = append(r.collectors, cs...)
}

// OnCursorEvent feeds an observed cursor position into the machine and
// reports the action taken.
func (r *Runtime) OnCursorEvent(ev CursorEvent) Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverReset()

	action, cmd := r.machine.ReduceCursor(ev)
	r.execute(action, cmd)
	return action
}

// OnTick feeds a scheduled animation callback into the machine and
// reports the action taken.
func (r *Runtime) OnTick(generation uint64, elapsed float64) Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverReset()

	action, cmd := r.machine.ReduceTick(TickEvent{Generation: generation, Elapsed: elapsed})
	r.execute(action, cmd)
	return action
}

// DrawFrame repaints the current state unconditionally, for hosts whose
// screen was redrawn underneath the overlays.
func (r *Runtime) DrawFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverReset()

	r.hasSig = false
	r.draw()
}

// ApplyOptions validates and applies a configuration patch. On error
// the running configuration is untouched.
func (r *Runtime) ApplyOptions(p *config.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverReset()

	next, err := config.Apply(r.cfg, p)
	if err != nil {
		return err
	}
	pal, err := palette.Build(next.Color)
	if err != nil {
		return err
	}
	r.cfg, r.pal = next, pal
	r.machine.SetConfig(next)
	if !next.Enabled {
		r.machine.Halt()
		r.pool.HideAll()
		r.hasSig = false
	}
	return nil
}

// Config returns the live configuration snapshot.
func (r *Runtime) Config() *config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// Corners returns the animated quad as it currently stands.
func (r *Runtime) Corners() geom.Quad {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Corners()
}

// Teardown closes every overlay and invalidates scheduled ticks.
func (r *Runtime) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverReset()

	r.machine.Halt()
	r.pool.Purge()
	r.hasSig = false
}

func (r *Runtime) execute(action Action, cmd Command) {
	switch action {
	case ActionNoop:
	case ActionClear:
		r.pool.HideAll()
		r.hasSig = false
	case ActionDraw:
		r.draw()
	}
	if cmd.Notice != "" {
		r.log.Warn(cmd.Notice)
	}
	if cmd.Settled {
		r.observe(metrics.FrameStats{Settled: true, Elapsed: cmd.Elapsed})
	}
	if cmd.ScheduleTick {
		r.sched.Schedule(cmd.Delay, cmd.Generation)
	}
}

func (r *Runtime) draw() {
	if r.machine.Phase() == PhaseNew {
		return
	}
	rows, cols := r.host.Viewport()
	res := plan.Build(r.machine.Frame(rows, cols), r.cfg, r.pal, r.host.CharAt)
	r.machine.SetBulge(res.Bulge)

	// Frames with live particles never cache: the cloud decays even
	// when the quad holds still.
	if r.hasSig && res.Signature == r.lastSig && !res.Particles {
		return
	}
	r.lastSig, r.hasSig = res.Signature, true

	r.pool.BeginFrame()
	smear, parts := 0, 0
	for _, op := range res.Ops {
		pl := overlay.Placement{Row: op.Row, Col: op.Col, Z: r.cfg.Pool.ZIndex + op.Stacking}
		id, err := r.pool.Acquire(pl)
		if err != nil {
			r.log.Warn("overlay unavailable, dropping cell",
				"row", op.Row, "col", op.Col, "err", err)
			continue
		}
		if err := r.surf.SetCell(id, op.Glyph, op.HL); err != nil {
			r.log.Warn("overlay write failed, invalidating",
				"row", op.Row, "col", op.Col, "err", err)
			r.pool.Invalidate(id)
			continue
		}
		if op.Stacking == plan.StackSmear {
			smear++
		} else {
			parts++
		}
	}
	r.pool.ReleaseUnused()
	r.pool.Prune(r.cfg.Pool.MaxKeptOverlays)

	st := r.pool.Stats()
	r.observe(metrics.FrameStats{
		Demand:      st.Demand,
		Created:     st.Created,
		Budget:      st.Budget,
		SmearOps:    smear,
		ParticleOps: parts,
		Elapsed:     r.machine.Elapsed(),
	})
}

func (r *Runtime) observe(fs metrics.FrameStats) {
	for _, c := range r.collectors {
		c.Observe(fs)
	}
}

// recoverReset converts a panic anywhere in the frame path into a reset
// to defaults: machine rebuilt, overlays purged, incident logged. Runs
// before the mutex unlocks.
func (r *Runtime) recoverReset() {
	p := recover()
	if p == nil {
		return
	}
	r.log.Error("cursor runtime panicked, resetting to defaults", "panic", p)
	cfg := config.Default()
	if pal, err := palette.Build(cfg.Color); err == nil {
		r.pal = pal
	}
	r.cfg = cfg
	r.machine = NewMachine(cfg, motion.NewEngine(cfg.Seed))
	r.pool.Purge()
	r.hasSig = false
}
