package scenario

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/cursor"
	"github.com/san-kum/smear/internal/metrics"
	"github.com/san-kum/smear/internal/term"
	"github.com/san-kum/smear/internal/trace"
)

// Result is everything one replay produced.
type Result struct {
	Scenario *Scenario
	Frames   []trace.Frame
	Metrics  map[string]float64
	Final    []string // composed screen at the end of the run
}

// stepScheduler is the virtual timer. The runtime keeps at most one
// tick pending, so a single slot suffices.
type stepScheduler struct {
	pending bool
	delay   float64
	gen     uint64
}

func (s *stepScheduler) Schedule(delay float64, gen uint64) {
	s.pending, s.delay, s.gen = true, delay, gen
}

// frameTap captures the per-frame stats the runtime hands collectors so
// the runner can fold them into the trace.
type frameTap struct {
	stats []metrics.FrameStats
}

func (t *frameTap) Name() string                  { return "tap" }
func (t *frameTap) Observe(fs metrics.FrameStats) { t.stats = append(t.stats, fs) }
func (t *frameTap) Value() float64                { return float64(len(t.stats)) }
func (t *frameTap) Reset()                        { t.stats = nil }

func (t *frameTap) drain() []metrics.FrameStats {
	out := t.stats
	t.stats = nil
	return out
}

// maxTicks caps one replay; a scenario ticking this much has lost its
// way.
const maxTicks = 100000

// Run replays a scenario and returns its trace. For a fixed scenario
// the result is fully deterministic: the virtual clock advances by
// exactly the delays the reducer asks for, plus the modeled callback
// overhead.
func Run(scn *Scenario, logger *log.Logger) (*Result, error) {
	return RunWith(scn, nil, logger)
}

// RunWith replays the scenario starting from base instead of the
// default configuration; scenario options still apply on top. The
// scenario's seed wins either way so replays stay reproducible.
func RunWith(scn *Scenario, base *config.Config, logger *log.Logger) (*Result, error) {
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	rows, cols := scn.Rows, scn.Cols
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}
	seed := scn.Seed
	if seed == 0 {
		seed = 1
	}

	screen := term.NewScreen(rows, cols)
	for _, span := range scn.Text {
		screen.SetText(span.Row, span.Col, span.Text)
	}

	cfg := config.Default()
	if base != nil {
		c := *base
		cfg = &c
	}
	cfg.Seed = seed
	if scn.Options != nil {
		next, err := config.Apply(cfg, scn.Options)
		if err != nil {
			return nil, fmt.Errorf("scenario %s options: %w", scn.Name, err)
		}
		cfg = next
	}

	if logger == nil {
		logger = log.Default()
	}
	sched := &stepScheduler{}
	rt, err := cursor.NewRuntime(cfg, screen, screen, sched, logger)
	if err != nil {
		return nil, err
	}
	defer rt.Teardown()

	demand := metrics.NewDemand()
	reuse := metrics.NewReuse()
	settle := metrics.NewSettleTime()
	tap := &frameTap{}
	rt.Observe(demand, reuse, settle, tap)

	clock := 0.0
	ticks := 0
	frames := make([]trace.Frame, 0, 256)

	record := func(step int, action cursor.Action) {
		fr := trace.Frame{Time: clock, Step: step, Action: action.String()}
		for _, fs := range tap.drain() {
			if fs.Settled {
				continue
			}
			fr.Smear = fs.SmearOps
			fr.Particles = fs.ParticleOps
			fr.Demand = fs.Demand
			fr.Created = fs.Created
			fr.Budget = fs.Budget
		}
		q := rt.Corners()
		for i, p := range q {
			fr.Corners[2*i] = p.Row
			fr.Corners[2*i+1] = p.Col
		}
		frames = append(frames, fr)
	}

	drain := func(step int, deadline float64) error {
		for sched.pending {
			if deadline > 0 && clock >= deadline {
				return nil
			}
			if ticks++; ticks > maxTicks {
				return fmt.Errorf("scenario %s: runaway animation after %d ticks", scn.Name, maxTicks)
			}
			dt := sched.delay + cfg.CallbackOverhead()
			gen := sched.gen
			sched.pending = false
			clock += dt
			record(step, rt.OnTick(gen, dt))
		}
		return nil
	}

	mode, ctxName := "n", "main"
	for i, step := range scn.Steps {
		if step.Options != nil {
			if err := rt.ApplyOptions(step.Options); err != nil {
				return nil, fmt.Errorf("scenario %s step %d: %w", scn.Name, i+1, err)
			}
			cfg = rt.Config()
		}
		if step.Mode != "" {
			mode = step.Mode
		}
		if step.Context != "" {
			ctxName = step.Context
		}
		if len(step.Move) == 2 {
			action := rt.OnCursorEvent(cursor.CursorEvent{
				Row: step.Move[0], Col: step.Move[1], Context: ctxName, Mode: mode,
			})
			record(i, action)
		}
		deadline := 0.0
		if step.Hold > 0 {
			deadline = clock + step.Hold
		}
		if err := drain(i, deadline); err != nil {
			return nil, err
		}
		if deadline > clock {
			// Idle dwell; nothing ticks but time passes.
			clock = deadline
		}
	}
	// Let whatever is still in flight finish.
	if err := drain(len(scn.Steps)-1, 0); err != nil {
		return nil, err
	}

	return &Result{
		Scenario: scn,
		Frames:   frames,
		Final:    screen.Compose(),
		Metrics: map[string]float64{
			"frames":      float64(len(frames)),
			"demand_mean": demand.Value(),
			"demand_peak": float64(demand.Peak()),
			"reuse":       reuse.Value(),
			"settle_mean": settle.Value(),
			"settle_max":  settle.Max(),
			"settled":     float64(settle.Count()),
		},
	}, nil
}
