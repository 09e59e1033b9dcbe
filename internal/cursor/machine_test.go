package cursor

import (
	"math"
	"testing"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/motion"
)

func testMachine(t *testing.T, mut func(*config.Config)) *Machine {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 1
	if mut != nil {
		mut(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	return NewMachine(cfg, motion.NewEngine(cfg.Seed))
}

func event(row, col int) CursorEvent {
	return CursorEvent{Row: row, Col: col, Context: "w1", Mode: "n"}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestFirstEventDrawsWithoutScheduling(t *testing.T) {
	m := testMachine(t, nil)
	action, cmd := m.ReduceCursor(event(5, 10))
	if action != ActionDraw {
		t.Fatalf("expected draw, got %v", action)
	}
	if cmd.ScheduleTick {
		t.Error("first event must not schedule a tick")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %v", m.Phase())
	}
	if row, col := m.Target(); row != 5 || col != 10 {
		t.Errorf("expected target (5,10), got (%d,%d)", row, col)
	}
	want := motion.TargetQuad(5, 10, motion.ShapeBlock)
	if got := m.Frame(24, 80).Corners; got != want {
		t.Errorf("expected corners at rest on the cell, got %v", got)
	}
}

func TestIdleTickIsIdempotent(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	before := m.Frame(24, 80)
	for i := 0; i < 3; i++ {
		action, cmd := m.ReduceTick(TickEvent{Generation: m.Generation(), Elapsed: 0.017})
		if action != ActionNoop {
			t.Fatalf("idle tick %d: expected noop, got %v", i, action)
		}
		if cmd.ScheduleTick {
			t.Fatalf("idle tick %d: rescheduled", i)
		}
	}
	after := m.Frame(24, 80)
	if after.Corners != before.Corners || after.TargetRow != before.TargetRow || after.TargetCol != before.TargetCol {
		t.Error("idle ticks mutated the tracked state")
	}
}

func TestMoveStartsRunAndSchedules(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	action, cmd := m.ReduceCursor(event(5, 30))
	if action != ActionDraw {
		t.Fatalf("expected draw, got %v", action)
	}
	if !cmd.ScheduleTick {
		t.Fatal("expected a scheduled tick")
	}
	if cmd.Generation != m.Generation() {
		t.Errorf("tick tagged %d, machine at %d", cmd.Generation, m.Generation())
	}
	if !near(cmd.Delay, 0.015) {
		t.Errorf("expected delay 15ms, got %v", cmd.Delay)
	}
	if m.Phase() != PhaseRunning {
		t.Errorf("expected running, got %v", m.Phase())
	}
	if m.Frame(24, 80).Corners == motion.TargetQuad(5, 10, motion.ShapeBlock) {
		t.Error("corners did not move on the transition step")
	}
}

func TestRetargetMidRunDoesNotStep(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 30))
	gen := m.Generation()
	before := m.Frame(24, 80).Corners

	action, cmd := m.ReduceCursor(event(5, 40))
	if action != ActionNoop {
		t.Fatalf("expected noop, got %v", action)
	}
	if cmd.ScheduleTick {
		t.Error("retarget must not schedule; a tick is already pending")
	}
	if m.Generation() != gen {
		t.Error("retarget must stay in the same run")
	}
	if m.Frame(24, 80).Corners != before {
		t.Error("retarget stepped physics")
	}
	if row, col := m.Target(); row != 5 || col != 40 {
		t.Errorf("expected target (5,40), got (%d,%d)", row, col)
	}
}

func TestSameTargetEventRidesThrough(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 30))
	action, _ := m.ReduceCursor(event(5, 30))
	if action != ActionNoop {
		t.Fatalf("expected noop, got %v", action)
	}
	if m.Phase() != PhaseRunning {
		t.Errorf("expected the run to survive, got %v", m.Phase())
	}
}

func TestTickStepsAndReschedules(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 30))
	before := m.Frame(24, 80).Corners

	action, cmd := m.ReduceTick(TickEvent{Generation: m.Generation(), Elapsed: 0.017})
	if action != ActionDraw {
		t.Fatalf("expected draw, got %v", action)
	}
	if !cmd.ScheduleTick || !near(cmd.Delay, 0.015) {
		t.Errorf("expected a reschedule at 15ms, got %+v", cmd)
	}
	if m.Frame(24, 80).Corners == before {
		t.Error("tick did not step physics")
	}
}

func TestStaleGenerationTickIsIgnored(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 30))
	before := m.Frame(24, 80).Corners

	action, cmd := m.ReduceTick(TickEvent{Generation: m.Generation() - 1, Elapsed: 0.017})
	if action != ActionNoop || cmd.ScheduleTick {
		t.Fatalf("stale tick must be a no-op, got %v %+v", action, cmd)
	}
	if m.Frame(24, 80).Corners != before {
		t.Error("stale tick stepped physics")
	}
}

func TestSlowTickConsumesLag(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 30))

	action, cmd := m.ReduceTick(TickEvent{Generation: m.Generation(), Elapsed: 0.022})
	if action != ActionDraw {
		t.Fatalf("expected draw, got %v", action)
	}
	if !near(cmd.Delay, 0.010) {
		t.Errorf("expected the 5ms overshoot deducted, got delay %v", cmd.Delay)
	}
}

func TestFallingBehindSkipsTheDraw(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 12))

	action, cmd := m.ReduceTick(TickEvent{Generation: m.Generation(), Elapsed: 0.051})
	if action != ActionNoop {
		t.Fatalf("expected the draw skipped, got %v", action)
	}
	if !cmd.ScheduleTick || !near(cmd.Delay, 0) {
		t.Errorf("expected an immediate reschedule, got %+v", cmd)
	}

	action, cmd = m.ReduceTick(TickEvent{Generation: m.Generation(), Elapsed: 0.001})
	if action != ActionDraw {
		t.Fatalf("expected drawing to resume, got %v", action)
	}
	if !near(cmd.Delay, 0.012) {
		t.Errorf("expected the remaining debt deducted, got delay %v", cmd.Delay)
	}
}

func TestRunSettlesExactlyOnTarget(t *testing.T) {
	m := testMachine(t, func(c *config.Config) { c.Particles.Enabled = false })
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 12))

	var cmd Command
	settled := false
	for i := 0; i < 500; i++ {
		var action Action
		action, cmd = m.ReduceTick(TickEvent{Generation: m.Generation(), Elapsed: 0.017})
		if action == ActionClear {
			settled = true
			break
		}
		if !cmd.ScheduleTick {
			t.Fatalf("tick %d: run stopped without settling", i)
		}
	}
	if !settled {
		t.Fatal("animation never settled")
	}
	if !cmd.Settled || cmd.Elapsed <= 0 {
		t.Errorf("expected a settle command with elapsed time, got %+v", cmd)
	}
	if cmd.ScheduleTick {
		t.Error("settling must stop the tick loop")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %v", m.Phase())
	}
	if m.Frame(24, 80).Corners != motion.TargetQuad(5, 12, motion.ShapeBlock) {
		t.Error("settle did not land exactly on the target")
	}

	if action, _ := m.ReduceTick(TickEvent{Generation: m.Generation() - 1, Elapsed: 0.017}); action != ActionNoop {
		t.Errorf("a tick from the finished run must be stale, got %v", action)
	}
}

func TestSlowTerminalGivesUpWithNotice(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 40))

	action, cmd := m.ReduceTick(TickEvent{Generation: m.Generation(), Elapsed: 0.1})
	if action != ActionClear {
		t.Fatalf("expected the animation abandoned, got %v", action)
	}
	if cmd.Notice == "" {
		t.Error("expected a user-visible notice")
	}
	if cmd.ScheduleTick {
		t.Error("giving up must stop the tick loop")
	}
	if m.Frame(24, 80).Corners != motion.TargetQuad(5, 40, motion.ShapeBlock) {
		t.Error("expected a snap to the target")
	}
}

func TestDistanceGateForcesJumps(t *testing.T) {
	m := testMachine(t, func(c *config.Config) { c.Modes.MinDistance = 5 })
	m.ReduceCursor(event(5, 10))

	action, cmd := m.ReduceCursor(event(6, 11))
	if action != ActionClear || cmd.ScheduleTick {
		t.Fatalf("short move: expected a bare clear, got %v %+v", action, cmd)
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected idle after the jump, got %v", m.Phase())
	}
	if m.Frame(24, 80).Corners != motion.TargetQuad(6, 11, motion.ShapeBlock) {
		t.Error("jump did not snap the corners")
	}

	action, cmd = m.ReduceCursor(event(6, 31))
	if action != ActionDraw || !cmd.ScheduleTick {
		t.Fatalf("long move: expected an animated start, got %v %+v", action, cmd)
	}
}

func TestAxisToggleForcesJumps(t *testing.T) {
	m := testMachine(t, func(c *config.Config) { c.Modes.SmearHorizontal = false })
	m.ReduceCursor(event(5, 10))
	if action, _ := m.ReduceCursor(event(5, 40)); action != ActionClear {
		t.Fatalf("horizontal move with smearing off: expected clear, got %v", action)
	}
	if action, _ := m.ReduceCursor(event(9, 20)); action != ActionDraw {
		t.Fatalf("diagonal move stays animated, got %v", action)
	}
}

func TestNeighborLineGate(t *testing.T) {
	m := testMachine(t, func(c *config.Config) { c.Modes.SmearNeighborLines = false })
	m.ReduceCursor(event(5, 10))
	if action, _ := m.ReduceCursor(event(6, 20)); action != ActionClear {
		t.Fatalf("move to the next line: expected jump, got %v", action)
	}
	if action, _ := m.ReduceCursor(event(9, 30)); action != ActionDraw {
		t.Fatalf("move three lines down stays animated, got %v", action)
	}
}

func TestWindowChangeJumpsWhenNotSmeared(t *testing.T) {
	ev := CursorEvent{Row: 20, Col: 40, Context: "w2", Mode: "n"}

	m := testMachine(t, func(c *config.Config) { c.Modes.SmearBetweenBuffer = false })
	m.ReduceCursor(event(5, 10))
	if action, _ := m.ReduceCursor(ev); action != ActionClear {
		t.Fatalf("window change: expected jump, got %v", action)
	}

	m = testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	if action, _ := m.ReduceCursor(ev); action != ActionDraw {
		t.Fatalf("window change with smearing on: expected animation, got %v", action)
	}
}

func TestExcludedModeJumpsImmediately(t *testing.T) {
	// Terminal-mode smearing is off by default.
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	ev := CursorEvent{Row: 9, Col: 30, Context: "w1", Mode: "t"}
	action, cmd := m.ReduceCursor(ev)
	if action != ActionClear || cmd.ScheduleTick {
		t.Fatalf("expected a bare jump, got %v %+v", action, cmd)
	}
	if action, _ := m.ReduceCursor(ev); action != ActionNoop {
		t.Fatalf("expected noop on the repeated position, got %v", action)
	}
}

func TestExcludedModeDoesNotKillARunInFlight(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 30))
	action, _ := m.ReduceCursor(CursorEvent{Row: 5, Col: 30, Context: "w1", Mode: "t"})
	if action != ActionNoop {
		t.Fatalf("expected the run to ride through, got %v", action)
	}
	if m.Phase() != PhaseRunning {
		t.Errorf("expected running, got %v", m.Phase())
	}
}

func TestShapeMorphAnimatesInPlace(t *testing.T) {
	m := testMachine(t, nil)
	m.ReduceCursor(event(5, 10))
	action, cmd := m.ReduceCursor(CursorEvent{Row: 5, Col: 10, Context: "w1", Mode: "i"})
	if action != ActionDraw || !cmd.ScheduleTick {
		t.Fatalf("expected the block-to-bar morph to animate, got %v %+v", action, cmd)
	}
}

func TestDisableClearsAndHalts(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 1
	m := NewMachine(cfg, motion.NewEngine(cfg.Seed))
	m.ReduceCursor(event(5, 10))
	m.ReduceCursor(event(5, 30))
	gen := m.Generation()

	cfg.Enabled = false
	action, cmd := m.ReduceTick(TickEvent{Generation: gen, Elapsed: 0.017})
	if action != ActionClear || cmd.ScheduleTick {
		t.Fatalf("expected a halting clear, got %v %+v", action, cmd)
	}
	if action, _ := m.ReduceTick(TickEvent{Generation: gen, Elapsed: 0.017}); action != ActionNoop {
		t.Errorf("expected the stopped run to stay stopped, got %v", action)
	}
	if action, _ := m.ReduceCursor(event(9, 9)); action != ActionClear {
		t.Errorf("expected events to keep clearing while disabled, got %v", action)
	}
}

func TestShouldJump(t *testing.T) {
	base := config.Default().Modes
	horizOff := base
	horizOff.SmearHorizontal = false
	vertOff := base
	vertOff.SmearVertical = false
	diagOff := base
	diagOff.SmearDiagonal = false
	neighborOff := base
	neighborOff.SmearNeighborLines = false
	minH := base
	minH.MinHorizontal = 10

	cases := []struct {
		name       string
		dRow, dCol int
		mc         config.ModeConfig
		want       bool
	}{
		{"defaults never jump", 3, -7, base, false},
		{"in-place morph", 0, 0, horizOff, false},
		{"horizontal off", 0, 12, horizOff, true},
		{"vertical still on", 4, 0, horizOff, false},
		{"vertical off", -4, 0, vertOff, true},
		{"diagonal off", 2, 3, diagOff, true},
		{"axis moves unaffected by diagonal", 0, 5, diagOff, false},
		{"neighbor line", -1, 30, neighborOff, true},
		{"two lines away", 2, 30, neighborOff, false},
		{"below min horizontal", 0, 9, minH, true},
		{"at min horizontal", 0, 10, minH, false},
	}
	for _, tc := range cases {
		if got := shouldJump(tc.dRow, tc.dCol, tc.mc); got != tc.want {
			t.Errorf("%s: shouldJump(%d,%d) = %v, want %v", tc.name, tc.dRow, tc.dCol, got, tc.want)
		}
	}
}
