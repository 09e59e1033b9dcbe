package motion

import (
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/geom"
)

// State is the animated smear: corners, per-corner velocities and the
// particle cloud. Head and Tail are refreshed by every [Engine.Step].
type State struct {
	Corners   geom.Quad
	Velocity  [4]geom.Point
	Particles []Particle
	Head      int
	Tail      int
}

// StepResult carries the per-step signals the reducer cares about.
type StepResult struct {
	Head          int
	Tail          int
	DelayDisabled bool
}

// Engine owns the random stream used for particle spawning. Everything
// else it computes is a pure function of its inputs.
type Engine struct {
	rng *rand.Rand
}

// NewEngine seeds the particle stream; seed 0 picks a time-based seed.
func NewEngine(seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// Init places the state at rest exactly on target.
func Init(st *State, target geom.Quad) {
	st.Corners = target
	st.Velocity = [4]geom.Point{}
	st.Particles = st.Particles[:0]
	st.Head, st.Tail = 0, 0
}

// Snap moves the corners to the target instantly, zeroing velocity.
// Particles in flight keep decaying on their own.
func Snap(st *State, target geom.Quad) {
	st.Corners = target
	st.Velocity = [4]geom.Point{}
}

// Step advances the state by dt seconds toward target. The target quad
// must be clockwise; degenerate or non-finite inputs snap to the target
// rather than propagate.
func (e *Engine) Step(st *State, cfg *config.Config, target geom.Quad, dt float64, mode Mode) StepResult {
	if dt <= 0 || !target.IsFinite() || !st.Corners.IsFinite() {
		Snap(st, target)
		return StepResult{}
	}

	ph := &cfg.Physics
	stiffHead, stiffTrail := ph.Stiffness, ph.TrailingStiffness
	damping, maxLen := ph.Damping, ph.MaxLength
	if mode == ModeInsert {
		stiffHead, stiffTrail = ph.StiffnessInsert, ph.TrailingStiffnessInsert
		damping, maxLen = ph.DampingInsert, ph.MaxLengthInsert
	}

	tc := target.Centroid()
	var dist [4]float64
	head, tail := 0, 0
	dMax := 0.0
	for i, c := range st.Corners {
		dist[i] = geom.Dist(c, tc)
		if dist[i] < dist[head] {
			head = i
		}
		if dist[i] > dist[tail] {
			tail = i
		}
		if dist[i] > dMax {
			dMax = dist[i]
		}
	}

	// A laggy tick while the head is still far means the terminal cannot
	// keep up; the reducer turns this into an instant jump plus a notice.
	// Judged before stepping: the corrected gain below would otherwise
	// swallow most of the distance and mask the stall.
	stalled := dist[head] > ph.StallDistance && dt > ph.MaxTickIntervalMs/1000

	// Anticipation leads the target away from the current centroid so the
	// head overshoots slightly and settles back; it decays to zero with
	// the remaining distance, keeping the rest position exact.
	lead := geom.Point{}
	if ph.Anticipation > 0 {
		lead = tc.Sub(st.Corners.Centroid()).Scale(ph.Anticipation)
	}

	steps := dt / cfg.BaseInterval()
	dampF := math.Exp(math.Log(damping) * steps)

	prevHead := st.Corners[head]
	for i := range st.Corners {
		ratio := 0.0
		if dMax > 0 {
			ratio = dist[i] / dMax
		}
		k := stiffHead + (stiffTrail-stiffHead)*math.Pow(ratio, ph.TrailingExponent)
		perStep := 1 - math.Pow(1-k, steps)

		goal := target[i].Add(lead)
		st.Velocity[i] = st.Velocity[i].Add(goal.Sub(st.Corners[i]).Scale(perStep))
		st.Corners[i] = st.Corners[i].Add(st.Velocity[i])
		st.Velocity[i] = st.Velocity[i].Scale(dampF)
	}

	clampTrail(st, head, maxLen)

	if cfg.Particles.Enabled {
		e.updateParticles(st, &cfg.Particles, ph.CellAspect, dt)
		headVel := st.Corners[head].Sub(prevHead)
		e.spawnParticles(st, &cfg.Particles, prevHead, st.Corners[head], headVel, dt)
	}

	st.Head, st.Tail = head, tail
	return StepResult{Head: head, Tail: tail, DelayDisabled: stalled}
}

// clampTrail pulls non-head corners toward the head when the trail
// exceeds its cap.
func clampTrail(st *State, head int, maxLen float64) {
	longest := 0.0
	for i, c := range st.Corners {
		if i == head {
			continue
		}
		if d := geom.Dist(c, st.Corners[head]); d > longest {
			longest = d
		}
	}
	if longest <= maxLen || longest == 0 {
		return
	}
	pull := maxLen / longest
	for i := range st.Corners {
		if i == head {
			continue
		}
		st.Corners[i] = geom.Lerp(st.Corners[head], st.Corners[i], pull)
	}
}

// Reached reports whether the animation may settle: corners close enough,
// slow enough, and no particles left in flight. Bar-shaped cursors use
// their own tighter thresholds since a misaligned eighth-cell bar is far
// more visible than a misaligned block.
func Reached(st *State, cfg *config.Config, target geom.Quad, shape Shape) bool {
	ph := &cfg.Physics
	dStop, vStop := ph.DistanceStop, ph.VelocityStop
	if shape == ShapeVerticalBar {
		dStop, vStop = ph.DistanceStopBar, ph.VelocityStopBar
	}

	if st.Corners.MaxCornerDist(target) >= dStop {
		return false
	}
	for _, v := range st.Velocity {
		if v.Norm() >= vStop {
			return false
		}
	}
	return len(st.Particles) == 0
}
