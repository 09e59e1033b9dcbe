package motion

import (
	"math"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/geom"
)

// Particle is a single trail mote. Life counts down in seconds; the
// particle dies at zero.
type Particle struct {
	Pos  geom.Point
	Vel  geom.Point
	Life float64
	Max  float64
}

// LifeFrac returns the remaining life fraction in [0, 1].
func (p Particle) LifeFrac() float64 {
	if p.Max <= 0 {
		return 0
	}
	f := p.Life / p.Max
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func (e *Engine) updateParticles(st *State, pc *config.ParticleConfig, aspect, dt float64) {
	alive := st.Particles[:0]
	for _, p := range st.Particles {
		p.Life -= dt
		if p.Life <= 0 {
			continue
		}
		p.Vel.Row += (pc.Gravity + e.uniform(pc.Jitter)) * dt
		p.Vel.Col += e.uniform(pc.Jitter) * dt
		p.Pos.Col += p.Vel.Col * dt
		p.Pos.Row += p.Vel.Row * dt / aspect
		alive = append(alive, p)
	}
	st.Particles = alive
}

// spawnParticles sheds new motes along the head's travel segment. The
// fractional expected count is Bernoulli-rounded so low rates still emit
// occasionally instead of never.
func (e *Engine) spawnParticles(st *State, pc *config.ParticleConfig, from, to geom.Point, headVel geom.Point, dt float64) {
	expected := geom.Dist(from, to)*pc.SpawnPerCell + pc.SpawnPerSecond*dt
	count := int(expected)
	if e.rng.Float64() < expected-float64(count) {
		count++
	}
	if room := pc.Max - len(st.Particles); count > room {
		count = room
	}

	for i := 0; i < count; i++ {
		pos := geom.Lerp(from, to, e.rng.Float64())
		pos.Row += e.uniform(pc.Spread)
		pos.Col += e.uniform(pc.Spread)

		life := pc.MinLife + (pc.MaxLife-pc.MinLife)*math.Pow(e.rng.Float64(), pc.LifePower)

		speed := pc.BaseSpeed * math.Sqrt(e.rng.Float64())
		angle := e.rng.Float64() * 2 * math.Pi
		vel := geom.Point{
			Row: math.Sin(angle) * speed,
			Col: math.Cos(angle) * speed,
		}
		if dt > 0 {
			vel = vel.Add(headVel.Scale(pc.VelocityBias / dt))
		}

		st.Particles = append(st.Particles, Particle{
			Pos:  pos,
			Vel:  vel,
			Life: life,
			Max:  life,
		})
	}
}

// uniform draws from [-scale, scale).
func (e *Engine) uniform(scale float64) float64 {
	return (e.rng.Float64()*2 - 1) * scale
}
