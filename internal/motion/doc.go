// Package motion advances the smear animation state: a spring-driven
// four-corner quadrilateral chasing a target shape, plus a bounded
// particle cloud shed along the way.
//
// The integrator is deliberately simple:
//
//	v += (target - current) * stiffnessForStep(dt)
//	current += v
//	v *= dampingFactor(dt)
//
// with per-corner stiffness interpolated between a head and a trailing
// value by distance from the target centroid. Both the stiffness and the
// damping are time-corrected so the feel survives frame-rate changes.
//
// Everything in this package is a pure function of (state, config, dt)
// apart from the random stream driving particle spawns, which the owning
// [Engine] seeds once.
package motion
