// Package geom provides the cell-space geometry primitives shared by the
// animation and planning layers:
//
//   - [Point]: fractional terminal position (row grows downward)
//   - [Quad]: four-corner smear shape, ordered clockwise before planning
//
// One terminal cell spans 1.0 on each axis. The visual aspect ratio of a
// cell (taller than wide) is deliberately NOT baked into these types;
// aspect correction is applied by callers only inside angle and slope
// computations.
package geom
