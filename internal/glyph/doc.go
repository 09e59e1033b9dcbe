// Package glyph holds the sub-cell glyph tables used to render partial
// terminal cells:
//
//   - eighth-block strips for vertical and horizontal shifts
//   - 2x2 quadrant mosaics for ambiguous multi-edge cells
//   - pre-drawn diagonal blocks for the canonical edge slopes
//   - braille and octant dot grids for particles
//
// Everything here is pure table lookup with no allocation. The octant set
// targets fonts with Unicode 16 legacy-computing coverage and is opt-in at
// the configuration layer; braille is the safe default.
package glyph
