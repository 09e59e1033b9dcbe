// Package plan turns one animation frame into concrete terminal cell
// operations.
//
// [Build] walks the deformed cursor quad cell by cell, classifies which
// edges cut each cell, and picks the densest glyph that approximates the
// cut: eighth-block shifts for near-axis edges, pre-drawn diagonal blocks
// for slopes close to a canonical angle, and quadrant mosaics for
// anything ambiguous. Particle positions are rasterized separately as
// braille or octant dot patterns stacked above the smear body.
//
// Build is pure: equal inputs yield equal [Result] values, and the result
// carries a signature over the op stream so callers can skip redrawing
// identical frames.
package plan
