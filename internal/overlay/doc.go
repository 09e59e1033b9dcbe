// Package overlay manages the pool of floating one-cell windows the
// smear draws through.
//
// Terminal overlay windows are expensive to create and destroy, so the
// [Pool] recycles them across frames: windows used last frame become
// available this frame, an exact-position index lets an unchanged cell
// reuse its window without moving anything, and an adaptive budget sized
// from smoothed per-frame demand decides how many idle windows are worth
// keeping. Every surface failure is local: a window that cannot be moved
// or hidden is marked invalid and closed at the next prune, never
// crashing the animation.
package overlay
