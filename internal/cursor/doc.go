// Package cursor turns cursor movements and timer ticks into render
// actions. The [Machine] is a pure reducer: no clocks, no terminal, no
// locks, just state folded over events. The [Runtime] wraps one machine
// behind a mutex and executes its decisions against an overlay surface,
// recovering from panics by resetting to defaults so a single bad frame
// can never wedge the host.
package cursor
