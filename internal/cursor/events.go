package cursor

// CursorEvent reports an observed cursor position. Context identifies
// the window or buffer the cursor sits in; Mode is the editor mode
// string ("n", "i", "R", "c", "t").
type CursorEvent struct {
	Row, Col int
	Context  string
	Mode     string
}

// TickEvent is a scheduled animation callback. Generation must match
// the run that scheduled it or the tick is ignored. Elapsed is the
// wall-clock seconds since the previous tick; zero or negative means
// unknown and falls back to the configured base interval.
type TickEvent struct {
	Generation uint64
	Elapsed    float64
}

// Action is what the caller should render after reducing an event.
type Action uint8

const (
	// ActionNoop leaves the screen as it is.
	ActionNoop Action = iota
	// ActionDraw renders the current frame.
	ActionDraw
	// ActionClear hides every overlay.
	ActionClear
)

func (a Action) String() string {
	switch a {
	case ActionDraw:
		return "draw"
	case ActionClear:
		return "clear"
	default:
		return "noop"
	}
}

// Command carries everything besides rendering that an event asks of
// the host: scheduling the next tick, surfacing a notice, recording a
// finished run.
type Command struct {
	// ScheduleTick requests a callback after Delay seconds, tagged
	// with Generation.
	ScheduleTick bool
	Delay        float64
	Generation   uint64

	// Notice is a user-visible message, set when the animation gives
	// up because ticks arrive too slowly to be worth drawing.
	Notice string

	// Settled marks the end of a run; Elapsed is its total duration
	// in seconds.
	Settled bool
	Elapsed float64
}
