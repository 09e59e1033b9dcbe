package metrics

// SettleTime averages how long animations take from first motion to
// rest. Frames that do not finish an animation are ignored.
type SettleTime struct {
	name    string
	total   float64
	max     float64
	samples int
}

func NewSettleTime() *SettleTime {
	return &SettleTime{name: "settle_time"}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(fs FrameStats) {
	if !fs.Settled {
		return
	}
	s.samples++
	s.total += fs.Elapsed
	if fs.Elapsed > s.max {
		s.max = fs.Elapsed
	}
}

func (s *SettleTime) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.total / float64(s.samples)
}

func (s *SettleTime) Max() float64 { return s.max }

func (s *SettleTime) Count() int { return s.samples }

func (s *SettleTime) Reset() {
	s.total = 0
	s.max = 0
	s.samples = 0
}
