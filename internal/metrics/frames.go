// Package metrics accumulates per-frame animation statistics.
package metrics

// FrameStats is one animation frame's worth of measurements, assembled
// by the cursor runtime after each draw.
type FrameStats struct {
	Demand      int // overlay cells the planner asked for
	Created     int // windows newly created to satisfy them
	Budget      int // pool keep budget after the frame
	SmearOps    int
	ParticleOps int
	Elapsed     float64 // seconds since the animation started
	Settled     bool    // this frame brought the cursor to rest
}

// Collector accumulates one statistic over a stream of frames.
type Collector interface {
	Name() string
	Observe(fs FrameStats)
	Value() float64
	Reset()
}

// Demand tracks mean and peak overlay demand per frame.
type Demand struct {
	name    string
	total   int
	peak    int
	samples int
}

func NewDemand() *Demand {
	return &Demand{name: "demand"}
}

func (d *Demand) Name() string { return d.name }

func (d *Demand) Observe(fs FrameStats) {
	d.samples++
	d.total += fs.Demand
	if fs.Demand > d.peak {
		d.peak = fs.Demand
	}
}

func (d *Demand) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return float64(d.total) / float64(d.samples)
}

func (d *Demand) Peak() int { return d.peak }

func (d *Demand) Reset() {
	d.total = 0
	d.peak = 0
	d.samples = 0
}

// Reuse tracks how much of the overlay demand was served from the pool
// instead of creating windows.
type Reuse struct {
	name    string
	demand  int
	created int
}

func NewReuse() *Reuse {
	return &Reuse{name: "reuse"}
}

func (r *Reuse) Name() string { return r.name }

func (r *Reuse) Observe(fs FrameStats) {
	r.demand += fs.Demand
	r.created += fs.Created
}

func (r *Reuse) Value() float64 {
	if r.demand == 0 {
		return 1
	}
	v := 1 - float64(r.created)/float64(r.demand)
	if v < 0 {
		return 0
	}
	return v
}

func (r *Reuse) Reset() {
	r.demand = 0
	r.created = 0
}
