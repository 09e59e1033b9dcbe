package metrics

import (
	"math"
	"testing"
)

func TestDemandMeanAndPeak(t *testing.T) {
	d := NewDemand()

	d.Observe(FrameStats{Demand: 10})
	d.Observe(FrameStats{Demand: 30})

	if v := d.Value(); math.Abs(v-20) > 1e-9 {
		t.Errorf("expected mean demand 20, got %v", v)
	}
	if d.Peak() != 30 {
		t.Errorf("expected peak demand 30, got %d", d.Peak())
	}

	d.Reset()
	if d.Value() != 0 || d.Peak() != 0 {
		t.Error("expected zero demand after reset")
	}
}

func TestReuseRatio(t *testing.T) {
	r := NewReuse()

	if r.Value() != 1 {
		t.Errorf("expected full reuse before any demand, got %v", r.Value())
	}

	r.Observe(FrameStats{Demand: 10, Created: 10})
	if r.Value() != 0 {
		t.Errorf("expected no reuse on a cold pool, got %v", r.Value())
	}

	r.Observe(FrameStats{Demand: 10, Created: 0})
	if v := r.Value(); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("expected half reuse, got %v", v)
	}

	r.Reset()
	if r.Value() != 1 {
		t.Error("expected reset to forget history")
	}
}

func TestSettleTimeIgnoresRunningFrames(t *testing.T) {
	s := NewSettleTime()

	s.Observe(FrameStats{Elapsed: 0.5})
	if s.Count() != 0 {
		t.Error("expected unsettled frames to be ignored")
	}

	s.Observe(FrameStats{Elapsed: 0.4, Settled: true})
	s.Observe(FrameStats{Elapsed: 0.2, Settled: true})

	if v := s.Value(); math.Abs(v-0.3) > 1e-9 {
		t.Errorf("expected mean settle time 0.3, got %v", v)
	}
	if math.Abs(s.Max()-0.4) > 1e-9 {
		t.Errorf("expected max settle time 0.4, got %v", s.Max())
	}
	if s.Count() != 2 {
		t.Errorf("expected 2 settled animations, got %d", s.Count())
	}
}
