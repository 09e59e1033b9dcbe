package tune

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/scenario"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	gs := NewGridSearch(
		[]string{"stiffness", "damping"},
		[][]float64{{0.1, 0.2, 0.3, 0.4}, {0.4, 0.6, 0.8}},
	)

	evals := 0
	best, val, err := gs.Search(context.Background(), func(p map[string]float64) (map[string]float64, error) {
		evals++
		s, d := p["stiffness"], p["damping"]
		return map[string]float64{"loss": (s-0.3)*(s-0.3) + (d-0.6)*(d-0.6)}, nil
	}, "loss")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if evals != 12 {
		t.Errorf("expected 12 evaluations, got %d", evals)
	}
	if best["stiffness"] != 0.3 || best["damping"] != 0.6 {
		t.Errorf("expected optimum at (0.3, 0.6), got %v", best)
	}
	if val != 0 {
		t.Errorf("expected zero loss at the optimum, got %v", val)
	}
}

func TestGridSearchSkipsFailingPoints(t *testing.T) {
	gs := NewGridSearch([]string{"damping"}, [][]float64{{0.2, 0.5}})

	best, _, err := gs.Search(context.Background(), func(p map[string]float64) (map[string]float64, error) {
		if p["damping"] == 0.2 {
			return nil, errors.New("boom")
		}
		return map[string]float64{"loss": 1}, nil
	}, "loss")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if best["damping"] != 0.5 {
		t.Errorf("expected the surviving point to win, got %v", best)
	}
}

func TestGridSearchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := NewGridSearch([]string{"damping"}, [][]float64{{0.2, 0.5}})
	evals := 0
	_, _, err := gs.Search(ctx, func(map[string]float64) (map[string]float64, error) {
		evals++
		return map[string]float64{"loss": 1}, nil
	}, "loss")

	if err == nil {
		t.Fatal("expected a context error")
	}
	if evals != 0 {
		t.Errorf("expected no evaluations after cancel, got %d", evals)
	}
}

func TestApplyOverridesDefaults(t *testing.T) {
	p, err := Apply(nil, map[string]float64{"damping": 0.5, "particles": 0})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	cfg, err := config.Apply(config.Default(), p)
	if err != nil {
		t.Fatalf("patch did not apply: %v", err)
	}
	if cfg.Physics.Damping != 0.5 {
		t.Errorf("expected damping 0.5, got %v", cfg.Physics.Damping)
	}
	if cfg.Particles.Enabled {
		t.Error("expected particles disabled")
	}
}

func TestApplyKeepsBaseFields(t *testing.T) {
	base := &config.Patch{}
	base.Particles.Enabled = config.Set(false)

	p, err := Apply(base, map[string]float64{"stiffness": 0.4})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	cfg, err := config.Apply(config.Default(), p)
	if err != nil {
		t.Fatalf("patch did not apply: %v", err)
	}
	if cfg.Particles.Enabled {
		t.Error("expected the base particle toggle to survive")
	}
	if cfg.Physics.Stiffness != 0.4 {
		t.Errorf("expected stiffness 0.4, got %v", cfg.Physics.Stiffness)
	}
	if _, ok := base.Physics.Stiffness.Get(); ok {
		t.Error("base patch was modified")
	}
}

func TestApplyRejectsUnknownName(t *testing.T) {
	if _, err := Apply(nil, map[string]float64{"wobble": 3}); err == nil {
		t.Fatal("expected an error for an unknown parameter")
	}
}

func TestScoreReplaysScenario(t *testing.T) {
	scn, err := scenario.Preset("sweep")
	if err != nil {
		t.Fatalf("preset lookup failed: %v", err)
	}

	m, err := Score(scn, map[string]float64{"damping": 0.75}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if m["frames"] == 0 {
		t.Error("expected a nonzero frame count")
	}
	if m["settled"] < 1 {
		t.Errorf("expected at least one settle, got %v", m["settled"])
	}
}
