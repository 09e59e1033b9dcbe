package palette

import (
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/smear/internal/config"
)

func colorCfg() config.ColorConfig {
	return config.ColorConfig{
		CursorColor:   "#ffffff",
		BackgroundHex: "#000000",
		Levels:        16,
		Gamma:         2.2,
		TransparentBg: "#303030",
	}
}

func TestBuildLevels(t *testing.T) {
	p, err := Build(colorCfg())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Levels() != 16 {
		t.Errorf("expected 16 levels, got %d", p.Levels())
	}

	if _, ok := p.Lookup(Ref{Level: 0}); ok {
		t.Error("level 0 must not resolve")
	}
	if _, ok := p.Lookup(Ref{Level: 17}); ok {
		t.Error("out-of-range level must not resolve")
	}
	e, ok := p.Lookup(Ref{Level: 16})
	if !ok {
		t.Fatal("top level must resolve")
	}
	if e.Fg != "#ffffff" {
		t.Errorf("top level should be the cursor color, got %s", e.Fg)
	}
}

func TestBlendMonotonic(t *testing.T) {
	p, err := Build(colorCfg())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	prev := -1.0
	for lvl := 1; lvl <= 16; lvl++ {
		e, _ := p.Lookup(Ref{Level: lvl})
		c, err := colorful.Hex(e.Fg)
		if err != nil {
			t.Fatalf("level %d: bad hex %s", lvl, e.Fg)
		}
		lum := c.R + c.G + c.B
		if lum <= prev {
			t.Errorf("level %d: luminance %v not above previous %v", lvl, lum, prev)
		}
		prev = lum
	}
}

func TestInvertedEntries(t *testing.T) {
	p, err := Build(colorCfg())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	n, _ := p.Lookup(Ref{Level: 8})
	inv, _ := p.Lookup(Ref{Level: 8, Inverted: true})
	if inv.Bg != n.Fg {
		t.Errorf("inverted bg should carry the blend: %s vs %s", inv.Bg, n.Fg)
	}
	if inv.Fg != "#000000" {
		t.Errorf("inverted fg should be the background, got %s", inv.Fg)
	}
	if n.Bg != "" {
		t.Errorf("normal entries leave the background alone, got %s", n.Bg)
	}
}

func TestFallbacks(t *testing.T) {
	co := colorCfg()
	co.CursorColor = ""
	co.BackgroundHex = ""
	p, err := Build(co)
	if err != nil {
		t.Fatalf("build with fallbacks: %v", err)
	}
	top, _ := p.Lookup(Ref{Level: co.Levels})
	if top.Fg != FallbackCursor {
		t.Errorf("expected fallback cursor color, got %s", top.Fg)
	}
}

func TestBadHex(t *testing.T) {
	co := colorCfg()
	co.CursorColor = "not-a-color"
	if _, err := Build(co); err == nil {
		t.Error("expected error for invalid cursor color")
	}
}
