package export

import (
	"strings"
	"testing"

	"github.com/san-kum/smear/internal/trace"
)

func sampleFrames() []trace.Frame {
	return []trace.Frame{
		{Time: 0.017, Action: "draw", Smear: 6, Corners: [8]float64{5, 10, 5, 11, 6, 11, 6, 10}},
		{Time: 0.034, Action: "noop"},
		{Time: 0.051, Action: "draw", Smear: 4, Corners: [8]float64{5, 12, 5, 13, 6, 13, 6, 12}},
		{Time: 0.068, Action: "clear"},
	}
}

func TestRunSVGRendersDrawnQuads(t *testing.T) {
	meta := &trace.RunMetadata{Rows: 24, Cols: 80}
	svg := RunSVG(meta, sampleFrames(), 10)

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Errorf("expected XML prolog, got %q", svg[:40])
	}
	if !strings.Contains(svg, `viewBox="0 0 800 480"`) {
		t.Errorf("expected 800x480 viewBox in output:\n%s", svg)
	}
	// two drawn frames plus the final outline
	if got := strings.Count(svg, "<polygon"); got != 3 {
		t.Errorf("expected 3 polygons, got %d", got)
	}
	// corner (row 5, col 10) at scale 10 lands at x=100, y=100
	if !strings.Contains(svg, "100.0,100.0") {
		t.Errorf("expected scaled corner 100.0,100.0 in output:\n%s", svg)
	}
	if !strings.Contains(svg, `stroke="#ffffff"`) {
		t.Errorf("expected final quad outline in output:\n%s", svg)
	}
}

func TestRunSVGWithoutDrawnFramesIsStillValid(t *testing.T) {
	meta := &trace.RunMetadata{Rows: 24, Cols: 80}
	svg := RunSVG(meta, []trace.Frame{{Action: "clear"}}, 0)

	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Errorf("expected a complete document, got:\n%s", svg)
	}
	if strings.Contains(svg, "<polygon") {
		t.Errorf("expected no polygons for an empty run, got:\n%s", svg)
	}
}

func TestRunSVGDefaultsViewportAndScale(t *testing.T) {
	svg := RunSVG(&trace.RunMetadata{}, sampleFrames(), 0)

	// 80 cols x 8 px, 24 rows x 16 px
	if !strings.Contains(svg, `viewBox="0 0 640 384"`) {
		t.Errorf("expected defaulted viewBox in output:\n%s", svg)
	}
}

func TestPathSVGFitsCentroids(t *testing.T) {
	frames := []trace.Frame{
		{Corners: [8]float64{5, 10, 5, 10, 5, 10, 5, 10}},
		{Corners: [8]float64{5, 20, 5, 20, 5, 20, 5, 20}},
	}
	svg := PathSVG(frames, 400, 200, "#00ff00")

	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Errorf("expected stroke color in output:\n%s", svg)
	}
	if !strings.Contains(svg, "M33.3,100.0") {
		t.Errorf("expected padded start point in output:\n%s", svg)
	}
	if !strings.Contains(svg, "L366.7,100.0") {
		t.Errorf("expected padded end point in output:\n%s", svg)
	}
}

func TestPathSVGNeedsTwoPoints(t *testing.T) {
	frames := []trace.Frame{{Corners: [8]float64{5, 10, 5, 10, 5, 10, 5, 10}}}
	if svg := PathSVG(frames, 400, 200, "#fff"); svg != "" {
		t.Errorf("expected empty output for a single point, got %q", svg)
	}
}
