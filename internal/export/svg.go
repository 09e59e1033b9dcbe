// Package export renders stored animation runs into standalone SVG
// documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/smear/internal/trace"
)

// RunSVG renders a run as stacked quad polygons fading in with time
// over a terminal-dark background, with the final quad outlined.
// Cells draw twice as tall as wide, matching a typical terminal
// aspect.
func RunSVG(meta *trace.RunMetadata, frames []trace.Frame, scale float64) string {
	if scale <= 0 {
		scale = 8
	}
	rows, cols := meta.Rows, meta.Cols
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}

	width := float64(cols) * scale
	height := float64(rows) * scale * 2 // cells are twice as tall as wide

	drawn := make([]trace.Frame, 0, len(frames))
	for _, fr := range frames {
		if fr.Action == "draw" && fr.Smear > 0 {
			drawn = append(drawn, fr)
		}
	}

	var sb strings.Builder

	// SVG header
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff88">
`, width, height, width, height))

	for i, fr := range drawn {
		opacity := 0.8
		if len(drawn) > 1 {
			opacity = 0.08 + 0.72*float64(i)/float64(len(drawn)-1)
		}
		sb.WriteString(fmt.Sprintf(`<polygon points="%s" fill-opacity="%.3f"/>
`, polygonPoints(fr.Corners, scale), opacity))
	}
	sb.WriteString("</g>\n")

	if len(drawn) > 0 {
		last := drawn[len(drawn)-1]
		sb.WriteString(fmt.Sprintf(`<polygon points="%s" fill="none" stroke="#ffffff" stroke-width="1"/>
`, polygonPoints(last.Corners, scale)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func polygonPoints(corners [8]float64, scale float64) string {
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		x := corners[2*i+1] * scale
		y := corners[2*i] * scale * 2
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	return sb.String()
}

// PathSVG renders the centroid trajectory of a run as a single stroked
// path fitted to the given canvas size.
func PathSVG(frames []trace.Frame, width, height int, strokeColor string) string {
	type pt struct{ x, y float64 }
	points := make([]pt, 0, len(frames))
	for _, fr := range frames {
		var r, c float64
		for i := 0; i < 4; i++ {
			r += fr.Corners[2*i]
			c += fr.Corners[2*i+1]
		}
		points = append(points, pt{x: c / 4, y: r / 4})
	}
	if len(points) < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].x, points[0].x
	minY, maxY := points[0].y, points[0].y
	for _, p := range points {
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.x - minX) / rangeX * float64(width)
		// screen rows grow downward already, no flip
		y := (p.y - minY) / rangeY * float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
