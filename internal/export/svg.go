package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
)

// HeavyMass is the mass above which a body is drawn in Palette.Heavy.
const HeavyMass = 1e6

type Palette struct {
	Background string
	Fill       string
	Heavy      string
	Stroke     string
}

func DefaultPalette() Palette {
	return Palette{
		Background: "#0a0a0a",
		Fill:       "#00d7ff",
		Heavy:      "#ffaf00",
		Stroke:     "#00ff00",
	}
}

func header(sb *strings.Builder, width, height float64, bg string) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, bg))
}

// SnapshotToSVG draws every body as a circle in arena coordinates.
func SnapshotToSVG(bodies []world.BodyState[float64], width, height float64, palette Palette) string {
	var sb strings.Builder
	header(&sb, width, height, palette.Background)

	sb.WriteString("<g>\n")
	for _, b := range bodies {
		fill := palette.Fill
		if b.Mass >= HeavyMass {
			fill = palette.Heavy
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, b.Position.X, b.Position.Y, b.Radius, fill))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrailToSVG draws a polyline through points in arena coordinates.
func TrailToSVG(points []vec.Vector2[float64], width, height float64, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	var sb strings.Builder
	header(&sb, width, height, "#0a0a0a")
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, strokeColor))
	writePath(&sb, points)
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// SceneToSVG is SnapshotToSVG with the trail drawn underneath.
func SceneToSVG(bodies []world.BodyState[float64], trail []vec.Vector2[float64], width, height float64, palette Palette) string {
	var sb strings.Builder
	header(&sb, width, height, palette.Background)

	if len(trail) >= 2 {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, palette.Stroke))
		writePath(&sb, trail)
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("<g>\n")
	for _, b := range bodies {
		fill := palette.Fill
		if b.Mass >= HeavyMass {
			fill = palette.Heavy
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, b.Position.X, b.Position.Y, b.Radius, fill))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func writePath(sb *strings.Builder, points []vec.Vector2[float64]) {
	for i, p := range points {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", p.X, p.Y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
		}
	}
}
