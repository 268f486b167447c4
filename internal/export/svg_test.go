package export

import (
	"strings"
	"testing"

	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
)

func TestSnapshotToSVG(t *testing.T) {
	bodies := []world.BodyState[float64]{
		{Position: vec.New(800.0, 500.0), Radius: 50, Mass: 1e17},
		{Position: vec.New(800.0, 200.0), Radius: 3, Mass: 100},
	}
	p := DefaultPalette()

	svg := SnapshotToSVG(bodies, 1600, 900, p)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete svg document")
	}
	if !strings.Contains(svg, `viewBox="0 0 1600 900"`) {
		t.Error("viewBox should match the arena")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, `cx="800.0" cy="500.0" r="50.0" fill="`+p.Heavy+`"`) {
		t.Error("heavy body should use the heavy color")
	}
	if !strings.Contains(svg, `r="3.0" fill="`+p.Fill+`"`) {
		t.Error("light body should use the fill color")
	}
}

func TestTrailToSVG(t *testing.T) {
	if TrailToSVG([]vec.Vector2[float64]{vec.New(1.0, 1.0)}, 10, 10, "#fff") != "" {
		t.Error("a single point has no path")
	}

	svg := TrailToSVG([]vec.Vector2[float64]{vec.New(1.0, 2.0), vec.New(3.0, 4.0)}, 10, 10, "#fff")
	if !strings.Contains(svg, `d="M1.0,2.0 L3.0,4.0"`) {
		t.Errorf("unexpected path in %s", svg)
	}
}

func TestSceneToSVG(t *testing.T) {
	bodies := []world.BodyState[float64]{{Position: vec.New(5.0, 5.0), Radius: 1, Mass: 1}}
	trail := []vec.Vector2[float64]{vec.New(0.0, 0.0), vec.New(5.0, 5.0)}

	svg := SceneToSVG(bodies, trail, 10, 10, DefaultPalette())
	if strings.Index(svg, "<path") > strings.Index(svg, "<circle") {
		t.Error("trail should be drawn beneath the bodies")
	}
}
