package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	c.Set(1, 3)
	if c.Grid[0][0] != 0x2881 {
		t.Errorf("expected dots 1 and 8, got %U", c.Grid[0][0])
	}
	if !c.IsSet(1, 3) {
		t.Error("IsSet should see the dot")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != 0x2880 {
		t.Errorf("expected dot 8 only, got %U", c.Grid[0][0])
	}

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)

	c.Clear()
	if c.Grid[0][0] != brailleBlank || c.Grid[0][1] != brailleBlank {
		t.Error("clear should blank every cell")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)

	for x := 0; x < 8; x++ {
		if !c.IsSet(x, 0) {
			t.Errorf("dot %d not set", x)
		}
	}
	if c.IsSet(0, 1) {
		t.Error("line should stay on its row")
	}
}

func TestCanvasDrawCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawCircle(10, 10, 4)

	for _, p := range [][2]int{{14, 10}, {6, 10}, {10, 14}, {10, 6}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected %v on the outline", p)
		}
	}
	if c.IsSet(10, 10) {
		t.Error("outline should leave the center empty")
	}

	c.Clear()
	c.DrawCircle(3, 3, 0)
	if !c.IsSet(3, 3) {
		t.Error("zero radius should draw a dot")
	}
}

func TestCanvasFillCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillCircle(10, 10, 3)

	if !c.IsSet(10, 10) || !c.IsSet(12, 10) || !c.IsSet(10, 7) {
		t.Error("filled disc missing dots")
	}
	if c.IsSet(14, 10) {
		t.Error("fill leaked beyond the radius")
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 2 || len([]rune(lines[0])) != 3 {
		t.Errorf("unexpected canvas shape %q", c.String())
	}
	if w, h := c.Dots(); w != 6 || h != 8 {
		t.Errorf("expected 6x8 dots, got %dx%d", w, h)
	}
}
