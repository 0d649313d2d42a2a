package draw

import (
	"strings"
	"testing"
)

func TestCanvasRenderScaleCoarsensGrid(t *testing.T) {
	c := NewCanvas(80, 24, 160, 96)

	if c.pixelWidth != 80 || c.pixelHeight != 48 {
		t.Fatalf("full-scale grid = %dx%d, want 80x48", c.pixelWidth, c.pixelHeight)
	}

	c.SetRenderScale(0.5)
	if c.pixelWidth != 40 || c.pixelHeight != 24 {
		t.Fatalf("half-scale grid = %dx%d, want 40x24", c.pixelWidth, c.pixelHeight)
	}

	// Logical coordinates still span the whole grid.
	c.SetFloat(159, 95)
	if !c.pixelAt(c.pixelWidth-1, c.pixelHeight-1) {
		t.Error("bottom-right logical corner did not map to bottom-right pixel")
	}
}

func TestCanvasRenderScaleClamped(t *testing.T) {
	c := NewCanvas(80, 24, 160, 96)

	c.SetRenderScale(0.01)
	if c.RenderScale() != minRenderScale {
		t.Errorf("scale = %v, want clamp to %v", c.RenderScale(), minRenderScale)
	}

	c.SetRenderScale(3)
	if c.RenderScale() != maxRenderScale {
		t.Errorf("scale = %v, want clamp to %v", c.RenderScale(), maxRenderScale)
	}
}

func TestCanvasRenderSkipsEmptyCells(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)

	var out strings.Builder
	c.Render(&out)
	if out.Len() != 0 {
		t.Fatalf("empty canvas rendered %d bytes, want none", out.Len())
	}

	c.SetFloat(10, 6)
	out.Reset()
	c.Render(&out)

	got := out.String()
	if !strings.ContainsRune(got, BlockUpperHalf) {
		t.Errorf("render output %q missing upper half-block for even sub-row", got)
	}
	if strings.Count(got, "\033[") != 1 {
		t.Errorf("render wrote %d cells, want exactly 1", strings.Count(got, "\033["))
	}
}

func TestCanvasRenderDiffsFrames(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)
	c.SetFloat(10, 6)

	var out strings.Builder
	c.Render(&out)
	if out.Len() == 0 {
		t.Fatal("first render emitted nothing")
	}

	out.Reset()
	c.Render(&out)
	if out.Len() != 0 {
		t.Errorf("unchanged frame emitted %q", out.String())
	}

	// Pixel goes dark: the cell must be erased with a space.
	c.Clear()
	out.Reset()
	c.Render(&out)
	if !strings.ContainsRune(out.String(), ' ') {
		t.Errorf("cleared cell not erased, output %q", out.String())
	}
}

func TestCanvasForceRedrawRepaints(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)
	c.SetFloat(10, 6)

	var out strings.Builder
	c.Render(&out)

	c.ForceRedraw()
	out.Reset()
	c.Render(&out)
	if !strings.ContainsRune(out.String(), BlockUpperHalf) {
		t.Errorf("lit cell not re-emitted after ForceRedraw, output %q", out.String())
	}
}

func TestCanvasMarkTextDirtyErases(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)

	var out strings.Builder
	c.Render(&out)

	// Pretend text was written over an empty cell; next render must
	// paint a space over it.
	c.MarkTextDirty(5, 3, 4)
	out.Reset()
	c.Render(&out)
	if got := strings.Count(out.String(), " "); got != 4 {
		t.Errorf("dirty cells erased = %d, want 4 (output %q)", got, out.String())
	}
}

func TestCanvasRenderScaleChangeRepaintsAll(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)
	c.SetFloat(10, 6)

	var out strings.Builder
	c.Render(&out)

	c.SetRenderScale(0.5)
	out.Reset()
	c.Render(&out)
	// Every cell is unknown after a scale change, so all 40x12 get
	// painted, blanks included.
	if got := strings.Count(out.String(), "\033["); got != 40*12 {
		t.Errorf("cells emitted after scale change = %d, want %d", got, 40*12)
	}
}

func TestCanvasHalfBlockPairing(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)

	// Both sub-rows of terminal row 0 set at the same column.
	c.SetFloat(5, 0)
	c.SetFloat(5, 1)

	var out strings.Builder
	c.Render(&out)
	if !strings.ContainsRune(out.String(), BlockFull) {
		t.Errorf("paired sub-pixels rendered %q, want full block", out.String())
	}
}

func TestCanvasDrawLineConnects(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)
	c.DrawLine(Point{X: 0, Y: 0}, Point{X: 39, Y: 0})

	for x := 0; x < c.pixelWidth; x++ {
		if !c.pixelAt(x, 0) {
			t.Fatalf("horizontal line missing pixel at x=%d", x)
		}
	}
}

func TestCanvasSmoothClosesGaps(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)

	c.setPixel(4, 6)
	c.setPixel(6, 6)
	c.Smooth()

	if !c.pixelAt(5, 6) {
		t.Error("horizontal single-pixel gap not closed")
	}
	if c.pixelAt(5, 5) || c.pixelAt(5, 7) {
		t.Error("smoothing filled pixels outside the gap")
	}
}

func TestCanvasResizeKeepsLogicalSpace(t *testing.T) {
	c := NewCanvas(80, 24, 160, 96)
	c.Resize(160, 48)

	if c.LogicalWidth() != 160 || c.LogicalHeight() != 96 {
		t.Errorf("logical size changed on resize: %vx%v", c.LogicalWidth(), c.LogicalHeight())
	}
	if c.pixelWidth != 160 || c.pixelHeight != 96 {
		t.Errorf("resized grid = %dx%d, want 160x96", c.pixelWidth, c.pixelHeight)
	}
}

func TestCanvasPolygonFill(t *testing.T) {
	c := NewCanvas(40, 12, 40, 24)

	pts := c.BorrowPoints(4)
	pts[0] = Point{X: 10, Y: 6}
	pts[1] = Point{X: 20, Y: 6}
	pts[2] = Point{X: 20, Y: 16}
	pts[3] = Point{X: 10, Y: 16}
	c.DrawPolygon(pts, true)

	if !c.pixelAt(15, 11) {
		t.Error("interior pixel not filled")
	}
	if c.pixelAt(5, 11) {
		t.Error("pixel outside polygon was filled")
	}
}
