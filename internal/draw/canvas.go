package draw

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// Point represents a 2D coordinate in logical canvas space.
type Point struct {
	X, Y float64
}

// Block characters for half-block rendering.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Canvas is a drawing buffer with 2x vertical resolution using half-block
// characters. Shapes are drawn in logical coordinates and scaled onto an
// internal pixel grid; the grid resolution follows the render scale, so a
// lowered quality tier rasterizes fewer pixels and upsamples on output.
type Canvas struct {
	termWidth  int // Actual terminal columns
	termHeight int // Actual terminal rows

	pixelWidth  int    // Pixel grid columns (termWidth * renderScale)
	pixelHeight int    // Pixel grid rows (termHeight * 2 * renderScale)
	pixels      []bool // Flat slice: [y * pixelWidth + x]
	prev        []rune // Last rune emitted per terminal cell, 0 forces re-emit

	// Scaling from logical coordinates to the pixel grid.
	logicalWidth  float64
	logicalHeight float64 // In sub-pixels: twice the logical row count
	scaleX        float64
	scaleY        float64

	renderScale float64 // Fraction of terminal resolution to rasterize at

	// Offset for centering the render area when the terminal is larger
	// than the max render resolution. 0-based terminal positions.
	offsetCol int
	offsetRow int

	// Reusable buffers to reduce allocations
	renderBuf       strings.Builder
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// Render scale bounds. Below a quarter resolution the picture stops
// reading as geometry at all.
const (
	minRenderScale = 0.25
	maxRenderScale = 1.0
)

// NewCanvas creates a canvas that scales from logical coordinates to
// terminal pixels at full render scale. logicalWidth/Height define the
// coordinate space used by the renderer; termWidth/Height are the actual
// terminal dimensions.
func NewCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		renderScale:   1,
	}
	c.termWidth = termWidth
	c.termHeight = termHeight
	c.rebuild()
	return c
}

// rebuild recomputes the pixel grid for the current terminal size and
// render scale.
func (c *Canvas) rebuild() {
	pw := int(math.Round(float64(c.termWidth) * c.renderScale))
	ph := int(math.Round(float64(c.termHeight) * c.renderScale))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	c.pixelWidth = pw
	c.pixelHeight = ph * 2
	c.pixels = make([]bool, c.pixelWidth*c.pixelHeight)
	c.scaleX = float64(c.pixelWidth) / c.logicalWidth
	c.scaleY = float64(c.pixelHeight) / c.logicalHeight

	// Callers clear the terminal around size changes, so start from a
	// known-blank screen.
	c.prev = make([]rune, c.termWidth*c.termHeight)
	c.ForceRedraw()
}

// Resize updates the canvas for new terminal dimensions while keeping the
// logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth == c.termWidth && termHeight == c.termHeight {
		return
	}
	c.termWidth = termWidth
	c.termHeight = termHeight
	c.rebuild()
}

// SetRenderScale changes the fraction of terminal resolution the canvas
// rasterizes at, clamped to a sane range. 1 draws every cell; lower
// values draw a coarser grid that renders blocky and costs less.
func (c *Canvas) SetRenderScale(s float64) {
	if s < minRenderScale {
		s = minRenderScale
	}
	if s > maxRenderScale {
		s = maxRenderScale
	}
	if s == c.renderScale {
		return
	}
	c.renderScale = s
	c.rebuild()

	// The terminal still shows the old scale's picture; repaint every
	// cell including blanks so stale blocks get erased.
	c.invalidate()
}

// RenderScale returns the current rasterization fraction.
func (c *Canvas) RenderScale() float64 {
	return c.renderScale
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at
// (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw marks the terminal as blank so the next Render emits every
// lit cell. Call it together with a terminal clear.
func (c *Canvas) ForceRedraw() {
	for i := range c.prev {
		c.prev[i] = ' '
	}
}

// invalidate marks every cell unknown so the next Render repaints the
// whole area, blanks included.
func (c *Canvas) invalidate() {
	clear(c.prev)
}

// MarkTextDirty marks width cells starting at a 1-based canvas position
// as unknown. Text overlays written over the canvas call this so the next
// Render repaints (or erases) those cells.
func (c *Canvas) MarkTextDirty(col, row, width int) {
	row--
	col--
	if row < 0 || row >= c.termHeight {
		return
	}
	for i := 0; i < width; i++ {
		x := col + i
		if x < 0 || x >= c.termWidth {
			continue
		}
		c.prev[row*c.termWidth+x] = 0
	}
}

// setPixel sets a pixel on the internal grid (no scaling).
func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.pixelWidth && y >= 0 && y < c.pixelHeight {
		c.pixels[y*c.pixelWidth+x] = true
	}
}

func (c *Canvas) pixelAt(x, y int) bool {
	return c.pixels[y*c.pixelWidth+x]
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	c.setPixel(px, py)
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon on the canvas.
// If filled is true, the interior is filled using a scanline algorithm.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	if len(points) < 3 {
		return
	}

	if filled {
		c.fillPolygon(points)
	}

	// Draw outline
	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n])
	}
}

// fillPolygon fills a polygon using a scanline algorithm.
// Works in pixel space for proper scaling.
func (c *Canvas) fillPolygon(points []Point) {
	// Reuse or grow scaled points buffer
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]

	for i, p := range points {
		scaled[i] = Point{
			X: p.X * c.scaleX,
			Y: p.Y * c.scaleY,
		}
	}

	// Bounding box in pixel space
	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	yStart := int(math.Floor(minY))
	yEnd := int(math.Ceil(maxY))

	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5 // Sample at pixel center

		intersections := c.intersectionBuf[:0]

		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]

			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				x := p1.X + t*(p2.X-p1.X)
				intersections = append(intersections, x)
			}
		}

		// Store back in case it grew
		c.intersectionBuf = intersections

		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Ceil(intersections[i]))
			xEnd := int(math.Floor(intersections[i+1]))
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y)
			}
		}
	}
}

// Smooth closes single-pixel gaps left by steep line rasterization: an
// empty pixel whose horizontal or vertical neighbors are both set gets
// filled. One extra pass over the grid, which is why only the high
// quality tier runs it.
func (c *Canvas) Smooth() {
	w, h := c.pixelWidth, c.pixelHeight
	for y := 1; y < h-1; y++ {
		row := y * w
		for x := 1; x < w-1; x++ {
			if c.pixels[row+x] {
				continue
			}
			if (c.pixels[row+x-1] && c.pixels[row+x+1]) ||
				(c.pixels[row-w+x] && c.pixels[row+w+x]) {
				c.pixels[row+x] = true
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network
// flow. 1500 bytes matches typical MTU size for smooth SSH transmission.
const maxChunkSize = 1400

// Render outputs the canvas to the writer using half-block characters.
// The pixel grid is sampled nearest-neighbor up to terminal resolution,
// so a reduced render scale shows larger blocks instead of a smaller
// picture. Only cells that changed since the last Render are written;
// cells that went dark are erased with a space.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 12) // Estimate ~12 bytes per cell

	subPixelHeight := c.termHeight * 2
	for row := 0; row < c.termHeight; row++ {
		topY := c.samplePixelRow(row*2, subPixelHeight)
		bottomY := c.samplePixelRow(row*2+1, subPixelHeight)
		rowBase := row * c.termWidth

		for col := 0; col < c.termWidth; col++ {
			px := col * c.pixelWidth / c.termWidth
			top := c.pixelAt(px, topY)
			bottom := c.pixelAt(px, bottomY)

			var ch rune
			switch {
			case top && bottom:
				ch = BlockFull
			case top:
				ch = BlockUpperHalf
			case bottom:
				ch = BlockLowerHalf
			default:
				ch = ' '
			}

			if c.prev[rowBase+col] == ch {
				continue
			}
			c.prev[rowBase+col] = ch

			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%c", row+1+c.offsetRow, col+1+c.offsetCol, ch)
		}
	}

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// samplePixelRow maps a terminal sub-pixel row to the pixel grid.
func (c *Canvas) samplePixelRow(subRow, subPixelHeight int) int {
	py := subRow * c.pixelHeight / subPixelHeight
	if py >= c.pixelHeight {
		py = c.pixelHeight - 1
	}
	return py
}

// RenderBorder draws a box border around the canvas area when the
// terminal exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	buf.Grow((c.termWidth+2)*2 + c.termHeight*2*12)

	if hasV {
		if hasH {
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, strings.Repeat("─", c.termWidth))
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, strings.Repeat("─", c.termWidth))
		} else {
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, strings.Repeat("─", c.termWidth))
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, strings.Repeat("─", c.termWidth))
		}
	}

	if hasH {
		startRow := top + 1
		endRow := bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}

	io.WriteString(w, buf.String())
}

// LogicalWidth returns the logical width (render coordinate space).
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height in sub-pixels.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based terminal
// position (col, row). Useful for placing text overlays at positions
// matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	col = px*c.termWidth/c.pixelWidth + 1
	row = py*c.termHeight*2/c.pixelHeight/2 + 1
	return col, row
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The returned slice is only valid until the next call to BorrowPoints.
// This avoids per-frame allocations for polygon rendering. Safe as long
// as each goroutine uses its own Canvas instance.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
