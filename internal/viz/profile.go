package viz

import (
	"math"
	"strings"
)

// braille dot bits by sub-row and sub-column.
var dots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBase = 0x2800

// canvas is a grid of braille cells, each holding 2×4 dots.
type canvas struct {
	cols, rows int
	cells      [][]rune
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for i := range c.cells {
		c.cells[i] = make([]rune, cols)
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBase
		}
	}
	return c
}

// set lights dot (x, y) with y growing downwards.
func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	c.cells[y/4][x/2] |= dots[y%4][x%2]
}

func (c *canvas) line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Profile plots values as a connected curve on a cols×rows braille canvas.
// Non-finite values break the curve.
func Profile(values []float64, cols, rows int) string {
	c := newCanvas(cols, rows)
	if len(values) == 0 {
		return c.String()
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	w, h := cols*2, rows*4
	px := func(i int) int {
		if len(values) == 1 {
			return 0
		}
		return i * (w - 1) / (len(values) - 1)
	}
	py := func(v float64) int {
		if hi <= lo {
			return h / 2
		}
		return int(math.Round((hi - v) / (hi - lo) * float64(h-1)))
	}

	prev := -1
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			prev = -1
			continue
		}
		if prev >= 0 {
			c.line(px(prev), py(values[prev]), px(i), py(v))
		} else {
			c.set(px(i), py(v))
		}
		prev = i
	}
	return c.String()
}
