package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Braille pixel grid of Width x Height cells, i.e.
// (Width*2) x (Height*4) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y); out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// row maps v in [lo, hi] to a dot row, hi at the top.
func (c *Canvas) row(v, lo, hi float64) int {
	_, h := c.Dots()
	if hi <= lo {
		return h / 2
	}
	return int(math.Round((hi - v) / (hi - lo) * float64(h-1)))
}

// Plot draws values left to right across the full width, scaled to [lo, hi].
func (c *Canvas) Plot(values []float64, lo, hi float64) {
	w, _ := c.Dots()
	n := len(values)
	if n == 0 {
		return
	}
	x := func(i int) int {
		if n == 1 {
			return 0
		}
		return i * (w - 1) / (n - 1)
	}

	px, py := x(0), c.row(values[0], lo, hi)
	c.Set(px, py)
	for i := 1; i < n; i++ {
		nx, ny := x(i), c.row(values[i], lo, hi)
		c.DrawLine(px, py, nx, ny)
		px, py = nx, ny
	}
}

// HLine draws a dotted horizontal line at v.
func (c *Canvas) HLine(v, lo, hi float64) {
	if v < lo || v > hi {
		return
	}
	w, _ := c.Dots()
	y := c.row(v, lo, hi)
	for x := 0; x < w; x += 3 {
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
