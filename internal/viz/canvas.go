package viz

import (
	"strings"

	"github.com/san-kum/kinetic/internal/dynamo"
)

const brailleBlank = 0x2800

// dot bits of a braille cell, indexed [row][col] over its 2x4 grid
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a character grid where every cell holds 2x4 braille dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = []rune(strings.Repeat(string(rune(brailleBlank)), w))
	}
	return c
}

// Set lights the dot (x, y) in dot coordinates, (2*Width) x (4*Height).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= 2*c.Width || y >= 4*c.Height {
		return
	}
	c.Grid[y/4][x/2] |= brailleBits[y%4][x%2]
}

// DrawLine traces a Bresenham line between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0)
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

// Lit counts the dots set on the canvas.
func (c *Canvas) Lit() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for b := r - brailleBlank; b != 0; b &= b - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Projection draws the outline of box and every particle of g projected
// onto the XY plane, Y up. Particles outside box are clipped.
func Projection(g *dynamo.Gas, box dynamo.Box, w, h int) *Canvas {
	c := NewCanvas(w, h)
	dw, dh := 2*w-1, 4*h-1
	side := box.Side()
	if side <= 0 || dw <= 0 || dh <= 0 {
		return c
	}

	toDot := func(x, y float64) (int, int) {
		px := int((x - box.Lo) / side * float64(dw))
		py := dh - int((y-box.Lo)/side*float64(dh))
		return px, py
	}

	c.DrawLine(0, 0, dw, 0)
	c.DrawLine(dw, 0, dw, dh)
	c.DrawLine(dw, dh, 0, dh)
	c.DrawLine(0, dh, 0, 0)

	for _, p := range g.Pos {
		if p.X < box.Lo || p.X > box.Hi || p.Y < box.Lo || p.Y > box.Hi {
			continue
		}
		c.Set(toDot(p.X, p.Y))
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
