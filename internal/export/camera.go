package export

import (
	"math"

	"github.com/san-kum/kinetic/internal/dynamo"
)

// Camera projects box-normalized points onto an image plane.
type Camera struct {
	RotX, RotY float64
	Distance   float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{RotX: -0.35, RotY: 0.6, Distance: 3, Zoom: 1}
}

func (c *Camera) rotate(p dynamo.Vec3) dynamo.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project maps p, given in units where the box spans [-0.5, 0.5]^3, to
// pixel coordinates on a w x h image. Depth grows toward the viewer.
// ok is false for points behind the camera.
func (c *Camera) Project(p dynamo.Vec3, w, h int) (x, y, depth float64, ok bool) {
	r := c.rotate(p).Scale(c.Zoom)
	if r.Z >= c.Distance-0.01 {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - r.Z)
	minDim := math.Min(float64(w), float64(h))
	pScale := minDim * 0.6
	x = r.X*scale*pScale + float64(w)/2
	y = -r.Y*scale*pScale + float64(h)/2
	return x, y, r.Z, true
}

// normalizer maps world coordinates inside box to [-0.5, 0.5]^3.
func normalizer(box dynamo.Box) func(dynamo.Vec3) dynamo.Vec3 {
	mid := (box.Lo + box.Hi) / 2
	side := box.Side()
	if side <= 0 {
		side = 1
	}
	center := dynamo.Vec3{X: mid, Y: mid, Z: mid}
	return func(p dynamo.Vec3) dynamo.Vec3 { return p.Sub(center).Scale(1 / side) }
}

// boxEdges returns the 12 edges of the cube [Lo, Hi]^3.
func boxEdges(box dynamo.Box) [][2]dynamo.Vec3 {
	lo, hi := box.Lo, box.Hi
	v := [8]dynamo.Vec3{
		{X: lo, Y: lo, Z: lo}, {X: hi, Y: lo, Z: lo}, {X: hi, Y: hi, Z: lo}, {X: lo, Y: hi, Z: lo},
		{X: lo, Y: lo, Z: hi}, {X: hi, Y: lo, Z: hi}, {X: hi, Y: hi, Z: hi}, {X: lo, Y: hi, Z: hi},
	}
	idx := [12][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	edges := make([][2]dynamo.Vec3, len(idx))
	for i, e := range idx {
		edges[i] = [2]dynamo.Vec3{v[e[0]], v[e[1]]}
	}
	return edges
}
