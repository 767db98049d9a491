package export

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/kinetic/internal/dynamo"
)

type SVGOptions struct {
	Width, Height int
	DotRadius     float64
	Camera        *Camera
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 800, DotRadius: 3, Camera: NewCamera()}
}

// SpeedColor maps t in [0, 1] onto a blue to red ramp.
func SpeedColor(t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	r := int(math.Round(255 * t))
	b := int(math.Round(255 * (1 - t)))
	return fmt.Sprintf("#%02x00%02x", r, b)
}

type dot struct {
	x, y, depth float64
	color       string
}

// GasToSVG renders a perspective snapshot of g inside its box wireframe.
// Particles are colored by speed relative to the fastest one and the
// center of mass is drawn in green.
func GasToSVG(g *dynamo.Gas, opts SVGOptions) string {
	if g == nil {
		return ""
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultSVGOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.Camera == nil {
		opts.Camera = NewCamera()
	}
	if opts.DotRadius <= 0 {
		opts.DotRadius = 3
	}

	norm := normalizer(g.Box)
	cam := opts.Camera

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#808080" stroke-width="1" fill="none">
`, opts.Width, opts.Height, opts.Width, opts.Height)

	for _, e := range boxEdges(g.Box) {
		x1, y1, _, ok1 := cam.Project(norm(e[0]), opts.Width, opts.Height)
		x2, y2, _, ok2 := cam.Project(norm(e[1]), opts.Width, opts.Height)
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n")

	maxSpeed := 0.0
	for _, v := range g.Vel {
		maxSpeed = math.Max(maxSpeed, v.Norm())
	}

	dots := make([]dot, 0, g.Len())
	for i, p := range g.Pos {
		x, y, depth, ok := cam.Project(norm(p), opts.Width, opts.Height)
		if !ok {
			continue
		}
		t := 0.0
		if maxSpeed > 0 {
			t = g.Vel[i].Norm() / maxSpeed
		}
		dots = append(dots, dot{x: x, y: y, depth: depth, color: SpeedColor(t)})
	}
	// far to near
	sort.SliceStable(dots, func(i, j int) bool { return dots[i].depth < dots[j].depth })

	sb.WriteString("<g>\n")
	for _, d := range dots {
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", d.x, d.y, opts.DotRadius, d.color)
	}
	sb.WriteString("</g>\n")

	if g.Len() > 0 {
		if x, y, _, ok := cam.Project(norm(g.CenterOfMass()), opts.Width, opts.Height); ok {
			fmt.Fprintf(&sb, "<circle id=\"com\" cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"#00ff00\"/>\n", x, y, opts.DotRadius*2)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func WriteSVG(w io.Writer, g *dynamo.Gas, opts SVGOptions) error {
	_, err := io.WriteString(w, GasToSVG(g, opts))
	return err
}
