package physics

import (
	"github.com/san-kum/kinetic/internal/dynamo"
)

// driftChunk is the smallest range handed to a drift worker.
const driftChunk = 512

// Drift advances every position by vel*dt.
func Drift(g *dynamo.Gas, dt float64, workers int) {
	dynamo.ParallelFor(g.Len(), driftChunk, workers, func(start, end int) {
		for i := start; i < end; i++ {
			p, v := &g.Pos[i], g.Vel[i]
			p.X += v.X * dt
			p.Y += v.Y * dt
			p.Z += v.Z * dt
		}
	})
}

// Reflect negates every velocity component whose coordinate reached or
// passed a wall, then clips the coordinate into the box. It returns the
// number of reflected components.
func Reflect(g *dynamo.Gas) int {
	lo, hi := g.Box.Lo, g.Box.Hi
	hits := 0
	for i := range g.Pos {
		p, v := &g.Pos[i], &g.Vel[i]
		hits += reflectAxis(&p.X, &v.X, lo, hi)
		hits += reflectAxis(&p.Y, &v.Y, lo, hi)
		hits += reflectAxis(&p.Z, &v.Z, lo, hi)
	}
	return hits
}

func reflectAxis(p, v *float64, lo, hi float64) int {
	hit := 0
	if *p <= lo || *p >= hi {
		*v = -*v
		hit = 1
	}
	if *p < lo {
		*p = lo
	} else if *p > hi {
		*p = hi
	}
	return hit
}

// GasStepper runs drift, wall reflection and, when Collider is set,
// pairwise collisions.
type GasStepper struct {
	Collider Collider
	Radius   float64
	Workers  int
}

func NewGasStepper(c Collider, radius float64) *GasStepper {
	return &GasStepper{Collider: c, Radius: radius}
}

func (s *GasStepper) Step(g *dynamo.Gas, dt float64) dynamo.StepStats {
	Drift(g, dt, s.Workers)
	stats := dynamo.StepStats{WallHits: Reflect(g)}
	if s.Collider != nil && s.Radius > 0 {
		stats.Collisions = s.Collider.Resolve(g, s.Radius)
	}
	return stats
}
