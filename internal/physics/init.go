package physics

import (
	"math/rand"

	"github.com/san-kum/kinetic/internal/dynamo"
)

// Init places n particles uniformly in the box with velocity components
// drawn uniformly from [-vmax, vmax).
func Init(n int, box dynamo.Box, vmax, mass float64, rng *rand.Rand) *dynamo.Gas {
	g := dynamo.NewGas(n, box, mass)
	g.VMax = vmax

	side := box.Side()
	for i := 0; i < n; i++ {
		g.Pos[i] = dynamo.Vec3{
			X: box.Lo + rng.Float64()*side,
			Y: box.Lo + rng.Float64()*side,
			Z: box.Lo + rng.Float64()*side,
		}
	}
	drawVelocities(g, vmax, rng)

	return g
}

func drawVelocities(g *dynamo.Gas, vmax float64, rng *rand.Rand) {
	for i := range g.Vel {
		g.Vel[i] = dynamo.Vec3{
			X: uniform(rng, vmax),
			Y: uniform(rng, vmax),
			Z: uniform(rng, vmax),
		}
	}
}

func uniform(rng *rand.Rand, vmax float64) float64 {
	return -vmax + rng.Float64()*2*vmax
}
