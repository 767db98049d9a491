package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/kinetic/internal/dynamo"
)

// SetTemperature redraws every velocity component from [-vmax, vmax).
func SetTemperature(g *dynamo.Gas, vmax float64, rng *rand.Rand) error {
	if vmax < 0 || math.IsNaN(vmax) || math.IsInf(vmax, 0) {
		return fmt.Errorf("%w: v_max %v", dynamo.ErrParameterBounds, vmax)
	}
	g.VMax = vmax
	drawVelocities(g, vmax, rng)
	return nil
}

// Resize sets the container to base scaled by scale. Velocities and VMax
// are both multiplied by the cube root of base-to-new volume, so repeated
// resizes compound on the current velocities. The returned value is the
// new VMax. Particles left outside a shrunk box are brought back by the
// next Reflect.
func Resize(g *dynamo.Gas, scale float64, base dynamo.Box, baseVMax float64) (float64, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return 0, fmt.Errorf("%w: scale %v", dynamo.ErrParameterBounds, scale)
	}
	if base.Side() <= 0 {
		return 0, dynamo.ErrDegenerateBox
	}

	next := base.Scaled(scale)
	factor := math.Cbrt(base.Volume() / next.Volume())
	for i := range g.Vel {
		g.Vel[i] = g.Vel[i].Scale(factor)
	}

	g.Box = next
	g.VMax = baseVMax * factor
	return g.VMax, nil
}
