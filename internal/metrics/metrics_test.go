package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/kinetic/internal/dynamo"
)

func twoParticles() *dynamo.Gas {
	g := dynamo.NewGas(2, dynamo.CenteredBox(10), 1)
	g.Pos[0], g.Pos[1] = dynamo.Vec3{X: -5}, dynamo.Vec3{X: 5}
	g.Vel[0], g.Vel[1] = dynamo.Vec3{X: 3, Y: 4}, dynamo.Vec3{Z: 1}
	return g
}

func TestMeanEnergyAndPressure(t *testing.T) {
	g := twoParticles()
	e, p, pv := NewMeanEnergy(), NewMeanPressure(), NewPV()

	for _, m := range []dynamo.Metric{e, p, pv} {
		assert.Zero(t, m.Value())
		m.Observe(g, 0)
	}

	assert.InDelta(t, 13.0, e.Value(), 1e-12)
	assert.InDelta(t, (2.0/3.0)*13.0/8000, p.Value(), 1e-15)
	assert.InDelta(t, (2.0/3.0)*13.0, pv.Value(), 1e-12)

	g.Vel[0] = dynamo.Vec3{}
	e.Observe(g, 1)
	assert.InDelta(t, 6.75, e.Value(), 1e-12)

	e.Reset()
	assert.Zero(t, e.Value())
}

func TestEnergyDrift(t *testing.T) {
	g := twoParticles()
	d := NewEnergyDrift()

	d.Observe(g, 0)
	assert.Zero(t, d.Value())

	g.Vel[1] = dynamo.Vec3{Z: 3}
	d.Observe(g, 1)
	assert.InDelta(t, 4.0/13.0, d.Value(), 1e-12)

	d.Reset()
	assert.Zero(t, d.Value())
}

func TestNewHistogram(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		bins   int
		lo, hi float64
		counts []int
	}{
		{"uniform", []float64{0, 1, 2, 3}, 4, 0, 4, []int{1, 1, 1, 1}},
		{"right edge is closed", []float64{0, 4}, 4, 0, 4, []int{1, 0, 0, 1}},
		{"outside ignored", []float64{-1, 0.5, 5}, 2, 0, 4, []int{1, 0}},
		{"degenerate range", []float64{2, 2}, 2, 2, 2, []int{0, 2}},
		{"value on interior edge", []float64{0.3}, 10, 0, 1, []int{0, 0, 1, 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHistogram(tt.values, tt.bins, tt.lo, tt.hi)
			require.NoError(t, err)
			assert.Equal(t, tt.counts, h.Counts)
			assert.Len(t, h.Edges, tt.bins+1)
		})
	}

	_, err := NewHistogram(nil, 0, 0, 1)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
	_, err = NewHistogram(nil, 3, 1, 0)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestHistogramCenters(t *testing.T) {
	h, err := NewHistogram(nil, 2, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, h.Centers())
}

func TestSpeedHistogram(t *testing.T) {
	g := twoParticles()
	h, err := SpeedHistogram(g, 4)
	require.NoError(t, err)

	assert.Equal(t, 1.0, h.Edges[0])
	assert.Equal(t, 5.0, h.Edges[4])
	assert.Equal(t, []int{1, 0, 0, 1}, h.Counts)
	assert.Equal(t, g.Len(), h.Total())
}

func TestSliceProfile(t *testing.T) {
	g := dynamo.NewGas(4, dynamo.CenteredBox(10), 1)
	g.Pos[0], g.Pos[1], g.Pos[2], g.Pos[3] = dynamo.Vec3{X: -9}, dynamo.Vec3{X: -8}, dynamo.Vec3{X: 10}, dynamo.Vec3{X: 11}
	g.Vel[0], g.Vel[1], g.Vel[2], g.Vel[3] = dynamo.Vec3{X: 1}, dynamo.Vec3{X: 3}, dynamo.Vec3{Y: 2}, dynamo.Vec3{Z: 7}

	p, err := NewSliceProfile(g, 4, -10, 10)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 0, 0, 1}, p.Counts)
	assert.Equal(t, []float64{2, 0, 0, 2}, p.MeanSpeed)
}

func TestSliceProfileInteriorEdge(t *testing.T) {
	g := dynamo.NewGas(1, dynamo.CenteredBox(10), 1)
	g.Pos[0] = dynamo.Vec3{X: -9.8}
	g.Vel[0] = dynamo.Vec3{Y: 3}

	p, err := NewSliceProfile(g, 100, -10, 10)
	require.NoError(t, err)

	require.GreaterOrEqual(t, -9.8, p.Edges[1])
	assert.Equal(t, 0, p.Counts[0])
	assert.Equal(t, 1, p.Counts[1])
	assert.Equal(t, 3.0, p.MeanSpeed[1])
}

func TestBinOfRespectsEdges(t *testing.T) {
	for _, bins := range []int{3, 7, 10, 49, 100} {
		e := edges(-10, 10, bins)
		for i := 0; i < bins; i++ {
			assert.Equalf(t, i, binOf(e[i], e), "lower edge of bin %d of %d", i, bins)
		}
		assert.Equal(t, bins-1, binOf(10, e))
		assert.Equal(t, -1, binOf(10.5, e))
	}
}
