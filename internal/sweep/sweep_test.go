package sweep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/experiment"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func freeGas(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.GetPreset("histogram")
	require.NoError(t, err)
	cfg.Particles = 50
	cfg.Frames = 20
	cfg.Seed = 3
	return cfg
}

func TestScales(t *testing.T) {
	assert.Equal(t, []float64{0.5, 1, 1.5, 2}, Scales(0.5, 2, 4))
	assert.Equal(t, []float64{1}, Scales(1, 2, 1))
	assert.Nil(t, Scales(1, 2, 0))
}

func TestSweepFollowsBoyle(t *testing.T) {
	s := New(freeGas(t), experiment.NewRegistry(), zaptest.NewLogger(t))
	s.SetLimit(2)

	scales := []float64{0.5, 1, 2}
	points, err := s.Run(context.Background(), scales)
	require.NoError(t, err)
	require.Len(t, points, len(scales))

	for i, p := range points {
		assert.Equal(t, scales[i], p.Scale)
		half := 10 * scales[i]
		assert.InDelta(t, 8*half*half*half, p.Volume, 1e-9)
		assert.InDelta(t, 2.0/3.0*p.MeanEnergy, p.PV, 1e-9*p.PV)
	}

	// free particles keep their speeds, so the same seed gives the same energy
	assert.InDelta(t, points[0].MeanEnergy, points[2].MeanEnergy, 1e-9)
	assert.Greater(t, points[0].MeanPressure, points[1].MeanPressure)
	assert.Greater(t, points[1].MeanPressure, points[2].MeanPressure)

	k, r2 := FitBoyle(points)
	assert.InDelta(t, 2.0/3.0*points[0].MeanEnergy, k, 1e-6*k)
	assert.InDelta(t, 1, r2, 1e-9)
}

func TestSweepRejectsBadScale(t *testing.T) {
	s := New(freeGas(t), experiment.NewRegistry(), nil)
	_, err := s.Run(context.Background(), []float64{1, 0})
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestSweepCanceled(t *testing.T) {
	cfg := freeGas(t)
	cfg.Frames = 10000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, experiment.NewRegistry(), nil).Run(ctx, []float64{1, 1.5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitBoyleDegenerate(t *testing.T) {
	k, r2 := FitBoyle([]Point{{Volume: 1, MeanPressure: 1}})
	assert.Zero(t, k)
	assert.Zero(t, r2)
}
