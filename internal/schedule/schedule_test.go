package schedule

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/physics"
)

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		ok   bool
	}{
		{"temperature", Spec{Frame: 10, Action: ActionTemperature, Value: 3}, true},
		{"zero temperature", Spec{Action: ActionTemperature, Value: 0}, true},
		{"hot", Spec{Action: ActionTemperature, Value: 5.5}, false},
		{"resize", Spec{Action: ActionResize, Value: 0.5}, true},
		{"resize too small", Spec{Action: ActionResize, Value: 0.4}, false},
		{"resize too large", Spec{Action: ActionResize, Value: 2.1}, false},
		{"negative frame", Spec{Frame: -1, Action: ActionResize, Value: 1}, false},
		{"unknown", Spec{Action: "squeeze", Value: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	data := `name: compress
description: squeeze then heat
events:
  - frame: 50
    action: resize
    value: 0.5
    rethermalize: true
  - frame: 100
    action: temperature
    value: 4
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "compress", s.Name)
	require.Len(t, s.Events, 2)
	assert.Equal(t, Spec{Frame: 50, Action: ActionResize, Value: 0.5, Rethermalize: true}, s.Events[0])

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("events:\n  - frame: 1\n    action: resize\n    value: 9\n"), 0644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEventsDriveSimulation(t *testing.T) {
	base := dynamo.CenteredBox(10)
	g := physics.Init(50, base, 2, 1, rand.New(rand.NewSource(1)))

	events, err := Build([]Spec{
		{Frame: 3, Action: ActionResize, Value: 0.5},
		{Frame: 6, Action: ActionTemperature, Value: 0},
	}, base, 2)
	require.NoError(t, err)

	sim := dynamo.New(physics.NewGasStepper(nil, 0), nil)
	sim.AddEvents(events...)

	cfg := dynamo.DefaultConfig()
	cfg.Frames = 8
	res, err := sim.Run(context.Background(), g, cfg)
	require.NoError(t, err)

	// halving the side doubles speeds: KE x4, volume /8, pressure x32
	assert.InDelta(t, 4*res.Energy[2], res.Energy[3], 1e-9*res.Energy[2])
	assert.InDelta(t, 32*res.Pressure[2], res.Pressure[3], 1e-9*res.Pressure[3])
	assert.Equal(t, dynamo.CenteredBox(5), res.Final.Box)
	assert.Equal(t, 0.0, res.Energy[6])
}

func TestResizeRethermalize(t *testing.T) {
	base := dynamo.CenteredBox(10)
	g := physics.Init(100, base, 2, 1, rand.New(rand.NewSource(9)))

	events, err := Build([]Spec{{Action: ActionResize, Value: 2, Rethermalize: true}}, base, 2)
	require.NoError(t, err)
	require.NoError(t, events[0].Apply(g, rand.New(rand.NewSource(3))))

	assert.Equal(t, dynamo.CenteredBox(20), g.Box)
	assert.InDelta(t, 1.0, g.VMax, 1e-12)
	for _, v := range g.Vel {
		assert.LessOrEqual(t, v.X*v.X, 1.0)
	}
}
