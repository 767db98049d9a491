package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/schedule"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "collision", cfg.Preset)
	assert.Equal(t, 8000.0, cfg.Box().Volume())
	assert.Equal(t, cfg.Frames, cfg.SimConfig().Frames)
	assert.True(t, cfg.SimConfig().ValidateState)
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		cfg, err := GetPreset(name)
		require.NoError(t, err)
		assert.Equal(t, name, cfg.Preset)
		assert.NoError(t, cfg.Validate(), name)
	}
}

func TestGetPreset(t *testing.T) {
	cfg, err := GetPreset("histogram")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Particles)
	assert.False(t, cfg.Collisions)
	assert.Equal(t, 1.0, cfg.VMax)

	cfg.Particles = 5
	again, err := GetPreset("histogram")
	require.NoError(t, err)
	assert.Equal(t, 1000, again.Particles)

	_, err = GetPreset("nonexistent")
	assert.ErrorIs(t, err, dynamo.ErrUnknownPreset)
}

func TestPresetScheduleIsCopied(t *testing.T) {
	cfg, err := GetPreset("compress")
	require.NoError(t, err)
	cfg.Schedule[0].Value = 2

	again, err := GetPreset("compress")
	require.NoError(t, err)
	assert.Equal(t, 0.5, again.Schedule[0].Value)
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"collision", "compress", "heat", "histogram"}, ListPresets())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no particles", func(c *Config) { c.Particles = 0 }},
		{"flat box", func(c *Config) { c.BoxHalf = 0 }},
		{"negative v_max", func(c *Config) { c.VMax = -1 }},
		{"zero mass", func(c *Config) { c.Mass = 0 }},
		{"zero radius", func(c *Config) { c.Radius = 0 }},
		{"bad collider", func(c *Config) { c.Collider = "octree" }},
		{"no frames", func(c *Config) { c.Frames = 0 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero time scale", func(c *Config) { c.TimeScale = 0 }},
		{"zero bins", func(c *Config) { c.Bins = 0 }},
		{"bad schedule", func(c *Config) {
			c.Schedule = []schedule.Spec{{Action: schedule.ActionResize, Value: 10}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), dynamo.ErrParameterBounds)
		})
	}

	cfg := DefaultConfig()
	cfg.Collisions = false
	cfg.Radius = 0
	cfg.Collider = ""
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gas.yaml")
	cfg, err := GetPreset("compress")
	require.NoError(t, err)
	cfg.Seed = 42

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
