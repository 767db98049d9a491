package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/schedule"
)

var Presets = map[string]*Config{
	// 100 colliding particles, KE and pressure tracked over a long run.
	"collision": {
		Preset: "collision", Particles: 100, BoxHalf: 10, VMax: 2, Mass: 1,
		Collisions: true, Radius: 0.5, Collider: "pair",
		Frames: 5000, Dt: 1, TimeScale: 0.05, Bins: 100, Slices: 100,
	},
	// 1000 free particles, final spatial and speed distributions.
	"histogram": {
		Preset: "histogram", Particles: 1000, BoxHalf: 10, VMax: 1, Mass: 1,
		Collisions: false, Radius: 0.5, Collider: "grid",
		Frames: 100, Dt: 1, TimeScale: 0.1, Bins: 100, Slices: 100,
	},
	// the collision box squeezed to half its side, then released and
	// rethermalized at the starting temperature.
	"compress": {
		Preset: "compress", Particles: 200, BoxHalf: 10, VMax: 2, Mass: 1,
		Collisions: true, Radius: 0.5, Collider: "grid",
		Frames: 1500, Dt: 1, TimeScale: 0.05, Bins: 50, Slices: 50,
		Schedule: []schedule.Spec{
			{Frame: 500, Action: schedule.ActionResize, Value: 0.5},
			{Frame: 1000, Action: schedule.ActionResize, Value: 1, Rethermalize: true},
		},
	},
	// velocities redrawn at increasing temperatures.
	"heat": {
		Preset: "heat", Particles: 100, BoxHalf: 10, VMax: 1, Mass: 1,
		Collisions: true, Radius: 0.5, Collider: "pair",
		Frames: 1200, Dt: 1, TimeScale: 0.05, Bins: 50, Slices: 50,
		Schedule: []schedule.Spec{
			{Frame: 400, Action: schedule.ActionTemperature, Value: 2.5},
			{Frame: 800, Action: schedule.ActionTemperature, Value: 5},
		},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownPreset, name, ListPresets())
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
