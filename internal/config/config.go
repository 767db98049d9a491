package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/schedule"
)

const (
	DefaultParticles = 100
	DefaultBoxHalf   = 10.0
	DefaultVMax      = 2.0
	DefaultRadius    = 0.5
	DefaultFrames    = 5000
	DefaultDt        = 1.0
	DefaultTimeScale = 0.05
	DefaultBins      = 100
	DefaultSlices    = 100
	DefaultMass      = 1.0
)

type Config struct {
	Preset          string          `yaml:"preset"`
	Particles       int             `yaml:"particles"`
	BoxHalf         float64         `yaml:"box_half"`
	VMax            float64         `yaml:"v_max"`
	Mass            float64         `yaml:"mass"`
	Collisions      bool            `yaml:"collisions"`
	Radius          float64         `yaml:"radius"`
	Collider        string          `yaml:"collider"`
	ApproachingOnly bool            `yaml:"approaching_only"`
	Frames          int             `yaml:"frames"`
	Dt              float64         `yaml:"dt"`
	TimeScale       float64         `yaml:"time_scale"`
	Seed            int64           `yaml:"seed"`
	Bins            int             `yaml:"bins"`
	Slices          int             `yaml:"slices"`
	Workers         int             `yaml:"workers"`
	Schedule        []schedule.Spec `yaml:"schedule,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:     "collision",
		Particles:  DefaultParticles,
		BoxHalf:    DefaultBoxHalf,
		VMax:       DefaultVMax,
		Mass:       DefaultMass,
		Collisions: true,
		Radius:     DefaultRadius,
		Collider:   "grid",
		Frames:     DefaultFrames,
		Dt:         DefaultDt,
		TimeScale:  DefaultTimeScale,
		Bins:       DefaultBins,
		Slices:     DefaultSlices,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Schedule = append([]schedule.Spec(nil), c.Schedule...)
	return &cp
}

func (c *Config) Box() dynamo.Box { return dynamo.CenteredBox(c.BoxHalf) }

// SimConfig maps the run parameters onto the simulator loop.
func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Frames:        c.Frames,
		TimeScale:     c.TimeScale,
		Seed:          c.Seed,
		ValidateState: true,
		Workers:       c.Workers,
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Particles <= 0:
		return fmt.Errorf("%w: particles must be positive, got %d", dynamo.ErrParameterBounds, c.Particles)
	case c.BoxHalf <= 0:
		return fmt.Errorf("%w: box_half must be positive, got %f", dynamo.ErrParameterBounds, c.BoxHalf)
	case c.VMax < 0:
		return fmt.Errorf("%w: v_max must not be negative, got %f", dynamo.ErrParameterBounds, c.VMax)
	case c.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %f", dynamo.ErrParameterBounds, c.Mass)
	case c.Collisions && c.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive when collisions are on, got %f", dynamo.ErrParameterBounds, c.Radius)
	case c.Collisions && c.Collider != "pair" && c.Collider != "grid":
		return fmt.Errorf("%w: collider must be pair or grid, got %q", dynamo.ErrParameterBounds, c.Collider)
	case c.Frames <= 0:
		return fmt.Errorf("%w: frames must be positive, got %d", dynamo.ErrParameterBounds, c.Frames)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, c.Dt)
	case c.TimeScale <= 0:
		return fmt.Errorf("%w: time_scale must be positive, got %f", dynamo.ErrParameterBounds, c.TimeScale)
	case c.Bins <= 0 || c.Slices <= 0:
		return fmt.Errorf("%w: bins and slices must be positive", dynamo.ErrParameterBounds)
	}
	for i, ev := range c.Schedule {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("schedule event %d: %w", i+1, err)
		}
	}
	return nil
}
