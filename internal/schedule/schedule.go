package schedule

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/physics"
)

// Control ranges accepted by scheduled events.
const (
	MinVMax  = 0.0
	MaxVMax  = 5.0
	MinScale = 0.5
	MaxScale = 2.0
)

type Action string

const (
	ActionTemperature Action = "temperature"
	ActionResize      Action = "resize"
)

// Spec is one scripted control change.
type Spec struct {
	Frame  int     `yaml:"frame" json:"frame"`
	Action Action  `yaml:"action" json:"action"`
	Value  float64 `yaml:"value" json:"value"`
	// Rethermalize redraws velocities for the new v_max after a resize.
	Rethermalize bool `yaml:"rethermalize,omitempty" json:"rethermalize,omitempty"`
}

// Schedule is a named list of control changes loaded from YAML.
type Schedule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Events      []Spec `yaml:"events"`
}

func Load(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schedule %s: %w", path, err)
	}
	for i, ev := range s.Events {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
	}

	return &s, nil
}

func (s Spec) Validate() error {
	if s.Frame < 0 {
		return fmt.Errorf("%w: frame %d", dynamo.ErrParameterBounds, s.Frame)
	}
	switch s.Action {
	case ActionTemperature:
		if s.Value < MinVMax || s.Value > MaxVMax {
			return fmt.Errorf("%w: temperature v_max %.3f outside [%.1f, %.1f]", dynamo.ErrParameterBounds, s.Value, MinVMax, MaxVMax)
		}
	case ActionResize:
		if s.Value < MinScale || s.Value > MaxScale {
			return fmt.Errorf("%w: resize scale %.3f outside [%.1f, %.1f]", dynamo.ErrParameterBounds, s.Value, MinScale, MaxScale)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", dynamo.ErrParameterBounds, s.Action)
	}
	return nil
}

// Build turns specs into simulator events. Resizes are relative to base,
// the container the run started with.
func Build(specs []Spec, base dynamo.Box, baseVMax float64) ([]dynamo.Event, error) {
	events := make([]dynamo.Event, 0, len(specs))
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		switch s.Action {
		case ActionTemperature:
			events = append(events, &temperatureEvent{frame: s.Frame, vmax: s.Value})
		case ActionResize:
			events = append(events, &resizeEvent{
				frame:        s.Frame,
				scale:        s.Value,
				base:         base,
				baseVMax:     baseVMax,
				rethermalize: s.Rethermalize,
			})
		}
	}
	return events, nil
}

type temperatureEvent struct {
	frame int
	vmax  float64
}

func (e *temperatureEvent) Frame() int { return e.frame }

func (e *temperatureEvent) Apply(g *dynamo.Gas, rng *rand.Rand) error {
	return physics.SetTemperature(g, e.vmax, rng)
}

type resizeEvent struct {
	frame        int
	scale        float64
	base         dynamo.Box
	baseVMax     float64
	rethermalize bool
}

func (e *resizeEvent) Frame() int { return e.frame }

func (e *resizeEvent) Apply(g *dynamo.Gas, rng *rand.Rand) error {
	vmax, err := physics.Resize(g, e.scale, e.base, e.baseVMax)
	if err != nil {
		return err
	}
	if e.rethermalize {
		return physics.SetTemperature(g, vmax, rng)
	}
	return nil
}
