package dynamo

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"
)

type Simulator struct {
	stepper   Stepper
	metrics   []Metric
	observers []Observer
	events    []Event
	log       *zap.Logger
}

func New(stepper Stepper, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		events:    make([]Event, 0),
		log:       log,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// AddEvents schedules control changes. Events sharing a frame keep their
// insertion order.
func (s *Simulator) AddEvents(evs ...Event) {
	s.events = append(s.events, evs...)
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].Frame() < s.events[j].Frame()
	})
}

// Run advances a copy of g0 for cfg.Frames frames. The state is recorded
// after each step, so the first sample is at t=0 after one step. On
// cancellation the partial result is returned with the context error.
func (s *Simulator) Run(ctx context.Context, g0 *Gas, cfg Config) (*Result, error) {
	if err := validate(g0, cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Times:        make([]float64, 0, cfg.Frames),
		Energy:       make([]float64, 0, cfg.Frames),
		Pressure:     make([]float64, 0, cfg.Frames),
		CenterOfMass: make([]Vec3, 0, cfg.Frames),
		WallHits:     make([]int, 0, cfg.Frames),
		Collisions:   make([]int, 0, cfg.Frames),
		Metrics:      make(map[string]float64),
		Errors:       make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	g := g0.Clone()
	rng := rand.New(rand.NewSource(cfg.Seed + 1))
	next := 0

	s.log.Debug("run started",
		zap.Int("particles", g.Len()),
		zap.Int("frames", cfg.Frames),
		zap.Float64("volume", g.Box.Volume()),
	)

	defer func() {
		result.Final = g
		result.Checksum = g.Fingerprint()
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for frame := 0; frame < cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			s.log.Warn("run canceled", zap.Int("frame", frame))
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		t := float64(frame) * cfg.TimeScale

		for next < len(s.events) && s.events[next].Frame() <= frame {
			ev := s.events[next]
			next++
			if ev.Frame() < frame {
				continue
			}
			if err := ev.Apply(g, rng); err != nil {
				return result, &SimulationError{Frame: frame, Time: t, Wrapped: err}
			}
			s.log.Debug("event applied", zap.Int("frame", frame), zap.Float64("volume", g.Box.Volume()))
		}

		stats := s.stepper.Step(g, cfg.Dt)

		if cfg.ValidateState && !g.IsValid() {
			err := &SimulationError{Frame: frame, Time: t, Wrapped: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.log.Error("invalid state", zap.Int("frame", frame), zap.Float64("t", t))
			break
		}

		result.FramesTaken++
		result.Times = append(result.Times, t)
		result.Energy = append(result.Energy, g.KineticEnergy())
		result.Pressure = append(result.Pressure, g.Pressure())
		result.CenterOfMass = append(result.CenterOfMass, g.CenterOfMass())
		result.WallHits = append(result.WallHits, stats.WallHits)
		result.Collisions = append(result.Collisions, stats.Collisions)

		for _, m := range s.metrics {
			m.Observe(g, t)
		}
		for _, obs := range s.observers {
			obs.OnFrame(frame, g, t)
		}
	}

	s.log.Debug("run finished", zap.Int("frames", result.FramesTaken))
	return result, nil
}

func validate(g *Gas, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrParameterBounds, cfg.Dt)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrParameterBounds, cfg.Frames)
	}
	if cfg.TimeScale <= 0 {
		return fmt.Errorf("%w: time scale must be positive, got %f", ErrParameterBounds, cfg.TimeScale)
	}
	if g == nil || g.Len() == 0 {
		return ErrEmptyGas
	}
	if len(g.Vel) != len(g.Pos) {
		return fmt.Errorf("%w: %d positions, %d velocities", ErrParameterBounds, len(g.Pos), len(g.Vel))
	}
	if g.Box.Side() <= 0 {
		return ErrDegenerateBox
	}
	return nil
}

// RunWithCallback steps without recording or scheduled events; the
// callback sees the state after every frame and stops the run by
// returning false.
func (s *Simulator) RunWithCallback(ctx context.Context, g0 *Gas, cfg Config, callback func(frame int, g *Gas, t float64) bool) error {
	if err := validate(g0, cfg); err != nil {
		return err
	}

	g := g0.Clone()
	for frame := 0; frame < cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.stepper.Step(g, cfg.Dt)
		t := float64(frame) * cfg.TimeScale

		if cfg.ValidateState && !g.IsValid() {
			return &SimulationError{Frame: frame, Time: t, Wrapped: ErrInvalidState}
		}
		if !callback(frame, g, t) {
			return nil
		}
	}

	return nil
}
