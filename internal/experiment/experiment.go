package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/metrics"
	"github.com/san-kum/kinetic/internal/physics"
	"github.com/san-kum/kinetic/internal/schedule"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	log       *zap.Logger
	simulator *dynamo.Simulator
	gas       *dynamo.Gas
}

func New(cfg *config.Config, registry *Registry, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, registry: registry, log: log}
}

// Setup validates the config and builds the initial gas, stepper,
// metrics and scheduled events. The gas is drawn from cfg.Seed.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	stepper, err := e.stepper()
	if err != nil {
		return err
	}

	box := e.cfg.Box()
	events, err := schedule.Build(e.cfg.Schedule, box, e.cfg.VMax)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(e.cfg.Seed))
	e.gas = physics.Init(e.cfg.Particles, box, e.cfg.VMax, e.cfg.Mass, rng)

	e.simulator = dynamo.New(stepper, e.log)
	for _, m := range e.registry.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	e.simulator.AddEvents(events...)

	e.log.Debug("experiment ready",
		zap.String("preset", e.cfg.Preset),
		zap.Int("particles", e.cfg.Particles),
		zap.Bool("collisions", e.cfg.Collisions),
		zap.String("collider", e.cfg.Collider),
		zap.Int("events", len(events)),
		zap.Int64("seed", e.cfg.Seed),
	)
	return nil
}

func (e *Experiment) stepper() (*physics.GasStepper, error) {
	step := &physics.GasStepper{Workers: e.cfg.Workers}
	if !e.cfg.Collisions {
		return step, nil
	}
	c, err := e.registry.GetCollider(e.cfg.Collider, e.cfg.ApproachingOnly)
	if err != nil {
		return nil, err
	}
	step.Collider = c
	step.Radius = e.cfg.Radius
	return step, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.gas, e.cfg.SimConfig())
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }

func (e *Experiment) InitialGas() *dynamo.Gas { return e.gas }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Factory adapts a config to dynamo.RunFactory for ensembles; each seed
// gets its own gas, stepper and metrics.
func Factory(cfg *config.Config, registry *Registry, log *zap.Logger) dynamo.RunFactory {
	if log == nil {
		log = zap.NewNop()
	}
	return func(seed int64) (*dynamo.Simulator, *dynamo.Gas, error) {
		c := cfg.Clone()
		c.Seed = seed
		exp := New(c, registry, log.With(zap.Int64("seed", seed)))
		if err := exp.Setup(); err != nil {
			return nil, nil, err
		}
		return exp.simulator, exp.gas, nil
	}
}

// ComputeDistributions snapshots g with the configured bin counts. Slices
// span the configured container, not a resized one.
func ComputeDistributions(cfg *config.Config, g *dynamo.Gas) (*metrics.Distributions, error) {
	return metrics.ComputeDistributions(g, cfg.Bins, cfg.Slices, cfg.Box())
}
