// Package dynamo provides the core primitives for particle gas simulation.
//
// The package defines the fundamental types shared by every other package:
//
//   - [Vec3]: three-component vector
//   - [Box]: cubic container [Lo, Hi]^3
//   - [Gas]: particle positions, velocities and container
//   - [Stepper]: advances a gas by one frame
//   - [Simulator]: orchestrates a run and records diagnostics
//
// # Example
//
//	g := physics.Init(100, dynamo.CenteredBox(10), 2, rng)
//	step := physics.NewGasStepper(physics.NewPairSweep(), 0.5)
//	sim := dynamo.New(step, logger)
//	result, _ := sim.Run(ctx, g, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel runs use the
// [Ensemble] type, which builds an independent simulator per run.
package dynamo
