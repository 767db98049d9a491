// Package physics implements the particle gas update step.
//
// One frame of the simulation is:
//
//   - [Drift]: pos += vel*dt for every particle
//   - [Reflect]: per-axis elastic reflection off the container walls
//   - [Collider]: pairwise elastic collisions between particles closer
//     than the collision radius
//
// [GasStepper] chains the three and implements [dynamo.Stepper].
//
// Two colliders are provided. [PairSweep] is the direct O(n^2) sweep over
// every pair i<j. [GridSweep] buckets particles into a uniform cell grid and
// only tests neighbouring cells; it resolves the same pairs in the same
// order, so both produce bit-identical states.
//
// # Controls
//
// [SetTemperature] redraws velocities for a new maximum speed and [Resize]
// rescales the container, adjusting speeds by the cube root of the volume
// ratio.
package physics
