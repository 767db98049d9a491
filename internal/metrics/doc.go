// Package metrics provides gas diagnostics: scalar [dynamo.Metric]
// accumulators (mean energy, mean pressure, P·V, energy drift) and
// distribution snapshots (speed histogram, X-axis slice profile).
package metrics
