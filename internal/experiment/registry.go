package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/metrics"
	"github.com/san-kum/kinetic/internal/physics"
)

type Registry struct {
	colliders map[string]func(approachingOnly bool) physics.Collider
}

func NewRegistry() *Registry {
	r := &Registry{
		colliders: make(map[string]func(bool) physics.Collider),
	}

	r.colliders["pair"] = func(approachingOnly bool) physics.Collider {
		return &physics.PairSweep{ApproachingOnly: approachingOnly}
	}
	r.colliders["grid"] = func(approachingOnly bool) physics.Collider {
		return &physics.GridSweep{ApproachingOnly: approachingOnly}
	}

	return r
}

func (r *Registry) GetCollider(name string, approachingOnly bool) (physics.Collider, error) {
	fn, ok := r.colliders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collider %q", dynamo.ErrParameterBounds, name)
	}
	return fn(approachingOnly), nil
}

func (r *Registry) ListColliders() []string {
	names := make([]string, 0, len(r.colliders))
	for name := range r.colliders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewMeanEnergy(),
		metrics.NewMeanPressure(),
		metrics.NewPV(),
		metrics.NewEnergyDrift(),
	}
}
