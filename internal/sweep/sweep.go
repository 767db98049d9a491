// Package sweep runs one configuration across a range of container sizes
// to trace the pressure-volume curve.
package sweep

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/experiment"
)

// Point is the outcome of one box scale.
type Point struct {
	Scale        float64 `json:"scale"`
	Volume       float64 `json:"volume"`
	MeanPressure float64 `json:"mean_pressure"`
	MeanEnergy   float64 `json:"mean_energy"`
	PV           float64 `json:"pv"`
	Checksum     uint64  `json:"checksum"`
}

type Sweep struct {
	cfg      *config.Config
	registry *experiment.Registry
	log      *zap.Logger
	limit    int
}

func New(cfg *config.Config, registry *experiment.Registry, log *zap.Logger) *Sweep {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweep{cfg: cfg, registry: registry, log: log, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit bounds the number of scales simulated at once.
func (s *Sweep) SetLimit(n int) {
	if n > 0 {
		s.limit = n
	}
}

// Scales returns n evenly spaced values over [lo, hi].
func Scales(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Run simulates every scale with the same seed and returns the points in
// the order of scales. The first failure cancels the remaining runs.
func (s *Sweep) Run(ctx context.Context, scales []float64) ([]Point, error) {
	for _, sc := range scales {
		if sc <= 0 {
			return nil, fmt.Errorf("%w: scale must be positive, got %f", dynamo.ErrParameterBounds, sc)
		}
	}

	points := make([]Point, len(scales))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.limit)

	for i, scale := range scales {
		eg.Go(func() error {
			p, err := s.runOne(ctx, scale)
			if err != nil {
				return fmt.Errorf("scale %.3f: %w", scale, err)
			}
			points[i] = p
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func (s *Sweep) runOne(ctx context.Context, scale float64) (Point, error) {
	cfg := s.cfg.Clone()
	cfg.BoxHalf *= scale

	exp := experiment.New(cfg, s.registry, s.log.With(zap.Float64("scale", scale)))
	if err := exp.Setup(); err != nil {
		return Point{}, err
	}
	res, err := exp.Run(ctx)
	if err != nil {
		return Point{}, err
	}

	vol := res.Final.Box.Volume()
	p := Point{
		Scale:        scale,
		Volume:       vol,
		MeanPressure: res.Metrics["mean_pressure"],
		MeanEnergy:   res.Metrics["mean_energy"],
		PV:           res.Metrics["pv"],
		Checksum:     res.Checksum,
	}
	s.log.Debug("sweep point",
		zap.Float64("scale", scale),
		zap.Float64("volume", vol),
		zap.Float64("mean_pressure", p.MeanPressure),
	)
	return p, nil
}

// FitBoyle fits P = k / V by least squares and returns k with the
// coefficient of determination. Fewer than two points yield zeros.
func FitBoyle(points []Point) (k, r2 float64) {
	if len(points) < 2 {
		return 0, 0
	}

	var num, den float64
	for _, p := range points {
		inv := 1 / p.Volume
		num += p.MeanPressure * inv
		den += inv * inv
	}
	if den == 0 {
		return 0, 0
	}
	k = num / den

	mean := 0.0
	for _, p := range points {
		mean += p.MeanPressure
	}
	mean /= float64(len(points))

	var ssRes, ssTot float64
	for _, p := range points {
		d := p.MeanPressure - k/p.Volume
		ssRes += d * d
		e := p.MeanPressure - mean
		ssTot += e * e
	}
	if ssTot == 0 {
		return k, 1
	}
	return k, 1 - ssRes/ssTot
}
