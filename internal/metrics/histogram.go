package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/kinetic/internal/dynamo"
)

// Histogram holds equal-width bin counts. Edges has len(Counts)+1 entries.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// Centers returns the midpoint of every bin.
func (h Histogram) Centers() []float64 {
	c := make([]float64, len(h.Counts))
	for i := range c {
		c[i] = (h.Edges[i] + h.Edges[i+1]) / 2
	}
	return c
}

func (h Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// binOf returns the bin of x given the bin edges, or -1 when x is outside.
// Bins are half-open except the last, which includes the upper edge. The
// computed index is corrected against the edges themselves, so a value on
// an interior edge always opens the bin above it.
func binOf(x float64, e []float64) int {
	bins := len(e) - 1
	lo, hi := e[0], e[bins]
	if x < lo || x > hi || math.IsNaN(x) {
		return -1
	}

	b := int((x - lo) * (float64(bins) / (hi - lo)))
	if b >= bins {
		b = bins - 1
	}
	if x < e[b] {
		b--
	} else if b < bins-1 && x >= e[b+1] {
		b++
	}
	return b
}

func edges(lo, hi float64, bins int) []float64 {
	e := make([]float64, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range e {
		e[i] = lo + float64(i)*step
	}
	e[bins] = hi
	return e
}

// NewHistogram counts values into bins equal-width bins over [lo, hi].
// When lo == hi the range widens to [lo-0.5, hi+0.5].
func NewHistogram(values []float64, bins int, lo, hi float64) (Histogram, error) {
	if bins <= 0 {
		return Histogram{}, fmt.Errorf("%w: bins must be positive, got %d", dynamo.ErrParameterBounds, bins)
	}
	if hi < lo {
		return Histogram{}, fmt.Errorf("%w: range [%v, %v]", dynamo.ErrParameterBounds, lo, hi)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	h := Histogram{Edges: edges(lo, hi, bins), Counts: make([]int, bins)}
	for _, x := range values {
		if b := binOf(x, h.Edges); b >= 0 {
			h.Counts[b]++
		}
	}
	return h, nil
}

func Speeds(g *dynamo.Gas) []float64 {
	s := make([]float64, g.Len())
	for i, v := range g.Vel {
		s[i] = v.Norm()
	}
	return s
}

// SpeedHistogram bins particle speeds over [min speed, max speed].
func SpeedHistogram(g *dynamo.Gas, bins int) (Histogram, error) {
	speeds := Speeds(g)
	if len(speeds) == 0 {
		return NewHistogram(nil, bins, 0, 0)
	}
	lo, hi := speeds[0], speeds[0]
	for _, s := range speeds[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	return NewHistogram(speeds, bins, lo, hi)
}

// SliceProfile is the particle count and mean speed in equal-width slabs
// along the X axis.
type SliceProfile struct {
	Histogram
	MeanSpeed []float64 `json:"mean_speed"`
}

// NewSliceProfile slices [lo, hi] along X. Empty slices report a mean
// speed of zero. Count and mean use the same bin membership.
func NewSliceProfile(g *dynamo.Gas, slices int, lo, hi float64) (SliceProfile, error) {
	xs := make([]float64, g.Len())
	for i, p := range g.Pos {
		xs[i] = p.X
	}

	h, err := NewHistogram(xs, slices, lo, hi)
	if err != nil {
		return SliceProfile{}, err
	}
	sum := make([]float64, slices)
	for i, x := range xs {
		if b := binOf(x, h.Edges); b >= 0 {
			sum[b] += g.Vel[i].Norm()
		}
	}

	mean := make([]float64, slices)
	for b := range mean {
		if h.Counts[b] > 0 {
			mean[b] = sum[b] / float64(h.Counts[b])
		}
	}

	return SliceProfile{Histogram: h, MeanSpeed: mean}, nil
}

// Distributions is the end-of-run snapshot of a gas.
type Distributions struct {
	Speed  Histogram    `json:"speed"`
	Slices SliceProfile `json:"slices"`
}

// ComputeDistributions bins speeds over their own range and X positions
// over the given box.
func ComputeDistributions(g *dynamo.Gas, bins, slices int, box dynamo.Box) (*Distributions, error) {
	speed, err := SpeedHistogram(g, bins)
	if err != nil {
		return nil, err
	}
	profile, err := NewSliceProfile(g, slices, box.Lo, box.Hi)
	if err != nil {
		return nil, err
	}
	return &Distributions{Speed: speed, Slices: profile}, nil
}
