package dynamo

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Norm2() float64       { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }
func (v Vec3) Norm() float64        { return math.Sqrt(v.Norm2()) }

func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Box is the cube [Lo, Hi]^3.
type Box struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// CenteredBox returns the cube [-half, half]^3.
func CenteredBox(half float64) Box { return Box{Lo: -half, Hi: half} }

func (b Box) Side() float64   { return b.Hi - b.Lo }
func (b Box) Volume() float64 { s := b.Side(); return s * s * s }

func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Lo && p.X <= b.Hi &&
		p.Y >= b.Lo && p.Y <= b.Hi &&
		p.Z >= b.Lo && p.Z <= b.Hi
}

// Scaled returns the box with both bounds multiplied by s.
func (b Box) Scaled(s float64) Box { return Box{Lo: b.Lo * s, Hi: b.Hi * s} }

// Gas is the full particle state. Every particle shares the same mass.
type Gas struct {
	Pos  []Vec3
	Vel  []Vec3
	Mass float64
	Box  Box
	VMax float64
}

func NewGas(n int, box Box, mass float64) *Gas {
	return &Gas{
		Pos:  make([]Vec3, n),
		Vel:  make([]Vec3, n),
		Mass: mass,
		Box:  box,
	}
}

func (g *Gas) Len() int { return len(g.Pos) }

func (g *Gas) Clone() *Gas {
	c := &Gas{
		Pos:  make([]Vec3, len(g.Pos)),
		Vel:  make([]Vec3, len(g.Vel)),
		Mass: g.Mass,
		Box:  g.Box,
		VMax: g.VMax,
	}
	copy(c.Pos, g.Pos)
	copy(c.Vel, g.Vel)
	return c
}

func (g *Gas) IsValid() bool {
	for i := range g.Pos {
		if !g.Pos[i].IsValid() || !g.Vel[i].IsValid() {
			return false
		}
	}
	return true
}

// Fingerprint hashes the exact bit patterns of every position and velocity.
func (g *Gas) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	write := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	for i := range g.Pos {
		write(g.Pos[i].X)
		write(g.Pos[i].Y)
		write(g.Pos[i].Z)
		write(g.Vel[i].X)
		write(g.Vel[i].Y)
		write(g.Vel[i].Z)
	}
	return h.Sum64()
}

// StepStats counts the events produced by a single step.
type StepStats struct {
	WallHits   int
	Collisions int
}

type Stepper interface {
	Step(g *Gas, dt float64) StepStats
}

type Metric interface {
	Name() string
	Observe(g *Gas, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(frame int, g *Gas, t float64)
}

// Event is a scripted change applied before the step of Frame().
type Event interface {
	Frame() int
	Apply(g *Gas, rng *rand.Rand) error
}

type Config struct {
	Dt            float64
	Frames        int
	TimeScale     float64
	Seed          int64
	ValidateState bool
	Workers       int
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0,
		Frames:        100,
		TimeScale:     0.05,
		ValidateState: true,
	}
}

type Result struct {
	Times        []float64
	Energy       []float64
	Pressure     []float64
	CenterOfMass []Vec3
	WallHits     []int
	Collisions   []int
	Metrics      map[string]float64
	Final        *Gas
	FramesTaken  int
	Checksum     uint64
	Errors       []error
}

// KineticEnergy returns 0.5 * m * sum(|v|^2).
func (g *Gas) KineticEnergy() float64 {
	sum := 0.0
	for _, v := range g.Vel {
		sum += v.Norm2()
	}
	return 0.5 * g.Mass * sum
}

// Pressure is the ideal-gas estimate (2/3) * KE / V.
func (g *Gas) Pressure() float64 {
	vol := g.Box.Volume()
	if vol <= 0 {
		return 0
	}
	return (2.0 / 3.0) * g.KineticEnergy() / vol
}

func (g *Gas) CenterOfMass() Vec3 {
	if len(g.Pos) == 0 {
		return Vec3{}
	}
	var sum Vec3
	for _, p := range g.Pos {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(g.Pos)))
}

func (g *Gas) Momentum() Vec3 {
	var sum Vec3
	for _, v := range g.Vel {
		sum = sum.Add(v)
	}
	return sum.Scale(g.Mass)
}
