package dynamo

import (
	"context"
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// driftStepper moves particles without walls.
type driftStepper struct{}

func (driftStepper) Step(g *Gas, dt float64) StepStats {
	for i := range g.Pos {
		g.Pos[i] = g.Pos[i].Add(g.Vel[i].Scale(dt))
	}
	return StepStats{WallHits: 1}
}

type poisonStepper struct{ at, calls int }

func (p *poisonStepper) Step(g *Gas, dt float64) StepStats {
	p.calls++
	if p.calls > p.at {
		g.Pos[0].X = math.NaN()
	}
	return StepStats{}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string          { return "count" }
func (c *countMetric) Observe(*Gas, float64) { c.n++ }
func (c *countMetric) Value() float64        { return float64(c.n) }
func (c *countMetric) Reset()                { c.n = 0 }

type frameRecorder struct{ frames []int }

func (f *frameRecorder) OnFrame(frame int, _ *Gas, _ float64) { f.frames = append(f.frames, frame) }

type boostEvent struct {
	at     int
	factor float64
}

func (b boostEvent) Frame() int { return b.at }
func (b boostEvent) Apply(g *Gas, _ *rand.Rand) error {
	for i := range g.Vel {
		g.Vel[i] = g.Vel[i].Scale(b.factor)
	}
	return nil
}

type failingEvent struct{}

func (failingEvent) Frame() int                    { return 1 }
func (failingEvent) Apply(*Gas, *rand.Rand) error { return ErrParameterBounds }

func singleParticle() *Gas {
	g := NewGas(1, CenteredBox(10), 1)
	g.Vel[0] = Vec3{1, 0, 0}
	return g
}

var _ = Describe("Simulator", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = DefaultConfig()
		cfg.Frames = 10
	})

	It("records one sample per frame", func() {
		sim := New(driftStepper{}, nil)
		res, err := sim.Run(context.Background(), singleParticle(), cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.FramesTaken).To(Equal(10))
		Expect(res.Times).To(HaveLen(10))
		Expect(res.Energy).To(HaveLen(10))
		Expect(res.Pressure).To(HaveLen(10))
		Expect(res.WallHits).To(HaveLen(10))
		Expect(res.Times[0]).To(Equal(0.0))
		Expect(res.Times[9]).To(BeNumerically("~", 0.45, 1e-12))
	})

	It("does not mutate the initial state", func() {
		g := singleParticle()
		_, err := New(driftStepper{}, nil).Run(context.Background(), g, cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(g.Pos[0]).To(Equal(Vec3{}))
	})

	It("records the state after each step", func() {
		res, err := New(driftStepper{}, nil).Run(context.Background(), singleParticle(), cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.CenterOfMass[0].X).To(Equal(1.0))
		Expect(res.Final.Pos[0].X).To(Equal(10.0))
		Expect(res.Checksum).To(Equal(res.Final.Fingerprint()))
	})

	DescribeTable("rejects invalid configs",
		func(mutate func(*Config, *Gas), target error) {
			g := singleParticle()
			mutate(&cfg, g)
			_, err := New(driftStepper{}, nil).Run(context.Background(), g, cfg)
			Expect(err).To(MatchError(target))
		},
		Entry("zero dt", func(c *Config, _ *Gas) { c.Dt = 0 }, ErrParameterBounds),
		Entry("negative frames", func(c *Config, _ *Gas) { c.Frames = -1 }, ErrParameterBounds),
		Entry("zero time scale", func(c *Config, _ *Gas) { c.TimeScale = 0 }, ErrParameterBounds),
		Entry("degenerate box", func(_ *Config, g *Gas) { g.Box = Box{Lo: 1, Hi: 1} }, ErrDegenerateBox),
	)

	It("rejects an empty gas", func() {
		_, err := New(driftStepper{}, nil).Run(context.Background(), NewGas(0, CenteredBox(1), 1), cfg)
		Expect(err).To(MatchError(ErrEmptyGas))
	})

	It("stops on invalid state", func() {
		res, err := New(&poisonStepper{at: 3}, nil).Run(context.Background(), singleParticle(), cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.FramesTaken).To(Equal(3))
		Expect(res.Errors).To(HaveLen(1))

		var simErr *SimulationError
		Expect(errors.As(res.Errors[0], &simErr)).To(BeTrue())
		Expect(simErr.Frame).To(Equal(3))
		Expect(simErr).To(MatchError(ErrInvalidState))
	})

	It("returns a partial result on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := New(driftStepper{}, nil).Run(ctx, singleParticle(), cfg)
		Expect(err).To(MatchError(ErrContextCanceled))
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.FramesTaken).To(Equal(0))
	})

	It("feeds metrics and observers every frame", func() {
		sim := New(driftStepper{}, nil)
		m := &countMetric{}
		rec := &frameRecorder{}
		sim.AddMetric(m)
		sim.AddObserver(rec)

		res, err := sim.Run(context.Background(), singleParticle(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 10.0))
		Expect(rec.frames).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	})

	It("applies scheduled events before the step of their frame", func() {
		sim := New(driftStepper{}, nil)
		sim.AddEvents(boostEvent{at: 5, factor: 2}, boostEvent{at: 2, factor: 3})

		res, err := sim.Run(context.Background(), singleParticle(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Energy[1]).To(BeNumerically("~", 0.5, 1e-12))
		Expect(res.Energy[2]).To(BeNumerically("~", 4.5, 1e-12))
		Expect(res.Energy[5]).To(BeNumerically("~", 18, 1e-12))
	})

	It("wraps event failures with frame context", func() {
		sim := New(driftStepper{}, nil)
		sim.AddEvents(failingEvent{})

		res, err := sim.Run(context.Background(), singleParticle(), cfg)
		Expect(err).To(MatchError(ErrParameterBounds))
		Expect(res.FramesTaken).To(Equal(1))
	})

	It("stops early when the callback returns false", func() {
		seen := 0
		err := New(driftStepper{}, nil).RunWithCallback(context.Background(), singleParticle(), cfg,
			func(frame int, g *Gas, t float64) bool {
				seen++
				return frame < 4
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal(5))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs every member with its own seed", func() {
		build := func(seed int64) (*Simulator, *Gas, error) {
			g := singleParticle()
			g.Vel[0].X = float64(seed)
			return New(driftStepper{}, nil), g, nil
		}

		cfg := DefaultConfig()
		cfg.Frames = 5
		ens := NewEnsemble(build, 4, 10)
		ens.SetLimit(2)

		results, err := ens.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, r := range results {
			v := float64(10 + i)
			Expect(r.Energy[0]).To(BeNumerically("~", 0.5*v*v, 1e-9))
		}
	})

	It("propagates the first build failure", func() {
		boom := errors.New("boom")
		build := func(seed int64) (*Simulator, *Gas, error) {
			if seed == 2 {
				return nil, nil, boom
			}
			return New(driftStepper{}, nil), singleParticle(), nil
		}

		_, err := NewEnsemble(build, 4, 0).Run(context.Background(), DefaultConfig())
		Expect(err).To(MatchError(boom))
	})
})
