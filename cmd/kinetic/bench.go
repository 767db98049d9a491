package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/experiment"
	"github.com/san-kum/kinetic/internal/physics"
	"github.com/san-kum/kinetic/internal/sweep"
	"github.com/san-kum/kinetic/internal/viz"
)

type countingStepper struct {
	dynamo.Stepper
	collisions int
}

func (c *countingStepper) Step(g *dynamo.Gas, dt float64) dynamo.StepStats {
	stats := c.Stepper.Step(g, dt)
	c.collisions += stats.Collisions
	return stats
}

func benchColliders(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	box := dynamo.CenteredBox(config.DefaultBoxHalf)
	cfg := dynamo.DefaultConfig()
	cfg.Frames = benchFrames

	fmt.Printf("benchmarking colliders, %d frames, radius %g\n\n", benchFrames, benchRadius)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tCOLLIDER\tTIME\tFRAMES/SEC\tCOLLISIONS")

	for _, n := range sizes {
		g0 := physics.Init(n, box, config.DefaultVMax, config.DefaultMass, rand.New(rand.NewSource(benchSeed)))

		for _, name := range registry.ListColliders() {
			c, err := registry.GetCollider(name, false)
			if err != nil {
				return err
			}
			step := &countingStepper{Stepper: physics.NewGasStepper(c, benchRadius)}
			sim := dynamo.New(step, logger)

			start := time.Now()
			err = sim.RunWithCallback(context.Background(), g0, cfg, func(frame int, g *dynamo.Gas, t float64) bool {
				return true
			})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%s\t%v\t%.0f\t%d\n",
				n, name, elapsed.Truncate(time.Microsecond), float64(benchFrames)/elapsed.Seconds(), step.collisions)
		}
	}

	return w.Flush()
}

func compareColliders(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Collisions {
		return fmt.Errorf("compare needs collisions enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLLIDER\tTIME\tCOLLISIONS\tMEAN KE\tENERGY DRIFT\tCHECKSUM")

	checksums := make(map[uint64]bool)
	for _, name := range registry.ListColliders() {
		c := cfg.Clone()
		c.Collider = name

		exp := experiment.New(c, registry, logger.With(zap.String("collider", name)))
		if err := exp.Setup(); err != nil {
			return err
		}

		start := time.Now()
		res, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		total := 0
		for _, n := range res.Collisions {
			total += n
		}
		checksums[res.Checksum] = true

		fmt.Fprintf(w, "%s\t%v\t%d\t%.6g\t%.3g\t%016x\n",
			name, elapsed.Truncate(time.Millisecond), total,
			res.Metrics["mean_energy"], res.Metrics["energy_drift"], res.Checksum)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(checksums) == 1 {
		fmt.Println("\nfinal states identical")
	} else {
		fmt.Println("\nfinal states differ")
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if points <= 0 {
		return fmt.Errorf("%w: points must be positive", dynamo.ErrParameterBounds)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := sweep.New(cfg, experiment.NewRegistry(), logger)
	s.SetLimit(parallel)

	scales := sweep.Scales(scaleMin, scaleMax, points)
	fmt.Printf("sweeping %d scales of %s (%d particles, %d frames)\n\n", len(scales), cfg.Preset, cfg.Particles, cfg.Frames)

	start := time.Now()
	results, err := s.Run(ctx, scales)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCALE\tVOLUME\tMEAN P\tMEAN KE\tP*V\t2/3 KE")
	for _, p := range results {
		fmt.Fprintf(w, "%.3f\t%.1f\t%.6g\t%.6g\t%.6g\t%.6g\n",
			p.Scale, p.Volume, p.MeanPressure, p.MeanEnergy, p.PV, 2.0/3.0*p.MeanEnergy)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	k, r2 := sweep.FitBoyle(results)
	fmt.Println()
	fmt.Println(viz.Summary("boyle fit P = k/V", []viz.Row{
		viz.F("k", k),
		viz.F("r^2", r2),
		{Label: "elapsed", Value: time.Since(start).Truncate(time.Millisecond).String()},
	}))
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if runs <= 0 {
		return fmt.Errorf("%w: runs must be positive", dynamo.ErrParameterBounds)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens := dynamo.NewEnsemble(experiment.Factory(cfg, experiment.NewRegistry(), logger), runs, cfg.Seed)
	ens.SetLimit(parallel)

	fmt.Printf("running %d seeds of %s from seed %d\n\n", runs, cfg.Preset, cfg.Seed)
	start := time.Now()
	results, err := ens.Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}

	names := []string{"mean_energy", "mean_pressure", "pv", "energy_drift"}
	rows := make([]viz.Row, 0, len(names)+1)
	for _, name := range names {
		mean, std := meanStd(results, name)
		rows = append(rows, viz.Row{Label: name, Value: fmt.Sprintf("%.6g ± %.3g", mean, std)})
	}
	rows = append(rows, viz.Row{Label: "elapsed", Value: time.Since(start).Truncate(time.Millisecond).String()})
	fmt.Println(viz.Summary(fmt.Sprintf("ensemble of %d", len(results)), rows))
	return nil
}

func meanStd(results []*dynamo.Result, metric string) (mean, std float64) {
	if len(results) == 0 {
		return 0, 0
	}
	for _, r := range results {
		mean += r.Metrics[metric]
	}
	mean /= float64(len(results))
	for _, r := range results {
		d := r.Metrics[metric] - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(results)))
}
