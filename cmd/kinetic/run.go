package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/experiment"
	"github.com/san-kum/kinetic/internal/schedule"
	"github.com/san-kum/kinetic/internal/storage"
	"github.com/san-kum/kinetic/internal/viz"
)

// buildConfig resolves preset, then config file, then explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.GetPreset(preset)
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	}

	if scheduleFile != "" {
		s, err := schedule.Load(scheduleFile)
		if err != nil {
			return nil, err
		}
		cfg.Schedule = s.Events
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("box") {
		cfg.BoxHalf = boxHalf
	}
	if flags.Changed("vmax") {
		cfg.VMax = vmax
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("collisions") {
		cfg.Collisions = collisions
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("collider") {
		cfg.Collider = collider
	}
	if flags.Changed("approaching-only") {
		cfg.ApproachingOnly = approachingOnly
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time-scale") {
		cfg.TimeScale = timeScale
	}
	if flags.Changed("bins") {
		cfg.Bins = bins
	}
	if flags.Changed("slices") {
		cfg.Slices = slices
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	} else if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d particles, %d frames, seed %d\n", cfg.Preset, cfg.Particles, cfg.Frames, cfg.Seed)
	start := time.Now()

	var result *dynamo.Result
	if showProgress {
		result, err = runWithProgress(ctx, exp)
	} else {
		result, err = exp.Run(ctx)
	}
	elapsed := time.Since(start)

	// a canceled run is still stored with the frames it reached
	if err != nil && !errors.Is(err, dynamo.ErrContextCanceled) {
		return err
	}
	if result == nil || result.FramesTaken == 0 {
		if err != nil {
			return err
		}
		return errors.New("no frames simulated")
	}

	dist, derr := experiment.ComputeDistributions(cfg, result.Final)
	if derr != nil {
		return derr
	}

	runID, serr := st.Save(cfg, result, dist)
	if serr != nil {
		return serr
	}

	logger.Info("run stored",
		zap.String("run_id", runID),
		zap.Int("frames", result.FramesTaken),
		zap.Duration("elapsed", elapsed),
	)

	rows := []viz.Row{
		{Label: "run id", Value: runID},
		{Label: "frames", Value: fmt.Sprintf("%d/%d", result.FramesTaken, cfg.Frames)},
		{Label: "elapsed", Value: elapsed.Truncate(time.Millisecond).String()},
		{Label: "checksum", Value: fmt.Sprintf("%016x", result.Checksum)},
	}
	rows = append(rows, metricRows(result.Metrics)...)
	fmt.Println(viz.Summary("completed", rows))

	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", e)
	}
	return err
}

func metricRows(m map[string]float64) []viz.Row {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]viz.Row, len(names))
	for i, name := range names {
		rows[i] = viz.F(name, m[name])
	}
	return rows
}

// runWithProgress runs exp behind a Bubble Tea progress view. Quitting the
// view cancels the run.
func runWithProgress(ctx context.Context, exp *experiment.Experiment) (*dynamo.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := exp.Config().Frames
	p := tea.NewProgram(viz.NewProgressModel(exp.Config().Preset, total, cancel))
	exp.Simulator().AddObserver(viz.NewProgressObserver(p, max(total/200, 1), total))

	type outcome struct {
		result *dynamo.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := exp.Run(ctx)
		done <- outcome{res, err}
		p.Send(viz.DoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		out := <-done
		return out.result, errors.Join(err, out.err)
	}

	out := <-done
	return out.result, out.err
}
