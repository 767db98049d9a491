package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/kinetic/internal/analysis"
	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/metrics"
	"github.com/san-kum/kinetic/internal/storage"
	"github.com/san-kum/kinetic/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tPARTICLES\tFRAMES\tCOLLIDER\tMEAN P")

	for _, run := range runs {
		coll := "-"
		if run.Collisions {
			coll = run.Collider
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%s\t%.4g\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.FramesTaken,
			run.Frames,
			coll,
			run.Metrics["mean_pressure"],
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	rows := []viz.Row{
		{Label: "preset", Value: meta.Preset},
		{Label: "time", Value: meta.Timestamp.Format("2006-01-02 15:04:05")},
		{Label: "seed", Value: fmt.Sprint(meta.Seed)},
		{Label: "particles", Value: fmt.Sprint(meta.Particles)},
		{Label: "box", Value: fmt.Sprintf("[%g, %g]^3", meta.Box.Lo, meta.Box.Hi)},
		{Label: "final box", Value: fmt.Sprintf("[%g, %g]^3", meta.FinalBox.Lo, meta.FinalBox.Hi)},
		{Label: "v_max", Value: fmt.Sprint(meta.VMax)},
		{Label: "collisions", Value: fmt.Sprint(meta.Collisions)},
		{Label: "frames", Value: fmt.Sprintf("%d/%d", meta.FramesTaken, meta.Frames)},
		{Label: "events", Value: fmt.Sprint(meta.Events)},
		{Label: "checksum", Value: meta.Checksum},
	}
	if meta.Collisions {
		rows = append(rows, viz.Row{Label: "collider", Value: fmt.Sprintf("%s r=%g", meta.Collider, meta.Radius)})
	}
	rows = append(rows, metricRows(meta.Metrics)...)
	fmt.Println(viz.Summary(meta.ID, rows))

	g, err := st.LoadFinal(meta.ID)
	if err != nil {
		return err
	}
	com := g.CenterOfMass()
	fmt.Printf("\nfinal positions, XY plane (center of mass %.3f, %.3f, %.3f)\n", com.X, com.Y, com.Z)
	fmt.Print(viz.Projection(g, meta.Box, snapWidth, snapHeight).String())
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	s, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}
	if len(s.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d (t = %.2f..%.2f s)\n\n", len(s.Times), s.Times[0], s.Times[len(s.Times)-1])

	fmt.Println(viz.SeriesChart(s.Energy, "kinetic energy"))
	fmt.Println()
	fmt.Println(viz.SeriesChart(s.Pressure, "pressure"))
	fmt.Println()

	xs := make([]float64, len(s.CenterOfMass))
	ys := make([]float64, len(s.CenterOfMass))
	zs := make([]float64, len(s.CenterOfMass))
	for i, c := range s.CenterOfMass {
		xs[i], ys[i], zs[i] = c.X, c.Y, c.Z
	}
	fmt.Println(viz.SeriesCharts("center of mass (x blue, y red, z green)", xs, ys, zs))
	fmt.Println()

	if meta.Collisions {
		counts := make([]float64, len(s.Collisions))
		for i, c := range s.Collisions {
			counts[i] = float64(c)
		}
		fmt.Println(viz.SeriesChart(counts, "collisions per frame"))
		fmt.Println()
	}

	return nil
}

// loadDistributions prefers the stored snapshot and recomputes it from
// final.csv for runs saved without one.
func loadDistributions(st *storage.Store, meta *storage.RunMetadata) (*metrics.Distributions, error) {
	dist, err := st.LoadDistributions(meta.ID)
	if err == nil {
		return dist, nil
	}
	if !errors.Is(err, dynamo.ErrRunNotFound) {
		return nil, err
	}

	g, err := st.LoadFinal(meta.ID)
	if err != nil {
		return nil, err
	}
	return metrics.ComputeDistributions(g, config.DefaultBins, config.DefaultSlices, meta.Box)
}

func histogramRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	dist, err := loadDistributions(st, meta)
	if err != nil {
		return err
	}

	sp := dist.Speed
	fmt.Printf("run: %s (%d particles)\n\n", meta.ID, dist.Slices.Total())
	fmt.Println(viz.HistogramChart(viz.Counts(sp),
		fmt.Sprintf("speed distribution, %d bins over [%.3f, %.3f]", len(sp.Counts), sp.Edges[0], sp.Edges[len(sp.Edges)-1])))
	fmt.Println()

	sl := dist.Slices
	fmt.Println(viz.HistogramChart(viz.Counts(sl.Histogram),
		fmt.Sprintf("particles per X slice, %d slices over [%g, %g]", len(sl.Counts), sl.Edges[0], sl.Edges[len(sl.Edges)-1])))
	fmt.Println()
	fmt.Println(viz.HistogramChart(sl.MeanSpeed, "mean speed per X slice"))
	return nil
}

func seriesByName(s *storage.Series, name string) ([]float64, error) {
	ints := func(v []int) []float64 {
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out
	}
	com := func(pick func(dynamo.Vec3) float64) []float64 {
		out := make([]float64, len(s.CenterOfMass))
		for i, c := range s.CenterOfMass {
			out[i] = pick(c)
		}
		return out
	}

	switch name {
	case "pressure":
		return s.Pressure, nil
	case "energy":
		return s.Energy, nil
	case "com_x":
		return com(func(v dynamo.Vec3) float64 { return v.X }), nil
	case "com_y":
		return com(func(v dynamo.Vec3) float64 { return v.Y }), nil
	case "com_z":
		return com(func(v dynamo.Vec3) float64 { return v.Z }), nil
	case "wall_hits":
		return ints(s.WallHits), nil
	case "collisions":
		return ints(s.Collisions), nil
	}
	return nil, fmt.Errorf("unknown series: %s", name)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	s, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}

	data, err := seriesByName(s, series)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("not enough samples: %d", len(data))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("series: %s, %d samples every %.3f s\n\n", series, len(data), meta.TimeScale)

	ps := analysis.PowerSpectrum(analysis.Detrend(data))
	fmt.Println(viz.HistogramChart(ps[1:max(len(ps)/4, 2)], "power spectrum ("+series+")"))
	fmt.Println()

	freq, power := analysis.DominantFrequency(data, meta.TimeScale)
	fmt.Printf("dominant frequency: %.3f hz (magnitude %.4g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARTICLES\tV_MAX\tCOLLISIONS\tFRAMES\tEVENTS")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		coll := "off"
		if cfg.Collisions {
			coll = fmt.Sprintf("%s r=%g", cfg.Collider, cfg.Radius)
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%s\t%d\t%d\n", name, cfg.Particles, cfg.VMax, coll, cfg.Frames, len(cfg.Schedule))
	}
	return w.Flush()
}
