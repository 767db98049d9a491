package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	dataDir string
	verbose bool
	logger  = zap.NewNop()

	// run parameters
	preset          string
	configFile      string
	scheduleFile    string
	particles       int
	boxHalf         float64
	vmax            float64
	mass            float64
	collisions      bool
	radius          float64
	collider        string
	approachingOnly bool
	frames          int
	dt              float64
	timeScale       float64
	seed            int64
	bins            int
	slices          int
	workers         int
	showProgress    bool
	saveConfig      string

	// inspection
	outFile    string
	series     string
	snapWidth  int
	snapHeight int

	// sweeps and ensembles
	scaleMin float64
	scaleMax float64
	points   int
	runs     int
	parallel int
	sizes    []int

	benchFrames int
	benchRadius float64
	benchSeed   int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "kinetic",
		Short:        "particle gas simulation lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinetic", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "show a progress view while running")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the effective config to this yaml file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "summarize a run and draw its final positions",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&snapWidth, "width", 60, "snapshot width in characters")
	showCmd.Flags().IntVar(&snapHeight, "height", 30, "snapshot height in characters")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy, pressure and center of mass",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	histCmd := &cobra.Command{
		Use:   "histogram [run_id]",
		Short: "plot the final speed distribution and X-slice profile",
		Args:  cobra.ExactArgs(1),
		RunE:  histogramRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&series, "series", "pressure", "series to analyze (pressure, energy, com_x, com_y, com_z, wall_hits, collisions)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and series as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the final particle state as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a perspective snapshot of the final state as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark collision sweeps over particle counts",
		Args:  cobra.NoArgs,
		RunE:  benchColliders,
	}
	benchCmd.Flags().IntSliceVar(&sizes, "sizes", []int{100, 500, 1000, 2000}, "particle counts")
	benchCmd.Flags().IntVar(&benchFrames, "frames", 50, "frames per measurement")
	benchCmd.Flags().Float64Var(&benchRadius, "radius", 0.5, "collision radius")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 42, "random seed")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run one config with every collider and compare results",
		Args:  cobra.NoArgs,
		RunE:  compareColliders,
	}
	addRunFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "pressure-volume sweep over box scales",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&scaleMin, "min", 0.5, "smallest box scale")
	sweepCmd.Flags().Float64Var(&scaleMax, "max", 2, "largest box scale")
	sweepCmd.Flags().IntVar(&points, "points", 7, "number of scales")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default GOMAXPROCS)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independent seeds and aggregate their metrics",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default GOMAXPROCS)")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, histCmd, analyzeCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd,
		benchCmd, compareCmd, sweepCmd, ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "collision", "preset configuration")
	f.StringVar(&configFile, "config", "", "config file path (yaml), overrides the preset")
	f.StringVar(&scheduleFile, "schedule", "", "schedule file path (yaml), replaces the configured events")
	f.IntVarP(&particles, "particles", "n", 100, "number of particles")
	f.Float64Var(&boxHalf, "box", 10, "half side of the box")
	f.Float64Var(&vmax, "vmax", 2, "initial velocity bound per component")
	f.Float64Var(&mass, "mass", 1, "particle mass")
	f.BoolVar(&collisions, "collisions", true, "resolve pairwise collisions")
	f.Float64Var(&radius, "radius", 0.5, "collision radius")
	f.StringVar(&collider, "collider", "grid", "collision sweep (pair, grid)")
	f.BoolVar(&approachingOnly, "approaching-only", false, "skip pairs that are already separating")
	f.IntVar(&frames, "frames", 5000, "frames to simulate")
	f.Float64Var(&dt, "dt", 1, "position step per frame")
	f.Float64Var(&timeScale, "time-scale", 0.05, "seconds per frame")
	f.Int64Var(&seed, "seed", 0, "random seed (default time based)")
	f.IntVar(&bins, "bins", 100, "speed histogram bins")
	f.IntVar(&slices, "slices", 100, "X-axis slices")
	f.IntVar(&workers, "workers", 0, "drift workers (default GOMAXPROCS)")
}
