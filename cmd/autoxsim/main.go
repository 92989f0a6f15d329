package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/autoxsim/internal/analysis"
	"github.com/san-kum/autoxsim/internal/automation"
	"github.com/san-kum/autoxsim/internal/config"
	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/experiment"
	"github.com/san-kum/autoxsim/internal/kinetics"
	"github.com/san-kum/autoxsim/internal/storage"
	"github.com/san-kum/autoxsim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	method     string
	rtol       float64
	atol       float64
	duration   float64
	samples    int
	maxSteps   int
	plots      []string
	noSave     bool
	noPlots    bool
	view       bool
	ascii      bool
	width      int
	height     int
	outFiles   []string
	xSpecies   string
	ySpecies   string
	sweepRate  string
	sweepMin   float64
	sweepMax   float64
	sweepN     int
	workers    int
	track      []string
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:           "autoxsim",
		Short:         "stiff kinetics of the autoxidation network",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".autoxsim", "run archive directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [variant]",
		Short: "integrate a scenario (atmosphere or cells)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().StringSliceVar(&plots, "plot", nil, "chart files to write (.png, .pdf, .svg)")
	runCmd.Flags().BoolVar(&noPlots, "no-plots", false, "skip chart files")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not archive the run")
	runCmd.Flags().BoolVar(&view, "view", false, "open the interactive viewer")
	runCmd.Flags().BoolVar(&ascii, "ascii", false, "print terminal plots")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&outFiles, "out", nil, "write chart files instead of terminal plots")
	plotCmd.Flags().IntVar(&width, "width", 70, "terminal plot width")
	plotCmd.Flags().IntVar(&height, "height", 12, "terminal plot height")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse an archived run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export metadata and trajectory as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the trajectory as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportXLSXCmd := &cobra.Command{
		Use:   "export-xlsx [run_id] [file.xlsx]",
		Short: "export metadata and trajectory as an Excel workbook",
		Args:  cobra.ExactArgs(2),
		RunE:  exportXLSX,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [variant]",
		Short: "list presets for a variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := kinetics.ParseVariant(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("presets for %s:\n", v)
			for _, p := range config.ListPresets(v.String()) {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [variant] [method] ...",
		Short: "run the same scenario with several methods",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	scenarioFlags(compareCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two species",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xSpecies, "x", "R", "species on the x axis")
	phaseCmd.Flags().StringVar(&ySpecies, "y", "ALD", "species on the y axis")
	phaseCmd.Flags().IntVar(&width, "width", 60, "plot width")
	phaseCmd.Flags().IntVar(&height, "height", 20, "plot height")

	stiffnessCmd := &cobra.Command{
		Use:   "stiffness [variant]",
		Short: "jacobian eigenvalues at the initial state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  stiffness,
	}
	stiffnessCmd.Flags().StringVar(&configFile, "config", "", "scenario file (.yaml or .toml)")
	stiffnessCmd.Flags().StringVar(&preset, "preset", "default", "preset name")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run a scripted batch of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [variant]",
		Short: "sweep one rate constant over a log-spaced range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	scenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepRate, "rate", "k2", "rate constant to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1e-5, "smallest value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1e-3, "largest value")
	sweepCmd.Flags().IntVar(&sweepN, "points", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "points integrated concurrently")
	sweepCmd.Flags().StringSliceVar(&track, "track", []string{"ALD", "VHP"}, "species whose end value is shown")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, viewCmd, exportJSONCmd, exportCSVCmd, exportXLSXCmd,
		presetsCmd, compareCmd, phaseCmd, stiffnessCmd, batchCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("autoxsim failed")
		os.Exit(1)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (.yaml or .toml)")
	cmd.Flags().StringVar(&preset, "preset", "default", "preset name")
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "integration method")
	cmd.Flags().Float64Var(&rtol, "rtol", config.DefaultRelTol, "relative tolerance")
	cmd.Flags().Float64Var(&atol, "atol", config.DefaultAbsTol, "absolute tolerance")
	cmd.Flags().Float64Var(&duration, "time", 0, "end time in seconds")
	cmd.Flags().IntVar(&samples, "samples", 0, "number of output samples")
	cmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "step budget")
}

// loadScenario resolves the config file or preset, then applies any
// flag the user actually set.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			v, err := kinetics.ParseVariant(args[0])
			if err != nil {
				return nil, err
			}
			if v.String() != cfg.Variant {
				return nil, dynamo.Configf("variant", "argument %s disagrees with config file variant %s", v, cfg.Variant)
			}
		}
	} else {
		variant := "atmosphere"
		if len(args) > 0 {
			v, err := kinetics.ParseVariant(args[0])
			if err != nil {
				return nil, err
			}
			variant = v.String()
		}
		cfg = config.GetPreset(variant, preset)
		if cfg == nil {
			return nil, dynamo.Configf("preset", "unknown preset %q for %s (available: %v)", preset, variant, config.ListPresets(variant))
		}
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("rtol") {
		cfg.Tolerance.Rel = rtol
	}
	if flags.Changed("atol") {
		cfg.Tolerance.Abs = atol
	}
	if flags.Changed("time") {
		cfg.End = cfg.Start + duration
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("plot") {
		cfg.Output.Plots = plots
	}
	if noPlots {
		cfg.Output.Plots = nil
	}
	return cfg, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	res, err := experiment.New(cfg, log).Run(context.Background())
	if err != nil {
		return err
	}

	for _, line := range viz.SummaryLines(res.Summary) {
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Println(viz.RenderReport(reportFor(res)))

	chart, err := viz.ChartFromTrajectory(res.Trajectory, cfg.PlottedSpecies(), cfg.Output.XLabel, cfg.Output.YLabel)
	if err != nil {
		return err
	}
	chart.Title = fmt.Sprintf("%s (%s)", cfg.Variant, cfg.Method)
	if len(cfg.Output.Plots) > 0 {
		if err := chart.Save(cfg.Output.Plots...); err != nil {
			return fmt.Errorf("write plots: %w", err)
		}
		log.WithField("files", cfg.Output.Plots).Info("plots written")
	}

	if !noSave {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		meta := &storage.RunMetadata{
			Variant:   cfg.Variant,
			Method:    cfg.Method,
			Start:     cfg.Start,
			End:       cfg.End,
			Tolerance: cfg.Tolerance,
			Rates:     cfg.Rates.Map(),
			Initial:   cfg.Initial,
			Summary:   res.Summary,
			Metrics:   res.Metrics,
		}
		runID, err := store.Save(meta, res.Trajectory)
		if err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if ascii {
		fmt.Println(viz.ASCII(chart, 70, 12))
	}
	if view {
		return viz.RunViewer(chart)
	}
	return nil
}

func reportFor(res *experiment.Result) viz.ReportData {
	r := viz.ReportData{
		Title:   fmt.Sprintf("%s / %s", res.Config.Variant, res.Config.Method),
		Summary: res.Summary,
		Minimum: res.Minimum,
		Metrics: res.Metrics,
		Stats:   res.Trajectory.Stats(),
		Elapsed: res.Elapsed,
	}
	r.Branching[0], r.Branching[1] = res.Network.Branching()
	if res.Network.Variant().DynamicOxygen() {
		ok := res.OxygenNonIncreasing
		r.OxygenNonIncreasing = &ok
	}
	return r
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIANT\tMETHOD\tEND\tSAMPLES\tCARBON DRIFT\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%.2e\t%s\n",
			r.ID, r.Variant, r.Method, r.End, r.Samples,
			r.Summary.Carbon.RelDrift(), r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// loadRun reads an archived run and builds its chart with the plotted
// species of the run's variant preset.
func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, viz.Chart, error) {
	store := storage.New(dataDir)
	meta, err := store.Load(runID)
	if err != nil {
		return nil, nil, viz.Chart{}, err
	}
	traj, err := store.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, viz.Chart{}, err
	}

	cfg := config.GetPreset(meta.Variant, "default")
	species := traj.Species()
	xlabel, ylabel := "Time / s", "Concentration / atm"
	if cfg != nil {
		species = cfg.PlottedSpecies()
		xlabel, ylabel = cfg.Output.XLabel, cfg.Output.YLabel
	}
	chart, err := viz.ChartFromTrajectory(traj, species, xlabel, ylabel)
	if err != nil {
		return nil, nil, viz.Chart{}, err
	}
	chart.Title = fmt.Sprintf("%s (%s)", meta.ID, meta.Method)
	return meta, traj, chart, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, chart, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(outFiles) > 0 {
		return chart.Save(outFiles...)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("variant: %s\n", meta.Variant)
	fmt.Printf("samples: %d\n\n", traj.Len())
	fmt.Println(viz.ASCII(chart, width, height))
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	_, _, chart, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return viz.RunViewer(chart)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, traj)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, traj)
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := storage.ExportXLSX(f, meta, traj); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.WithField("file", args[1]).Info("workbook written")
	return nil
}

func compareMethods(cmd *cobra.Command, args []string) error {
	names := args[1:]
	if len(names) == 0 {
		names = experiment.NewRegistry().ListMethods()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tACCEPTED\tREJECTED\tF EVALS\tLU\tTOTAL END\tCARBON DRIFT\tELAPSED")
	for _, name := range names {
		cfg, err := loadScenario(cmd, args[:1])
		if err != nil {
			return err
		}
		cfg.Method = name
		cfg.Output.Plots = nil

		res, err := experiment.New(cfg, log).Run(context.Background())
		if err != nil {
			var fail *dynamo.IntegrationFailure
			if errors.As(err, &fail) {
				fmt.Fprintf(w, "%s\tfailed at t=%g\t%v\t\t\t\t\t\n", name, fail.Time, fail.Wrapped)
				continue
			}
			return err
		}
		st := res.Trajectory.Stats()
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.6e\t%.2e\t%v\n",
			name, st.Accepted, st.Rejected, st.Evaluations, st.Factorizations,
			res.Summary.Total.End, res.Summary.Carbon.RelDrift(), res.Elapsed)
	}
	return w.Flush()
}

func phasePlot(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	portrait, err := analysis.NewPhasePortrait(traj, xSpecies, ySpecies)
	if err != nil {
		return err
	}
	fmt.Print(analysis.PhasePortraitToASCII(portrait, width, height))
	return nil
}

func stiffness(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	v, _ := cfg.GetVariant()
	network, err := kinetics.NewNetwork(v, cfg.Rates, cfg.ReservoirO2)
	if err != nil {
		return err
	}
	x0, err := cfg.GetInitState()
	if err != nil {
		return err
	}

	s, err := analysis.LocalStiffness(network, x0)
	if err != nil && !errors.Is(err, analysis.ErrNoDecay) {
		return err
	}
	fmt.Printf("eigenvalues of df/dx at t=%g (%s):\n", cfg.Start, v)
	for _, ev := range s.Eigenvalues {
		fmt.Printf("  %12.4e %+12.4ei\n", real(ev), imag(ev))
	}
	if err != nil {
		fmt.Println("no decaying modes at the initial state")
		return nil
	}
	fmt.Printf("fastest timescale: %.3e s\n", s.Fastest)
	fmt.Printf("slowest timescale: %.3e s\n", s.Slowest)
	fmt.Printf("stiffness ratio:   %.3e\n", s.Ratio)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	if batch.Name != "" {
		fmt.Printf("batch: %s\n", batch.Name)
	}
	results, err := automation.RunBatch(context.Background(), batch, log)
	for i, res := range results {
		fmt.Printf("\n[%d] %s / %s\n", i+1, res.Config.Variant, res.Config.Method)
		for _, line := range viz.SummaryLines(res.Summary) {
			fmt.Println(line)
		}
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	sweep := &automation.RateSweep{
		Base:    cfg,
		Rate:    sweepRate,
		Min:     sweepMin,
		Max:     sweepMax,
		Points:  sweepN,
		Track:   track,
		Workers: workers,
	}
	results, err := automation.RunSweep(context.Background(), sweep, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := sweepRate + "\tTOTAL END\tCARBON DRIFT\tSTEPS"
	for _, name := range track {
		header += "\t" + name + " END"
	}
	fmt.Fprintln(w, header)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%.3e\tfailed: %v\n", r.Value, r.Err)
			continue
		}
		row := fmt.Sprintf("%.3e\t%.6e\t%.2e\t%d", r.Value, r.TotalEnd, r.CarbonDrift, r.Stats.Accepted)
		for _, name := range track {
			row += fmt.Sprintf("\t%.6e", r.End[name])
		}
		fmt.Fprintln(w, row)
	}
	st := automation.TotalStats(results)
	log.WithFields(logrus.Fields{
		"accepted": st.Accepted,
		"rejected": st.Rejected,
		"lu":       st.Factorizations,
	}).Info("sweep finished")
	if n := automation.Failed(results); n > 0 {
		log.WithField("failed", n).Warn("some sweep points did not integrate")
	}
	return w.Flush()
}
