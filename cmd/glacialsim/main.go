package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/glacialsim/internal/analysis"
	"github.com/san-kum/glacialsim/internal/automation"
	"github.com/san-kum/glacialsim/internal/config"
	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/experiment"
	"github.com/san-kum/glacialsim/internal/export"
	"github.com/san-kum/glacialsim/internal/logging"
	"github.com/san-kum/glacialsim/internal/storage"
	"github.com/san-kum/glacialsim/internal/viz"
)

const (
	envData = "GLACIALSIM_DATA"
	envLog  = "GLACIALSIM_LOG"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	integrator string
	plateau    string
	initState  string
	v0         float64
	start      float64
	end        float64
	step       float64
	csvPath    string
	truncate   bool
	truncateA  float64
	noNorm     bool
	overrides  []string
	noSave     bool

	format  string
	outPath string

	minPeriod float64
	maxPeriod float64

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "glacialsim",
		Short:         "conceptual glacial cycle simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logging.Setup(os.Stderr, level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envOr(envData, ".glacialsim"), "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", envOr(envLog, "info"), "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "step a simulation in the terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same forcing",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addModelFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	peaksCmd := &cobra.Command{
		Use:   "peaks [run_id]",
		Short: "list the forcing peaks of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  listPeaks,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as json or msgpack",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json or msgpack")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and cycle statistics of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&minPeriod, "min-period", 10, "shortest period considered")
	analyzeCmd.Flags().Float64Var(&maxPeriod, "max-period", 0, "longest period considered (0 for none)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "rerun a model across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	_ = sweepCmd.MarkFlagRequired("param")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and integrators",
		Run: func(cmd *cobra.Command, args []string) {
			registry := experiment.NewRegistry()
			fmt.Printf("models:      %s\n", strings.Join(registry.ListModels(), ", "))
			fmt.Printf("integrators: %s\n", strings.Join(registry.ListIntegrators(), ", "))
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, sweepCmd, listCmd, plotCmd, peaksCmd, analyzeCmd, exportCmd, deleteCmd, presetsCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (rk4, rk4-classic, euler)")
	f.StringVar(&plateau, "plateau", config.DefaultPlateau, "flat-top peak handling (strict, midpoint)")
	f.StringVar(&initState, "init-state", "", "initial regime (i, g, G)")
	f.Float64Var(&v0, "v0", 0, "initial ice volume")
	f.Float64Var(&start, "start", config.DefaultStart, "synthetic forcing start (kyr)")
	f.Float64Var(&end, "end", config.DefaultEnd, "synthetic forcing end (kyr)")
	f.Float64Var(&step, "step", config.DefaultStep, "synthetic forcing step (kyr)")
	f.StringVar(&csvPath, "forcing", "", "csv file with time,insolation columns")
	f.BoolVar(&truncate, "truncate", false, "apply the smooth truncation to the forcing")
	f.Float64Var(&truncateA, "truncate-a", config.DefaultTruncateA, "truncation parameter a")
	f.BoolVar(&noNorm, "no-normalize", false, "skip forcing normalization")
	f.StringArrayVar(&overrides, "set", nil, "parameter override name=value (repeatable)")
}

// buildConfig layers preset, config file and explicit flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	model := config.DefaultModel
	if len(args) > 0 {
		model = args[0]
	}

	cfg := config.DefaultConfig()
	cfg.Model = model
	if preset != "" {
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Model = model
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("plateau") {
		cfg.Plateau = plateau
	}
	if flags.Changed("init-state") {
		cfg.InitState = initState
	}
	if flags.Changed("v0") {
		cfg.V0 = v0
	}
	if flags.Changed("start") {
		cfg.Forcing.Start = start
	}
	if flags.Changed("end") {
		cfg.Forcing.End = end
	}
	if flags.Changed("step") {
		cfg.Forcing.Step = step
	}
	if csvPath != "" {
		cfg.Forcing.Source = config.SourceCSV
		cfg.Forcing.Path = csvPath
	}
	if flags.Changed("truncate") {
		cfg.Forcing.Truncate = truncate
	}
	if flags.Changed("truncate-a") {
		cfg.Forcing.TruncateA = truncateA
	}
	if noNorm {
		cfg.Forcing.Normalize = false
	}

	for _, kv := range overrides {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: expected name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %q: %w", kv, err)
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[name] = v
	}
	return cfg, nil
}

func setupExperiment(cmd *cobra.Command, args []string) (*experiment.Experiment, *config.Config, error) {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	exp := experiment.New(cfg, nil)
	if err := exp.Setup(); err != nil {
		return nil, nil, err
	}
	return exp, cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, cfg, err := setupExperiment(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s simulation...\n", cfg.Model)
	began := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", len(result.Snapshots))

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		info := storage.RunInfo{
			Integrator: cfg.Integrator,
			Plateau:    cfg.Plateau,
			Preset:     preset,
			Params:     exp.Model().GetParams(),
		}
		runID, err := st.Save(info, result)
		if err != nil {
			return err
		}
		slog.Debug("run stored", "id", runID, "dir", st.Dir())
		fmt.Printf("run id: %s\n", runID)
	}

	printMetrics(result.Metrics)
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	if len(names) == 0 {
		return
	}
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.6g\n", name, metrics[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, _, err := setupExperiment(cmd, args)
	if err != nil {
		return err
	}
	session, err := exp.Session()
	if err != nil {
		return err
	}
	series := exp.Forcing()
	return viz.Run(viz.NewModel(exp.Model(), session, series.Times, series.Values))
}

// requireIntegrated rejects models whose snapshots carry no integrated
// volume, since the integrator choice cannot change their output.
func requireIntegrated(m dynamo.Model) error {
	if _, ok := m.Snapshot().Vars["v"]; !ok {
		return fmt.Errorf("compare: model %q is not integrated; integrators only affect ice_volume", m.Name())
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	model := args[0]
	names := args[1:]

	fmt.Printf("comparing integrators for %s\n\n", model)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s  %-12s\n", "integrator", "final_v", "max_v", "transitions", "time_ms")
	fmt.Println(strings.Repeat("-", 66))

	for _, name := range names {
		integrator = name
		if err := cmd.Flags().Set("integrator", name); err != nil {
			return err
		}
		exp, _, err := setupExperiment(cmd, args[:1])
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}
		if err := requireIntegrated(exp.Model()); err != nil {
			return err
		}

		began := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(began)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		v := result.Series("v")
		fmt.Printf("%-12s  %12.6f  %12.6f  %12.0f  %12.2f\n",
			name, v[len(v)-1], result.Metrics["v.max"], result.Metrics["transitions"],
			float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func openRun(arg string) (*storage.Store, string, error) {
	st := storage.New(dataDir)
	runID, err := st.Resolve(arg)
	if err != nil {
		return nil, "", err
	}
	return st, runID, nil
}

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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tINTEG\tPRESET\tTRANSITIONS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%.0f\n",
			shortID(run.ID),
			run.Model,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Integrator,
			run.Preset,
			run.Metrics["transitions"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(result.Snapshots) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d (t=%g..%g)\n\n", len(result.Snapshots), result.Times[0], result.Times[len(result.Times)-1])

	levels := make([]float64, len(result.Snapshots))
	for i, s := range result.Snapshots {
		levels[i] = s.State.Level()
	}

	type panel struct {
		caption string
		series  [][]float64
	}
	plots := []panel{
		{"insolation forcing", [][]float64{result.Forcing}},
		{"regime (0=G 1=g 2=i)", [][]float64{levels}},
	}
	if _, ok := result.Snapshots[0].Vars["v"]; ok {
		plots = append(plots, panel{"ice volume v with reference v_r", [][]float64{result.Series("v"), result.Series("v_r")}})
	} else {
		plots = append(plots, panel{"time in regime tc", [][]float64{result.Series("tc")}})
	}

	for _, p := range plots {
		graph := asciigraph.PlotMany(p.series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
			asciigraph.SeriesColors(asciigraph.Default, asciigraph.DarkGray),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func listPeaks(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	fmt.Printf("%d peaks\n", len(result.PeakIdx))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tTIME\tINSOLATION\tREGIME")
	for _, k := range result.PeakIdx {
		fmt.Fprintf(w, "%d\t%g\t%.4f\t%s\n", k, result.Times[k], result.Forcing[k], result.Snapshots[k].State.Label())
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args[0])
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	return export.WriteFile(outPath, f, export.FromResult(meta.ID, meta.Integrator, result))
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(result.Times) < 2 {
		return fmt.Errorf("run too short to analyze")
	}

	name := "tc"
	if _, ok := result.Snapshots[0].Vars["v"]; ok {
		name = "v"
	}
	dt := result.Times[1] - result.Times[0]
	bands := analysis.Spectrum(result.Series(name), dt)
	top := analysis.Dominant(bands, minPeriod, maxPeriod)

	fmt.Printf("dominant period of %s: %.1f (power %.4g)\n", name, top.Period, top.Power)

	cycles := analysis.Cycles(result.Times, result.States())
	fmt.Printf("terminations: %d\n", len(cycles.Terminations))
	if len(cycles.Lengths) > 0 {
		fmt.Printf("cycle length: %.1f ± %.1f\n", cycles.Mean, cycles.StdDev)
	}
	fmt.Println()

	plotBands := make([]float64, 0, len(bands))
	for _, b := range bands {
		if b.Period >= minPeriod && (maxPeriod <= 0 || b.Period <= maxPeriod) {
			plotBands = append(plotBands, b.Power)
		}
	}
	if len(plotBands) == 0 {
		return nil
	}
	graph := asciigraph.Plot(plotBands,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s), low to high frequency", name)),
	)
	fmt.Println(graph)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{
		Base:  cfg,
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
	}
	results, err := automation.RunSweep(ctx, sweep, nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTRANSITIONS\tTERMINATIONS\tMEAN_CYCLE\tPERIOD\tMAX_V\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%d\t%d\t%.1f\t%.1f\t%.3f\n",
			r.Value, r.Transitions, r.Terminations, r.MeanCycle, r.DominantPeriod, r.MaxVolume)
	}
	return w.Flush()
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openRun(args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(runID); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", runID)
	return nil
}

func shortID(id string) string {
	return id[:min(8, len(id))]
}
