package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/circlesim/internal/analysis"
	"github.com/san-kum/circlesim/internal/automation"
	"github.com/san-kum/circlesim/internal/config"
	"github.com/san-kum/circlesim/internal/export"
	"github.com/san-kum/circlesim/internal/logging"
	"github.com/san-kum/circlesim/internal/metrics"
	"github.com/san-kum/circlesim/internal/sim"
	"github.com/san-kum/circlesim/internal/storage"
	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/viz"
	"github.com/san-kum/circlesim/internal/world"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	dataDir    string
	logLevel   string
	logFormat  string
	logFile    string
	configFile string
	dt         float64
	duration   float64
	seed       int64
	numBodies  int
	boundary   string
	frameRate  int
	track      int
	scriptFile string
	theme      string
	numRuns    int
	parallel   int
	outFile    string
	benchTime  float64

	logger = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "circlesim [preset]",
		Short: "2D rigid circle physics sandbox",
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "live" || cmd.Name() == "circlesim" {
				return nil
			}
			l, err := logging.New(logging.Options{Level: logLevel, Format: logFormat})
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE:         runLive,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".circlesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scene file (yaml), overrides the preset")
	addSceneFlags(rootCmd)
	addLiveFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a fixed-step simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scene in real time with the terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	addLiveFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id|latest]",
		Short: "plot energy and momentum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id|latest]",
		Short: "frequency and trail analysis of the tracked body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id|latest]",
		Short: "export the sample series as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id|latest]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id|latest]",
		Short: "render the final state and tracked trail as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark world updates by body count",
		RunE:  benchWorld,
	}
	benchCmd.Flags().Float64Var(&benchTime, "time", 1.0, "simulated seconds per case")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run one scene over consecutive seeds in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addSceneFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "runs in flight (0 = unlimited)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&numBodies, "bodies", 0, "random bodies to add")
	cmd.Flags().StringVar(&boundary, "boundary", "", "boundary mode (none, wrap, bounce)")
	cmd.Flags().IntVar(&track, "track", -1, "body index to record a trail for")
	cmd.Flags().StringVar(&scriptFile, "script", "", "automation script (yaml)")
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme")
	cmd.Flags().StringVar(&logFile, "log-file", "", "log file (default <data>/live.log)")
}

// loadScene resolves the preset or config file and applies changed flags on top.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		name := config.DefaultPreset
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
		cfg.Run.MaxDt = max(cfg.Run.MaxDt, dt)
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("bodies") {
		cfg.RandomBodies = numBodies
	}
	if flags.Changed("boundary") {
		cfg.Arena.Boundary = boundary
	}
	if flags.Changed("track") {
		cfg.Run.Track = track
	}
	if flags.Changed("script") {
		cfg.Script = scriptFile
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.Run.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newDriver builds a populated world for cfg with the given seed and attaches
// the standard metrics and the scene script.
func newDriver(cfg *config.Config, seed int64, log *zap.Logger) (*sim.Driver, error) {
	opts, err := cfg.WorldOptions()
	if err != nil {
		return nil, err
	}
	opts.Seed = seed

	w, err := world.New(opts, log)
	if err != nil {
		return nil, err
	}
	if err := cfg.Populate(w); err != nil {
		return nil, err
	}

	d := sim.New(w, log)
	for _, m := range metrics.All() {
		d.AddMetric(m)
	}
	if cfg.Script != "" {
		script, err := automation.LoadScript(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", cfg.Script, err)
		}
		d.SetScript(automation.NewPlayer(script, w, log))
	}
	return d, nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:             cfg.Run.Dt,
		MaxDt:          cfg.Run.MaxDt,
		Duration:       cfg.Run.Duration,
		SampleEvery:    cfg.Run.SampleEvery,
		Track:          cfg.Run.Track,
		ReportInterval: time.Duration(cfg.Run.ReportInterval * float64(time.Second)),
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	d, err := newDriver(cfg, cfg.Run.Seed, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s (%d bodies)...\n", cfg.Scene, d.World().Len())
	result, err := d.RunFor(ctx, simConfig(cfg))
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}

	runID, serr := st.Save(storage.RunMetadata{
		Scene:    cfg.Scene,
		Seed:     cfg.Run.Seed,
		Dt:       cfg.Run.Dt,
		Duration: cfg.Run.Duration,
		Width:    cfg.Arena.Width,
		Height:   cfg.Arena.Height,
		Boundary: cfg.Arena.Boundary,
	}, result)
	if serr != nil {
		return serr
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	out := logFile
	if out == "" {
		out = filepath.Join(dataDir, "live.log")
	}
	log, err := logging.New(logging.Options{Level: logLevel, Format: logFormat, Output: out})
	if err != nil {
		return err
	}
	defer log.Sync()

	d, err := newDriver(cfg, cfg.Run.Seed, log)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := viz.NewModel(d, viz.Options{Scene: cfg.Scene, FPS: cfg.Run.FPS, Theme: theme, Logger: log})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := d.Run(gctx, simConfig(cfg))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	log.Info("live view started", zap.String("scene", cfg.Scene), zap.Int("bodies", d.World().Len()))
	err = g.Wait()
	d.Report()
	return err
}

// resolveRun maps "latest" to the newest stored run.
func resolveRun(st *storage.Store, id string) (*storage.RunMetadata, error) {
	if id == "latest" {
		return st.Latest()
	}
	return st.Load(id)
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tBODIES\tSTEPS\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\t%.2e\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Bodies,
			run.Steps,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	result := &sim.Result{Samples: samples}
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"kinetic energy", result.Energies()},
		{"|momentum|", result.MomentumMagnitudes()},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}

	result := &sim.Result{Samples: samples}
	times := result.Times()
	trail := trackedTrail(result)
	spacing := times[1] - times[0]

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	energy := result.Energies()
	fmt.Printf("energy dominant frequency: %.3f hz\n", analysis.DominantFrequency(energy, spacing))

	if len(trail) < 4 {
		fmt.Println("no tracked body; rerun with --track")
		return nil
	}

	ys := make([]float64, len(trail))
	for i, p := range trail {
		ys[i] = p.Y
	}
	freq := analysis.DominantFrequency(ys, spacing)
	fmt.Printf("tracked y dominant frequency: %.3f hz\n", freq)
	if period := analysis.Period(times, ys); period > 0 {
		fmt.Printf("tracked y period: %.3f s\n", period)
	}

	ps := analysis.PowerSpectrum(analysis.PadPow2(ys))
	if n := len(ps) / 4; n > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:n],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (tracked y)"),
		))
	}

	fmt.Println("\ntrail:")
	fmt.Print(analysis.TrailToASCII(trail, 80, 24))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(st.SeriesPath(meta.ID))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(os.Stdout, f)
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	return st.ExportRun(os.Stdout, meta.ID)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	final, err := st.LoadFinal(meta.ID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}

	trail := trackedTrail(&sim.Result{Samples: samples})
	svg := export.SceneToSVG(final, trail, meta.Width, meta.Height, export.DefaultPalette())

	if outFile == "" {
		_, err = io.WriteString(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tBOUNDARY\tPAIRWISE\tDURATION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		label := name
		if name == config.DefaultPreset {
			label += " (default)"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%t\t%.0fs\n",
			label,
			len(cfg.Bodies)+cfg.RandomBodies,
			cfg.Arena.Boundary,
			cfg.Physics.PairwiseGravity,
			cfg.Run.Duration,
		)
	}
	return w.Flush()
}

func benchWorld(cmd *cobra.Command, args []string) error {
	counts := []int{25, 50, 100, 200, 400}
	base := config.DefaultConfig()
	base.Run.Duration = benchTime

	fmt.Printf("benchmarking world updates (%.1fs simulated, dt=%g)\n\n", benchTime, base.Run.Dt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tSTEPS\tCOMPARISONS\tTIME\tSTEPS/SEC")

	for _, n := range counts {
		cfg := base.Clone()
		cfg.RandomBodies = n
		d, err := newDriver(cfg, 42, logger)
		if err != nil {
			return err
		}

		sc := simConfig(cfg)
		sc.SampleEvery = max(int(cfg.Run.Duration/cfg.Run.Dt), 1)
		result, err := d.RunFor(context.Background(), sc)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
			n, result.Steps, d.World().Comparisons(), result.Elapsed.Truncate(time.Microsecond),
			float64(result.Steps)/result.Elapsed.Seconds())
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	ens := sim.NewEnsemble(func(s int64) (*sim.Driver, error) {
		return newDriver(cfg, s, logger.With(zap.Int64("seed", s)))
	}, numRuns, cfg.Run.Seed)
	ens.SetLimit(parallel)

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	results, err := ens.Run(ctx, simConfig(cfg))
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d runs in %v\n\n", cfg.Scene, len(results), time.Since(start).Truncate(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tBODIES\tSTEPS\tDRIFT\tFINGERPRINT")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3e\t%s\n",
			cfg.Run.Seed+int64(i),
			len(r.Final),
			r.Steps,
			r.EnergyDrift,
			storage.Fingerprint(r.Final),
		)
	}
	return w.Flush()
}

// trackedTrail returns the recorded trail, or nil when no body was tracked.
func trackedTrail(r *sim.Result) []vec.Vector2[float64] {
	trail := r.Trail()
	for _, p := range trail {
		if p.NonZero() {
			return trail
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
