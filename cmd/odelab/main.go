package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/jmkerr/odelab/internal/chaos"
	"github.com/jmkerr/odelab/internal/config"
	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/plot"
	"github.com/jmkerr/odelab/internal/sim"
	"github.com/jmkerr/odelab/internal/solver"
	"github.com/jmkerr/odelab/internal/storage"
	"github.com/jmkerr/odelab/internal/viz"
)

var (
	dataDir  string
	dt       float64
	duration float64
	abstol   float64
	reltol   float64
	// Perturbation settings for divergence analysis
	perturbIdx  int
	perturbSize float64
	// Phase plot axes
	xAxis int
	yAxis int
	// Config file and preset name
	configFile string
	preset     string
	// Output path for figures
	outFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odelab",
		Short: "gravitational two-body and double pendulum simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odelab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation and store the sampled trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	figureCmd := &cobra.Command{
		Use:   "figure [run_id]",
		Short: "render stored run to PNG figures",
		Args:  cobra.ExactArgs(1),
		RunE:  renderFigures,
	}
	figureCmd.Flags().StringVar(&outFile, "out", ".", "output directory")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	divergenceCmd := &cobra.Command{
		Use:   "divergence [model]",
		Short: "compare a run against a perturbed twin",
		Args:  cobra.ExactArgs(1),
		RunE:  runDivergence,
	}
	addRunFlags(divergenceCmd)
	divergenceCmd.Flags().IntVar(&perturbIdx, "index", 0, "state component to perturb")
	divergenceCmd.Flags().Float64Var(&perturbSize, "perturbation", 1e-3, "perturbation size")
	divergenceCmd.Flags().StringVar(&outFile, "out", "", "optional PNG output path")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSONRun,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print run data as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSVRun,
	}
	exportCSVCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

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

	compareCmd := &cobra.Command{
		Use:   "compare [model]",
		Short: "compare tolerance settings on the same model",
		Args:  cobra.ExactArgs(1),
		RunE:  compareTolerances,
	}
	addRunFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, figureCmd, phaseCmd, divergenceCmd,
		exportJSONCmd, exportCSVCmd, presetsCmd, compareCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "sample spacing")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&abstol, "abstol", config.DefaultAbsTol, "absolute tolerance")
	cmd.Flags().Float64Var(&reltol, "reltol", config.DefaultRelTol, "relative tolerance")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveRun merges preset, config file, and flags into a ready-to-run
// setup: the system with parameters applied, the initial state, and the
// sim config. CLI flags override file values; files override presets.
func resolveRun(cmd *cobra.Command, model string) (dynamics.System, dynamics.State, sim.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, nil, sim.Config{}, fmt.Errorf("unknown preset: %s (available: %v)",
				preset, config.ListPresets(model))
		}
		// Copy so flag overrides never mutate the shared preset table.
		c := *p
		cfg = &c
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, sim.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cfg.Model != model {
			return nil, nil, sim.Config{}, fmt.Errorf("config is for model %s, not %s", cfg.Model, model)
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("abstol") {
		cfg.AbsTol = abstol
	}
	if cmd.Flags().Changed("reltol") {
		cfg.RelTol = reltol
	}

	registry := sim.NewRegistry()
	sys, err := registry.GetModel(model)
	if err != nil {
		return nil, nil, sim.Config{}, err
	}

	if configurable, ok := sys.(dynamics.Configurable); ok {
		for name, value := range cfg.GetParams() {
			if err := configurable.SetParam(name, value); err != nil {
				return nil, nil, sim.Config{}, err
			}
		}
	}

	x0 := dynamics.State(cfg.GetInitState())
	if preset == "" && configFile == "" {
		x0, err = registry.DefaultState(model)
		if err != nil {
			return nil, nil, sim.Config{}, err
		}
	}

	runCfg := sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, AbsTol: cfg.AbsTol, RelTol: cfg.RelTol}
	return sys, x0, runCfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	model := args[0]

	sys, x0, cfg, err := resolveRun(cmd, model)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := sim.NewRegistry()
	s := sim.New(sys)
	for _, m := range registry.DefaultMetrics(sys) {
		s.AddMetric(m)
	}

	fmt.Printf("running %s simulation...\n", model)
	start := time.Now()

	result, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(model, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", result.Trajectory.Len())
	if result.Err != nil {
		fmt.Printf("integration stopped early: %v\n", result.Err)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.3e\n", name, val)
	}

	return nil
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Failure != "" {
			status = run.Failure
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			status,
		)
	}

	return w.Flush()
}

// componentCaptions labels state components per model.
func componentCaptions(model string) []string {
	switch model {
	case "twobody":
		return []string{"x1", "vx1", "y1", "vy1", "x2", "vx2", "y2", "vy2"}
	case "double_pendulum":
		return []string{"phi (inner angle)", "phidot", "theta (outer angle)", "thetadot"}
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	captions := componentCaptions(meta.Model)
	numVars := len(states[0])
	if numVars > 6 {
		numVars = 6
	}

	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, 0, len(states))
		for i := range states {
			if varIdx < len(states[i]) && !math.IsNaN(states[i][varIdx]) {
				data = append(data, states[i][varIdx])
			}
		}
		if len(data) < 2 {
			continue
		}

		caption := fmt.Sprintf("x%d vs time", varIdx)
		if varIdx < len(captions) {
			caption = captions[varIdx]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func renderFigures(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	tr := dynamics.NewTrajectory(times)
	for i, s := range states {
		tr.States[i] = dynamics.State(s)
	}

	switch meta.Model {
	case "twobody":
		orbitPath := filepath.Join(outFile, runID+"_orbit.png")
		if err := plot.Orbit(orbitPath, "two-body orbits", tr); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", orbitPath)

		seriesPath := filepath.Join(outFile, runID+"_positions.png")
		labels := map[int]string{0: "x1", 2: "y1", 4: "x2", 6: "y2"}
		if err := plot.TimeSeries(seriesPath, "body positions", tr, labels); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", seriesPath)
	case "double_pendulum":
		seriesPath := filepath.Join(outFile, runID+"_angles.png")
		labels := map[int]string{0: "phi", 2: "theta"}
		if err := plot.TimeSeries(seriesPath, "pendulum angles", tr, labels); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", seriesPath)

		phasePath := filepath.Join(outFile, runID+"_phase.png")
		if err := plot.Phase(phasePath, "inner arm phase space", "phi", "phidot", tr, 0, 1); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", phasePath)
	default:
		return fmt.Errorf("unknown model: %s", meta.Model)
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	components := make([][]float64, len(states[0]))
	for i := range components {
		components[i] = make([]float64, 0, len(states))
	}
	for _, s := range states {
		for j, v := range s {
			if j < len(components) && !math.IsNaN(v) {
				components[j] = append(components[j], v)
			}
		}
	}

	portrait := chaos.NewPhasePortrait(components, xAxis, yAxis)
	if portrait == nil {
		return fmt.Errorf("invalid axes %d, %d for %d components", xAxis, yAxis, len(components))
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Model)
	fmt.Printf("phase space: x%d vs x%d\n\n", xAxis, yAxis)
	fmt.Println(portrait.ASCII(80, 24))

	return nil
}

func runDivergence(cmd *cobra.Command, args []string) error {
	model := args[0]

	sys, x0, cfg, err := resolveRun(cmd, model)
	if err != nil {
		return err
	}
	if perturbIdx < 0 || perturbIdx >= sys.Dim() {
		return fmt.Errorf("perturbation index %d out of range for %d-dimensional state", perturbIdx, sys.Dim())
	}

	opts := solver.DefaultOptions()
	opts.AbsTol = cfg.AbsTol
	opts.RelTol = cfg.RelTol

	samples := int(cfg.Duration/cfg.Dt) + 1
	grid := solver.UniformGrid(0, cfg.Duration, samples)

	fmt.Printf("comparing %s against twin with x%d offset by %g...\n", model, perturbIdx, perturbSize)
	div, err := chaos.Compare(sys, grid, x0, perturbIdx, perturbSize, opts)
	if err != nil {
		return err
	}

	// Log separation is the readable view of exponential growth.
	logSep := make([]float64, 0, len(div.Separation))
	for _, s := range div.Separation {
		if s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s) {
			logSep = append(logSep, math.Log10(s))
		}
	}
	if len(logSep) > 1 {
		graph := asciigraph.Plot(logSep,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("log10 separation"),
		)
		fmt.Println(graph)
	}

	fmt.Printf("\nexponential growth rate: %.4f per time unit\n", div.GrowthRate)
	if div.GrowthRate > 0.1 {
		fmt.Println("trajectories diverge exponentially (sensitive to initial conditions)")
	} else {
		fmt.Println("trajectories stay close (no exponential divergence)")
	}

	if outFile != "" {
		if err := plot.Divergence(outFile, model+" divergence", div); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
	}

	return nil
}

func exportJSONRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	tr := dynamics.NewTrajectory(times)
	for i, s := range states {
		tr.States[i] = dynamics.State(s)
	}
	result := &sim.Result{Trajectory: tr, Metrics: meta.Metrics}

	cfg := sim.Config{Dt: meta.Dt, Duration: meta.Duration, AbsTol: meta.AbsTol, RelTol: meta.RelTol}
	if outFile != "" {
		if err := storage.ExportJSONFile(outFile, meta.Model, cfg, result); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	return storage.ExportJSON(os.Stdout, meta.Model, cfg, result)
}

func exportCSVRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	tr := dynamics.NewTrajectory(times)
	for i, s := range states {
		tr.States[i] = dynamics.State(s)
	}
	result := &sim.Result{Trajectory: tr}
	if outFile != "" {
		if err := storage.ExportCSVFile(outFile, result); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	return storage.ExportCSV(os.Stdout, result)
}

func compareTolerances(cmd *cobra.Command, args []string) error {
	model := args[0]

	sys, x0, cfg, err := resolveRun(cmd, model)
	if err != nil {
		return err
	}

	registry := sim.NewRegistry()
	tols := []float64{1e-6, 1e-9, 1e-12}

	fmt.Printf("comparing tolerances on %s\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOL\tTIME\tENERGY DRIFT")

	for _, tol := range tols {
		runCfg := cfg
		runCfg.AbsTol = tol
		runCfg.RelTol = tol

		s := sim.New(sys)
		for _, m := range registry.DefaultMetrics(sys) {
			s.AddMetric(m)
		}

		start := time.Now()
		result, err := s.Run(context.Background(), x0, runCfg)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		drift := result.Metrics["energy_drift"]
		fmt.Fprintf(w, "%.0e\t%v\t%.3e\n", tol, elapsed, drift)
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	model := args[0]

	sys, x0, cfg, err := resolveRun(cmd, model)
	if err != nil {
		return err
	}

	return viz.Run(sys, model, x0, cfg.Dt)
}
