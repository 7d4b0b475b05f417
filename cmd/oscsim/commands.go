package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/log/level"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/analytic"
	"github.com/san-kum/oscsim/internal/automation"
	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/diagnostics"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
	"github.com/san-kum/oscsim/internal/export"
	"github.com/san-kum/oscsim/internal/storage"
	"github.com/san-kum/oscsim/internal/viz"
)

func dataDir(cmd *cobra.Command) string {
	return newViper(cmd).GetString("data")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	level.Info(logger).Log("msg", "run complete", "model", cfg.Model, "samples", result.Trajectory.Len(), "elapsed", elapsed)

	runID := ""
	if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
		st := storage.New(dataDir(cmd))
		if runID, err = st.Save(result); err != nil {
			return err
		}
		level.Debug(logger).Log("msg", "run stored", "run_id", runID)
	}

	printReport(result.Report(), runID, elapsed)
	return nil
}

func printReport(rep experiment.Report, runID string, elapsed time.Duration) {
	var s strings.Builder
	s.WriteString(viz.HeaderStyle.Render(strings.ToUpper(rep.Model)) + "\n")
	if runID != "" {
		s.WriteString(viz.Field("Run ID", "%s", runID))
	}
	if elapsed > 0 {
		s.WriteString(viz.Field("Completed in", "%v", elapsed))
	}
	s.WriteString(viz.Field("Samples", "%d", rep.Samples))
	if rep.Regime != "" {
		s.WriteString(viz.Field("Regime", "%s", rep.Regime))
	}
	s.WriteString(viz.Field("Amplitude", "%.6f", rep.Amplitude))
	s.WriteString(viz.Field("Energy E0", "%.6f", rep.Energy.Initial))
	s.WriteString(viz.Field("Energy final", "%.6f", rep.Energy.Final))
	if rep.Conservative {
		s.WriteString(viz.Field("Energy drift", "%.3e", rep.Energy.Drift))
	} else {
		s.WriteString(viz.Field("Energy drift", "%.3e (driven)", rep.Energy.Drift))
	}

	s.WriteString("\nparams:\n")
	for _, k := range sortedKeys(rep.Params) {
		s.WriteString(viz.Field("  "+k, "%g", rep.Params[k]))
	}
	if len(rep.Periods) > 0 {
		s.WriteString("\nperiods:\n")
		for _, k := range sortedKeys(rep.Periods) {
			s.WriteString(viz.Field("  "+k, "%.6f", rep.Periods[k]))
		}
	}
	if rep.ClosedFormError > 0 {
		s.WriteString("\n" + viz.Field("Closed-form err", "%.3e", rep.ClosedFormError))
	}
	if d := rep.Drive; d != nil {
		s.WriteString("\nsteady state:\n")
		s.WriteString(viz.Field("  frequency", "%.6f", d.Frequency))
		s.WriteString(viz.Field("  amplitude", "%.6f", d.SteadyAmplitude))
		s.WriteString(viz.Field("  phase lag", "%.6f", d.PhaseLag))
		if d.Resonance > 0 {
			s.WriteString(viz.Field("  resonance", "%.6f", d.Resonance))
		}
	}
	fmt.Print(s.String())
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func exactPeriod(cmd *cobra.Command, args []string) error {
	length, _ := cmd.Flags().GetFloat64("length")
	gravity, _ := cmd.Flags().GetFloat64("gravity")
	deg, _ := cmd.Flags().GetBool("deg")

	t0, err := analytic.SmallAnglePeriod(length, gravity)
	if err != nil {
		return err
	}

	amplitudes := make([]float64, 0, 18)
	if len(args) == 1 {
		a, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("bad amplitude %q: %w", args[0], err)
		}
		if deg {
			a *= math.Pi / 180
		}
		amplitudes = append(amplitudes, a)
	} else {
		for d := 0.0; d < 180; d += 10 {
			amplitudes = append(amplitudes, d*math.Pi/180)
		}
	}

	fmt.Printf("small-angle period T0: %.6f\n\n", t0)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THETA_MAX\tDEG\tPERIOD\tT/T0")
	for _, a := range amplitudes {
		period, err := analytic.ExactPeriod(a, length, gravity)
		if err != nil {
			return err
		}
		ratio, err := analytic.PeriodRatio(a)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%.6f\t%.1f\t%.6f\t%.6f\n", a, a*180/math.Pi, period, ratio)
	}
	return w.Flush()
}

func sweepValues(cmd *cobra.Command) ([]float64, error) {
	values, _ := cmd.Flags().GetFloat64Slice("values")
	if len(values) > 0 {
		return values, nil
	}
	if !cmd.Flags().Changed("from") || !cmd.Flags().Changed("to") {
		return nil, fmt.Errorf("either --values or --from/--to is required")
	}
	from, _ := cmd.Flags().GetFloat64("from")
	to, _ := cmd.Flags().GetFloat64("to")
	n, _ := cmd.Flags().GetInt("n")
	if n < 2 {
		return nil, fmt.Errorf("--n must be at least 2")
	}
	return floats.Span(make([]float64, n), from, to), nil
}

func sweepParam(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	values, err := sweepValues(cmd)
	if err != nil {
		return err
	}
	param, _ := cmd.Flags().GetString("param")
	workers, _ := cmd.Flags().GetInt("workers")

	results, err := experiment.Sweep(cmd.Context(), cfg, param, values, experiment.SweepOptions{
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tLINEAR\tMEASURED\tEXACT\tAMPLITUDE\tDRIFT\tERROR\n", strings.ToUpper(param))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%g\t-\t-\t-\t-\t-\t%v\n", r.Value, r.Err)
			continue
		}
		rep := r.Result.Report()
		fmt.Fprintf(w, "%g\t%s\t%s\t%s\t%.4f\t%.2e\t\n",
			r.Value,
			periodCell(rep.Periods, "linear"),
			periodCell(rep.Periods, "zero_crossing"),
			periodCell(rep.Periods, "exact"),
			rep.Amplitude,
			rep.Energy.Drift,
		)
	}
	return w.Flush()
}

func periodCell(periods map[string]float64, key string) string {
	if p, ok := periods[key]; ok {
		return strconv.FormatFloat(p, 'f', 6, 64)
	}
	return "-"
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir(cmd))
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tSAMPLES\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%.2e\n",
			run.ID,
			run.Report.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Report.Duration,
			run.Report.Dt,
			run.Report.Samples,
			run.Report.Energy.Drift,
		)
	}

	return w.Flush()
}

func loadRun(cmd *cobra.Command, runID string) (*storage.RunMetadata, []diagnostics.Point, error) {
	st := storage.New(dataDir(cmd))
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	points, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(points) == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, points, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, points, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Report.Model)
	fmt.Printf("samples: %d\n\n", len(points))

	names := [2]string{"position", "velocity"}
	if meta.Report.Model == dynamo.ModelPendulum.String() {
		names = [2]string{"theta (angle)", "omega (angular velocity)"}
	}

	columns := []struct {
		caption string
		get     func(diagnostics.Point) float64
	}{
		{names[0], func(p diagnostics.Point) float64 { return p.Position }},
		{names[1], func(p diagnostics.Point) float64 { return p.Velocity }},
		{"total energy", func(p diagnostics.Point) float64 { return p.Total }},
	}

	for _, col := range columns {
		data := make([]float64, len(points))
		for i, p := range points {
			data[i] = col.get(p)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if path, _ := cmd.Flags().GetString("svg"); path != "" {
		times := make([]float64, len(points))
		totals := make([]float64, len(points))
		for i, p := range points {
			times[i], totals[i] = p.T, p.Total
		}
		svg, err := export.PathSVG(times, totals, 800, 400, "#00ccff")
		if err != nil {
			return err
		}
		return writeSVG(path, svg)
	}
	return nil
}

func writeSVG(path, svg string) error {
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "wrote svg", "path", path)
	return nil
}

// phasePlot integrates the stored config again instead of reading the CSV;
// runs are deterministic, so the samples are identical.
func phasePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir(cmd))
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(args[0])
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	level.Debug(logger).Log("msg", "re-integrated stored config", "run_id", meta.ID, "samples", res.Trajectory.Len())

	title := "phase portrait"
	portrait := analysis.PhasePortrait(res.Series)
	if strobe, _ := cmd.Flags().GetBool("strobe"); strobe {
		period, ok := cfg.Spring.Forcing.Period()
		if cfg.Model != config.ModelSpring || !ok {
			return fmt.Errorf("run %s has no sine drive to strobe", meta.ID)
		}
		portrait = analysis.StroboscopicSection(res.Trajectory, period)
		title = fmt.Sprintf("stroboscopic section, T=%.4f", period)
	}

	fmt.Printf("%s: %s (%s)\n", title, meta.ID, meta.Report.Model)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, width, height))

	if path, _ := cmd.Flags().GetString("svg"); path != "" {
		svg, err := export.PortraitSVG(portrait, width, height, 4)
		if err != nil {
			return err
		}
		return writeSVG(path, svg)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir(cmd))
	points, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := storage.WritePoints(out, points); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "exported", "run_id", args[0], "rows", len(points))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir(cmd)).ExportJSON(os.Stdout, args[0])
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(cmd.Context(), sc, storage.New(dataDir(cmd)), logger)
	for _, r := range results {
		rep := r.Result.Report()
		fmt.Printf("  step %d: %s -> %s (drift %.2e)\n", r.Step, rep.Model, r.RunID, rep.Energy.Drift)
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fps") {
		cfg.FPS, _ = cmd.Flags().GetInt("fps")
	}

	model, err := experiment.NewRegistry().GetModel(cfg)
	if err != nil {
		return err
	}

	player, err := viz.NewPlayer(cfg.Model, model, dynamo.State(cfg.GetInitState()), cfg.Start, cfg.Dt, cfg.FPS)
	if err != nil {
		return err
	}

	p := tea.NewProgram(player, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	return player.Err()
}
