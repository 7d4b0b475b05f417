package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/oscsim/internal/config"
)

const envPrefix = "OSCSIM"

var logger kitlog.Logger = kitlog.NewNopLogger()

func newLogger(lvl string) (kitlog.Logger, error) {
	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	case "none":
		opt = level.AllowNone()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}

	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	l = level.NewFilter(l, opt)
	return kitlog.With(l, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller), nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "oscsim",
		Short:        "pendulum and mass-spring-damper lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := newViper(cmd)
			l, err := newLogger(v.GetString("log-level"))
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().String("data", ".oscsim", "data directory")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error, none")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().Bool("no-save", false, "print the summary without storing the run")

	periodCmd := &cobra.Command{
		Use:   "period [theta_max]",
		Short: "exact pendulum period from the elliptic integral",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exactPeriod,
	}
	periodCmd.Flags().Float64("length", config.DefaultConfig().Pendulum.Length, "pendulum length")
	periodCmd.Flags().Float64("gravity", config.DefaultConfig().Pendulum.Gravity, "gravitational acceleration")
	periodCmd.Flags().Bool("deg", false, "amplitude in degrees")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run one integration per parameter value",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepParam,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().String("param", "", "parameter to vary (e.g. length, damping, theta)")
	sweepCmd.Flags().Float64Slice("values", nil, "explicit values")
	sweepCmd.Flags().Float64("from", 0, "first value of an even grid")
	sweepCmd.Flags().Float64("to", 0, "last value of an even grid")
	sweepCmd.Flags().Int("n", 5, "grid size")
	sweepCmd.Flags().Int("workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	_ = sweepCmd.MarkFlagRequired("param")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot position, velocity and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot, re-integrated from the stored config",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().Int("width", 60, "plot width")
	phaseCmd.Flags().Int("height", 20, "plot height")
	phaseCmd.Flags().String("svg", "", "also write the portrait to an SVG file")
	phaseCmd.Flags().Bool("strobe", false, "sample once per drive period (sine-driven spring runs)")
	plotCmd.Flags().String("svg", "", "also write the energy curve to an SVG file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and store every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples and energies to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

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

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "animate a model in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	liveCmd.Flags().Int("fps", config.DefaultFPS, "frame rate")

	rootCmd.AddCommand(runCmd, periodCmd, sweepCmd, listCmd, plotCmd, phaseCmd, exportCSVCmd, exportJSONCmd, presetsCmd, liveCmd, scenarioCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// addModelFlags registers the overrides resolveConfig understands. Defaults
// only document the built-in config; an unset flag never overrides a preset
// or config file.
func addModelFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.String("config", "", "config file path (yaml)")
	f.String("preset", "", "use preset configuration")
	f.Float64("dt", d.Dt, "timestep")
	f.Float64("time", d.Duration, "duration")
	f.Float64("start", d.Start, "start time")
	f.Float64("theta", d.InitState.Theta, "initial angle (rad)")
	f.Float64("omega", d.InitState.Omega, "initial angular velocity")
	f.Float64("pos", d.InitState.Pos, "initial position")
	f.Float64("vel", d.InitState.Vel, "initial velocity")
	f.Float64("length", d.Pendulum.Length, "pendulum length")
	f.Float64("gravity", d.Pendulum.Gravity, "gravitational acceleration")
	f.Float64("mass", d.Spring.Mass, "mass")
	f.Float64("damping", d.Spring.Damping, "damping (pendulum gamma or spring c)")
	f.Float64("stiffness", d.Spring.Stiffness, "spring stiffness")
	f.String("forcing", d.Spring.Forcing.Kind, "forcing: none, sine, constant, step")
	f.Float64("amplitude", 0, "forcing amplitude")
	f.Float64("frequency", 0, "forcing angular frequency")
	f.Float64("phase", 0, "forcing phase")
	f.Float64("step-start", 0, "switch-on time of a step force")
}

func newViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	return v
}

type override struct {
	key   string
	apply func(c *config.Config, v float64)
}

var overrides = []override{
	{"dt", func(c *config.Config, v float64) { c.Dt = v }},
	{"time", func(c *config.Config, v float64) { c.Duration = v }},
	{"start", func(c *config.Config, v float64) { c.Start = v }},
	{"theta", func(c *config.Config, v float64) { c.InitState.Theta = v }},
	{"omega", func(c *config.Config, v float64) { c.InitState.Omega = v }},
	{"pos", func(c *config.Config, v float64) { c.InitState.Pos = v }},
	{"vel", func(c *config.Config, v float64) { c.InitState.Vel = v }},
	{"length", func(c *config.Config, v float64) { c.Pendulum.Length = v }},
	{"gravity", func(c *config.Config, v float64) { c.Pendulum.Gravity = v }},
	{"stiffness", func(c *config.Config, v float64) { c.Spring.Stiffness = v }},
	{"amplitude", func(c *config.Config, v float64) { c.Spring.Forcing.Amplitude = v }},
	{"frequency", func(c *config.Config, v float64) { c.Spring.Forcing.Frequency = v }},
	{"phase", func(c *config.Config, v float64) { c.Spring.Forcing.Phase = v }},
	{"step-start", func(c *config.Config, v float64) { c.Spring.Forcing.Start = v }},
	{"mass", func(c *config.Config, v float64) {
		c.Pendulum.Mass = v
		c.Spring.Mass = v
	}},
	{"damping", func(c *config.Config, v float64) {
		c.Pendulum.Damping = v
		c.Spring.Damping = v
	}},
}

// resolveConfig layers, lowest first: built-in defaults, a preset or config
// file, OSCSIM_* environment variables, then explicit flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	v := newViper(cmd)

	var model string
	if len(args) > 0 {
		model = args[0]
	}

	cfg := config.DefaultConfig()
	switch path, preset := v.GetString("config"), v.GetString("preset"); {
	case path != "" && preset != "":
		return nil, fmt.Errorf("--config and --preset are exclusive")
	case path != "":
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case preset != "":
		if model == "" {
			model = cfg.Model
		}
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}
	if model != "" {
		cfg.Model = model
	}

	for _, o := range overrides {
		if v.IsSet(o.key) {
			o.apply(cfg, v.GetFloat64(o.key))
		}
	}
	if v.IsSet("forcing") {
		cfg.Spring.Forcing.Kind = v.GetString("forcing")
	}

	level.Debug(logger).Log("msg", "resolved config", "model", cfg.Model, "dt", cfg.Dt, "duration", cfg.Duration)
	return cfg, nil
}
