package config

import (
	"fmt"
	"math"
	"os"

	errorsmod "cosmossdk.io/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultTheta    = 0.5
	DefaultPos      = 1.0
	DefaultFPS      = 30
)

const (
	ModelPendulum = "pendulum"
	ModelSpring   = "spring"
)

const (
	ForcingNone     = "none"
	ForcingSine     = "sine"
	ForcingConstant = "constant"
	ForcingStep     = "step"
)

type Config struct {
	Model     string          `yaml:"model"`
	Dt        float64         `yaml:"dt"`
	Duration  float64         `yaml:"duration"`
	Start     float64         `yaml:"start"`
	InitState InitStateConfig `yaml:"init_state"`
	Pendulum  PendulumConfig  `yaml:"pendulum"`
	Spring    SpringConfig    `yaml:"spring"`
	FPS       int             `yaml:"fps"`
}

type InitStateConfig struct {
	Theta float64 `yaml:"theta"`
	Omega float64 `yaml:"omega"`
	Pos   float64 `yaml:"pos"`
	Vel   float64 `yaml:"vel"`
}

type PendulumConfig struct {
	Length  float64 `yaml:"length"`
	Gravity float64 `yaml:"gravity"`
	Damping float64 `yaml:"damping"`
	Mass    float64 `yaml:"mass"`
}

type SpringConfig struct {
	Mass      float64       `yaml:"mass"`
	Damping   float64       `yaml:"damping"`
	Stiffness float64       `yaml:"stiffness"`
	Forcing   ForcingConfig `yaml:"forcing"`
}

// ForcingConfig describes F(t). Frequency is angular (rad/s); Start is the
// switch-on time of a step.
type ForcingConfig struct {
	Kind      string  `yaml:"kind"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
	Phase     float64 `yaml:"phase"`
	Start     float64 `yaml:"start"`
}

func DefaultConfig() *Config {
	pp := physics.DefaultPendulumParams()
	sp := physics.DefaultSpringParams()
	return &Config{
		Model:    ModelPendulum,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		InitState: InitStateConfig{
			Theta: DefaultTheta,
			Pos:   DefaultPos,
		},
		Pendulum: PendulumConfig{
			Length:  pp.Length,
			Gravity: pp.Gravity,
			Damping: pp.Damping,
			Mass:    pp.Mass,
		},
		Spring: SpringConfig{
			Mass:      sp.Mass,
			Damping:   sp.Damping,
			Stiffness: sp.Stiffness,
			Forcing:   ForcingConfig{Kind: ForcingNone},
		},
		FPS: DefaultFPS,
	}
}

// Load reads a yaml file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy; Config holds no reference types.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) GetInitState() []float64 {
	switch c.Model {
	case ModelSpring:
		return []float64{c.InitState.Pos, c.InitState.Vel}
	default:
		return []float64{c.InitState.Theta, c.InitState.Omega}
	}
}

func (c *Config) PendulumParams() physics.PendulumParams {
	return physics.PendulumParams{
		Length:  c.Pendulum.Length,
		Gravity: c.Pendulum.Gravity,
		Damping: c.Pendulum.Damping,
		Mass:    c.Pendulum.Mass,
	}
}

func (c *Config) SpringParams() (physics.SpringParams, error) {
	forcing, err := c.Spring.Forcing.Build()
	if err != nil {
		return physics.SpringParams{}, err
	}
	return physics.SpringParams{
		Mass:      c.Spring.Mass,
		Damping:   c.Spring.Damping,
		Stiffness: c.Spring.Stiffness,
		Forcing:   forcing,
	}, nil
}

// Build returns the forcing function, nil for a free oscillator.
func (f ForcingConfig) Build() (physics.Forcing, error) {
	switch f.Kind {
	case "", ForcingNone:
		return nil, nil
	case ForcingSine:
		return physics.Sinusoidal(f.Amplitude, f.Frequency, f.Phase), nil
	case ForcingConstant:
		return physics.Constant(f.Amplitude), nil
	case ForcingStep:
		return physics.StepAt(f.Amplitude, f.Start), nil
	default:
		return nil, errorsmod.Wrapf(dynamo.ErrInvalidParameter, "unknown forcing kind %q", f.Kind)
	}
}

// Period is the drive period 2*pi/Frequency of a sine forcing. ok is false
// for any other forcing or a non-positive frequency.
func (f ForcingConfig) Period() (period float64, ok bool) {
	if f.Kind != ForcingSine || !(f.Frequency > 0) || math.IsInf(f.Frequency, 0) {
		return 0, false
	}
	return 2 * math.Pi / f.Frequency, true
}

// Set assigns a named parameter of the configured model. Sweeps use it to
// vary one constant at a time.
func (c *Config) Set(name string, value float64) error {
	switch c.Model + "." + name {
	case "pendulum.length":
		c.Pendulum.Length = value
	case "pendulum.gravity":
		c.Pendulum.Gravity = value
	case "pendulum.damping":
		c.Pendulum.Damping = value
	case "pendulum.mass":
		c.Pendulum.Mass = value
	case "pendulum.theta":
		c.InitState.Theta = value
	case "pendulum.omega":
		c.InitState.Omega = value
	case "spring.mass":
		c.Spring.Mass = value
	case "spring.damping":
		c.Spring.Damping = value
	case "spring.stiffness":
		c.Spring.Stiffness = value
	case "spring.pos":
		c.InitState.Pos = value
	case "spring.vel":
		c.InitState.Vel = value
	case "spring.amplitude":
		c.Spring.Forcing.Amplitude = value
	case "spring.frequency":
		c.Spring.Forcing.Frequency = value
	default:
		return errorsmod.Wrapf(dynamo.ErrInvalidParameter, "unknown %s parameter %q", c.Model, name)
	}
	return nil
}
