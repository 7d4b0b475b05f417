package config

import (
	"math"
	"sort"
)

func pendulumPreset(theta, damping, duration float64) *Config {
	cfg := DefaultConfig()
	cfg.Model = ModelPendulum
	cfg.Duration = duration
	cfg.InitState.Theta = theta
	cfg.Pendulum.Damping = damping
	return cfg
}

func springPreset(c, duration float64, forcing ForcingConfig) *Config {
	cfg := DefaultConfig()
	cfg.Model = ModelSpring
	cfg.Duration = duration
	cfg.Spring.Stiffness = 4
	cfg.Spring.Damping = c
	cfg.Spring.Forcing = forcing
	if forcing.Kind != ForcingNone {
		cfg.InitState.Pos = 0
	}
	return cfg
}

var free = ForcingConfig{Kind: ForcingNone}

var Presets = map[string]map[string]*Config{
	ModelPendulum: {
		"small":      pendulumPreset(0.1, 0, 20),
		"large":      pendulumPreset(math.Pi/2, 0, 20),
		"extreme":    pendulumPreset(3.0, 0, 40),
		"damped":     pendulumPreset(1.0, 0.5, 20),
		"overdamped": pendulumPreset(1.0, 8.0, 10),
	},
	ModelSpring: {
		"free":        springPreset(0, 20, free),
		"underdamped": springPreset(0.8, 20, free),
		"critical":    springPreset(4, 10, free),
		"overdamped":  springPreset(10, 10, free),
		"driven":      springPreset(0.4, 60, ForcingConfig{Kind: ForcingSine, Amplitude: 1, Frequency: 1.5}),
		"resonance":   springPreset(0.2, 60, ForcingConfig{Kind: ForcingSine, Amplitude: 1, Frequency: 2}),
		"step":        springPreset(1, 20, ForcingConfig{Kind: ForcingStep, Amplitude: 2, Start: 1}),
	},
}

// GetPreset returns a copy of the named preset, nil if unknown.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
