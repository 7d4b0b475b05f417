package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != ModelPendulum {
		t.Errorf("expected model pendulum, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.PendulumParams().Validate(); err != nil {
		t.Errorf("default pendulum params invalid: %v", err)
	}
	sp, err := cfg.SpringParams()
	if err != nil {
		t.Fatal(err)
	}
	if err := sp.Validate(); err != nil {
		t.Errorf("default spring params invalid: %v", err)
	}
	if sp.Forcing != nil {
		t.Error("default spring should be free")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset(ModelSpring, "driven")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := Save(path, &Config{}); err != nil {
		t.Fatal(err)
	}
	// an explicitly zeroed file overrides everything
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Dt != 0 {
		t.Errorf("expected explicit zero dt, got %g", loaded.Dt)
	}

	if err := writeFile(path, "model: spring\nspring:\n  stiffness: 9\n"); err != nil {
		t.Fatal(err)
	}
	loaded, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Model != ModelSpring || loaded.Spring.Stiffness != 9 {
		t.Errorf("overrides not applied: %+v", loaded)
	}
	if loaded.Dt != DefaultDt || loaded.Spring.Mass != physics.DefaultMass {
		t.Errorf("defaults lost: dt=%g mass=%g", loaded.Dt, loaded.Spring.Mass)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetInitState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitState = InitStateConfig{Theta: 1, Omega: 2, Pos: 3, Vel: 4}

	if got := cfg.GetInitState(); got[0] != 1 || got[1] != 2 {
		t.Errorf("pendulum init state = %v", got)
	}
	cfg.Model = ModelSpring
	if got := cfg.GetInitState(); got[0] != 3 || got[1] != 4 {
		t.Errorf("spring init state = %v", got)
	}
}

func TestForcingBuild(t *testing.T) {
	tests := []struct {
		name string
		fc   ForcingConfig
		t    float64
		want float64
	}{
		{"sine", ForcingConfig{Kind: ForcingSine, Amplitude: 2, Frequency: 1}, 0, 2},
		{"constant", ForcingConfig{Kind: ForcingConstant, Amplitude: 3}, 5, 3},
		{"step before", ForcingConfig{Kind: ForcingStep, Amplitude: 1, Start: 2}, 1, 0},
		{"step after", ForcingConfig{Kind: ForcingStep, Amplitude: 1, Start: 2}, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.fc.Build()
			if err != nil {
				t.Fatal(err)
			}
			if got := f(tt.t); got != tt.want {
				t.Errorf("F(%g) = %g, want %g", tt.t, got, tt.want)
			}
		})
	}

	if f, err := (ForcingConfig{Kind: ForcingNone}).Build(); err != nil || f != nil {
		t.Errorf("none forcing: f=%v err=%v", f != nil, err)
	}
	if _, err := (ForcingConfig{Kind: "square"}).Build(); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected InvalidParameter, got %v", err)
	}
}

func TestForcingPeriod(t *testing.T) {
	period, ok := ForcingConfig{Kind: ForcingSine, Amplitude: 1, Frequency: 2}.Period()
	if !ok || math.Abs(period-math.Pi) > 1e-15 {
		t.Errorf("sine period = %g, %v; want pi", period, ok)
	}
	for _, fc := range []ForcingConfig{
		{Kind: ForcingNone},
		{Kind: ForcingConstant, Amplitude: 1},
		{Kind: ForcingSine, Amplitude: 1},
	} {
		if _, ok := fc.Period(); ok {
			t.Errorf("%+v should have no drive period", fc)
		}
	}
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Set("length", 2.5); err != nil {
		t.Fatal(err)
	}
	if cfg.Pendulum.Length != 2.5 {
		t.Errorf("length = %g", cfg.Pendulum.Length)
	}
	if err := cfg.Set("stiffness", 3); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("pendulum has no stiffness, got %v", err)
	}

	cfg.Model = ModelSpring
	if err := cfg.Set("stiffness", 3); err != nil {
		t.Fatal(err)
	}
	if cfg.Spring.Stiffness != 3 {
		t.Errorf("stiffness = %g", cfg.Spring.Stiffness)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset(ModelPendulum, "small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitState.Theta != 0.1 {
		t.Errorf("expected theta 0.1, got %f", cfg.InitState.Theta)
	}

	cfg.InitState.Theta = 9
	if again := GetPreset(ModelPendulum, "small"); again.InitState.Theta != 0.1 {
		t.Error("preset mutated through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset(ModelPendulum, "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "small")
	if cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets(ModelSpring)
	if len(presets) == 0 {
		t.Error("expected presets for spring")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] >= presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsValid(t *testing.T) {
	for model, presets := range Presets {
		for name, cfg := range presets {
			if cfg.Model != model {
				t.Errorf("%s/%s has model %s", model, name, cfg.Model)
			}
			switch model {
			case ModelPendulum:
				if err := cfg.PendulumParams().Validate(); err != nil {
					t.Errorf("%s/%s: %v", model, name, err)
				}
			case ModelSpring:
				sp, err := cfg.SpringParams()
				if err == nil {
					err = sp.Validate()
				}
				if err != nil {
					t.Errorf("%s/%s: %v", model, name, err)
				}
			}
		}
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
