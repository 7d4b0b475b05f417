package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. It starts from Preset (or the defaults), then
// applies Dt, Duration and Params; zero Dt or Duration keeps the base value.
type ScenarioStep struct {
	Model    string             `yaml:"model"`
	Preset   string             `yaml:"preset"`
	Dt       float64            `yaml:"dt"`
	Duration float64            `yaml:"duration"`
	Params   map[string]float64 `yaml:"params"`
	SaveAs   string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, errorsmod.Wrapf(dynamo.ErrInvalidParameter, "scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

func (s ScenarioStep) Config() (*config.Config, error) {
	model := s.Model
	if model == "" {
		model = config.ModelPendulum
	}

	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(model, s.Preset); cfg == nil {
			return nil, errorsmod.Wrapf(dynamo.ErrInvalidParameter, "unknown preset %s/%s", model, s.Preset)
		}
	}
	cfg.Model = model

	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}

	names := make([]string, 0, len(s.Params))
	for name := range s.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := cfg.Set(name, s.Params[name]); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Saver stores a finished run under a label.
type Saver interface {
	SaveAs(res *experiment.Result, label string) (string, error)
}

type StepResult struct {
	Step   int
	RunID  string
	Result *experiment.Result
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the steps completed so far. A nil saver skips storing.
func RunScenario(ctx context.Context, scenario *Scenario, saver Saver, logger log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = log.With(logger, "component", "scenario", "scenario", scenario.Name)

	registry := experiment.NewRegistry()
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Result: res}
		if saver != nil {
			if sr.RunID, err = saver.SaveAs(res, step.SaveAs); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)

		level.Info(logger).Log("msg", "step done", "step", i+1, "of", len(scenario.Steps), "model", cfg.Model, "run_id", sr.RunID)
	}

	return results, nil
}
