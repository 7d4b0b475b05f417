package experiment

import (
	"sort"

	errorsmod "cosmossdk.io/errors"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

// Model is what an experiment needs from a physics model: dynamics to
// integrate, energies to diagnose and a parameter listing to record.
type Model interface {
	dynamo.VectorField
	dynamo.EnergyModel
	Kind() dynamo.ModelKind
	ParamMap() map[string]float64
}

type Registry struct {
	models map[string]func(*config.Config) (Model, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func(*config.Config) (Model, error)),
	}

	r.models[config.ModelPendulum] = func(cfg *config.Config) (Model, error) {
		return physics.NewPendulum(cfg.PendulumParams())
	}
	r.models[config.ModelSpring] = func(cfg *config.Config) (Model, error) {
		p, err := cfg.SpringParams()
		if err != nil {
			return nil, err
		}
		return physics.NewSpringMass(p)
	}

	return r
}

func (r *Registry) GetModel(cfg *config.Config) (Model, error) {
	fn, ok := r.models[cfg.Model]
	if !ok {
		return nil, errorsmod.Wrapf(dynamo.ErrInvalidParameter, "unknown model %q", cfg.Model)
	}
	return fn(cfg)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
