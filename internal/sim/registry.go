package sim

import (
	"fmt"
	"sort"

	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/metrics"
	"github.com/jmkerr/odelab/internal/models"
)

// Registry maps model names to constructors so the CLI and config layer
// can build systems by name.
type Registry struct {
	models map[string]func() dynamics.System
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func() dynamics.System),
	}

	r.models["twobody"] = func() dynamics.System { return models.NewTwoBody() }
	r.models["double_pendulum"] = func() dynamics.System { return models.NewDoublePendulum() }

	return r
}

func (r *Registry) GetModel(name string) (dynamics.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultState returns the canonical initial condition for a model.
func (r *Registry) DefaultState(name string) (dynamics.State, error) {
	sys, err := r.GetModel(name)
	if err != nil {
		return nil, err
	}
	switch m := sys.(type) {
	case *models.TwoBody:
		return m.DefaultState(), nil
	case *models.DoublePendulum:
		return m.DefaultState(), nil
	}
	return make(dynamics.State, sys.Dim()), nil
}

// DefaultMetrics returns the conserved-quantity diagnostics that make
// sense for a model.
func (r *Registry) DefaultMetrics(sys dynamics.System) []dynamics.Metric {
	var out []dynamics.Metric
	if ce, ok := sys.(dynamics.ConservesEnergy); ok {
		out = append(out, metrics.NewEnergyDrift(ce))
	}
	if tb, ok := sys.(*models.TwoBody); ok {
		out = append(out, metrics.NewCenterOfMassDrift(tb), metrics.NewAngularMomentumDrift(tb))
	}
	return out
}
