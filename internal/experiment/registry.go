package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/diagnostics"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/initial"
	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/potential"
)

// StepOptions parameterise the step-size strategies.
type StepOptions struct {
	Dt      float64
	Courant float64
	MinDt   float64
}

// Registry resolves the names used in scenario files and on the command line.
type Registry struct {
	steppers map[string]func(StepOptions) engine.StepSizer
}

func NewRegistry() *Registry {
	r := &Registry{
		steppers: make(map[string]func(StepOptions) engine.StepSizer),
	}

	r.steppers["fixed"] = func(o StepOptions) engine.StepSizer {
		return engine.Fixed{Dt: o.Dt}
	}
	r.steppers["cfl"] = func(o StepOptions) engine.StepSizer {
		courant := o.Courant
		if courant == 0 {
			courant = engine.DefaultCourant
		}
		return engine.CFL{Courant: courant, MaxDt: o.Dt, MinDt: o.MinDt}
	}

	return r
}

func (r *Registry) GetStepSizer(name string, o StepOptions) (engine.StepSizer, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown step sizer: %s", name)
	}
	return fn(o), nil
}

func (r *Registry) GetPotential(name string) (potential.Kind, error) {
	return potential.ParseKind(name)
}

func (r *Registry) GetBoundary(name string) (boundary.Profile, error) {
	return boundary.ParseProfile(name)
}

func (r *Registry) GetInitial(name string) (initial.Kind, error) {
	return initial.ParseKind(name)
}

// GetProbes builds fresh probe instances. Probes may hold state, so every
// engine needs its own set.
func (r *Registry) GetProbes(names []string, p engine.Params) ([]diagnostics.Probe, error) {
	return metrics.Build(names, metrics.Options{C0: p.C0})
}

func (r *Registry) DefaultProbes(p engine.Params) []diagnostics.Probe {
	return metrics.Default(metrics.Options{C0: p.C0})
}

func (r *Registry) ListStepSizers() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListPotentials() []string {
	var names []string
	for _, k := range potential.Kinds() {
		names = append(names, k.String())
	}
	return names
}

func (r *Registry) ListBoundaries() []string {
	var names []string
	for _, p := range boundary.Profiles() {
		names = append(names, p.String())
	}
	return names
}

func (r *Registry) ListProbes() []string { return metrics.List() }
