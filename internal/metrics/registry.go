package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/fieldsim/internal/diagnostics"
	"github.com/san-kum/fieldsim/internal/stability"
)

// Options feed probes that need run constants.
type Options struct {
	C0        float64
	Threshold float64
}

var probes = map[string]func(Options) diagnostics.Probe{
	"max_gradient":   func(Options) diagnostics.Probe { return MaxGradient{} },
	"max_laplacian":  func(Options) diagnostics.Probe { return MaxLaplacian{} },
	"gradient_l2":    func(Options) diagnostics.Probe { return GradientL2{} },
	"kinetic_proxy":  func(o Options) diagnostics.Probe { return KineticProxy{C0: o.C0} },
	"max_speed":      func(o Options) diagnostics.Probe { return MaxSpeed{C0: o.C0} },
	"companion_mean": func(Options) diagnostics.Probe { return CompanionMean{} },
	"stability": func(o Options) diagnostics.Probe {
		th := o.Threshold
		if th <= 0 {
			th = stability.DefaultThreshold
		}
		return NewStability(th)
	},
}

// Get builds the named probe.
func Get(name string, o Options) (diagnostics.Probe, error) {
	fn, ok := probes[name]
	if !ok {
		return nil, fmt.Errorf("unknown probe: %s", name)
	}
	return fn(o), nil
}

// Build resolves a list of names, failing on the first unknown one.
func Build(names []string, o Options) ([]diagnostics.Probe, error) {
	out := make([]diagnostics.Probe, 0, len(names))
	for _, n := range names {
		p, err := Get(n, o)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func List() []string {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default is the smoothness set recorded by the benchmark runs.
func Default(o Options) []diagnostics.Probe {
	return []diagnostics.Probe{
		MaxGradient{},
		MaxLaplacian{},
		GradientL2{},
		KineticProxy{C0: o.C0},
	}
}
