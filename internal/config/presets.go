package config

import (
	"sort"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/initial"
	"github.com/san-kum/fieldsim/internal/potential"
)

func params(kappa, beta, alpha, dt float64) engine.Params {
	p := engine.DefaultParams()
	p.Kappa, p.Beta, p.Alpha, p.Dt = kappa, beta, alpha, dt
	return p
}

var Presets = map[string]*Config{
	"lid_driven": {
		Name:        "lid_driven",
		Grid:        GridConfig{Shape: []int{32, 32}},
		Params:      params(0.01, 0.1, 1.0, 0.001),
		Potential:   potential.Quadratic,
		Boundary:    BoundaryConfig{Profile: boundary.Driven, SideWalls: true},
		Initial:     initial.Spec{Kind: initial.Gaussian, Amplitude: 0.1, Sigma: 0.1},
		Companion:   true,
		Stepper:     StepperConfig{Kind: "fixed"},
		Steps:       1000,
		SampleEvery: 10,
	},
	"poiseuille": {
		Name:        "poiseuille",
		Grid:        GridConfig{Shape: []int{32, 32}},
		Params:      params(0.01, 0.05, 1.0, 0.001),
		Potential:   potential.Quadratic,
		Boundary:    BoundaryConfig{Profile: boundary.PressureGradient},
		Initial:     initial.Spec{Kind: initial.Noise, Amplitude: 0.01},
		Companion:   true,
		Stepper:     StepperConfig{Kind: "fixed"},
		Steps:       500,
		SampleEvery: 10,
	},
	"high_reynolds": {
		Name:        "high_reynolds",
		Grid:        GridConfig{Shape: []int{32, 32}},
		Params:      params(0.0001, 0.01, 1.0, 0.0001),
		Potential:   potential.Quadratic,
		Boundary:    BoundaryConfig{Profile: boundary.Driven, SideWalls: true},
		Initial:     initial.Spec{Kind: initial.Noise, Amplitude: 0.1},
		Companion:   true,
		Stepper:     StepperConfig{Kind: "fixed"},
		Steps:       500,
		SampleEvery: 10,
	},
	"vortex": {
		Name:        "vortex",
		Grid:        GridConfig{Shape: []int{32, 32}},
		Params:      params(0.01, 0.1, 1.0, 0.001),
		Potential:   potential.Quadratic,
		Boundary:    BoundaryConfig{Profile: boundary.None},
		Initial:     initial.Spec{Kind: initial.Vortex, Amplitude: 0.1},
		Companion:   true,
		Stepper:     StepperConfig{Kind: "cfl"},
		Steps:       500,
		SampleEvery: 10,
		Probes:      []string{"kinetic_proxy", "max_speed", "max_gradient"},
	},
	"smooth_3d": {
		Name:        "smooth_3d",
		Grid:        GridConfig{Shape: []int{16, 16, 16}},
		Params:      params(0.01, 0.1, 1.0, 0.001),
		Potential:   potential.Quadratic,
		Boundary:    BoundaryConfig{Profile: boundary.None},
		Initial:     initial.Spec{Kind: initial.Gaussian, Amplitude: 0.1, Sigma: 0.1},
		Companion:   true,
		Stepper:     StepperConfig{Kind: "cfl"},
		Steps:       200,
		SampleEvery: 5,
		Probes:      []string{"max_gradient", "max_laplacian", "gradient_l2", "stability"},
	},
	"scale_3d": {
		Name:        "scale_3d",
		Grid:        GridConfig{Shape: []int{48, 48, 48}},
		Params:      params(0.01, 0.1, 1.0, 0.0001),
		Potential:   potential.Quadratic,
		Boundary:    BoundaryConfig{Profile: boundary.Driven, SideWalls: true},
		Initial:     initial.Spec{Kind: initial.Noise, Amplitude: 0.05},
		Companion:   true,
		Stepper:     StepperConfig{Kind: "cfl"},
		Steps:       100,
		SampleEvery: 10,
	},
	"double_well": {
		Name:        "double_well",
		Grid:        GridConfig{Shape: []int{64}},
		Params:      engine.Params{Kappa: 0.01, Alpha: 1, C0: 1, Dt: 0.001, Chi: 8, Floor: 0.01},
		Potential:   potential.DoubleWell,
		Boundary:    BoundaryConfig{Profile: boundary.None},
		Initial:     initial.Spec{Kind: initial.Noise, Amplitude: 0.2},
		Companion:   false,
		Stepper:     StepperConfig{Kind: "fixed"},
		Steps:       2000,
		SampleEvery: 20,
	},
	"benchmark": {
		Name:        "benchmark",
		Grid:        GridConfig{Shape: []int{32, 32}},
		Params:      params(0.01, 0.1, 2.0, 0.001),
		Potential:   potential.Quadratic,
		Boundary:    BoundaryConfig{Profile: boundary.Driven, SideWalls: true},
		Initial:     initial.Spec{Kind: initial.Gaussian, Amplitude: 0.1, Sigma: 0.1},
		Companion:   true,
		Stepper:     StepperConfig{Kind: "fixed"},
		Steps:       200,
		SampleEvery: 1,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
