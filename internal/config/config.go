// Package config loads run scenarios from YAML, named presets and
// FIELDSIM_* environment variables, and turns them into engine configs.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/initial"
	"github.com/san-kum/fieldsim/internal/potential"
)

const (
	DefaultSize        = 32
	DefaultSteps       = 1000
	DefaultSampleEvery = 1
	DefaultStepper     = "fixed"
	DefaultAmplitude   = 0.1
	DefaultSigma       = 0.1
)

type Config struct {
	Name        string         `yaml:"name"`
	Grid        GridConfig     `yaml:"grid"`
	Params      engine.Params  `yaml:"params"`
	Potential   potential.Kind `yaml:"potential"`
	Boundary    BoundaryConfig `yaml:"boundary"`
	Initial     initial.Spec   `yaml:"initial"`
	Companion   bool           `yaml:"companion"`
	Stepper     StepperConfig  `yaml:"stepper"`
	Steps       int            `yaml:"steps"`
	SampleEvery int            `yaml:"sample_every"`
	Threshold   float64        `yaml:"threshold"`
	Probes      []string       `yaml:"probes"`
	Seed        int64          `yaml:"seed"`
}

type GridConfig struct {
	Shape []int   `yaml:"shape"`
	Dx    float64 `yaml:"dx"` // zero means 1/shape[0]
}

type BoundaryConfig struct {
	Profile   boundary.Profile `yaml:"profile"`
	Epsilon   *float64         `yaml:"epsilon,omitempty"` // unset means the profile default
	SideWalls bool             `yaml:"side_walls"`
}

type StepperConfig struct {
	Kind    string  `yaml:"kind"`
	Courant float64 `yaml:"courant"`
	MinDt   float64 `yaml:"min_dt"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:      "default",
		Grid:      GridConfig{Shape: []int{DefaultSize, DefaultSize}},
		Params:    engine.DefaultParams(),
		Potential: potential.Quadratic,
		Boundary:  BoundaryConfig{Profile: boundary.Driven, SideWalls: true},
		Initial: initial.Spec{
			Kind:      initial.Gaussian,
			Amplitude: DefaultAmplitude,
			Sigma:     DefaultSigma,
		},
		Companion:   true,
		Stepper:     StepperConfig{Kind: DefaultStepper},
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
	}
}

// Load reads a YAML scenario on top of the defaults.
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

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Grid.Shape = append([]int(nil), c.Grid.Shape...)
	out.Probes = append([]string(nil), c.Probes...)
	if c.Boundary.Epsilon != nil {
		out.Boundary.Epsilon = boundary.Forcing(*c.Boundary.Epsilon)
	}
	return &out
}

// Dx returns the grid spacing, defaulting to a unit domain along axis 0.
func (c *Config) Dx() float64 {
	if c.Grid.Dx > 0 {
		return c.Grid.Dx
	}
	if len(c.Grid.Shape) == 0 || c.Grid.Shape[0] <= 0 {
		return 0
	}
	return 1.0 / float64(c.Grid.Shape[0])
}

// Overrides are the environment variables honoured on top of a scenario.
// Unset variables leave the scenario untouched.
type Overrides struct {
	Steps      *int     `env:"FIELDSIM_STEPS"`
	Dt         *float64 `env:"FIELDSIM_DT"`
	Kappa      *float64 `env:"FIELDSIM_KAPPA"`
	Beta       *float64 `env:"FIELDSIM_BETA"`
	Alpha      *float64 `env:"FIELDSIM_ALPHA"`
	Production *float64 `env:"FIELDSIM_PRODUCTION"`
	Seed       *int64   `env:"FIELDSIM_SEED"`
	Boundary   *string  `env:"FIELDSIM_BOUNDARY"`
	Potential  *string  `env:"FIELDSIM_POTENTIAL"`
	Stepper    *string  `env:"FIELDSIM_STEPPER"`
	Shape      []int    `env:"FIELDSIM_SHAPE" envSeparator:","`
}

// ParseEnv reads Overrides from the process environment.
func ParseEnv() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return o, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// Apply writes every set override into c.
func (o Overrides) Apply(c *Config) error {
	if o.Steps != nil {
		c.Steps = *o.Steps
	}
	if o.Dt != nil {
		c.Params.Dt = *o.Dt
	}
	if o.Kappa != nil {
		c.Params.Kappa = *o.Kappa
	}
	if o.Beta != nil {
		c.Params.Beta = *o.Beta
	}
	if o.Alpha != nil {
		c.Params.Alpha = *o.Alpha
	}
	if o.Production != nil {
		c.Params.Production = *o.Production
	}
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
	if o.Boundary != nil {
		p, err := boundary.ParseProfile(*o.Boundary)
		if err != nil {
			return fmt.Errorf("FIELDSIM_BOUNDARY: %w", err)
		}
		c.Boundary.Profile = p
	}
	if o.Potential != nil {
		k, err := potential.ParseKind(*o.Potential)
		if err != nil {
			return fmt.Errorf("FIELDSIM_POTENTIAL: %w", err)
		}
		c.Potential = k
	}
	if o.Stepper != nil {
		c.Stepper.Kind = *o.Stepper
	}
	if len(o.Shape) > 0 {
		c.Grid.Shape = append([]int(nil), o.Shape...)
		c.Grid.Dx = 0
	}
	return nil
}

// Build resolves names through reg and produces a runnable experiment.
// The initial field baseline is C₀ and its noise seed is Seed unless the
// scenario sets its own.
func (c *Config) Build(reg *experiment.Registry) (experiment.Config, error) {
	dx := c.Dx()
	ec := engine.NewConfig(c.Grid.Shape, dx, c.Params, c.Boundary.Profile)
	ec.Potential = c.Potential
	ec.Boundary = engine.BoundarySpec{
		Profile:   c.Boundary.Profile,
		Epsilon:   c.Boundary.Epsilon,
		SideWalls: c.Boundary.SideWalls,
	}
	ec.WithCompanion = c.Companion
	ec.SampleEvery = c.SampleEvery
	ec.Threshold = c.Threshold

	spec := c.Initial
	if spec.Base == 0 {
		spec.Base = c.Params.C0
	}
	if spec.Seed == 0 {
		spec.Seed = c.Seed
	}
	vals, err := initial.Build(c.Grid.Shape, dx, spec)
	if err != nil {
		return experiment.Config{}, fmt.Errorf("%w: initial field: %v", engine.ErrShapeMismatch, err)
	}
	ec.Initial = vals

	kind := c.Stepper.Kind
	if kind == "" {
		kind = DefaultStepper
	}
	sizer, err := reg.GetStepSizer(kind, experiment.StepOptions{
		Dt:      c.Params.Dt,
		Courant: c.Stepper.Courant,
		MinDt:   c.Stepper.MinDt,
	})
	if err != nil {
		return experiment.Config{}, err
	}
	ec.StepSizer = sizer

	if len(c.Probes) > 0 {
		ec.Probes, err = reg.GetProbes(c.Probes, c.Params)
		if err != nil {
			return experiment.Config{}, err
		}
	} else {
		ec.Probes = reg.DefaultProbes(c.Params)
	}

	return experiment.Config{
		Name:   c.Name,
		Engine: ec,
		Steps:  c.Steps,
		Seed:   c.Seed,
	}, nil
}
