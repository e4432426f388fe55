package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
)

// scenarioFlags are accepted by every command that builds a run.
type scenarioFlags struct {
	configFile  string
	steps       int
	dt          float64
	kappa       float64
	beta        float64
	alpha       float64
	chi         float64
	production  float64
	c0          float64
	boundary    string
	potential   string
	stepper     string
	initial     string
	probes      []string
	courant     float64
	shape       []int
	seed        int64
	sampleEvery int
}

var registry = experiment.NewRegistry()

func choices(names []string) string { return strings.Join(names, ", ") }

func (s *scenarioFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&s.configFile, "config", "c", "", "YAML scenario file")
	fs.IntVar(&s.steps, "steps", config.DefaultSteps, "number of steps")
	fs.Float64Var(&s.dt, "dt", 0, "time step")
	fs.Float64Var(&s.kappa, "kappa", 0, "gradient penalty κ")
	fs.Float64Var(&s.beta, "beta", 0, "coupling β")
	fs.Float64Var(&s.alpha, "alpha", 0, "potential curvature α")
	fs.Float64Var(&s.chi, "chi", 0, "double-well stiffness χ")
	fs.Float64Var(&s.production, "production", 0, "production rate")
	fs.Float64Var(&s.c0, "c0", 0, "reference level C₀")
	fs.StringVar(&s.boundary, "boundary", "", "boundary profile ("+choices(registry.ListBoundaries())+")")
	fs.StringVar(&s.potential, "potential", "", "potential ("+choices(registry.ListPotentials())+")")
	fs.StringVar(&s.stepper, "stepper", "", "step sizer ("+choices(registry.ListStepSizers())+")")
	fs.StringVar(&s.initial, "initial", "", "initial field (uniform, gaussian, noise, vortex)")
	fs.StringSliceVar(&s.probes, "probes", nil, "diagnostics probes ("+choices(registry.ListProbes())+")")
	fs.Float64Var(&s.courant, "courant", 0, "Courant number for the cfl stepper")
	fs.IntSliceVar(&s.shape, "shape", nil, "grid shape, e.g. 64,64")
	fs.Int64Var(&s.seed, "seed", 0, "random seed")
	fs.IntVar(&s.sampleEvery, "sample-every", config.DefaultSampleEvery, "diagnostics sampling period")
}

// resolve builds the scenario: preset, scenario file or defaults first,
// then FIELDSIM_* variables, then flags given on the command line.
func (s *scenarioFlags) resolve(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) > 0 && s.configFile != "":
		return nil, fmt.Errorf("give either a preset or --config, not both")
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (see 'fieldsim presets')", args[0])
		}
	case s.configFile != "":
		var err error
		cfg, err = config.Load(s.configFile)
		if err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	env, err := config.ParseEnv()
	if err != nil {
		return nil, err
	}
	if err := env.Apply(cfg); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("steps") {
		cfg.Steps = s.steps
	}
	if f.Changed("dt") {
		cfg.Params.Dt = s.dt
	}
	if f.Changed("kappa") {
		cfg.Params.Kappa = s.kappa
	}
	if f.Changed("beta") {
		cfg.Params.Beta = s.beta
	}
	if f.Changed("alpha") {
		cfg.Params.Alpha = s.alpha
	}
	if f.Changed("chi") {
		cfg.Params.Chi = s.chi
	}
	if f.Changed("production") {
		cfg.Params.Production = s.production
	}
	if f.Changed("c0") {
		cfg.Params.C0 = s.c0
	}
	if f.Changed("boundary") {
		p, err := registry.GetBoundary(s.boundary)
		if err != nil {
			return nil, err
		}
		cfg.Boundary.Profile = p
	}
	if f.Changed("potential") {
		k, err := registry.GetPotential(s.potential)
		if err != nil {
			return nil, err
		}
		cfg.Potential = k
	}
	if f.Changed("stepper") {
		cfg.Stepper.Kind = s.stepper
	}
	if f.Changed("initial") {
		k, err := registry.GetInitial(s.initial)
		if err != nil {
			return nil, err
		}
		cfg.Initial.Kind = k
	}
	if f.Changed("probes") {
		cfg.Probes = append([]string(nil), s.probes...)
	}
	if f.Changed("courant") {
		cfg.Stepper.Courant = s.courant
	}
	if f.Changed("shape") {
		cfg.Grid.Shape = append([]int(nil), s.shape...)
		cfg.Grid.Dx = 0
	}
	if f.Changed("seed") {
		cfg.Seed = s.seed
	}
	if f.Changed("sample-every") {
		cfg.SampleEvery = s.sampleEvery
	}
	return cfg, nil
}
