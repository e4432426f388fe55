package engine

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/diagnostics"
	"github.com/san-kum/fieldsim/internal/grid"
	"github.com/san-kum/fieldsim/internal/potential"
	"github.com/san-kum/fieldsim/internal/stability"
)

type Phase int

const (
	Initialized Phase = iota
	Stepping
	Stable
	BlownUp
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "initialized"
	case Stepping:
		return "stepping"
	case Stable:
		return "stable"
	case BlownUp:
		return "blown_up"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// BoundarySpec selects the boundary profile and its forcing.
type BoundarySpec struct {
	Profile   boundary.Profile
	Epsilon   *float64 // nil for the profile default
	SideWalls bool
}

// Config is everything needed to build an engine. Initial is copied.
// Companion may be nil; set WithCompanion to start the companion at zero.
type Config struct {
	Shape         []int
	Dx            float64
	Params        Params
	Potential     potential.Kind
	Boundary      BoundarySpec
	Initial       []float64
	Companion     []float64
	WithCompanion bool
	StepSizer     StepSizer
	SampleEvery   int
	Threshold     float64
	Probes        []diagnostics.Probe
}

// NewConfig fills a config with the defaults used by the solver scripts:
// quadratic potential, a companion field, side walls pinned, a sample per
// step and a uniform initial field at C₀.
func NewConfig(shape []int, dx float64, p Params, profile boundary.Profile) Config {
	n := 1
	for _, s := range shape {
		n *= s
	}
	initial := make([]float64, n)
	for i := range initial {
		initial[i] = p.C0
	}
	return Config{
		Shape:         append([]int(nil), shape...),
		Dx:            dx,
		Params:        p,
		Potential:     potential.Quadratic,
		Boundary:      BoundarySpec{Profile: profile, SideWalls: true},
		Initial:       initial,
		WithCompanion: true,
		SampleEvery:   1,
	}
}

// Engine advances a primary field C, and optionally a companion I, by
// explicit gradient descent on Ω. It is not safe for concurrent use.
type Engine struct {
	params  Params
	pot     potential.Model
	policy  boundary.Policy
	sizer   StepSizer
	monitor stability.Monitor
	probes  []diagnostics.Probe

	c *grid.Field
	i *grid.Field

	lap  []float64
	dOdC []float64
	dOdI []float64

	time        float64
	steps       int
	lastDt      float64
	clamped     int
	lastClamped int
	sampleEvery int

	phase   Phase
	verdict stability.Verdict
	diag    *diagnostics.Recorder
}

// New validates cfg, copies the initial fields, pins the boundary and
// records the step-0 sample.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.SampleEvery < 0 {
		return nil, invalid("sample interval must be positive, got %d", cfg.SampleEvery)
	}
	if cfg.Threshold < 0 {
		return nil, invalid("blow-up threshold must be positive, got %g", cfg.Threshold)
	}

	c, err := grid.FromValues(cfg.Shape, cfg.Dx, cfg.Initial)
	if err != nil {
		return nil, wrapGridErr("initial field", err)
	}

	var comp *grid.Field
	switch {
	case cfg.Companion != nil:
		comp, err = grid.FromValues(cfg.Shape, cfg.Dx, cfg.Companion)
		if err != nil {
			return nil, wrapGridErr("companion field", err)
		}
	case cfg.WithCompanion:
		comp, _ = grid.New(cfg.Shape, cfg.Dx)
	}

	pot, err := potential.New(cfg.Potential, potential.Params{
		Alpha: cfg.Params.Alpha,
		C0:    cfg.Params.C0,
		Chi:   cfg.Params.Chi,
	})
	if err != nil {
		return nil, invalid("%v", err)
	}

	policy, err := boundary.New(cfg.Boundary.Profile, boundary.Settings{
		C0:        cfg.Params.C0,
		Epsilon:   cfg.Boundary.Epsilon,
		SideWalls: cfg.Boundary.SideWalls,
	})
	if err != nil {
		return nil, invalid("%v", err)
	}
	for _, v := range policy.Targets() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= cfg.Params.Floor {
			return nil, invalid("%s boundary pins cells at %g, must be finite and above the floor %g",
				cfg.Boundary.Profile, v, cfg.Params.Floor)
		}
	}

	sizer := cfg.StepSizer
	if sizer == nil {
		sizer = Fixed{}
	}
	if v, ok := sizer.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	every := cfg.SampleEvery
	if every == 0 {
		every = 1
	}

	e := &Engine{
		params:      cfg.Params,
		pot:         pot,
		policy:      policy,
		sizer:       sizer,
		monitor:     stability.NewMonitor(cfg.Threshold),
		probes:      append([]diagnostics.Probe(nil), cfg.Probes...),
		c:           c,
		i:           comp,
		lap:         make([]float64, c.Len()),
		dOdC:        make([]float64, c.Len()),
		sampleEvery: every,
		phase:       Initialized,
		verdict:     stability.Smooth(),
		diag:        diagnostics.NewRecorder(64),
	}
	if comp != nil {
		e.dOdI = make([]float64, c.Len())
	}

	e.policy.Apply(e.c)
	e.record()
	return e, nil
}

func wrapGridErr(what string, err error) error {
	if errors.Is(err, grid.ErrSpacing) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, what, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrShapeMismatch, what, err)
}

// Step performs one explicit Euler update. Divergence is never reported
// here; call Check afterwards. Once Check has seen a blow-up every further
// call returns ErrHalted and leaves the state untouched.
func (e *Engine) Step() error {
	if e.phase == BlownUp {
		return ErrHalted
	}
	e.phase = Stepping

	dt := e.sizer.Next(e.c, e.params)
	c := e.c.Values()

	grid.LaplacianInto(e.lap, e.c)
	potential.Derive(e.pot, e.dOdC, c)
	floats.AddScaled(e.dOdC, -e.params.Kappa, e.lap)

	if e.i != nil {
		iv := e.i.Values()
		floats.AddScaled(e.dOdC, e.params.Beta, iv)
		floats.ScaleTo(e.dOdI, e.params.Beta, c)
		if e.params.Production > 0 {
			floats.AddScaled(e.dOdI, -e.params.Production, grid.GradientSquared(e.c))
		}
		floats.AddScaled(iv, -dt, e.dOdI)
	}
	floats.AddScaled(c, -dt, e.dOdC)

	e.lastClamped = e.c.ClampMin(e.params.Floor)
	e.clamped += e.lastClamped
	e.policy.Apply(e.c)

	e.time += dt
	e.steps++
	e.lastDt = dt

	if e.steps%e.sampleEvery == 0 {
		e.record()
	}
	return nil
}

// Check classifies the current state. The first blow-up is latched: the
// engine becomes terminal and later calls return the same verdict.
func (e *Engine) Check() stability.Verdict {
	if e.phase == BlownUp {
		return e.verdict
	}
	v := e.monitor.Check(e.c.Values(), true)
	if v.Smooth() && e.i != nil {
		v = e.monitor.Check(e.i.Values(), false)
	}
	if v.BlownUp {
		e.verdict = v.AtStep(e.steps)
		e.phase = BlownUp
		return e.verdict
	}
	if e.phase == Stepping {
		e.phase = Stable
	}
	return v
}

func (e *Engine) IsSmooth() bool { return e.Check().Smooth() }

// Err returns a *BlowUpError once the engine is terminal, nil otherwise.
func (e *Engine) Err() error {
	if e.phase != BlownUp {
		return nil
	}
	return &BlowUpError{Step: e.verdict.Step, Time: e.time, Verdict: e.verdict}
}

// Omega is Σ[V(C) + κ/2|∇C|² + βCI]·dx^d with the gradient term taken
// over neighbouring pairs, so that it is the exact functional the update
// descends at interior cells.
func (e *Engine) Omega() float64 {
	c := e.c.Values()
	sum := potential.Total(e.pot, c) + e.params.Kappa*grid.GradientEnergy(e.c)
	if e.i != nil {
		sum += e.params.Beta * floats.Dot(c, e.i.Values())
	}
	return sum * e.c.CellVolume()
}

// Velocity is the synthetic flow −∇C/C₀, one component per axis.
func (e *Engine) Velocity() [][]float64 {
	grad := grid.Gradient(e.c)
	for _, g := range grad {
		floats.Scale(-1/e.params.C0, g)
	}
	return grad
}

func (e *Engine) record() {
	c := e.c
	e.diag.Record(diagnostics.Sample{
		Step:   e.steps,
		Time:   e.time,
		Dt:     e.lastDt,
		Omega:  e.Omega(),
		Min:    c.Min(),
		Max:    c.Max(),
		Mean:   c.Mean(),
		Probes: diagnostics.Measure(e.probes, c, e.i),
	})
}

// C returns a copy of the primary field.
func (e *Engine) C() *grid.Field { return e.c.Clone() }

// I returns a copy of the companion field, or nil without one.
func (e *Engine) I() *grid.Field {
	if e.i == nil {
		return nil
	}
	return e.i.Clone()
}

func (e *Engine) Shape() []int                       { return e.c.Shape() }
func (e *Engine) Params() Params                     { return e.params }
func (e *Engine) Time() float64                      { return e.time }
func (e *Engine) Steps() int                         { return e.steps }
func (e *Engine) LastDt() float64                    { return e.lastDt }
func (e *Engine) Phase() Phase                       { return e.phase }
func (e *Engine) Potential() potential.Model         { return e.pot }
func (e *Engine) Boundary() boundary.Profile         { return e.policy.Profile() }
func (e *Engine) StepSizer() StepSizer               { return e.sizer }
func (e *Engine) Diagnostics() *diagnostics.Recorder { return e.diag }
func (e *Engine) HasCompanion() bool                 { return e.i != nil }

// Clamped is the total number of cell updates raised to the floor.
func (e *Engine) Clamped() int { return e.clamped }

// LastClamped counts floor clamps in the most recent step.
func (e *Engine) LastClamped() int { return e.lastClamped }

// BlowUpStep reports the step of the first failed check.
func (e *Engine) BlowUpStep() (int, bool) {
	if e.phase != BlownUp {
		return 0, false
	}
	return e.verdict.Step, true
}
