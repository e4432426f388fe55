package engine

import (
	"math"

	"github.com/san-kum/fieldsim/internal/grid"
)

// StepSizer picks the time step for the next update from the field about
// to be advanced.
type StepSizer interface {
	Name() string
	Next(c *grid.Field, p Params) float64
}

type validator interface {
	Validate() error
}

// Fixed always returns Dt, or the run's dt when Dt is zero.
type Fixed struct {
	Dt float64
}

func (Fixed) Name() string { return "fixed" }

func (f Fixed) Next(_ *grid.Field, p Params) float64 {
	if f.Dt > 0 {
		return f.Dt
	}
	return p.Dt
}

func (f Fixed) Validate() error {
	if f.Dt < 0 || !finite(f.Dt) {
		return invalid("fixed dt must be non-negative, got %g", f.Dt)
	}
	return nil
}

const (
	DefaultCourant = 0.3
	minVelocity    = 1e-12
)

// CFL bounds dt by the advective limit Courant·dx/|v|max of the synthetic
// velocity −∇C/C₀ and by Courant times the diffusive limit, then clamps the
// result into [MinDt, MaxDt]. A zero MaxDt uses the run's dt.
type CFL struct {
	Courant float64
	MaxDt   float64
	MinDt   float64
}

func (CFL) Name() string { return "cfl" }

func (s CFL) Validate() error {
	switch {
	case s.Courant < 0 || !finite(s.Courant):
		return invalid("courant number must be non-negative, got %g", s.Courant)
	case s.MinDt < 0 || !finite(s.MinDt):
		return invalid("min dt must be non-negative, got %g", s.MinDt)
	case s.MaxDt < 0 || !finite(s.MaxDt):
		return invalid("max dt must be non-negative, got %g", s.MaxDt)
	case s.MaxDt > 0 && s.MinDt > s.MaxDt:
		return invalid("min dt %g exceeds max dt %g", s.MinDt, s.MaxDt)
	}
	return nil
}

func (s CFL) Next(c *grid.Field, p Params) float64 {
	courant := s.Courant
	if courant == 0 {
		courant = DefaultCourant
	}
	maxDt := s.MaxDt
	if maxDt == 0 {
		maxDt = p.Dt
	}

	dt := maxDt
	if v := MaxSpeed(c, p.C0); math.IsNaN(v) || v > minVelocity {
		dt = math.Min(dt, courant*c.Dx()/v)
	}
	dt = math.Min(dt, courant*p.DiffusiveLimit(c.Dx(), c.Dims()))

	if math.IsNaN(dt) || dt < s.MinDt {
		dt = s.MinDt
	}
	if !(dt > 0) {
		dt = maxDt
	}
	return dt
}

// MaxSpeed is the largest magnitude of the synthetic velocity −∇C/C₀.
func MaxSpeed(c *grid.Field, c0 float64) float64 {
	grad := grid.Gradient(c)
	vmax := 0.0
	for i := 0; i < c.Len(); i++ {
		sq := 0.0
		for _, g := range grad {
			sq += g[i] * g[i]
		}
		if math.IsNaN(sq) {
			return math.NaN()
		}
		vmax = math.Max(vmax, sq)
	}
	return math.Sqrt(vmax) / c0
}
