package engine

import "math"

const (
	DefaultKappa = 0.01
	DefaultBeta  = 0.1
	DefaultAlpha = 1.0
	DefaultC0    = 1.0
	DefaultDt    = 0.001
	DefaultChi   = 1.0
	DefaultFloor = 0.01
)

// Params are the constants of one run. They never change while an engine
// is alive; build a new engine to try other values.
type Params struct {
	Kappa      float64 `yaml:"kappa" json:"kappa"`
	Beta       float64 `yaml:"beta" json:"beta"`
	Alpha      float64 `yaml:"alpha" json:"alpha"`
	C0         float64 `yaml:"c0" json:"c0"`
	Dt         float64 `yaml:"dt" json:"dt"`
	Chi        float64 `yaml:"chi" json:"chi"`
	Floor      float64 `yaml:"floor" json:"floor"`
	Production float64 `yaml:"production" json:"production"`
}

func DefaultParams() Params {
	return Params{
		Kappa: DefaultKappa,
		Beta:  DefaultBeta,
		Alpha: DefaultAlpha,
		C0:    DefaultC0,
		Dt:    DefaultDt,
		Chi:   DefaultChi,
		Floor: DefaultFloor,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Validate reports the first parameter outside its range.
func (p Params) Validate() error {
	switch {
	case !(p.Dt > 0) || !finite(p.Dt):
		return invalid("dt must be positive, got %g", p.Dt)
	case !(p.Kappa >= 0) || !finite(p.Kappa):
		return invalid("kappa must be non-negative, got %g", p.Kappa)
	case !(p.Alpha >= 0) || !finite(p.Alpha):
		return invalid("alpha must be non-negative, got %g", p.Alpha)
	case !(p.Chi >= 0) || !finite(p.Chi):
		return invalid("chi must be non-negative, got %g", p.Chi)
	case !(p.C0 > 0) || !finite(p.C0):
		return invalid("c0 must be positive, got %g", p.C0)
	case !(p.Floor > 0) || !finite(p.Floor):
		return invalid("floor must be positive, got %g", p.Floor)
	case !finite(p.Beta):
		return invalid("beta must be finite, got %g", p.Beta)
	case !(p.Production >= 0) || !finite(p.Production):
		return invalid("production must be non-negative, got %g", p.Production)
	}
	return nil
}

// DiffusiveLimit is the largest dt for which the explicit Laplacian update
// of a d-dimensional grid with spacing dx stays bounded.
func (p Params) DiffusiveLimit(dx float64, dims int) float64 {
	if p.Kappa == 0 {
		return math.Inf(1)
	}
	return dx * dx / (2 * float64(dims) * p.Kappa)
}
