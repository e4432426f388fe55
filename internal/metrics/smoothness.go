// Package metrics provides diagnostics probes that reduce a field snapshot
// to a smoothness or flow indicator.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fieldsim/internal/grid"
)

// MaxGradient is max |∇C| over the grid.
type MaxGradient struct{}

func (MaxGradient) Name() string { return "max_gradient" }

func (MaxGradient) Measure(c, _ *grid.Field) float64 {
	return math.Sqrt(floats.Max(grid.GradientSquared(c)))
}

// MaxLaplacian is max |∇²C| over interior cells.
type MaxLaplacian struct{}

func (MaxLaplacian) Name() string { return "max_laplacian" }

func (MaxLaplacian) Measure(c, _ *grid.Field) float64 {
	lap := grid.Laplacian(c)
	return math.Max(floats.Max(lap), -floats.Min(lap))
}

// GradientL2 is sqrt(Σ|∇C|²·dx^d), the discrete L2 norm of the gradient.
type GradientL2 struct{}

func (GradientL2) Name() string { return "gradient_l2" }

func (GradientL2) Measure(c, _ *grid.Field) float64 {
	return math.Sqrt(floats.Sum(grid.GradientSquared(c)) * c.CellVolume())
}

// KineticProxy is ½Σ|v|² for the synthetic velocity v = −∇C/C₀.
type KineticProxy struct {
	C0 float64
}

func (KineticProxy) Name() string { return "kinetic_proxy" }

func (k KineticProxy) Measure(c, _ *grid.Field) float64 {
	return 0.5 * floats.Sum(grid.GradientSquared(c)) / (k.C0 * k.C0)
}

// MaxSpeed is max |v| for v = −∇C/C₀.
type MaxSpeed struct {
	C0 float64
}

func (MaxSpeed) Name() string { return "max_speed" }

func (m MaxSpeed) Measure(c, _ *grid.Field) float64 {
	return math.Sqrt(floats.Max(grid.GradientSquared(c))) / m.C0
}

// CompanionMean is the mean of the companion field, zero without one.
type CompanionMean struct{}

func (CompanionMean) Name() string { return "companion_mean" }

func (CompanionMean) Measure(_, i *grid.Field) float64 {
	if i == nil {
		return 0
	}
	return i.Mean()
}
