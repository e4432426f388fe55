// Package initial builds starting fields: a uniform baseline plus optional
// perturbations. All randomness comes from an explicit seed.
package initial

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/san-kum/fieldsim/internal/grid"
)

type Kind int

const (
	Uniform Kind = iota
	Gaussian
	Noise
	Vortex
)

var kindNames = map[Kind]string{
	Uniform:  "uniform",
	Gaussian: "gaussian",
	Noise:    "noise",
	Vortex:   "vortex",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown initial condition: %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Spec describes one perturbation on top of a uniform Base.
type Spec struct {
	Kind      Kind    `yaml:"kind" json:"kind"`
	Base      float64 `yaml:"base" json:"base"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Sigma     float64 `yaml:"sigma" json:"sigma"` // Gaussian width as a fraction of the domain
	Seed      int64   `yaml:"seed" json:"seed"`
}

// Build returns a flat value slice for the given grid.
func Build(shape []int, dx float64, s Spec) ([]float64, error) {
	f, err := grid.New(shape, dx)
	if err != nil {
		return nil, err
	}
	f.Fill(s.Base)

	switch s.Kind {
	case Uniform:
	case Gaussian:
		sigma := s.Sigma
		if sigma <= 0 {
			sigma = 0.1
		}
		AddGaussian(f, s.Amplitude, sigma)
	case Noise:
		AddNoise(f, s.Amplitude, rand.New(rand.NewSource(s.Seed)))
	case Vortex:
		AddVortex(f, s.Amplitude)
	default:
		return nil, fmt.Errorf("unknown initial condition: %s", s.Kind)
	}
	return f.Values(), nil
}

// AddGaussian adds a centred bump amplitude·exp(−r²/2σ²) with σ given as a
// fraction of the extent of axis 0.
func AddGaussian(f *grid.Field, amplitude, sigmaFrac float64) {
	dx := f.Dx()
	sigma := sigmaFrac * float64(f.Extent(0)) * dx
	inv := 1 / (2 * sigma * sigma)

	centre := make([]float64, f.Dims())
	for a := range centre {
		centre[a] = float64(f.Extent(a)-1) * dx / 2
	}

	v := f.Values()
	coord := make([]int, f.Dims())
	for i := range v {
		coord = f.Coords(i, coord)
		r2 := 0.0
		for a, c := range coord {
			d := float64(c)*dx - centre[a]
			r2 += d * d
		}
		v[i] += amplitude * math.Exp(-r2*inv)
	}
}

// AddNoise adds independent normal deviates scaled by amplitude.
func AddNoise(f *grid.Field, amplitude float64, rng *rand.Rand) {
	v := f.Values()
	for i := range v {
		v[i] += amplitude * rng.NormFloat64()
	}
}

// AddVortex adds a Taylor–Green cell pattern sin(2πx/L)·sin(2πy/L) over the
// first two axes. A 1D grid gets a single sine period.
func AddVortex(f *grid.Field, amplitude float64) {
	lx := float64(f.Extent(0)) * f.Dx()
	ly := lx
	if f.Dims() > 1 {
		ly = float64(f.Extent(1)) * f.Dx()
	}

	v := f.Values()
	coord := make([]int, f.Dims())
	for i := range v {
		coord = f.Coords(i, coord)
		x := float64(coord[0]) * f.Dx()
		s := math.Sin(2 * math.Pi * x / lx)
		if f.Dims() > 1 {
			y := float64(coord[1]) * f.Dx()
			s *= math.Sin(2 * math.Pi * y / ly)
		}
		v[i] += amplitude * s
	}
}
