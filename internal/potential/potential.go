// Package potential provides the local energy density V(C) that the field
// engine descends, together with its derivative.
package potential

import (
	"fmt"
	"strings"
)

// Model is a C¹ local potential. DV must be the true derivative of V.
type Model interface {
	Kind() Kind
	V(c float64) float64
	DV(c float64) float64
}

type Kind int

const (
	Quadratic Kind = iota
	DoubleWell
)

var kindNames = map[Kind]string{
	Quadratic:  "quadratic",
	DoubleWell: "double_well",
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
	return 0, fmt.Errorf("unknown potential: %q", s)
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

// Params carries the constants every potential may draw from.
type Params struct {
	Alpha float64 // quadratic stiffness
	C0    float64 // equilibrium value
	Chi   float64 // double-well stiffness
}

var constructors = map[Kind]func(Params) Model{
	Quadratic:  func(p Params) Model { return QuadraticWell{Alpha: p.Alpha, C0: p.C0} },
	DoubleWell: func(p Params) Model { return QuarticWell{Chi: p.Chi} },
}

// New builds the potential of the given kind.
func New(k Kind, p Params) (Model, error) {
	fn, ok := constructors[k]
	if !ok {
		return nil, fmt.Errorf("unknown potential: %s", k)
	}
	return fn(p), nil
}

func Kinds() []Kind { return []Kind{Quadratic, DoubleWell} }

// QuadraticWell is ½α(C−C₀)².
type QuadraticWell struct {
	Alpha float64
	C0    float64
}

func (QuadraticWell) Kind() Kind { return Quadratic }

func (q QuadraticWell) V(c float64) float64 {
	d := c - q.C0
	return 0.5 * q.Alpha * d * d
}

func (q QuadraticWell) DV(c float64) float64 { return q.Alpha * (c - q.C0) }

// QuarticWell is (χ/2)C²(1−C)², with minima at 0 and 1.
type QuarticWell struct {
	Chi float64
}

func (QuarticWell) Kind() Kind { return DoubleWell }

func (w QuarticWell) V(c float64) float64 {
	m := c * (1 - c)
	return 0.5 * w.Chi * m * m
}

func (w QuarticWell) DV(c float64) float64 {
	return w.Chi * c * (1 - c) * (1 - 2*c)
}

// Eval writes V(C) into dst.
func Eval(m Model, dst, c []float64) {
	for i, v := range c {
		dst[i] = m.V(v)
	}
}

// Derive writes V'(C) into dst.
func Derive(m Model, dst, c []float64) {
	for i, v := range c {
		dst[i] = m.DV(v)
	}
}

// Total is Σ V(C).
func Total(m Model, c []float64) float64 {
	sum := 0.0
	for _, v := range c {
		sum += m.V(v)
	}
	return sum
}
