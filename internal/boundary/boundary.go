// Package boundary pins edge slices of a field to fixed target values after
// every step. Profiles are time independent and idempotent.
package boundary

import (
	"fmt"
	"strings"

	"github.com/san-kum/fieldsim/internal/grid"
)

type Profile int

const (
	None Profile = iota
	Driven
	PressureGradient
)

var profileNames = map[Profile]string{
	None:             "none",
	Driven:           "driven",
	PressureGradient: "pressure_gradient",
}

// aliases accepted by ParseProfile in addition to the canonical names.
var profileAliases = map[string]Profile{
	"lid_driven": Driven,
	"driven_lid": Driven,
	"poiseuille": PressureGradient,
}

func (p Profile) String() string {
	if s, ok := profileNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Profile(%d)", int(p))
}

func ParseProfile(s string) (Profile, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range profileNames {
		if name == s {
			return p, nil
		}
	}
	if p, ok := profileAliases[s]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown boundary profile: %q", s)
}

func (p Profile) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Profile) UnmarshalText(b []byte) error {
	parsed, err := ParseProfile(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

const (
	DefaultDrivenEpsilon   = 0.1
	DefaultPressureEpsilon = 0.05
)

// Settings parameterises a profile. A nil Epsilon selects the profile's
// default forcing; an explicit zero pins every face at C0.
type Settings struct {
	C0        float64
	Epsilon   *float64
	SideWalls bool
}

// Forcing returns a pointer to eps for use in Settings.
func Forcing(eps float64) *float64 { return &eps }

func (s Settings) epsilon(def float64) float64 {
	if s.Epsilon == nil {
		return def
	}
	return *s.Epsilon
}

// Policy overwrites designated edge cells of a field.
type Policy interface {
	Profile() Profile
	Apply(f *grid.Field)
	// Targets lists the values the policy writes.
	Targets() []float64
}

var constructors = map[Profile]func(Settings) Policy{
	None: func(Settings) Policy { return noop{} },
	Driven: func(s Settings) Policy {
		eps := s.epsilon(DefaultDrivenEpsilon)
		return Lid{Base: s.C0, Top: s.C0 * (1 + eps), SideWalls: s.SideWalls}
	},
	PressureGradient: func(s Settings) Policy {
		eps := s.epsilon(DefaultPressureEpsilon)
		return Channel{Inlet: s.C0 * (1 + eps), Outlet: s.C0 * (1 - eps)}
	},
}

func New(p Profile, s Settings) (Policy, error) {
	fn, ok := constructors[p]
	if !ok {
		return nil, fmt.Errorf("unknown boundary profile: %s", p)
	}
	return fn(s), nil
}

func Profiles() []Profile { return []Profile{None, Driven, PressureGradient} }

type noop struct{}

func (noop) Profile() Profile    { return None }
func (noop) Apply(f *grid.Field) {}
func (noop) Targets() []float64  { return nil }

// Lid forces the last slice along axis 0 to Top and the first slice to Base.
// With SideWalls every face of the remaining axes is also held at Base,
// written after the lid so shared corners take the wall value.
type Lid struct {
	Base      float64
	Top       float64
	SideWalls bool
}

func (Lid) Profile() Profile { return Driven }

func (l Lid) Targets() []float64 { return []float64{l.Base, l.Top} }

func (l Lid) Apply(f *grid.Field) {
	f.FillSlice(0, -1, l.Top)
	f.FillSlice(0, 0, l.Base)
	if !l.SideWalls {
		return
	}
	for axis := 1; axis < f.Dims(); axis++ {
		f.FillSlice(axis, 0, l.Base)
		f.FillSlice(axis, -1, l.Base)
	}
}

// Channel holds the first slice of the last axis at Inlet and the last
// slice at Outlet.
type Channel struct {
	Inlet  float64
	Outlet float64
}

func (Channel) Profile() Profile { return PressureGradient }

func (c Channel) Targets() []float64 { return []float64{c.Inlet, c.Outlet} }

func (c Channel) Apply(f *grid.Field) {
	axis := f.Dims() - 1
	f.FillSlice(axis, 0, c.Inlet)
	f.FillSlice(axis, -1, c.Outlet)
}
