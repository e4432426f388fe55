package metrics

import (
	"math"

	"github.com/san-kum/fieldsim/internal/grid"
)

// Stability is the fraction of observed snapshots whose primary field stayed
// finite and within threshold in magnitude. It accumulates until Reset.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
	first      int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
		first:     -1,
	}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Measure(c, _ *grid.Field) float64 {
	if m := c.MaxAbs(); m > s.threshold || math.IsNaN(m) {
		if s.first < 0 {
			s.first = s.samples
		}
		s.violations++
	}
	s.samples++
	return s.Value()
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

// FirstViolation is the index of the first offending snapshot, or -1.
func (s *Stability) FirstViolation() int { return s.first }

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.first = -1
}
