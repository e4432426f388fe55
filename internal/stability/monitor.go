// Package stability classifies field snapshots as smooth or blown up.
package stability

import (
	"fmt"
	"math"
)

// DefaultThreshold is the magnitude above which a field counts as diverged.
const DefaultThreshold = 1e10

type Reason int

const (
	ReasonNone Reason = iota
	ReasonNonFinite
	ReasonNonPositive
	ReasonMagnitude
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNonFinite:
		return "non-finite value"
	case ReasonNonPositive:
		return "non-positive value"
	case ReasonMagnitude:
		return "magnitude above threshold"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Verdict is derived on demand from the current field state.
type Verdict struct {
	BlownUp bool
	Step    int // first step at which the violation was seen
	Reason  Reason
	Index   int     // offending cell, -1 when smooth
	Value   float64 // offending value
}

func Smooth() Verdict { return Verdict{Index: -1} }

func (v Verdict) Smooth() bool { return !v.BlownUp }

func (v Verdict) String() string {
	if !v.BlownUp {
		return "smooth"
	}
	return fmt.Sprintf("blown up at step %d: %s (cell %d = %g)", v.Step, v.Reason, v.Index, v.Value)
}

// Monitor inspects raw field values. The zero value uses DefaultThreshold.
type Monitor struct {
	Threshold float64
}

func NewMonitor(threshold float64) Monitor {
	return Monitor{Threshold: threshold}
}

func (m Monitor) threshold() float64 {
	if m.Threshold > 0 {
		return m.Threshold
	}
	return DefaultThreshold
}

// Check scans values once. positive marks fields that must stay strictly
// above zero. The returned verdict carries no step; callers attach it.
func (m Monitor) Check(values []float64, positive bool) Verdict {
	limit := m.threshold()
	for i, v := range values {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return Verdict{BlownUp: true, Reason: ReasonNonFinite, Index: i, Value: v}
		case positive && v <= 0:
			return Verdict{BlownUp: true, Reason: ReasonNonPositive, Index: i, Value: v}
		case math.Abs(v) > limit:
			return Verdict{BlownUp: true, Reason: ReasonMagnitude, Index: i, Value: v}
		}
	}
	return Smooth()
}

// AtStep returns v stamped with step if it is a blow-up.
func (v Verdict) AtStep(step int) Verdict {
	if v.BlownUp {
		v.Step = step
	}
	return v
}
