package diagnostics

import "github.com/san-kum/fieldsim/internal/grid"

// Probe reduces the current fields to a named scalar. companion is nil for
// single-field runs. Probes may keep running state between calls.
type Probe interface {
	Name() string
	Measure(primary, companion *grid.Field) float64
}

// Measure evaluates every probe into a fresh map, or returns nil when there
// are none.
func Measure(probes []Probe, primary, companion *grid.Field) map[string]float64 {
	if len(probes) == 0 {
		return nil
	}
	out := make(map[string]float64, len(probes))
	for _, p := range probes {
		out[p.Name()] = p.Measure(primary, companion)
	}
	return out
}
