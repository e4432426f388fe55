// Package diagnostics records scalar time series produced while a field
// evolves. The recorder only stores; consumers summarise.
package diagnostics

import (
	"fmt"
	"math"
	"sort"
)

// Sample is one row of history.
type Sample struct {
	Step   int                `json:"step"`
	Time   float64            `json:"time"`
	Dt     float64            `json:"dt"`
	Omega  float64            `json:"omega"`
	Min    float64            `json:"min"`
	Max    float64            `json:"max"`
	Mean   float64            `json:"mean"`
	Probes map[string]float64 `json:"probes,omitempty"`
}

// Built-in series names accepted by Series.
const (
	SeriesOmega = "omega"
	SeriesMin   = "min"
	SeriesMax   = "max"
	SeriesMean  = "mean"
	SeriesDt    = "dt"
	SeriesTime  = "time"
)

func (s Sample) Get(name string) (float64, bool) {
	switch name {
	case SeriesOmega:
		return s.Omega, true
	case SeriesMin:
		return s.Min, true
	case SeriesMax:
		return s.Max, true
	case SeriesMean:
		return s.Mean, true
	case SeriesDt:
		return s.Dt, true
	case SeriesTime:
		return s.Time, true
	}
	v, ok := s.Probes[name]
	return v, ok
}

// Recorder is an append-only sample log.
type Recorder struct {
	samples []Sample
}

func NewRecorder(capacity int) *Recorder {
	return &Recorder{samples: make([]Sample, 0, capacity)}
}

func (r *Recorder) Record(s Sample) { r.samples = append(r.samples, s) }

func (r *Recorder) Len() int { return len(r.samples) }

// Samples returns a copy of the history.
func (r *Recorder) Samples() []Sample {
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

func (r *Recorder) Last() (Sample, bool) {
	if len(r.samples) == 0 {
		return Sample{}, false
	}
	return r.samples[len(r.samples)-1], true
}

func (r *Recorder) Reset() { r.samples = r.samples[:0] }

// Series extracts one column. Samples lacking a probe yield NaN.
func (r *Recorder) Series(name string) []float64 {
	out := make([]float64, len(r.samples))
	for i, s := range r.samples {
		v, ok := s.Get(name)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// ProbeNames lists every probe that appears in the history, sorted.
func (r *Recorder) ProbeNames() []string { return ProbeNames(r.samples) }

// ProbeNames lists every probe recorded in samples, sorted.
func ProbeNames(samples []Sample) []string {
	seen := make(map[string]struct{})
	for _, s := range samples {
		for k := range s.Probes {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Columns returns the built-in series names followed by probe names.
func (r *Recorder) Columns() []string {
	cols := []string{SeriesTime, SeriesDt, SeriesOmega, SeriesMin, SeriesMax, SeriesMean}
	return append(cols, r.ProbeNames()...)
}

// NonIncreasing returns -1 if every step of series rises by no more than
// relTol·|previous| + absTol, otherwise the index of the first rise.
func NonIncreasing(series []float64, relTol, absTol float64) int {
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if series[i]-prev > relTol*math.Abs(prev)+absTol {
			return i
		}
	}
	return -1
}

// RiseError describes the first rise found by NonIncreasing.
func RiseError(series []float64, idx int) error {
	if idx < 1 || idx >= len(series) {
		return nil
	}
	return fmt.Errorf("series rises at sample %d: %.12g -> %.12g", idx, series[idx-1], series[idx])
}
