package stability

import (
	"math"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		positive bool
		want     Reason
		index    int
	}{
		{"smooth", []float64{0.5, 1, 2}, true, ReasonNone, -1},
		{"nan", []float64{1, math.NaN(), 2}, false, ReasonNonFinite, 1},
		{"inf", []float64{1, 2, math.Inf(-1)}, false, ReasonNonFinite, 2},
		{"zero with positivity", []float64{1, 0, 2}, true, ReasonNonPositive, 1},
		{"negative allowed", []float64{-3, 1}, false, ReasonNone, -1},
		{"magnitude", []float64{1, 2e10}, false, ReasonMagnitude, 1},
		{"negative magnitude", []float64{-2e10}, false, ReasonMagnitude, 0},
		{"at threshold", []float64{1e10}, true, ReasonNone, -1},
	}

	m := Monitor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := m.Check(tt.values, tt.positive)
			if v.Reason != tt.want {
				t.Errorf("reason got %s, want %s", v.Reason, tt.want)
			}
			if v.BlownUp != (tt.want != ReasonNone) {
				t.Errorf("blown up got %v", v.BlownUp)
			}
			if v.Index != tt.index {
				t.Errorf("index got %d, want %d", v.Index, tt.index)
			}
		})
	}
}

func TestCustomThreshold(t *testing.T) {
	m := NewMonitor(10)
	if m.Check([]float64{11}, false).Smooth() {
		t.Error("expected blow-up above custom threshold")
	}
	if !m.Check([]float64{9}, false).Smooth() {
		t.Error("expected smooth below custom threshold")
	}
}

func TestAtStep(t *testing.T) {
	v := Monitor{}.Check([]float64{math.NaN()}, false).AtStep(17)
	if v.Step != 17 {
		t.Errorf("step got %d, want 17", v.Step)
	}
	s := Smooth().AtStep(17)
	if s.Step != 0 || !s.Smooth() {
		t.Errorf("smooth verdict must not carry a step: %+v", s)
	}
	if s.String() != "smooth" {
		t.Errorf("string got %q", s.String())
	}
}
