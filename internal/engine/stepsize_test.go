package engine

import (
	"math"
	"testing"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/grid"
)

func stepField(t *testing.T) *grid.Field {
	t.Helper()
	f, err := grid.New([]int{16, 16}, 1.0/16)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			v := 1.0
			if j >= 8 {
				v = 2
			}
			f.Set(v, i, j)
		}
	}
	return f
}

func TestFixed(t *testing.T) {
	p := DefaultParams()
	if got := (Fixed{}).Next(nil, p); got != p.Dt {
		t.Errorf("got %v, want run dt %v", got, p.Dt)
	}
	if got := (Fixed{Dt: 0.5}).Next(nil, p); got != 0.5 {
		t.Errorf("got %v, want 0.5", got)
	}
}

func TestCFL(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name  string
		sizer CFL
		field func(*testing.T) *grid.Field
		want  float64
	}{
		{
			name:  "uniform field uses max dt",
			sizer: CFL{MaxDt: 0.01},
			field: func(t *testing.T) *grid.Field {
				f, _ := grid.New([]int{16, 16}, 1.0/16)
				f.Fill(1)
				return f
			},
			want: 0.01,
		},
		{
			// |∇C| = 1/(2dx) = 8 at the jump, so dt = 0.3·dx/8
			name:  "advective limit",
			sizer: CFL{MaxDt: 0.01},
			field: stepField,
			want:  0.3 * (1.0 / 16) / 8,
		},
		{
			name:  "min dt floor",
			sizer: CFL{MaxDt: 0.01, MinDt: 0.005},
			field: stepField,
			want:  0.005,
		},
		{
			name:  "custom courant",
			sizer: CFL{Courant: 0.6, MaxDt: 0.01},
			field: stepField,
			want:  0.6 * (1.0 / 16) / 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sizer.Next(tt.field(t), p)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCFLDiffusiveLimit(t *testing.T) {
	p := DefaultParams()
	p.Kappa = 1
	f, _ := grid.New([]int{16, 16}, 1.0/16)
	f.Fill(1)
	want := DefaultCourant * p.DiffusiveLimit(f.Dx(), 2)
	if got := (CFL{MaxDt: 1}).Next(f, p); math.Abs(got-want) > 1e-15 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCFLNonFiniteFallsBack(t *testing.T) {
	f, _ := grid.New([]int{5}, 0.25)
	f.Fill(math.NaN())
	got := CFL{MaxDt: 0.01, MinDt: 1e-4}.Next(f, DefaultParams())
	if got != 1e-4 {
		t.Errorf("got %v, want min dt", got)
	}
}

func TestEngineUsesStepSizer(t *testing.T) {
	cfg := NewConfig([]int{16, 16}, 1.0/16, DefaultParams(), boundary.None)
	cfg.Initial = stepField(t).Values()
	cfg.StepSizer = CFL{MaxDt: 0.01}
	e, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	e.Step()
	want := 0.3 * (1.0 / 16) / 8
	if math.Abs(e.LastDt()-want) > 1e-12 {
		t.Errorf("dt got %v, want %v", e.LastDt(), want)
	}
	if math.Abs(e.Time()-want) > 1e-12 {
		t.Errorf("time got %v, want %v", e.Time(), want)
	}
	if e.StepSizer().Name() != "cfl" {
		t.Errorf("sizer got %s", e.StepSizer().Name())
	}
}
