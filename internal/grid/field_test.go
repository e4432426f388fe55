package grid

import (
	"errors"
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		dx    float64
		want  error
	}{
		{"1d", []int{8}, 0.1, nil},
		{"3d", []int{4, 4, 4}, 0.25, nil},
		{"empty shape", []int{}, 0.1, ErrShape},
		{"rank 4", []int{2, 2, 2, 2}, 0.1, ErrShape},
		{"zero extent", []int{4, 0}, 0.1, ErrShape},
		{"negative dx", []int{4}, -0.1, ErrSpacing},
		{"zero dx", []int{4}, 0, ErrSpacing},
		{"nan dx", []int{4}, math.NaN(), ErrSpacing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.shape, tt.dx)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromValuesLengthMismatch(t *testing.T) {
	_, err := FromValues([]int{3, 3}, 1, make([]float64, 8))
	if !errors.Is(err, ErrLength) {
		t.Errorf("got %v, want ErrLength", err)
	}
}

func TestIndexRowMajor(t *testing.T) {
	f, err := New([]int{2, 3, 4}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Index(1, 2, 3); got != 1*12+2*4+3 {
		t.Errorf("index got %d, want %d", got, 23)
	}

	f.Set(7, 1, 0, 2)
	if f.Values()[14] != 7 {
		t.Errorf("set wrote wrong cell: %v", f.Values())
	}

	coord := f.Coords(23, nil)
	want := []int{1, 2, 3}
	for a := range want {
		if coord[a] != want[a] {
			t.Errorf("coords got %v, want %v", coord, want)
			break
		}
	}
}

func TestShapeIsCopy(t *testing.T) {
	f, _ := New([]int{16, 16, 16}, 1.0/16)
	s := f.Shape()
	s[0] = 99
	if f.Extent(0) != 16 {
		t.Error("mutating Shape() result changed the field")
	}
	if f.Len() != 4096 {
		t.Errorf("len got %d, want 4096", f.Len())
	}
}

func TestFillSlice(t *testing.T) {
	f, _ := New([]int{3, 4}, 1)
	f.FillSlice(0, -1, 2)
	f.FillSlice(1, 0, 5)

	for j := 1; j < 4; j++ {
		if f.At(2, j) != 2 {
			t.Errorf("last row col %d got %v, want 2", j, f.At(2, j))
		}
	}
	for i := 0; i < 3; i++ {
		if f.At(i, 0) != 5 {
			t.Errorf("first column row %d got %v, want 5", i, f.At(i, 0))
		}
	}
	if f.At(1, 1) != 0 {
		t.Errorf("interior cell touched: %v", f.At(1, 1))
	}
}

func TestClampMin(t *testing.T) {
	f, _ := FromValues([]int{4}, 1, []float64{-1, 0.005, 0.5, math.NaN()})
	n := f.ClampMin(0.01)
	if n != 2 {
		t.Errorf("clamped %d cells, want 2", n)
	}
	if f.At(0) != 0.01 || f.At(1) != 0.01 || f.At(2) != 0.5 {
		t.Errorf("unexpected values %v", f.Values())
	}
	if !math.IsNaN(f.At(3)) {
		t.Error("NaN must survive clamping so it can be detected")
	}
}

func TestReductions(t *testing.T) {
	f, _ := FromValues([]int{2, 2}, 1, []float64{1, -3, 2, 4})
	if f.Min() != -3 || f.Max() != 4 {
		t.Errorf("min/max got %v/%v", f.Min(), f.Max())
	}
	if f.Mean() != 1 {
		t.Errorf("mean got %v, want 1", f.Mean())
	}
	if f.MaxAbs() != 4 {
		t.Errorf("maxabs got %v, want 4", f.MaxAbs())
	}
	if got := f.CellVolume(); got != 1 {
		t.Errorf("cell volume got %v, want 1", got)
	}
}

func TestCloneIndependent(t *testing.T) {
	f, _ := FromValues([]int{2}, 1, []float64{1, 2})
	g := f.Clone()
	g.Values()[0] = 10
	if f.At(0) != 1 {
		t.Error("clone shares storage")
	}
	if err := f.CopyFrom(g); err != nil {
		t.Fatal(err)
	}
	if f.At(0) != 10 {
		t.Error("CopyFrom did not copy")
	}
	h, _ := New([]int{3}, 1)
	if err := f.CopyFrom(h); !errors.Is(err, ErrShape) {
		t.Errorf("got %v, want ErrShape", err)
	}
}
