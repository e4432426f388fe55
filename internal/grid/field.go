// Package grid holds dense scalar fields on regular 1D, 2D and 3D grids
// together with the finite-difference stencils evaluated over them.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MaxDims is the highest supported grid rank.
const MaxDims = 3

var (
	ErrShape   = errors.New("grid: invalid shape")
	ErrSpacing = errors.New("grid: cell spacing must be positive and finite")
	ErrLength  = errors.New("grid: value count does not match shape")
)

// Field is a scalar field stored row-major, last axis fastest.
// Shape and spacing are fixed at construction; values are mutated in place.
type Field struct {
	shape   []int
	strides []int
	dx      float64
	values  []float64
}

func New(shape []int, dx float64) (*Field, error) {
	if err := validate(shape, dx); err != nil {
		return nil, err
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	f := &Field{
		shape:  append([]int(nil), shape...),
		dx:     dx,
		values: make([]float64, n),
	}
	f.strides = strides(f.shape)
	return f, nil
}

// FromValues builds a field over a copy of values.
func FromValues(shape []int, dx float64, values []float64) (*Field, error) {
	f, err := New(shape, dx)
	if err != nil {
		return nil, err
	}
	if len(values) != len(f.values) {
		return nil, fmt.Errorf("%w: got %d values for shape %v", ErrLength, len(values), shape)
	}
	copy(f.values, values)
	return f, nil
}

func validate(shape []int, dx float64) error {
	if len(shape) == 0 || len(shape) > MaxDims {
		return fmt.Errorf("%w: rank %d not in [1, %d]", ErrShape, len(shape), MaxDims)
	}
	for axis, s := range shape {
		if s < 1 {
			return fmt.Errorf("%w: axis %d has extent %d", ErrShape, axis, s)
		}
	}
	if !(dx > 0) || math.IsInf(dx, 0) {
		return fmt.Errorf("%w: got %v", ErrSpacing, dx)
	}
	return nil
}

func strides(shape []int) []int {
	st := make([]int, len(shape))
	step := 1
	for a := len(shape) - 1; a >= 0; a-- {
		st[a] = step
		step *= shape[a]
	}
	return st
}

// Shape returns a copy of the extents.
func (f *Field) Shape() []int { return append([]int(nil), f.shape...) }

func (f *Field) Dims() int           { return len(f.shape) }
func (f *Field) Len() int            { return len(f.values) }
func (f *Field) Dx() float64         { return f.dx }
func (f *Field) Stride(axis int) int { return f.strides[axis] }
func (f *Field) Extent(axis int) int { return f.shape[axis] }

// Values exposes the backing slice. Callers that do not own the field
// should take a Clone instead.
func (f *Field) Values() []float64 { return f.values }

// CellVolume is dx^d.
func (f *Field) CellVolume() float64 {
	return math.Pow(f.dx, float64(len(f.shape)))
}

func (f *Field) Index(idx ...int) int {
	if len(idx) != len(f.shape) {
		panic(fmt.Sprintf("grid: %d indices for rank %d field", len(idx), len(f.shape)))
	}
	off := 0
	for a, i := range idx {
		off += i * f.strides[a]
	}
	return off
}

func (f *Field) At(idx ...int) float64 { return f.values[f.Index(idx...)] }

func (f *Field) Set(v float64, idx ...int) { f.values[f.Index(idx...)] = v }

// Coords writes the multi-index of flat offset i into dst.
func (f *Field) Coords(i int, dst []int) []int {
	if cap(dst) < len(f.shape) {
		dst = make([]int, len(f.shape))
	}
	dst = dst[:len(f.shape)]
	for a := range f.shape {
		dst[a] = i / f.strides[a]
		i %= f.strides[a]
	}
	return dst
}

func (f *Field) Clone() *Field {
	return &Field{
		shape:   append([]int(nil), f.shape...),
		strides: append([]int(nil), f.strides...),
		dx:      f.dx,
		values:  append([]float64(nil), f.values...),
	}
}

// CopyFrom overwrites the values of f with those of g.
func (f *Field) CopyFrom(g *Field) error {
	if !f.SameShape(g) {
		return fmt.Errorf("%w: %v vs %v", ErrShape, f.shape, g.shape)
	}
	copy(f.values, g.values)
	return nil
}

func (f *Field) SameShape(g *Field) bool {
	if g == nil || len(f.shape) != len(g.shape) {
		return false
	}
	for a := range f.shape {
		if f.shape[a] != g.shape[a] {
			return false
		}
	}
	return true
}

func (f *Field) Fill(v float64) {
	for i := range f.values {
		f.values[i] = v
	}
}

// FillSlice sets every cell whose coordinate along axis equals pos.
// Negative pos counts from the end, so -1 is the last slice.
func (f *Field) FillSlice(axis, pos int, v float64) {
	n := f.shape[axis]
	if pos < 0 {
		pos += n
	}
	if pos < 0 || pos >= n {
		return
	}
	stride := f.strides[axis]
	block := stride * n
	for base := pos * stride; base < len(f.values); base += block {
		for j := 0; j < stride; j++ {
			f.values[base+j] = v
		}
	}
}

// Interior reports whether every coordinate lies strictly inside its axis.
func (f *Field) Interior(coord []int) bool {
	for a, c := range coord {
		if c < 1 || c > f.shape[a]-2 {
			return false
		}
	}
	return true
}

func (f *Field) Min() float64  { return floats.Min(f.values) }
func (f *Field) Max() float64  { return floats.Max(f.values) }
func (f *Field) Sum() float64  { return floats.Sum(f.values) }
func (f *Field) Mean() float64 { return floats.Sum(f.values) / float64(len(f.values)) }

// MaxAbs is the infinity norm; NaN propagates.
func (f *Field) MaxAbs() float64 {
	m := 0.0
	for _, v := range f.values {
		if math.IsNaN(v) {
			return v
		}
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// ClampMin raises every value below floor to floor and returns the
// number of cells changed.
func (f *Field) ClampMin(floor float64) int {
	n := 0
	for i, v := range f.values {
		if v < floor {
			f.values[i] = floor
			n++
		}
	}
	return n
}
