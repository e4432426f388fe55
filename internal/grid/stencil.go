package grid

// Laplacian returns the second-difference Laplacian of f. Only cells that
// are interior along every axis are computed; all other cells are zero.
func Laplacian(f *Field) []float64 {
	dst := make([]float64, len(f.values))
	LaplacianInto(dst, f)
	return dst
}

// LaplacianInto writes the Laplacian of f into dst, which must have f.Len()
// elements.
func LaplacianInto(dst []float64, f *Field) {
	inv := 1 / (f.dx * f.dx)
	v := f.values
	coord := make([]int, len(f.shape))
	for i := range v {
		if !f.Interior(coord) {
			dst[i] = 0
			advance(coord, f.shape)
			continue
		}
		sum := 0.0
		for _, s := range f.strides {
			sum += v[i+s] - 2*v[i] + v[i-s]
		}
		dst[i] = sum * inv
		advance(coord, f.shape)
	}
}

// Gradient returns one component per axis using central differences. A
// component is zero on both edges of its own axis.
func Gradient(f *Field) [][]float64 {
	out := make([][]float64, len(f.shape))
	for a := range out {
		out[a] = make([]float64, len(f.values))
	}
	half := 1 / (2 * f.dx)
	v := f.values
	coord := make([]int, len(f.shape))
	for i := range v {
		for a, s := range f.strides {
			if coord[a] < 1 || coord[a] > f.shape[a]-2 {
				continue
			}
			out[a][i] = (v[i+s] - v[i-s]) * half
		}
		advance(coord, f.shape)
	}
	return out
}

// GradientSquared returns |∇f|² per cell from the central gradient.
func GradientSquared(f *Field) []float64 {
	grad := Gradient(f)
	out := make([]float64, len(f.values))
	for _, g := range grad {
		for i, c := range g {
			out[i] += c * c
		}
	}
	return out
}

// GradientEnergy is ½ Σ ((f[j]-f[i])/dx)² over every pair of neighbouring
// cells. Its derivative with respect to an interior cell is exactly minus
// the Laplacian at that cell.
func GradientEnergy(f *Field) float64 {
	inv := 1 / (f.dx * f.dx)
	v := f.values
	coord := make([]int, len(f.shape))
	sum := 0.0
	for i := range v {
		for a, s := range f.strides {
			if coord[a] >= f.shape[a]-1 {
				continue
			}
			d := v[i+s] - v[i]
			sum += d * d
		}
		advance(coord, f.shape)
	}
	return 0.5 * sum * inv
}

// advance steps a row-major multi-index by one cell.
func advance(coord, shape []int) {
	for a := len(coord) - 1; a >= 0; a-- {
		coord[a]++
		if coord[a] < shape[a] {
			return
		}
		coord[a] = 0
	}
}
