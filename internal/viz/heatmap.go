package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fieldsim/internal/grid"
)

// shades runs from low to high.
const shades = " .:-=+*#%@"

// View is a 2D window onto a field. Row 0 is the top of the picture.
type View struct {
	Rows, Cols int
	At         func(r, c int) float64
}

// SliceOf picks what to draw: a 1D field is one row, a 2D field is shown
// with axis 0 running upwards, and a 3D field shows the middle plane of
// its last axis.
func SliceOf(f *grid.Field) View {
	shape := f.Shape()
	switch len(shape) {
	case 1:
		return View{Rows: 1, Cols: shape[0], At: func(_, c int) float64 { return f.At(c) }}
	case 2:
		n0 := shape[0]
		return View{Rows: n0, Cols: shape[1], At: func(r, c int) float64 { return f.At(n0-1-r, c) }}
	default:
		n0, mid := shape[0], shape[2]/2
		return View{Rows: n0, Cols: shape[1], At: func(r, c int) float64 { return f.At(n0-1-r, c, mid) }}
	}
}

type HeatmapOptions struct {
	Width, Height int
	// Lo and Hi fix the colour scale; when equal the view's range is used.
	Lo, Hi  float64
	Palette *Palette
}

// Heatmap renders v into at most Width×Height characters by nearest
// sampling. Non-finite cells are drawn as '!'.
func Heatmap(v View, opts HeatmapOptions) string {
	w, h := opts.Width, opts.Height
	if w <= 0 || w > v.Cols {
		w = v.Cols
	}
	if h <= 0 || h > v.Rows {
		h = v.Rows
	}

	lo, hi := opts.Lo, opts.Hi
	if lo == hi {
		lo, hi = rangeOf(v)
	}
	span := hi - lo

	var b strings.Builder
	for y := 0; y < h; y++ {
		r := y * v.Rows / h
		var run strings.Builder
		var runColor lipgloss.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if opts.Palette != nil {
				b.WriteString(lipgloss.NewStyle().Foreground(runColor).Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < w; x++ {
			c := x * v.Cols / w
			val := v.At(r, c)

			ch, t := byte('!'), 1.0
			if !math.IsNaN(val) && !math.IsInf(val, 0) {
				t = 0.5
				if span > 0 {
					t = math.Max(0, math.Min(1, (val-lo)/span))
				}
				ch = shades[int(t*float64(len(shades)-1))]
			}

			if opts.Palette != nil {
				col := opts.Palette.shade(t)
				if ch == '!' {
					col = opts.Palette.Alert
				}
				if col != runColor {
					flush()
					runColor = col
				}
			}
			run.WriteByte(ch)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func rangeOf(v View) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for r := 0; r < v.Rows; r++ {
		for c := 0; c < v.Cols; c++ {
			val := v.At(r, c)
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			lo, hi = math.Min(lo, val), math.Max(hi, val)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
