// Package sweep calibrates coupling constants by running one engine per
// point of a parameter grid.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/experiment"
)

// Axis is one swept parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// Grid is the cartesian product of its axes, first axis outermost.
type Grid struct {
	axes []Axis
}

func NewGrid(axes ...Axis) (*Grid, error) {
	seen := make(map[string]bool)
	for _, a := range axes {
		if _, ok := setters[a.Name]; !ok {
			return nil, fmt.Errorf("unknown sweep parameter: %s", a.Name)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("duplicate sweep parameter: %s", a.Name)
		}
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("sweep parameter %s has no values", a.Name)
		}
		seen[a.Name] = true
	}
	return &Grid{axes: axes}, nil
}

func (g *Grid) Names() []string {
	names := make([]string, len(g.axes))
	for i, a := range g.axes {
		names[i] = a.Name
	}
	return names
}

// Size is the number of grid points.
func (g *Grid) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Points enumerates every combination in row-major order.
func (g *Grid) Points() []map[string]float64 {
	out := make([]map[string]float64, 0, g.Size())
	g.collect(0, make(map[string]float64), &out)
	return out
}

func (g *Grid) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.axes) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		*out = append(*out, point)
		return
	}
	axis := g.axes[depth]
	for _, v := range axis.Values {
		current[axis.Name] = v
		g.collect(depth+1, current, out)
	}
	delete(current, axis.Name)
}

var setters = map[string]func(*engine.Params, float64){
	"kappa":      func(p *engine.Params, v float64) { p.Kappa = v },
	"beta":       func(p *engine.Params, v float64) { p.Beta = v },
	"alpha":      func(p *engine.Params, v float64) { p.Alpha = v },
	"chi":        func(p *engine.Params, v float64) { p.Chi = v },
	"dt":         func(p *engine.Params, v float64) { p.Dt = v },
	"production": func(p *engine.Params, v float64) { p.Production = v },
}

// Parameters lists the names an Axis may use.
func Parameters() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns p with the point's values substituted.
func Apply(p engine.Params, point map[string]float64) (engine.Params, error) {
	for name, v := range point {
		set, ok := setters[name]
		if !ok {
			return p, fmt.Errorf("unknown sweep parameter: %s", name)
		}
		set(&p, v)
	}
	return p, nil
}

// Point is the outcome of one grid point. Score is the chosen metric, or
// +Inf when the run blew up.
type Point struct {
	Params map[string]float64
	Result *experiment.Result
	Score  float64
}

type Sweep struct {
	grid   *Grid
	metric string
	limit  int
	log    *slog.Logger
}

// New sweeps grid scoring each stable run by metric, lower being better.
func New(grid *Grid, metric string, log *slog.Logger) *Sweep {
	if log == nil {
		log = slog.Default()
	}
	return &Sweep{grid: grid, metric: metric, log: log}
}

// SetLimit caps concurrent runs; zero or negative means no limit.
func (s *Sweep) SetLimit(n int) { s.limit = n }

// Run evaluates every grid point. build turns a point into a run.
func (s *Sweep) Run(ctx context.Context, build func(point map[string]float64) (experiment.Config, error)) ([]Point, error) {
	points := s.grid.Points()
	out := make([]Point, len(points))

	g, ctx := errgroup.WithContext(ctx)
	if s.limit > 0 {
		g.SetLimit(s.limit)
	}
	for i, pt := range points {
		g.Go(func() error {
			cfg, err := build(pt)
			if err != nil {
				return fmt.Errorf("point %v: %w", pt, err)
			}
			r := experiment.NewRunner(s.log)
			r.SetLogEvery(0)
			res, err := r.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("point %v: %w", pt, err)
			}
			out[i] = Point{Params: pt, Result: res, Score: s.score(res)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Info("sweep finished", "points", len(out), "metric", s.metric)
	return out, nil
}

func (s *Sweep) score(res *experiment.Result) float64 {
	if !res.Stable() {
		return math.Inf(1)
	}
	v, ok := res.Metrics[s.metric]
	if !ok || math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

// Best returns the lowest-scoring stable point.
func Best(points []Point) (Point, bool) {
	best := -1
	for i, p := range points {
		if math.IsInf(p.Score, 1) {
			continue
		}
		if best < 0 || p.Score < points[best].Score {
			best = i
		}
	}
	if best < 0 {
		return Point{}, false
	}
	return points[best], true
}
