// Package experiment drives engines: the step/check loop, named strategy
// lookup and seeded ensembles.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/fieldsim/internal/diagnostics"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/grid"
)

// Config is one run: an engine configuration and a step budget.
type Config struct {
	Name   string
	Engine engine.Config
	Steps  int
	Seed   int64
}

// Observer sees the engine after every successful step and check.
type Observer interface {
	OnStep(e *engine.Engine)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e *engine.Engine)

func (f ObserverFunc) OnStep(e *engine.Engine) { f(e) }

// Result summarises a finished run. BlowUp is set when the run stopped on
// the stability check.
type Result struct {
	Name         string
	Steps        int
	Time         float64
	Phase        engine.Phase
	BlowUp       *engine.BlowUpError
	LastGoodStep int
	Clamped      int
	InitialOmega float64
	FinalOmega   float64
	Metrics      map[string]float64
	Samples      []diagnostics.Sample
	Field        *grid.Field
	Companion    *grid.Field
	Elapsed      time.Duration
}

// Stable reports whether the run finished without blowing up.
func (r *Result) Stable() bool { return r.BlowUp == nil }

type Runner struct {
	log       *slog.Logger
	observers []Observer
	logEvery  int
}

func NewRunner(log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{log: log, logEvery: 100}
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// SetLogEvery sets the progress log interval in steps; zero disables it.
func (r *Runner) SetLogEvery(n int) { r.logEvery = n }

// Run builds an engine and steps it until the budget is spent or the
// field blows up. A blow-up is reported in the result, not as an error.
// Cancellation returns the partial result together with ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", engine.ErrInvalidConfig, cfg.Steps)
	}
	e, err := engine.New(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return r.Drive(ctx, cfg.Name, e, cfg.Steps)
}

// Drive steps an existing engine for at most steps steps.
func (r *Runner) Drive(ctx context.Context, name string, e *engine.Engine, steps int) (*Result, error) {
	log := r.log.With("run", name)
	start := time.Now()
	omega0 := e.Omega()

	log.Info("run started",
		"shape", e.Shape(),
		"steps", steps,
		"boundary", e.Boundary(),
		"potential", e.Potential().Kind(),
		"dt", e.StepSizer().Name())

	var runErr error
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := e.Step(); err != nil {
			runErr = fmt.Errorf("step %d: %w", e.Steps()+1, err)
			break
		}
		v := e.Check()
		for _, o := range r.observers {
			o.OnStep(e)
		}
		if !v.Smooth() {
			log.Warn("field blew up", "step", v.Step, "reason", v.Reason, "index", v.Index, "value", v.Value)
			break
		}
		if r.logEvery > 0 && e.Steps()%r.logEvery == 0 {
			log.Debug("progress", "step", e.Steps(), "t", e.Time(), "omega", e.Omega(), "clamped", e.LastClamped())
		}
	}

	res := summarise(name, e, omega0)
	res.Elapsed = time.Since(start)

	if res.BlowUp != nil {
		log.Warn("run stopped", "last_good_step", res.LastGoodStep, "elapsed", res.Elapsed)
	} else {
		log.Info("run finished", "steps", res.Steps, "omega", res.FinalOmega, "clamped", res.Clamped, "elapsed", res.Elapsed)
	}
	return res, runErr
}

func summarise(name string, e *engine.Engine, omega0 float64) *Result {
	res := &Result{
		Name:         name,
		Steps:        e.Steps(),
		Time:         e.Time(),
		Phase:        e.Phase(),
		LastGoodStep: e.Steps(),
		Clamped:      e.Clamped(),
		InitialOmega: omega0,
		FinalOmega:   e.Omega(),
		Metrics:      make(map[string]float64),
		Samples:      e.Diagnostics().Samples(),
		Field:        e.C(),
		Companion:    e.I(),
	}
	var bu *engine.BlowUpError
	if errors.As(e.Err(), &bu) {
		res.BlowUp = bu
		res.LastGoodStep = bu.LastGoodStep()
	}
	if last, ok := e.Diagnostics().Last(); ok {
		for k, v := range last.Probes {
			res.Metrics[k] = v
		}
	}
	res.Metrics["omega"] = res.FinalOmega
	res.Metrics["min"] = e.C().Min()
	res.Metrics["max"] = e.C().Max()
	res.Metrics["clamped"] = float64(res.Clamped)
	return res
}
