package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// BuildFunc returns the run configuration for one ensemble member.
type BuildFunc func(seed int64) (Config, error)

// Ensemble runs independent trials concurrently, one engine per goroutine.
// Trial i uses seed SeedStart+i.
type Ensemble struct {
	log       *slog.Logger
	trials    int
	seedStart int64
	limit     int
}

func NewEnsemble(log *slog.Logger, trials int, seedStart int64) *Ensemble {
	if log == nil {
		log = slog.Default()
	}
	return &Ensemble{log: log, trials: trials, seedStart: seedStart}
}

// SetLimit caps the number of concurrently running trials; zero or
// negative means no limit.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run executes every trial. The first build or step error cancels the rest.
func (e *Ensemble) Run(ctx context.Context, build BuildFunc) ([]*Result, error) {
	if e.trials <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one trial, got %d", e.trials)
	}
	results := make([]*Result, e.trials)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.trials; i++ {
		seed := e.seedStart + int64(i)
		g.Go(func() error {
			cfg, err := build(seed)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			if cfg.Name == "" {
				cfg.Name = fmt.Sprintf("trial-%d", i)
			}
			cfg.Seed = seed

			r := NewRunner(e.log)
			r.SetLogEvery(0)
			res, err := r.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary counts outcomes across an ensemble.
type Summary struct {
	Trials       int
	Stable       int
	BlownUp      int
	MeanSteps    float64
	MeanClamped  float64
	EarliestBlow int
}

func Summarise(results []*Result) Summary {
	s := Summary{Trials: len(results), EarliestBlow: -1}
	if len(results) == 0 {
		return s
	}
	for _, r := range results {
		if r.Stable() {
			s.Stable++
		} else {
			s.BlownUp++
			if s.EarliestBlow < 0 || r.BlowUp.Step < s.EarliestBlow {
				s.EarliestBlow = r.BlowUp.Step
			}
		}
		s.MeanSteps += float64(r.Steps)
		s.MeanClamped += float64(r.Clamped)
	}
	n := float64(len(results))
	s.MeanSteps /= n
	s.MeanClamped /= n
	return s
}
