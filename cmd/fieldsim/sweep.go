package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	var (
		sf       scenarioFlags
		kappas   []float64
		betas    []float64
		alphas   []float64
		dts      []float64
		metric   string
		parallel int
	)
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a scenario over a grid of parameters and rank the stable points",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := sf.resolve(cmd, args)
			if err != nil {
				return err
			}

			var axes []sweep.Axis
			for _, a := range []sweep.Axis{
				{Name: "kappa", Values: kappas},
				{Name: "beta", Values: betas},
				{Name: "alpha", Values: alphas},
				{Name: "dt", Values: dts},
			} {
				if len(a.Values) > 0 {
					axes = append(axes, a)
				}
			}
			if len(axes) == 0 {
				return fmt.Errorf("give at least one of --kappa-values, --beta-values, --alpha-values, --dt-values")
			}
			grid, err := sweep.NewGrid(axes...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sw := sweep.New(grid, metric, log)
			sw.SetLimit(parallel)
			log.Info("sweeping", "points", grid.Size(), "axes", grid.Names(), "metric", metric)

			points, err := sw.Run(ctx, func(point map[string]float64) (experiment.Config, error) {
				cfg := base.Clone()
				params, err := sweep.Apply(cfg.Params, point)
				if err != nil {
					return experiment.Config{}, err
				}
				cfg.Params = params
				cfg.Name = pointName(base.Name, grid.Names(), point)
				return cfg.Build(registry)
			})
			if err != nil {
				return err
			}

			sort.SliceStable(points, func(i, j int) bool { return points[i].Score < points[j].Score })
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.ToUpper(strings.Join(grid.Names(), "\t"))+"\tSTEPS\tOUTCOME\t"+strings.ToUpper(metric))
			for _, p := range points {
				for _, name := range grid.Names() {
					fmt.Fprintf(w, "%g\t", p.Params[name])
				}
				outcome := "stable"
				if p.Result.BlowUp != nil {
					outcome = fmt.Sprintf("blew up @%d", p.Result.BlowUp.Step)
				}
				score := "-"
				if !math.IsInf(p.Score, 1) {
					score = fmt.Sprintf("%.6g", p.Score)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.Result.Steps, outcome, score)
			}
			w.Flush()

			best, ok := sweep.Best(points)
			if !ok {
				fmt.Println("\nno stable point")
				return nil
			}
			fmt.Printf("\nbest: %s (%s=%.6g)\n", pointName("", grid.Names(), best.Params), metric, best.Score)
			return nil
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().Float64SliceVar(&kappas, "kappa-values", nil, "κ values")
	cmd.Flags().Float64SliceVar(&betas, "beta-values", nil, "β values")
	cmd.Flags().Float64SliceVar(&alphas, "alpha-values", nil, "α values")
	cmd.Flags().Float64SliceVar(&dts, "dt-values", nil, "dt values")
	cmd.Flags().StringVar(&metric, "metric", "omega", "metric to minimise")
	cmd.Flags().IntVar(&parallel, "parallel", runtime.NumCPU(), "concurrent runs")
	return cmd
}

func pointName(prefix string, names []string, point map[string]float64) string {
	parts := make([]string, 0, len(names)+1)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, point[name]))
	}
	return strings.Join(parts, ",")
}
