package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/initial"
)

func newEnsembleCmd() *cobra.Command {
	var (
		sf        scenarioFlags
		trials    int
		seedStart int64
		parallel  int
		amplitude float64
	)
	cmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run a scenario from many noisy initial fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := sf.resolve(cmd, args)
			if err != nil {
				return err
			}
			base.Initial.Kind = initial.Noise
			base.Initial.Amplitude = amplitude

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ens := experiment.NewEnsemble(log, trials, seedStart)
			ens.SetLimit(parallel)
			log.Info("running ensemble", "trials", trials, "seed_start", seedStart, "amplitude", amplitude)

			results, err := ens.Run(ctx, func(seed int64) (experiment.Config, error) {
				cfg := base.Clone()
				cfg.Seed = seed
				cfg.Initial.Seed = seed
				cfg.Name = fmt.Sprintf("%s-%d", base.Name, seed)
				return cfg.Build(registry)
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SEED\tSTEPS\tOUTCOME\tCLAMPED\tΩ")
			for i, r := range results {
				outcome := "stable"
				if r.BlowUp != nil {
					outcome = fmt.Sprintf("blew up @%d (%s)", r.BlowUp.Step, r.BlowUp.Verdict.Reason)
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%.6g\n", seedStart+int64(i), r.Steps, outcome, r.Clamped, r.FinalOmega)
			}
			w.Flush()

			s := experiment.Summarise(results)
			fmt.Printf("\n%d trials: %d stable, %d blew up", s.Trials, s.Stable, s.BlownUp)
			if s.EarliestBlow >= 0 {
				fmt.Printf(" (earliest at step %d)", s.EarliestBlow)
			}
			fmt.Printf("\nmean steps %.1f, mean clamped %.1f\n", s.MeanSteps, s.MeanClamped)
			return nil
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().IntVar(&trials, "trials", 8, "number of trials")
	cmd.Flags().Int64Var(&seedStart, "seed-start", 1, "seed of the first trial")
	cmd.Flags().IntVar(&parallel, "parallel", runtime.NumCPU(), "concurrent trials")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 0.01, "noise amplitude")
	return cmd
}
