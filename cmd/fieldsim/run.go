package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/storage"
)

func newRunCmd() *cobra.Command {
	var (
		sf     scenarioFlags
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario to completion or blow-up",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sf.resolve(cmd, args)
			if err != nil {
				return err
			}
			run, err := cfg.Build(registry)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := experiment.NewRunner(log).Run(ctx, run)
			if res != nil {
				printResult(os.Stdout, res)
			}
			switch {
			case errors.Is(err, context.Canceled) && res != nil:
				log.Warn("interrupted, keeping partial run", "steps", res.Steps)
			case err != nil:
				return err
			}

			if noSave || res == nil {
				return nil
			}
			st := storage.New(opts.DataDir)
			if err := st.Init(); err != nil {
				return err
			}
			runID, err := st.Save(run, res)
			if err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			fmt.Printf("\nsaved: %s\n", runID)
			return nil
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func printResult(out io.Writer, res *experiment.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run\t%s\n", res.Name)
	fmt.Fprintf(w, "phase\t%s\n", res.Phase)
	fmt.Fprintf(w, "steps\t%d\n", res.Steps)
	fmt.Fprintf(w, "time\t%.6g\n", res.Time)
	if res.BlowUp != nil {
		fmt.Fprintf(w, "blow-up\tstep %d (%s)\n", res.BlowUp.Step, res.BlowUp.Verdict.Reason)
		fmt.Fprintf(w, "last good step\t%d\n", res.LastGoodStep)
	}
	fmt.Fprintf(w, "clamped\t%d\n", res.Clamped)
	fmt.Fprintf(w, "Ω initial\t%.6g\n", res.InitialOmega)
	fmt.Fprintf(w, "Ω final\t%.6g\n", res.FinalOmega)

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, res.Metrics[name])
	}
	fmt.Fprintf(w, "elapsed\t%s\n", res.Elapsed)
	w.Flush()
}
