package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/diagnostics"
	"github.com/san-kum/fieldsim/internal/storage"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(opts.DataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tSHAPE\tBOUNDARY\tSTEPS\tSTABLE\tΩ")
			for _, run := range runs {
				omega := "-"
				if v, ok := run.Metrics["omega"]; ok {
					omega = fmt.Sprintf("%.6g", v)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\t%s\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					shapeString(run.Shape),
					run.Boundary,
					run.Steps,
					run.Stable,
					omega,
				)
			}
			return w.Flush()
		},
	}
}

func shapeString(shape []int) string {
	parts := make([]string, len(shape))
	for i, n := range shape {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, "×")
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "show a stored run and plot its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(opts.DataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			history, err := st.LoadHistory(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "run\t%s\n", meta.ID)
			fmt.Fprintf(w, "when\t%s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "shape\t%s (dx=%.4g)\n", shapeString(meta.Shape), meta.Dx)
			fmt.Fprintf(w, "params\tκ=%g β=%g α=%g χ=%g C₀=%g dt=%g\n",
				meta.Params.Kappa, meta.Params.Beta, meta.Params.Alpha, meta.Params.Chi, meta.Params.C0, meta.Params.Dt)
			fmt.Fprintf(w, "potential\t%s\n", meta.Potential)
			fmt.Fprintf(w, "boundary\t%s\n", meta.Boundary)
			fmt.Fprintf(w, "stepper\t%s\n", meta.Stepper)
			fmt.Fprintf(w, "steps\t%d (t=%.6g)\n", meta.Steps, meta.Time)
			if meta.Stable {
				fmt.Fprintf(w, "outcome\tstable\n")
			} else {
				fmt.Fprintf(w, "outcome\tblew up at step %d (%s), last good step %d\n",
					meta.BlowUpStep, meta.BlowUpReason, meta.LastGoodStep)
			}
			fmt.Fprintf(w, "clamped\t%d\n", meta.Clamped)
			w.Flush()

			if len(history) < 2 {
				return nil
			}
			fmt.Println()
			for _, s := range []struct {
				caption string
				value   func(diagnostics.Sample) float64
			}{
				{"Ω vs step", func(s diagnostics.Sample) float64 { return s.Omega }},
				{"min C vs step", func(s diagnostics.Sample) float64 { return s.Min }},
				{"max C vs step", func(s diagnostics.Sample) float64 { return s.Max }},
			} {
				data := finiteSeries(history, s.value)
				if len(data) < 2 {
					continue
				}
				fmt.Println(asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(s.caption),
				))
				fmt.Println()
			}
			return nil
		},
	}
}

// finiteSeries stops at the first non-finite value, which asciigraph
// cannot scale.
func finiteSeries(history []diagnostics.Sample, value func(diagnostics.Sample) float64) []float64 {
	out := make([]float64, 0, len(history))
	for _, s := range history {
		v := value(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			break
		}
		out = append(out, v)
	}
	return out
}

func newExportCmd() *cobra.Command {
	var (
		out       string
		withField bool
	)
	cmd := &cobra.Command{
		Use:   "export-json <run-id>",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(opts.DataDir)
			if out == "" || out == "-" {
				return st.Export(os.Stdout, args[0], withField)
			}
			if err := st.ExportFile(out, args[0], withField); err != nil {
				return err
			}
			log.Info("exported", "run", args[0], "path", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&withField, "field", false, "include the final field")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSHAPE\tBOUNDARY\tPOTENTIAL\tκ\tβ\tα\tDT\tSTEPS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%g\t%g\t%d\n",
					name,
					shapeString(p.Grid.Shape),
					p.Boundary.Profile,
					p.Potential,
					p.Params.Kappa,
					p.Params.Beta,
					p.Params.Alpha,
					p.Params.Dt,
					p.Steps,
				)
			}
			return w.Flush()
		},
	}
}
