package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/viz"
)

func newWatchCmd() *cobra.Command {
	var (
		sf       scenarioFlags
		fps      int
		perFrame int
		palette  string
	)
	cmd := &cobra.Command{
		Use:   "watch [preset]",
		Short: "step a scenario live in the terminal",
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
			e, err := engine.New(run.Engine)
			if err != nil {
				return err
			}

			final, err := viz.Run(e, viz.Options{
				Name:          run.Name,
				MaxSteps:      run.Steps,
				StepsPerFrame: perFrame,
				FPS:           fps,
				Palette:       palette,
			})
			if err != nil {
				return err
			}
			if err := final.Err(); err != nil {
				return err
			}
			if err := e.Err(); err != nil {
				fmt.Println(err)
			} else {
				fmt.Printf("stopped at step %d, Ω=%.6g\n", e.Steps(), e.Omega())
			}
			return nil
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().IntVar(&fps, "fps", 30, "frames per second")
	cmd.Flags().IntVar(&perFrame, "per-frame", 1, "steps per frame")
	cmd.Flags().StringVar(&palette, "palette", "thermal", "colour palette ("+strings.Join(viz.PaletteNames(), ", ")+")")
	return cmd
}
