package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/telemetry.report/internal/analysis"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

func newTelemetryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "car data traces and exports",
	}

	var dir string
	export := &cobra.Command{
		Use:   "export",
		Short: "write every lap's car data to one CSV per driver",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			src, release, err := c.provider()
			if err != nil {
				return err
			}
			defer release()
			opts, err := c.options()
			if err != nil {
				return err
			}
			paths, err := analysis.NewTelemetryAnalyzer(src, opts).ExportCSV(dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(c.out, "saved %s\n", p)
			}
			return nil
		},
	}
	export.Flags().StringVar(&dir, "dir", "", "export directory (default: the output directory)")

	var drivers []string
	trace := func(use, short string, fn func(*analysis.TelemetryAnalyzer, []string) (analysis.Result, error)) *cobra.Command {
		sub := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return c.run(func(src telemetry.Provider, o analysis.Options) (analysis.Result, error) {
					return fn(analysis.NewTelemetryAnalyzer(src, o), drivers)
				})
			},
		}
		sub.Flags().StringSliceVar(&drivers, "drivers", nil, "driver codes or numbers")
		_ = sub.MarkFlagRequired("drivers")
		return sub
	}

	var ref, comp string
	delta := &cobra.Command{
		Use:   "delta",
		Short: "running time gap of one driver's fastest lap to another's",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.run(func(src telemetry.Provider, o analysis.Options) (analysis.Result, error) {
				return analysis.NewTelemetryAnalyzer(src, o).DeltaToDriver(ref, comp)
			})
		},
	}
	pairFlags(delta, &ref, &comp)

	cmd.AddCommand(
		export,
		trace("speed", "speed against distance on each driver's fastest lap",
			(*analysis.TelemetryAnalyzer).SpeedComparison),
		trace("throttle", "throttle against distance on each driver's fastest lap",
			(*analysis.TelemetryAnalyzer).ThrottleComparison),
		delta,
	)
	return cmd
}

func pairFlags(cmd *cobra.Command, ref, comp *string) {
	cmd.Flags().StringVar(ref, "ref", "", "reference driver")
	cmd.Flags().StringVar(comp, "comp", "", "comparison driver")
	_ = cmd.MarkFlagRequired("ref")
	_ = cmd.MarkFlagRequired("comp")
}
