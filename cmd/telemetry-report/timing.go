package main

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/telemetry.report/internal/analysis"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

func newTimingCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timing",
		Short: "lap time distributions and trends",
	}

	simple := func(use, short string, fn func(*analysis.TimingAnalyzer) (analysis.Result, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return c.run(func(src telemetry.Provider, o analysis.Options) (analysis.Result, error) {
					return fn(analysis.NewTimingAnalyzer(src, o))
				})
			},
		}
	}

	var (
		drivers  []string
		compound string
	)
	deg := &cobra.Command{
		Use:   "degradation",
		Short: "lap time against lap number with a linear trend per driver",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.run(func(src telemetry.Provider, o analysis.Options) (analysis.Result, error) {
				return analysis.NewTimingAnalyzer(src, o).TyreDegradation(drivers, compound)
			})
		},
	}
	deg.Flags().StringSliceVar(&drivers, "drivers", nil, "driver codes or numbers (default: first five drivers)")
	deg.Flags().StringVar(&compound, "compound", "", "only laps on this tyre compound")

	cmd.AddCommand(
		simple("pace", "lap time distribution per driver",
			(*analysis.TimingAnalyzer).PaceDistribution),
		simple("delta", "deficit of every lap to the session best",
			(*analysis.TimingAnalyzer).DeltaToBest),
		deg,
	)
	return cmd
}
