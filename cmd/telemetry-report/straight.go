package main

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/telemetry.report/internal/analysis"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/units"
)

func newStraightCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "straight",
		Short: "top speed and acceleration on straights",
	}

	var from, to int
	vmax := &cobra.Command{
		Use:   "vmax",
		Short: "top speed between two corners, across the line when --from is past --to",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.run(func(src telemetry.Provider, o analysis.Options) (analysis.Result, error) {
				return analysis.NewStraightAnalyzer(src, o).Speed.VMax(from, to)
			})
		},
	}
	vmax.Flags().IntVar(&from, "from", 0, "corner before the straight")
	vmax.Flags().IntVar(&to, "to", 0, "corner after the straight")
	_ = vmax.MarkFlagRequired("from")
	_ = vmax.MarkFlagRequired("to")

	var (
		after  int
		v0, v1 float64
	)
	accel := &cobra.Command{
		Use:   "accel",
		Short: "time to accelerate between two speeds after a corner",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.run(func(src telemetry.Provider, o analysis.Options) (analysis.Result, error) {
				u := o.Config.GetSpeedUnits()
				return analysis.NewStraightAnalyzer(src, o).Accel.TimeToSpeed(units.ToKPH(v0, u), units.ToKPH(v1, u), after)
			})
		},
	}
	accel.Flags().IntVar(&after, "after", 0, "corner the straight starts at")
	accel.Flags().Float64Var(&v0, "from-speed", 100, "start speed in --units")
	accel.Flags().Float64Var(&v1, "to-speed", 200, "target speed in --units")
	_ = accel.MarkFlagRequired("after")

	cmd.AddCommand(vmax, accel)
	return cmd
}
