package main

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/telemetry.report/internal/analysis"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

func newCornerCmd(c *cli) *cobra.Command {
	var (
		turn  int
		after float64
	)
	cmd := &cobra.Command{
		Use:   "corner",
		Short: "corner entry and exit metrics",
	}
	cmd.PersistentFlags().IntVar(&turn, "turn", 0, "corner number (0 analyses every corner)")

	add := func(use, short string,
		one func(a *analysis.CornerAnalyzer, n int) (analysis.Result, error),
		all func(a *analysis.CornerAnalyzer) (analysis.Result, error),
	) *cobra.Command {
		sub := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return c.run(func(src telemetry.Provider, o analysis.Options) (analysis.Result, error) {
					a := analysis.NewCornerAnalyzer(src, o)
					if turn == 0 {
						return all(a)
					}
					return one(a, turn)
				})
			},
		}
		cmd.AddCommand(sub)
		return sub
	}

	add("braking", "braking distance into the corner (lower is better)",
		func(a *analysis.CornerAnalyzer, n int) (analysis.Result, error) { return a.Entry.BrakingDistance(n) },
		func(a *analysis.CornerAnalyzer) (analysis.Result, error) { return a.All.BrakingDistance() })
	add("apex", "minimum speed at the apex (higher is better)",
		func(a *analysis.CornerAnalyzer, n int) (analysis.Result, error) { return a.Entry.ApexSpeed(n) },
		func(a *analysis.CornerAnalyzer) (analysis.Result, error) { return a.All.ApexSpeed() })
	exit := add("exit", "mean speed after the apex (higher is better)",
		func(a *analysis.CornerAnalyzer, n int) (analysis.Result, error) { return a.Exit.ExitSpeed(n, after) },
		func(a *analysis.CornerAnalyzer) (analysis.Result, error) { return a.All.ExitSpeed(after) })
	exit.Flags().Float64Var(&after, "after", 0, "metres after the apex (0 uses the configured offset)")
	add("throttle", "distance from the apex to full throttle (lower is better)",
		func(a *analysis.CornerAnalyzer, n int) (analysis.Result, error) { return a.Exit.ThrottleCommit(n) },
		func(a *analysis.CornerAnalyzer) (analysis.Result, error) { return a.All.ThrottleCommit() })

	return cmd
}
