package main

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/telemetry.report/internal/analysis"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

func newTrackCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "spatial comparisons on the track outline",
	}

	var ref, comp string
	gain := &cobra.Command{
		Use:   "gain",
		Short: "track outline coloured by where the reference driver gains or loses time",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.run(func(src telemetry.Provider, o analysis.Options) (analysis.Result, error) {
				return analysis.NewTrackAnalyzer(src, o).Gain.Map(ref, comp)
			})
		},
	}
	pairFlags(gain, &ref, &comp)

	cmd.AddCommand(gain)
	return cmd
}
