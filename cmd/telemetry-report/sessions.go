package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banshee-data/telemetry.report/internal/db"
	"github.com/banshee-data/telemetry.report/internal/ingest"
)

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "store a CSV session directory in the database",
		Long: `Reads laps.csv, corners.csv and telemetry.csv from dir and stores them
under --event, --year and --session. An existing copy of the session is
replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := c.eventInfo()
			if err != nil {
				return err
			}
			s, err := ingest.Loader{FS: c.fs, Log: c.log}.Load(args[0], ev)
			if err != nil {
				return err
			}

			database, err := db.Open(c.dbPath, c.log)
			if err != nil {
				return err
			}
			defer database.Close()

			info, err := database.SaveSession(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "stored %d %s %s as %s\n", ev.Year, ev.Name, ev.Session, info.ID)
			return nil
		},
	}
}

func newSessionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "list imported sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := db.Open(c.dbPath, c.log)
			if err != nil {
				return err
			}
			defer database.Close()

			list, err := database.ListSessions()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "YEAR\tEVENT\tSESSION\tID")
			for _, s := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Event.Year, s.Event.Name, s.Event.Session, s.ID)
			}
			return w.Flush()
		},
	}
}
