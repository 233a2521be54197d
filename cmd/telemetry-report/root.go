package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/banshee-data/telemetry.report/internal/analysis"
	"github.com/banshee-data/telemetry.report/internal/config"
	"github.com/banshee-data/telemetry.report/internal/db"
	"github.com/banshee-data/telemetry.report/internal/export"
	"github.com/banshee-data/telemetry.report/internal/fsutil"
	"github.com/banshee-data/telemetry.report/internal/ingest"
	"github.com/banshee-data/telemetry.report/internal/logging"
	"github.com/banshee-data/telemetry.report/internal/render"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/version"
)

const envPrefix = "TELEMETRY"

// cli holds the resolved command line, environment and config file values.
type cli struct {
	v       *viper.Viper
	cfgFile string

	dbPath  string // sqlite database of imported sessions
	dataDir string // CSV session directory, bypasses the database
	event   string
	year    int
	session string

	tuning     string // JSON analysis config
	outDir     string
	formats    string
	teamColors string
	units      string
	tableCSV   bool

	logLevel string
	logDev   bool

	log *zap.Logger
	fs  fsutil.FileSystem
	out io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), fs: fsutil.OSFileSystem{}, log: zap.NewNop()}

	root := &cobra.Command{
		Use:          "telemetry-report",
		Short:        "Comparative analysis of racing telemetry",
		Version:      version.FullVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.telemetry-report.yml)")
	pf.StringVar(&c.dbPath, "db", "telemetry.db", "sqlite database of imported sessions")
	pf.StringVar(&c.dataDir, "data", "", "read the session from a CSV directory instead of the database")
	pf.StringVar(&c.event, "event", "", "event name, e.g. \"Las Vegas Grand Prix\"")
	pf.IntVar(&c.year, "year", 0, "event year")
	pf.StringVar(&c.session, "session", "Race", "session name, e.g. \"Qualifying\"")
	pf.StringVar(&c.tuning, "tuning", "", "JSON analysis config (windows, thresholds, bounds)")
	pf.StringVar(&c.outDir, "out-dir", "", "output directory (overrides the analysis config)")
	pf.StringVar(&c.formats, "format", "", "output formats: png, html or png,html")
	pf.StringVar(&c.teamColors, "team-colors", "", "JSON file mapping team names to colours")
	pf.StringVar(&c.units, "units", "", "speed units on charts: kph, mph or mps")
	pf.BoolVar(&c.tableCSV, "table-csv", false, "also write the per-lap metric table as CSV next to the charts")
	pf.StringVar(&c.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&c.logDev, "log-dev", false, "human readable development logging")

	root.AddCommand(
		newImportCmd(c),
		newSessionsCmd(c),
		newCornerCmd(c),
		newStraightCmd(c),
		newTimingCmd(c),
		newTelemetryCmd(c),
		newTrackCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	if err := c.initConfig(); err != nil {
		return err
	}
	bindFlags(cmd, c.v)

	log, err := logging.New(c.logLevel, c.logDev)
	if err != nil {
		return err
	}
	c.log = log
	c.out = cmd.OutOrStdout()
	return nil
}

// initConfig reads in the config file and ENV variables if set.
func (c *cli) initConfig() error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(home)
		}
		c.v.AddConfigPath(".")
		c.v.SetConfigType("yaml")
		c.v.SetConfigName(".telemetry-report")
	}

	c.v.SetEnvPrefix(envPrefix)
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if c.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --out-dir to TELEMETRY_OUT_DIR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not set flag value for %s: %v", f.Name, err)
			}
		}
	})
}

func (c *cli) eventInfo() (telemetry.Event, error) {
	if c.event == "" || c.year <= 0 {
		return telemetry.Event{}, errors.New("--event and --year are required")
	}
	return telemetry.Event{Name: c.event, Year: c.year, Session: c.session}, nil
}

// options builds the analysis options from the tuning file and flag
// overrides.
func (c *cli) options() (analysis.Options, error) {
	cfg := config.Default()
	if c.tuning != "" {
		var err error
		if cfg, err = config.Load(c.tuning); err != nil {
			return analysis.Options{}, err
		}
	}
	for _, o := range []struct {
		val string
		dst **string
	}{
		{c.outDir, &cfg.OutputDir},
		{c.formats, &cfg.Formats},
		{c.teamColors, &cfg.TeamColorsPath},
		{c.units, &cfg.SpeedUnits},
	} {
		if o.val != "" {
			v := o.val
			*o.dst = &v
		}
	}
	if err := cfg.Validate(); err != nil {
		return analysis.Options{}, err
	}

	colors := config.LoadTeamColors(cfg.GetTeamColorsPath(), cfg.GetDefaultColor(), c.log)
	r, err := render.New(cfg.GetFormats(), c.fs)
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{Config: cfg, Colors: &colors, FS: c.fs, Renderer: r, Logger: c.log}, nil
}

// provider opens the session to analyse. The returned func releases it.
func (c *cli) provider() (telemetry.Provider, func(), error) {
	ev, err := c.eventInfo()
	if err != nil {
		return nil, nil, err
	}
	if c.dataDir != "" {
		s, err := ingest.Loader{FS: c.fs, Log: c.log}.Load(c.dataDir, ev)
		return s, func() {}, err
	}

	database, err := db.Open(c.dbPath, c.log)
	if err != nil {
		return nil, nil, err
	}
	info, err := database.FindSession(ev)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	store, err := database.Session(info.ID)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return store, func() { database.Close() }, nil
}

// query is one analysis over an opened session.
type query func(src telemetry.Provider, o analysis.Options) (analysis.Result, error)

// run executes q and reports the ranking and written files. A query with
// nothing to plot is reported, not failed.
func (c *cli) run(q query) error {
	src, release, err := c.provider()
	if err != nil {
		return err
	}
	defer release()

	opts, err := c.options()
	if err != nil {
		return err
	}
	res, err := q(src, opts)
	if errors.Is(err, analysis.ErrNoData) {
		fmt.Fprintf(c.out, "no data available to plot: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	if c.tableCSV && !res.Table.Empty() && len(res.Paths) > 0 {
		p, err := c.writeTable(res)
		if err != nil {
			return err
		}
		res.Paths = append(res.Paths, p)
	}
	c.report(res)
	return nil
}

// writeTable saves the metric table beside the first chart of res.
func (c *cli) writeTable(res analysis.Result) (string, error) {
	p := strings.TrimSuffix(res.Paths[0], filepath.Ext(res.Paths[0])) + ".csv"
	f, err := c.fs.Create(p)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", p, err)
	}
	if err := export.WriteTable(f, res.Table); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, f.Close()
}

func (c *cli) report(res analysis.Result) {
	for i, s := range res.Ranking {
		fmt.Fprintf(c.out, "%2d. %-4s %10.3f  (%d laps)\n", i+1, s.Driver, s.Median, len(s.Values))
	}
	for _, t := range res.Trends {
		fmt.Fprintf(c.out, "%-4s %+.3f s/lap over %d laps\n", t.Driver, t.Slope, t.Laps)
	}
	for _, p := range res.Paths {
		fmt.Fprintf(c.out, "saved %s\n", p)
	}
}
