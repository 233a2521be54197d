// Package analysis answers comparative questions about a session: corner
// entry and exit, straights, lap timing, car-data traces and track maps.
//
// Analyzers are stateless over a read-only Provider. Each query returns the
// data it plotted together with the files it wrote. Structural errors, such
// as an unknown corner or driver, abort a query before anything is written;
// per-lap failures are logged and skipped.
package analysis

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/banshee-data/telemetry.report/internal/config"
	"github.com/banshee-data/telemetry.report/internal/fsutil"
	"github.com/banshee-data/telemetry.report/internal/logging"
	"github.com/banshee-data/telemetry.report/internal/metrics"
	"github.com/banshee-data/telemetry.report/internal/render"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/units"
)

var (
	// ErrNoData is returned when a query produced nothing to plot. No file
	// is written.
	ErrNoData = errors.New("no data")
	// ErrNoDrivers is returned when a comparison is requested without drivers.
	ErrNoDrivers = errors.New("no drivers given")
)

// Options configures an analyzer. Zero values select defaults: the default
// Config, the built-in team colours, the OS filesystem, a renderer for the
// configured formats and a no-op logger.
type Options struct {
	Config   *config.Config
	Colors   *config.TeamColors
	FS       fsutil.FileSystem
	Renderer render.Renderer
	// OutputDir overrides Config.OutputDir.
	OutputDir string
	Logger    *zap.Logger
}

// Result is the outcome of one query.
type Result struct {
	Table   metrics.Table
	Ranking []metrics.DriverSummary
	Series  []render.Series
	Trends  []Trend
	Paths   []string
}

// base carries the shared, read-only state of every analyzer.
type base struct {
	src      telemetry.Provider
	cfg      *config.Config
	colors   config.TeamColors
	fs       fsutil.FileSystem
	renderer render.Renderer
	outDir   string
	log      *zap.Logger
}

func newBase(src telemetry.Provider, o Options) base {
	b := base{
		src:      src,
		cfg:      o.Config,
		fs:       o.FS,
		renderer: o.Renderer,
		outDir:   o.OutputDir,
		log:      logging.OrNop(o.Logger),
	}
	if b.cfg == nil {
		b.cfg = config.Default()
	}
	if o.Colors != nil {
		b.colors = *o.Colors
	} else {
		b.colors = config.BuiltinTeamColors(b.cfg.GetDefaultColor())
	}
	if b.fs == nil {
		b.fs = fsutil.OSFileSystem{}
	}
	if b.renderer == nil {
		r, err := render.New(b.cfg.GetFormats(), b.fs)
		if err != nil {
			r = &render.PlotRenderer{FS: b.fs}
		}
		b.renderer = r
	}
	if b.outDir == "" {
		b.outDir = b.cfg.GetOutputDir()
	}
	return b
}

// laps returns the representative laps used by comparative queries.
func (b base) laps() []telemetry.Lap {
	return telemetry.RepresentativeLaps(b.src, b.cfg.GetQuickLapThreshold())
}

func (b base) circuit() (telemetry.Circuit, error) {
	c, err := b.src.Circuit()
	if err != nil {
		return telemetry.Circuit{}, fmt.Errorf("circuit: %w", err)
	}
	return c, nil
}

func (b base) corner(n int) (float64, error) {
	c, err := b.circuit()
	if err != nil {
		return 0, err
	}
	return metrics.CornerDistance(c, n)
}

func (b base) subtitle() string {
	ev := b.src.Event()
	return fmt.Sprintf("%d %s", ev.Year, ev.Name)
}

// outputBase returns the output path, without extension, for a suffix.
func (b base) outputBase(suffix string) (string, error) {
	if err := b.fs.MkdirAll(b.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return filepath.Join(b.outDir, telemetry.SaveName(b.src.Event(), suffix)), nil
}

func (b base) speedUnits() string {
	return b.cfg.GetSpeedUnits()
}

func (b base) speedLabel(name string) string {
	return fmt.Sprintf("%s (%s)", name, units.Label(b.speedUnits()))
}

func (b base) toDisplaySpeed(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = units.ConvertSpeed(v, b.speedUnits())
	}
	return out
}

func (b base) logSkipped(t metrics.Table) {
	for _, s := range t.Skipped {
		b.log.Debug("lap skipped",
			zap.String("metric", t.Metric),
			zap.String("driver", s.Driver),
			zap.Int("lap", s.Lap),
			zap.Error(s.Err))
	}
}

// chart describes how a metric table is drawn.
type chart struct {
	title          string
	yLabel         string
	suffix         string
	higherIsBetter bool
	speed          bool
	strip          bool
	yMin, yMax     float64
}

// distribution ranks a table and draws it. An empty table is reported as
// ErrNoData and nothing is written.
func (b base) distribution(t metrics.Table, c chart) (Result, error) {
	b.logSkipped(t)
	res := Result{Table: t}
	if t.Empty() {
		b.log.Info("no data available to plot", zap.String("metric", t.Metric), zap.Int("skipped", len(t.Skipped)))
		return res, fmt.Errorf("%s: %w", t.Metric, ErrNoData)
	}
	res.Ranking = metrics.Rank(t, c.higherIsBetter)

	groups := make([]render.Group, len(res.Ranking))
	for i, s := range res.Ranking {
		vals := s.Values
		if c.speed {
			vals = b.toDisplaySpeed(vals)
		}
		groups[i] = render.Group{Label: s.Driver, Color: b.colors.Lookup(s.Team), Values: vals}
	}
	d := render.Distribution{
		Title:          c.title,
		Subtitle:       b.subtitle(),
		YLabel:         c.yLabel,
		Groups:         groups,
		HigherIsBetter: c.higherIsBetter,
		YMin:           c.yMin,
		YMax:           c.yMax,
	}

	out, err := b.outputBase(c.suffix)
	if err != nil {
		return res, err
	}
	draw := b.renderer.Distribution
	if c.strip {
		draw = b.renderer.Strip
	}
	res.Paths, err = draw(out, d)
	if err != nil {
		return res, fmt.Errorf("render %s: %w", c.suffix, err)
	}
	for _, p := range res.Paths {
		b.log.Info("plot saved", zap.String("path", p))
	}
	return res, nil
}

// traces draws line series.
func (b base) traces(suffix string, c render.Traces) ([]string, error) {
	out, err := b.outputBase(suffix)
	if err != nil {
		return nil, err
	}
	paths, err := b.renderer.Traces(out, c)
	if err != nil {
		return paths, fmt.Errorf("render %s: %w", suffix, err)
	}
	for _, p := range paths {
		b.log.Info("plot saved", zap.String("path", p))
	}
	return paths, nil
}

// resolveDrivers maps ids or codes to drivers, failing on the first unknown.
func (b base) resolveDrivers(names []string) ([]telemetry.Driver, error) {
	if len(names) == 0 {
		return nil, ErrNoDrivers
	}
	out := make([]telemetry.Driver, 0, len(names))
	for _, n := range names {
		d, err := telemetry.ResolveDriver(b.src, n)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// driverCode returns the code shown for a driver, falling back to the id.
func driverCode(d telemetry.Driver) string {
	if d.Code != "" {
		return d.Code
	}
	return d.ID
}

// fastestLap returns a driver's fastest representative lap and its car data.
func (b base) fastestLap(d telemetry.Driver) (telemetry.Lap, []telemetry.Sample, error) {
	lap, ok := telemetry.PickFastest(telemetry.PickDriver(b.laps(), d.ID))
	if !ok {
		return telemetry.Lap{}, nil, fmt.Errorf("driver %s: %w", driverCode(d), telemetry.ErrNoLaps)
	}
	samples, err := telemetry.LapData(b.src, lap)
	if err != nil {
		return lap, nil, err
	}
	return lap, samples, nil
}

// teamColor returns the colour of a lap's team, or of the driver's team.
func (b base) teamColor(lap telemetry.Lap, d telemetry.Driver) string {
	if lap.Team != "" {
		return b.colors.Lookup(lap.Team)
	}
	return b.colors.Lookup(d.Team)
}
