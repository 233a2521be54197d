package analysis

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/telemetry.report/internal/metrics"
	"github.com/banshee-data/telemetry.report/internal/render"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// DefaultDegradationDrivers is how many drivers a tyre degradation chart
// shows when none are named.
const DefaultDegradationDrivers = 5

// TimingAnalyzer compares lap times.
type TimingAnalyzer struct{ base }

// NewTimingAnalyzer returns a timing analyzer over src.
func NewTimingAnalyzer(src telemetry.Provider, o Options) *TimingAnalyzer {
	return &TimingAnalyzer{newBase(src, o)}
}

// Trend is a least-squares fit of lap time against lap number.
type Trend struct {
	Driver    string
	Intercept float64 // seconds
	Slope     float64 // seconds per lap
	Laps      int
}

// lapTable turns lap times into a metric table, drivers in provider order.
func (t *TimingAnalyzer) lapTable(metric string, laps []telemetry.Lap, value func(telemetry.Lap) float64) metrics.Table {
	var obs []metrics.Observation
	for _, id := range t.src.Drivers() {
		driverLaps := telemetry.PickDriver(laps, id)
		if len(driverLaps) == 0 {
			continue
		}
		d, err := t.src.Driver(id)
		if err != nil {
			t.log.Debug("driver skipped", zap.String("driver", id), zap.Error(err))
			continue
		}
		team := driverLaps[0].Team
		if team == "" {
			team = d.Team
		}
		for _, l := range driverLaps {
			obs = append(obs, metrics.Observation{Driver: driverCode(d), Team: team, Lap: l.Number, Value: value(l)})
		}
	}
	return metrics.Table{Metric: metric, Observations: obs}
}

// PaceDistribution draws the lap time distribution of every driver. Lower is
// better.
func (t *TimingAnalyzer) PaceDistribution() (Result, error) {
	t.log.Info("Generating Pace Distribution Boxplot")
	table := t.lapTable("Timing_PaceDistribution", t.laps(), func(l telemetry.Lap) float64 { return l.LapTime.Seconds() })
	return t.distribution(table, chart{
		title:  "Race Pace Distribution",
		yLabel: "Lap Time (s)",
		suffix: table.Metric,
	})
}

// DeltaToBest draws each lap's deficit to the session best lap, with the
// median per driver.
func (t *TimingAnalyzer) DeltaToBest() (Result, error) {
	t.log.Info("Calculating Delta to Session Best Lap")
	laps := t.laps()
	best, ok := telemetry.PickFastest(laps)
	if !ok {
		t.log.Info("no data available to plot", zap.String("metric", "Timing_DeltaToBest"))
		return Result{}, fmt.Errorf("Timing_DeltaToBest: %w", ErrNoData)
	}
	bestSec := best.LapTime.Seconds()
	t.log.Info("session best", zap.String("driver", best.Driver), zap.Float64("lap_time", bestSec))

	table := t.lapTable("Timing_DeltaToBest", laps, func(l telemetry.Lap) float64 { return l.LapTime.Seconds() - bestSec })
	return t.distribution(table, chart{
		title:  fmt.Sprintf("Pace Deficit to Best Lap (+%.3fs)", bestSec),
		yLabel: "Seconds Slower than Best Lap",
		suffix: table.Metric,
		strip:  true,
		yMin:   -0.5,
		yMax:   5.0,
	})
}

// TyreDegradation plots lap time against lap number with a linear trend per
// driver. With no drivers named, the first DefaultDegradationDrivers drivers
// with laps are used. An empty compound keeps every compound.
func (t *TimingAnalyzer) TyreDegradation(drivers []string, compound string) (Result, error) {
	t.log.Info("Analyzing Tyre Degradation & Consistency")
	laps := t.laps()
	if compound != "" {
		laps = telemetry.PickCompound(laps, compound)
	}

	var selected []telemetry.Driver
	if len(drivers) > 0 {
		var err error
		if selected, err = t.resolveDrivers(drivers); err != nil {
			return Result{}, err
		}
	} else {
		ids := lo.Uniq(lo.Map(laps, func(l telemetry.Lap, _ int) string { return l.Driver }))
		for _, id := range lo.Slice(ids, 0, DefaultDegradationDrivers) {
			if d, err := t.src.Driver(id); err == nil {
				selected = append(selected, d)
			}
		}
	}

	var res Result
	for _, d := range selected {
		dl := telemetry.PickDriver(laps, d.ID)
		if len(dl) == 0 {
			continue
		}
		x := lo.Map(dl, func(l telemetry.Lap, _ int) float64 { return float64(l.Number) })
		y := lo.Map(dl, func(l telemetry.Lap, _ int) float64 { return l.LapTime.Seconds() })
		code := driverCode(d)
		col := t.teamColor(dl[0], d)
		res.Series = append(res.Series, render.Series{Label: code, Color: col, X: x, Y: y, Style: render.Points})

		first, last := minMax(x)
		if first == last {
			continue
		}
		alpha, beta := stat.LinearRegression(x, y, nil, false)
		res.Trends = append(res.Trends, Trend{Driver: code, Intercept: alpha, Slope: beta, Laps: len(dl)})
		res.Series = append(res.Series, render.Series{
			Color: col,
			X:     []float64{first, last},
			Y:     []float64{alpha + beta*first, alpha + beta*last},
		})
	}

	if len(res.Series) == 0 {
		t.log.Info("no data available to plot", zap.String("metric", "Timing_TyreDegradation"))
		return res, fmt.Errorf("Timing_TyreDegradation: %w", ErrNoData)
	}

	paths, err := t.traces("Timing_TyreDegradation", render.Traces{
		Title:    "Tyre Degradation Analysis (Pace Evolution)",
		Subtitle: t.subtitle(),
		XLabel:   "Lap Number",
		YLabel:   "Lap Time (s)",
		Series:   res.Series,
	})
	res.Paths = paths
	return res, err
}

func minMax(v []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
