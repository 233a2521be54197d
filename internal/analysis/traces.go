package analysis

import (
	"bytes"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/banshee-data/telemetry.report/internal/export"
	"github.com/banshee-data/telemetry.report/internal/render"
	"github.com/banshee-data/telemetry.report/internal/security"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// TelemetryAnalyzer compares car data traces and exports raw telemetry.
type TelemetryAnalyzer struct{ base }

// NewTelemetryAnalyzer returns a telemetry analyzer over src.
func NewTelemetryAnalyzer(src telemetry.Provider, o Options) *TelemetryAnalyzer {
	return &TelemetryAnalyzer{newBase(src, o)}
}

// ExportCSV writes every lap of every driver, not only representative laps,
// to {dir}/{session}_Exports/{CODE}_Telemetry.csv. An empty dir selects the
// output directory. Laps without valid car data are skipped; drivers without any
// are not written.
func (a *TelemetryAnalyzer) ExportCSV(dir string) ([]string, error) {
	if dir == "" {
		dir = a.outDir
	}
	final := filepath.Join(dir, telemetry.SaveName(a.src.Event(), "Exports"))
	a.log.Info("Starting Telemetry Export", zap.String("dir", final))
	if err := a.fs.MkdirAll(final, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	var paths []string
	all := a.src.Laps()
	for _, id := range a.src.Drivers() {
		laps := telemetry.PickDriver(all, id)
		if len(laps) == 0 {
			continue
		}
		d, err := a.src.Driver(id)
		if err != nil {
			a.log.Debug("driver skipped", zap.String("driver", id), zap.Error(err))
			continue
		}
		code := driverCode(d)
		a.log.Info("Processing driver", zap.String("driver", code))

		var buf bytes.Buffer
		w := export.NewTelemetryWriter(&buf)
		rows := 0
		for _, lap := range laps {
			samples, err := telemetry.LapData(a.src, lap)
			if err != nil {
				a.log.Debug("lap skipped", zap.String("lap", lap.Key().String()), zap.Error(err))
				continue
			}
			if err := w.WriteLap(code, lap.Number, samples); err != nil {
				return paths, err
			}
			rows += len(samples)
		}
		if rows == 0 {
			continue
		}
		if err := w.Flush(); err != nil {
			return paths, err
		}

		path := filepath.Join(final, security.SanitizeFilename(code)+"_Telemetry.csv")
		if err := a.fs.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("telemetry export: %w", ErrNoData)
	}
	a.log.Info("All files saved", zap.String("dir", final), zap.Int("files", len(paths)))
	return paths, nil
}

// channelTraces plots one channel of each driver's fastest lap.
func (a *TelemetryAnalyzer) channelTraces(drivers []string, suffix string, c render.Traces, channel func(telemetry.Sample) float64, label func(code string, lap telemetry.Lap) string) (Result, error) {
	selected, err := a.resolveDrivers(drivers)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, d := range selected {
		lap, samples, err := a.fastestLap(d)
		if err != nil {
			a.log.Info("no lap for driver", zap.String("driver", driverCode(d)), zap.Error(err))
			continue
		}
		x := make([]float64, len(samples))
		y := make([]float64, len(samples))
		for i, s := range samples {
			x[i] = s.Distance
			y[i] = channel(s)
		}
		res.Series = append(res.Series, render.Series{
			Label: label(driverCode(d), lap),
			Color: a.teamColor(lap, d),
			X:     x,
			Y:     y,
		})
	}
	if len(res.Series) == 0 {
		a.log.Info("no data available to plot", zap.String("metric", suffix))
		return res, fmt.Errorf("%s: %w", suffix, ErrNoData)
	}

	c.Subtitle = a.subtitle()
	c.Series = res.Series
	res.Paths, err = a.traces(suffix, c)
	return res, err
}

// SpeedComparison plots speed against distance for each driver's fastest lap.
func (a *TelemetryAnalyzer) SpeedComparison(drivers []string) (Result, error) {
	a.log.Info("Generating Speed Trace Comparison", zap.Strings("drivers", drivers))
	return a.channelTraces(drivers, "Telemetry_SpeedTrace",
		render.Traces{Title: "Top Speed Comparison - Fastest Lap", XLabel: "Distance (m)", YLabel: a.speedLabel("Speed")},
		func(s telemetry.Sample) float64 { return a.toDisplaySpeed([]float64{s.Speed})[0] },
		func(code string, lap telemetry.Lap) string {
			return fmt.Sprintf("%s (%.3fs)", code, lap.LapTime.Seconds())
		})
}

// ThrottleComparison plots throttle against distance for each driver's
// fastest lap.
func (a *TelemetryAnalyzer) ThrottleComparison(drivers []string) (Result, error) {
	a.log.Info("Generating Throttle Trace Comparison", zap.Strings("drivers", drivers))
	return a.channelTraces(drivers, "Telemetry_ThrottleTrace",
		render.Traces{Title: "Throttle Application Comparison", XLabel: "Distance (m)", YLabel: "Throttle %", Height: 5},
		func(s telemetry.Sample) float64 { return s.Throttle },
		func(code string, _ telemetry.Lap) string { return code })
}

// lapDelta is the gap between two drivers' fastest laps.
type lapDelta struct {
	ref, comp         telemetry.Driver
	refLap, compLap   telemetry.Lap
	refData, compData []telemetry.Sample
	delta             []float64
}

// deltaBetween resolves both drivers and computes the time gap of comp
// against ref over ref's distance. Positive means comp is slower.
func (b base) deltaBetween(ref, comp string) (lapDelta, error) {
	ds, err := b.resolveDrivers([]string{ref, comp})
	if err != nil {
		return lapDelta{}, err
	}
	ld := lapDelta{ref: ds[0], comp: ds[1]}

	ld.refLap, ld.refData, err = b.fastestLap(ld.ref)
	if err != nil {
		b.log.Info("could not find laps", zap.String("driver", driverCode(ld.ref)), zap.Error(err))
		return ld, fmt.Errorf("%w: %w", err, ErrNoData)
	}
	ld.compLap, ld.compData, err = b.fastestLap(ld.comp)
	if err != nil {
		b.log.Info("could not find laps", zap.String("driver", driverCode(ld.comp)), zap.Error(err))
		return ld, fmt.Errorf("%w: %w", err, ErrNoData)
	}

	ld.delta, err = telemetry.DeltaTime(ld.refData, ld.compData)
	if err != nil {
		return ld, fmt.Errorf("delta %s vs %s: %w", driverCode(ld.ref), driverCode(ld.comp), err)
	}
	return ld, nil
}

// DeltaToDriver plots the running gap of comp to ref over one lap, shaded
// by which driver is losing time.
func (a *TelemetryAnalyzer) DeltaToDriver(ref, comp string) (Result, error) {
	a.log.Info("Calculating Delta", zap.String("ref", ref), zap.String("comp", comp))
	ld, err := a.deltaBetween(ref, comp)
	if err != nil {
		return Result{}, err
	}
	refCode, compCode := driverCode(ld.ref), driverCode(ld.comp)

	x := make([]float64, len(ld.refData))
	for i, s := range ld.refData {
		x[i] = s.Distance
	}
	series := render.Series{Label: "delta", Color: "#333333", X: x, Y: ld.delta}
	res := Result{Series: []render.Series{series}}

	res.Paths, err = a.traces(fmt.Sprintf("Telemetry_Delta_%s_vs_%s", refCode, compCode), render.Traces{
		Title:    fmt.Sprintf("Time Delta: %s (Reference) vs %s", refCode, compCode),
		Subtitle: a.subtitle(),
		XLabel:   "Distance (m)",
		YLabel:   fmt.Sprintf("Gap (s), above line = %s faster", refCode),
		Series:   res.Series,
		ZeroLine: true,
		Shade: &render.Shade{
			AboveColor: a.teamColor(ld.compLap, ld.comp),
			AboveLabel: compCode + " losing time",
			BelowColor: a.teamColor(ld.refLap, ld.ref),
			BelowLabel: refCode + " losing time",
		},
	})
	return res, err
}
