package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// Observation is one accepted per-lap value.
type Observation struct {
	Driver string // driver code
	Team   string
	Lap    int
	Value  float64
}

// LapResult is the outcome of extracting a metric from one lap: either a
// value or the reason the lap contributes nothing.
type LapResult struct {
	Driver string
	Team   string
	Lap    int
	Value  float64
	Err    error
}

// OK reports whether the lap produced a value.
func (r LapResult) OK() bool {
	return r.Err == nil
}

// Table is the per-lap result of one metric query. It is built once and
// never modified afterwards.
type Table struct {
	Metric       string
	Observations []Observation
	// Skipped holds the laps that produced no observation and why.
	Skipped []LapResult
}

// Empty reports whether no lap produced a value.
func (t Table) Empty() bool {
	return len(t.Observations) == 0
}

// Values returns the observations of one driver code in lap order.
func (t Table) Values(driver string) []float64 {
	var vals []float64
	for _, o := range t.Observations {
		if o.Driver == driver {
			vals = append(vals, o.Value)
		}
	}
	return vals
}

// LapFunc computes a metric from the car data of one lap.
type LapFunc func(samples []telemetry.Sample) (float64, error)

// SingleWindow applies a rule to one window.
func SingleWindow(w Window, r Rule) LapFunc {
	return func(samples []telemetry.Sample) (float64, error) {
		return Extract(samples, w, r)
	}
}

// MeanOfWindows applies a rule to every window and averages the values that
// were extracted. Windows without a value are left out of the mean.
func MeanOfWindows(ws []Window, r Rule) LapFunc {
	return func(samples []telemetry.Sample) (float64, error) {
		vals := make([]float64, 0, len(ws))
		for _, w := range ws {
			v, err := Extract(samples, w, r)
			if err != nil {
				continue
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return 0, fmt.Errorf("%s: no corner produced a value: %w", r.Name, ErrNoObservation)
		}
		return stat.Mean(vals, nil), nil
	}
}

// Aggregate computes one observation per (driver, lap) for a single window.
func Aggregate(p telemetry.Provider, laps []telemetry.Lap, metric string, w Window, r Rule) Table {
	return Collect(metric, Evaluate(p, laps, SingleWindow(w, r)))
}

// AggregateAll computes, per lap, the mean of the rule over every window.
func AggregateAll(p telemetry.Provider, laps []telemetry.Lap, metric string, ws []Window, r Rule) Table {
	return Collect(metric, Evaluate(p, laps, MeanOfWindows(ws, r)))
}

// Evaluate runs fn over the laps of every driver, drivers in provider order
// and laps in the given order. Failures are recorded per lap and never stop
// the batch.
func Evaluate(p telemetry.Provider, laps []telemetry.Lap, fn LapFunc) []LapResult {
	var results []LapResult
	for _, id := range p.Drivers() {
		driverLaps := telemetry.PickDriver(laps, id)
		if len(driverLaps) == 0 {
			continue
		}

		drv, derr := p.Driver(id)
		team := driverLaps[0].Team
		if team == "" {
			team = drv.Team
		}
		code := drv.Code
		if code == "" {
			code = id
		}

		for _, lap := range driverLaps {
			res := LapResult{Driver: code, Team: team, Lap: lap.Number}
			if derr != nil {
				res.Err = derr
			} else {
				res.Value, res.Err = evaluateLap(p, lap, fn)
			}
			results = append(results, res)
		}
	}
	return results
}

func evaluateLap(p telemetry.Provider, lap telemetry.Lap, fn LapFunc) (float64, error) {
	samples, err := telemetry.LapData(p, lap)
	if err != nil {
		return 0, err
	}
	return fn(samples)
}

// Collect splits lap results into observations and skipped laps.
func Collect(metric string, results []LapResult) Table {
	t := Table{Metric: metric}
	for _, r := range results {
		if !r.OK() {
			t.Skipped = append(t.Skipped, r)
			continue
		}
		t.Observations = append(t.Observations, Observation{
			Driver: r.Driver,
			Team:   r.Team,
			Lap:    r.Lap,
			Value:  r.Value,
		})
	}
	return t
}
