package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/banshee-data/telemetry.report/internal/metrics"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// CornerAnalyzer measures corner entry and exit per driver.
type CornerAnalyzer struct {
	Entry EntryPhase
	Exit  ExitPhase
	All   AllCorners
}

// NewCornerAnalyzer returns a corner analyzer over src.
func NewCornerAnalyzer(src telemetry.Provider, o Options) *CornerAnalyzer {
	b := newBase(src, o)
	return &CornerAnalyzer{
		Entry: EntryPhase{b},
		Exit:  ExitPhase{b},
		All:   AllCorners{b},
	}
}

func (b base) brakingRule() metrics.Rule {
	return metrics.BrakingDistance(b.cfg.GetBrakeThreshold(), metrics.Bounds{Min: b.cfg.GetBrakingMin(), Max: b.cfg.GetBrakingMax()})
}

func (b base) brakingWindow(apex float64) metrics.Window {
	return metrics.Around(apex, b.cfg.GetBrakingBefore(), b.cfg.GetBrakingAfter())
}

func (b base) apexWindow(apex float64) metrics.Window {
	hw := b.cfg.GetApexHalfWidth()
	return metrics.Around(apex, hw, hw)
}

func (b base) exitWindow(apex, after float64) metrics.Window {
	hw := b.cfg.GetExitHalfWidth()
	return metrics.Around(apex+after, hw, hw)
}

func (b base) throttleWindow(apex float64) metrics.Window {
	return metrics.After(apex, b.cfg.GetThrottleWindow())
}

// EntryPhase covers braking into a corner and the apex.
type EntryPhase struct{ base }

// BrakingDistance is the distance spent braking in the window leading into
// corner n. Lower is better.
func (e EntryPhase) BrakingDistance(n int) (Result, error) {
	e.log.Info("Analyzing Braking Distance", zap.Int("turn", n))
	apex, err := e.corner(n)
	if err != nil {
		return Result{}, err
	}
	metric := fmt.Sprintf("T%d_Braking", n)
	t := metrics.Aggregate(e.src, e.laps(), metric, e.brakingWindow(apex), e.brakingRule())
	return e.distribution(t, chart{
		title:  fmt.Sprintf("Braking Distance - Turn %d", n),
		yLabel: "Braking Distance (m)",
		suffix: metric,
	})
}

// ApexSpeed is the minimum speed around the apex of corner n. Higher is
// better.
func (e EntryPhase) ApexSpeed(n int) (Result, error) {
	e.log.Info("Analyzing Apex Speed", zap.Int("turn", n))
	apex, err := e.corner(n)
	if err != nil {
		return Result{}, err
	}
	metric := fmt.Sprintf("T%d_ApexSpeed", n)
	t := metrics.Aggregate(e.src, e.laps(), metric, e.apexWindow(apex), metrics.MinSpeed())
	return e.distribution(t, chart{
		title:          fmt.Sprintf("Apex Speed - Turn %d", n),
		yLabel:         e.speedLabel("Minimum Speed"),
		suffix:         metric,
		higherIsBetter: true,
		speed:          true,
	})
}

// ExitPhase covers the run out of a corner.
type ExitPhase struct{ base }

// ExitSpeed is the mean speed around the point after metres past the apex of
// corner n. A non-positive after selects the configured offset. Higher is
// better.
func (x ExitPhase) ExitSpeed(n int, after float64) (Result, error) {
	if after <= 0 {
		after = x.cfg.GetExitOffset()
	}
	x.log.Info("Analyzing Exit Speed", zap.Int("turn", n), zap.Float64("after_m", after))
	apex, err := x.corner(n)
	if err != nil {
		return Result{}, err
	}
	metric := fmt.Sprintf("T%d_ExitSpeed", n)
	t := metrics.Aggregate(x.src, x.laps(), metric, x.exitWindow(apex, after), metrics.MeanSpeed())
	return x.distribution(t, chart{
		title:          fmt.Sprintf("Exit Speed (+%.0fm) - Turn %d", after, n),
		yLabel:         x.speedLabel("Speed"),
		suffix:         metric,
		higherIsBetter: true,
		speed:          true,
	})
}

// ThrottleCommit is the distance past the apex of corner n at which the
// driver reaches full throttle. Lower is better.
func (x ExitPhase) ThrottleCommit(n int) (Result, error) {
	x.log.Info("Analyzing Throttle Commit", zap.Int("turn", n))
	apex, err := x.corner(n)
	if err != nil {
		return Result{}, err
	}
	metric := fmt.Sprintf("T%d_ThrottleCommit", n)
	t := metrics.Aggregate(x.src, x.laps(), metric, x.throttleWindow(apex), metrics.DistanceToFullThrottle(x.cfg.GetThrottleThreshold()))
	return x.distribution(t, chart{
		title:  fmt.Sprintf("Throttle Commit - Turn %d", n),
		yLabel: "Distance After Apex to Full Throttle (m)",
		suffix: metric,
	})
}

// AllCorners averages a corner metric over every corner of the circuit, per
// lap. Corners without a value on a lap are left out of that lap's mean.
//
// Braking windows of closely spaced corners can overlap, so the same braking
// zone may be counted for more than one corner.
type AllCorners struct{ base }

func (a AllCorners) windows(build func(apex float64) metrics.Window) ([]metrics.Window, error) {
	c, err := a.circuit()
	if err != nil {
		return nil, err
	}
	if len(c.Corners) == 0 {
		return nil, fmt.Errorf("circuit has no corners: %w", metrics.ErrCornerNotFound)
	}
	return metrics.CornerWindows(c, build), nil
}

func (a AllCorners) run(name string, build func(apex float64) metrics.Window, rule metrics.Rule, c chart) (Result, error) {
	a.log.Info("Analyzing all corners", zap.String("metric", name))
	ws, err := a.windows(build)
	if err != nil {
		return Result{}, err
	}
	metric := "AllCorners_" + name
	c.suffix = metric
	t := metrics.AggregateAll(a.src, a.laps(), metric, ws, rule)
	return a.distribution(t, c)
}

// BrakingDistance is the mean braking distance over every corner.
func (a AllCorners) BrakingDistance() (Result, error) {
	return a.run("Braking", a.brakingWindow, a.brakingRule(), chart{
		title:  "Mean Braking Distance - All Corners",
		yLabel: "Braking Distance (m)",
	})
}

// ApexSpeed is the mean apex speed over every corner.
func (a AllCorners) ApexSpeed() (Result, error) {
	return a.run("ApexSpeed", a.apexWindow, metrics.MinSpeed(), chart{
		title:          "Mean Apex Speed - All Corners",
		yLabel:         a.speedLabel("Minimum Speed"),
		higherIsBetter: true,
		speed:          true,
	})
}

// ExitSpeed is the mean exit speed over every corner.
func (a AllCorners) ExitSpeed(after float64) (Result, error) {
	if after <= 0 {
		after = a.cfg.GetExitOffset()
	}
	build := func(apex float64) metrics.Window { return a.exitWindow(apex, after) }
	return a.run("ExitSpeed", build, metrics.MeanSpeed(), chart{
		title:          fmt.Sprintf("Mean Exit Speed (+%.0fm) - All Corners", after),
		yLabel:         a.speedLabel("Speed"),
		higherIsBetter: true,
		speed:          true,
	})
}

// ThrottleCommit is the mean distance to full throttle over every corner.
func (a AllCorners) ThrottleCommit() (Result, error) {
	return a.run("ThrottleCommit", a.throttleWindow, metrics.DistanceToFullThrottle(a.cfg.GetThrottleThreshold()), chart{
		title:  "Mean Throttle Commit - All Corners",
		yLabel: "Distance After Apex to Full Throttle (m)",
	})
}
