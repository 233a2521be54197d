package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

var (
	// ErrNoObservation means the window held no data for the rule. It is
	// never turned into a zero value.
	ErrNoObservation = errors.New("no observation")
	// ErrImplausible means the value fell outside the rule's sanity bounds.
	ErrImplausible = errors.New("implausible value")
)

// Bounds is an exclusive plausibility range. The zero value accepts
// everything.
type Bounds struct {
	Min float64
	Max float64
}

// Accepts reports whether v lies strictly inside the bounds.
func (b Bounds) Accepts(v float64) bool {
	if b == (Bounds{}) {
		return true
	}
	return v > b.Min && v < b.Max
}

// Default plausibility bounds.
var (
	BrakingBounds      = Bounds{Min: 10, Max: 250}
	AccelerationBounds = Bounds{Min: 0.5, Max: 8.0}
)

// Default channel thresholds.
const (
	BrakeApplied = 1.0
	FullThrottle = 99.0
)

// Rule computes one scalar from the samples inside a window.
type Rule struct {
	Name string
	// Apply receives the non-empty zone of samples inside w.
	Apply  func(zone []telemetry.Sample, w Window) (float64, error)
	Bounds Bounds
}

// Extract filters samples to the window and applies the rule.
func Extract(samples []telemetry.Sample, w Window, r Rule) (float64, error) {
	zone := w.Filter(samples)
	if len(zone) == 0 {
		return 0, fmt.Errorf("%s: window %s empty: %w", r.Name, w, ErrNoObservation)
	}
	v, err := r.Apply(zone, w)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || !r.Bounds.Accepts(v) {
		return 0, fmt.Errorf("%s: %.3f outside (%.1f, %.1f): %w", r.Name, v, r.Bounds.Min, r.Bounds.Max, ErrImplausible)
	}
	return v, nil
}

// BrakingDistance is the distance covered with the brake at or above
// threshold inside the window.
func BrakingDistance(threshold float64, b Bounds) Rule {
	return Rule{
		Name:   "braking distance",
		Bounds: b,
		Apply: func(zone []telemetry.Sample, _ Window) (float64, error) {
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, s := range zone {
				if s.Brake < threshold {
					continue
				}
				lo = math.Min(lo, s.Distance)
				hi = math.Max(hi, s.Distance)
			}
			if math.IsInf(lo, 1) {
				return 0, fmt.Errorf("braking distance: brake never applied: %w", ErrNoObservation)
			}
			return hi - lo, nil
		},
	}
}

// MinSpeed is the lowest speed in the window, the apex speed.
func MinSpeed() Rule {
	return Rule{
		Name: "minimum speed",
		Apply: func(zone []telemetry.Sample, _ Window) (float64, error) {
			v := math.Inf(1)
			for _, s := range zone {
				v = math.Min(v, s.Speed)
			}
			return v, nil
		},
	}
}

// MaxSpeed is the highest speed in the window.
func MaxSpeed() Rule {
	return Rule{
		Name: "maximum speed",
		Apply: func(zone []telemetry.Sample, _ Window) (float64, error) {
			v := math.Inf(-1)
			for _, s := range zone {
				v = math.Max(v, s.Speed)
			}
			return v, nil
		},
	}
}

// MeanSpeed is the arithmetic mean speed in the window.
func MeanSpeed() Rule {
	return Rule{
		Name: "mean speed",
		Apply: func(zone []telemetry.Sample, _ Window) (float64, error) {
			speeds := make([]float64, len(zone))
			for i, s := range zone {
				speeds[i] = s.Speed
			}
			return stat.Mean(speeds, nil), nil
		},
	}
}

// DistanceToFullThrottle is the distance past the window reference where the
// throttle first reaches threshold.
func DistanceToFullThrottle(threshold float64) Rule {
	return Rule{
		Name: "distance to full throttle",
		Apply: func(zone []telemetry.Sample, w Window) (float64, error) {
			first := math.Inf(1)
			for _, s := range zone {
				if s.Throttle >= threshold {
					first = math.Min(first, s.Distance)
				}
			}
			if math.IsInf(first, 1) {
				return 0, fmt.Errorf("distance to full throttle: throttle never reached %.0f: %w", threshold, ErrNoObservation)
			}
			return first - w.Ref, nil
		},
	}
}

// AccelerationTime is the time in seconds between first reaching from and
// then, strictly later, reaching to.
func AccelerationTime(from, to float64, b Bounds) Rule {
	return Rule{
		Name:   fmt.Sprintf("acceleration %.0f-%.0f", from, to),
		Bounds: b,
		Apply: func(zone []telemetry.Sample, _ Window) (float64, error) {
			start := -1
			for i, s := range zone {
				if s.Speed >= from {
					start = i
					break
				}
			}
			if start < 0 {
				return 0, fmt.Errorf("acceleration: never reached %.0f: %w", from, ErrNoObservation)
			}
			t0 := zone[start].Time
			for _, s := range zone[start:] {
				if s.Time > t0 && s.Speed >= to {
					return (s.Time - t0).Seconds(), nil
				}
			}
			return 0, fmt.Errorf("acceleration: never reached %.0f after %.0f: %w", to, from, ErrNoObservation)
		},
	}
}
