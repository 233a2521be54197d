// Package testutil provides shared test utilities and fixtures.
//
// It builds synthetic laps and sessions so metric and analysis tests can
// describe car data by distance instead of hand-writing sample slices.
package testutil

import (
	"time"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// DefaultTick is the time between synthetic samples.
const DefaultTick = 100 * time.Millisecond

// Fill sets the channels of a synthetic sample at distance d.
type Fill func(d float64, s *telemetry.Sample)

// Lap builds samples every step metres over [0, length], one DefaultTick
// apart, cruising at 200 km/h with full throttle unless fill overrides.
func Lap(length, step float64, fill Fill) []telemetry.Sample {
	var out []telemetry.Sample
	for i := 0; float64(i)*step <= length; i++ {
		d := float64(i) * step
		s := telemetry.Sample{
			Time:     time.Duration(i) * DefaultTick,
			Distance: d,
			Speed:    200,
			Throttle: 100,
		}
		if fill != nil {
			fill(d, &s)
		}
		out = append(out, s)
	}
	return out
}

// BrakeBetween returns a Fill that applies the brake on [from, to].
func BrakeBetween(from, to float64) Fill {
	return func(d float64, s *telemetry.Sample) {
		if d >= from && d <= to {
			s.Brake = 1
			s.Throttle = 0
		}
	}
}

// Chain applies fills in order.
func Chain(fills ...Fill) Fill {
	return func(d float64, s *telemetry.Sample) {
		for _, f := range fills {
			f(d, s)
		}
	}
}

// Seconds converts fractional seconds to a duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Session returns an empty in-memory session for a fixed test event.
func Session(corners ...telemetry.Corner) *telemetry.MemorySession {
	s := telemetry.NewMemorySession(telemetry.Event{Name: "Test Grand Prix", Year: 2024, Session: "Qualifying"})
	s.Track = telemetry.Circuit{Corners: corners}
	return s
}

// AddDriverLaps registers a driver and one timed lap per sample slice,
// numbered from 1.
func AddDriverLaps(s *telemetry.MemorySession, d telemetry.Driver, laps ...[]telemetry.Sample) {
	s.AddDriver(d)
	for i, samples := range laps {
		s.AddLap(telemetry.Lap{
			Driver:  d.ID,
			Number:  i + 1,
			Team:    d.Team,
			LapTime: 90*time.Second + time.Duration(i)*time.Second,
		}, samples)
	}
}
