package telemetry

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDriverNotFound is returned when a driver id or code is unknown.
	ErrDriverNotFound = errors.New("driver not found")
	// ErrNoTelemetry is returned when a lap has no car data.
	ErrNoTelemetry = errors.New("no telemetry for lap")
	// ErrMalformedTelemetry is returned for car data that cannot be analysed.
	ErrMalformedTelemetry = errors.New("malformed telemetry")
)

// Provider supplies the read-only data of one session. Implementations must
// return the same data on every call for the lifetime of a query.
type Provider interface {
	Event() Event
	// Drivers returns driver ids in session order.
	Drivers() []string
	Driver(id string) (Driver, error)
	// Laps returns every lap of the session.
	Laps() []Lap
	Circuit() (Circuit, error)
	// CarData returns the samples of a lap as recorded. Distance may be
	// absent; LapData fills it in.
	CarData(lap Lap) ([]Sample, error)
}

// MemorySession is an in-memory Provider.
type MemorySession struct {
	Info      Event
	DriverSet []Driver
	LapSet    []Lap
	Track     Circuit
	Telemetry map[LapKey][]Sample
}

// NewMemorySession returns an empty session for the given event.
func NewMemorySession(ev Event) *MemorySession {
	return &MemorySession{
		Info:      ev,
		Telemetry: make(map[LapKey][]Sample),
	}
}

// AddDriver registers a driver.
func (m *MemorySession) AddDriver(d Driver) {
	m.DriverSet = append(m.DriverSet, d)
}

// AddLap registers a lap and its samples. A nil sample slice registers a lap
// without car data.
func (m *MemorySession) AddLap(lap Lap, samples []Sample) {
	m.LapSet = append(m.LapSet, lap)
	if samples != nil {
		m.Telemetry[lap.Key()] = samples
	}
}

func (m *MemorySession) Event() Event { return m.Info }

func (m *MemorySession) Drivers() []string {
	ids := make([]string, 0, len(m.DriverSet))
	for _, d := range m.DriverSet {
		ids = append(ids, d.ID)
	}
	return ids
}

func (m *MemorySession) Driver(id string) (Driver, error) {
	for _, d := range m.DriverSet {
		if d.ID == id {
			return d, nil
		}
	}
	return Driver{}, fmt.Errorf("driver %q: %w", id, ErrDriverNotFound)
}

func (m *MemorySession) Laps() []Lap {
	return m.LapSet
}

func (m *MemorySession) Circuit() (Circuit, error) {
	return m.Track, nil
}

func (m *MemorySession) CarData(lap Lap) ([]Sample, error) {
	samples, ok := m.Telemetry[lap.Key()]
	if !ok {
		return nil, fmt.Errorf("lap %s: %w", lap.Key(), ErrNoTelemetry)
	}
	return samples, nil
}

// ResolveDriver finds a driver by id or by code.
func ResolveDriver(p Provider, idOrCode string) (Driver, error) {
	for _, id := range p.Drivers() {
		d, err := p.Driver(id)
		if err != nil {
			continue
		}
		if d.ID == idOrCode || d.Code == idOrCode {
			return d, nil
		}
	}
	return Driver{}, fmt.Errorf("driver %q: %w", idOrCode, ErrDriverNotFound)
}

// LapData returns the validated car data of a lap, with distance integrated
// from speed when the lap was recorded without it. Analyses read car data
// only through LapData.
func LapData(p Provider, lap Lap) ([]Sample, error) {
	samples, err := p.CarData(lap)
	if err != nil {
		return nil, err
	}
	if err := Validate(samples); err != nil {
		return nil, fmt.Errorf("lap %s: %w", lap.Key(), err)
	}
	if !HasDistance(samples) {
		samples = AddDistance(samples)
	}
	return samples, nil
}

// Validate rejects car data with non-finite channels or time running
// backwards.
func Validate(samples []Sample) error {
	for i, s := range samples {
		if !finite(s.Distance) || !finite(s.Speed) || !finite(s.Throttle) || !finite(s.Brake) ||
			!finite(s.RPM) || !finite(s.X) || !finite(s.Y) {
			return fmt.Errorf("sample %d: non-finite channel: %w", i, ErrMalformedTelemetry)
		}
		if i > 0 && s.Time < samples[i-1].Time {
			return fmt.Errorf("sample %d: time runs backwards: %w", i, ErrMalformedTelemetry)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
