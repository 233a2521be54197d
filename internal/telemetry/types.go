// Package telemetry holds the session, lap and car-data model shared by the
// analysis packages, and the Provider contract that supplies it.
package telemetry

import (
	"fmt"
	"time"
)

// Sample is one car-data tick, augmented with the distance travelled since
// the start of the lap.
type Sample struct {
	Time     time.Duration // since lap start
	Distance float64       // metres along the lap
	Speed    float64       // km/h
	Throttle float64       // 0-100
	Brake    float64       // >= 1 means applied
	RPM      float64
	Gear     int
	X        float64 // track position, metres
	Y        float64
}

// Lap identifies one lap driven by one driver.
type Lap struct {
	Driver   string // driver id (racing number)
	Number   int
	Team     string
	LapTime  time.Duration // zero when not set
	Compound string
	PitIn    bool
	PitOut   bool
	Deleted  bool
}

// Key returns the lookup key for the lap.
func (l Lap) Key() LapKey {
	return LapKey{Driver: l.Driver, Number: l.Number}
}

// LapKey identifies a lap within a session.
type LapKey struct {
	Driver string
	Number int
}

func (k LapKey) String() string {
	return fmt.Sprintf("%s/%d", k.Driver, k.Number)
}

// Driver maps a driver id to the code and team shown on plots.
type Driver struct {
	ID   string // racing number
	Code string // three-letter abbreviation, e.g. VER
	Team string
}

// Corner is a surveyed corner apex.
type Corner struct {
	Number   int
	Distance float64 // metres from the start/finish line
}

// Circuit holds the corner references for a session.
type Circuit struct {
	Corners []Corner
}

// Event describes the session being analysed.
type Event struct {
	Name    string // e.g. "Las Vegas Grand Prix"
	Year    int
	Session string // e.g. "Qualifying"
}
