package telemetry

import (
	"errors"
	"time"

	"github.com/samber/lo"
)

// DefaultQuickLapThreshold keeps laps within 107% of the session best.
const DefaultQuickLapThreshold = 1.07

// ErrNoLaps is returned when a lap selection is empty.
var ErrNoLaps = errors.New("no laps")

// PickDriver returns the laps driven by the given driver id.
func PickDriver(laps []Lap, id string) []Lap {
	return lo.Filter(laps, func(l Lap, _ int) bool { return l.Driver == id })
}

// PickWithoutBox drops in-laps and out-laps.
func PickWithoutBox(laps []Lap) []Lap {
	return lo.Filter(laps, func(l Lap, _ int) bool { return !l.PitIn && !l.PitOut })
}

// PickCompound returns laps run on the given tyre compound.
func PickCompound(laps []Lap, compound string) []Lap {
	return lo.Filter(laps, func(l Lap, _ int) bool { return l.Compound == compound })
}

// PickQuickLaps keeps timed, non-deleted laps no slower than threshold times
// the fastest lap in the selection. A threshold <= 0 uses the default.
func PickQuickLaps(laps []Lap, threshold float64) []Lap {
	if threshold <= 0 {
		threshold = DefaultQuickLapThreshold
	}
	best, ok := PickFastest(laps)
	if !ok {
		return nil
	}
	limit := time.Duration(float64(best.LapTime) * threshold)
	return lo.Filter(laps, func(l Lap, _ int) bool {
		return !l.Deleted && l.LapTime > 0 && l.LapTime <= limit
	})
}

// PickFastest returns the quickest timed, non-deleted lap. The earliest lap
// wins a tie.
func PickFastest(laps []Lap) (Lap, bool) {
	var best Lap
	found := false
	for _, l := range laps {
		if l.Deleted || l.LapTime <= 0 {
			continue
		}
		if !found || l.LapTime < best.LapTime {
			best = l
			found = true
		}
	}
	return best, found
}

// RepresentativeLaps applies the quick-lap and pit filters used by every
// comparative analysis.
func RepresentativeLaps(p Provider, threshold float64) []Lap {
	return PickWithoutBox(PickQuickLaps(p.Laps(), threshold))
}
