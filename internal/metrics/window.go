// Package metrics extracts per-lap scalar metrics from distance windows of car
// data, aggregates them per driver and ranks drivers by their median.
package metrics

import (
	"errors"
	"fmt"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// ErrCornerNotFound is returned when a corner number has no reference on the
// circuit. It is a structural error: queries abort without partial results.
var ErrCornerNotFound = errors.New("corner not found")

type windowKind int

const (
	halfOpen windowKind = iota // [Start, End)
	open                       // (Start, End)
	wrapped                    // x > Start || x < End
)

// Window is an interval of lap distance used to bound a metric.
type Window struct {
	Start float64
	End   float64
	// Ref is the reference distance the window was derived from, usually a
	// corner apex.
	Ref  float64
	kind windowKind
}

// Around returns [d-before, d+after).
func Around(d, before, after float64) Window {
	return Window{Start: d - before, End: d + after, Ref: d, kind: halfOpen}
}

// After returns [d, d+offset).
func After(d, offset float64) Window {
	return Window{Start: d, End: d + offset, Ref: d, kind: halfOpen}
}

// Between returns the open segment between two corner distances. When from
// lies past to, the segment crosses the start/finish line and covers both
// the end of the lap after from and the start of the lap before to.
func Between(from, to float64) Window {
	kind := open
	if from > to {
		kind = wrapped
	}
	return Window{Start: from, End: to, Ref: from, kind: kind}
}

// Wraps reports whether the window crosses the start/finish line.
func (w Window) Wraps() bool {
	return w.kind == wrapped
}

// Contains reports whether a lap distance falls inside the window.
func (w Window) Contains(x float64) bool {
	switch w.kind {
	case open:
		return x > w.Start && x < w.End
	case wrapped:
		return x > w.Start || x < w.End
	default:
		return x >= w.Start && x < w.End
	}
}

// Filter returns the samples whose distance falls inside the window, in
// their original order.
func (w Window) Filter(samples []telemetry.Sample) []telemetry.Sample {
	var zone []telemetry.Sample
	for _, s := range samples {
		if w.Contains(s.Distance) {
			zone = append(zone, s)
		}
	}
	return zone
}

func (w Window) String() string {
	switch w.kind {
	case open:
		return fmt.Sprintf("(%.1f, %.1f)", w.Start, w.End)
	case wrapped:
		return fmt.Sprintf("(%.1f, end) + [0, %.1f)", w.Start, w.End)
	default:
		return fmt.Sprintf("[%.1f, %.1f)", w.Start, w.End)
	}
}

// CornerDistance looks up the apex distance of a corner.
func CornerDistance(c telemetry.Circuit, number int) (float64, error) {
	for _, corner := range c.Corners {
		if corner.Number == number {
			return corner.Distance, nil
		}
	}
	return 0, fmt.Errorf("corner %d: %w", number, ErrCornerNotFound)
}

// CornerWindows builds one window per circuit corner using build, in corner
// order.
func CornerWindows(c telemetry.Circuit, build func(apex float64) Window) []Window {
	ws := make([]Window, 0, len(c.Corners))
	for _, corner := range c.Corners {
		ws = append(ws, build(corner.Distance))
	}
	return ws
}
