package telemetry

import "github.com/banshee-data/telemetry.report/internal/units"

// AddDistance returns a copy of samples with Distance integrated from speed
// over time. The first sample covers the interval from lap start to its
// timestamp.
func AddDistance(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)

	var dist float64
	var prev float64
	for i := range out {
		t := out[i].Time.Seconds()
		dt := t - prev
		if i == 0 {
			dt = t
		}
		if dt > 0 {
			dist += units.KPHToMPS(out[i].Speed) * dt
		}
		out[i].Distance = dist
		prev = t
	}
	return out
}

// HasDistance reports whether any sample carries a distance value.
func HasDistance(samples []Sample) bool {
	for _, s := range samples {
		if s.Distance != 0 {
			return true
		}
	}
	return false
}
