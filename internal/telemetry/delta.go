package telemetry

import (
	"errors"

	"gonum.org/v1/gonum/interp"
)

// ErrInsufficientSamples is returned when a lap has too few samples to
// interpolate.
var ErrInsufficientSamples = errors.New("insufficient samples")

// DeltaTime returns, for every reference sample, the gap in seconds of the
// comparison lap at the same distance. Positive values mean the comparison
// lap is slower at that point.
func DeltaTime(ref, comp []Sample) ([]float64, error) {
	if len(ref) == 0 {
		return nil, ErrInsufficientSamples
	}

	dist := make([]float64, 0, len(comp)+2)
	secs := make([]float64, 0, len(comp)+2)
	for _, s := range comp {
		if len(dist) > 0 && s.Distance <= dist[len(dist)-1] {
			continue
		}
		dist = append(dist, s.Distance)
		secs = append(secs, s.Time.Seconds())
	}
	if len(dist) < 2 {
		return nil, ErrInsufficientSamples
	}
	dist, secs = extendEnds(dist), extendEnds(secs)

	var pl interp.PiecewiseLinear
	if err := pl.Fit(dist, secs); err != nil {
		return nil, err
	}

	delta := make([]float64, len(ref))
	for i, s := range ref {
		delta[i] = pl.Predict(s.Distance) - s.Time.Seconds()
	}
	return delta, nil
}

// extendEnds pads a series with one linearly extrapolated value on each side
// so reference points just outside the comparison range still interpolate.
func extendEnds(v []float64) []float64 {
	n := len(v)
	out := make([]float64, 0, n+2)
	out = append(out, v[0]-(v[1]-v[0]))
	out = append(out, v...)
	out = append(out, v[n-1]+(v[n-1]-v[n-2]))
	return out
}
