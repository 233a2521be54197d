package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaTime(t *testing.T) {
	// Reference covers 100 m every second; comparison is 10% slower.
	var ref, comp []Sample
	for i := 0; i <= 10; i++ {
		ref = append(ref, Sample{Time: sec(float64(i)), Distance: float64(i) * 100})
		comp = append(comp, Sample{Time: sec(float64(i) * 1.1), Distance: float64(i) * 100})
	}

	delta, err := DeltaTime(ref, comp)
	require.NoError(t, err)
	require.Len(t, delta, len(ref))
	assert.InDelta(t, 0, delta[0], 1e-9)
	assert.InDelta(t, 0.5, delta[5], 1e-9)
	assert.InDelta(t, 1.0, delta[10], 1e-9)
}

func TestDeltaTime_SkipsStationarySamples(t *testing.T) {
	ref := []Sample{{Time: sec(0), Distance: 0}, {Time: sec(1), Distance: 50}}
	comp := []Sample{
		{Time: sec(0), Distance: 0},
		{Time: sec(0.5), Distance: 0},
		{Time: sec(2), Distance: 100},
	}
	delta, err := DeltaTime(ref, comp)
	require.NoError(t, err)
	assert.InDelta(t, 0, delta[0], 1e-9)
	assert.InDelta(t, 0, delta[1], 1e-9)
}

func TestDeltaTime_Insufficient(t *testing.T) {
	_, err := DeltaTime(nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, err = DeltaTime([]Sample{{}}, []Sample{{Distance: 5}})
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}
