package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
)

func TestComputeBoxStats(t *testing.T) {
	b, ok := ComputeBoxStats([]float64{4, 100, 1, 3, 2})
	require.True(t, ok)
	assert.Equal(t, 2.0, b.Q1)
	assert.Equal(t, 3.0, b.Median)
	assert.Equal(t, 4.0, b.Q3)
	assert.Equal(t, 1.0, b.Low)
	assert.Equal(t, 4.0, b.High)
	assert.Equal(t, []float64{100}, b.Outliers)

	_, ok = ComputeBoxStats(nil)
	assert.False(t, ok)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#E8002D", color.RGBA{R: 0xE8, G: 0x00, B: 0x2D, A: 0xFF}},
		{"3671c6", color.RGBA{R: 0x36, G: 0x71, B: 0xC6, A: 0xFF}},
		{"#fff", color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}},
		{"red", color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}},
		{"", color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColor(tt.in))
		})
	}
}

func TestJitterIsDeterministicAndBounded(t *testing.T) {
	for i := 0; i < 200; i++ {
		j := Jitter(i, 0.5)
		assert.GreaterOrEqual(t, j, -0.25)
		assert.Less(t, j, 0.25)
		assert.Equal(t, j, Jitter(i, 0.5))
	}
}

func TestBetterLabel(t *testing.T) {
	assert.Equal(t, "← Better (Higher)", BetterLabel(true))
	assert.Equal(t, "← Better (Lower)", BetterLabel(false))
}

func TestSymmetricRange(t *testing.T) {
	assert.Equal(t, 0.4, symmetricRange([]float64{-0.4, 0.1, 0.2}))
	assert.Equal(t, 1.0, symmetricRange([]float64{0, 0}))
}

func TestNew(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	r, err := New([]string{"png"}, fs)
	require.NoError(t, err)
	assert.IsType(t, &PlotRenderer{}, r)

	r, err = New([]string{"png", "HTML"}, fs)
	require.NoError(t, err)
	assert.Len(t, r.(MultiRenderer), 2)

	_, err = New([]string{"svg"}, fs)
	assert.Error(t, err)
	_, err = New(nil, fs)
	assert.Error(t, err)
}

type recordingRenderer struct {
	calls []string
}

func (r *recordingRenderer) Distribution(base string, _ Distribution) ([]string, error) {
	r.calls = append(r.calls, "distribution")
	return []string{base + ".a"}, nil
}

func (r *recordingRenderer) Strip(base string, _ Distribution) ([]string, error) {
	r.calls = append(r.calls, "strip")
	return []string{base + ".a"}, nil
}

func (r *recordingRenderer) Traces(base string, _ Traces) ([]string, error) {
	r.calls = append(r.calls, "traces")
	return []string{base + ".a"}, nil
}

func (r *recordingRenderer) TrackMap(base string, _ TrackMap) ([]string, error) {
	r.calls = append(r.calls, "map")
	return []string{base + ".a"}, nil
}

func TestMultiRenderer(t *testing.T) {
	a, b := &recordingRenderer{}, &recordingRenderer{}
	m := MultiRenderer{a, b}

	paths, err := m.Distribution("out/x", Distribution{})
	require.NoError(t, err)
	assert.Equal(t, []string{"out/x.a", "out/x.a"}, paths)

	_, _ = m.Strip("s", Distribution{})
	_, _ = m.Traces("t", Traces{})
	_, _ = m.TrackMap("m", TrackMap{})
	assert.Equal(t, []string{"distribution", "strip", "traces", "map"}, a.calls)
	assert.Equal(t, a.calls, b.calls)
}
