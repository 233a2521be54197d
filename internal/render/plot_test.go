package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleDistribution() Distribution {
	return Distribution{
		Title:          "Braking Distance - Turn 1",
		Subtitle:       "2024 Test Grand Prix",
		YLabel:         "Braking Distance (m)",
		HigherIsBetter: false,
		Groups: []Group{
			{Label: "VER", Color: "#3671C6", Values: []float64{40, 42, 41, 39}},
			{Label: "LEC", Color: "#E8002D", Values: []float64{44, 45}},
			{Label: "NOR", Color: "", Values: []float64{47}},
		},
	}
}

func assertPNG(t *testing.T, fs *fsutil.MemoryFileSystem, paths []string, want string) {
	t.Helper()
	require.Equal(t, []string{want}, paths)
	data, err := fs.ReadFile(want)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "not a PNG")
}

func TestPlotRendererDistribution(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	r := &PlotRenderer{FS: fs}

	paths, err := r.Distribution("out/Test2024_Q_T1_Braking", sampleDistribution())
	require.NoError(t, err)
	assertPNG(t, fs, paths, "out/Test2024_Q_T1_Braking.png")
}

func TestPlotRendererStrip(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	r := &PlotRenderer{FS: fs}

	c := sampleDistribution()
	c.YMin, c.YMax = -0.5, 5
	paths, err := r.Strip("delta", c)
	require.NoError(t, err)
	assertPNG(t, fs, paths, "delta.png")
}

func TestPlotRendererTraces(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	r := &PlotRenderer{FS: fs}

	c := Traces{
		Title:  "Time Delta",
		XLabel: "Distance (m)",
		YLabel: "Gap (s)",
		Series: []Series{
			{Label: "delta", Color: "#FFFFFF", X: []float64{0, 100, 200, 300, 400}, Y: []float64{0, 0.1, -0.05, -0.1, 0.2}},
			{Label: "laps", Color: "#E8002D", X: []float64{1, 2, 3}, Y: []float64{90, 90.4, 90.9}, Style: Points},
			{Label: "trend", Color: "#E8002D", X: []float64{1, 3}, Y: []float64{90, 91}, Dashed: true},
		},
		ZeroLine: true,
		Shade:    &Shade{AboveColor: "#E8002D", AboveLabel: "LEC losing time", BelowColor: "#3671C6", BelowLabel: "VER losing time"},
		Height:   5,
	}
	paths, err := r.Traces("trace", c)
	require.NoError(t, err)
	assertPNG(t, fs, paths, "trace.png")
}

func TestPlotRendererTrackMap(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	r := &PlotRenderer{FS: fs}

	c := TrackMap{
		Title:  "Gain Map",
		X:      []float64{0, 100, 100, 0, 0},
		Y:      []float64{0, 0, 100, 100, 0},
		Values: []float64{-0.1, 0, 0.05, 0.1, 0},
	}
	paths, err := r.TrackMap("map", c)
	require.NoError(t, err)
	assertPNG(t, fs, paths, "map.png")
}

func TestPlotRendererEmpty(t *testing.T) {
	r := &PlotRenderer{FS: fsutil.NewMemoryFileSystem()}

	_, err := r.Distribution("x", Distribution{})
	assert.ErrorIs(t, err, ErrEmptyChart)
	_, err = r.Traces("x", Traces{})
	assert.ErrorIs(t, err, ErrEmptyChart)
	_, err = r.TrackMap("x", TrackMap{X: []float64{1}, Y: []float64{1}})
	assert.ErrorIs(t, err, ErrEmptyChart)
}

func TestSignRuns(t *testing.T) {
	runs := signRuns(xys([]float64{0, 1, 2, 3, 4}, []float64{0.1, 0.2, -0.1, 0, 0.3}))
	require.Len(t, runs, 4)
	assert.Equal(t, 1, runs[0].sign)
	assert.Len(t, runs[0].pts, 2)
	assert.Equal(t, -1, runs[1].sign)
	assert.Equal(t, 0, runs[2].sign)
	assert.Equal(t, 1, runs[3].sign)
}
