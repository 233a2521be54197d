package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
)

func readHTML(t *testing.T, fs *fsutil.MemoryFileSystem, paths []string, want string) string {
	t.Helper()
	require.Equal(t, []string{want}, paths)
	data, err := fs.ReadFile(want)
	require.NoError(t, err)
	return string(data)
}

func TestEChartsRendererDistribution(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	r := &EChartsRenderer{FS: fs}

	paths, err := r.Distribution("out/braking", sampleDistribution())
	require.NoError(t, err)
	html := readHTML(t, fs, paths, "out/braking.html")
	assert.Contains(t, html, "boxplot")
	assert.Contains(t, html, "VER")
	assert.Contains(t, html, "#E8002D")
}

func TestEChartsRendererStrip(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	r := &EChartsRenderer{FS: fs}

	paths, err := r.Strip("delta", sampleDistribution())
	require.NoError(t, err)
	html := readHTML(t, fs, paths, "delta.html")
	assert.Contains(t, html, "scatter")
	assert.Contains(t, html, "median")
}

func TestEChartsRendererTraces(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	r := &EChartsRenderer{FS: fs}

	c := Traces{
		Title:  "Speed",
		XLabel: "Distance (m)",
		Series: []Series{{Label: "VER", Color: "#3671C6", X: []float64{0, 10}, Y: []float64{250, 260}}},
	}
	paths, err := r.Traces("speed", c)
	require.NoError(t, err)
	html := readHTML(t, fs, paths, "speed.html")
	assert.Contains(t, html, "line")
	assert.Contains(t, html, "Distance (m)")
}

func TestEChartsRendererTrackMap(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	r := &EChartsRenderer{FS: fs}

	c := TrackMap{Title: "Gain", X: []float64{0, 1, 2}, Y: []float64{0, 1, 0}, Values: []float64{0.1, -0.2, 0}}
	paths, err := r.TrackMap("gain", c)
	require.NoError(t, err)
	html := readHTML(t, fs, paths, "gain.html")
	assert.Contains(t, html, "visualMap")

	_, err = r.TrackMap("gain", TrackMap{})
	assert.ErrorIs(t, err, ErrEmptyChart)
}
