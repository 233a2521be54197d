package analysis

import (
	"time"

	"github.com/banshee-data/telemetry.report/internal/config"
	"github.com/banshee-data/telemetry.report/internal/fsutil"
	"github.com/banshee-data/telemetry.report/internal/render"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/testutil"
)

var (
	ver = telemetry.Driver{ID: "1", Code: "VER", Team: "Red Bull Racing"}
	lec = telemetry.Driver{ID: "16", Code: "LEC", Team: "Ferrari"}
	nor = telemetry.Driver{ID: "4", Code: "NOR", Team: "McLaren"}
)

const (
	verColor = "#3671C6"
	lecColor = "#E8002D"
)

// call is one renderer invocation.
type call struct {
	kind   string
	base   string
	dist   render.Distribution
	traces render.Traces
	track  render.TrackMap
}

// fakeRenderer records charts instead of drawing them.
type fakeRenderer struct {
	calls []call
}

func (f *fakeRenderer) Distribution(base string, c render.Distribution) ([]string, error) {
	f.calls = append(f.calls, call{kind: "distribution", base: base, dist: c})
	return []string{base + ".png"}, nil
}

func (f *fakeRenderer) Strip(base string, c render.Distribution) ([]string, error) {
	f.calls = append(f.calls, call{kind: "strip", base: base, dist: c})
	return []string{base + ".png"}, nil
}

func (f *fakeRenderer) Traces(base string, c render.Traces) ([]string, error) {
	f.calls = append(f.calls, call{kind: "traces", base: base, traces: c})
	return []string{base + ".png"}, nil
}

func (f *fakeRenderer) TrackMap(base string, c render.TrackMap) ([]string, error) {
	f.calls = append(f.calls, call{kind: "map", base: base, track: c})
	return []string{base + ".png"}, nil
}

func testOptions() (Options, *fakeRenderer, *fsutil.MemoryFileSystem) {
	fs := fsutil.NewMemoryFileSystem()
	rec := &fakeRenderer{}
	return Options{Config: config.Default(), FS: fs, Renderer: rec, OutputDir: "out"}, rec, fs
}

// addTimedLap registers a lap with an explicit lap time.
func addTimedLap(s *telemetry.MemorySession, d telemetry.Driver, number int, secs float64, samples []telemetry.Sample) {
	s.AddLap(telemetry.Lap{Driver: d.ID, Number: number, Team: d.Team, LapTime: testutil.Seconds(secs), Compound: "SOFT"}, samples)
}

// slowed returns a copy of samples with every timestamp stretched by factor.
func slowed(samples []telemetry.Sample, factor float64) []telemetry.Sample {
	out := make([]telemetry.Sample, len(samples))
	copy(out, samples)
	for i := range out {
		out[i].Time = time.Duration(float64(out[i].Time) * factor)
	}
	return out
}
