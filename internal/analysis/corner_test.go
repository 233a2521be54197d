package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/banshee-data/telemetry.report/internal/config"
	"github.com/banshee-data/telemetry.report/internal/metrics"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/testutil"
	"github.com/banshee-data/telemetry.report/internal/units"
)

// apexAt slows the car to v at distance d, 200 km/h elsewhere.
func apexAt(d, v float64) testutil.Fill {
	return func(x float64, s *telemetry.Sample) {
		if x == d {
			s.Speed = v
		}
	}
}

func cornerSession() *telemetry.MemorySession {
	s := testutil.Session(
		telemetry.Corner{Number: 1, Distance: 500},
		telemetry.Corner{Number: 2, Distance: 1500},
	)
	testutil.AddDriverLaps(s, ver,
		testutil.Lap(2000, 5, testutil.Chain(testutil.BrakeBetween(400, 440), apexAt(500, 95))),
		testutil.Lap(2000, 5, testutil.Chain(testutil.BrakeBetween(410, 440), apexAt(500, 97))),
	)
	testutil.AddDriverLaps(s, lec,
		testutil.Lap(2000, 5, testutil.Chain(testutil.BrakeBetween(420, 440), apexAt(500, 101))),
		testutil.Lap(2000, 5, testutil.Chain(testutil.BrakeBetween(400, 405), apexAt(500, 99))),
	)
	return s
}

func TestCornerProgressLogFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	opts, _, _ := testOptions()
	opts.Logger = zap.New(core)
	c := NewCornerAnalyzer(cornerSession(), opts)

	_, err := c.Entry.BrakingDistance(1)
	require.NoError(t, err)
	_, err = c.Exit.ExitSpeed(2, 50)
	require.NoError(t, err)

	braking := logs.FilterMessage("Analyzing Braking Distance").All()
	require.Len(t, braking, 1)
	assert.Equal(t, map[string]interface{}{"turn": int64(1)}, braking[0].ContextMap())

	exit := logs.FilterMessage("Analyzing Exit Speed").All()
	require.Len(t, exit, 1)
	assert.Equal(t, map[string]interface{}{"turn": int64(2), "after_m": 50.0}, exit[0].ContextMap())
}

func TestBrakingDistance(t *testing.T) {
	opts, rec, _ := testOptions()
	c := NewCornerAnalyzer(cornerSession(), opts)

	res, err := c.Entry.BrakingDistance(1)
	require.NoError(t, err)

	assert.Equal(t, "T1_Braking", res.Table.Metric)
	assert.Equal(t, []float64{40, 30}, res.Table.Values("VER"))
	assert.Equal(t, []float64{20}, res.Table.Values("LEC"))
	require.Len(t, res.Table.Skipped, 1)
	assert.ErrorIs(t, res.Table.Skipped[0].Err, metrics.ErrImplausible)

	require.Len(t, res.Ranking, 2)
	assert.Equal(t, "LEC", res.Ranking[0].Driver)
	assert.Equal(t, 35.0, res.Ranking[1].Median)

	require.Len(t, rec.calls, 1)
	got := rec.calls[0]
	assert.Equal(t, "distribution", got.kind)
	assert.Equal(t, "out/TestGrandPrix2024_Q_T1_Braking", got.base)
	assert.False(t, got.dist.HigherIsBetter)
	assert.Equal(t, "2024 Test Grand Prix", got.dist.Subtitle)
	require.Len(t, got.dist.Groups, 2)
	assert.Equal(t, lecColor, got.dist.Groups[0].Color)
	assert.Equal(t, verColor, got.dist.Groups[1].Color)
	assert.Equal(t, []string{"out/TestGrandPrix2024_Q_T1_Braking.png"}, res.Paths)
}

func TestUnknownCornerWritesNothing(t *testing.T) {
	opts, rec, fs := testOptions()
	c := NewCornerAnalyzer(cornerSession(), opts)

	queries := map[string]func() (Result, error){
		"braking":  func() (Result, error) { return c.Entry.BrakingDistance(99) },
		"apex":     func() (Result, error) { return c.Entry.ApexSpeed(99) },
		"exit":     func() (Result, error) { return c.Exit.ExitSpeed(99, 0) },
		"throttle": func() (Result, error) { return c.Exit.ThrottleCommit(99) },
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			_, err := q()
			assert.ErrorIs(t, err, metrics.ErrCornerNotFound)
		})
	}
	assert.Empty(t, rec.calls)
	assert.False(t, fs.Exists("out"))
}

func TestNoDataIsReported(t *testing.T) {
	opts, rec, _ := testOptions()
	s := testutil.Session(telemetry.Corner{Number: 1, Distance: 500})
	testutil.AddDriverLaps(s, ver, testutil.Lap(1000, 5, nil))

	res, err := NewCornerAnalyzer(s, opts).Entry.BrakingDistance(1)
	assert.ErrorIs(t, err, ErrNoData)
	assert.True(t, res.Table.Empty())
	assert.Len(t, res.Table.Skipped, 1)
	assert.Empty(t, rec.calls)
}

func TestBrakingDistanceIsIdempotent(t *testing.T) {
	opts, _, _ := testOptions()
	c := NewCornerAnalyzer(cornerSession(), opts)

	first, err := c.Entry.BrakingDistance(1)
	require.NoError(t, err)
	second, err := c.Entry.BrakingDistance(1)
	require.NoError(t, err)

	opt := cmp.Comparer(func(a, b error) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Error() == b.Error()
	})
	if diff := cmp.Diff(first, second, opt); diff != "" {
		t.Errorf("results differ between runs:\n%s", diff)
	}
}

func TestApexSpeed(t *testing.T) {
	opts, rec, _ := testOptions()
	opts.Config.SpeedUnits = ptr(units.MPH)
	c := NewCornerAnalyzer(cornerSession(), opts)

	res, err := c.Entry.ApexSpeed(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{95, 97}, res.Table.Values("VER"))
	assert.Equal(t, []float64{101, 99}, res.Table.Values("LEC"))
	assert.Equal(t, "LEC", res.Ranking[0].Driver)

	require.Len(t, rec.calls, 1)
	d := rec.calls[0].dist
	assert.True(t, d.HigherIsBetter)
	assert.Equal(t, "Minimum Speed (mph)", d.YLabel)
	assert.InDelta(t, units.ConvertSpeed(101, units.MPH), d.Groups[0].Values[0], 1e-9)
}

func TestExitSpeedAndThrottleCommit(t *testing.T) {
	s := testutil.Session(telemetry.Corner{Number: 3, Distance: 500})
	testutil.AddDriverLaps(s, ver, testutil.Lap(1000, 5, func(d float64, smp *telemetry.Sample) {
		smp.Speed = d / 4
		if d >= 450 && d < 560 {
			smp.Throttle = 30
		}
	}))
	opts, rec, _ := testOptions()
	c := NewCornerAnalyzer(s, opts)

	res, err := c.Exit.ExitSpeed(3, 0)
	require.NoError(t, err)
	// [590, 610) holds 590..605, speeds 147.5..151.25.
	assert.InDelta(t, 149.375, res.Table.Observations[0].Value, 1e-9)
	assert.Equal(t, "out/TestGrandPrix2024_Q_T3_ExitSpeed", rec.calls[0].base)

	res, err = c.Exit.ThrottleCommit(3)
	require.NoError(t, err)
	assert.InDelta(t, 60, res.Table.Observations[0].Value, 1e-9)
	assert.False(t, rec.calls[1].dist.HigherIsBetter)
}

func TestAllCornersApexSpeed(t *testing.T) {
	corners := []telemetry.Corner{
		{Number: 1, Distance: 200}, {Number: 2, Distance: 400}, {Number: 3, Distance: 600},
		{Number: 4, Distance: 800}, {Number: 5, Distance: 1000},
	}
	s := testutil.Session(corners...)
	lap := testutil.Lap(1200, 5, func(d float64, smp *telemetry.Sample) {
		switch d {
		case 200:
			smp.Speed = 100
		case 400:
			smp.Speed = 120
		case 600:
			smp.Speed = 140
		}
	})
	// Corners 4 and 5 have no car data around the apex.
	var kept []telemetry.Sample
	for _, smp := range lap {
		if (smp.Distance > 760 && smp.Distance < 840) || (smp.Distance > 960 && smp.Distance < 1040) {
			continue
		}
		kept = append(kept, smp)
	}
	testutil.AddDriverLaps(s, ver, kept)

	opts, rec, _ := testOptions()
	res, err := NewCornerAnalyzer(s, opts).All.ApexSpeed()
	require.NoError(t, err)
	require.Len(t, res.Table.Observations, 1)
	assert.InDelta(t, 120, res.Table.Observations[0].Value, 1e-9)
	assert.Equal(t, "AllCorners_ApexSpeed", res.Table.Metric)
	assert.Equal(t, "out/TestGrandPrix2024_Q_AllCorners_ApexSpeed", rec.calls[0].base)
}

func TestAllCornersVariants(t *testing.T) {
	opts, _, _ := testOptions()
	c := NewCornerAnalyzer(cornerSession(), opts)

	res, err := c.All.BrakingDistance()
	require.NoError(t, err)
	// Corner 2 has no braking, so each lap carries corner 1 alone.
	assert.Equal(t, []float64{40, 30}, res.Table.Values("VER"))

	_, err = c.All.ExitSpeed(0)
	require.NoError(t, err)
	// Full throttle from the apex onwards.
	res, err = c.All.ThrottleCommit()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, res.Table.Values("VER"))
}

func TestAllCornersWithoutCorners(t *testing.T) {
	opts, rec, _ := testOptions()
	s := testutil.Session()
	testutil.AddDriverLaps(s, ver, testutil.Lap(1000, 10, nil))

	_, err := NewCornerAnalyzer(s, opts).All.ApexSpeed()
	assert.ErrorIs(t, err, metrics.ErrCornerNotFound)
	assert.Empty(t, rec.calls)
}

func TestDefaultsWithoutOptions(t *testing.T) {
	c := NewCornerAnalyzer(cornerSession(), Options{Renderer: &fakeRenderer{}, FS: nil, Config: &config.Config{}})
	assert.NotNil(t, c.Entry.log)
	assert.Equal(t, config.DefaultOutputDir, c.Entry.outDir)
	assert.Equal(t, lecColor, c.Entry.colors.Lookup("Ferrari"))
}

func ptr[T any](v T) *T { return &v }
