// Package render draws analysis results as PNG plots (gonum/plot) and
// interactive HTML charts (go-echarts).
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
	"github.com/banshee-data/telemetry.report/internal/metrics"
)

// Group is the values of one category, usually one driver.
type Group struct {
	Label  string
	Color  string
	Values []float64
}

// Distribution is a per-driver box or strip chart. Groups are drawn in the
// given order.
type Distribution struct {
	Title          string
	Subtitle       string
	YLabel         string
	Groups         []Group
	HigherIsBetter bool
	// YMin and YMax clamp the value axis when YMax > YMin.
	YMin, YMax float64
}

// Style selects how a series is drawn.
type Style int

const (
	Line Style = iota
	Points
)

// Series is one x/y trace.
type Series struct {
	Label  string
	Color  string
	X, Y   []float64
	Style  Style
	Dashed bool
}

// Shade fills the area between the first series of a trace chart and zero.
type Shade struct {
	AboveColor string
	AboveLabel string
	BelowColor string
	BelowLabel string
}

// Traces is a line/scatter chart over a shared x axis.
type Traces struct {
	Title    string
	Subtitle string
	XLabel   string
	YLabel   string
	Series   []Series
	ZeroLine bool
	Shade    *Shade
	// Height in inches for PNG output; zero selects the default.
	Height float64
}

// TrackMap is a track outline coloured by a value per point, on a diverging
// scale centred on zero. Positive values are drawn green.
type TrackMap struct {
	Title    string
	Subtitle string
	Legend   string
	X, Y     []float64
	Values   []float64
}

// Renderer writes charts. base is the output path without extension; the
// written paths are returned.
type Renderer interface {
	Distribution(base string, c Distribution) ([]string, error)
	Strip(base string, c Distribution) ([]string, error)
	Traces(base string, c Traces) ([]string, error)
	TrackMap(base string, c TrackMap) ([]string, error)
}

// ErrEmptyChart is returned for a chart with nothing to draw.
var ErrEmptyChart = errors.New("empty chart")

// New returns a renderer for the given formats ("png", "html") writing to fs.
func New(formats []string, fs fsutil.FileSystem) (Renderer, error) {
	var rs MultiRenderer
	for _, f := range formats {
		switch strings.ToLower(f) {
		case "png":
			rs = append(rs, &PlotRenderer{FS: fs})
		case "html":
			rs = append(rs, &EChartsRenderer{FS: fs})
		default:
			return nil, fmt.Errorf("unknown output format %q", f)
		}
	}
	if len(rs) == 0 {
		return nil, errors.New("no output format")
	}
	if len(rs) == 1 {
		return rs[0], nil
	}
	return rs, nil
}

// MultiRenderer renders every chart with each of its renderers in turn.
type MultiRenderer []Renderer

func (m MultiRenderer) Distribution(base string, c Distribution) ([]string, error) {
	return m.each(func(r Renderer) ([]string, error) { return r.Distribution(base, c) })
}

func (m MultiRenderer) Strip(base string, c Distribution) ([]string, error) {
	return m.each(func(r Renderer) ([]string, error) { return r.Strip(base, c) })
}

func (m MultiRenderer) Traces(base string, c Traces) ([]string, error) {
	return m.each(func(r Renderer) ([]string, error) { return r.Traces(base, c) })
}

func (m MultiRenderer) TrackMap(base string, c TrackMap) ([]string, error) {
	return m.each(func(r Renderer) ([]string, error) { return r.TrackMap(base, c) })
}

func (m MultiRenderer) each(fn func(Renderer) ([]string, error)) ([]string, error) {
	var paths []string
	for _, r := range m {
		p, err := fn(r)
		paths = append(paths, p...)
		if err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// BetterLabel is the direction annotation of a distribution chart.
func BetterLabel(higherIsBetter bool) string {
	if higherIsBetter {
		return "← Better (Higher)"
	}
	return "← Better (Lower)"
}

// BoxStats summarises a group for a box plot. The median matches the
// ranking median. Whiskers reach the most
// extreme values within 1.5 IQR of the quartiles.
type BoxStats struct {
	Low, Q1, Median, Q3, High float64
	Outliers                  []float64
}

// ComputeBoxStats returns the box summary of vals.
func ComputeBoxStats(vals []float64) (BoxStats, bool) {
	if len(vals) == 0 {
		return BoxStats{}, false
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)

	b := BoxStats{
		Q1:     stat.Quantile(0.25, stat.Empirical, s, nil),
		Median: metrics.Median(s),
		Q3:     stat.Quantile(0.75, stat.Empirical, s, nil),
	}
	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.Low, b.High = math.Inf(1), math.Inf(-1)
	for _, v := range s {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.Low = math.Min(b.Low, v)
		b.High = math.Max(b.High, v)
	}
	return b, true
}

// Jitter returns a deterministic horizontal offset in [-width/2, width/2)
// for the i-th point of a strip.
func Jitter(i int, width float64) float64 {
	frac := float64((i*7919)%101) / 101
	return (frac - 0.5) * width
}

// ParseColor parses "#RRGGBB" or "#RGB". Anything else is mid grey.
func ParseColor(s string) color.RGBA {
	grey := color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return grey
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return grey
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

func symmetricRange(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if a := math.Abs(v); a > m && !math.IsInf(a, 0) {
			m = a
		}
	}
	if m == 0 {
		return 1
	}
	return m
}
