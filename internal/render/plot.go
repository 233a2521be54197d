package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
)

// Default PNG sizes.
const (
	chartWidth  = 16 * vg.Inch
	chartHeight = 8 * vg.Inch
	mapSize     = 12 * vg.Inch
)

var (
	gridDashes = []vg.Length{vg.Points(4), vg.Points(4)}
	zeroGrey   = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	markerInk  = color.RGBA{A: 0xFF}
)

// PlotRenderer writes PNG charts with gonum/plot.
type PlotRenderer struct {
	FS fsutil.FileSystem
}

func newPlot(title, subtitle, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	if subtitle != "" {
		p.Title.Text += "\n" + subtitle
	}
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = gridDashes
	p.Add(grid)
	return p
}

func (r *PlotRenderer) save(p *plot.Plot, w, h vg.Length, base string) ([]string, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	path := base + ".png"
	f, err := r.FS.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", path, err)
	}
	return []string{path}, nil
}

func (r *PlotRenderer) distributionPlot(c Distribution) (*plot.Plot, float64) {
	p := newPlot(c.Title, c.Subtitle, "Driver", c.YLabel)
	labels := make([]string, len(c.Groups))
	top := math.Inf(-1)
	for i, g := range c.Groups {
		labels[i] = g.Label
		for _, v := range g.Values {
			top = math.Max(top, v)
		}
	}
	p.NominalX(labels...)
	if c.YMax > c.YMin {
		p.Y.Min, p.Y.Max = c.YMin, c.YMax
		top = c.YMax
	}
	return p, top
}

func addBetterLabel(p *plot.Plot, higherIsBetter bool, top float64) error {
	l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: -0.4, Y: top}},
		Labels: []string{BetterLabel(higherIsBetter)},
	})
	if err != nil {
		return err
	}
	p.Add(l)
	return nil
}

// Distribution draws one box per group filled with the group colour.
func (r *PlotRenderer) Distribution(base string, c Distribution) ([]string, error) {
	if len(c.Groups) == 0 {
		return nil, ErrEmptyChart
	}
	p, top := r.distributionPlot(c)
	for i, g := range c.Groups {
		if len(g.Values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("box plot %s: %w", g.Label, err)
		}
		box.FillColor = ParseColor(g.Color)
		p.Add(box)
	}
	if err := addBetterLabel(p, c.HigherIsBetter, top); err != nil {
		return nil, err
	}
	return r.save(p, chartWidth, chartHeight, base)
}

// Strip draws every value as a jittered point with a median marker per group.
func (r *PlotRenderer) Strip(base string, c Distribution) ([]string, error) {
	if len(c.Groups) == 0 {
		return nil, ErrEmptyChart
	}
	p, top := r.distributionPlot(c)
	medians := make(plotter.XYs, 0, len(c.Groups))
	for i, g := range c.Groups {
		if len(g.Values) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(g.Values))
		for j, v := range g.Values {
			pts[j] = plotter.XY{X: float64(i) + Jitter(j, 0.5), Y: v}
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("strip %s: %w", g.Label, err)
		}
		s.GlyphStyle.Color = ParseColor(g.Color)
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)

		stats, _ := ComputeBoxStats(g.Values)
		medians = append(medians, plotter.XY{X: float64(i), Y: stats.Median})
	}
	m, err := plotter.NewScatter(medians)
	if err != nil {
		return nil, fmt.Errorf("median markers: %w", err)
	}
	m.GlyphStyle.Color = markerInk
	m.GlyphStyle.Radius = vg.Points(4)
	m.GlyphStyle.Shape = draw.BoxGlyph{}
	p.Add(m)
	p.Legend.Add("median", m)

	if err := addBetterLabel(p, c.HigherIsBetter, top); err != nil {
		return nil, err
	}
	return r.save(p, chartWidth, chartHeight, base)
}

func xys(x, y []float64) plotter.XYs {
	n := min(len(x), len(y))
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}

// Traces draws each series as a line or scatter in its colour.
func (r *PlotRenderer) Traces(base string, c Traces) ([]string, error) {
	if len(c.Series) == 0 {
		return nil, ErrEmptyChart
	}
	p := newPlot(c.Title, c.Subtitle, c.XLabel, c.YLabel)
	p.Legend.Top = true
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if c.Shade != nil {
		if err := addShade(p, c.Series[0], *c.Shade); err != nil {
			return nil, err
		}
	}

	for _, s := range c.Series {
		pts := xys(s.X, s.Y)
		if len(pts) == 0 {
			continue
		}
		col := ParseColor(s.Color)
		switch s.Style {
		case Points:
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("series %s: %w", s.Label, err)
			}
			sc.GlyphStyle.Color = col
			sc.GlyphStyle.Radius = vg.Points(2)
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(sc)
			if s.Label != "" {
				p.Legend.Add(s.Label, sc)
			}
		default:
			l, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("series %s: %w", s.Label, err)
			}
			l.LineStyle.Color = col
			l.LineStyle.Width = vg.Points(1.5)
			if s.Dashed {
				l.LineStyle.Dashes = gridDashes
			}
			p.Add(l)
			if s.Label != "" {
				p.Legend.Add(s.Label, l)
			}
		}
	}

	if c.ZeroLine {
		zero := plotter.NewFunction(func(float64) float64 { return 0 })
		zero.Color = zeroGrey
		zero.Dashes = gridDashes
		p.Add(zero)
	}

	h := chartHeight
	if c.Height > 0 {
		h = vg.Length(c.Height) * vg.Inch
	}
	return r.save(p, chartWidth, h, base)
}

// addShade fills each contiguous run of the series above or below zero.
func addShade(p *plot.Plot, s Series, sh Shade) error {
	pts := xys(s.X, s.Y)
	above, below := ParseColor(sh.AboveColor), ParseColor(sh.BelowColor)
	above.A, below.A = 0x80, 0x80

	labelled := map[int]bool{}
	for _, run := range signRuns(pts) {
		if run.sign == 0 || len(run.pts) < 2 {
			continue
		}
		ring := append(plotter.XYs{}, run.pts...)
		ring = append(ring, plotter.XY{X: run.pts[len(run.pts)-1].X, Y: 0}, plotter.XY{X: run.pts[0].X, Y: 0})
		poly, err := plotter.NewPolygon(ring)
		if err != nil {
			return fmt.Errorf("shade: %w", err)
		}
		poly.LineStyle.Width = 0
		label := sh.AboveLabel
		poly.Color = above
		if run.sign < 0 {
			label = sh.BelowLabel
			poly.Color = below
		}
		p.Add(poly)
		if !labelled[run.sign] && label != "" {
			p.Legend.Add(label, poly)
			labelled[run.sign] = true
		}
	}
	return nil
}

type signRun struct {
	sign int
	pts  plotter.XYs
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func signRuns(pts plotter.XYs) []signRun {
	var runs []signRun
	for _, pt := range pts {
		s := sign(pt.Y)
		if len(runs) == 0 || runs[len(runs)-1].sign != s {
			runs = append(runs, signRun{sign: s})
		}
		last := &runs[len(runs)-1]
		last.pts = append(last.pts, pt)
	}
	return runs
}

// TrackMap draws the outline as short segments coloured on a green-red
// diverging scale symmetric around zero.
func (r *PlotRenderer) TrackMap(base string, c TrackMap) ([]string, error) {
	pts := xys(c.X, c.Y)
	if len(pts) < 2 {
		return nil, ErrEmptyChart
	}

	p := plot.New()
	p.Title.Text = c.Title
	if c.Subtitle != "" {
		p.Title.Text += "\n" + c.Subtitle
	}
	if c.Legend != "" {
		p.Title.Text += "\n" + c.Legend
	}
	p.HideAxes()

	m := symmetricRange(c.Values)
	cm := moreland.SmoothGreenRed()
	cm.SetMin(-m)
	cm.SetMax(m)

	for i := 0; i+1 < len(pts) && i < len(c.Values); i++ {
		// The map runs green to red, so positive values are flipped onto the
		// green end.
		v := math.Max(-m, math.Min(m, c.Values[i]))
		col, err := cm.At(-v)
		if err != nil {
			return nil, fmt.Errorf("colour segment %d: %w", i, err)
		}
		seg, err := plotter.NewLine(plotter.XYs{pts[i], pts[i+1]})
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		seg.LineStyle.Color = col
		seg.LineStyle.Width = vg.Points(5)
		p.Add(seg)
	}

	// Equal aspect: both axes span the same padded range.
	xmin, xmax, ymin, ymax := plotter.XYRange(pts)
	span := math.Max(xmax-xmin, ymax-ymin)/2 + 200
	cx, cy := (xmin+xmax)/2, (ymin+ymax)/2
	p.X.Min, p.X.Max = cx-span, cx+span
	p.Y.Min, p.Y.Max = cy-span, cy+span

	return r.save(p, mapSize, mapSize, base)
}
