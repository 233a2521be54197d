package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
)

// gainColors runs red (negative) to green (positive) through a neutral midpoint.
var gainColors = []string{"#d73027", "#fc8d59", "#fee08b", "#d9ef8b", "#91cf60", "#1a9850"}

// EChartsRenderer writes interactive HTML charts with go-echarts.
type EChartsRenderer struct {
	FS fsutil.FileSystem
}

type renderable interface {
	Render(w io.Writer) error
}

func (r *EChartsRenderer) save(c renderable, base string) ([]string, error) {
	path := base + ".html"
	f, err := r.FS.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.Render(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", path, err)
	}
	return []string{path}, nil
}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"})
}

func yAxis(c Distribution) opts.YAxis {
	y := opts.YAxis{Name: c.YLabel, NameLocation: "middle", NameGap: 45, Scale: opts.Bool(true)}
	if c.YMax > c.YMin {
		y.Min, y.Max = c.YMin, c.YMax
	}
	return y
}

func groupLabels(groups []Group) []string {
	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Label
	}
	return labels
}

// Distribution draws a box plot per group. Each box is its own series so it
// keeps the group colour.
func (r *EChartsRenderer) Distribution(base string, c Distribution) ([]string, error) {
	if len(c.Groups) == 0 {
		return nil, ErrEmptyChart
	}
	bp := charts.NewBoxPlot()
	bp.SetGlobalOptions(
		initOpts(c.Title),
		charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: subtitle(c.Subtitle, BetterLabel(c.HigherIsBetter))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Driver"}),
		charts.WithYAxisOpts(yAxis(c)),
	)
	bp.SetXAxis(groupLabels(c.Groups))

	for i, g := range c.Groups {
		stats, ok := ComputeBoxStats(g.Values)
		if !ok {
			continue
		}
		data := make([]opts.BoxPlotData, len(c.Groups))
		for j := range data {
			data[j] = opts.BoxPlotData{Name: c.Groups[j].Label}
		}
		data[i].Value = []float64{stats.Low, stats.Q1, stats.Median, stats.Q3, stats.High}
		bp.AddSeries(g.Label, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: g.Color, BorderColor: "#333333"}))
	}
	return r.save(bp, base)
}

// Strip draws every value as a point in the group colour.
func (r *EChartsRenderer) Strip(base string, c Distribution) ([]string, error) {
	if len(c.Groups) == 0 {
		return nil, ErrEmptyChart
	}
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		initOpts(c.Title),
		charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: subtitle(c.Subtitle, BetterLabel(c.HigherIsBetter))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Driver", Type: "category", Data: groupLabels(c.Groups)}),
		charts.WithYAxisOpts(yAxis(c)),
	)

	medians := make([]opts.ScatterData, 0, len(c.Groups))
	for _, g := range c.Groups {
		data := make([]opts.ScatterData, len(g.Values))
		for j, v := range g.Values {
			data[j] = opts.ScatterData{Value: []interface{}{g.Label, v}}
		}
		sc.AddSeries(g.Label, data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: g.Color}))
		if stats, ok := ComputeBoxStats(g.Values); ok {
			medians = append(medians, opts.ScatterData{Value: []interface{}{g.Label, stats.Median}, Symbol: "diamond"})
		}
	}
	sc.AddSeries("median", medians,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#000000"}))
	return r.save(sc, base)
}

// Traces draws each series on a numeric x axis.
func (r *EChartsRenderer) Traces(base string, c Traces) ([]string, error) {
	if len(c.Series) == 0 {
		return nil, ErrEmptyChart
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(c.Title),
		charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: c.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: c.XLabel, Type: "value", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: c.YLabel, NameLocation: "middle", NameGap: 45, Scale: opts.Bool(true)}),
	)

	for _, s := range c.Series {
		pts := xys(s.X, s.Y)
		data := make([]opts.LineData, len(pts))
		for i, pt := range pts {
			data[i] = opts.LineData{Value: []interface{}{pt.X, pt.Y}}
		}
		style := opts.LineStyle{Color: s.Color, Width: 2}
		if s.Dashed {
			style.Type = "dashed"
		}
		chartOpts := opts.LineChart{ShowSymbol: opts.Bool(false)}
		if s.Style == Points {
			style.Width = 0
			chartOpts.ShowSymbol = opts.Bool(true)
		}
		line.AddSeries(s.Label, data,
			charts.WithLineChartOpts(chartOpts),
			charts.WithLineStyleOpts(style),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	return r.save(line, base)
}

// TrackMap draws the outline as points coloured by value.
func (r *EChartsRenderer) TrackMap(base string, c TrackMap) ([]string, error) {
	pts := xys(c.X, c.Y)
	if len(pts) < 2 {
		return nil, ErrEmptyChart
	}
	m := symmetricRange(c.Values)

	data := make([]opts.ScatterData, 0, len(pts))
	for i, pt := range pts {
		if i >= len(c.Values) {
			break
		}
		data = append(data, opts.ScatterData{Value: []interface{}{pt.X, pt.Y, c.Values[i]}})
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.Title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: subtitle(c.Subtitle, c.Legend)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(false), Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(false), Scale: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(-m),
			Max:        float32(m),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: gainColors},
		}),
	)
	sc.AddSeries("delta", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	return r.save(sc, base)
}

func subtitle(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p
	}
	return out
}
