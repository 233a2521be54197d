package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/banshee-data/telemetry.report/internal/render"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// TrackAnalyzer draws spatial comparisons on the track outline.
type TrackAnalyzer struct {
	Gain GainPhase
}

// NewTrackAnalyzer returns a track analyzer over src.
func NewTrackAnalyzer(src telemetry.Provider, o Options) *TrackAnalyzer {
	return &TrackAnalyzer{Gain: GainPhase{newBase(src, o)}}
}

// GainPhase colours the track by time gained or lost.
type GainPhase struct{ base }

// Map draws ref's fastest lap outline coloured by the delta to comp: green
// where ref is faster, red where ref is slower.
func (g GainPhase) Map(ref, comp string) (Result, error) {
	g.log.Info("Generating Gain Map", zap.String("ref", ref), zap.String("comp", comp))
	ld, err := g.deltaBetween(ref, comp)
	if err != nil {
		return Result{}, err
	}
	refCode, compCode := driverCode(ld.ref), driverCode(ld.comp)

	n := len(ld.refData)
	x, y, dist := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, s := range ld.refData {
		x[i], y[i], dist[i] = s.X, s.Y, s.Distance
	}
	res := Result{Series: []render.Series{{Label: "delta", X: dist, Y: ld.delta}}}

	out, err := g.outputBase(fmt.Sprintf("Track_GainMap_%s_vs_%s", refCode, compCode))
	if err != nil {
		return res, err
	}
	res.Paths, err = g.renderer.TrackMap(out, render.TrackMap{
		Title:    fmt.Sprintf("%s - Gain Map", g.subtitle()),
		Subtitle: fmt.Sprintf("Reference: %s | Comparison: %s", refCode, compCode),
		Legend:   fmt.Sprintf("Time Delta (s): Green = %s Faster | Red = %s Slower", refCode, refCode),
		X:        x,
		Y:        y,
		Values:   ld.delta,
	})
	if err != nil {
		return res, fmt.Errorf("render gain map: %w", err)
	}
	return res, nil
}
