package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/banshee-data/telemetry.report/internal/metrics"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// StraightAnalyzer measures top speed and acceleration on straights.
type StraightAnalyzer struct {
	Speed SpeedPhase
	Accel AccelPhase
}

// NewStraightAnalyzer returns a straight analyzer over src.
func NewStraightAnalyzer(src telemetry.Provider, o Options) *StraightAnalyzer {
	b := newBase(src, o)
	return &StraightAnalyzer{Speed: SpeedPhase{b}, Accel: AccelPhase{b}}
}

// SpeedPhase covers top speed between corners.
type SpeedPhase struct{ base }

// VMax is the highest speed strictly between corners from and to. When from
// lies past to the straight crosses the start/finish line. Higher is better.
func (s SpeedPhase) VMax(from, to int) (Result, error) {
	s.log.Info("Analyzing Top Speed", zap.Int("from_turn", from), zap.Int("to_turn", to))
	d1, err := s.corner(from)
	if err != nil {
		return Result{}, err
	}
	d2, err := s.corner(to)
	if err != nil {
		return Result{}, err
	}
	metric := fmt.Sprintf("Straight_VMax_T%d_T%d", from, to)
	t := metrics.Aggregate(s.src, s.laps(), metric, metrics.Between(d1, d2), metrics.MaxSpeed())
	return s.distribution(t, chart{
		title:          fmt.Sprintf("Top Speed - Turn %d to Turn %d", from, to),
		yLabel:         s.speedLabel("Top Speed"),
		suffix:         metric,
		higherIsBetter: true,
		speed:          true,
	})
}

// AccelPhase covers acceleration out of a corner.
type AccelPhase struct{ base }

// TimeToSpeed is the time in seconds to accelerate from v0 to v1 km/h within
// the configured distance after corner after. Lower is better.
func (a AccelPhase) TimeToSpeed(v0, v1 float64, after int) (Result, error) {
	a.log.Info("Analyzing Acceleration", zap.Int("turn", after), zap.Float64("from_kph", v0), zap.Float64("to_kph", v1))
	if v1 <= v0 {
		return Result{}, fmt.Errorf("target speed %.0f must exceed start speed %.0f", v1, v0)
	}
	apex, err := a.corner(after)
	if err != nil {
		return Result{}, err
	}
	metric := fmt.Sprintf("Straight_Accel_T%d", after)
	rule := metrics.AccelerationTime(v0, v1, metrics.Bounds{Min: a.cfg.GetAccelMin(), Max: a.cfg.GetAccelMax()})
	t := metrics.Aggregate(a.src, a.laps(), metric, metrics.After(apex, a.cfg.GetAccelWindow()), rule)
	return a.distribution(t, chart{
		title:  fmt.Sprintf("Acceleration %.0f-%.0f km/h - After Turn %d", v0, v1, after),
		yLabel: "Time (s)",
		suffix: metric,
	})
}
