package metrics

import (
	"sort"

	"github.com/samber/lo"
)

// DriverSummary is the per-driver distribution of a metric.
type DriverSummary struct {
	Driver string
	Team   string
	Median float64
	Values []float64
}

// Rank groups observations by driver and orders drivers by median, best
// first. Ties are ordered by driver code.
func Rank(t Table, higherIsBetter bool) []DriverSummary {
	groups := lo.GroupBy(t.Observations, func(o Observation) string { return o.Driver })

	out := make([]DriverSummary, 0, len(groups))
	for driver, obs := range groups {
		vals := lo.Map(obs, func(o Observation, _ int) float64 { return o.Value })
		out = append(out, DriverSummary{
			Driver: driver,
			Team:   obs[0].Team,
			Median: Median(vals),
			Values: vals,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Median != out[j].Median {
			if higherIsBetter {
				return out[i].Median > out[j].Median
			}
			return out[i].Median < out[j].Median
		}
		return out[i].Driver < out[j].Driver
	})
	return out
}

// Median returns the middle value, averaging the two middle values of an
// even-length input. It returns 0 for no values.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	c := append([]float64(nil), vals...)
	sort.Float64s(c)
	mid := len(c) / 2
	if len(c)%2 == 0 {
		return (c[mid-1] + c[mid]) / 2
	}
	return c[mid]
}
