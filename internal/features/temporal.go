package features

import (
	"gonum.org/v1/gonum/stat"

	"cascadeforecast/internal/cascade"
)

// TemporalFeatures computes inter-arrival statistics over the prefix events.
// With fewer than two events every field is zero.
func TemporalFeatures(c *cascade.Cascade) Temporal {
	n := c.Len()
	if n < 2 {
		return Temporal{}
	}
	times := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = float64(c.EventAt(i).ElapsedSeconds)
	}
	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = times[i] - times[i-1]
	}

	var t Temporal
	t.TimeToK = times[n-1]
	t.MeanInterTime, t.VarInterTime = stat.PopMeanVariance(diffs, nil)
	if t.TimeToK > 0 {
		t.RetweetRate = float64(n) / t.TimeToK
	}

	half := n / 2
	if t.TimeToK > 0 {
		t.HalfLifeRatio = times[half-1] / t.TimeToK
	}
	if second := diffs[half:]; len(second) > 0 {
		first := stat.Mean(diffs[:half], nil)
		if m := stat.Mean(second, nil); m > 0 {
			t.SpeedChange = first / m
		}
	}
	return t
}
