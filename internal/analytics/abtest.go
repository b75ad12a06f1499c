package analytics

import (
	"fmt"
	"math"
)

const significanceT = 1.96

// ABTest compares the values of control and variant points with a
// simplified two-sample t statistic. Either side empty yields a result
// carrying only Error.
func (s *Service) ABTest(name string, control, variant []Point) ABTestAnalysis {
	return abTest(name, pointValues(control), pointValues(variant))
}

func pointValues(pts []Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Value
	}
	return out
}

func abTest(name string, control, variant []float64) ABTestAnalysis {
	if len(control) == 0 || len(variant) == 0 {
		return ABTestAnalysis{
			TestName: name,
			Error:    fmt.Errorf("%w for A/B test analysis", ErrInsufficientData).Error(),
		}
	}

	c, v := abGroup(control), abGroup(variant)

	improvement := 0.0
	if c.Mean != 0 {
		improvement = (v.Mean - c.Mean) / c.Mean * 100
	}

	diff := math.Abs(v.Mean - c.Mean)
	pooled := math.Sqrt((c.StdDev*c.StdDev + v.StdDev*v.StdDev) / 2)
	t, effect := 0.0, 0.0
	if pooled > 0 {
		n := float64(min(c.SampleSize, v.SampleSize))
		t = diff / (pooled * math.Sqrt(2/n))
		effect = diff / pooled
	}
	significant := t > significanceT

	rec := "Keep control"
	if significant && improvement > 0 {
		rec = "Deploy variant"
	}

	return ABTestAnalysis{
		TestName: name,
		Control:  c,
		Variant:  v,
		Results: ABResults{
			ImprovementPercentage: improvement,
			IsSignificant:         significant,
			ConfidenceLevel:       math.Min(99.9, math.Max(50, 50+t*10)),
			Recommendation:        rec,
		},
		Statistics: ABStatistics{
			TStatistic:   t,
			PooledStdDev: pooled,
			EffectSize:   effect,
		},
	}
}

func abGroup(vs []float64) ABGroup {
	lo, hi := minMax(vs)
	return ABGroup{
		SampleSize: len(vs),
		Mean:       mean(vs),
		StdDev:     sampleStdev(vs),
		Min:        lo,
		Max:        hi,
	}
}
