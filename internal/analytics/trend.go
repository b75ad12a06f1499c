package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Trend directions.
const (
	Increasing = "increasing"
	Decreasing = "decreasing"
	Stable     = "stable"
)

// Minimum sample sizes.
const (
	minForecastPoints    = 3
	minAnomalyPoints     = 5
	minSeasonalityPoints = 7
	minSeasonalityDays   = 3
	minForecastHorizon   = 3
	forecastConfidence   = 70
)

// PerformTrendAnalysis analyzes the points of name tracked within the last
// days. With no points in the window the result carries only Error.
func (s *Service) PerformTrendAnalysis(name string, days int) TrendAnalysis {
	end := s.now()
	start := end.AddDate(0, 0, -days)

	s.mu.RLock()
	var pts []Point
	for _, p := range s.store[name] {
		if inRange(p.Timestamp, start, end) {
			pts = append(pts, p)
		}
	}
	s.mu.RUnlock()

	if len(pts) == 0 {
		return TrendAnalysis{
			MetricName: name,
			PeriodDays: days,
			Error:      fmt.Errorf("%w %s", ErrNoData, name).Error(),
		}
	}

	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Timestamp.Before(pts[j].Timestamp) })
	values := make([]float64, len(pts))
	for i, p := range pts {
		values[i] = p.Value
	}

	avg, med, lo, hi := summarize(values)
	return TrendAnalysis{
		MetricName:     name,
		PeriodDays:     days,
		DataPoints:     len(values),
		StartValue:     values[0],
		EndValue:       values[len(values)-1],
		MinValue:       lo,
		MaxValue:       hi,
		AverageValue:   avg,
		MedianValue:    med,
		TrendDirection: trendDirection(values),
		Volatility:     volatility(values),
		GrowthRate:     growthRate(values),
		Seasonality:    seasonality(pts),
		Anomalies:      anomalies(values),
		Forecast:       forecast(values, max(minForecastHorizon, days)),
	}
}

// trendDirection compares the means of the first and second halves. A
// change beyond 5% either way is a trend.
func trendDirection(values []float64) string {
	if len(values) < 2 {
		return Stable
	}
	half := len(values) / 2
	first, second := mean(values[:half]), mean(values[half:])
	change := 0.0
	if first != 0 {
		change = (second - first) / first * 100
	}
	switch {
	case change > 5:
		return Increasing
	case change < -5:
		return Decreasing
	default:
		return Stable
	}
}

// volatility is the coefficient of variation as a percentage.
func volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	return popStdev(values) / m * 100
}

func growthRate(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	return (values[len(values)-1] - values[0]) / values[0] * 100
}

// seasonality groups values by weekday and flags a pattern when some
// weekday average deviates from the mean of weekday averages by over 20%.
func seasonality(pts []Point) Seasonality {
	if len(pts) < minSeasonalityPoints {
		return Seasonality{}
	}
	byDay := make(map[time.Weekday][]float64)
	for _, p := range pts {
		d := p.Timestamp.Weekday()
		byDay[d] = append(byDay[d], p.Value)
	}
	if len(byDay) < minSeasonalityDays {
		return Seasonality{}
	}

	averages := make(map[string]float64, len(byDay))
	var dayMeans []float64
	var peak, low time.Weekday
	first := true
	for d := time.Sunday; d <= time.Saturday; d++ {
		vs, ok := byDay[d]
		if !ok {
			continue
		}
		m := mean(vs)
		averages[d.String()] = m
		dayMeans = append(dayMeans, m)
		if first || m > averages[peak.String()] {
			peak = d
		}
		if first || m < averages[low.String()] {
			low = d
		}
		first = false
	}

	overall := mean(dayMeans)
	maxDev := 0.0
	for _, m := range dayMeans {
		maxDev = math.Max(maxDev, math.Abs(m-overall))
	}
	return Seasonality{
		Detected:    overall != 0 && maxDev/overall > 0.2,
		DayAverages: averages,
		PeakDay:     peak.String(),
		LowDay:      low.String(),
	}
}

// anomalies flags values farther than two sample deviations from the mean.
func anomalies(values []float64) []Anomaly {
	out := []Anomaly{}
	if len(values) < minAnomalyPoints {
		return out
	}
	m := mean(values)
	limit := 2 * sampleStdev(values)
	for i, v := range values {
		dev := math.Abs(v - m)
		if dev <= limit {
			continue
		}
		kind := "low"
		if v > m {
			kind = "high"
		}
		out = append(out, Anomaly{Index: i, Value: v, Deviation: dev, Type: kind})
	}
	return out
}

// forecast projects a least-squares line horizon steps past the series,
// flooring projections at zero.
func forecast(values []float64, horizon int) Forecast {
	if len(values) < minForecastPoints {
		return Forecast{Error: fmt.Errorf("%w for forecasting", ErrInsufficientData).Error()}
	}
	slope, intercept := linearFit(values)
	projected := make([]float64, horizon)
	for i := range projected {
		x := float64(len(values) + i)
		projected[i] = math.Max(0, slope*x+intercept)
	}
	return Forecast{
		Horizon:    horizon,
		Values:     projected,
		Slope:      slope,
		Intercept:  intercept,
		Confidence: forecastConfidence,
	}
}
