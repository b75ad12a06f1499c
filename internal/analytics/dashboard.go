package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	recentWindow      = 24 * time.Hour
	maxRecentActivity = 10
	minReportPoints   = 10
	chartLabelLayout  = "2006-01-02 15:04"
	noDataInsight     = "No metrics data available for the selected period."
	declineAdvice     = "Investigate causes of declining metrics and implement improvement strategies"
	positiveAdvice    = "Continue current strategies that are driving positive trends"
	collectMoreAdvice = "Increase data collection frequency for better insights"
	performanceReport = "performance"
	reportIDPrefix    = "perf_"
)

// lookback resolves a dashboard time frame to its window length.
func lookback(tf TimeFrame) time.Duration {
	switch tf {
	case Daily:
		return 24 * time.Hour
	case Weekly:
		return 7 * 24 * time.Hour
	case Monthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// CreateDashboardData builds KPIs and charts over the time frame's window,
// plus alerts and metric activity from the last 24 hours.
func (s *Service) CreateDashboardData(tf TimeFrame) Dashboard {
	end := s.now()
	start := end.Add(-lookback(tf))
	pts := s.pointsBetween(start, end)

	return Dashboard{
		TimeFrame:      tf,
		StartDate:      start,
		EndDate:        end,
		KPIs:           kpis(pts),
		Charts:         charts(pts),
		Alerts:         s.alerts.Recent(end.Add(-recentWindow)),
		RecentActivity: s.recentActivity(end.Add(-recentWindow)),
	}
}

func kpis(pts []Point) KPIs {
	if len(pts) == 0 {
		return KPIs{}
	}
	vs := pointValues(pts)
	lo, hi := minMax(vs)
	return KPIs{TotalMetrics: len(pts), AverageValue: mean(vs), MaxValue: hi, MinValue: lo}
}

// charts builds one time-sorted line chart per metric name.
func charts(pts []Point) map[string]Chart {
	grouped := make(map[string][]Point)
	for _, p := range pts {
		grouped[p.MetricName] = append(grouped[p.MetricName], p)
	}
	out := make(map[string]Chart, len(grouped))
	for name, series := range grouped {
		sort.SliceStable(series, func(i, j int) bool { return series[i].Timestamp.Before(series[j].Timestamp) })
		data := ChartData{Labels: make([]string, len(series)), Values: make([]float64, len(series))}
		for i, p := range series {
			data.Labels[i] = p.Timestamp.Format(chartLabelLayout)
			data.Values[i] = p.Value
		}
		out[name] = Chart{Type: "line", Data: data}
	}
	return out
}

// recentActivity has one entry per metric with points after cutoff, newest
// first, at most ten.
func (s *Service) recentActivity(cutoff time.Time) []Activity {
	s.mu.RLock()
	out := []Activity{}
	for _, name := range s.order {
		var recent []Point
		for _, p := range s.store[name] {
			if p.Timestamp.After(cutoff) {
				recent = append(recent, p)
			}
		}
		if len(recent) == 0 {
			continue
		}
		last := recent[len(recent)-1]
		out = append(out, Activity{
			Type:        "metric_update",
			MetricName:  name,
			Count:       len(recent),
			LatestValue: last.Value,
			Timestamp:   last.Timestamp,
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out[:min(maxRecentActivity, len(out))]
}

// GeneratePerformanceReport collects every point in [start, end], derives
// insights and recommendations, and caches the report by ID.
func (s *Service) GeneratePerformanceReport(start, end time.Time) (*Report, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating report id: %w", err)
	}

	pts := s.pointsBetween(start, end)
	insights := reportInsights(pts)
	r := &Report{
		ReportID:        reportIDPrefix + id.String(),
		ReportType:      performanceReport,
		TimeFrame:       frameFor(start, end),
		StartDate:       start,
		EndDate:         end,
		Metrics:         pts,
		Insights:        insights,
		Recommendations: reportRecommendations(pts, insights),
		Charts:          charts(pts),
		GeneratedAt:     s.now(),
	}
	if r.Metrics == nil {
		r.Metrics = []Point{}
	}

	s.mu.Lock()
	s.reports[r.ReportID] = r
	s.mu.Unlock()

	s.metrics.ReportGenerated()
	s.log.Info("generated performance report",
		zap.String("report_id", r.ReportID),
		zap.Int("metrics", len(pts)))
	return r, nil
}

// Report returns a cached report.
func (s *Service) Report(id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	return r, nil
}

func reportInsights(pts []Point) []string {
	if len(pts) == 0 {
		return []string{noDataInsight}
	}
	var names []string
	grouped := make(map[string][]float64)
	for _, p := range pts {
		if _, ok := grouped[p.MetricName]; !ok {
			names = append(names, p.MetricName)
		}
		grouped[p.MetricName] = append(grouped[p.MetricName], p.Value)
	}

	insights := []string{}
	for _, name := range names {
		vs := grouped[name]
		if len(vs) < 2 {
			continue
		}
		trend := trendDirection(vs)
		insights = append(insights, fmt.Sprintf("%s: Average %.2f, trend is %s", name, mean(vs), trend))
		switch trend {
		case Increasing:
			insights = append(insights, "Positive trend detected in "+name)
		case Decreasing:
			insights = append(insights, "Declining trend in "+name+" requires attention")
		}
	}
	return insights
}

func reportRecommendations(pts []Point, insights []string) []string {
	recs := []string{}
	for _, in := range insights {
		lower := strings.ToLower(in)
		switch {
		case strings.Contains(lower, "declining"):
			recs = append(recs, declineAdvice)
		case strings.Contains(lower, "positive trend"):
			recs = append(recs, positiveAdvice)
		}
	}
	if len(pts) < minReportPoints {
		recs = append(recs, collectMoreAdvice)
	}
	return recs
}

// frameFor infers a granularity from the whole days between start and end.
func frameFor(start, end time.Time) TimeFrame {
	days := int(end.Sub(start) / (24 * time.Hour))
	switch {
	case days <= 1:
		return Hourly
	case days <= 7:
		return Daily
	case days <= 31:
		return Weekly
	case days <= 365:
		return Monthly
	default:
		return Yearly
	}
}
