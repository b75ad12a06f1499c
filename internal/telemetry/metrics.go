package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine instruments. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Enrichments      *prometheus.CounterVec
	PassFailures     *prometheus.CounterVec
	EnrichmentScores prometheus.Histogram
	PointsTracked    *prometheus.CounterVec
	AlertsTriggered  *prometheus.CounterVec
	ReportsGenerated prometheus.Counter
}

// NewMetrics creates the instruments and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Enrichments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "contentlens",
				Name:      "enrichments_total",
				Help:      "Record enrichments by outcome",
			},
			[]string{"outcome"},
		),
		PassFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "contentlens",
				Name:      "enrichment_pass_failures_total",
				Help:      "Enrichment pass failures by pass",
			},
			[]string{"pass"},
		),
		EnrichmentScores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "contentlens",
				Name:      "enrichment_score",
				Help:      "Distribution of final enrichment scores",
				Buckets:   []float64{20, 40, 60, 70, 80, 90, 100},
			},
		),
		PointsTracked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "contentlens",
				Name:      "metric_points_tracked_total",
				Help:      "Metric points appended to the analytics store",
			},
			[]string{"metric"},
		),
		AlertsTriggered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "contentlens",
				Name:      "alerts_triggered_total",
				Help:      "Threshold alerts by severity",
			},
			[]string{"severity"},
		),
		ReportsGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "contentlens",
				Name:      "reports_generated_total",
				Help:      "Performance reports generated",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.Enrichments,
			m.PassFailures,
			m.EnrichmentScores,
			m.PointsTracked,
			m.AlertsTriggered,
			m.ReportsGenerated,
		)
	}
	return m
}

// EnrichmentDone records one finished enrichment.
func (m *Metrics) EnrichmentDone(outcome string, score float64) {
	if m == nil {
		return
	}
	m.Enrichments.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.EnrichmentScores.Observe(score)
	}
}

// PassFailed records a failed enrichment pass.
func (m *Metrics) PassFailed(pass string) {
	if m == nil {
		return
	}
	m.PassFailures.WithLabelValues(pass).Inc()
}

// PointTracked records one metric point.
func (m *Metrics) PointTracked(metric string) {
	if m == nil {
		return
	}
	m.PointsTracked.WithLabelValues(metric).Inc()
}

// AlertRaised records one alert.
func (m *Metrics) AlertRaised(severity string) {
	if m == nil {
		return
	}
	m.AlertsTriggered.WithLabelValues(severity).Inc()
}

// ReportGenerated records one performance report.
func (m *Metrics) ReportGenerated() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

// Snapshot gathers reg and flattens counter and histogram-count samples into
// "name{labels}" -> value, for display.
func Snapshot(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				key += "{"
				for i, lp := range labels {
					if i > 0 {
						key += ","
					}
					key += lp.GetName() + "=" + lp.GetValue()
				}
				key += "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				out[key+"_count"] = float64(m.GetHistogram().GetSampleCount())
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}
