package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.EnrichmentDone("success", 50)
	m.PassFailed("seo_optimization")
	m.PointTracked("x")
	m.AlertRaised("warning")
	m.ReportGenerated()
}

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.EnrichmentDone("success", 80)
	m.EnrichmentDone("success", 60)
	m.EnrichmentDone("invalid", 0)
	m.PassFailed("categorization")
	m.AlertRaised("critical")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Enrichments.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Enrichments.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PassFailures.WithLabelValues("categorization")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsTriggered.WithLabelValues("critical")))
}

func TestSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.PointTracked("enrichment_score")
	m.PointTracked("enrichment_score")
	m.EnrichmentDone("success", 75)

	snap, err := Snapshot(reg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap["contentlens_metric_points_tracked_total{metric=enrichment_score}"])
	assert.Equal(t, 1.0, snap["contentlens_enrichment_score_count"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("bogus"))
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("info")
	require.NoError(t, err)
	require.NotNil(t, log)
}
