package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/store"
)

const testRecords = `[
  {
    "id": "p1",
    "title": "Wireless Headphones",
    "description": "Premium wireless headphones with noise cancellation and a 30 hour battery. Comfortable for travel and work.",
    "price": 199.99,
    "category": "Electronics",
    "brand": "Acme",
    "sku": "ACM-1",
    "attributes": {"color": "black", "connectivity": "bluetooth"},
    "images": ["https://img.example.com/p1.jpg"]
  },
  {"id": "p2", "title": "Mug", "category": "misc"},
  {"title": "no id"}
]`

// newEnv writes a config pointing at a fresh database and returns its path.
func newEnv(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	body := "db_path: " + filepath.Join(dir, "lens.db") + "\n" + extra
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeRecords(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	flagJSON, flagNoColor, flagVerbose = false, false, false
	enrichPasses, enrichKeywords = nil, nil
	enrichNoStore, enrichSuggestions = false, false
	trackDimensions, trackMetadata = nil, nil
	abtestName = ""
	cohortField, predictDays, trendDays = "category", 30, 30
	dashboardFrame, reportDays, statsRuns = "weekly", 7, 10

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func decode(t *testing.T, s string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(s), v))
}

func TestRoot_ListsCommands(t *testing.T) {
	out, err := execute(t, newEnv(t, ""))
	require.NoError(t, err)
	assert.Contains(t, out, "contentlens")
	assert.Contains(t, out, "enrich")
	assert.Contains(t, out, "dashboard")
}

func TestEnrich_PersistsRunAndPoints(t *testing.T) {
	cfg := newEnv(t, "")
	records := writeRecords(t, testRecords)

	out, err := execute(t, cfg, "enrich", records, "--json")
	require.NoError(t, err)

	var got struct {
		RunID   string `json:"run_id"`
		Total   int    `json:"total_products"`
		Results []struct {
			Score   float64  `json:"enrichment_score"`
			Applied []string `json:"applied_enrichments"`
		} `json:"results"`
	}
	decode(t, out, &got)
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, 3, got.Total)
	require.Len(t, got.Results, 2)
	assert.Len(t, got.Results[0].Applied, 5)

	out, err = execute(t, cfg, "stats", "--json")
	require.NoError(t, err)
	var stats statsOutput
	decode(t, out, &stats)
	require.Len(t, stats.Runs, 1)
	assert.Equal(t, got.RunID, stats.Runs[0].ID)
	assert.Equal(t, 3, stats.Runs[0].Products)
	assert.Equal(t, 2, stats.Runs[0].Succeeded)
	assert.Equal(t, 2, stats.Enrichment.TotalEnrichments)
	// Three batch points plus two per enriched record.
	assert.Equal(t, 7, stats.Analytics.TotalMetricsTracked)
	assert.Equal(t, 2.0, stats.Counters["contentlens_metric_points_tracked_total{metric=enrichment_score}"])
}

func TestEnrich_Text(t *testing.T) {
	out, err := execute(t, newEnv(t, ""), "enrich", writeRecords(t, testRecords), "--no-store", "--suggestions")
	require.NoError(t, err)
	assert.Contains(t, out, "Enrichment:")
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "2 of 3")
	assert.NotContains(t, out, "Run ")
}

func TestEnrich_Passes(t *testing.T) {
	out, err := execute(t, newEnv(t, ""), "enrich", writeRecords(t, testRecords),
		"--no-store", "--json", "--passes", "quality_scoring")
	require.NoError(t, err)
	var got enrichOutput
	decode(t, out, &got)
	require.Len(t, got.Results, 2)
	assert.Len(t, got.Results[0].AppliedEnrichments, 1)
	assert.Empty(t, got.RunID)
}

func TestEnrich_MaxSize(t *testing.T) {
	_, err := execute(t, newEnv(t, "batch:\n  max_size: 2\n"), "enrich", writeRecords(t, testRecords))
	assert.ErrorContains(t, err, "exceeds batch.max_size 2")
}

func TestEnrich_MissingFile(t *testing.T) {
	_, err := execute(t, newEnv(t, ""), "enrich", filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "loading records")
}

func TestTrack_AlertsAndDashboard(t *testing.T) {
	cfg := newEnv(t, "analytics:\n  alert_thresholds:\n    - metric: conversion\n      threshold: 5\n")

	out, err := execute(t, cfg, "track", "conversion_rate", "2", "--json", "--dim", "channel=amazon")
	require.NoError(t, err)
	var tracked trackOutput
	decode(t, out, &tracked)
	assert.Equal(t, "conversion_rate", tracked.Point.MetricName)
	assert.Equal(t, map[string]string{"channel": "amazon"}, tracked.Point.Dimensions)
	require.Len(t, tracked.Alerts, 1)
	assert.Equal(t, "critical", tracked.Alerts[0].Severity)

	_, err = execute(t, cfg, "track", "conversion_rate", "6")
	require.NoError(t, err)

	out, err = execute(t, cfg, "dashboard", "--json")
	require.NoError(t, err)
	var d struct {
		KPIs struct {
			Total int `json:"total_metrics"`
		} `json:"kpis"`
		Alerts []struct {
			Metric string `json:"metric_name"`
		} `json:"alerts"`
	}
	decode(t, out, &d)
	assert.Equal(t, 2, d.KPIs.Total)
	require.Len(t, d.Alerts, 1)
	assert.Equal(t, "conversion_rate", d.Alerts[0].Metric)

	out, err = execute(t, cfg, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Dashboard (weekly)")
	assert.Contains(t, out, "CRITICAL")
}

func TestTrack_InvalidValue(t *testing.T) {
	_, err := execute(t, newEnv(t, ""), "track", "x", "lots")
	assert.ErrorContains(t, err, `invalid value "lots"`)
}

func TestTrack_PrunesPastRetention(t *testing.T) {
	cfg := newEnv(t, "analytics:\n  retention_days: 1\n")
	flagConfig = cfg

	s, err := newSession(true)
	require.NoError(t, err)
	require.NoError(t, s.db.InsertPoints([]analytics.Point{
		{MetricName: "a", Value: 1, Timestamp: time.Now().Add(-72 * time.Hour)},
	}))
	s.Close()

	out, err := execute(t, cfg, "track", "a", "2", "--json")
	require.NoError(t, err)
	var tracked trackOutput
	decode(t, out, &tracked)
	assert.Equal(t, int64(1), tracked.Pruned)

	out, err = execute(t, cfg, "stats", "--json")
	require.NoError(t, err)
	var stats statsOutput
	decode(t, out, &stats)
	assert.Equal(t, 1, stats.Analytics.TotalMetricsTracked)
}

func TestDashboard_UnknownFrame(t *testing.T) {
	_, err := execute(t, newEnv(t, ""), "dashboard", "--frame", "hourly")
	assert.ErrorContains(t, err, `unknown time frame "hourly"`)
}

func TestTrend(t *testing.T) {
	cfg := newEnv(t, "")
	for _, v := range []string{"1", "2", "3"} {
		_, err := execute(t, cfg, "track", "score", v)
		require.NoError(t, err)
	}

	out, err := execute(t, cfg, "trend", "score", "--json")
	require.NoError(t, err)
	var ta struct {
		Points int     `json:"data_points"`
		Start  float64 `json:"start_value"`
		End    float64 `json:"end_value"`
	}
	decode(t, out, &ta)
	assert.Equal(t, 3, ta.Points)
	assert.Equal(t, 1.0, ta.Start)
	assert.Equal(t, 3.0, ta.End)

	out, err = execute(t, cfg, "trend", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "missing")
}

func TestABTest(t *testing.T) {
	cfg := newEnv(t, "")
	for _, p := range [][2]string{{"ctl", "1"}, {"ctl", "2"}, {"var", "3"}, {"var", "4"}} {
		_, err := execute(t, cfg, "track", p[0], p[1])
		require.NoError(t, err)
	}

	out, err := execute(t, cfg, "abtest", "ctl", "var", "--json")
	require.NoError(t, err)
	var r struct {
		Name    string `json:"test_name"`
		Variant struct {
			Mean float64 `json:"mean"`
		} `json:"variant_group"`
	}
	decode(t, out, &r)
	assert.Equal(t, "ctl vs var", r.Name)
	assert.Equal(t, 3.5, r.Variant.Mean)

	_, err = execute(t, cfg, "abtest", "ctl", "nothing")
	assert.ErrorContains(t, err, "insufficient data")
}

func TestReport(t *testing.T) {
	cfg := newEnv(t, "")
	_, err := execute(t, cfg, "track", "a", "1")
	require.NoError(t, err)

	out, err := execute(t, cfg, "report", "--json")
	require.NoError(t, err)
	var r struct {
		ID      string `json:"report_id"`
		Metrics []any  `json:"metrics"`
	}
	decode(t, out, &r)
	assert.True(t, strings.HasPrefix(r.ID, "perf_"))
	assert.Len(t, r.Metrics, 1)

	_, err = execute(t, cfg, "report", "--days", "0")
	assert.ErrorContains(t, err, "--days")
}

func TestRecordCommands(t *testing.T) {
	cfg := newEnv(t, "")
	records := writeRecords(t, testRecords)

	out, err := execute(t, cfg, "analyze", records)
	require.NoError(t, err)
	assert.Contains(t, out, "Content Performance (3 products)")
	assert.Contains(t, out, "Electronics")

	out, err = execute(t, cfg, "cohort", records, "--field", "brand", "--json")
	require.NoError(t, err)
	var c struct {
		Field   string         `json:"cohort_field"`
		Cohorts map[string]any `json:"cohort_details"`
	}
	decode(t, out, &c)
	assert.Equal(t, "brand", c.Field)
	assert.Contains(t, c.Cohorts, "Acme")
	assert.Contains(t, c.Cohorts, "Unknown")

	_, err = execute(t, cfg, "cohort", records, "--field", "weight")
	assert.ErrorContains(t, err, "weight")

	out, err = execute(t, cfg, "predict", records, "--days", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "Predictive Insights (60 days, 3 products)")
}

func TestRunStatistics(t *testing.T) {
	assert.Zero(t, runStatistics(nil).TotalEnrichments)

	got := runStatistics([]store.RunResult{
		{Score: 80, Applied: []string{"seo_optimization", "quality_scoring"}},
		{Score: 40, Applied: []string{"quality_scoring"}},
	})
	assert.Equal(t, 2, got.TotalEnrichments)
	assert.Equal(t, 60.0, got.AverageScore)
	assert.Equal(t, 40.0, got.MinScore)
	assert.Equal(t, 80.0, got.MaxScore)
	assert.Equal(t, 50.0, got.SuccessRate)
	assert.Equal(t, 2, got.AppliedPasses["quality_scoring"])
}
