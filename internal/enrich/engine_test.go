package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/contentlens/internal/catalog"
	"github.com/blackwell-systems/contentlens/internal/telemetry"
)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithClock(func() time.Time { return testNow })}, opts...)...)
}

func sampleRecord(id string) *catalog.ProductRecord {
	return &catalog.ProductRecord{
		ID:          id,
		Title:       "wireless speaker",
		Description: "Great sound for any room.",
		Price:       catalog.Float(49.99),
		Category:    "Electronics",
		Brand:       "Acme",
		Attributes:  map[string]string{"color": "Black"},
		Images:      []string{"a.jpg", "a.jpg", "b.jpg"},
	}
}

func boomFor(id string) Stage {
	return StageFunc{Pass: "flaky", Fn: func(rec *catalog.ProductRecord, _ Env) (Outcome, error) {
		if rec.ID == id {
			return Outcome{}, errors.New("boom")
		}
		return Outcome{}, nil
	}}
}

func TestEnrich_AllPasses(t *testing.T) {
	e := newTestEngine()
	rec := sampleRecord("p1")

	res, err := e.Enrich(rec, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, DefaultPasses, res.AppliedEnrichments)
	assert.Same(t, rec, res.Original)
	assert.Equal(t, testNow, res.Timestamp)
	assert.Equal(t, "true", res.Enriched.Attributes["seo_optimized"])
	assert.Contains(t, res.Enriched.Attributes, "marketplace_bullet_points")
	assert.Contains(t, res.QualityMetrics, "overall_quality")
	assert.Contains(t, res.QualityMetrics, "marketplace_a9_score")
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, res.Enriched.Images)
	assert.GreaterOrEqual(t, res.EnrichmentScore, 0.0)
	assert.LessOrEqual(t, res.EnrichmentScore, 100.0)
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	rec := sampleRecord("p1")

	_, err := e.Enrich(rec, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "wireless speaker", rec.Title)
	assert.Equal(t, "Great sound for any room.", rec.Description)
	assert.Equal(t, map[string]string{"color": "Black"}, rec.Attributes)
	assert.Len(t, rec.Images, 3)
}

func TestEnrich_Invalid(t *testing.T) {
	e := newTestEngine()

	_, err := e.Enrich(&catalog.ProductRecord{Title: "no id"}, DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrMissingID))

	_, err = e.Enrich(nil, DefaultConfig())
	assert.True(t, errors.Is(err, catalog.ErrMissingID))
	assert.Empty(t, e.History())
}

func TestEnrich_FailedPassDiscardsWrites(t *testing.T) {
	e := newTestEngine()
	e.Register(StageFunc{Pass: "broken", Fn: func(rec *catalog.ProductRecord, _ Env) (Outcome, error) {
		rec.Title = "clobbered"
		rec.Attributes["junk"] = "x"
		return Outcome{}, errors.New("bad input")
	}})

	res, err := e.Enrich(sampleRecord("p1"), Config{EnabledPasses: []PassID{"broken", QualityScoring}})
	require.NoError(t, err)

	assert.Equal(t, "wireless speaker", res.Enriched.Title)
	assert.NotContains(t, res.Enriched.Attributes, "junk")
	assert.Equal(t, []PassID{QualityScoring}, res.AppliedEnrichments)
	assert.Contains(t, res.Suggestions, "Failed to apply broken: bad input")
}

func TestEnrich_RecoversPanic(t *testing.T) {
	e := newTestEngine()
	e.Register(StageFunc{Pass: "explode", Fn: func(*catalog.ProductRecord, Env) (Outcome, error) {
		panic("kaboom")
	}})

	res, err := e.Enrich(sampleRecord("p1"), Config{EnabledPasses: []PassID{"explode"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Failed to apply explode: panic: kaboom"}, res.Suggestions)
	assert.Empty(t, res.AppliedEnrichments)
}

func TestEnrich_UnknownPass(t *testing.T) {
	e := newTestEngine()

	res, err := e.Enrich(sampleRecord("p1"), Config{EnabledPasses: []PassID{"nope"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Failed to apply nope: unknown enrichment pass"}, res.Suggestions)
	assert.Equal(t, 50.0, res.EnrichmentScore)
}

func TestEnrichBatch_IsolatesFailures(t *testing.T) {
	e := newTestEngine()
	e.Register(boomFor("p2"))
	cfg := Config{EnabledPasses: []PassID{QualityScoring, "flaky"}, Concurrency: 2}

	recs := []*catalog.ProductRecord{sampleRecord("p1"), sampleRecord("p2"), sampleRecord("p3")}
	results, err := e.EnrichBatch(context.Background(), recs, cfg)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, id := range []string{"p1", "p2", "p3"} {
		assert.Equal(t, id, results[i].Enriched.ID)
	}
	assert.Equal(t, []PassID{QualityScoring, "flaky"}, results[0].AppliedEnrichments)
	assert.Equal(t, []PassID{QualityScoring}, results[1].AppliedEnrichments)
	assert.Contains(t, results[1].Suggestions, "Failed to apply flaky: boom")
	assert.NotContains(t, results[2].Suggestions, "Failed to apply flaky: boom")
	assert.Len(t, e.History(), 3)
}

func TestEnrichBatch_SkipsInvalid(t *testing.T) {
	e := newTestEngine()
	recs := []*catalog.ProductRecord{sampleRecord("p1"), {Title: "missing id"}, nil, sampleRecord("p4")}

	results, err := e.EnrichBatch(context.Background(), recs, Config{EnabledPasses: []PassID{QualityScoring}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Enriched.ID)
	assert.Equal(t, "p4", results[1].Enriched.ID)
}

func TestEnrichBatch_Canceled(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EnrichBatch(ctx, []*catalog.ProductRecord{sampleRecord("p1"), sampleRecord("p2")}, DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEnrichBatch_Empty(t *testing.T) {
	results, err := newTestEngine().EnrichBatch(context.Background(), nil, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScore(t *testing.T) {
	t.Run("no metrics no changes", func(t *testing.T) {
		p := sampleRecord("p")
		assert.Equal(t, 50.0, Score(p, p, nil))
	})

	t.Run("bonuses", func(t *testing.T) {
		orig := &catalog.ProductRecord{ID: "p", Title: "a"}
		enriched := &catalog.ProductRecord{
			ID:         "p",
			Title:      "b",
			Category:   "Tools",
			Attributes: map[string]string{"x": "1", "y": "2", "z": "3"},
		}
		metrics := map[string]float64{"title_quality": 40, "completeness_score": 20, "title_length": 999}
		// 30 base + 10 title + 6 attributes + 5 category
		assert.Equal(t, 51.0, Score(orig, enriched, metrics))
	})

	t.Run("capped", func(t *testing.T) {
		orig := &catalog.ProductRecord{ID: "p"}
		enriched := &catalog.ProductRecord{ID: "p", Description: "new"}
		assert.Equal(t, 100.0, Score(orig, enriched, map[string]float64{"overall_quality": 95}))
	})

	t.Run("cleared category earns nothing", func(t *testing.T) {
		orig := &catalog.ProductRecord{ID: "p", Category: "Tools"}
		enriched := &catalog.ProductRecord{ID: "p"}
		assert.Equal(t, 50.0, Score(orig, enriched, nil))
	})
}

func TestStatistics(t *testing.T) {
	e := newTestEngine()
	e.Register(StageFunc{Pass: "fixed", Fn: func(rec *catalog.ProductRecord, _ Env) (Outcome, error) {
		v := 40.0
		if rec.ID == "p1" {
			v = 80
		}
		return Outcome{Metrics: map[string]float64{"quality": v}}, nil
	}})
	cfg := Config{EnabledPasses: []PassID{"fixed"}}

	assert.Equal(t, Statistics{AppliedPasses: map[PassID]int{}}, e.Statistics())

	for _, id := range []string{"p1", "p2"} {
		_, err := e.Enrich(sampleRecord(id), cfg)
		require.NoError(t, err)
	}

	stats := e.Statistics()
	assert.Equal(t, 2, stats.TotalEnrichments)
	assert.Equal(t, 60.0, stats.AverageScore)
	assert.Equal(t, 40.0, stats.MinScore)
	assert.Equal(t, 80.0, stats.MaxScore)
	assert.Equal(t, 50.0, stats.SuccessRate)
	assert.Equal(t, map[PassID]int{"fixed": 2}, stats.AppliedPasses)
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)
	e := newTestEngine(WithMetrics(m))
	e.Register(boomFor("p2"))
	cfg := Config{EnabledPasses: []PassID{"flaky"}}

	for _, id := range []string{"p1", "p2", ""} {
		_, _ = e.Enrich(sampleRecord(id), cfg)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Enrichments.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Enrichments.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PassFailures.WithLabelValues("flaky")))
}

func TestTrackingPoints(t *testing.T) {
	e := newTestEngine()
	res, err := e.Enrich(sampleRecord("p1"), Config{EnabledPasses: []PassID{QualityScoring, Categorization}})
	require.NoError(t, err)

	pts := TrackingPoints(res)
	require.Len(t, pts, 2)
	assert.Equal(t, "enrichment_score", pts[0].MetricName)
	assert.Equal(t, res.EnrichmentScore, pts[0].Value)
	assert.Equal(t, "enrichment_count", pts[1].MetricName)
	assert.Equal(t, 2.0, pts[1].Value)
	assert.Equal(t, testNow, pts[0].Timestamp)
	assert.Equal(t, map[string]string{"product_id": "p1", "category": "Electronics", "brand": "Acme"}, pts[0].Dimensions)
	assert.Equal(t, "quality_scoring,categorization", pts[0].Metadata["applied_enrichments"])
}

func TestBatchTrackingPoints(t *testing.T) {
	results := []*Result{
		{EnrichmentScore: 80, AppliedEnrichments: []PassID{SEOOptimization, QualityScoring}},
		{EnrichmentScore: 60, AppliedEnrichments: []PassID{QualityScoring}},
	}
	pts := BatchTrackingPoints(results, testNow)
	require.Len(t, pts, 3)
	assert.Equal(t, 2.0, pts[0].Value)
	assert.Equal(t, 70.0, pts[1].Value)
	assert.Equal(t, 3.0, pts[2].Value)

	empty := BatchTrackingPoints(nil, testNow)
	assert.Equal(t, 0.0, empty[1].Value)
}
