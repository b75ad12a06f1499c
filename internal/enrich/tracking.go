package enrich

import (
	"strings"
	"time"

	"github.com/blackwell-systems/contentlens/internal/analytics"
)

// TrackingPoints are the metric points recorded after a single enrichment.
func TrackingPoints(r *Result) []analytics.Point {
	dims := map[string]string{"product_id": r.Enriched.ID}
	if r.Enriched.Category != "" {
		dims["category"] = r.Enriched.Category
	}
	if r.Enriched.Brand != "" {
		dims["brand"] = r.Enriched.Brand
	}
	passes := make([]string, len(r.AppliedEnrichments))
	for i, p := range r.AppliedEnrichments {
		passes[i] = string(p)
	}
	meta := map[string]string{"applied_enrichments": strings.Join(passes, ",")}

	return []analytics.Point{
		{MetricName: "enrichment_score", Value: r.EnrichmentScore, Timestamp: r.Timestamp, Dimensions: dims, Metadata: meta},
		{MetricName: "enrichment_count", Value: float64(len(r.AppliedEnrichments)), Timestamp: r.Timestamp, Dimensions: dims, Metadata: meta},
	}
}

// BatchTrackingPoints summarize a batch: product count, average score, and
// total applied passes.
func BatchTrackingPoints(results []*Result, at time.Time) []analytics.Point {
	sum := 0.0
	applied := 0
	for _, r := range results {
		sum += r.EnrichmentScore
		applied += len(r.AppliedEnrichments)
	}
	avg := 0.0
	if len(results) > 0 {
		avg = sum / float64(len(results))
	}
	return []analytics.Point{
		{MetricName: "batch_enrichment_products", Value: float64(len(results)), Timestamp: at},
		{MetricName: "batch_enrichment_avg_score", Value: avg, Timestamp: at},
		{MetricName: "batch_enrichment_total_enrichments", Value: float64(applied), Timestamp: at},
	}
}
