package analytics

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/blackwell-systems/contentlens/internal/catalog"
	"github.com/blackwell-systems/contentlens/internal/scoring"
)

// Recommendation cutoffs for AnalyzeContentPerformance.
const (
	targetQuality          = 70
	targetCompleteness     = 80
	targetSEO              = 75
	attentionQuality       = 60
	maxAttentionCategories = 3
)

type recordScores struct {
	quality, completeness, seo float64
}

func scoreRecord(p *catalog.ProductRecord) recordScores {
	return recordScores{
		quality:      scoring.Quality(p),
		completeness: scoring.Completeness(p),
		seo:          scoring.SEO(p),
	}
}

func emptySummary() ScoreSummary {
	return ScoreSummary{Distribution: scoring.Distribution(nil)}
}

func summarizeScores(vs []float64) ScoreSummary {
	avg, med, lo, hi := summarize(vs)
	return ScoreSummary{Average: avg, Median: med, Min: lo, Max: hi, Distribution: scoring.Distribution(vs)}
}

// AnalyzeContentPerformance scores every record and aggregates the scores
// overall, per category, and per brand.
func (s *Service) AnalyzeContentPerformance(records []*catalog.ProductRecord) ContentPerformance {
	out := ContentPerformance{
		TotalProducts:       len(records),
		ContentQuality:      emptySummary(),
		SEOPerformance:      emptySummary(),
		Completeness:        emptySummary(),
		CategoryPerformance: map[string]GroupStats{},
		BrandPerformance:    map[string]GroupStats{},
		Recommendations:     []string{},
	}
	if len(records) == 0 {
		return out
	}

	var quality, completeness, seo []float64
	byCategory := make(map[string][]recordScores)
	byBrand := make(map[string][]recordScores)
	for _, p := range records {
		sc := scoreRecord(p)
		quality = append(quality, sc.quality)
		completeness = append(completeness, sc.completeness)
		seo = append(seo, sc.seo)
		if p.Category != "" {
			byCategory[p.Category] = append(byCategory[p.Category], sc)
		}
		if p.Brand != "" {
			byBrand[p.Brand] = append(byBrand[p.Brand], sc)
		}
	}

	out.ContentQuality = summarizeScores(quality)
	out.SEOPerformance = summarizeScores(seo)
	out.Completeness = summarizeScores(completeness)
	for k, v := range byCategory {
		out.CategoryPerformance[k] = groupStats(v)
	}
	for k, v := range byBrand {
		out.BrandPerformance[k] = groupStats(v)
	}
	out.Recommendations = contentRecommendations(out)

	s.log.Info("analyzed content performance",
		zap.Int("products", len(records)),
		zap.Float64("avg_quality", out.ContentQuality.Average))
	return out
}

func groupStats(scores []recordScores) GroupStats {
	var q, c, e []float64
	for _, sc := range scores {
		q = append(q, sc.quality)
		c = append(c, sc.completeness)
		e = append(e, sc.seo)
	}
	return GroupStats{
		ProductCount:    len(scores),
		AvgQuality:      mean(q),
		AvgCompleteness: mean(c),
		AvgSEO:          mean(e),
	}
}

func contentRecommendations(a ContentPerformance) []string {
	recs := []string{}
	if q := a.ContentQuality.Average; q < targetQuality {
		recs = append(recs, fmt.Sprintf("Overall content quality is below target (%.1f/100). Focus on improving titles and descriptions.", q))
	}
	if c := a.Completeness.Average; c < targetCompleteness {
		recs = append(recs, fmt.Sprintf("Content completeness needs improvement (%.1f/100). Add missing product information.", c))
	}
	if e := a.SEOPerformance.Average; e < targetSEO {
		recs = append(recs, fmt.Sprintf("SEO optimization is below target (%.1f/100). Optimize titles, descriptions, and meta data.", e))
	}

	var weak []string
	for cat, st := range a.CategoryPerformance {
		if st.AvgQuality < attentionQuality {
			weak = append(weak, cat)
		}
	}
	if len(weak) > 0 {
		sort.Strings(weak)
		recs = append(recs, "Categories needing attention: "+strings.Join(weak[:min(maxAttentionCategories, len(weak))], ", "))
	}
	return recs
}

// PerformCohortAnalysis groups records by field, which is any name in
// catalog.Fields or "attributes.<key>". Records lacking the field fall in
// the "Unknown" cohort.
func (s *Service) PerformCohortAnalysis(records []*catalog.ProductRecord, field string) (CohortAnalysis, error) {
	if field == "" {
		field = "category"
	}
	f, ok := catalog.LookupField(field)
	if !ok {
		return CohortAnalysis{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	groups := make(map[string][]*catalog.ProductRecord)
	for _, p := range records {
		key, present := f.Value(p)
		if !present {
			key = "Unknown"
		}
		groups[key] = append(groups[key], p)
	}

	out := CohortAnalysis{
		CohortField:   field,
		TotalCohorts:  len(groups),
		TotalProducts: len(records),
		Cohorts:       make(map[string]Cohort, len(groups)),
	}
	for name, members := range groups {
		out.Cohorts[name] = cohortMetrics(members, len(records))
	}
	return out, nil
}

func cohortMetrics(members []*catalog.ProductRecord, total int) Cohort {
	var quality, completeness, prices []float64
	keys := make(map[string]bool)
	for _, p := range members {
		quality = append(quality, scoring.Quality(p))
		completeness = append(completeness, scoring.Completeness(p))
		if p.HasPrice() {
			prices = append(prices, *p.Price)
		}
		for k := range p.Attributes {
			keys[k] = true
		}
	}

	c := Cohort{
		Size:               len(members),
		Percentage:         float64(len(members)) / float64(total) * 100,
		AvgQualityScore:    mean(quality),
		AvgCompleteness:    mean(completeness),
		AttributeDiversity: len(keys),
	}
	if len(prices) > 0 {
		avg, med, lo, hi := summarize(prices)
		c.PriceStats = &PriceStats{Min: lo, Max: hi, Average: avg, Median: med}
	}
	return c
}

// GeneratePredictiveInsights projects quality forward assuming a tenth of
// the remaining quality and completeness gap closes, and flags records and
// catalog-wide gaps worth attention.
func (s *Service) GeneratePredictiveInsights(records []*catalog.ProductRecord, horizonDays int) PredictiveInsights {
	out := PredictiveInsights{
		PredictionPeriodDays:      horizonDays,
		TotalProductsAnalyzed:     len(records),
		OptimizationOpportunities: []Opportunity{},
		RiskFactors:               []RiskFactor{},
	}
	if len(records) == 0 {
		return out
	}

	var quality, completeness []float64
	lowQuality, incomplete, noDescription, noCategory := 0, 0, 0, 0
	for _, p := range records {
		sc := scoreRecord(p)
		quality = append(quality, sc.quality)
		completeness = append(completeness, sc.completeness)
		if sc.quality < 60 {
			lowQuality++
		}
		if sc.completeness < 80 {
			incomplete++
		}
		if p.Description == "" {
			noDescription++
		}
		if p.Category == "" {
			noCategory++
		}
	}

	avgQuality := mean(quality)
	delta := ((100 - avgQuality) + (100 - mean(completeness))) * 0.1
	out.QualityPredictions = QualityPrediction{
		CurrentAverageQuality:   avgQuality,
		PredictedQualityChange:  delta,
		PredictedAverageQuality: avgQuality + delta,
		Confidence:              75,
	}

	if lowQuality > 0 {
		out.OptimizationOpportunities = append(out.OptimizationOpportunities, Opportunity{
			Type:             "quality_improvement",
			AffectedProducts: lowQuality,
			PotentialImpact:  "High",
			Description:      fmt.Sprintf("%d products have quality scores below 60", lowQuality),
		})
	}
	if incomplete > 0 {
		out.OptimizationOpportunities = append(out.OptimizationOpportunities, Opportunity{
			Type:             "content_completion",
			AffectedProducts: incomplete,
			PotentialImpact:  "Medium",
			Description:      fmt.Sprintf("%d products have incomplete information", incomplete),
		})
	}

	n := float64(len(records))
	if float64(noDescription) > n*0.1 {
		out.RiskFactors = append(out.RiskFactors, RiskFactor{
			Type:          "missing_descriptions",
			Severity:      "High",
			AffectedCount: noDescription,
			Description:   fmt.Sprintf("%d products missing descriptions", noDescription),
		})
	}
	if float64(noCategory) > n*0.05 {
		out.RiskFactors = append(out.RiskFactors, RiskFactor{
			Type:          "missing_categories",
			Severity:      "Medium",
			AffectedCount: noCategory,
			Description:   fmt.Sprintf("%d products missing categories", noCategory),
		})
	}
	return out
}
