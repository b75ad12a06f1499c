// Package enrich runs an ordered pipeline of enrichment stages over product
// records, producing a rewritten copy, metrics, and suggestions.
package enrich

import (
	"time"

	"github.com/blackwell-systems/contentlens/internal/catalog"
)

// PassID names an enrichment stage.
type PassID string

// Built-in stages.
const (
	SEOOptimization     PassID = "seo_optimization"
	ContentGeneration   PassID = "content_generation"
	ChannelOptimization PassID = "channel_optimization"
	QualityScoring      PassID = "quality_scoring"
	Categorization      PassID = "categorization"
)

// DefaultPasses is the pass order used when a Config enables none.
var DefaultPasses = []PassID{
	SEOOptimization,
	ContentGeneration,
	ChannelOptimization,
	QualityScoring,
	Categorization,
}

// BrandGuidelines constrain wording checked by the quality stage.
type BrandGuidelines struct {
	Tone                 string   `json:"tone,omitempty" mapstructure:"tone"`
	RequiredBrandMention string   `json:"required_brand_mention,omitempty" mapstructure:"required_brand_mention"`
	ForbiddenWords       []string `json:"forbidden_words,omitempty" mapstructure:"forbidden_words"`
}

// Configured reports whether any guideline is set.
func (g BrandGuidelines) Configured() bool {
	return g.Tone != "" || g.RequiredBrandMention != "" || len(g.ForbiddenWords) > 0
}

// Config controls one enrichment call.
type Config struct {
	// EnabledPasses run in this order. Empty means DefaultPasses.
	EnabledPasses []PassID

	TargetChannels    []string
	Languages         []string
	SEOKeywords       []string
	BrandGuidelines   BrandGuidelines
	QualityThresholds map[string]float64

	// Concurrency bounds EnrichBatch. Zero or negative means 5.
	Concurrency int
}

// DefaultQualityThresholds are the suggestion cutoffs used for any metric
// missing from Config.QualityThresholds.
var DefaultQualityThresholds = map[string]float64{
	"title_quality":        70,
	"description_quality":  70,
	"completeness_score":   80,
	"brand_compliance":     90,
	"category_confidence":  70,
	"marketplace_a9_score": 70,
}

// DefaultConfig returns a Config with every built-in pass enabled.
func DefaultConfig() Config {
	return Config{
		EnabledPasses:  append([]PassID(nil), DefaultPasses...),
		TargetChannels: []string{"website", "amazon", "ebay"},
		Languages:      []string{"en"},
	}
}

func (c *Config) passes() []PassID {
	if len(c.EnabledPasses) == 0 {
		return DefaultPasses
	}
	return c.EnabledPasses
}

func (c *Config) threshold(metric string) float64 {
	if v, ok := c.QualityThresholds[metric]; ok {
		return v
	}
	return DefaultQualityThresholds[metric]
}

func (c *Config) concurrency() int {
	if c.Concurrency <= 0 {
		return 5
	}
	return c.Concurrency
}

// Result is the outcome of enriching one record.
type Result struct {
	Original           *catalog.ProductRecord `json:"original_product"`
	Enriched           catalog.ProductRecord  `json:"enriched_product"`
	EnrichmentScore    float64                `json:"enrichment_score"`
	AppliedEnrichments []PassID               `json:"applied_enrichments"`
	QualityMetrics     map[string]float64     `json:"quality_metrics"`
	Suggestions        []string               `json:"suggestions"`
	Timestamp          time.Time              `json:"timestamp"`
}

// Statistics summarizes the enrichment history of an Engine.
type Statistics struct {
	TotalEnrichments int            `json:"total_enrichments"`
	AverageScore     float64        `json:"average_score"`
	MinScore         float64        `json:"min_score"`
	MaxScore         float64        `json:"max_score"`
	AppliedPasses    map[PassID]int `json:"applied_enrichment_types"`

	// SuccessRate is the percentage of enrichments scoring 70 or more.
	SuccessRate float64 `json:"success_rate"`
}
