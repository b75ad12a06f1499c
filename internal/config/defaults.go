// Package config provides configuration loading and defaults for contentlens.
package config

// DefaultConfigDir is the default location for contentlens configuration.
const DefaultConfigDir = "~/.config/contentlens"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "contentlens.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultEnabledPasses run in this order when the config names none.
var DefaultEnabledPasses = []string{
	"seo_optimization",
	"content_generation",
	"channel_optimization",
	"quality_scoring",
	"categorization",
}

// DefaultTargetChannels are the channels enrichment targets.
var DefaultTargetChannels = []string{"website", "amazon", "ebay"}

// DefaultLanguages are the content languages.
var DefaultLanguages = []string{"en"}

// DefaultQualityThresholds are the suggestion cutoffs per quality metric.
var DefaultQualityThresholds = map[string]float64{
	"title_quality":        70,
	"description_quality":  70,
	"completeness_score":   80,
	"brand_compliance":     90,
	"category_confidence":  70,
	"marketplace_a9_score": 70,
}

// DefaultBatch holds the default batch limits.
var DefaultBatch = Batch{
	Concurrency: 5,
	MaxSize:     100,
}

// DefaultRetentionDays is how long tracked points are kept before pruning.
const DefaultRetentionDays = 365

// DefaultEnabledMetrics are the metric families reported by stats.
var DefaultEnabledMetrics = []string{
	"performance", "engagement", "conversion", "seo",
	"quality", "inventory", "financial",
}

// DefaultTimeFrames are the dashboard granularities offered.
var DefaultTimeFrames = []string{"daily", "weekly", "monthly"}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultLogLevel keeps the CLI quiet unless --verbose is passed.
const DefaultLogLevel = "warn"
