package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/enrich"
)

// Config is the top-level contentlens configuration.
type Config struct {
	Enrichment Enrichment `mapstructure:"enrichment"`
	Batch      Batch      `mapstructure:"batch"`
	Analytics  Analytics  `mapstructure:"analytics"`
	Output     Output     `mapstructure:"output"`
	Log        Log        `mapstructure:"log"`
	DBPath     string     `mapstructure:"db_path"`
}

// Enrichment configures the enrichment pipeline.
type Enrichment struct {
	EnabledPasses     []string               `mapstructure:"enabled_passes"`
	TargetChannels    []string               `mapstructure:"target_channels"`
	Languages         []string               `mapstructure:"languages"`
	SEOKeywords       []string               `mapstructure:"seo_keywords"`
	BrandGuidelines   enrich.BrandGuidelines `mapstructure:"brand_guidelines"`
	QualityThresholds map[string]float64     `mapstructure:"quality_thresholds"`
}

// Batch bounds batch enrichment.
type Batch struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxSize     int `mapstructure:"max_size"`
}

// Analytics configures the metric store and alerting.
type Analytics struct {
	RetentionDays   int                `mapstructure:"retention_days"`
	AlertThresholds []AlertThreshold `mapstructure:"alert_thresholds"`
	EnabledMetrics  []string         `mapstructure:"enabled_metrics"`
	TimeFrames      []string         `mapstructure:"time_frames"`
}

// AlertThreshold raises an alert when a metric whose name contains Metric
// drops below Threshold. Entries are a list so Metric keeps its case; viper
// lowercases map keys.
type AlertThreshold struct {
	Metric    string  `mapstructure:"metric"`
	Threshold float64 `mapstructure:"threshold"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Log selects the log level.
type Log struct {
	Level string `mapstructure:"level"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("enrichment.enabled_passes", DefaultEnabledPasses)
	v.SetDefault("enrichment.target_channels", DefaultTargetChannels)
	v.SetDefault("enrichment.languages", DefaultLanguages)
	v.SetDefault("enrichment.seo_keywords", []string{})
	v.SetDefault("enrichment.brand_guidelines.tone", "")
	v.SetDefault("enrichment.brand_guidelines.required_brand_mention", "")
	v.SetDefault("enrichment.brand_guidelines.forbidden_words", []string{})
	for metric, threshold := range DefaultQualityThresholds {
		v.SetDefault("enrichment.quality_thresholds."+metric, threshold)
	}
	v.SetDefault("batch.concurrency", DefaultBatch.Concurrency)
	v.SetDefault("batch.max_size", DefaultBatch.MaxSize)
	v.SetDefault("analytics.retention_days", DefaultRetentionDays)
	v.SetDefault("analytics.alert_thresholds", []AlertThreshold{})
	v.SetDefault("analytics.enabled_metrics", DefaultEnabledMetrics)
	v.SetDefault("analytics.time_frames", DefaultTimeFrames)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("db_path", filepath.Join(DefaultConfigDir, DefaultDBName))

	v.SetEnvPrefix("contentlens")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// A missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	if c.Batch.MaxSize < 1 {
		return fmt.Errorf("batch.max_size must be at least 1, got %d", c.Batch.MaxSize)
	}
	seen := make(map[string]bool, len(c.Analytics.AlertThresholds))
	for i, at := range c.Analytics.AlertThresholds {
		if at.Metric == "" {
			return fmt.Errorf("analytics.alert_thresholds[%d]: metric is required", i)
		}
		if seen[at.Metric] {
			return fmt.Errorf("analytics.alert_thresholds: duplicate metric %q", at.Metric)
		}
		seen[at.Metric] = true
	}
	if c.Analytics.RetentionDays < 0 {
		return fmt.Errorf("analytics.retention_days must not be negative, got %d", c.Analytics.RetentionDays)
	}
	return nil
}

// EnrichConfig converts the enrichment section into an engine config.
func (c *Config) EnrichConfig() enrich.Config {
	passes := make([]enrich.PassID, len(c.Enrichment.EnabledPasses))
	for i, p := range c.Enrichment.EnabledPasses {
		passes[i] = enrich.PassID(p)
	}
	return enrich.Config{
		EnabledPasses:     passes,
		TargetChannels:    c.Enrichment.TargetChannels,
		Languages:         c.Enrichment.Languages,
		SEOKeywords:       c.Enrichment.SEOKeywords,
		BrandGuidelines:   c.Enrichment.BrandGuidelines,
		QualityThresholds: c.Enrichment.QualityThresholds,
		Concurrency:       c.Batch.Concurrency,
	}
}

// AnalyticsConfig converts the analytics section into a service config.
func (c *Config) AnalyticsConfig() analytics.Config {
	frames := make([]analytics.TimeFrame, len(c.Analytics.TimeFrames))
	for i, f := range c.Analytics.TimeFrames {
		frames[i] = analytics.TimeFrame(f)
	}
	thresholds := make(map[string]float64, len(c.Analytics.AlertThresholds))
	for _, at := range c.Analytics.AlertThresholds {
		thresholds[at.Metric] = at.Threshold
	}
	return analytics.Config{
		RetentionDays:   c.Analytics.RetentionDays,
		AlertThresholds: thresholds,
		EnabledMetrics:  c.Analytics.EnabledMetrics,
		TimeFrames:      frames,
	}
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
