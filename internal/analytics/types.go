package analytics

import (
	"errors"
	"time"

	"github.com/blackwell-systems/contentlens/internal/alert"
)

var (
	// ErrNoData means a metric has no points in the requested window.
	ErrNoData = errors.New("no data found for metric")

	// ErrInsufficientData means a calculation lacks its minimum sample.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrReportNotFound is returned by Report for unknown IDs.
	ErrReportNotFound = errors.New("report not found")

	// ErrInvalidPoint is returned by Track for points without a name.
	ErrInvalidPoint = errors.New("metric point requires a name")

	// ErrUnknownField is returned for cohort fields that do not exist.
	ErrUnknownField = errors.New("unknown cohort field")
)

// TimeFrame names a reporting granularity.
type TimeFrame string

const (
	Hourly    TimeFrame = "hourly"
	Daily     TimeFrame = "daily"
	Weekly    TimeFrame = "weekly"
	Monthly   TimeFrame = "monthly"
	Quarterly TimeFrame = "quarterly"
	Yearly    TimeFrame = "yearly"
)

// Config controls the analytics service.
type Config struct {
	// RetentionDays is applied only by Prune.
	RetentionDays   int
	AlertThresholds map[string]float64
	EnabledMetrics  []string
	TimeFrames      []TimeFrame
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		RetentionDays:  365,
		EnabledMetrics: []string{"performance", "engagement", "conversion", "seo", "quality", "inventory", "financial"},
		TimeFrames:     []TimeFrame{Daily, Weekly, Monthly},
	}
}

// Point is one immutable metric observation.
type Point struct {
	MetricName string            `json:"metric_name"`
	Value      float64           `json:"value"`
	Timestamp  time.Time         `json:"timestamp"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ScoreSummary aggregates one score across records.
type ScoreSummary struct {
	Average      float64        `json:"average"`
	Median       float64        `json:"median"`
	Min          float64        `json:"min"`
	Max          float64        `json:"max"`
	Distribution map[string]int `json:"distribution"`
}

// GroupStats holds per-category or per-brand averages.
type GroupStats struct {
	ProductCount    int     `json:"product_count"`
	AvgQuality      float64 `json:"avg_quality"`
	AvgCompleteness float64 `json:"avg_completeness"`
	AvgSEO          float64 `json:"avg_seo"`
}

// ContentPerformance is the result of AnalyzeContentPerformance.
type ContentPerformance struct {
	TotalProducts       int                   `json:"total_products"`
	ContentQuality      ScoreSummary          `json:"content_quality_scores"`
	SEOPerformance      ScoreSummary          `json:"seo_performance"`
	Completeness        ScoreSummary          `json:"completeness_analysis"`
	CategoryPerformance map[string]GroupStats `json:"category_performance"`
	BrandPerformance    map[string]GroupStats `json:"brand_performance"`
	Recommendations     []string              `json:"recommendations"`
}

// Seasonality describes day-of-week variation.
type Seasonality struct {
	Detected    bool               `json:"detected"`
	DayAverages map[string]float64 `json:"day_averages,omitempty"`
	PeakDay     string             `json:"peak_day,omitempty"`
	LowDay      string             `json:"low_day,omitempty"`
}

// Anomaly is a value more than two sample deviations from the mean.
type Anomaly struct {
	Index     int     `json:"index"`
	Value     float64 `json:"value"`
	Deviation float64 `json:"deviation"`
	Type      string  `json:"type"`
}

// Forecast is a linear projection past the observed series.
type Forecast struct {
	Horizon    int       `json:"forecast_days,omitempty"`
	Values     []float64 `json:"forecast_values,omitempty"`
	Slope      float64   `json:"trend_slope"`
	Intercept  float64   `json:"intercept"`
	Confidence float64   `json:"confidence,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// TrendAnalysis is the result of PerformTrendAnalysis. When Error is set the
// remaining fields are zero.
type TrendAnalysis struct {
	MetricName     string      `json:"metric_name"`
	PeriodDays     int         `json:"period_days"`
	DataPoints     int         `json:"data_points"`
	StartValue     float64     `json:"start_value"`
	EndValue       float64     `json:"end_value"`
	MinValue       float64     `json:"min_value"`
	MaxValue       float64     `json:"max_value"`
	AverageValue   float64     `json:"average_value"`
	MedianValue    float64     `json:"median_value"`
	TrendDirection string      `json:"trend_direction"`
	Volatility     float64     `json:"volatility"`
	GrowthRate     float64     `json:"growth_rate"`
	Seasonality    Seasonality `json:"seasonal_patterns"`
	Anomalies      []Anomaly   `json:"anomalies"`
	Forecast       Forecast    `json:"forecast"`
	Error          string      `json:"error,omitempty"`
}

// PriceStats summarizes prices within a cohort.
type PriceStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}

// Cohort holds the metrics of one group of records.
type Cohort struct {
	Size               int         `json:"size"`
	Percentage         float64     `json:"percentage"`
	AvgQualityScore    float64     `json:"avg_quality_score"`
	AvgCompleteness    float64     `json:"avg_completeness"`
	PriceStats         *PriceStats `json:"price_stats,omitempty"`
	AttributeDiversity int         `json:"attribute_diversity"`
}

// CohortAnalysis is the result of PerformCohortAnalysis.
type CohortAnalysis struct {
	CohortField   string            `json:"cohort_field"`
	TotalCohorts  int               `json:"total_cohorts"`
	TotalProducts int               `json:"total_products"`
	Cohorts       map[string]Cohort `json:"cohort_details"`
}

// ABGroup describes one arm of an A/B test.
type ABGroup struct {
	SampleSize int     `json:"sample_size"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

// ABResults is the decision part of an A/B test.
type ABResults struct {
	ImprovementPercentage float64 `json:"improvement_percentage"`
	IsSignificant         bool    `json:"is_significant"`
	ConfidenceLevel       float64 `json:"confidence_level"`
	Recommendation        string  `json:"recommendation"`
}

// ABStatistics holds the test statistics.
type ABStatistics struct {
	TStatistic   float64 `json:"t_statistic"`
	PooledStdDev float64 `json:"pooled_std_dev"`
	EffectSize   float64 `json:"effect_size"`
}

// ABTestAnalysis is the result of ABTest.
type ABTestAnalysis struct {
	TestName   string       `json:"test_name"`
	Control    ABGroup      `json:"control_group"`
	Variant    ABGroup      `json:"variant_group"`
	Results    ABResults    `json:"results"`
	Statistics ABStatistics `json:"statistical_details"`
	Error      string       `json:"error,omitempty"`
}

// QualityPrediction projects average quality forward.
type QualityPrediction struct {
	CurrentAverageQuality   float64 `json:"current_average_quality"`
	PredictedQualityChange  float64 `json:"predicted_quality_change"`
	PredictedAverageQuality float64 `json:"predicted_average_quality"`
	Confidence              float64 `json:"confidence"`
}

// Opportunity is a group of records that would gain from work.
type Opportunity struct {
	Type             string `json:"type"`
	AffectedProducts int    `json:"affected_products"`
	PotentialImpact  string `json:"potential_impact"`
	Description      string `json:"description"`
}

// RiskFactor flags a catalog-wide gap.
type RiskFactor struct {
	Type          string `json:"type"`
	Severity      string `json:"severity"`
	AffectedCount int    `json:"affected_count"`
	Description   string `json:"description"`
}

// PredictiveInsights is the result of GeneratePredictiveInsights.
type PredictiveInsights struct {
	PredictionPeriodDays      int               `json:"prediction_period_days"`
	TotalProductsAnalyzed     int               `json:"total_products_analyzed"`
	QualityPredictions        QualityPrediction `json:"quality_predictions"`
	OptimizationOpportunities []Opportunity     `json:"optimization_opportunities"`
	RiskFactors               []RiskFactor      `json:"risk_factors"`
}

// KPIs summarize every point in a dashboard window.
type KPIs struct {
	TotalMetrics int     `json:"total_metrics"`
	AverageValue float64 `json:"average_value"`
	MaxValue     float64 `json:"max_value"`
	MinValue     float64 `json:"min_value"`
}

// ChartData is a labeled series.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Chart is one chart payload.
type Chart struct {
	Type string    `json:"type"`
	Data ChartData `json:"data"`
}

// Activity is a recent metric-update entry.
type Activity struct {
	Type        string    `json:"type"`
	MetricName  string    `json:"metric_name"`
	Count       int       `json:"count"`
	LatestValue float64   `json:"latest_value"`
	Timestamp   time.Time `json:"timestamp"`
}

// Dashboard is the result of CreateDashboardData.
type Dashboard struct {
	TimeFrame      TimeFrame        `json:"time_frame"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	KPIs           KPIs             `json:"kpis"`
	Charts         map[string]Chart `json:"charts"`
	Alerts         []alert.Event    `json:"alerts"`
	RecentActivity []Activity       `json:"recent_activity"`
}

// Report is a cached performance report.
type Report struct {
	ReportID        string           `json:"report_id"`
	ReportType      string           `json:"report_type"`
	TimeFrame       TimeFrame        `json:"time_frame"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	Metrics         []Point          `json:"metrics"`
	Insights        []string         `json:"insights"`
	Recommendations []string         `json:"recommendations"`
	Charts          map[string]Chart `json:"charts_data"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Summary describes the service state.
type Summary struct {
	TotalMetricsTracked int      `json:"total_metrics_tracked"`
	UniqueMetricTypes   int      `json:"unique_metric_types"`
	ReportsGenerated    int      `json:"reports_generated"`
	AlertsTriggered     int      `json:"alerts_triggered"`
	EnabledMetricTypes  []string `json:"enabled_metric_types"`
	RetentionDays       int      `json:"retention_days"`
}
