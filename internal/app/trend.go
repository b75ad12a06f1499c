package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/output"
)

var trendDays int

var trendCmd = &cobra.Command{
	Use:   "trend <metric>",
	Short: "Trend, anomaly, and forecast analysis for a metric",
	Long: `Analyze the stored points of one metric over a lookback window:
summary statistics, trend direction, volatility, growth, weekday
seasonality, anomalies, and a linear forecast.

Examples:
  contentlens trend enrichment_score
  contentlens trend conversion_rate --days 90`,
	Args: cobra.ExactArgs(1),
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().IntVar(&trendDays, "days", 30, "Lookback window in days")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	svc, err := s.loadService()
	if err != nil {
		return err
	}
	ta := svc.PerformTrendAnalysis(args[0], trendDays)

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, ta)
	}
	renderTrend(w, ta)
	return nil
}

func renderTrend(w io.Writer, ta analytics.TrendAnalysis) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Trend: %s (last %d days)", ta.MetricName, ta.PeriodDays)))
	fmt.Fprintln(w)
	if ta.Error != "" {
		fmt.Fprintln(w, " "+output.StyleMuted.Render(ta.Error))
		return
	}

	fmt.Fprintln(w, output.KeyValue("Data points", fmt.Sprintf("%d", ta.DataPoints)))
	fmt.Fprintln(w, output.KeyValue("Start / end", fmt.Sprintf("%.2f / %.2f", ta.StartValue, ta.EndValue)))
	fmt.Fprintln(w, output.KeyValue("Min / max", fmt.Sprintf("%.2f / %.2f", ta.MinValue, ta.MaxValue)))
	fmt.Fprintln(w, output.KeyValue("Average / median", fmt.Sprintf("%.2f / %.2f", ta.AverageValue, ta.MedianValue)))
	fmt.Fprintln(w, output.KeyValue("Direction", output.Direction(ta.TrendDirection)))
	fmt.Fprintln(w, output.KeyValue("Volatility", fmt.Sprintf("%.2f", ta.Volatility)))
	fmt.Fprintln(w, output.KeyValue("Growth", output.TrendArrowPercent(ta.GrowthRate, true)))

	if ta.Seasonality.Detected {
		fmt.Fprintln(w, output.KeyValue("Weekly pattern", fmt.Sprintf("peak %s, low %s", ta.Seasonality.PeakDay, ta.Seasonality.LowDay)))
	}

	if len(ta.Anomalies) > 0 {
		fmt.Fprintln(w, output.Section("Anomalies"))
		fmt.Fprintln(w)
		tbl := output.NewTable("Index", "Value", "Deviation", "Type")
		for _, a := range ta.Anomalies {
			tbl.AddRow(fmt.Sprintf("%d", a.Index), fmt.Sprintf("%.2f", a.Value), fmt.Sprintf("%.2f", a.Deviation), a.Type)
		}
		tbl.Fprint(w)
	}

	fmt.Fprintln(w, output.Section("Forecast"))
	fmt.Fprintln(w)
	f := ta.Forecast
	if f.Error != "" {
		fmt.Fprintln(w, " "+output.StyleMuted.Render(f.Error))
		return
	}
	values := make([]string, len(f.Values))
	for i, v := range f.Values {
		values[i] = fmt.Sprintf("%.1f", v)
	}
	fmt.Fprintln(w, output.KeyValue("Slope / intercept", fmt.Sprintf("%.3f / %.3f", f.Slope, f.Intercept)))
	fmt.Fprintln(w, output.KeyValue(fmt.Sprintf("Next %d points", f.Horizon), strings.Join(values, " ")))
}
