package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/output"
)

var predictDays int

var predictCmd = &cobra.Command{
	Use:   "predict <records.json>",
	Short: "Forecast quality and list opportunities and risks",
	Long: `Project the average content quality of a records file forward and
list the optimization opportunities and risk factors found in it.

Examples:
  contentlens predict products.json
  contentlens predict products.json --days 90`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().IntVar(&predictDays, "days", 30, "Prediction horizon in days")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := loadRecords(args[0])
	if err != nil {
		return err
	}
	insights := s.service().GeneratePredictiveInsights(records, predictDays)

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, insights)
	}
	renderPredict(w, insights)
	return nil
}

func renderPredict(w io.Writer, in analytics.PredictiveInsights) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Predictive Insights (%d days, %d products)", in.PredictionPeriodDays, in.TotalProductsAnalyzed)))
	fmt.Fprintln(w)

	q := in.QualityPredictions
	fmt.Fprintln(w, output.KeyValue("Current quality", output.Score(q.CurrentAverageQuality)))
	fmt.Fprintln(w, output.KeyValue("Predicted quality", fmt.Sprintf("%s %s",
		output.Score(q.PredictedAverageQuality),
		output.StyleMuted.Render(fmt.Sprintf("(%+.1f)", q.PredictedQualityChange)))))
	fmt.Fprintln(w, output.KeyValue("Confidence", fmt.Sprintf("%.0f%%", q.Confidence)))

	if len(in.OptimizationOpportunities) > 0 {
		fmt.Fprintln(w, output.Section("Opportunities"))
		for _, o := range in.OptimizationOpportunities {
			fmt.Fprintf(w, " [%s] %s (%d products)\n", o.PotentialImpact, o.Description, o.AffectedProducts)
		}
	}
	if len(in.RiskFactors) > 0 {
		fmt.Fprintln(w, output.Section("Risks"))
		for _, r := range in.RiskFactors {
			fmt.Fprintf(w, " [%s] %s (%d products)\n", r.Severity, r.Description, r.AffectedCount)
		}
	}
}
