package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/output"
)

var abtestName string

var abtestCmd = &cobra.Command{
	Use:   "abtest <control-metric> <variant-metric>",
	Short: "Compare two metrics as control and variant",
	Long: `Compare every stored point of two metrics with a two-sample t test
and recommend whether to deploy the variant.

Examples:
  contentlens abtest conversion_title_a conversion_title_b
  contentlens abtest ctr_control ctr_bullets --name bullet-rewrite`,
	Args: cobra.ExactArgs(2),
	RunE: runABTest,
}

func init() {
	abtestCmd.Flags().StringVar(&abtestName, "name", "", "Test name (default: <control> vs <variant>)")
	rootCmd.AddCommand(abtestCmd)
}

func runABTest(cmd *cobra.Command, args []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	svc, err := s.loadService()
	if err != nil {
		return err
	}
	name := abtestName
	if name == "" {
		name = args[0] + " vs " + args[1]
	}
	result := svc.ABTest(name, svc.Points(args[0]), svc.Points(args[1]))

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, result)
	}
	if result.Error != "" {
		return errors.New(result.Error)
	}
	renderABTest(w, result)
	return nil
}

func renderABTest(w io.Writer, r analytics.ABTestAnalysis) {
	fmt.Fprintln(w, output.Section("A/B Test: "+r.TestName))
	fmt.Fprintln(w)

	tbl := output.NewTable("Group", "Samples", "Mean", "Std dev", "Min", "Max")
	for _, g := range []struct {
		name string
		grp  analytics.ABGroup
	}{
		{"control", r.Control},
		{"variant", r.Variant},
	} {
		tbl.AddRow(g.name,
			fmt.Sprintf("%d", g.grp.SampleSize),
			fmt.Sprintf("%.3f", g.grp.Mean),
			fmt.Sprintf("%.3f", g.grp.StdDev),
			fmt.Sprintf("%.3f", g.grp.Min),
			fmt.Sprintf("%.3f", g.grp.Max))
	}
	tbl.Fprint(w)
	fmt.Fprintln(w)

	significant := output.StyleMuted.Render("no")
	if r.Results.IsSignificant {
		significant = output.StyleSuccess.Render("yes")
	}
	fmt.Fprintln(w, output.KeyValue("Improvement", output.TrendArrowPercent(r.Results.ImprovementPercentage, true)))
	fmt.Fprintln(w, output.KeyValue("Significant", significant))
	fmt.Fprintln(w, output.KeyValue("Confidence", fmt.Sprintf("%.1f%%", r.Results.ConfidenceLevel)))
	fmt.Fprintln(w, output.KeyValue("t statistic", fmt.Sprintf("%.3f", r.Statistics.TStatistic)))
	fmt.Fprintln(w, output.KeyValue("Effect size", fmt.Sprintf("%.3f", r.Statistics.EffectSize)))
	fmt.Fprintln(w, output.KeyValue("Recommendation", output.StyleBold.Render(r.Results.Recommendation)))
}
