package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <records.json>",
	Short: "Score content quality, SEO, and completeness",
	Long: `Score every record in a JSON records file for content quality, SEO,
and completeness, then break the scores down by category and brand.

Examples:
  contentlens analyze products.json
  contentlens analyze products.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := loadRecords(args[0])
	if err != nil {
		return err
	}
	perf := s.service().AnalyzeContentPerformance(records)

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, perf)
	}
	renderAnalyze(w, perf)
	return nil
}

func renderAnalyze(w io.Writer, perf analytics.ContentPerformance) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Content Performance (%d products)", perf.TotalProducts)))
	fmt.Fprintln(w)

	tbl := output.NewTable("Score", "Average", "Median", "Min", "Max")
	for _, row := range []struct {
		name string
		sum  analytics.ScoreSummary
	}{
		{"Content quality", perf.ContentQuality},
		{"SEO", perf.SEOPerformance},
		{"Completeness", perf.Completeness},
	} {
		tbl.AddRow(row.name,
			output.Score(row.sum.Average),
			fmt.Sprintf("%.1f", row.sum.Median),
			fmt.Sprintf("%.1f", row.sum.Min),
			fmt.Sprintf("%.1f", row.sum.Max))
	}
	tbl.Fprint(w)

	renderGroups(w, "Categories", perf.CategoryPerformance)
	renderGroups(w, "Brands", perf.BrandPerformance)

	if len(perf.Recommendations) > 0 {
		fmt.Fprintln(w, output.Section("Recommendations"))
		for _, r := range perf.Recommendations {
			fmt.Fprintf(w, " - %s\n", r)
		}
	}
}

func renderGroups(w io.Writer, title string, groups map[string]analytics.GroupStats) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintln(w, output.Section(title))
	fmt.Fprintln(w)

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	tbl := output.NewTable("Name", "Products", "Quality", "Completeness", "SEO")
	for _, name := range names {
		g := groups[name]
		tbl.AddRow(name,
			fmt.Sprintf("%d", g.ProductCount),
			output.Score(g.AvgQuality),
			output.Score(g.AvgCompleteness),
			output.Score(g.AvgSEO))
	}
	tbl.Fprint(w)
}
