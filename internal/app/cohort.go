package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/output"
)

var cohortField string

var cohortCmd = &cobra.Command{
	Use:   "cohort <records.json>",
	Short: "Group records by a field and compare cohorts",
	Long: `Group the records in a JSON records file by one field and compare the
groups on quality, completeness, price, and attribute diversity.

The field is any record field (category, brand, title, ...) or
attributes.<key> to group by one attribute. Records without the field fall
into the "Unknown" cohort.

Examples:
  contentlens cohort products.json
  contentlens cohort products.json --field brand
  contentlens cohort products.json --field attributes.color`,
	Args: cobra.ExactArgs(1),
	RunE: runCohort,
}

func init() {
	cohortCmd.Flags().StringVar(&cohortField, "field", "category", "Field to group by")
	rootCmd.AddCommand(cohortCmd)
}

func runCohort(cmd *cobra.Command, args []string) error {
	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := loadRecords(args[0])
	if err != nil {
		return err
	}
	analysis, err := s.service().PerformCohortAnalysis(records, cohortField)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, analysis)
	}
	renderCohorts(w, analysis)
	return nil
}

func renderCohorts(w io.Writer, a analytics.CohortAnalysis) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Cohorts by %s (%d cohorts, %d products)", a.CohortField, a.TotalCohorts, a.TotalProducts)))
	fmt.Fprintln(w)

	names := make([]string, 0, len(a.Cohorts))
	for name := range a.Cohorts {
		names = append(names, name)
	}
	// Largest cohort first.
	sort.Slice(names, func(i, j int) bool {
		ci, cj := a.Cohorts[names[i]], a.Cohorts[names[j]]
		if ci.Size != cj.Size {
			return ci.Size > cj.Size
		}
		return names[i] < names[j]
	})

	tbl := output.NewTable("Cohort", "Size", "Share", "Quality", "Completeness", "Avg price", "Attributes")
	for _, name := range names {
		c := a.Cohorts[name]
		price := output.StyleMuted.Render("n/a")
		if c.PriceStats != nil {
			price = fmt.Sprintf("%.2f", c.PriceStats.Average)
		}
		tbl.AddRow(name,
			fmt.Sprintf("%d", c.Size),
			fmt.Sprintf("%.1f%%", c.Percentage),
			output.Score(c.AvgQualityScore),
			output.Score(c.AvgCompleteness),
			price,
			fmt.Sprintf("%d", c.AttributeDiversity))
	}
	tbl.Fprint(w)
}
