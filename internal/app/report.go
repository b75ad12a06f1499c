package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/output"
)

var reportDays int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a performance report",
	Long: `Generate a performance report over the stored metric points of the
last N days: per-metric insights, recommendations, and chart series.

Examples:
  contentlens report
  contentlens report --days 30 --json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "Report window in days")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportDays < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", reportDays)
	}

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	svc, err := s.loadService()
	if err != nil {
		return err
	}
	end := s.clock.Now()
	r, err := svc.GeneratePerformanceReport(end.AddDate(0, 0, -reportDays), end)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, r)
	}
	renderReport(w, r)
	return nil
}

func renderReport(w io.Writer, r *analytics.Report) {
	fmt.Fprintln(w, output.Section("Performance Report"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.KeyValue("Report", output.StyleMuted.Render(r.ReportID)))
	fmt.Fprintln(w, output.KeyValue("Period", fmt.Sprintf("%s to %s",
		r.StartDate.Format(timeLayout), r.EndDate.Format(timeLayout))))
	fmt.Fprintln(w, output.KeyValue("Granularity", string(r.TimeFrame)))
	fmt.Fprintln(w, output.KeyValue("Points", fmt.Sprintf("%d", len(r.Metrics))))

	fmt.Fprintln(w, output.Section("Insights"))
	for _, in := range r.Insights {
		fmt.Fprintf(w, " - %s\n", in)
	}
	fmt.Fprintln(w, output.Section("Recommendations"))
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, " - %s\n", rec)
	}
}
