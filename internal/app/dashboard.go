package app

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/output"
)

var dashboardFrame string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "KPIs, charts, and recent alerts",
	Long: `Summarize stored metric points over a time frame (daily, weekly, or
monthly) with KPIs and per-metric series, plus the alerts and metric
activity of the last 24 hours.

Examples:
  contentlens dashboard
  contentlens dashboard --frame monthly`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardFrame, "frame", "weekly", "Time frame: daily, weekly, or monthly")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	if !slices.Contains(s.cfg.Analytics.TimeFrames, dashboardFrame) {
		return fmt.Errorf("unknown time frame %q (configured: %s)",
			dashboardFrame, strings.Join(s.cfg.Analytics.TimeFrames, ", "))
	}

	svc, err := s.loadService()
	if err != nil {
		return err
	}
	d := svc.CreateDashboardData(analytics.TimeFrame(dashboardFrame))

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, d)
	}
	renderDashboard(w, d)
	return nil
}

func renderDashboard(w io.Writer, d analytics.Dashboard) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Dashboard (%s)", d.TimeFrame)))
	fmt.Fprintln(w, " "+output.StyleMuted.Render(fmt.Sprintf("%s to %s",
		d.StartDate.Format(timeLayout), d.EndDate.Format(timeLayout))))
	fmt.Fprintln(w)

	fmt.Fprintln(w, output.KeyValue("Points", fmt.Sprintf("%d", d.KPIs.TotalMetrics)))
	if d.KPIs.TotalMetrics > 0 {
		fmt.Fprintln(w, output.KeyValue("Average", fmt.Sprintf("%.2f", d.KPIs.AverageValue)))
		fmt.Fprintln(w, output.KeyValue("Min / max", fmt.Sprintf("%.2f / %.2f", d.KPIs.MinValue, d.KPIs.MaxValue)))
	}

	if len(d.Charts) > 0 {
		fmt.Fprintln(w, output.Section("Metrics"))
		fmt.Fprintln(w)
		names := make([]string, 0, len(d.Charts))
		for name := range d.Charts {
			names = append(names, name)
		}
		sort.Strings(names)

		tbl := output.NewTable("Metric", "Points", "First", "Latest")
		for _, name := range names {
			vs := d.Charts[name].Data.Values
			tbl.AddRow(name,
				fmt.Sprintf("%d", len(vs)),
				fmt.Sprintf("%.2f", vs[0]),
				fmt.Sprintf("%.2f", vs[len(vs)-1]))
		}
		tbl.Fprint(w)
	}

	renderAlerts(w, d.Alerts)

	if len(d.RecentActivity) > 0 {
		fmt.Fprintln(w, output.Section("Last 24 hours"))
		for _, a := range d.RecentActivity {
			fmt.Fprintf(w, " %s  %s  %d points, latest %.2f\n",
				output.StyleMuted.Render(a.Timestamp.Format(timeLayout)),
				a.MetricName, a.Count, a.LatestValue)
		}
	}
}
