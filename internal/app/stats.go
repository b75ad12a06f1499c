package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/enrich"
	"github.com/blackwell-systems/contentlens/internal/output"
	"github.com/blackwell-systems/contentlens/internal/store"
	"github.com/blackwell-systems/contentlens/internal/telemetry"
)

var statsRuns int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Store, enrichment run, and counter summary",
	Long: `Summarize the local database: stored metric points, recent
enrichment runs with their score statistics, and the counters recorded
while loading them.

Examples:
  contentlens stats
  contentlens stats --runs 25 --json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRuns, "runs", 10, "Number of recent enrichment runs to include")
	rootCmd.AddCommand(statsCmd)
}

type statsOutput struct {
	Analytics  analytics.Summary  `json:"analytics"`
	Enrichment enrich.Statistics  `json:"enrichment"`
	Runs       []store.Run        `json:"runs"`
	Counters   map[string]float64 `json:"counters"`
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	svc, err := s.loadService()
	if err != nil {
		return err
	}
	runs, err := s.db.ListRuns(statsRuns)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	var results []store.RunResult
	for _, r := range runs {
		rows, err := s.db.RunResults(r.ID)
		if err != nil {
			return fmt.Errorf("loading results of run %s: %w", r.ID, err)
		}
		results = append(results, rows...)
	}
	counters, err := telemetry.Snapshot(s.registry)
	if err != nil {
		return fmt.Errorf("gathering counters: %w", err)
	}

	out := statsOutput{
		Analytics:  svc.Summary(),
		Enrichment: runStatistics(results),
		Runs:       runs,
		Counters:   counters,
	}
	if out.Runs == nil {
		out.Runs = []store.Run{}
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, out)
	}
	renderStats(w, out)
	return nil
}

// runStatistics summarizes stored run results the way Engine.Statistics
// summarizes an engine's history.
func runStatistics(results []store.RunResult) enrich.Statistics {
	stats := enrich.Statistics{AppliedPasses: make(map[enrich.PassID]int)}
	if len(results) == 0 {
		return stats
	}
	stats.TotalEnrichments = len(results)
	stats.MinScore = results[0].Score
	stats.MaxScore = results[0].Score
	sum := 0.0
	successes := 0
	for _, r := range results {
		sum += r.Score
		stats.MinScore = min(stats.MinScore, r.Score)
		stats.MaxScore = max(stats.MaxScore, r.Score)
		if r.Score >= 70 {
			successes++
		}
		for _, p := range r.Applied {
			stats.AppliedPasses[enrich.PassID(p)]++
		}
	}
	n := float64(len(results))
	stats.AverageScore = sum / n
	stats.SuccessRate = float64(successes) / n * 100
	return stats
}

func renderStats(w io.Writer, out statsOutput) {
	a := out.Analytics
	fmt.Fprintln(w, output.Section("Metric Store"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.KeyValue("Points", fmt.Sprintf("%d", a.TotalMetricsTracked)))
	fmt.Fprintln(w, output.KeyValue("Metrics", fmt.Sprintf("%d", a.UniqueMetricTypes)))
	fmt.Fprintln(w, output.KeyValue("Alerts raised", fmt.Sprintf("%d", a.AlertsTriggered)))
	fmt.Fprintln(w, output.KeyValue("Retention", fmt.Sprintf("%d days", a.RetentionDays)))

	fmt.Fprintln(w, output.Section("Enrichment"))
	fmt.Fprintln(w)
	e := out.Enrichment
	if e.TotalEnrichments == 0 {
		fmt.Fprintln(w, " "+output.StyleMuted.Render("No enrichment runs stored."))
	} else {
		fmt.Fprintln(w, output.KeyValue("Records enriched", fmt.Sprintf("%d in %d runs", e.TotalEnrichments, len(out.Runs))))
		fmt.Fprintln(w, output.KeyValue("Average score", output.Score(e.AverageScore)))
		fmt.Fprintln(w, output.KeyValue("Min / max", fmt.Sprintf("%.1f / %.1f", e.MinScore, e.MaxScore)))
		fmt.Fprintln(w, output.KeyValue("Scoring 70+", fmt.Sprintf("%.1f%%", e.SuccessRate)))
		fmt.Fprintln(w)

		tbl := output.NewTable("Started", "Source", "Products", "Succeeded", "Avg score")
		for _, r := range out.Runs {
			tbl.AddRow(r.StartedAt.Local().Format(timeLayout), r.Source,
				fmt.Sprintf("%d", r.Products),
				fmt.Sprintf("%d", r.Succeeded),
				output.Score(r.AvgScore))
		}
		tbl.Fprint(w)
	}

	keys := make([]string, 0, len(out.Counters))
	for k, v := range out.Counters {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)
	fmt.Fprintln(w, output.Section("Counters"))
	for _, k := range keys {
		fmt.Fprintf(w, " %s %s\n", output.StyleMuted.Render(k), fmt.Sprintf("%.0f", out.Counters[k]))
	}
}
