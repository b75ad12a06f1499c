package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/contentlens/internal/alert"
	"github.com/blackwell-systems/contentlens/internal/enrich"
	"github.com/blackwell-systems/contentlens/internal/output"
	"github.com/blackwell-systems/contentlens/internal/store"
)

var (
	enrichPasses      []string
	enrichKeywords    []string
	enrichNoStore     bool
	enrichSuggestions bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <records.json>",
	Short: "Run the enrichment pipeline over a records file",
	Long: `Run the configured enrichment passes over every record in a JSON
records file and print the resulting scores.

The run, its per-record results, and the enrichment metric points are
stored so later trend, dashboard, and report commands can use them.

Examples:
  contentlens enrich products.json
  contentlens enrich products.json --passes seo_optimization,quality_scoring
  contentlens enrich products.json --keywords wireless,portable --suggestions`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().StringSliceVar(&enrichPasses, "passes", nil, "Passes to run, in order (default: enrichment.enabled_passes)")
	enrichCmd.Flags().StringSliceVar(&enrichKeywords, "keywords", nil, "SEO keywords (default: enrichment.seo_keywords)")
	enrichCmd.Flags().BoolVar(&enrichNoStore, "no-store", false, "Do not persist the run or its metric points")
	enrichCmd.Flags().BoolVar(&enrichSuggestions, "suggestions", false, "Print suggestions for each record")
	rootCmd.AddCommand(enrichCmd)
}

type enrichOutput struct {
	RunID   string           `json:"run_id,omitempty"`
	Source  string           `json:"source"`
	Total   int              `json:"total_products"`
	Results []*enrich.Result `json:"results"`
	Alerts  []alert.Event    `json:"alerts"`
}

func runEnrich(cmd *cobra.Command, args []string) error {
	s, err := newSession(!enrichNoStore)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := loadRecords(args[0])
	if err != nil {
		return err
	}
	if limit := s.cfg.Batch.MaxSize; len(records) > limit {
		return fmt.Errorf("batch of %d records exceeds batch.max_size %d", len(records), limit)
	}

	cfg := s.cfg.EnrichConfig()
	if len(enrichPasses) > 0 {
		cfg.EnabledPasses = make([]enrich.PassID, len(enrichPasses))
		for i, p := range enrichPasses {
			cfg.EnabledPasses[i] = enrich.PassID(strings.TrimSpace(p))
		}
	}
	if len(enrichKeywords) > 0 {
		cfg.SEOKeywords = enrichKeywords
	}

	started := s.clock.Now()
	results, err := s.engine().EnrichBatch(cmd.Context(), records, cfg)
	if err != nil {
		return err
	}

	points := enrich.BatchTrackingPoints(results, started)
	for _, r := range results {
		points = append(points, enrich.TrackingPoints(r)...)
	}
	alerts, err := s.service().TrackBatch(points)
	if err != nil {
		return fmt.Errorf("tracking enrichment metrics: %w", err)
	}

	out := enrichOutput{
		Source:  args[0],
		Total:   len(records),
		Results: results,
		Alerts:  alerts,
	}
	if s.db != nil {
		run, rows := newRun(args[0], started, len(records), cfg, results)
		if err := s.db.CreateRun(run, rows); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		if err := s.db.InsertPoints(points); err != nil {
			return fmt.Errorf("saving metric points: %w", err)
		}
		out.RunID = run.ID
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, out)
	}
	renderEnrich(w, out)
	return nil
}

// newRun converts batch results into the rows CreateRun stores.
func newRun(source string, started time.Time, total int, cfg enrich.Config, results []*enrich.Result) (*store.Run, []store.RunResult) {
	passes := make([]string, len(cfg.EnabledPasses))
	for i, p := range cfg.EnabledPasses {
		passes[i] = string(p)
	}
	if len(passes) == 0 {
		for _, p := range enrich.DefaultPasses {
			passes = append(passes, string(p))
		}
	}

	run := &store.Run{
		StartedAt: started,
		Source:    source,
		Products:  total,
		Succeeded: len(results),
		Passes:    passes,
	}
	rows := make([]store.RunResult, len(results))
	sum := 0.0
	for i, r := range results {
		applied := make([]string, len(r.AppliedEnrichments))
		for j, p := range r.AppliedEnrichments {
			applied[j] = string(p)
		}
		rows[i] = store.RunResult{
			ProductID:   r.Enriched.ID,
			Score:       r.EnrichmentScore,
			Applied:     applied,
			Suggestions: r.Suggestions,
		}
		sum += r.EnrichmentScore
	}
	if len(results) > 0 {
		run.AvgScore = sum / float64(len(results))
	}
	return run, rows
}

func renderEnrich(w io.Writer, out enrichOutput) {
	fmt.Fprintln(w, output.Section(fmt.Sprintf("Enrichment: %s", out.Source)))
	fmt.Fprintln(w)

	tbl := output.NewTable("Product", "Score", "Passes", "Suggestions")
	sum := 0.0
	for _, r := range out.Results {
		tbl.AddRow(
			r.Enriched.ID,
			output.ScoreBar(r.EnrichmentScore, 20),
			fmt.Sprintf("%d", len(r.AppliedEnrichments)),
			fmt.Sprintf("%d", len(r.Suggestions)),
		)
		sum += r.EnrichmentScore
	}
	tbl.Fprint(w)
	fmt.Fprintln(w)

	fmt.Fprintln(w, output.KeyValue("Records enriched", fmt.Sprintf("%d of %d", len(out.Results), out.Total)))
	if len(out.Results) > 0 {
		fmt.Fprintln(w, output.KeyValue("Average score", output.Score(sum/float64(len(out.Results)))))
	}
	if out.RunID != "" {
		fmt.Fprintln(w, output.KeyValue("Run", output.StyleMuted.Render(out.RunID)))
	}

	if enrichSuggestions {
		for _, r := range out.Results {
			if len(r.Suggestions) == 0 {
				continue
			}
			fmt.Fprintln(w, output.Section(r.Enriched.ID))
			for _, sug := range r.Suggestions {
				fmt.Fprintf(w, " - %s\n", sug)
			}
		}
	}
	renderAlerts(w, out.Alerts)
}

func renderAlerts(w io.Writer, events []alert.Event) {
	if len(events) == 0 {
		return
	}
	fmt.Fprintln(w, output.Section("Alerts"))
	for _, e := range events {
		fmt.Fprintf(w, " %s  %s = %.2f (threshold %.2f)\n",
			output.Severity(e.Severity), e.MetricName, e.Value, e.Threshold)
	}
}
