// Package app contains the Cobra command tree for contentlens.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "contentlens",
	Short: "Product content enrichment and analytics",
	Long: `contentlens scores and enriches product records, then tracks the
results as metrics. Enrichment runs and metric points are kept in a local
SQLite database so trends, dashboards, and reports survive between runs.

Run 'contentlens' with no arguments to list the subcommands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "contentlens", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  enrich      Run the enrichment pipeline over a records file")
		fmt.Fprintln(out, "  analyze     Score content quality, SEO, and completeness")
		fmt.Fprintln(out, "  cohort      Group records by a field and compare cohorts")
		fmt.Fprintln(out, "  predict     Forecast quality and list opportunities and risks")
		fmt.Fprintln(out, "  track       Record a metric point and report alerts")
		fmt.Fprintln(out, "  trend       Trend, anomaly, and forecast analysis for a metric")
		fmt.Fprintln(out, "  abtest      Compare two metrics as control and variant")
		fmt.Fprintln(out, "  dashboard   KPIs, charts, and recent alerts")
		fmt.Fprintln(out, "  report      Generate a performance report")
		fmt.Fprintln(out, "  stats       Store, enrichment run, and counter summary")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/contentlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
