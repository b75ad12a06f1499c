package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blackwell-systems/contentlens/internal/alert"
	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/output"
)

var (
	trackDimensions map[string]string
	trackMetadata   map[string]string
)

var trackCmd = &cobra.Command{
	Use:   "track <metric> <value>",
	Short: "Record a metric point and report alerts",
	Long: `Append one metric point to the local database and check it against
the configured alert thresholds (analytics.alert_thresholds).

Points older than analytics.retention_days are pruned on every call.

Examples:
  contentlens track conversion_rate 3.2
  contentlens track page_views 1840 --dim channel=amazon --dim category=Electronics`,
	Args: cobra.ExactArgs(2),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringToStringVar(&trackDimensions, "dim", nil, "Dimension key=value (repeatable)")
	trackCmd.Flags().StringToStringVar(&trackMetadata, "meta", nil, "Metadata key=value (repeatable)")
	rootCmd.AddCommand(trackCmd)
}

type trackOutput struct {
	Point  analytics.Point `json:"point"`
	Alerts []alert.Event   `json:"alerts"`
	Pruned int64           `json:"pruned"`
}

func runTrack(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[1], err)
	}

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	now := s.clock.Now()
	out := trackOutput{Alerts: []alert.Event{}}
	if days := s.cfg.Analytics.RetentionDays; days > 0 {
		out.Pruned, err = s.db.PruneMetricPoints(now.AddDate(0, 0, -days))
		if err != nil {
			return fmt.Errorf("pruning metric points: %w", err)
		}
		if out.Pruned > 0 {
			s.log.Info("pruned metric points", zap.Int64("removed", out.Pruned), zap.Int("retention_days", days))
		}
	}

	out.Point = analytics.Point{
		MetricName: args[0],
		Value:      value,
		Timestamp:  now,
		Dimensions: trackDimensions,
		Metadata:   trackMetadata,
	}
	events, err := s.service().Track(out.Point)
	if err != nil {
		return err
	}
	out.Alerts = append(out.Alerts, events...)
	if err := s.db.InsertPoints([]analytics.Point{out.Point}); err != nil {
		return fmt.Errorf("saving metric point: %w", err)
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, out)
	}
	fmt.Fprintf(w, " %s %s = %s\n",
		output.StyleSuccess.Render("tracked"),
		output.StyleBold.Render(out.Point.MetricName),
		strconv.FormatFloat(value, 'f', -1, 64))
	if out.Pruned > 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(fmt.Sprintf(" pruned %d points past retention", out.Pruned)))
	}
	renderAlerts(w, out.Alerts)
	return nil
}
