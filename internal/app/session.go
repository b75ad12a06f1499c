package app

import (
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/blackwell-systems/contentlens/internal/analytics"
	"github.com/blackwell-systems/contentlens/internal/catalog"
	"github.com/blackwell-systems/contentlens/internal/config"
	"github.com/blackwell-systems/contentlens/internal/enrich"
	"github.com/blackwell-systems/contentlens/internal/output"
	"github.com/blackwell-systems/contentlens/internal/store"
	"github.com/blackwell-systems/contentlens/internal/telemetry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// session bundles what every command needs: config, logger, counters, and
// optionally the database.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	clock    *replayClock
	db       *store.DB
}

// replayClock reports a fixed instant while persisted points are replayed
// so alerts carry the time their point was recorded. Otherwise it is the
// wall clock.
type replayClock struct {
	at time.Time
}

func (c *replayClock) Now() time.Time {
	if c.at.IsZero() {
		return time.Now()
	}
	return c.at
}

func newSession(withDB bool) (*session, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor {
		output.SetNoColor(true)
	} else {
		output.AutoColor(os.Stdout, cfg.Output.Color)
	}
	output.SetWidth(cfg.Output.Width)

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	logger, err := telemetry.NewLogger(level)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	s := &session{
		cfg:      cfg,
		log:      logger,
		registry: reg,
		metrics:  telemetry.NewMetrics(reg),
		clock:    &replayClock{},
	}

	if withDB {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			_ = logger.Sync()
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.db = db
	}
	return s, nil
}

func (s *session) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.log.Sync()
}

func (s *session) engine() *enrich.Engine {
	return enrich.NewEngine(
		enrich.WithLogger(s.log.Named("enrich")),
		enrich.WithMetrics(s.metrics),
	)
}

// service returns an empty analytics service.
func (s *session) service() *analytics.Service {
	return analytics.New(s.cfg.AnalyticsConfig(),
		analytics.WithLogger(s.log.Named("analytics")),
		analytics.WithMetrics(s.metrics),
		analytics.WithClock(s.clock.Now),
	)
}

// loadService returns a service holding every persisted point. Points are
// replayed oldest first under their own timestamps.
func (s *session) loadService() (*analytics.Service, error) {
	svc := s.service()
	if s.db == nil {
		return svc, nil
	}
	points, err := s.db.ListPoints("")
	if err != nil {
		return nil, fmt.Errorf("loading metric points: %w", err)
	}
	defer func() { s.clock.at = time.Time{} }()
	for _, p := range points {
		s.clock.at = p.Timestamp
		if _, err := svc.Track(p); err != nil {
			return nil, fmt.Errorf("replaying %s: %w", p.MetricName, err)
		}
	}
	s.log.Debug("metric points loaded", zap.Int("points", len(points)))
	return svc, nil
}

// loadRecords reads a records file and returns pointers into it.
func loadRecords(path string) ([]*catalog.ProductRecord, error) {
	records, err := catalog.LoadRecords(path)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	ptrs := make([]*catalog.ProductRecord, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}
	return ptrs, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// timeLayout is how timestamps are printed in text output.
const timeLayout = "2006-01-02 15:04"
