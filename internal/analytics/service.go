// Package analytics owns the metric time-series store and computes content,
// trend, cohort, A/B, predictive, and dashboard analytics.
package analytics

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blackwell-systems/contentlens/internal/alert"
	"github.com/blackwell-systems/contentlens/internal/telemetry"
)

// Service holds the metric store, the report cache, and the alert
// evaluator. All methods are safe for concurrent use.
type Service struct {
	cfg     Config
	alerts  *alert.Evaluator
	log     *zap.Logger
	metrics *telemetry.Metrics
	now     func() time.Time

	mu      sync.RWMutex
	store   map[string][]Point
	order   []string // metric names in first-tracked order
	reports map[string]*Report
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records tracking counters on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates an empty service.
func New(cfg Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		log:     zap.NewNop(),
		now:     time.Now,
		store:   make(map[string][]Point),
		reports: make(map[string]*Report),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.alerts = alert.NewEvaluator(cfg.AlertThresholds,
		alert.WithClock(s.now),
		alert.WithLogger(s.log),
		alert.WithMetrics(s.metrics))
	return s
}

// Alerts exposes the evaluator fed by Track.
func (s *Service) Alerts() *alert.Evaluator {
	return s.alerts
}

// Track appends p to the store and evaluates alert thresholds against it.
// A zero timestamp is stamped with the current time.
func (s *Service) Track(p Point) ([]alert.Event, error) {
	if p.MetricName == "" {
		return nil, ErrInvalidPoint
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = s.now()
	}

	s.mu.Lock()
	if _, ok := s.store[p.MetricName]; !ok {
		s.order = append(s.order, p.MetricName)
	}
	s.store[p.MetricName] = append(s.store[p.MetricName], p)
	s.mu.Unlock()

	s.metrics.PointTracked(p.MetricName)
	s.log.Debug("tracked metric", zap.String("metric", p.MetricName), zap.Float64("value", p.Value))
	return s.alerts.Evaluate(p.MetricName, p.Value), nil
}

// TrackBatch tracks points in order. Every point is checked before any is
// stored.
func (s *Service) TrackBatch(points []Point) ([]alert.Event, error) {
	for i, p := range points {
		if p.MetricName == "" {
			return nil, fmt.Errorf("point %d: %w", i, ErrInvalidPoint)
		}
	}
	var raised []alert.Event
	for _, p := range points {
		events, err := s.Track(p)
		if err != nil {
			return raised, err
		}
		raised = append(raised, events...)
	}
	s.log.Info("tracked metrics in batch", zap.Int("count", len(points)))
	return raised, nil
}

// Points returns a copy of the series for name in insertion order.
func (s *Service) Points(name string) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Point(nil), s.store[name]...)
}

// MetricNames lists tracked metric names in first-tracked order.
func (s *Service) MetricNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// pointsBetween collects points with start <= ts <= end across every
// metric, in store order.
func (s *Service) pointsBetween(start, end time.Time) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Point
	for _, name := range s.order {
		for _, p := range s.store[name] {
			if inRange(p.Timestamp, start, end) {
				out = append(out, p)
			}
		}
	}
	return out
}

func inRange(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}

// Prune drops points older than the retention window and returns how many
// were removed. Track never prunes on its own.
func (s *Service) Prune() int {
	if s.cfg.RetentionDays <= 0 {
		return 0
	}
	cutoff := s.now().AddDate(0, 0, -s.cfg.RetentionDays)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	order := s.order[:0]
	for _, name := range s.order {
		kept := s.store[name][:0]
		for _, p := range s.store[name] {
			if p.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			delete(s.store, name)
			continue
		}
		s.store[name] = kept
		order = append(order, name)
	}
	s.order = order
	if removed > 0 {
		s.log.Info("pruned metric points", zap.Int("removed", removed), zap.Time("cutoff", cutoff))
	}
	return removed
}

// Summary reports counts of tracked points, reports, and alerts.
func (s *Service) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, pts := range s.store {
		total += len(pts)
	}
	return Summary{
		TotalMetricsTracked: total,
		UniqueMetricTypes:   len(s.store),
		ReportsGenerated:    len(s.reports),
		AlertsTriggered:     s.alerts.Count(),
		EnabledMetricTypes:  append([]string{}, s.cfg.EnabledMetrics...),
		RetentionDays:       s.cfg.RetentionDays,
	}
}
