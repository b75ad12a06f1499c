// Package alert raises threshold alerts on tracked metric values.
package alert

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blackwell-systems/contentlens/internal/telemetry"
)

// Severity levels.
const (
	Warning  = "warning"
	Critical = "critical"
)

// Event is one triggered alert.
type Event struct {
	Time       time.Time `json:"timestamp"`
	MetricName string    `json:"metric_name"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	Severity   string    `json:"severity"`
}

// Evaluator matches metric names against configured thresholds and keeps
// every event it raises. It is safe for concurrent use.
type Evaluator struct {
	names      []string
	thresholds map[string]float64
	now        func() time.Time
	log        *zap.Logger
	metrics    *telemetry.Metrics

	mu      sync.RWMutex
	history []Event
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithLogger sets the logger that reports triggered alerts.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) { e.log = l }
}

// WithMetrics counts triggered alerts by severity.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// NewEvaluator creates an evaluator for thresholds, keyed by a substring of
// the metric names they apply to.
func NewEvaluator(thresholds map[string]float64, opts ...Option) *Evaluator {
	e := &Evaluator{
		thresholds: make(map[string]float64, len(thresholds)),
		now:        time.Now,
		log:        zap.NewNop(),
	}
	for name, v := range thresholds {
		e.thresholds[name] = v
		e.names = append(e.names, name)
	}
	sort.Strings(e.names)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate checks value against every threshold whose name is a substring
// of metric. A value below the threshold raises an event: "warning" when it
// is above 80% of the threshold, "critical" otherwise. One value can raise
// several events.
func (e *Evaluator) Evaluate(metric string, value float64) []Event {
	var raised []Event
	for _, name := range e.names {
		if !strings.Contains(metric, name) {
			continue
		}
		threshold := e.thresholds[name]
		if value >= threshold {
			continue
		}
		ev := Event{
			Time:       e.now(),
			MetricName: metric,
			Value:      value,
			Threshold:  threshold,
			Severity:   severity(value, threshold),
		}
		raised = append(raised, ev)
		e.log.Warn("alert triggered",
			zap.String("metric", metric),
			zap.Float64("value", value),
			zap.Float64("threshold", threshold),
			zap.String("severity", ev.Severity))
		e.metrics.AlertRaised(ev.Severity)
	}
	if len(raised) > 0 {
		e.mu.Lock()
		e.history = append(e.history, raised...)
		e.mu.Unlock()
	}
	return raised
}

func severity(value, threshold float64) string {
	if value > threshold*0.8 {
		return Warning
	}
	return Critical
}

// Recent returns events stamped after since, oldest first.
func (e *Evaluator) Recent(since time.Time) []Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := []Event{}
	for _, ev := range e.history {
		if ev.Time.After(since) {
			out = append(out, ev)
		}
	}
	return out
}

// Count is the number of events raised so far.
func (e *Evaluator) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.history)
}

// Thresholds returns a copy of the configured thresholds.
func (e *Evaluator) Thresholds() map[string]float64 {
	out := make(map[string]float64, len(e.thresholds))
	for k, v := range e.thresholds {
		out[k] = v
	}
	return out
}
