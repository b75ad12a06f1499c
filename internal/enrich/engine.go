package enrich

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/contentlens/internal/catalog"
	"github.com/blackwell-systems/contentlens/internal/telemetry"
)

// Env is what a stage sees besides the record.
type Env struct {
	Config *Config
	Now    time.Time
}

// Outcome is the incremental output of one stage.
type Outcome struct {
	Metrics     map[string]float64
	Suggestions []string
}

func (o *Outcome) metric(name string, v float64) {
	if o.Metrics == nil {
		o.Metrics = make(map[string]float64)
	}
	o.Metrics[name] = v
}

func (o *Outcome) suggest(format string, args ...any) {
	o.Suggestions = append(o.Suggestions, fmt.Sprintf(format, args...))
}

// Stage transforms a working copy of a record in place. A stage that returns
// an error has its writes discarded.
type Stage interface {
	ID() PassID
	Apply(rec *catalog.ProductRecord, env Env) (Outcome, error)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	Pass PassID
	Fn   func(rec *catalog.ProductRecord, env Env) (Outcome, error)
}

func (s StageFunc) ID() PassID { return s.Pass }

func (s StageFunc) Apply(rec *catalog.ProductRecord, env Env) (Outcome, error) {
	return s.Fn(rec, env)
}

// ErrUnknownPass is reported for enabled pass IDs with no registered stage.
var ErrUnknownPass = errors.New("unknown enrichment pass")

// PassFailure records a stage that failed for one record.
type PassFailure struct {
	Pass PassID
	Err  error
}

func (f *PassFailure) Error() string {
	return fmt.Sprintf("Failed to apply %s: %v", f.Pass, f.Err)
}

func (f *PassFailure) Unwrap() error {
	return f.Err
}

// Engine holds the stage registry and the enrichment history.
type Engine struct {
	stages  map[PassID]Stage
	log     *zap.Logger
	metrics *telemetry.Metrics
	now     func() time.Time

	mu      sync.Mutex
	history []*Result
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics records enrichment counters on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine with all built-in stages registered.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		stages: make(map[PassID]Stage),
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, s := range []Stage{
		seoStage{},
		contentStage{},
		channelStage{},
		qualityStage{},
		categorizationStage{},
	} {
		e.Register(s)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds or replaces the stage for s.ID().
func (e *Engine) Register(s Stage) {
	e.stages[s.ID()] = s
}

// Enrich runs the enabled passes in order over a copy of rec. The only
// error is a validation failure; stage failures become suggestions.
func (e *Engine) Enrich(rec *catalog.ProductRecord, cfg Config) (*Result, error) {
	if err := rec.Validate(); err != nil {
		e.metrics.EnrichmentDone("invalid", 0)
		return nil, err
	}

	e.log.Info("enrichment started", zap.String("product_id", rec.ID))
	now := e.now()
	env := Env{Config: &cfg, Now: now}

	working := rec.Clone()
	working.Normalize()

	res := &Result{
		Original:       rec,
		QualityMetrics: make(map[string]float64),
		Suggestions:    []string{},
		Timestamp:      now,
	}

	for _, id := range cfg.passes() {
		next, out, err := e.runStage(id, working, env)
		if err != nil {
			failure := &PassFailure{Pass: id, Err: err}
			e.log.Error("enrichment pass failed",
				zap.String("product_id", rec.ID),
				zap.String("pass", string(id)),
				zap.Error(err))
			e.metrics.PassFailed(string(id))
			res.Suggestions = append(res.Suggestions, failure.Error())
			continue
		}
		working = next
		for k, v := range out.Metrics {
			res.QualityMetrics[k] = v
		}
		res.Suggestions = append(res.Suggestions, out.Suggestions...)
		res.AppliedEnrichments = append(res.AppliedEnrichments, id)
	}

	res.Enriched = working
	res.EnrichmentScore = Score(rec, &working, res.QualityMetrics)

	e.mu.Lock()
	e.history = append(e.history, res)
	e.mu.Unlock()

	e.metrics.EnrichmentDone("success", res.EnrichmentScore)
	e.log.Info("enrichment completed",
		zap.String("product_id", rec.ID),
		zap.Float64("score", res.EnrichmentScore))
	return res, nil
}

// runStage applies one stage to a clone of working so a failure leaves the
// pipeline state untouched. Panics are reported as errors.
func (e *Engine) runStage(id PassID, working catalog.ProductRecord, env Env) (next catalog.ProductRecord, out Outcome, err error) {
	stage, ok := e.stages[id]
	if !ok {
		return working, Outcome{}, ErrUnknownPass
	}
	next = working.Clone()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	out, err = stage.Apply(&next, env)
	return next, out, err
}

// EnrichBatch enriches records with at most cfg.Concurrency in flight.
// Results keep input order; records that fail validation are logged and
// left out.
func (e *Engine) EnrichBatch(ctx context.Context, recs []*catalog.ProductRecord, cfg Config) ([]*Result, error) {
	e.log.Info("batch enrichment started", zap.Int("products", len(recs)))

	slots := make([]*Result, len(recs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency())

	for i, rec := range recs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.Enrich(rec, cfg)
			if err != nil {
				id := ""
				if rec != nil {
					id = rec.ID
				}
				e.log.Warn("skipping record", zap.Int("index", i), zap.String("product_id", id), zap.Error(err))
				return nil
			}
			slots[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enriching batch: %w", err)
	}

	results := make([]*Result, 0, len(recs))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	e.log.Info("batch enrichment completed",
		zap.Int("succeeded", len(results)),
		zap.Int("total", len(recs)))
	return results, nil
}

// History returns a copy of the enrichment history in completion order.
func (e *Engine) History() []*Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Result(nil), e.history...)
}

// Statistics summarizes every enrichment this engine has produced.
func (e *Engine) Statistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := Statistics{AppliedPasses: make(map[PassID]int)}
	if len(e.history) == 0 {
		return stats
	}

	stats.TotalEnrichments = len(e.history)
	stats.MinScore = e.history[0].EnrichmentScore
	stats.MaxScore = e.history[0].EnrichmentScore
	sum := 0.0
	successes := 0
	for _, r := range e.history {
		s := r.EnrichmentScore
		sum += s
		stats.MinScore = min(stats.MinScore, s)
		stats.MaxScore = max(stats.MaxScore, s)
		if s >= 70 {
			successes++
		}
		for _, p := range r.AppliedEnrichments {
			stats.AppliedPasses[p]++
		}
	}
	n := float64(len(e.history))
	stats.AverageScore = sum / n
	stats.SuccessRate = float64(successes) / n * 100
	return stats
}

// Score computes the enrichment score: the mean of metrics whose name
// contains "quality" or "score" (50 when there are none), plus bonuses.
//
// Bonuses:
//   - Title changed:            +10
//   - Description changed:      +15
//   - New attributes:           +2 each, max 20
//   - Category changed (set):   +5
func Score(original, enriched *catalog.ProductRecord, metrics map[string]float64) float64 {
	names := make([]string, 0, len(metrics))
	for k := range metrics {
		if strings.Contains(k, "quality") || strings.Contains(k, "score") {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	base := 50.0
	if len(names) > 0 {
		sum := 0.0
		for _, k := range names {
			sum += metrics[k]
		}
		base = sum / float64(len(names))
	}

	bonus := 0.0
	if enriched.Title != original.Title {
		bonus += 10
	}
	if enriched.Description != original.Description {
		bonus += 15
	}
	if added := len(enriched.Attributes) - len(original.Attributes); added > 0 {
		bonus += min(20, float64(added)*2)
	}
	if enriched.Category != original.Category && enriched.Category != "" {
		bonus += 5
	}
	return min(100, base+bonus)
}
