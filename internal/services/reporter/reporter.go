// Package reporter drains a go-metrics registry into a metric sink,
// flattening each metric kind into its fixed set of named fields.
package reporter

import (
	"context"
	"maps"
	"slices"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"go.uber.org/zap"

	"github.com/ashmarkin/colmetra/internal/ports"
)

// Reporter runs one reporting pass at a time over a registry. Scheduling
// is the caller's job; passes must not overlap.
type Reporter struct {
	registry metrics.Registry
	sink     ports.MetricSink
	log      *zap.Logger

	prefix       string
	filter       func(name string) bool
	rateUnit     time.Duration
	durationUnit time.Duration
	clock        func() time.Time
	timerM15     bool
}

// Option adjusts reporter behavior.
type Option func(*Reporter)

// WithPrefix prepends a dot-joined prefix to every emitted field name.
func WithPrefix(p string) Option {
	return func(r *Reporter) { r.prefix = p }
}

// WithFilter restricts reporting to metrics whose name the predicate accepts.
func WithFilter(f func(name string) bool) Option {
	return func(r *Reporter) { r.filter = f }
}

// WithRateUnit sets the time unit rates are converted to (default per second).
func WithRateUnit(u time.Duration) Option {
	return func(r *Reporter) { r.rateUnit = u }
}

// WithDurationUnit sets the time unit timer durations are converted to
// (default milliseconds).
func WithDurationUnit(u time.Duration) Option {
	return func(r *Reporter) { r.durationUnit = u }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.clock = now }
}

// WithoutM15Rate drops the m15_rate field from timers for downstream
// readers that expect the narrower historical contract.
func WithoutM15Rate() Option {
	return func(r *Reporter) { r.timerM15 = false }
}

// New wires a registry to a sink. Defaults: no prefix, no filter, rates
// per second, durations in milliseconds, wall-clock timestamps.
func New(reg metrics.Registry, sink ports.MetricSink, log *zap.Logger, opts ...Option) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Reporter{
		registry:     reg,
		sink:         sink,
		log:          log,
		rateUnit:     time.Second,
		durationUnit: time.Millisecond,
		clock:        time.Now,
		timerM15:     true,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Report performs one pass: snapshot the registry, send every flattened
// field, flush the batch. The connection is released when the pass ends,
// so the next pass starts a fresh connect cycle. Aborts on the first
// storage error.
func (r *Reporter) Report(ctx context.Context) error {
	ts := r.clock()
	snap := r.collect()
	defer r.sink.Close()

	if err := r.sink.Connect(ctx); err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(snap.gauges)) {
		if err := r.reportGauge(ctx, name, snap.gauges[name], ts); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(snap.counters)) {
		if err := r.reportCounter(ctx, name, snap.counters[name], ts); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(snap.histograms)) {
		if err := r.reportHistogram(ctx, name, snap.histograms[name], ts); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(snap.meters)) {
		if err := r.reportMetered(ctx, name, snap.meters[name], ts, true); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(snap.timers)) {
		if err := r.reportTimer(ctx, name, snap.timers[name], ts); err != nil {
			return err
		}
	}

	return r.sink.Flush(ctx)
}

type registrySnapshot struct {
	gauges     map[string]any
	counters   map[string]metrics.Counter
	histograms map[string]metrics.Histogram
	meters     map[string]metrics.Meter
	timers     map[string]metrics.Timer
}

func (r *Reporter) collect() registrySnapshot {
	snap := registrySnapshot{
		gauges:     map[string]any{},
		counters:   map[string]metrics.Counter{},
		histograms: map[string]metrics.Histogram{},
		meters:     map[string]metrics.Meter{},
		timers:     map[string]metrics.Timer{},
	}
	r.registry.Each(func(name string, m any) {
		if r.filter != nil && !r.filter(name) {
			return
		}
		switch v := m.(type) {
		case metrics.Counter:
			snap.counters[name] = v.Snapshot()
		case metrics.Histogram:
			snap.histograms[name] = v.Snapshot()
		case metrics.Meter:
			snap.meters[name] = v.Snapshot()
		case metrics.Timer:
			snap.timers[name] = v.Snapshot()
		default:
			// Gauges and anything else a custom registry may carry;
			// coercion decides at emission time.
			snap.gauges[name] = m
		}
	})
	return snap
}

func (r *Reporter) reportGauge(ctx context.Context, name string, m any, ts time.Time) error {
	v := coerceGauge(m)
	if !v.ok() {
		r.log.Debug("skipping non-numeric gauge", zap.String("metric", name))
		return nil
	}
	return r.send(ctx, name, "gauge", v.float64(), ts)
}

func (r *Reporter) reportCounter(ctx context.Context, name string, c metrics.Counter, ts time.Time) error {
	return r.send(ctx, name, "count", float64(c.Count()), ts)
}

func (r *Reporter) reportHistogram(ctx context.Context, name string, h metrics.Histogram, ts time.Time) error {
	ps := h.Percentiles(percentiles)
	fields := []field{
		{"count", float64(h.Count())},
		{"max", float64(h.Max())},
		{"mean", h.Mean()},
		{"min", float64(h.Min())},
		{"stddev", h.StdDev()},
		{"p50", ps[0]},
		{"p75", ps[1]},
		{"p95", ps[2]},
		{"p98", ps[3]},
		{"p99", ps[4]},
		{"p999", ps[5]},
	}
	return r.sendAll(ctx, name, fields, ts)
}

// metered is the rate surface shared by meters and timers.
type metered interface {
	Count() int64
	Rate1() float64
	Rate5() float64
	Rate15() float64
	RateMean() float64
}

func (r *Reporter) reportMetered(ctx context.Context, name string, m metered, ts time.Time, withM15 bool) error {
	fields := []field{
		{"count", float64(m.Count())},
		{"m1_rate", r.convertRate(m.Rate1())},
		{"m5_rate", r.convertRate(m.Rate5())},
	}
	if withM15 {
		fields = append(fields, field{"m15_rate", r.convertRate(m.Rate15())})
	}
	fields = append(fields, field{"mean_rate", r.convertRate(m.RateMean())})
	return r.sendAll(ctx, name, fields, ts)
}

func (r *Reporter) reportTimer(ctx context.Context, name string, t metrics.Timer, ts time.Time) error {
	ps := t.Percentiles(percentiles)
	fields := []field{
		{"max", r.convertDuration(float64(t.Max()))},
		{"mean", r.convertDuration(t.Mean())},
		{"min", r.convertDuration(float64(t.Min()))},
		{"stddev", r.convertDuration(t.StdDev())},
		{"p50", r.convertDuration(ps[0])},
		{"p75", r.convertDuration(ps[1])},
		{"p95", r.convertDuration(ps[2])},
		{"p98", r.convertDuration(ps[3])},
		{"p99", r.convertDuration(ps[4])},
		{"p999", r.convertDuration(ps[5])},
	}
	if err := r.sendAll(ctx, name, fields, ts); err != nil {
		return err
	}
	return r.reportMetered(ctx, name, t, ts, r.timerM15)
}

var percentiles = []float64{0.5, 0.75, 0.95, 0.98, 0.99, 0.999}

type field struct {
	suffix string
	value  float64
}

func (r *Reporter) sendAll(ctx context.Context, name string, fields []field, ts time.Time) error {
	for _, f := range fields {
		if err := r.send(ctx, name, f.suffix, f.value, ts); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) send(ctx context.Context, name, suffix string, value float64, ts time.Time) error {
	return r.sink.Send(ctx, joinName(r.prefix, name, suffix), value, ts)
}

func (r *Reporter) convertRate(v float64) float64 {
	return v * r.rateUnit.Seconds()
}

func (r *Reporter) convertDuration(v float64) float64 {
	return v / float64(r.durationUnit)
}
