// Package metrics exports reactive engine events as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for subscriber and cell counts.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the count histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reactive",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer is a reactive.Observer that records engine events. Like the
// runtime that feeds it, it is used from a single goroutine; the underlying
// collectors are safe to scrape concurrently.
type Observer struct {
	eventsTotal   *prometheus.CounterVec
	panicsTotal   *prometheus.CounterVec
	flushSize     prometheus.Histogram
	batchSize     prometheus.Histogram
	batchDuration prometheus.Histogram
	batchOpen     prometheus.Gauge
	cleanupsTotal prometheus.Counter

	batchStart time.Time
	now        func() time.Time
}

// New registers the engine metrics and returns an observer that updates
// them. Registering twice against the same registry panics, as with any
// promauto collector.
//
// Metrics collected:
//   - reactive_events_total: Counter of engine events by type
//   - reactive_panics_total: Counter of contained panics by tier
//   - reactive_flush_subscribers: Histogram of subscribers reached per cell flush
//   - reactive_batch_cells: Histogram of cells flushed per outermost batch
//   - reactive_batch_duration_seconds: Histogram of outermost batch duration
//   - reactive_batch_open: Gauge, 1 while a batch is open
//   - reactive_cleanups_total: Counter of owner cleanups run
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	rt := reactive.NewRuntime(reactive.WithObserver(metrics.New(metrics.WithRegistry(reg))))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of reactive engine events by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		panicsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "panics_total",
			Help:        "Total number of contained panics by tier",
			ConstLabels: config.ConstLabels,
		}, []string{"where"}),

		flushSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_subscribers",
			Help:        "Subscribers reached per cell flush",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_cells",
			Help:        "Cells flushed per outermost batch",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_duration_seconds",
			Help:        "Time from opening to flushing an outermost batch",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.DefBuckets,
		}),

		batchOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_open",
			Help:        "1 while an outermost batch is open",
			ConstLabels: config.ConstLabels,
		}),

		cleanupsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cleanups_total",
			Help:        "Total number of owner cleanup callbacks run",
			ConstLabels: config.ConstLabels,
		}),

		now: time.Now,
	}
}

// Observe implements reactive.Observer.
func (o *Observer) Observe(e reactive.Event) {
	o.eventsTotal.WithLabelValues(e.Type.String()).Inc()

	switch e.Type {
	case reactive.EventFlush:
		o.flushSize.Observe(float64(e.Count))
	case reactive.EventBatchStart:
		o.batchStart = o.now()
		o.batchOpen.Set(1)
	case reactive.EventBatchEnd:
		o.batchSize.Observe(float64(e.Count))
		if !o.batchStart.IsZero() {
			o.batchDuration.Observe(o.now().Sub(o.batchStart).Seconds())
			o.batchStart = time.Time{}
		}
		o.batchOpen.Set(0)
	case reactive.EventDispose:
		o.cleanupsTotal.Add(float64(e.Count))
	case reactive.EventPanic:
		o.panicsTotal.WithLabelValues(e.Where).Inc()
	}
}
