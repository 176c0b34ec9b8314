// Package tracing reports reactive engine activity as OpenTelemetry spans:
// one span per outermost batch, with span events for the work done inside.
package tracing

import (
	"context"
	"fmt"

	"github.com/vango-dev/reactive/pkg/reactive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for reactive runtimes.
const defaultTracerName = "reactive"

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer (default: "reactive").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// Parent is the context batch spans are started from.
	// Default: context.Background().
	Parent context.Context

	// Filter decides which events inside a batch become span events.
	// If nil, flushes, recomputes and deliveries are recorded.
	Filter func(reactive.Event) bool
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithParent sets the context batch spans are children of.
func WithParent(ctx context.Context) Option {
	return func(c *Config) {
		c.Parent = ctx
	}
}

// WithEventFilter sets the span event filter.
func WithEventFilter(filter func(reactive.Event) bool) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

func defaultFilter(e reactive.Event) bool {
	switch e.Type {
	case reactive.EventFlush, reactive.EventRecompute, reactive.EventDelivery:
		return true
	}
	return false
}

// Observer is a reactive.Observer that traces batches. It must only be fed
// by one runtime.
type Observer struct {
	tracer trace.Tracer
	parent context.Context
	filter func(reactive.Event) bool

	span trace.Span
}

// New creates a tracing observer.
//
// The observer:
//   - Starts a "reactive.batch" span when a batch opens and ends it after the flush
//   - Records flushes, recomputes and deliveries as span events
//   - Records contained panics as errors, in a span of their own outside batches
//
// Example:
//
//	rt := reactive.NewRuntime(reactive.WithObserver(tracing.New(
//	    tracing.WithTracerName("checkout"),
//	)))
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	if config.Parent == nil {
		config.Parent = context.Background()
	}
	if config.Filter == nil {
		config.Filter = defaultFilter
	}
	return &Observer{
		tracer: config.Provider.Tracer(config.TracerName),
		parent: config.Parent,
		filter: config.Filter,
	}
}

// Observe implements reactive.Observer.
func (o *Observer) Observe(e reactive.Event) {
	switch e.Type {
	case reactive.EventBatchStart:
		o.startBatch(e)
	case reactive.EventBatchEnd:
		o.endBatch(e)
	case reactive.EventPanic:
		o.recordPanic(e)
	default:
		if o.span != nil && o.filter(e) {
			o.span.AddEvent(e.Type.String(), trace.WithAttributes(nodeAttributes(e)...))
		}
	}
}

func (o *Observer) startBatch(e reactive.Event) {
	if o.span != nil {
		o.span.End()
	}
	attrs := []attribute.KeyValue{}
	if e.Name != "" {
		attrs = append(attrs, attribute.String("reactive.batch", e.Name))
	}
	_, o.span = o.tracer.Start(o.parent, "reactive.batch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func (o *Observer) endBatch(e reactive.Event) {
	if o.span == nil {
		return
	}
	o.span.SetAttributes(attribute.Int("reactive.flushed_cells", e.Count))
	o.span.End()
	o.span = nil
}

func (o *Observer) recordPanic(e reactive.Event) {
	err := fmt.Errorf("reactive: %s panic: %v", e.Where, e.Panic)
	attrs := append(nodeAttributes(e), attribute.String("reactive.where", e.Where))

	span := o.span
	if span == nil {
		_, span = o.tracer.Start(o.parent, "reactive.panic", trace.WithAttributes(attrs...))
		defer span.End()
	}
	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

func nodeAttributes(e reactive.Event) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if e.Node != 0 {
		attrs = append(attrs, attribute.Int64("reactive.node", int64(e.Node)))
	}
	if e.Name != "" {
		attrs = append(attrs, attribute.String("reactive.name", e.Name))
	}
	if e.Kind != 0 {
		attrs = append(attrs, attribute.String("reactive.kind", e.Kind.String()))
	}
	if e.Count != 0 {
		attrs = append(attrs, attribute.Int("reactive.count", e.Count))
	}
	return attrs
}
