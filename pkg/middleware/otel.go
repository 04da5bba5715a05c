package middleware

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sextant-dev/sextant/pkg/router"
)

const defaultTracerName = "sextant"

// OTelConfig configures the OpenTelemetry navigation tracer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "sextant").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider

	// Attributes are added to every navigation span.
	Attributes []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry navigation tracer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) { c.TracerName = name }
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) { c.TracerProvider = tp }
}

// WithSpanAttributes adds constant attributes to every navigation span.
func WithSpanAttributes(attrs ...attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) { c.Attributes = attrs }
}

// OpenTelemetry returns an observer that traces navigations: one span per
// navigation id, a span event per stage, and an error status for navigations
// that end in the errored stage.
//
// The tracer uses the global tracer provider unless one is supplied;
// configure the provider in main() before constructing the router.
func OpenTelemetry(opts ...OTelOption) router.Observer {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	var mu sync.Mutex
	spans := make(map[int64]trace.Span)

	return func(ev router.Event) {
		if ev.Stage == router.StageCreated {
			attrs := append([]attribute.KeyValue{
				attribute.Int64("navigation.id", ev.ID),
				attribute.String("navigation.url", ev.URL),
			}, config.Attributes...)
			_, span := tracer.Start(context.Background(), "navigation",
				trace.WithTimestamp(ev.At),
				trace.WithAttributes(attrs...))
			mu.Lock()
			spans[ev.ID] = span
			mu.Unlock()
			return
		}

		mu.Lock()
		span, ok := spans[ev.ID]
		if ev.Stage.Terminal() {
			delete(spans, ev.ID)
		}
		mu.Unlock()
		if !ok {
			return
		}

		span.AddEvent(ev.Stage.String(), trace.WithTimestamp(ev.At))
		if !ev.Stage.Terminal() {
			return
		}

		if ev.FinalURL != "" {
			span.SetAttributes(attribute.String("navigation.final_url", ev.FinalURL))
		}
		switch ev.Stage {
		case router.StageSucceeded:
			span.SetStatus(codes.Ok, "")
		case router.StageCancelled:
			span.SetAttributes(attribute.Bool("navigation.cancelled", true))
		case router.StageErrored:
			if ev.Err != nil {
				span.RecordError(ev.Err)
				span.SetStatus(codes.Error, ev.Err.Error())
			}
		}
		span.End(trace.WithTimestamp(ev.At))
	}
}
