// Package telemetry sets up OpenTelemetry tracing for the calls pawnctl makes to the backend.
package telemetry

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// Init exports spans over OTLP/HTTP to endpoint and installs the provider and the
// trace-context propagator as the process defaults. An empty endpoint leaves the
// exporter defaults in place (OTEL_EXPORTER_OTLP_ENDPOINT, else localhost:4318).
// Shut the provider down before exit or buffered spans are lost.
func Init(ctx context.Context, service, endpoint string) (*sdktrace.TracerProvider, error) {
	exp, err := newExporter(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create exporter: %w", err)
	}
	tp := NewProvider(exp, service)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(Propagator())
	return tp, nil
}

// NewProvider batches spans from service into exp.
func NewProvider(exp sdktrace.SpanExporter, service string) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
}

// Propagator writes traceparent and baggage headers.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

func newExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	var opts []otlptracehttp.Option
	if endpoint != "" {
		u, err := url.Parse(endpoint)
		switch {
		case err == nil && u.Scheme != "":
			if u.Host == "" {
				return nil, fmt.Errorf("invalid OTLP endpoint %q", endpoint)
			}
			opts = append(opts, otlptracehttp.WithEndpoint(u.Host))
			if u.Path != "" && u.Path != "/" {
				opts = append(opts, otlptracehttp.WithURLPath(u.Path))
			}
			if u.Scheme == "http" {
				opts = append(opts, otlptracehttp.WithInsecure())
			}
		default:
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
		}
	}
	return otlptracehttp.New(ctx, opts...)
}
