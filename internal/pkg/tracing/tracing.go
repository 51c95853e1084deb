// Package tracing configures the global OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceName identifies this process in exported spans.
const ServiceName = "marketplace-api"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Setup installs a tracer provider that writes spans to w. When enabled is
// false the global no-op provider is kept and the returned shutdown does
// nothing.
func Setup(enabled bool, env string, w io.Writer, log zerolog.Logger) (ShutdownFunc, error) {
	if !enabled {
		log.Info().Msg("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		semconv.ServiceName(ServiceName),
		attribute.String("deployment.environment", env),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("env", env).Msg("tracing initialized")
	return tp.Shutdown, nil
}
