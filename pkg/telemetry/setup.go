package telemetry

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const shutdownFlushTimeout = 5 * time.Second

// setupOpenTelemetry returns a tracer, a logger and the shutdown function for the exporters.
func setupOpenTelemetry(
	ctx context.Context,
	opts Options,
) (trace.Tracer, zerolog.Logger, func(context.Context) error, error) {
	logger := newLogger(opts)
	nop := func(context.Context) error { return nil }

	if !opts.Tracing {
		return noop.NewTracerProvider().Tracer(opts.ServiceName), logger, nop, nil
	}

	res, err := newResource(opts)
	if err != nil {
		return noop.NewTracerProvider().Tracer(opts.ServiceName), logger, nop, err
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(opts.Endpoint), otlptracegrpc.WithInsecure())
	if err != nil {
		return noop.NewTracerProvider().Tracer(opts.ServiceName), logger, nop,
			eris.Wrap(err, "failed to create OTLP trace exporter")
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(opts.TraceSampleRate)),
	)
	otel.SetTracerProvider(provider)

	return provider.Tracer(opts.ServiceName), logger, provider.Shutdown, nil
}

func newResource(opts Options) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(opts.ServiceName)}
	if opts.Release != "" {
		attrs = append(attrs, semconv.ServiceVersion(opts.Release))
	}
	if env := opts.SentryOptions.Environment; env != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentName(env))
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
	return res, eris.Wrap(err, "failed to build resource")
}

// newSampler samples a ratio of root spans; children follow their parent.
func newSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

func newLogger(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stdout
	if opts.LogFormat == LogFormatPretty {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Caller().
		Logger()
}
