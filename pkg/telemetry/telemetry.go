// Package telemetry bundles the logger, tracer, metrics client and crash reporting used by the
// warband service.
package telemetry

import (
	"context"
	"errors"
	"io"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/argus-labs/warband/pkg/telemetry/sentry"
)

type Telemetry struct {
	Logger  zerolog.Logger
	Tracer  trace.Tracer
	Metrics *Metrics

	serviceName string
	shutdown    func(context.Context) error
}

// New builds telemetry from the WARBAND_* environment, overridden by the non-zero fields of opts.
func New(opts Options) (Telemetry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Telemetry{}, err
	}

	options := newDefaultOptions()
	cfg.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return Telemetry{}, eris.Wrap(err, "invalid telemetry options")
	}

	if err := sentry.New(options.SentryOptions); err != nil {
		return Telemetry{}, err
	}

	metrics, err := NewMetrics(options.StatsdAddress, options.ServiceName, options.MetricTags)
	if err != nil {
		return Telemetry{}, err
	}

	tracer, logger, shutdownTracer, err := setupOpenTelemetry(context.Background(), options)
	if err != nil {
		return Telemetry{}, errors.Join(err, metrics.Close())
	}

	logger.Debug().
		Str("log_format", options.LogFormat.String()).
		Bool("tracing", options.Tracing).
		Bool("statsd", options.StatsdAddress != "").
		Bool("sentry", options.SentryOptions.Dsn != "").
		Msg("telemetry initialized")

	return Telemetry{
		Logger:      logger,
		Tracer:      tracer,
		Metrics:     metrics,
		serviceName: options.ServiceName,
		shutdown: func(ctx context.Context) error {
			sentry.Shutdown(ctx, shutdownFlushTimeout)
			return errors.Join(shutdownTracer(ctx), metrics.Close())
		},
	}, nil
}

// NewNop returns telemetry that discards everything. Used by tests and by commands that do not
// run the daemon.
func NewNop(serviceName string) Telemetry {
	return Telemetry{
		Logger:      zerolog.New(io.Discard),
		Tracer:      noop.NewTracerProvider().Tracer(serviceName),
		Metrics:     NewNopMetrics(),
		serviceName: serviceName,
	}
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

// GetLogger tags the logger with component=<service>.<component>.
func (t *Telemetry) GetLogger(component string) zerolog.Logger {
	return t.Logger.With().Str("component", t.serviceName+"."+component).Logger()
}

// CaptureException reports a handled error with optional tags. No-op without a Sentry DSN.
func (t *Telemetry) CaptureException(ctx context.Context, err error, tags map[string]string) {
	sentry.CaptureException(ctx, err, tags)
}

// RecoverAndFlush must be deferred. It reports a panic to Sentry and re-raises it when repanic
// is set.
func (t *Telemetry) RecoverAndFlush(repanic bool) {
	r := recover()
	if r == nil {
		return
	}
	sentry.Report(r)
	if repanic {
		panic(r)
	}
}
