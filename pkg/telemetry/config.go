package telemetry

import (
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/argus-labs/warband/pkg/telemetry/sentry"
)

// Config is read from the environment. Options passed to New take precedence over it.
type Config struct {
	LogLevel  string `env:"WARBAND_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"WARBAND_LOG_FORMAT" envDefault:"json"` // json or pretty

	// Tracing exports spans to an OTLP gRPC collector.
	Tracing         bool    `env:"WARBAND_TRACING" envDefault:"false"`
	OTLPEndpoint    string  `env:"WARBAND_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	TraceSampleRate float64 `env:"WARBAND_TRACE_SAMPLE_RATE" envDefault:"1.0"`

	// Metrics are dropped when the address is empty.
	StatsdAddress string   `env:"WARBAND_STATSD_ADDRESS"`
	MetricTags    []string `env:"WARBAND_METRIC_TAGS" envSeparator:","`

	SentryDsn   string `env:"WARBAND_SENTRY_DSN"`
	Environment string `env:"WARBAND_ENVIRONMENT" envDefault:"dev"`
	Release     string `env:"WARBAND_RELEASE"`
}

func loadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, eris.Wrap(err, "failed to parse telemetry config")
	}
	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "invalid telemetry config")
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if ParseLogFormat(cfg.LogFormat) == LogFormatUndefined {
		return eris.Errorf("invalid log format %q, want json or pretty", cfg.LogFormat)
	}
	if cfg.Tracing {
		if cfg.OTLPEndpoint == "" {
			return eris.New("OTLP endpoint cannot be empty when tracing is enabled")
		}
		if err := validateSampleRate(cfg.TraceSampleRate); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *Config) applyToOptions(opt *Options) {
	opt.LogLevel = cfg.LogLevel
	opt.LogFormat = ParseLogFormat(cfg.LogFormat)
	opt.Tracing = cfg.Tracing
	opt.Endpoint = cfg.OTLPEndpoint
	opt.TraceSampleRate = cfg.TraceSampleRate
	opt.StatsdAddress = cfg.StatsdAddress
	opt.MetricTags = cfg.MetricTags
	opt.Release = cfg.Release
	opt.SentryOptions = sentry.Options{
		Dsn:         cfg.SentryDsn,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	}
}

type Options struct {
	ServiceName string
	Release     string

	LogLevel  string
	LogFormat LogFormat

	Tracing         bool
	Endpoint        string
	TraceSampleRate float64

	StatsdAddress string
	MetricTags    []string

	SentryOptions sentry.Options
}

func newDefaultOptions() Options {
	// Left invalid so that a missing config is caught by validate.
	return Options{
		LogFormat:       LogFormatUndefined,
		TraceSampleRate: -1.0,
	}
}

// apply overrides the current options with the non-zero fields of newOpt.
func (opt *Options) apply(newOpt Options) {
	if newOpt.ServiceName != "" {
		opt.ServiceName = newOpt.ServiceName
	}
	if newOpt.Release != "" {
		opt.Release = newOpt.Release
		opt.SentryOptions.Release = newOpt.Release
	}
	if newOpt.LogLevel != "" {
		opt.LogLevel = newOpt.LogLevel
	}
	if newOpt.LogFormat != LogFormatUndefined {
		opt.LogFormat = newOpt.LogFormat
	}
	if newOpt.TraceSampleRate != 0.0 {
		opt.TraceSampleRate = newOpt.TraceSampleRate
	}
	if newOpt.StatsdAddress != "" {
		opt.StatsdAddress = newOpt.StatsdAddress
	}
	if newOpt.MetricTags != nil {
		opt.MetricTags = append(opt.MetricTags, newOpt.MetricTags...)
	}
	if newOpt.SentryOptions.Tags != nil {
		opt.SentryOptions.Tags = newOpt.SentryOptions.Tags
	}
}

func (opt *Options) validate() error {
	if opt.ServiceName == "" {
		return eris.New("service name cannot be empty")
	}
	if opt.Tracing && opt.Endpoint == "" {
		return eris.New("endpoint cannot be empty")
	}
	if err := validateLogLevel(opt.LogLevel); err != nil {
		return err
	}
	if opt.LogFormat == LogFormatUndefined {
		return eris.New("log format must be specified")
	}
	return validateSampleRate(opt.TraceSampleRate)
}

func validateLogLevel(level string) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(level)); err != nil {
		return eris.Errorf("invalid log level %q, want debug, info, warn or error", level)
	}
	return nil
}

func validateSampleRate(rate float64) error {
	if rate < 0.0 || rate > 1.0 {
		return eris.Errorf("trace sample rate %v must be between 0.0 and 1.0", rate)
	}
	return nil
}

type LogFormat uint8

const (
	LogFormatUndefined LogFormat = iota
	LogFormatJSON
	LogFormatPretty
)

func (f LogFormat) String() string {
	switch f {
	case LogFormatJSON:
		return "json"
	case LogFormatPretty:
		return "pretty"
	case LogFormatUndefined:
		return "undefined"
	default:
		return "undefined"
	}
}

// ParseLogFormat is case-insensitive. Unknown names map to LogFormatUndefined.
func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	case "pretty":
		return LogFormatPretty
	default:
		return LogFormatUndefined
	}
}
