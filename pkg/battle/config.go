package battle

import (
	"math/rand/v2"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"

	"github.com/argus-labs/warband/pkg/battle/kind"
	"github.com/argus-labs/warband/pkg/battle/oracle"
	"github.com/argus-labs/warband/pkg/battle/queue"
	"github.com/argus-labs/warband/pkg/telemetry"
)

// ObjectiveUpdateInterval is how much time must accumulate before live instances are advanced.
const ObjectiveUpdateInterval = time.Second

// defaultMaxRatingDifference is reported when no rating difference is configured.
const defaultMaxRatingDifference = 5000

// managerConfig holds the manager settings read from the environment.
type managerConfig struct {
	// Largest rating gap a rated arena pairing may span. Zero disables the periodic rated rescan.
	MaxRatingDifference uint32 `env:"WARBAND_MAX_RATING_DIFFERENCE" envDefault:"150"`

	// Period of the forced rescan of every rated arena bracket.
	RatedUpdateTimer time.Duration `env:"WARBAND_RATED_UPDATE_TIMER" envDefault:"5s"`

	// Time after which a queued rated team's rating window is widened.
	RatingDiscardTimer time.Duration `env:"WARBAND_RATING_DISCARD_TIMER" envDefault:"10m"`

	// Time a match keeps running after one side has fewer players than the minimum.
	PrematureFinishTimer time.Duration `env:"WARBAND_PREMATURE_FINISH_TIMER" envDefault:"5m"`

	// Period of the tick loop.
	TickInterval time.Duration `env:"WARBAND_TICK_INTERVAL" envDefault:"50ms"`

	// Period at which refreshable oracles reload their state.
	OracleRefreshInterval time.Duration `env:"WARBAND_ORACLE_REFRESH_INTERVAL" envDefault:"30s"`
}

func loadManagerConfig() (managerConfig, error) {
	cfg, err := env.ParseAs[managerConfig]()
	if err != nil {
		return cfg, eris.Wrap(err, "failed to parse manager config")
	}
	return cfg, nil
}

func (cfg *managerConfig) applyToOptions(opt *Options) {
	opt.MaxRatingDifference = cfg.MaxRatingDifference
	opt.RatedUpdateTimer = cfg.RatedUpdateTimer
	opt.RatingDiscardTimer = cfg.RatingDiscardTimer
	opt.PrematureFinishTimer = cfg.PrematureFinishTimer
	opt.TickInterval = cfg.TickInterval
	opt.OracleRefreshInterval = cfg.OracleRefreshInterval
}

// Options configures a Manager. Zero values keep the environment or default setting.
type Options struct {
	MaxRatingDifference   uint32
	RatedUpdateTimer      time.Duration
	RatingDiscardTimer    time.Duration
	PrematureFinishTimer  time.Duration
	TickInterval          time.Duration
	OracleRefreshInterval time.Duration

	Queues    *queue.Set
	Registry  *kind.Registry
	Disabler  oracle.Disabler
	Holidays  oracle.Holidays
	Rand      *rand.Rand
	Telemetry *telemetry.Telemetry
}

func newDefaultOptions() Options {
	return Options{
		Registry: kind.DefaultRegistry(),
		Disabler: oracle.NewStatic(),
		Holidays: oracle.NewStatic(),
	}
}

// apply merges the given options into the current options, overriding non-zero values.
func (opt *Options) apply(newOpt Options) {
	if newOpt.MaxRatingDifference != 0 {
		opt.MaxRatingDifference = newOpt.MaxRatingDifference
	}
	if newOpt.RatedUpdateTimer != 0 {
		opt.RatedUpdateTimer = newOpt.RatedUpdateTimer
	}
	if newOpt.RatingDiscardTimer != 0 {
		opt.RatingDiscardTimer = newOpt.RatingDiscardTimer
	}
	if newOpt.PrematureFinishTimer != 0 {
		opt.PrematureFinishTimer = newOpt.PrematureFinishTimer
	}
	if newOpt.TickInterval != 0 {
		opt.TickInterval = newOpt.TickInterval
	}
	if newOpt.OracleRefreshInterval != 0 {
		opt.OracleRefreshInterval = newOpt.OracleRefreshInterval
	}
	if newOpt.Queues != nil {
		opt.Queues = newOpt.Queues
	}
	if newOpt.Registry != nil {
		opt.Registry = newOpt.Registry
	}
	if newOpt.Disabler != nil {
		opt.Disabler = newOpt.Disabler
	}
	if newOpt.Holidays != nil {
		opt.Holidays = newOpt.Holidays
	}
	if newOpt.Rand != nil {
		opt.Rand = newOpt.Rand
	}
	if newOpt.Telemetry != nil {
		opt.Telemetry = newOpt.Telemetry
	}
}

func (opt *Options) validate() error {
	if opt.TickInterval <= 0 {
		return eris.New("tick interval must be positive")
	}
	if opt.OracleRefreshInterval <= 0 {
		return eris.New("oracle refresh interval must be positive")
	}
	if opt.RatedUpdateTimer < 0 {
		return eris.New("rated update timer cannot be negative")
	}
	return nil
}
