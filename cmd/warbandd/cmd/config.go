package cmd

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/argus-labs/warband/pkg/battle/catalog"
)

const (
	sourceFile  = "file"
	sourceRedis = "redis"
	sourceMongo = "mongo"

	connectTimeout = 10 * time.Second
)

type daemonConfig struct {
	// Where template rows are read from: file, redis or mongo.
	TemplateSource string `env:"WARBAND_TEMPLATE_SOURCE" envDefault:"file"`

	TemplateFile  string `env:"WARBAND_TEMPLATE_FILE" envDefault:"data/templates.json"`
	WorldDataFile string `env:"WARBAND_WORLD_DATA_FILE" envDefault:"data/world.json"`

	// Also enables the Redis backed disabled-kind and holiday oracle.
	RedisAddress  string `env:"WARBAND_REDIS_ADDRESS"`
	RedisPassword string `env:"WARBAND_REDIS_PASSWORD"`

	MongoURI      string `env:"WARBAND_MONGO_URI"`
	MongoDatabase string `env:"WARBAND_MONGO_DATABASE" envDefault:"world"`
}

func loadDaemonConfig() (daemonConfig, error) {
	cfg, err := env.ParseAs[daemonConfig]()
	if err != nil {
		return daemonConfig{}, eris.Wrap(err, "failed to parse daemon config")
	}
	return cfg, nil
}

// bindFlags lets flags override the environment. Flags left unset keep the env value.
func (cfg *daemonConfig) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if v, err := flags.GetString(flagSource); err == nil && v != "" {
		cfg.TemplateSource = v
	}
	if v, err := flags.GetString(flagTemplates); err == nil && v != "" {
		cfg.TemplateFile = v
	}
	if v, err := flags.GetString(flagWorld); err == nil && v != "" {
		cfg.WorldDataFile = v
	}
}

func (cfg *daemonConfig) validate() error {
	switch cfg.TemplateSource {
	case sourceFile:
		if cfg.TemplateFile == "" {
			return eris.New("template file cannot be empty")
		}
	case sourceRedis:
		if cfg.RedisAddress == "" {
			return eris.New("redis template source requires WARBAND_REDIS_ADDRESS")
		}
	case sourceMongo:
		if cfg.MongoURI == "" {
			return eris.New("mongo template source requires WARBAND_MONGO_URI")
		}
	default:
		return eris.Errorf("unknown template source %q", cfg.TemplateSource)
	}
	if cfg.WorldDataFile == "" {
		return eris.New("world data file cannot be empty")
	}
	return nil
}

func (cfg *daemonConfig) redisClient() *redis.Client {
	if cfg.RedisAddress == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
}

func (cfg *daemonConfig) mongoClient(ctx context.Context) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, eris.Wrap(err, "failed to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, eris.Wrap(err, "failed to ping mongo")
	}
	return client, nil
}

// resources owns the connections opened for a command.
type resources struct {
	redis *redis.Client
	mongo *mongo.Client
}

func (r *resources) close(ctx context.Context) error {
	var err error
	if r.redis != nil {
		err = eris.Wrap(r.redis.Close(), "failed to close redis client")
	}
	if r.mongo != nil {
		if mErr := r.mongo.Disconnect(ctx); mErr != nil && err == nil {
			err = eris.Wrap(mErr, "failed to disconnect mongo client")
		}
	}
	return err
}

// openSource returns the configured template row source.
func openSource(ctx context.Context, cfg daemonConfig, res *resources) (catalog.RowSource, error) {
	switch cfg.TemplateSource {
	case sourceRedis:
		if res.redis == nil {
			res.redis = cfg.redisClient()
		}
		return catalog.NewRedisSource(res.redis), nil
	case sourceMongo:
		if res.mongo == nil {
			client, err := cfg.mongoClient(ctx)
			if err != nil {
				return nil, err
			}
			res.mongo = client
		}
		return catalog.NewMongoSource(res.mongo.Database(cfg.MongoDatabase)), nil
	default:
		return catalog.JSONFileSource{Path: cfg.TemplateFile}, nil
	}
}
