package cmd

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/argus-labs/warband/pkg/battle/catalog"
)

const flagTo = "to"

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "copy template rows from the JSON file into redis or mongo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadDaemonConfig()
			if err != nil {
				return err
			}
			cfg.bindFlags(cmd)
			to, err := cmd.Flags().GetString(flagTo)
			if err != nil {
				return eris.Wrap(err, "failed to read to flag")
			}
			// The target is validated as if it were the read source.
			cfg.TemplateSource = to
			if err := cfg.validate(); err != nil {
				return eris.Wrap(err, "invalid daemon config")
			}
			n, err := seed(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cmd.Printf("seeded %d template rows into %s\n", n, to)
			return nil
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().String(flagTo, sourceRedis, "destination store: redis or mongo")
	return cmd
}

func seed(ctx context.Context, cfg daemonConfig) (int, error) {
	rows, err := catalog.JSONFileSource{Path: cfg.TemplateFile}.Rows(ctx)
	if err != nil {
		return 0, err
	}

	res := &resources{}
	defer func() { _ = res.close(context.Background()) }()

	switch cfg.TemplateSource {
	case sourceRedis:
		res.redis = cfg.redisClient()
		dst := catalog.NewRedisSource(res.redis)
		for _, row := range rows {
			if err := dst.Put(ctx, row); err != nil {
				return 0, err
			}
		}
	case sourceMongo:
		client, err := cfg.mongoClient(ctx)
		if err != nil {
			return 0, err
		}
		res.mongo = client
		if err := catalog.NewMongoSource(client.Database(cfg.MongoDatabase)).Insert(ctx, rows); err != nil {
			return 0, err
		}
	default:
		return 0, eris.Errorf("cannot seed into %q", cfg.TemplateSource)
	}
	return len(rows), nil
}
