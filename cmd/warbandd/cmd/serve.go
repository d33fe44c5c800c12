package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/argus-labs/warband/pkg/battle"
	"github.com/argus-labs/warband/pkg/battle/catalog"
	"github.com/argus-labs/warband/pkg/battle/oracle"
	"github.com/argus-labs/warband/pkg/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "load templates and run the orchestration loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	addSourceFlags(cmd)
	return cmd
}

func serve(ctx context.Context, cfg daemonConfig) error {
	tel, err := telemetry.New(telemetry.Options{ServiceName: serviceName})
	if err != nil {
		return eris.Wrap(err, "failed to initialize telemetry")
	}
	defer tel.RecoverAndFlush(true)
	log := tel.GetLogger("daemon")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := &resources{redis: cfg.redisClient()}
	opts := battle.Options{Telemetry: &tel}
	var refreshers []battle.Refresher
	if res.redis != nil {
		o := oracle.NewRedis(res.redis)
		if err := o.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("initial oracle refresh failed, no kinds disabled until the next refresh")
		}
		opts.Disabler = o
		opts.Holidays = o
		refreshers = append(refreshers, o)
	}

	mgr, err := battle.NewManager(opts)
	if err != nil {
		return errors.Join(err, res.close(context.Background()), tel.Shutdown(context.Background()))
	}

	runErr := func() error {
		world, err := catalog.LoadWorldDataFromFile(cfg.WorldDataFile)
		if err != nil {
			return err
		}
		src, err := openSource(ctx, cfg, res)
		if err != nil {
			return err
		}
		report, err := mgr.LoadTemplates(ctx, src, world, world)
		if err != nil {
			return err
		}
		bmReport := mgr.LoadBattlemasters(world.BattlemasterRows(), world, world)
		log.Info().
			Str("source", cfg.TemplateSource).
			Int("templates", report.Loaded).
			Int("dropped", len(report.Errors)).
			Int("battlemasters", mgr.BattlemasterCount()).
			Int("battlemaster_violations", len(bmReport.Violations)).
			Msg("templates loaded")

		return mgr.Run(ctx, refreshers...)
	}()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	mgr.Close()
	closeErr := errors.Join(res.close(shutdownCtx), tel.Shutdown(shutdownCtx))
	if errors.Is(runErr, context.Canceled) {
		log.Info().Msg("shutdown complete")
		runErr = nil
	}
	return errors.Join(runErr, closeErr)
}
