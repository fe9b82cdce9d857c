package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"finman/internal/amqp"
	"finman/internal/cli"
	"finman/internal/export"
	"finman/internal/gateway"
	"finman/internal/log"
	"finman/internal/session"
	"finman/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	sess := session.NewStore(repo)
	if err := sess.Load(ctx); err != nil {
		logger.Warn("Failed to load stored credential", log.FieldError, err)
	}

	gw := gateway.NewClient(cfg.BackendURL, cfg.RequestTimeout, sess)
	sess.Validate(ctx, func(ctx context.Context) error {
		_, err := gw.CurrentUser(ctx)
		return err
	})
	if !sess.IsAuthenticated() {
		logger.Error("No valid session credential; sign in with the web shell first")
		os.Exit(1)
	}

	exporter, err := export.NewExporter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize exporter", log.FieldError, err)
		os.Exit(1)
	}

	w := worker.NewMirrorWorker(gw, repo, exporter, cfg.MirrorInterval)

	if err := w.Refresh(ctx); err != nil {
		logger.Warn("Initial mirror refresh failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.RunPeriodic(gctx) })

	if cfg.AMQPURL != "" {
		mq, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on periodic refresh only", log.FieldError, err)
		} else {
			defer mq.Close()
			g.Go(func() error {
				return mq.ConsumeMutations(gctx, func(msg *amqp.MutationMessage) error {
					return w.HandleMutation(gctx, msg)
				})
			})
		}
	}

	logger.Info("Mirror worker running", "interval", cfg.MirrorInterval)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Mirror worker stopped gracefully")
}
