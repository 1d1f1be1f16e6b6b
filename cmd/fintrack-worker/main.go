package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)

	if err := cfg.ValidateMirror(); err != nil {
		logger.Error("Mirror configuration validation failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is private to this process, the mirror will only see seeded data")
	}

	logger.Info("Starting fintrack-worker")

	store := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	mirror, err := backend.NewFactory(logger.Logger).CreateMirror(context.Background(), backend.MirrorFromAppConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize mirror", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(store.Store, mirror)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if cfg.ResyncOnStart {
		logger.Info("Performing startup resync")
		if err := mirrorWorker.Resync(ctx); err != nil {
			// Keep consuming; the next resync or event catches up.
			logger.Error("Startup resync failed", log.FieldError, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeLedgerEvents(gctx, mirrorWorker.HandleLedgerEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if cfg.ResyncInterval > 0 {
		logger.Info("Periodic resync enabled", "interval", cfg.ResyncInterval)
		g.Go(func() error {
			return mirrorWorker.RunResync(gctx, cfg.ResyncInterval)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
