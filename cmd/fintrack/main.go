package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", log.FieldError, err)
		os.Exit(1)
	}

	store := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	opts := []services.Option{
		services.WithClock(func() time.Time { return time.Now().In(loc) }),
	}

	cacheManager := cache.NewManager()
	var dashboards *cache.LRUCache[metrics.Dashboard]
	if cfg.CacheTTL > 0 {
		dashboards = cache.NewLRUCache[metrics.Dashboard](cfg.CacheSize, cfg.CacheTTL)
		cacheManager.Register(dashboards)
		opts = append(opts, services.WithDashboardCache(dashboards))
		logger.Info("Dashboard cache enabled", "ttl", cfg.CacheTTL, "size", cfg.CacheSize)
	} else {
		logger.Info("Dashboard cache disabled")
	}

	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		opts = append(opts, services.WithPublisher(publisher))
		logger.Info("Ledger events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP_URL not set, ledger events disabled")
	}

	ledgerService := services.NewLedgerService(store.Store, opts...)
	defer func() {
		if err := ledgerService.Close(); err != nil {
			logger.Error("Ledger service close failed", log.FieldError, err)
		}
	}()

	serverOpts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		StaticDir:          cfg.StaticDir,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}
	if dashboards != nil {
		serverOpts.CacheStats = dashboards.Stats
	}
	srv := apphttp.NewServer(serverOpts, ledgerService)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if dashboards != nil {
		g.Go(func() error {
			return cacheManager.Run(gctx, time.Minute)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
