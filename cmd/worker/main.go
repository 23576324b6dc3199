package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/toyshop-pos/toyshop/internal/app"
	"github.com/toyshop-pos/toyshop/internal/inventory"
	"github.com/toyshop-pos/toyshop/internal/platform/cache"
	"github.com/toyshop-pos/toyshop/internal/platform/db"
	"github.com/toyshop-pos/toyshop/internal/reports"
	"github.com/toyshop-pos/toyshop/internal/shared"
	"github.com/toyshop-pos/toyshop/jobs"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.New(ctx, db.Options{
		DSN:         cfg.PostgresDSN,
		MaxConns:    cfg.DBMaxConns,
		PingTimeout: cfg.DBTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cache.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: cfg.RedisDialTimeout,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	audit := shared.NewAuditLogger(pool)
	inventorySvc := inventory.NewService(inventory.NewRepository(pool), audit, logger)
	reportsSvc := reports.NewService(reports.NewRepository(pool))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:    asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:       logger,
		LowStockScan: jobs.NewLowStockScanner(inventorySvc, logger),
		DailySummary: jobs.NewDailySummaryWarmer(reportsSvc, redisClient, logger),
	})
	if err != nil {
		return err
	}

	logger.Info("worker starting", slog.String("redis", cfg.RedisAddr))
	return worker.Run(ctx)
}
