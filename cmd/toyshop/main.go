package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/toyshop-pos/toyshop/internal/app"
	"github.com/toyshop-pos/toyshop/internal/auth"
	"github.com/toyshop-pos/toyshop/internal/catalog/categories"
	"github.com/toyshop-pos/toyshop/internal/catalog/products"
	"github.com/toyshop-pos/toyshop/internal/inventory"
	"github.com/toyshop-pos/toyshop/internal/platform/cache"
	"github.com/toyshop-pos/toyshop/internal/platform/db"
	"github.com/toyshop-pos/toyshop/internal/reports"
	"github.com/toyshop-pos/toyshop/internal/returns"
	"github.com/toyshop-pos/toyshop/internal/sales"
	"github.com/toyshop-pos/toyshop/internal/settings"
	"github.com/toyshop-pos/toyshop/internal/shared"
	"github.com/toyshop-pos/toyshop/internal/users"
	"github.com/toyshop-pos/toyshop/jobs"
)

func main() {
	if err := run(); err != nil {
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
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authMW := auth.NewMiddleware(tokens)

	settingsSvc := settings.NewService(settings.NewRepository(pool), settings.NewCache(redisClient))
	authSvc := auth.NewService(auth.NewRepository(pool), tokens, logger)
	usersSvc := users.NewService(users.NewRepository(pool), audit, logger)
	categoriesSvc := categories.NewService(categories.NewRepository(pool))
	productsSvc := products.NewService(products.NewRepository(pool), audit, logger)
	inventorySvc := inventory.NewService(inventory.NewRepository(pool), audit, logger)
	salesSvc := sales.NewService(sales.NewRepository(pool), settingsSvc, audit, logger)
	returnsSvc := returns.NewService(returns.NewRepository(pool), audit, logger)
	reportsSvc := reports.NewService(reports.NewRepository(pool))
	receiptPrinter := sales.NewReceiptPrinter(settingsSvc)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobsClient := jobs.NewClient(redisOpts)
	defer jobsClient.Close()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            &cfg,
		AuthHandler:       auth.NewHandler(authSvc, authMW),
		AuthMiddleware:    authMW,
		UsersHandler:      users.NewHandler(usersSvc),
		ProductsHandler:   products.NewHandler(productsSvc),
		CategoriesHandler: categories.NewHandler(categoriesSvc),
		InventoryHandler:  inventory.NewHandler(inventorySvc),
		SalesHandler:      sales.NewHandler(salesSvc, receiptPrinter),
		ReturnsHandler:    returns.NewHandler(returnsSvc),
		SettingsHandler:   settings.NewHandler(settingsSvc),
		ReportsHandler:    reports.NewHandler(reportsSvc),
		JobsHandler:       jobs.NewHandler(redisOpts, jobsClient),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
