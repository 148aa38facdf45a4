package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bodycraft-erp/bodycraft-erp/internal/app"
	"github.com/bodycraft-erp/bodycraft-erp/internal/auth"
	"github.com/bodycraft-erp/bodycraft-erp/internal/catalog"
	"github.com/bodycraft-erp/bodycraft-erp/internal/observability"
	"github.com/bodycraft-erp/bodycraft-erp/internal/platform/db"
	"github.com/bodycraft-erp/bodycraft-erp/internal/quotation"
	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
	"github.com/bodycraft-erp/bodycraft-erp/internal/workorder"
	"github.com/bodycraft-erp/bodycraft-erp/jobs"

	"github.com/hibiken/asynq"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	priceResolver := catalog.NewResolver(catalogRepo, catalogCache, jobClient, logger)
	catalogHandler := catalog.NewHandler(logger, priceResolver)

	workOrderRepo := workorder.NewRepository(dbpool)
	workOrderService := workorder.NewService(workOrderRepo, logger)

	quotationRepo := quotation.NewRepository(dbpool)
	quotationService := quotation.NewService(quotationRepo, priceResolver, workOrderService, auditLogger, logger)
	quotationHandler := quotation.NewHandler(logger, quotationService)

	authRepo := auth.NewRepository(dbpool)
	authMiddleware := auth.Middleware{Repo: authRepo, Logger: logger, Disabled: cfg.AuthDisabled}

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Auth:             authMiddleware,
		QuotationHandler: quotationHandler,
		CatalogHandler:   catalogHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
