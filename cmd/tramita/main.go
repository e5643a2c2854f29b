package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/app"
	"github.com/tramita/tramita/internal/catalog/acts"
	"github.com/tramita/tramita/internal/catalog/dependencies"
	"github.com/tramita/tramita/internal/catalog/faqs"
	"github.com/tramita/tramita/internal/catalog/procedures"
	"github.com/tramita/tramita/internal/platform/cache"
	"github.com/tramita/tramita/internal/platform/db"
	"github.com/tramita/tramita/internal/presets"
	"github.com/tramita/tramita/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	locale, err := language.Parse(cfg.ListLocale)
	if err != nil {
		logger.Warn("invalid list locale, using Spanish", slog.String("locale", cfg.ListLocale))
		locale = language.Spanish
	}

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

	depsHandler, err := dependencies.NewHandler(logger,
		dependencies.NewService(dependencies.NewRepository(pool)), locale, cfg.ListPageSize)
	if err != nil {
		logger.Error("init dependencies module", slog.Any("error", err))
		os.Exit(1)
	}
	procHandler, err := procedures.NewHandler(logger,
		procedures.NewService(procedures.NewRepository(pool)), jobClient, locale, cfg.ListPageSize)
	if err != nil {
		logger.Error("init procedures module", slog.Any("error", err))
		os.Exit(1)
	}
	actsHandler, err := acts.NewHandler(logger,
		acts.NewService(acts.NewRepository(pool)), jobClient, locale, cfg.ListPageSize)
	if err != nil {
		logger.Error("init acts module", slog.Any("error", err))
		os.Exit(1)
	}
	faqsHandler, err := faqs.NewHandler(logger,
		faqs.NewService(faqs.NewRepository(pool)), locale, cfg.ListPageSize)
	if err != nil {
		logger.Error("init faqs module", slog.Any("error", err))
		os.Exit(1)
	}

	presetStore := presets.NewStore(redisClient,
		dependencies.Entity, procedures.Entity, acts.Entity, faqs.Entity)
	presetsHandler := presets.NewHandler(logger, presetStore)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		DependenciesHandler: depsHandler,
		ProceduresHandler:   procHandler,
		ActsHandler:         actsHandler,
		FAQsHandler:         faqsHandler,
		PresetsHandler:      presetsHandler,
		JobHandler:          jobHandler,
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
