package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/cli"
	"bilancio/internal/core"
	apphttp "bilancio/internal/http"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(nil, log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	logger.Info("Starting bilancio", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// AMQP is optional: without a broker mutations simply publish no events.
	var notifiers []services.ChangeNotifier
	dialCtx, dialCancel := context.WithTimeout(context.Background(), 45*time.Second)
	amqpClient, err := cli.DialAMQP(dialCtx, logger, cfg)
	dialCancel()
	if err != nil {
		logger.Warn("AMQP unavailable, continuing without events",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
	}
	if amqpClient != nil {
		notifiers = append(notifiers, services.NewEventNotifier(amqpClient))
	}

	var (
		summaryCache cache.Cache[core.MonthlySummary]
		cacheStats   apphttp.CacheStats
		cacheManager = cache.NewManager()
	)
	if lru := cli.NewSummaryCache(cfg); lru != nil {
		summaryCache, cacheStats = lru, lru
		cacheManager.Register(lru)
		cacheManager.StartCleanup(cfg.SummaryCacheTTL)
	}

	svc := services.New(repo, summaryCache, notifiers...)

	srv := apphttp.NewServer(cfg.Addr(), svc, apphttp.Options{
		Logger:             logger,
		Pinger:             repo,
		SummaryCache:       cacheStats,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err.Error())
			}
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Database close error", log.FieldError, err.Error())
		}
	})

	logger.Info("Listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error",
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpStartup,
			"addr", srv.Addr)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
