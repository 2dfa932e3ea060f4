package main

import (
	"context"
	"errors"
	"os"

	"bilancio/internal/backend"
	"bilancio/internal/cli"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(nil, log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting bilancio-worker",
		"export_target", cfg.ExportTarget,
		"resync_interval", cfg.ResyncInterval)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export configuration",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	export, err := backend.NewFactory(logger).Create(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize export target",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration,
			"export_target", backendCfg.Type.String())
		os.Exit(1)
	}

	// Summaries are read uncached; the API process owns invalidation.
	svc := services.New(repo, nil)
	exportWorker := worker.NewExportWorker(svc.Summaries, export.Writer, worker.Config{
		ResyncInterval: cfg.ResyncInterval,
		Concurrency:    cfg.ResyncConcurrency,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := exportWorker.Stop(shutdownCtx); err != nil {
			logger.Warn("Export worker stop error", log.FieldError, err.Error())
		}
		if export.Cleanup != nil {
			if err := export.Cleanup(); err != nil {
				logger.Warn("Export target cleanup error", log.FieldError, err.Error())
			}
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Database close error", log.FieldError, err.Error())
		}
	})

	amqpClient, err := cli.DialAMQP(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
		os.Exit(1)
	}

	if err := exportWorker.Start(ctx); err != nil {
		logger.Error("Failed to start export worker", log.FieldError, err.Error())
		os.Exit(1)
	}

	if amqpClient != nil {
		defer amqpClient.Close()
		go func() {
			err := amqpClient.ConsumePeriodChanged(ctx, exportWorker.HandlePeriodChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed",
					log.FieldError, err.Error(),
					log.FieldErrorType, log.ErrorTypeNetwork)
			}
		}()
	} else {
		logger.Info("Running periodic resync only - no AMQP_URL provided")
	}

	cli.WaitForShutdown(ctx, done)

	exported, failed := exportWorker.Stats()
	logger.Info("Worker stopped gracefully", "exported", exported, "failed", failed)
}
