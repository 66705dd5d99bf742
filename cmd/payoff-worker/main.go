package main

import (
	"context"
	"errors"
	"os"
	"time"

	"payoff/internal/cli"
	"payoff/internal/log"
	"payoff/internal/services"
	"payoff/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentWorker)
	logger.Info("Starting payoff-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// The worker replays projections against the API's store, so it must
	// share its backend.
	store, closeStore := cli.InitStore(ctx, logger, cfg)
	defer closeStore()

	sink, err := cli.InitReportSink(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize report sink", log.FieldError, err)
		os.Exit(1)
	}
	if sink == nil {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}

	publisher := cli.InitEvents(logger, cfg)
	defer publisher.Close()

	amqpClient, err := cli.InitAMQP(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	projections := services.NewProjectionService(store, logger,
		services.WithEvents(publisher),
		services.WithReportSink(sink))
	exportWorker := worker.NewExportWorker(projections)

	if err := amqpClient.ConsumeExports(ctx, exportWorker.HandleExport); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
