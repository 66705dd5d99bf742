package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"payoff/internal/auth"
	"payoff/internal/cli"
	apphttp "payoff/internal/http"
	"payoff/internal/log"
	"payoff/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateServerConfig(logger)

	ctx := context.Background()
	store, closeStore := cli.InitStore(ctx, logger, cfg)

	results := cli.InitResultCache(ctx, logger, cfg)
	publisher := cli.InitEvents(logger, cfg)

	opts := []services.ProjectionOption{
		services.WithResultCache(results.Cache),
		services.WithEvents(publisher),
	}

	amqpClient, err := cli.InitAMQP(logger, cfg)
	if err != nil {
		// Exports fall back to the synchronous sink below.
		logger.Warn("Failed to initialize AMQP client, exporting synchronously", log.FieldError, err)
	}
	if amqpClient != nil {
		opts = append(opts, services.WithExportQueue(amqpClient))
	} else {
		sink, err := cli.InitReportSink(ctx, logger, cfg)
		if err != nil {
			logger.Error("Failed to initialize report sink", log.FieldError, err)
			os.Exit(1)
		}
		if sink != nil {
			opts = append(opts, services.WithReportSink(sink))
		}
	}

	authenticator := auth.NewAuthenticator(store, auth.Hasher{},
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL))

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:               authenticator,
		Users:              store,
		Entities:           services.NewEntityService(store),
		Projections:        services.NewProjectionService(store, logger, opts...),
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			amqpClient.Close()
		}
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", log.FieldError, err)
		}
		if err := results.Close(); err != nil {
			logger.Warn("Failed to close projection cache", log.FieldError, err)
		}
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close store", log.FieldError, err)
		}
	})

	logger.Info("Starting payoff server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache", cfg.CacheBackend,
		"async_export", amqpClient != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
