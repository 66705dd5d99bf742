// Package cli provides common initialization for cmd/payoff, cmd/payoff-worker
// and cmd/payoff-admin.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"payoff/internal/amqp"
	"payoff/internal/backend"
	"payoff/internal/cache"
	"payoff/internal/config"
	"payoff/internal/events"
	"payoff/internal/events/kafka"
	"payoff/internal/log"
	"payoff/internal/projection"
	"payoff/internal/report"
	"payoff/internal/report/google"
	"payoff/internal/storage"
)

const (
	cacheCleanupInterval = time.Minute
	redisKeyPrefix       = "payoff:projection:"
)

// SetupLogger installs a text logger on stdout at Info as the slog default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates the settings every
// binary shares. Exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadAndValidateServerConfig is LoadAndValidateConfig plus the session
// settings only the API needs.
func LoadAndValidateServerConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the configured store. Exits the process on failure.
func InitStore(ctx context.Context, logger *log.Logger, cfg *config.Config) (storage.Store, backend.CleanupFunc) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize store", log.FieldError, err, "backend", bcfg.Type)
		os.Exit(1)
	}
	return res.Store, res.Cleanup
}

// ResultCache is the projection cache chosen by configuration along with
// whatever must be stopped on shutdown.
type ResultCache struct {
	Cache   cache.Cache[projection.Result]
	manager *cache.Manager
	close   func() error
}

func (c *ResultCache) Close() error {
	if c.manager != nil {
		c.manager.Stop()
	}
	if c.close != nil {
		return c.close()
	}
	return nil
}

// InitResultCache builds an in-process LRU or a Redis-backed cache. An
// unreachable Redis falls back to the LRU.
func InitResultCache(ctx context.Context, logger *log.Logger, cfg *config.Config) *ResultCache {
	logger = logger.WithComponent(log.ComponentCache)

	if cfg.CacheBackend == "redis" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err == nil {
			logger.Info("Using Redis projection cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
			return &ResultCache{
				Cache: cache.NewRedisCache[projection.Result](rdb, redisKeyPrefix, cfg.CacheTTL),
				close: rdb.Close,
			}
		}
		logger.Warn("Redis unavailable, falling back to in-memory cache", log.FieldError, err, "addr", cfg.RedisAddr)
	}

	lru := cache.NewLRUCache[projection.Result](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager(logger.Logger)
	manager.Register(lru)
	manager.StartCleanup(cacheCleanupInterval)
	logger.Info("Using in-memory projection cache", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	return &ResultCache{Cache: lru, manager: manager}
}

// InitEvents returns a Kafka publisher when brokers are configured.
func InitEvents(logger *log.Logger, cfg *config.Config) events.Publisher {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Info("Projection events disabled - no KAFKA_BROKERS provided")
		return events.Nop{}
	}
	logger.Info("Publishing projection events", "brokers", brokers, "topic", cfg.KafkaTopic)
	return kafka.NewPublisher(brokers, cfg.KafkaTopic)
}

// InitAMQP connects to the export queue. It returns nil when AMQP_URL is
// empty.
func InitAMQP(logger *log.Logger, cfg *config.Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect AMQP: %w", err)
	}
	logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, nil
}

// InitReportSink returns the Google Sheets sink when a spreadsheet is
// configured, nil otherwise.
func InitReportSink(ctx context.Context, logger *log.Logger, cfg *config.Config) (report.Sink, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil, nil
	}
	sink, err := google.NewSink(ctx, cfg.GoogleSpreadsheetID, google.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return sink, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that is cancelled once a signal arrives and cleanup has
// run, and a channel closed when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
