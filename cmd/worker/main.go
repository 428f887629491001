package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quotelab/backend-quotes/internal/config"
	"github.com/quotelab/backend-quotes/internal/document"
	"github.com/quotelab/backend-quotes/internal/events"
	"github.com/quotelab/backend-quotes/internal/obs"
	"github.com/quotelab/backend-quotes/internal/quote"
	"github.com/quotelab/backend-quotes/internal/ratetable"
	"github.com/quotelab/backend-quotes/internal/renderer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	rateSvc := &ratetable.Service{
		Store:  &ratetable.Store{Pool: pool},
		Cache:  ratetable.NewCache(redisClient, cfg.RateTableCachePrefix, cfg.RateTableCacheTTL),
		Logger: logger,
	}

	exporter := &document.Service{
		Quotes:    &quote.Store{Pool: pool},
		Snapshots: rateSvc,
		Renderer: &renderer.Client{
			BaseURL: cfg.RendererURL,
			APIKey:  cfg.RendererAPIKey,
			HTTP:    renderer.NewHTTPClient(cfg.RendererTimeout),
		},
		Bus:    &events.Bus{Store: events.PGStore{Pool: pool}},
		Logger: logger,
	}

	consumer := document.Consumer{
		Queue:             document.Queue{R: redisClient, Name: cfg.ExportQueueName},
		Concurrency:       cfg.ExportConcurrency,
		VisibilityTimeout: 60 * time.Second,
		RetryBase:         time.Second,
		Handler: func(jobCtx context.Context, job document.ExportJob) error {
			return handleExport(jobCtx, exporter, logger, job.QuoteID)
		},
	}

	logger.Info().Str("queue", cfg.ExportQueueName).Int("concurrency", cfg.ExportConcurrency).Msg("worker starting")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker stopped with error")
	} else {
		logger.Info().Msg("worker shutdown complete")
	}
}

func handleExport(ctx context.Context, exporter *document.Service, logger zerolog.Logger, quoteID uuid.UUID) error {
	result, err := exporter.Export(ctx, quoteID)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			logger.Warn().Str("quote_id", quoteID.String()).Msg("quote vanished before export, dropping job")
			return nil
		}
		return err
	}
	logger.Info().Str("quote_id", quoteID.String()).Str("document_url", result.DocumentURL).Msg("quote exported")
	return nil
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "quotes-worker"
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}
