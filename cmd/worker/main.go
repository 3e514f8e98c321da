package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/setup"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/stream"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/stream/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load dependencies")
	}

	redisCfg := redis.NewRedisStreamConfig(
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RequestStream,
		cfg.ReplyStream,
		cfg.ConsumerGroup,
		cfg.ConsumerName,
	)
	redisCfg.MaxRetries = cfg.RedisMaxRetries

	streamCfg := &stream.StreamConfig{
		Provider:    cfg.StreamProvider,
		RedisConfig: redisCfg,
	}

	consumer, err := stream.NewStreamConsumer(ctx, streamCfg, deps.Generator, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stream consumer")
	}

	// Setup consumer
	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	// Start consumer
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	// Wait for context to be done
	<-ctx.Done()
	logger.Info().Msg("Shutting down...")
	<-done

	if err := consumer.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close stream client")
	}

	log.Info().Msg("Module Tasks worker stopped")
}
