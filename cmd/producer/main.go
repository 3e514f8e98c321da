package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
	red "github.com/povarna/generative-ai-agents/module-tasks-agent/internal/redis"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	content := flag.String("content", "", "Syllabus module content")
	stdin := flag.Bool("stdin", false, "Read module content from stdin")
	stream := flag.String("stream", "module-tasks-requests", "Request stream name")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	moduleContent := *content
	if *stdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read from stdin")
		}
		moduleContent = string(data)
	}

	if moduleContent == "" {
		fmt.Fprintln(os.Stderr, "Usage: producer -content '<module text>' | -stdin")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(moduleContent, *stream); err != nil {
		log.Error().Err(err).Msg("producer failed")
		os.Exit(1)
	}
}

func run(moduleContent, stream string) error {
	_ = godotenv.Load()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	client, err := red.ConnectRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), 3)
	if err != nil {
		return err
	}
	defer client.Close()

	req := models.StreamRequest{
		RequestID:     uuid.NewString(),
		ModuleContent: moduleContent,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"payload": string(data)},
	}).Result()
	if err != nil {
		return err
	}

	log.Info().Str("stream", stream).Str("id", id).Str("request_id", req.RequestID).Msg("Published successfully!")
	return nil
}
