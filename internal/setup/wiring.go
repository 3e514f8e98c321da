package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/config"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/tasks"
	"github.com/rs/zerolog"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
	LogLevel        string
	APIPort         string
	StreamProvider  string
	RedisAddr       string
	RedisPassword   string
	RedisMaxRetries int
	RequestStream   string
	ReplyStream     string
	ConsumerGroup   string
	ConsumerName    string
}

type Dependencies struct {
	Generator *tasks.Generator
	Logger    *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		APIPort:         getEnv("API_PORT", "18080"),
		StreamProvider:  getEnv("STREAM_PROVIDER", "redis"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisMaxRetries: getEnvInt("REDIS_MAX_RETRIES", 5),
		RequestStream:   getEnv("REQUEST_STREAM", "module-tasks-requests"),
		ReplyStream:     getEnv("REPLY_STREAM", "module-tasks-replies"),
		ConsumerGroup:   getEnv("CONSUMER_GROUP", "module-tasks-group"),
		ConsumerName:    getEnv("HOSTNAME", "module-tasks-worker"),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.DefaultProvider, err)
	}

	generatorCfg, err := config.LoadGeneratorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load generator config: %w", err)
	}

	generator := tasks.NewGenerator(llmClient, GeneratorConfig(generatorCfg), logger)

	logger.Info().
		Str("provider", cfg.DefaultProvider).
		Int("max_tokens", generatorCfg.Model.MaxTokens).
		Int("max_content_length", generatorCfg.MaxContentLength).
		Msg("generator wired")

	return &Dependencies{
		Generator: generator,
		Logger:    logger,
	}, nil
}

// GeneratorConfig maps the YAML model parameters onto the generator.
func GeneratorConfig(cfg *config.GeneratorConfig) tasks.Config {
	return tasks.Config{
		MaxTokens:        cfg.Model.MaxTokens,
		Temperature:      cfg.Model.Temperature,
		MaxContentLength: cfg.MaxContentLength,
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
