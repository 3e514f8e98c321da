package tasks

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
	"github.com/rs/zerolog"
)

// ModuleTaskGenerator is implemented by Generator and by wrappers around it.
type ModuleTaskGenerator interface {
	Generate(ctx context.Context, input models.GenerateModuleTasksInput) (models.GenerateModuleTasksOutput, error)
}

type Config struct {
	MaxTokens   int
	Temperature float64
	// MaxContentLength caps module content in runes. Zero disables the cap.
	MaxContentLength int
}

// Generator turns syllabus module content into an introductory message.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	llmClient llm.LLMClient
	cfg       Config
	logger    *zerolog.Logger
}

func NewGenerator(llmClient llm.LLMClient, cfg Config, logger *zerolog.Logger) *Generator {
	return &Generator{
		llmClient: llmClient,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate validates the input, renders the prompt and makes one model call.
// Invalid input returns a *ValidationError before the model is called. Any
// later failure is logged and reported as ErrGenerationFailed; the cause is
// never returned.
func (g *Generator) Generate(ctx context.Context, input models.GenerateModuleTasksInput) (models.GenerateModuleTasksOutput, error) {
	if err := g.validate(input); err != nil {
		g.logger.Warn().Err(err).Msg("rejected module content")
		return models.GenerateModuleTasksOutput{}, err
	}

	now := time.Now()
	text, err := g.generate(ctx, input)
	if err != nil {
		g.logger.Error().
			Err(err).
			Int("content_length", len(input.ModuleContent)).
			Dur("duration", time.Since(now)).
			Msg("Error generating tasks")
		return models.GenerateModuleTasksOutput{}, ErrGenerationFailed
	}

	g.logger.Info().
		Int("message_length", len(text)).
		Dur("duration", time.Since(now)).
		Msg("module tasks generated")

	return models.GenerateModuleTasksOutput{IntroductoryMessage: text}, nil
}

func (g *Generator) validate(input models.GenerateModuleTasksInput) error {
	if strings.TrimSpace(input.ModuleContent) == "" {
		return &ValidationError{Field: "moduleContent", Reason: "is required"}
	}
	if g.cfg.MaxContentLength > 0 && utf8.RuneCountInString(input.ModuleContent) > g.cfg.MaxContentLength {
		return &ValidationError{Field: "moduleContent", Reason: "exceeds maximum length"}
	}
	return nil
}

func (g *Generator) generate(ctx context.Context, input models.GenerateModuleTasksInput) (string, error) {
	prompt, err := buildPrompt(input)
	if err != nil {
		return "", err
	}

	resp, err := g.llmClient.InvokeModel(ctx, llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyGeneration
	}

	return resp.Content, nil
}
