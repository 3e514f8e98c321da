package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/setup"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/setup/logger"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/tasks"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	content := flag.String("content", "", "The syllabus module content")
	stdin := flag.Bool("stdin", false, "Read module content from stdin")
	level := flag.String("log-level", "warn", "Log level for diagnostics on stderr")

	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	moduleContent, err := readContent(*content, *stdin, os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to read module content")
	}

	ctx := context.Background()
	l := logger.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, *level)

	deps, err := setup.Wire(ctx, setup.LoadConfig(), &l)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load dependencies")
	}

	out, err := deps.Generator.Generate(ctx, models.GenerateModuleTasksInput{ModuleContent: moduleContent})
	if err != nil {
		if errors.Is(err, tasks.ErrValidation) {
			log.Fatal().Err(err).Msg("Invalid input")
		}
		log.Fatal().Err(err).Msg("Generation failed")
	}

	fmt.Println(out.IntroductoryMessage)
}

var errNoContent = errors.New("please provide module content using -content or -stdin")

// readContent prefers stdin when the flag is set.
func readContent(content string, useStdin bool, stdin io.Reader) (string, error) {
	if useStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(data), nil
	}
	if content == "" {
		return "", errNoContent
	}
	return content, nil
}
