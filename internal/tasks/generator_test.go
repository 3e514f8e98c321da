package tasks

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/llm/mocks"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

var testConfig = Config{MaxTokens: 1024, Temperature: 0.7}

const bstContent = "Binary search trees: insertion, deletion, and balancing."

const bstMessage = `Hello and welcome! In this module you will explore binary search trees.

## Learning Tasks
- Implement insertion into a binary search tree.
- Implement deletion, covering nodes with zero, one and two children.
- Compare an unbalanced tree with an AVL tree after inserting sorted keys.

## Real-World Applications
- Database indexes keep keys ordered for fast range queries.
- Language runtimes use balanced trees for ordered maps and sets.
`

// listItemsUnder counts markdown list items between a heading that contains
// title and the next heading.
func listItemsUnder(message, title string) int {
	count := 0
	inSection := false
	for _, line := range strings.Split(message, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			inSection = strings.Contains(strings.ToLower(trimmed), strings.ToLower(title))
			continue
		}
		if inSection && (strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ")) {
			count++
		}
	}
	return count
}

func TestGenerator_Generate(t *testing.T) {
	providerErr := errors.New("ThrottlingException: Rate exceeded")

	tests := []struct {
		name        string
		content     string
		response    *llm.LLMResponse
		providerErr error
		expectCall  bool
		expectErr   error
		expectText  string
	}{
		{
			name:       "valid content returns message unmodified",
			content:    bstContent,
			response:   &llm.LLMResponse{Content: bstMessage, StopReason: "end_turn"},
			expectCall: true,
			expectText: bstMessage,
		},
		{
			name:       "surrounding whitespace is kept",
			content:    "Graphs",
			response:   &llm.LLMResponse{Content: "\n  Welcome!  \n"},
			expectCall: true,
			expectText: "\n  Welcome!  \n",
		},
		{
			name:       "empty content is rejected before the model call",
			content:    "",
			expectCall: false,
			expectErr:  ErrValidation,
		},
		{
			name:       "whitespace content is rejected before the model call",
			content:    "  \n\t ",
			expectCall: false,
			expectErr:  ErrValidation,
		},
		{
			name:       "empty generation fails with generic error",
			content:    bstContent,
			response:   &llm.LLMResponse{Content: ""},
			expectCall: true,
			expectErr:  ErrGenerationFailed,
		},
		{
			name:       "whitespace generation fails with generic error",
			content:    bstContent,
			response:   &llm.LLMResponse{Content: "   \n"},
			expectCall: true,
			expectErr:  ErrGenerationFailed,
		},
		{
			name:       "nil response fails with generic error",
			content:    bstContent,
			response:   nil,
			expectCall: true,
			expectErr:  ErrGenerationFailed,
		},
		{
			name:        "provider error fails with generic error",
			content:     bstContent,
			providerErr: providerErr,
			expectCall:  true,
			expectErr:   ErrGenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mocks.NewMockLLMClient(ctrl)
			if tt.expectCall {
				mockClient.EXPECT().
					InvokeModel(gomock.Any(), gomock.Any()).
					Return(tt.response, tt.providerErr).
					Times(1)
			} else {
				mockClient.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Times(0)
			}

			generator := NewGenerator(mockClient, testConfig, testLogger())
			out, err := generator.Generate(context.Background(), models.GenerateModuleTasksInput{ModuleContent: tt.content})

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected error %v, got %v", tt.expectErr, err)
				}
				if out.IntroductoryMessage != "" {
					t.Errorf("expected empty output on failure, got '%s'", out.IntroductoryMessage)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.IntroductoryMessage != tt.expectText {
				t.Errorf("expected message %q, got %q", tt.expectText, out.IntroductoryMessage)
			}
		})
	}
}

func TestGenerator_Generate_SendsRenderedPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var captured llm.LLMRequest
	mockClient := mocks.NewMockLLMClient(ctrl)
	mockClient.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
			captured = req
			return &llm.LLMResponse{Content: bstMessage}, nil
		})

	content := `Recursion & "divide <and> conquer"`
	generator := NewGenerator(mockClient, Config{MaxTokens: 2048, Temperature: 0.3}, testLogger())
	if _, err := generator.Generate(context.Background(), models.GenerateModuleTasksInput{ModuleContent: content}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(captured.Prompt, `"`+content+`"`) {
		t.Errorf("expected prompt to embed content verbatim, got:\n%s", captured.Prompt)
	}
	if !strings.HasPrefix(captured.Prompt, "You are an expert curriculum assistant.") {
		t.Errorf("expected prompt to start with the instructions, got:\n%s", captured.Prompt)
	}
	if captured.MaxTokens != 2048 {
		t.Errorf("expected MaxTokens=2048, got %d", captured.MaxTokens)
	}
	if captured.Temperature != 0.3 {
		t.Errorf("expected Temperature=0.3, got %f", captured.Temperature)
	}
}

func TestGenerator_Generate_ProviderErrorOnlyLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	providerErr := errors.New("upstream exploded: secret-request-id-42")
	mockClient := mocks.NewMockLLMClient(ctrl)
	mockClient.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(nil, providerErr)

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	generator := NewGenerator(mockClient, testConfig, &logger)

	_, err := generator.Generate(context.Background(), models.GenerateModuleTasksInput{ModuleContent: bstContent})
	if err == nil {
		t.Fatal("expected error")
	}

	if err.Error() != "Failed to generate an introduction for the provided content. Please try again." {
		t.Errorf("unexpected error message: %q", err.Error())
	}
	if errors.Is(err, providerErr) {
		t.Error("provider error must not be reachable from the returned error")
	}
	if strings.Contains(err.Error(), "secret-request-id-42") {
		t.Error("provider detail leaked into returned error")
	}
	if !strings.Contains(logs.String(), "secret-request-id-42") {
		t.Errorf("expected provider error in logs, got: %s", logs.String())
	}
}

func TestGenerator_Generate_EmptyGenerationNotExposed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockLLMClient(ctrl)
	mockClient.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(&llm.LLMResponse{}, nil)

	generator := NewGenerator(mockClient, testConfig, testLogger())
	_, err := generator.Generate(context.Background(), models.GenerateModuleTasksInput{ModuleContent: bstContent})

	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if errors.Is(err, ErrEmptyGeneration) {
		t.Error("ErrEmptyGeneration must not be returned to the caller")
	}
}

func TestGenerator_Generate_MaxContentLength(t *testing.T) {
	tests := []struct {
		name       string
		maxLength  int
		content    string
		expectCall bool
	}{
		{"no cap", 0, strings.Repeat("a", 10000), true},
		{"under cap", 10, "short", true},
		{"exactly at cap counts runes", 4, "ßäöü", true},
		{"over cap", 4, "trees", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mocks.NewMockLLMClient(ctrl)
			if tt.expectCall {
				mockClient.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(&llm.LLMResponse{Content: "hi"}, nil)
			}

			cfg := testConfig
			cfg.MaxContentLength = tt.maxLength
			generator := NewGenerator(mockClient, cfg, testLogger())
			_, err := generator.Generate(context.Background(), models.GenerateModuleTasksInput{ModuleContent: tt.content})

			if tt.expectCall && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.expectCall {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected *ValidationError, got %v", err)
				}
				if validationErr.Field != "moduleContent" {
					t.Errorf("expected field moduleContent, got %s", validationErr.Field)
				}
			}
		})
	}
}

func TestGenerator_Generate_CancelledContextFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockClient := mocks.NewMockLLMClient(ctrl)
	mockClient.EXPECT().InvokeModel(ctx, gomock.Any()).Return(nil, context.Canceled)

	generator := NewGenerator(mockClient, testConfig, testLogger())
	_, err := generator.Generate(ctx, models.GenerateModuleTasksInput{ModuleContent: bstContent})

	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

// BST scenario. The structure is checked on the mocked provider text.
func TestGenerator_Generate_BinarySearchTreeScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockLLMClient(ctrl)
	mockClient.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(&llm.LLMResponse{Content: bstMessage}, nil)

	generator := NewGenerator(mockClient, testConfig, testLogger())
	out, err := generator.Generate(context.Background(), models.GenerateModuleTasksInput{ModuleContent: bstContent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out.IntroductoryMessage, "Hello") {
		t.Errorf("expected a greeting, got %q", out.IntroductoryMessage)
	}
	if n := listItemsUnder(out.IntroductoryMessage, "tasks"); n < 2 || n > 4 {
		t.Errorf("expected 2-4 learning tasks, got %d", n)
	}
	if n := listItemsUnder(out.IntroductoryMessage, "applications"); n < 2 || n > 3 {
		t.Errorf("expected 2-3 applications, got %d", n)
	}
}

// nonDeterministicClient returns a different completion on every call.
type nonDeterministicClient struct {
	calls atomic.Int64
}

func (c *nonDeterministicClient) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	n := c.calls.Add(1)
	return &llm.LLMResponse{Content: strings.Repeat("Welcome! ", int(n))}, nil
}

func TestGenerator_Generate_RepeatedCallsAreIndependent(t *testing.T) {
	client := &nonDeterministicClient{}
	generator := NewGenerator(client, testConfig, testLogger())
	input := models.GenerateModuleTasksInput{ModuleContent: bstContent}

	first, err := generator.Generate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := generator.Generate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.IntroductoryMessage == "" || second.IntroductoryMessage == "" {
		t.Error("expected both messages to be non-empty")
	}
}

func TestGenerator_Generate_Concurrent(t *testing.T) {
	client := &nonDeterministicClient{}
	generator := NewGenerator(client, testConfig, testLogger())

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := generator.Generate(context.Background(), models.GenerateModuleTasksInput{ModuleContent: bstContent})
			if err != nil {
				errs <- err
				return
			}
			if out.IntroductoryMessage == "" {
				errs <- errors.New("empty message")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent call failed: %v", err)
	}
	if got := client.calls.Load(); got != workers {
		t.Errorf("expected %d provider calls, got %d", workers, got)
	}
}
