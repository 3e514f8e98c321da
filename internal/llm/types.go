package llm

// LLMRequest is a single-turn completion request.
type LLMRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// LLMResponse carries the generated text as returned by the provider,
// without trimming.
type LLMResponse struct {
	Content    string
	StopReason string
}
