package llm

import (
	"context"
	"fmt"
	"time"
)

// OllamaProvider talks to a local Ollama instance. It needs no API key.
type OllamaProvider struct {
	model   string
	baseURL string
	api     jsonClient
}

var _ Provider = (*OllamaProvider)(nil)

// NewOllamaProvider creates an Ollama provider.
func NewOllamaProvider(model, baseURL string, timeout time.Duration) *OllamaProvider {
	api := newJSONClient("ollama", timeout, nil)
	api.hint = fmt.Sprintf(" (is Ollama running at %s?)", baseURL)
	return &OllamaProvider{
		model:   model,
		baseURL: baseURL,
		api:     api,
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Complete calls /api/chat with streaming disabled.
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	messages := make([]ollamaMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.User})

	var result ollamaResponse
	err := p.api.post(ctx, p.baseURL+"/api/chat", ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Options:  ollamaOptions{NumPredict: maxTokens(req.MaxTokens)},
	}, &result)
	if err != nil {
		return CompletionResponse{}, err
	}
	if result.Message.Content == "" {
		return CompletionResponse{}, ErrNoContent
	}

	return CompletionResponse{
		Text:   result.Message.Content,
		Tokens: result.PromptEvalCount + result.EvalCount,
	}, nil
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}
