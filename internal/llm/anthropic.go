package llm

import (
	"context"
	"time"
)

const anthropicAPIVersion = "2023-06-01"

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	model   string
	baseURL string
	api     jsonClient
}

var _ Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model, baseURL string, timeout time.Duration) *AnthropicProvider {
	return &AnthropicProvider{
		model:   model,
		baseURL: baseURL,
		api: newJSONClient("anthropic", timeout, map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": anthropicAPIVersion,
		}),
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends one user message, with req.System as the system prompt.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var result anthropicResponse
	err := p.api.post(ctx, p.baseURL+"/messages", anthropicRequest{
		Model:     p.model,
		System:    req.System,
		MaxTokens: maxTokens(req.MaxTokens),
		Messages:  []anthropicMessage{{Role: "user", Content: req.User}},
	}, &result)
	if err != nil {
		return CompletionResponse{}, err
	}

	for _, block := range result.Content {
		if block.Type == "text" && block.Text != "" {
			return CompletionResponse{
				Text:   block.Text,
				Tokens: result.Usage.InputTokens + result.Usage.OutputTokens,
			}, nil
		}
	}
	return CompletionResponse{}, ErrNoContent
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
