package llm

import (
	"context"
	"time"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible APIs.
// This works with OpenAI, OpenRouter, Together.ai, Groq, and other compatible services.
type OpenAIProvider struct {
	model   string
	baseURL string
	api     jsonClient
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(apiKey, model, baseURL string, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		model:   model,
		baseURL: baseURL,
		api: newJSONClient("openai", timeout, map[string]string{
			"Authorization": "Bearer " + apiKey,
		}),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends the request to the chat completions endpoint.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.User})

	var result openAIResponse
	err := p.api.post(ctx, p.baseURL+"/chat/completions", openAIRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: maxTokens(req.MaxTokens),
	}, &result)
	if err != nil {
		return CompletionResponse{}, err
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return CompletionResponse{}, ErrNoContent
	}
	return CompletionResponse{
		Text:   result.Choices[0].Message.Content,
		Tokens: result.Usage.TotalTokens,
	}, nil
}

type openAIRequest struct {
	Model               string          `json:"model"`
	Messages            []openAIMessage `json:"messages"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	Temperature         float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}
