package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GeminiProvider implements the Provider interface for Google's Gemini API.
type GeminiProvider struct {
	model   string
	baseURL string
	api     jsonClient
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(apiKey, model, baseURL string, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{
		model:   model,
		baseURL: baseURL,
		api:     newJSONClient("gemini", timeout, map[string]string{"x-goog-api-key": apiKey}),
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete calls generateContent with the system instruction and one user turn.
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.User}}},
		},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: maxTokens(req.MaxTokens),
		},
	}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	var result geminiResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	if err := p.api.post(ctx, url, payload, &result); err != nil {
		return CompletionResponse{}, err
	}

	if len(result.Candidates) == 0 {
		return CompletionResponse{}, ErrNoContent
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return CompletionResponse{}, ErrNoContent
	}

	return CompletionResponse{
		Text:   sb.String(),
		Tokens: result.UsageMetadata.TotalTokenCount,
	}, nil
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}
