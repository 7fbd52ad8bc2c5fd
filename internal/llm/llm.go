// Package llm provides language-model provider integrations used to generate,
// repair, and explain SQL.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoContent is returned when a provider answers without any text.
var ErrNoContent = errors.New("no content in model response")

// Provider defines the interface for LLM integrations.
type Provider interface {
	// Complete sends a system instruction and user text and returns the generated text.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Name returns the provider name for logging/debugging.
	Name() string
}

// CompletionRequest contains the input for a single completion.
type CompletionRequest struct {
	System    string // System instruction; omitted from the request when blank
	User      string // User text
	MaxTokens int    // Max tokens for response (0 = provider default)
}

// CompletionResponse contains the generated text.
type CompletionResponse struct {
	Text   string
	Tokens int // Tokens used, when the provider reports them
}

const (
	defaultMaxTokens = 2048
	defaultTimeout   = 60 * time.Second
)

// Config holds LLM provider configuration.
type Config struct {
	Provider string        // "gemini", "openai", "anthropic" or "ollama"
	APIKey   string        // API key for the provider
	Model    string        // Model name
	BaseURL  string        // Base URL (for OpenRouter, proxies, etc.)
	Timeout  time.Duration // HTTP client timeout (0 = 60s)
}

// NewProvider creates an LLM provider based on configuration.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.Provider == "" {
		cfg.Provider = "gemini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.APIKey == "" && cfg.Provider != "ollama" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Provider)
	}

	switch cfg.Provider {
	case "gemini":
		if cfg.Model == "" {
			cfg.Model = "gemini-2.0-flash"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
		}
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil

	case "openai":
		if cfg.Model == "" {
			cfg.Model = "gpt-4o"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.openai.com/v1"
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil

	case "anthropic":
		if cfg.Model == "" {
			cfg.Model = "claude-sonnet-4-20250514"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.anthropic.com/v1"
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil

	case "ollama":
		if cfg.Model == "" {
			cfg.Model = "llama3"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:11434"
		}
		return NewOllamaProvider(cfg.Model, cfg.BaseURL, cfg.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: gemini, openai, anthropic, ollama)", cfg.Provider)
	}
}

// CleanSQL strips surrounding whitespace and a markdown code fence from model output.
// The text is otherwise returned as-is; it is not checked to be SQL.
func CleanSQL(raw string) string {
	sql := strings.TrimSpace(raw)
	sql = strings.TrimPrefix(sql, "```sql")
	sql = strings.TrimPrefix(sql, "```SQL")
	sql = strings.TrimPrefix(sql, "```")
	sql = strings.TrimSuffix(sql, "```")
	return strings.TrimSpace(sql)
}

func maxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
