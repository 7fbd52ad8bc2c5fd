package llm

import (
	"context"
	"time"

	"github.com/JonMunkholm/AskSQL/internal/logging"
)

// loggedProvider records every completion request and its outcome.
type loggedProvider struct {
	next Provider
}

// WithLogging wraps p so each Complete call is logged with its duration and token count.
// Prompt bodies are logged at debug level only.
func WithLogging(p Provider) Provider {
	return &loggedProvider{next: p}
}

func (l *loggedProvider) Name() string {
	return l.next.Name()
}

func (l *loggedProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	logging.Debug("llm request",
		"provider", l.next.Name(),
		"system", req.System,
		"user", req.User,
	)

	start := time.Now()
	resp, err := l.next.Complete(ctx, req)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		logging.Error("llm request failed",
			"provider", l.next.Name(),
			"duration_ms", elapsed,
			"error", err,
		)
		return resp, err
	}

	logging.Info("llm request completed",
		"provider", l.next.Name(),
		"duration_ms", elapsed,
		"tokens", resp.Tokens,
	)
	logging.Debug("llm response", "provider", l.next.Name(), "text", resp.Text)
	return resp, nil
}
