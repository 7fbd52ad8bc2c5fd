package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/JonMunkholm/AskSQL/internal/llm"
)

// ErrScriptExhausted is returned by ScriptedProvider when it has no reply left.
var ErrScriptExhausted = errors.New("scripted provider: no replies left")

// Reply is one scripted provider answer.
type Reply struct {
	Text string
	Err  error
}

// ScriptedProvider is an llm.Provider that answers from a fixed list of replies
// and records every request it receives.
type ScriptedProvider struct {
	mu       sync.Mutex
	replies  []Reply
	requests []llm.CompletionRequest

	// Fallback, when set, answers requests after the scripted replies run out.
	Fallback func(llm.CompletionRequest) (string, error)
}

var _ llm.Provider = (*ScriptedProvider)(nil)

// NewScriptedProvider returns a provider that answers with texts in order.
func NewScriptedProvider(texts ...string) *ScriptedProvider {
	p := &ScriptedProvider{}
	for _, text := range texts {
		p.replies = append(p.replies, Reply{Text: text})
	}
	return p
}

// Push appends replies to the script.
func (p *ScriptedProvider) Push(replies ...Reply) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, replies...)
}

// Name returns "scripted".
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// Complete returns the next scripted reply.
func (p *ScriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	if err := ctx.Err(); err != nil {
		return llm.CompletionResponse{}, err
	}

	if len(p.replies) == 0 {
		if p.Fallback != nil {
			text, err := p.Fallback(req)
			return llm.CompletionResponse{Text: text}, err
		}
		return llm.CompletionResponse{}, ErrScriptExhausted
	}

	r := p.replies[0]
	p.replies = p.replies[1:]
	if r.Err != nil {
		return llm.CompletionResponse{}, r.Err
	}
	return llm.CompletionResponse{Text: r.Text, Tokens: len(r.Text)}, nil
}

// Requests returns a copy of the requests received so far.
func (p *ScriptedProvider) Requests() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.CompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
