// Package assistant answers natural-language questions by generating SQL,
// repairing it on execution errors, and summarizing the result.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/AskSQL/internal/executor"
	"github.com/JonMunkholm/AskSQL/internal/llm"
	"github.com/JonMunkholm/AskSQL/internal/logging"
	"github.com/JonMunkholm/AskSQL/internal/schema"
)

// DefaultMaxCorrections is the repair budget used when Options leaves it unset.
const DefaultMaxCorrections = 5

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("question is required")

// Executor runs SQL text and classifies the outcome.
type Executor interface {
	Execute(ctx context.Context, sqlText string) executor.Outcome
}

// Status is the terminal state of a question.
type Status int

const (
	// StatusRows means a SELECT returned a result set.
	StatusRows Status = iota
	// StatusAcknowledged means a non-SELECT statement committed with nothing to show.
	StatusAcknowledged
	// StatusExhausted means every repair attempt still failed.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusRows:
		return "rows"
	case StatusAcknowledged:
		return "acknowledged"
	case StatusExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Options configures an Assistant.
type Options struct {
	MaxCorrections int // repair rounds after the first failure (<= 0 means DefaultMaxCorrections)
	MaxTokens      int // per model call (0 = provider default)
}

// Assistant wires the generator, executor, correction loop, and summarizer.
// It keeps no state between questions.
type Assistant struct {
	generator      *Generator
	summarizer     *Summarizer
	exec           Executor
	maxCorrections int
}

// New creates an Assistant.
func New(provider llm.Provider, exec Executor, catalog *schema.Catalog, opts Options) *Assistant {
	if opts.MaxCorrections <= 0 {
		opts.MaxCorrections = DefaultMaxCorrections
	}
	return &Assistant{
		generator:      NewGenerator(provider, catalog, opts.MaxTokens),
		summarizer:     NewSummarizer(provider, catalog, opts.MaxTokens),
		exec:           exec,
		maxCorrections: opts.MaxCorrections,
	}
}

// MaxCorrections returns the repair budget.
func (a *Assistant) MaxCorrections() int {
	return a.maxCorrections
}

// Answer is the final state of one question.
type Answer struct {
	Question  string
	SQL       string // last statement executed
	Status    Status
	Result    *executor.Result // StatusRows only
	Summary   string           // StatusRows only
	Warning   string           // StatusAcknowledged only
	LastError string           // StatusExhausted only
	Attempts  int              // statements executed
}

// Ask runs one question through generation, correction, and summarization.
//
// Model failures are returned as errors and are not retried. When the
// summary call fails, the answer with its result set is returned alongside
// the error.
func (a *Assistant) Ask(ctx context.Context, question string, r Reporter) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if r == nil {
		r = Discard
	}

	sqlText, err := a.generator.Generate(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("generate sql: %w", err)
	}
	logging.Info("sql generated", "question", question, "sql", sqlText)
	r.Report(Event{Kind: EventGenerated, SQL: sqlText})

	c, err := a.Correct(ctx, question, sqlText, r)
	if err != nil {
		return nil, err
	}

	ans := &Answer{
		Question: question,
		SQL:      c.SQL,
		Status:   c.Status,
		Attempts: c.Attempts,
	}

	switch c.Status {
	case StatusAcknowledged:
		ans.Warning = c.Outcome.Message
		return ans, nil

	case StatusExhausted:
		ans.LastError = c.Outcome.ErrorText()
		return ans, nil
	}

	ans.Result = c.Outcome.Result
	r.Report(Event{Kind: EventResult, SQL: c.SQL, Message: fmt.Sprintf("%d rows", len(ans.Result.Rows))})

	summary, err := a.summarizer.Summarize(ctx, question, ans.Result)
	if err != nil {
		return ans, fmt.Errorf("summarize result: %w", err)
	}
	ans.Summary = summary
	r.Report(Event{Kind: EventSummary, Message: summary})

	return ans, nil
}
