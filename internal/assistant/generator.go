package assistant

import (
	"context"

	"github.com/JonMunkholm/AskSQL/internal/executor"
	"github.com/JonMunkholm/AskSQL/internal/llm"
	"github.com/JonMunkholm/AskSQL/internal/schema"
)

// Generator asks the language model for SQL. Prompts are rendered once from the catalog.
type Generator struct {
	provider         llm.Provider
	generationPrompt string
	schemaExcerpt    string
	maxTokens        int
}

// NewGenerator creates a Generator for catalog.
func NewGenerator(provider llm.Provider, catalog *schema.Catalog, maxTokens int) *Generator {
	return &Generator{
		provider:         provider,
		generationPrompt: llm.BuildGenerationPrompt(catalog.Database, catalog.ToText()),
		schemaExcerpt:    catalog.Excerpt(schema.Products, schema.Suppliers),
		maxTokens:        maxTokens,
	}
}

// Generate translates question into SQL text. The text is not validated.
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	return g.complete(ctx, g.generationPrompt, question)
}

// Repair asks for a corrected statement, embedding the failing SQL and its exact error text.
func (g *Generator) Repair(ctx context.Context, question, failedSQL, errText string) (string, error) {
	prompt := llm.BuildCorrectionPrompt(failedSQL, errText, g.schemaExcerpt)
	return g.complete(ctx, prompt, question)
}

func (g *Generator) complete(ctx context.Context, system, question string) (string, error) {
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		System:    system,
		User:      question,
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return llm.CleanSQL(resp.Text), nil
}

// Summarizer turns a result set into a prose answer.
type Summarizer struct {
	provider  llm.Provider
	overview  string
	maxTokens int
}

// NewSummarizer creates a Summarizer that describes catalog's tables in its prompt.
func NewSummarizer(provider llm.Provider, catalog *schema.Catalog, maxTokens int) *Summarizer {
	return &Summarizer{provider: provider, overview: catalog.Overview(), maxTokens: maxTokens}
}

// Summarize inlines every row of result into the prompt and returns the model's answer.
func (s *Summarizer) Summarize(ctx context.Context, question string, result *executor.Result) (string, error) {
	var rows [][]any
	if result != nil {
		rows = result.Rows
	}
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		User:      llm.BuildSummaryPrompt(rows, question, s.overview),
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
