package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/AmlanDas-dot/Innovastra/pkg/llm"
	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
)

// Summarizer produces the one-line summary stored with a finalized record.
// It satisfies memory.Summarizer.
type Summarizer struct {
	// llm is the LLM provider for summary generation.
	llm llm.Provider
}

// NewSummarizer creates a new summarizer.
func NewSummarizer(provider llm.Provider) *Summarizer {
	return &Summarizer{
		llm: provider,
	}
}

// Summarize asks the model for a single sentence describing the decision.
//
// Only the first line of the reply is kept. An empty result is returned
// as-is: the memory store treats it like a failure and substitutes its
// placeholder, so callers never see a blank summary on a saved record.
func (s *Summarizer) Summarize(ctx context.Context, fields memory.Fields) (string, error) {
	prompt := buildSummaryPrompt(fields)

	response, err := s.llm.Generate(ctx, prompt, llm.WithMaxTokens(60))
	if err != nil {
		return "", fmt.Errorf("failed to summarize decision: %w", err)
	}

	summary := strings.TrimSpace(response)
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = strings.TrimSpace(summary[:i])
	}
	return strings.Trim(summary, `"`), nil
}
