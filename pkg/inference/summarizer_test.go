package inference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmlanDas-dot/Innovastra/pkg/inference"
	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
)

func TestSummarizeKeepsFirstLine(t *testing.T) {
	provider := &fakeProvider{response: "\"Move to Berlin for the stronger team.\"\nHere is more detail you did not ask for."}
	summarizer := inference.NewSummarizer(provider)

	summary, err := summarizer.Summarize(context.Background(), memory.Fields{Decision: "Move to Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "Move to Berlin for the stronger team.", summary)
}

func TestSummarizePromptCarriesFields(t *testing.T) {
	provider := &fakeProvider{response: "ok"}
	summarizer := inference.NewSummarizer(provider)

	_, err := summarizer.Summarize(context.Background(), memory.Fields{
		Decision: "Adopt Kubernetes",
		Intent:   "standardize deployments",
	})
	require.NoError(t, err)

	assert.Contains(t, provider.lastPrompt, "Decision: Adopt Kubernetes")
	assert.Contains(t, provider.lastPrompt, "Intent: standardize deployments")
	// Empty slots stay out of the prompt.
	assert.NotContains(t, provider.lastPrompt, "Constraints:")
}

func TestSummarizePropagatesError(t *testing.T) {
	boom := errors.New("model offline")
	summarizer := inference.NewSummarizer(&fakeProvider{err: boom})

	summary, err := summarizer.Summarize(context.Background(), memory.Fields{Decision: "anything"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, summary)
}

func TestReflectionPrompt(t *testing.T) {
	prompt := inference.ReflectionPrompt(memory.Fields{
		Decision:  "Freeze hiring until Q2",
		Reasoning: "runway is tight",
	}, "What am I missing?")

	assert.Contains(t, prompt, "Decision: Freeze hiring until Q2")
	assert.Contains(t, prompt, "Reasoning: runway is tight")
	assert.Contains(t, prompt, "What am I missing?")
	assert.NotContains(t, prompt, "Alternatives:")
}

func TestInjectionPromptPrefersSummaries(t *testing.T) {
	prompt := inference.InjectionPrompt([]memory.Memory{
		{Fields: memory.Fields{Decision: "Move to Berlin"}, Summary: "Moved to Berlin for the team"},
		{Fields: memory.Fields{Decision: "Keep PostgreSQL"}, Summary: memory.SummaryPlaceholder},
	})

	assert.Contains(t, prompt, "- Moved to Berlin for the team")
	// Placeholder summaries fall back to the decision text.
	assert.Contains(t, prompt, "- Keep PostgreSQL")
	assert.NotContains(t, prompt, memory.SummaryPlaceholder)
}

func TestInjectionFallback(t *testing.T) {
	text := inference.InjectionFallback([]memory.Memory{
		{Fields: memory.Fields{Decision: "Move to Berlin"}, Summary: "Moved to Berlin for the team"},
		{Fields: memory.Fields{Decision: "Keep PostgreSQL"}},
	})

	assert.Contains(t, text, "Moved to Berlin for the team")
	assert.Contains(t, text, "Keep PostgreSQL")

	assert.Empty(t, inference.InjectionFallback(nil))
}
