package inference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmlanDas-dot/Innovastra/pkg/inference"
	"github.com/AmlanDas-dot/Innovastra/pkg/llm"
	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
)

// fakeProvider is an llm.Provider returning canned output.
type fakeProvider struct {
	response     string
	err          error
	lastPrompt   string
	lastMessages []llm.Message
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	p.lastPrompt = prompt
	return p.response, p.err
}

func (p *fakeProvider) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	p.lastMessages = messages
	return p.response, p.err
}

func (p *fakeProvider) Close() error { return nil }

func TestExtractDecodesFiveFieldObject(t *testing.T) {
	provider := &fakeProvider{
		response: `{"decision": "Take the Berlin offer", "intent": "growth", "constraints": "", "alternatives": "Amsterdam offer", "reasoning": "stronger team"}`,
	}
	extractor := inference.NewExtractor(provider)

	fields, err := extractor.Extract(context.Background(), "user: I'll take Berlin")
	require.NoError(t, err)

	assert.Equal(t, memory.Fields{
		Decision:     "Take the Berlin offer",
		Intent:       "growth",
		Alternatives: "Amsterdam offer",
		Reasoning:    "stronger team",
	}, fields)
}

func TestExtractStripsCodeFences(t *testing.T) {
	provider := &fakeProvider{
		response: "```json\n{\"decision\": \"Keep PostgreSQL\", \"intent\": \"\", \"constraints\": \"\", \"alternatives\": \"\", \"reasoning\": \"\"}\n```",
	}
	extractor := inference.NewExtractor(provider)

	fields, err := extractor.Extract(context.Background(), "transcript")
	require.NoError(t, err)
	assert.Equal(t, "Keep PostgreSQL", fields.Decision)
}

func TestExtractTrimsValues(t *testing.T) {
	provider := &fakeProvider{
		response: `{"decision": "  padded  ", "intent": "", "constraints": "", "alternatives": "", "reasoning": ""}`,
	}
	extractor := inference.NewExtractor(provider)

	fields, err := extractor.Extract(context.Background(), "transcript")
	require.NoError(t, err)
	assert.Equal(t, "padded", fields.Decision)
}

func TestExtractToleratesExtraKeys(t *testing.T) {
	provider := &fakeProvider{
		response: `{"decision": "d", "intent": "i", "constraints": "c", "alternatives": "a", "reasoning": "r", "confidence": 0.9}`,
	}
	extractor := inference.NewExtractor(provider)

	fields, err := extractor.Extract(context.Background(), "transcript")
	require.NoError(t, err)
	assert.Equal(t, "d", fields.Decision)
}

func TestExtractRejectsUndecodableOutput(t *testing.T) {
	testCases := []struct {
		name     string
		response string
	}{
		{
			name:     "prose instead of json",
			response: "I could not find a decision in this conversation.",
		},
		{
			name:     "array instead of object",
			response: `["decision", "intent"]`,
		},
		{
			name:     "missing keys",
			response: `{"decision": "only one key"}`,
		},
		{
			name:     "non-string value",
			response: `{"decision": 42, "intent": "", "constraints": "", "alternatives": "", "reasoning": ""}`,
		},
		{
			name:     "null value",
			response: `{"decision": null, "intent": "", "constraints": "", "alternatives": "", "reasoning": ""}`,
		},
		{
			name:     "empty response",
			response: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			extractor := inference.NewExtractor(&fakeProvider{response: tc.response})

			fields, err := extractor.Extract(context.Background(), "transcript")
			assert.ErrorIs(t, err, inference.ErrNoInference)
			assert.True(t, fields.IsEmpty())
		})
	}
}

func TestExtractPropagatesProviderError(t *testing.T) {
	boom := errors.New("connection refused")
	extractor := inference.NewExtractor(&fakeProvider{err: boom})

	_, err := extractor.Extract(context.Background(), "transcript")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, inference.ErrNoInference)
}

func TestExtractSendsSystemPromptAndTranscript(t *testing.T) {
	provider := &fakeProvider{
		response: `{"decision": "", "intent": "", "constraints": "", "alternatives": "", "reasoning": ""}`,
	}
	extractor := inference.NewExtractor(provider)

	_, err := extractor.Extract(context.Background(), "user: should I switch teams?")
	require.NoError(t, err)

	require.Len(t, provider.lastMessages, 2)
	assert.Equal(t, "system", provider.lastMessages[0].Role)
	assert.Equal(t, inference.DefaultExtractionPrompt, provider.lastMessages[0].Content)
	assert.Equal(t, "user", provider.lastMessages[1].Role)
	assert.Contains(t, provider.lastMessages[1].Content, "user: should I switch teams?")
}

func TestExtractCustomPrompt(t *testing.T) {
	provider := &fakeProvider{
		response: `{"decision": "", "intent": "", "constraints": "", "alternatives": "", "reasoning": ""}`,
	}
	extractor := inference.NewExtractorWithPrompt(provider, "custom system prompt")

	_, err := extractor.Extract(context.Background(), "transcript")
	require.NoError(t, err)

	require.Len(t, provider.lastMessages, 2)
	assert.Equal(t, "custom system prompt", provider.lastMessages[0].Content)
}
