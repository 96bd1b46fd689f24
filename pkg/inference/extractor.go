// Package inference turns dialogue transcripts into structured decision
// fields and one-line summaries by prompting an LLM and strictly decoding
// its output.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AmlanDas-dot/Innovastra/pkg/llm"
	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
)

// ErrNoInference indicates the model output could not be decoded into the
// five decision fields. Extraction is best-effort: callers discard the
// attempt and carry on with the draft they have.
var ErrNoInference = errors.New("inference: output is not a five-field object")

// Extractor infers draft decision fields from a conversation transcript.
//
// Example usage:
//
//	extractor := inference.NewExtractor(llmProvider)
//	fields, err := extractor.Extract(ctx, transcript)
//	if err == nil {
//	    draft.Merge(fields)
//	}
type Extractor struct {
	// llm is the LLM provider for field extraction.
	llm llm.Provider

	// customPrompt is an optional custom system prompt.
	// If empty, uses the default prompt.
	customPrompt string
}

// NewExtractor creates a new field extractor with the default prompt.
func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{
		llm: provider,
	}
}

// NewExtractorWithPrompt creates a new field extractor with a custom system prompt.
//
// Parameters:
//   - provider: LLM provider for extraction (required)
//   - customPrompt: Custom system prompt (optional, uses default if empty)
func NewExtractorWithPrompt(provider llm.Provider, customPrompt string) *Extractor {
	return &Extractor{
		llm:          provider,
		customPrompt: customPrompt,
	}
}

// Extract submits the transcript and decodes the reply into decision fields.
//
// The reply must be a single JSON object carrying all five field keys with
// string values; code fences around it are tolerated and stripped. Anything
// else, including arrays, missing keys, and non-string values, fails with
// ErrNoInference. Slots the model left empty come back as empty strings, so
// merging the result can never erase what the draft already holds.
func (e *Extractor) Extract(ctx context.Context, transcript string) (memory.Fields, error) {
	messages := []llm.Message{
		{Role: "system", Content: e.systemPrompt()},
		{Role: "user", Content: fmt.Sprintf("Transcript:\n%s", transcript)},
	}

	response, err := e.llm.GenerateWithMessages(ctx, messages)
	if err != nil {
		return memory.Fields{}, fmt.Errorf("failed to extract fields: %w", err)
	}

	return decodeFields(response)
}

// systemPrompt returns the system prompt for field extraction.
func (e *Extractor) systemPrompt() string {
	if e.customPrompt != "" {
		return e.customPrompt
	}
	return DefaultExtractionPrompt
}

// decodeFields parses model output into the five decision fields.
func decodeFields(response string) (memory.Fields, error) {
	response = removeCodeBlocks(response)

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return memory.Fields{}, fmt.Errorf("%w: %v", ErrNoInference, err)
	}

	var fields memory.Fields
	for _, name := range []string{
		memory.FieldDecision,
		memory.FieldIntent,
		memory.FieldConstraints,
		memory.FieldAlternatives,
		memory.FieldReasoning,
	} {
		raw, ok := result[name]
		if !ok {
			return memory.Fields{}, fmt.Errorf("%w: missing key %q", ErrNoInference, name)
		}
		value, ok := raw.(string)
		if !ok {
			return memory.Fields{}, fmt.Errorf("%w: key %q is not a string", ErrNoInference, name)
		}
		_ = fields.Set(name, strings.TrimSpace(value))
	}

	return fields, nil
}

// removeCodeBlocks removes code blocks (```json ... ```) from response.
func removeCodeBlocks(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	return strings.TrimSpace(response)
}
