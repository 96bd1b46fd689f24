package inference

import (
	"fmt"
	"strings"

	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
)

// DefaultExtractionPrompt is the default system prompt for inferring decision
// fields from a transcript.
const DefaultExtractionPrompt = `You are a decision analyst. Read the conversation and fill a JSON object describing the decision under discussion.

Fields:
- "decision": what the speaker has decided or is leaning toward
- "intent": the goal the decision serves
- "constraints": limits the decision must respect (time, money, people)
- "alternatives": options considered and not taken
- "reasoning": why this option wins over the alternatives

CRITICAL Rules:
1. Return ONLY a JSON object with exactly these five keys, all values strings.
2. Use an empty string for anything the conversation does not reveal. Never invent details.
3. Keep each value to one or two short sentences, in the speaker's own wording where possible.
4. Preserve the input language.

Example:
Input:
user: I think I'll take the Berlin offer. Mostly for the team, honestly.
assistant: What held you back from the Amsterdam one?
user: The salary was better but the role felt like a dead end.
Output: {"decision": "Take the Berlin offer", "intent": "Work with a stronger team", "constraints": "", "alternatives": "Amsterdam offer with a better salary", "reasoning": "The Amsterdam role felt like a dead end"}

Extract the decision fields from the conversation below:`

// DefaultGuidePrompt is the default system prompt for the conversational
// replies that carry a capture session forward.
const DefaultGuidePrompt = `You are a decision guide. The user is thinking through a real decision. Ask one concrete question at a time that surfaces what they want to do, why, what limits them, and what else they considered. Never lecture, never decide for them, and keep every reply under three sentences.`

// summaryTemplate is the template for one-line summary prompts.
const summaryTemplate = `Summarize the following decision in one short sentence of at most 15 words. Output only the sentence, without quotes.

%s`

// reflectionTemplate is the template for advisory prompts. The model is asked
// to comment only; reflection replies never feed back into the draft.
const reflectionTemplate = `You are a thoughtful advisor. The user has drafted the following decision and wants your perspective before committing to it.

%s

Do not rewrite the draft and do not restate it as a list. Offer a short, balanced reflection: one or two risks or blind spots worth a second look, and one thing that seems sound. Keep it under 120 words and speak directly to the user.

The user asks: %s`

// injectionTemplate is the template for synthesizing a context turn from the
// user's selected past decisions.
const injectionTemplate = `The user has pulled the following past decisions into the current conversation as context. Write one short assistant message of at most three sentences acknowledging them and connecting them to the present discussion. Do not list them back verbatim.

%s`

// buildSummaryPrompt builds the one-line summary prompt for the given fields.
func buildSummaryPrompt(fields memory.Fields) string {
	return fmt.Sprintf(summaryTemplate, describeFields(fields))
}

// ReflectionPrompt builds the advisory prompt for a reflection turn.
//
// The prompt is deliberately comment-only: nothing in it invites revised
// field values, and its output is never parsed.
func ReflectionPrompt(fields memory.Fields, question string) string {
	return fmt.Sprintf(reflectionTemplate, describeFields(fields), question)
}

// InjectionPrompt builds the prompt that synthesizes a context turn for the
// selected records.
func InjectionPrompt(selected []memory.Memory) string {
	var b strings.Builder
	for _, m := range selected {
		fmt.Fprintf(&b, "- %s\n", recordLine(m))
	}
	return fmt.Sprintf(injectionTemplate, strings.TrimRight(b.String(), "\n"))
}

// InjectionFallback renders the context turn locally when the generation
// service is unavailable, so a selection always produces an acknowledgment.
func InjectionFallback(selected []memory.Memory) string {
	if len(selected) == 0 {
		return ""
	}

	lines := make([]string, 0, len(selected))
	for _, m := range selected {
		lines = append(lines, recordLine(m))
	}
	return "Noted. Keeping these earlier decisions in mind: " + strings.Join(lines, "; ") + "."
}

// recordLine picks the best one-line description of a record for prompt text.
func recordLine(m memory.Memory) string {
	if m.Summary != "" && m.Summary != memory.SummaryPlaceholder {
		return m.Summary
	}
	return m.Decision
}

// describeFields renders the non-empty slots as labeled lines for prompt text.
func describeFields(fields memory.Fields) string {
	var b strings.Builder
	write := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	write("Decision", fields.Decision)
	write("Intent", fields.Intent)
	write("Constraints", fields.Constraints)
	write("Alternatives", fields.Alternatives)
	write("Reasoning", fields.Reasoning)
	return strings.TrimRight(b.String(), "\n")
}
