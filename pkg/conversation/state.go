// Package conversation implements the guided dialogue that turns a free-form
// exchange into a structured decision draft, and the state machine that walks
// the draft from capture to a saved record.
package conversation

// State identifies a phase of the capture dialogue.
//
// The machine starts in StateCapturing and advances to StateReview once the
// conversation has enough substance. From review the user moves between
// StateEditing and StateConfirm, or into StateReflecting for advisory turns.
// Saving returns the machine to StateCapturing from any state.
type State string

const (
	// StateCapturing accepts free text and infers draft fields in the
	// background.
	StateCapturing State = "capturing"

	// StateReview locks free text out; progress requires an explicit
	// Edit, Confirm or RequestAdvisory action.
	StateReview State = "review"

	// StateEditing re-enables direct field mutation on the draft.
	StateEditing State = "editing"

	// StateConfirm makes the draft read-only pending Save.
	StateConfirm State = "confirm"

	// StateReflecting treats free text as questions to an advisor. The
	// draft is never modified in this state.
	StateReflecting State = "reflecting"
)

// Speaker roles for dialogue turns.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Turn is one entry in the dialogue log.
type Turn struct {
	// Speaker is SpeakerUser or SpeakerAssistant.
	Speaker string `json:"speaker"`

	// Text is the turn content.
	Text string `json:"text"`
}

// MinUserTurns is the number of user turns required before the machine may
// leave StateCapturing. Fewer turns rarely carry enough signal to infer a
// draft worth reviewing.
const MinUserTurns = 3

// Greeting seeds every fresh dialogue log as the first assistant turn.
const Greeting = "What decision is on your mind? Tell me about it and I will help you lay it out."

// FallbackReply replaces an assistant turn when the generation service is
// unreachable or returns nothing. The conversation stays usable either way.
const FallbackReply = "I could not reach the language service just now. Keep going, everything you write here is still being captured."

// ThinkingPlaceholder is the transient assistant turn shown while a
// reflection reply is being generated. It is replaced in place once the
// reply arrives.
const ThinkingPlaceholder = "Thinking..."
