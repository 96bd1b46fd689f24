// Package memory implements the decision memory store.
//
// A decision memory is the distilled outcome of a guided conversation: five
// free-text slots describing what was decided and why, plus a one-line
// summary, an archived flag, and a creation timestamp. The Store keeps the
// full collection in memory, persists it through a storage backend under two
// well-known keys, and maintains a term vector per record for retrieval.
package memory

import (
	"strings"
	"time"

	"github.com/AmlanDas-dot/Innovastra/pkg/termvec"
)

// Names of the five decision slots, as used by SetField-style operations and
// by the persisted JSON shape.
const (
	FieldDecision     = "decision"
	FieldIntent       = "intent"
	FieldConstraints  = "constraints"
	FieldAlternatives = "alternatives"
	FieldReasoning    = "reasoning"
)

// Fields holds the five free-text slots of a decision record.
//
// The same shape backs both finalized records and the in-progress draft a
// conversation accumulates. Any slot may be empty.
type Fields struct {
	// Decision is what was decided.
	Decision string `json:"decision"`

	// Intent is the goal the decision serves.
	Intent string `json:"intent"`

	// Constraints are the limits the decision had to respect.
	Constraints string `json:"constraints"`

	// Alternatives are the options that were considered and not taken.
	Alternatives string `json:"alternatives"`

	// Reasoning is why the decision won over the alternatives.
	Reasoning string `json:"reasoning"`
}

// IsEmpty reports whether all five slots are blank.
func (f Fields) IsEmpty() bool {
	return f.Decision == "" && f.Intent == "" && f.Constraints == "" &&
		f.Alternatives == "" && f.Reasoning == ""
}

// Joined returns the non-empty slots concatenated, one per line.
// This is the text a record's term vector is built from.
func (f Fields) Joined() string {
	parts := make([]string, 0, 5)
	for _, s := range []string{f.Decision, f.Intent, f.Constraints, f.Alternatives, f.Reasoning} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Get returns the value of the named slot.
// The second return value is false for unknown names.
func (f Fields) Get(name string) (string, bool) {
	switch name {
	case FieldDecision:
		return f.Decision, true
	case FieldIntent:
		return f.Intent, true
	case FieldConstraints:
		return f.Constraints, true
	case FieldAlternatives:
		return f.Alternatives, true
	case FieldReasoning:
		return f.Reasoning, true
	default:
		return "", false
	}
}

// Set assigns value to the named slot.
// Unknown names return ErrUnknownField and change nothing.
func (f *Fields) Set(name, value string) error {
	switch name {
	case FieldDecision:
		f.Decision = value
	case FieldIntent:
		f.Intent = value
	case FieldConstraints:
		f.Constraints = value
	case FieldAlternatives:
		f.Alternatives = value
	case FieldReasoning:
		f.Reasoning = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Merge overlays the non-empty slots of other onto f.
//
// An empty slot in other never clears a value f already holds, so a partial
// inference can only add or replace, not erase.
func (f *Fields) Merge(other Fields) {
	if other.Decision != "" {
		f.Decision = other.Decision
	}
	if other.Intent != "" {
		f.Intent = other.Intent
	}
	if other.Constraints != "" {
		f.Constraints = other.Constraints
	}
	if other.Alternatives != "" {
		f.Alternatives = other.Alternatives
	}
	if other.Reasoning != "" {
		f.Reasoning = other.Reasoning
	}
}

// Memory is a finalized decision record.
type Memory struct {
	// ID is the opaque, immutable identifier of the record.
	ID string `json:"id"`

	Fields

	// Summary is a one-line description shown in lists. Records whose
	// summary could not be generated carry SummaryPlaceholder.
	Summary string `json:"summary"`

	// Archived hides the record from default listings without deleting it.
	Archived bool `json:"archived"`

	// CreatedAt is when the record was finalized.
	CreatedAt time.Time `json:"created_at"`
}

// Vectors maps record IDs to their term vectors.
//
// A missing entry is tolerated everywhere and scores as an empty vector.
type Vectors map[string]termvec.Vector

// SummaryPlaceholder is stored when summary generation fails or returns
// nothing, so every record renders with some list line.
const SummaryPlaceholder = "(no summary)"
