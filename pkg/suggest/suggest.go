// Package suggest scores stored decision memories against the in-progress
// draft and produces both the suggestion list and the display ordering.
//
// Everything here is a pure function of its inputs. The engine owns no
// state, so scoring and ordering are fully testable by construction.
package suggest

import (
	"sort"
	"strings"
	"time"

	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
	"github.com/AmlanDas-dot/Innovastra/pkg/termvec"
)

// Config tunes suggestion scoring.
//
// The thresholds are policy constants: they may be tuned at construction
// time but must stay fixed within one build so suggestion behavior is
// reproducible in tests.
type Config struct {
	// Threshold is the score a candidate must exceed to be suggested.
	Threshold int

	// RichThreshold replaces Threshold when the query carries more than
	// RichTermLimit distinct terms. Richer queries produce larger dot
	// products, so they are held to a stricter bar.
	RichThreshold int

	// RichTermLimit is the distinct-term count above which RichThreshold
	// applies.
	RichTermLimit int

	// MaxSuggestions caps how many indices Suggest returns.
	MaxSuggestions int

	// RecencyWindow is the age within which a record earns RecencyBoost.
	RecencyWindow time.Duration

	// RecencyBoost is added to the score of records younger than
	// RecencyWindow.
	RecencyBoost int
}

// DefaultConfig returns the standard scoring configuration: threshold 2,
// rising to 3 for queries with more than 4 distinct terms, top 3 results,
// and a recency boost of 1 within 30 days.
func DefaultConfig() Config {
	return Config{
		Threshold:      2,
		RichThreshold:  3,
		RichTermLimit:  4,
		MaxSuggestions: 3,
		RecencyWindow:  30 * 24 * time.Hour,
		RecencyBoost:   1,
	}
}

// Query concatenates the draft slots that feed the suggestion query.
//
// Alternatives are excluded deliberately: text about the options not taken
// is the weakest similarity signal and drags in unrelated records.
func Query(draft memory.Fields) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{draft.Decision, draft.Intent, draft.Constraints, draft.Reasoning} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Suggest returns indices into memories worth surfacing for the draft, best
// first, at most cfg.MaxSuggestions of them.
//
// Each candidate scores the dot product of the query vector and its own
// vector, plus cfg.RecencyBoost when it was created within cfg.RecencyWindow
// of now. Records without a vector score 0, not an error. Candidates must
// exceed the threshold to appear; ties keep store order (stable sort). An
// empty query vector returns nothing: with no draft text yet, surfacing
// arbitrary records would be noise.
func Suggest(draft memory.Fields, memories []memory.Memory, vectors memory.Vectors, now time.Time, cfg Config) []int {
	query := termvec.Build(Query(draft))
	if len(query) == 0 {
		return nil
	}

	threshold := cfg.Threshold
	if len(query) > cfg.RichTermLimit {
		threshold = cfg.RichThreshold
	}

	type candidate struct {
		index int
		score int
	}

	var candidates []candidate
	for i, m := range memories {
		score := termvec.Dot(query, vectors[m.ID])
		if cfg.RecencyBoost != 0 && now.Sub(m.CreatedAt) <= cfg.RecencyWindow {
			score += cfg.RecencyBoost
		}
		if score > threshold {
			candidates = append(candidates, candidate{index: i, score: score})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if cfg.MaxSuggestions > 0 && len(candidates) > cfg.MaxSuggestions {
		candidates = candidates[:cfg.MaxSuggestions]
	}

	out := make([]int, len(candidates))
	for i, c := range candidates {
		out[i] = c.index
	}
	return out
}
