package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
)

func TestFieldsIsEmpty(t *testing.T) {
	assert.True(t, memory.Fields{}.IsEmpty())
	assert.False(t, memory.Fields{Constraints: "budget is fixed"}.IsEmpty())
}

func TestFieldsJoinedSkipsBlankSlots(t *testing.T) {
	f := memory.Fields{
		Decision:  "Move to Berlin",
		Reasoning: "Better growth",
	}

	assert.Equal(t, "Move to Berlin\nBetter growth", f.Joined())
	assert.Equal(t, "", memory.Fields{}.Joined())
}

func TestFieldsSetAndGet(t *testing.T) {
	var f memory.Fields

	for _, name := range []string{
		memory.FieldDecision,
		memory.FieldIntent,
		memory.FieldConstraints,
		memory.FieldAlternatives,
		memory.FieldReasoning,
	} {
		require.NoError(t, f.Set(name, "value of "+name))
		got, ok := f.Get(name)
		require.True(t, ok)
		assert.Equal(t, "value of "+name, got)
	}

	err := f.Set("mood", "optimistic")
	assert.ErrorIs(t, err, memory.ErrUnknownField)
	_, ok := f.Get("mood")
	assert.False(t, ok)
}

func TestFieldsMerge(t *testing.T) {
	draft := memory.Fields{
		Decision: "Keep PostgreSQL",
		Intent:   "operational simplicity",
	}

	draft.Merge(memory.Fields{
		Decision:  "Keep PostgreSQL and add read replicas",
		Reasoning: "replication solves the read bottleneck",
	})

	// Non-empty inferred values replace, empty ones never clear.
	assert.Equal(t, "Keep PostgreSQL and add read replicas", draft.Decision)
	assert.Equal(t, "operational simplicity", draft.Intent)
	assert.Equal(t, "replication solves the read bottleneck", draft.Reasoning)
	assert.Empty(t, draft.Constraints)
}
