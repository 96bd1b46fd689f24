package suggest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AmlanDas-dot/Innovastra/pkg/suggest"
)

func TestOrderPartitions(t *testing.T) {
	// Selected first, suggested-but-not-selected next in store order,
	// the rest last in store order.
	got := suggest.Order(5, []int{3}, []int{4, 1})
	assert.Equal(t, []int{3, 1, 4, 0, 2}, got)
}

func TestOrderKeepsSelectionSequence(t *testing.T) {
	got := suggest.Order(4, []int{2, 0}, nil)
	assert.Equal(t, []int{2, 0, 1, 3}, got)
}

func TestOrderIdentityWithoutSelectionOrSuggestions(t *testing.T) {
	got := suggest.Order(3, nil, nil)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestOrderSelectedTrumpsSuggested(t *testing.T) {
	// An index in both groups appears once, in the selected partition.
	got := suggest.Order(3, []int{1}, []int{1, 2})
	assert.Equal(t, []int{1, 2, 0}, got)
}

func TestOrderIgnoresBadIndices(t *testing.T) {
	got := suggest.Order(3, []int{1, 1, 7, -2}, []int{5})
	assert.Equal(t, []int{1, 0, 2}, got)
}

func TestOrderEmptyCollection(t *testing.T) {
	assert.Empty(t, suggest.Order(0, []int{0}, []int{1}))
}

func TestOrderIsAPermutation(t *testing.T) {
	got := suggest.Order(6, []int{5, 2}, []int{0, 3})

	assert.Len(t, got, 6)
	seen := make(map[int]bool)
	for _, i := range got {
		assert.False(t, seen[i], "index %d appears twice", i)
		seen[i] = true
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 6)
	}
}
