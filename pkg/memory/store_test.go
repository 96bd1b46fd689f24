package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
)

// fakeBackend is an in-memory storage.Store.
type fakeBackend struct {
	data map[string]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string]string)}
}

func (b *fakeBackend) Load(ctx context.Context, key string) (string, bool, error) {
	payload, ok := b.data[key]
	return payload, ok, nil
}

func (b *fakeBackend) Save(ctx context.Context, key, payload string) error {
	b.data[key] = payload
	return nil
}

func (b *fakeBackend) Close() error { return nil }

// fakeSummarizer returns a canned summary or error.
type fakeSummarizer struct {
	summary string
	err     error
}

func (s *fakeSummarizer) Summarize(ctx context.Context, fields memory.Fields) (string, error) {
	return s.summary, s.err
}

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("m%d", n)
	}
}

func TestLoadFreshBackend(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	require.NoError(t, store.Load(ctx))
	assert.Zero(t, store.Len())
	assert.Empty(t, store.All())
}

func TestLoadMalformedPayloadsStartsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.data[memory.KeyMemories] = "{definitely not json"
	backend.data[memory.KeyVectors] = "[broken too"

	store := memory.NewStore(backend, nil)

	// Corruption must not surface as an error.
	require.NoError(t, store.Load(ctx))
	assert.Zero(t, store.Len())

	// The store stays usable after discarding the corrupt payloads.
	record, err := store.Create(ctx, memory.Fields{Decision: "Adopt weekly planning sessions"})
	require.NoError(t, err)
	assert.NotNil(t, record)
	assert.Equal(t, 1, store.Len())
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()

	first := memory.NewStore(backend, &fakeSummarizer{summary: "Summary line"})
	require.NoError(t, first.Load(ctx))
	created, err := first.Create(ctx, memory.Fields{
		Decision: "Move to Berlin for the platform role",
		Intent:   "career growth",
	})
	require.NoError(t, err)

	second := memory.NewStore(backend, nil)
	require.NoError(t, second.Load(ctx))

	require.Equal(t, 1, second.Len())
	got, ok := second.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, created.Decision, got.Decision)
	assert.Equal(t, "Summary line", got.Summary)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	vec, ok := second.VectorFor(created.ID)
	require.True(t, ok)
	assert.Equal(t, 1, vec["berlin"])
}

func TestCreateStampsAndPrepends(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStore(newFakeBackend(), &fakeSummarizer{summary: "One line"},
		memory.WithClock(clock.Now), memory.WithIDSource(sequentialIDs()))

	older, err := store.Create(ctx, memory.Fields{Decision: "Keep the monolith for now"})
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour)
	newer, err := store.Create(ctx, memory.Fields{Decision: "Split billing into a service"})
	require.NoError(t, err)

	assert.Equal(t, "m1", older.ID)
	assert.False(t, older.Archived)
	assert.Equal(t, "One line", older.Summary)
	assert.True(t, older.CreatedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	// Raw order is most recent first.
	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)
}

func TestCreateBuildsVectorFromAllFields(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	record, err := store.Create(ctx, memory.Fields{
		Decision:     "relocate",
		Intent:       "growth",
		Constraints:  "budget",
		Alternatives: "remote",
		Reasoning:    "momentum",
	})
	require.NoError(t, err)

	vec, ok := store.VectorFor(record.ID)
	require.True(t, ok)
	for _, term := range []string{"relocate", "growth", "budget", "remote", "momentum"} {
		assert.Equal(t, 1, vec[term], "missing term %q", term)
	}
}

func TestCreateRejectsEmptyDraft(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	record, err := store.Create(ctx, memory.Fields{})
	assert.Nil(t, record)
	assert.ErrorIs(t, err, memory.ErrEmptyFields)
	assert.Zero(t, store.Len())
}

func TestCreateSummarizerFailureUsesPlaceholder(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		summarizer memory.Summarizer
	}{
		{name: "summarizer error", summarizer: &fakeSummarizer{err: fmt.Errorf("model offline")}},
		{name: "blank summary", summarizer: &fakeSummarizer{summary: "  \n"}},
		{name: "no summarizer", summarizer: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore(newFakeBackend(), tc.summarizer)

			record, err := store.Create(ctx, memory.Fields{Decision: "Stay on the current plan"})
			require.NoError(t, err, "summary trouble must not fail the save")
			assert.Equal(t, memory.SummaryPlaceholder, record.Summary)
		})
	}
}

func TestCreateStampsNeverGoBackward(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStore(newFakeBackend(), nil, memory.WithClock(clock.Now))

	first, err := store.Create(ctx, memory.Fields{Decision: "first"})
	require.NoError(t, err)

	// Wall clock jumps backward; the stamp must not.
	clock.t = clock.t.Add(-2 * time.Hour)
	second, err := store.Create(ctx, memory.Fields{Decision: "second"})
	require.NoError(t, err)

	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
}

func TestDeleteRemovesRecordAndVector(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	record, err := store.Create(ctx, memory.Fields{Decision: "Adopt trunk based development"})
	require.NoError(t, err)
	keep, err := store.Create(ctx, memory.Fields{Decision: "Keep the release train"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, record.ID))

	_, ok := store.Get(record.ID)
	assert.False(t, ok)
	_, ok = store.VectorFor(record.ID)
	assert.False(t, ok, "vector must go with its record")

	// The other record is untouched.
	_, ok = store.Get(keep.ID)
	assert.True(t, ok)
	_, ok = store.VectorFor(keep.ID)
	assert.True(t, ok)
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	assert.NoError(t, store.Delete(ctx, "never-existed"))
}

func TestArchiveFlipsFlag(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	record, err := store.Create(ctx, memory.Fields{Decision: "Pause hiring for Q3"})
	require.NoError(t, err)

	require.NoError(t, store.Archive(ctx, record.ID, true))
	got, ok := store.Get(record.ID)
	require.True(t, ok)
	assert.True(t, got.Archived)

	require.NoError(t, store.Archive(ctx, record.ID, false))
	got, _ = store.Get(record.ID)
	assert.False(t, got.Archived)
}

func TestArchiveUnknownID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	assert.ErrorIs(t, store.Archive(ctx, "missing", true), memory.ErrNotFound)
}

func TestArchiveKeepsVector(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	record, err := store.Create(ctx, memory.Fields{Decision: "Sunset the legacy importer"})
	require.NoError(t, err)
	require.NoError(t, store.Archive(ctx, record.ID, true))

	_, ok := store.VectorFor(record.ID)
	assert.True(t, ok)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{}
	store := memory.NewStore(newFakeBackend(), nil,
		memory.WithClock(clock.Now), memory.WithIDSource(sequentialIDs()))

	clock.t = now.Add(-40 * 24 * time.Hour)
	old, err := store.Create(ctx, memory.Fields{Decision: "old decision"})
	require.NoError(t, err)

	clock.t = now.Add(-10 * 24 * time.Hour)
	mid, err := store.Create(ctx, memory.Fields{Decision: "mid decision"})
	require.NoError(t, err)

	clock.t = now.Add(-2 * 24 * time.Hour)
	fresh, err := store.Create(ctx, memory.Fields{Decision: "fresh decision"})
	require.NoError(t, err)

	clock.t = now

	ids := func(records []memory.Memory) []string {
		out := make([]string, len(records))
		for i, m := range records {
			out[i] = m.ID
		}
		return out
	}

	assert.Equal(t, []string{fresh.ID, mid.ID, old.ID}, ids(store.List()))
	assert.Equal(t, []string{fresh.ID}, ids(store.List(memory.WithRange(memory.RangeWeek))))
	assert.Equal(t, []string{fresh.ID, mid.ID}, ids(store.List(memory.WithRange(memory.RangeMonth))))
	assert.Equal(t, []string{fresh.ID, mid.ID, old.ID}, ids(store.List(memory.WithRange(memory.RangeYear))))

	// Archived records disappear from default listings but not from All.
	require.NoError(t, store.Archive(ctx, mid.ID, true))
	assert.Equal(t, []string{fresh.ID, old.ID}, ids(store.List()))
	assert.Equal(t, []string{fresh.ID, mid.ID, old.ID}, ids(store.List(memory.WithArchived(true))))
	assert.Len(t, store.All(), 3)
}

func TestAccessorsReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(newFakeBackend(), nil)

	record, err := store.Create(ctx, memory.Fields{Decision: "immutable outside"})
	require.NoError(t, err)

	all := store.All()
	all[0].Decision = "mutated"
	got, _ := store.Get(record.ID)
	assert.Equal(t, "immutable outside", got.Decision)

	vec, _ := store.VectorFor(record.ID)
	vec["immutable"] = 99
	fresh, _ := store.VectorFor(record.ID)
	assert.NotEqual(t, 99, fresh["immutable"])
}
