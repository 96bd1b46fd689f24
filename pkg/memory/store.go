package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AmlanDas-dot/Innovastra/pkg/ident"
	"github.com/AmlanDas-dot/Innovastra/pkg/storage"
	"github.com/AmlanDas-dot/Innovastra/pkg/termvec"
)

// Keys the two collections are persisted under. They are independent: a
// backend may hold one without the other, and each is loaded and saved as a
// whole.
const (
	// KeyMemories holds the serialized record collection.
	KeyMemories = "decision_memories"

	// KeyVectors holds the serialized id to term vector mapping.
	KeyVectors = "decision_vectors"
)

// Summarizer produces the one-line summary stored with a new record.
//
// Summarization is fallible and best-effort: the store substitutes
// SummaryPlaceholder whenever it fails or returns nothing.
type Summarizer interface {
	Summarize(ctx context.Context, fields Fields) (string, error)
}

// Store owns the decision memory collection and its term vectors.
//
// All mutating operations write both collections through to the backend, so
// the persisted state always matches the in-memory state after a successful
// call. The store is thread-safe and can be used concurrently from multiple
// goroutines.
//
// Example usage:
//
//	backend, _ := file.NewClient(&file.Config{Dir: "./data"})
//	store := memory.NewStore(backend, summarizer)
//	_ = store.Load(ctx)
//
//	record, _ := store.Create(ctx, memory.Fields{Decision: "Move to Berlin"})
type Store struct {
	// backend persists the two collections.
	backend storage.Store

	// summarizer produces one-line summaries at create time (may be nil).
	summarizer Summarizer

	// now returns the current time; replaceable in tests.
	now func() time.Time

	// newID returns fresh record identifiers; replaceable in tests.
	newID func() string

	// memories is the record collection, most recent first.
	memories []Memory

	// vectors maps record id to its term vector.
	vectors Vectors

	// lastStamp is the newest CreatedAt handed out, for monotonic stamping.
	lastStamp time.Time

	// mu protects concurrent access to the store.
	mu sync.RWMutex
}

// NewStore creates a Store over the given backend.
//
// The summarizer may be nil, in which case every record carries
// SummaryPlaceholder. Call Load before first use to restore prior state.
func NewStore(backend storage.Store, summarizer Summarizer, opts ...StoreOption) *Store {
	s := &Store{
		backend:    backend,
		summarizer: summarizer,
		now:        time.Now,
		newID:      ident.New,
		vectors:    make(Vectors),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores both collections from the backend.
//
// A key that has never been saved yields an empty collection. A malformed
// payload is logged and replaced with an empty collection rather than
// propagated, so a corrupt store never takes the caller down. Load only
// returns an error when the backend itself fails.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok, err := s.backend.Load(ctx, KeyMemories)
	if err != nil {
		return NewStoreError("Load", err)
	}
	s.memories = nil
	if ok {
		var memories []Memory
		if err := json.Unmarshal([]byte(payload), &memories); err != nil {
			logrus.WithField("op", "Load").WithError(err).
				Warn("discarding malformed decision memory payload")
		} else {
			s.memories = memories
		}
	}

	payload, ok, err = s.backend.Load(ctx, KeyVectors)
	if err != nil {
		return NewStoreError("Load", err)
	}
	s.vectors = make(Vectors)
	if ok {
		var vectors Vectors
		if err := json.Unmarshal([]byte(payload), &vectors); err != nil {
			logrus.WithField("op", "Load").WithError(err).
				Warn("discarding malformed term vector payload")
		} else if vectors != nil {
			s.vectors = vectors
		}
	}

	// Seed the monotonic stamp from the newest surviving record.
	s.lastStamp = time.Time{}
	for _, m := range s.memories {
		if m.CreatedAt.After(s.lastStamp) {
			s.lastStamp = m.CreatedAt
		}
	}

	return nil
}

// Save persists both collections under their independent keys.
//
// Every mutating operation already writes through, so Save is only needed
// for explicit flushes. It is idempotent and safe to call at any time.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, "Save")
}

// Create finalizes draft into a new record.
//
// The record receives a fresh id, a monotonically non-decreasing creation
// stamp, and a one-line summary; if summarization fails or comes back blank
// the record carries SummaryPlaceholder instead, never an error. The record
// is prepended (raw order is most recent first), its term vector is built
// from the joined fields, and both collections are written through.
//
// A draft with all five slots blank is rejected with ErrEmptyFields.
func (s *Store) Create(ctx context.Context, draft Fields) (*Memory, error) {
	if draft.IsEmpty() {
		return nil, NewStoreError("Create", ErrEmptyFields)
	}

	// Summarize outside the lock: this is a network call.
	summary := s.summarize(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()

	record := Memory{
		ID:        s.newID(),
		Fields:    draft,
		Summary:   summary,
		CreatedAt: s.stamp(),
	}

	s.memories = append([]Memory{record}, s.memories...)
	s.vectors[record.ID] = termvec.Build(draft.Joined())

	if err := s.persist(ctx, "Create"); err != nil {
		return nil, err
	}

	return &record, nil
}

// Delete removes the record with id together with its term vector.
//
// Record and vector go in one step under one write-through: no orphaned
// vector survives a delete, and no record survives without its vector
// removal being attempted. Deleting an unknown id is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i, m := range s.memories {
		if m.ID == id {
			s.memories = append(s.memories[:i], s.memories[i+1:]...)
			found = true
			break
		}
	}

	_, hadVector := s.vectors[id]
	delete(s.vectors, id)

	if !found && !hadVector {
		return nil
	}

	return s.persist(ctx, "Delete")
}

// Archive sets the archived flag on the record with id.
//
// Archiving only changes visibility classification; the record stays
// eligible for suggestion scoring and keeps its vector.
func (s *Store) Archive(ctx context.Context, id string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.memories {
		if s.memories[i].ID == id {
			s.memories[i].Archived = archived
			return s.persist(ctx, "Archive")
		}
	}

	return NewStoreError("Archive", ErrNotFound)
}

// All returns a copy of the collection in raw store order, most recent
// first, archived records included.
func (s *Store) All() []Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Memory, len(s.memories))
	copy(out, s.memories)
	return out
}

// List returns the records passing the configured filters, preserving raw
// store order. By default archived records are hidden and no date filter
// applies.
func (s *Store) List(opts ...ListOption) []Memory {
	options := applyListOptions(opts)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var cutoff time.Time
	if window, bounded := options.Range.window(); bounded {
		cutoff = s.now().Add(-window)
	}

	out := make([]Memory, 0, len(s.memories))
	for _, m := range s.memories {
		if m.Archived && !options.IncludeArchived {
			continue
		}
		if !cutoff.IsZero() && m.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Get returns the record with id.
func (s *Store) Get(id string) (Memory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memories {
		if m.ID == id {
			return m, true
		}
	}
	return Memory{}, false
}

// VectorFor returns a copy of the term vector attached to id.
// Records without a vector report ok=false and score as empty.
func (s *Store) VectorFor(id string) (termvec.Vector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vec, ok := s.vectors[id]
	if !ok {
		return nil, false
	}
	return copyVector(vec), true
}

// Vectors returns a copy of the id to term vector mapping.
func (s *Store) Vectors() Vectors {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Vectors, len(s.vectors))
	for id, vec := range s.vectors {
		out[id] = copyVector(vec)
	}
	return out
}

// Len returns the number of records, archived included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories)
}

// Close releases the storage backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// persist writes both collections through to the backend.
// Callers must hold mu.
func (s *Store) persist(ctx context.Context, op string) error {
	memoriesJSON, err := json.Marshal(s.memories)
	if err != nil {
		return NewStoreError(op, err)
	}
	vectorsJSON, err := json.Marshal(s.vectors)
	if err != nil {
		return NewStoreError(op, err)
	}

	if err := s.backend.Save(ctx, KeyMemories, string(memoriesJSON)); err != nil {
		return NewStoreError(op, err)
	}
	if err := s.backend.Save(ctx, KeyVectors, string(vectorsJSON)); err != nil {
		return NewStoreError(op, err)
	}
	return nil
}

// summarize asks the summarizer for a one-line summary, substituting the
// placeholder on failure or empty output.
func (s *Store) summarize(ctx context.Context, draft Fields) string {
	if s.summarizer == nil {
		return SummaryPlaceholder
	}

	summary, err := s.summarizer.Summarize(ctx, draft)
	if err != nil {
		logrus.WithField("op", "Create").WithError(err).
			Debug("summary generation failed, using placeholder")
		return SummaryPlaceholder
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return SummaryPlaceholder
	}
	return summary
}

// stamp returns the next creation time, clamped so stamps never go backward
// even when the wall clock does. Callers must hold mu.
func (s *Store) stamp() time.Time {
	now := s.now()
	if now.Before(s.lastStamp) {
		now = s.lastStamp
	}
	s.lastStamp = now
	return now
}

func copyVector(vec termvec.Vector) termvec.Vector {
	out := make(termvec.Vector, len(vec))
	for term, count := range vec {
		out[term] = count
	}
	return out
}
