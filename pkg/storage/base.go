// Package storage defines the persistence boundary for decision collections.
//
// A Store holds named payloads: serialized collections written and read as a
// whole under well-known keys. Implementations cover a local file directory
// (file) and SQLite, PostgreSQL, and MySQL tables.
package storage

import "context"

// Store is the interface all persistence backends implement.
//
// Payloads are opaque to the backend; callers own serialization. A missing
// key is not an error: Load reports ok=false so a fresh install starts from
// an empty collection.
type Store interface {
	// Load retrieves the payload saved under key.
	//
	// ok is false when nothing has ever been saved under key.
	Load(ctx context.Context, key string) (payload string, ok bool, err error)

	// Save writes payload under key, replacing any previous value.
	Save(ctx context.Context, key, payload string) error

	// Close closes the store and releases resources.
	Close() error
}
