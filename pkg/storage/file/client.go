// Package file provides a filesystem implementation of the collection store.
//
// Each collection lives in a single file under the store directory. Writes go
// through a temporary file and a rename, so a crash mid-write never leaves a
// truncated collection behind.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Client implements storage.Store on top of a local directory.
type Client struct {
	dir string
}

// Config contains configuration for creating a file store.
type Config struct {
	// Dir is the directory holding one file per collection.
	Dir string
}

// NewClient creates a new file store client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("NewFileClient: empty directory")
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("NewFileClient: failed to create directory: %w", err)
	}

	return &Client{dir: cfg.Dir}, nil
}

// Load retrieves the payload saved under key.
func (c *Client) Load(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("Load: %w", err)
	}

	return string(data), true, nil
}

// Save writes payload under key, replacing any previous value.
func (c *Client) Save(ctx context.Context, key, payload string) error {
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	if _, err := tmp.WriteString(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("Save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("Save: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("Save: %w", err)
	}

	return nil
}

// Close is a no-op for the file store.
func (c *Client) Close() error {
	return nil
}

func (c *Client) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
