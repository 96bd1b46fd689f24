// Package ident generates opaque identifiers for decision records.
package ident

import (
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
	nodeErr  error
)

// New returns a new unique identifier.
//
// Identifiers are random UUID strings. If the platform's random source is
// unavailable, New falls back to a snowflake ID derived from the current
// time and a sequence counter, so callers always receive a usable value.
func New() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fallback()
	}
	return id.String()
}

func fallback() string {
	nodeOnce.Do(func() {
		node, nodeErr = snowflake.NewNode(1)
	})
	if nodeErr != nil {
		// NewNode only rejects out-of-range node numbers, so this
		// cannot trigger for the fixed node above.
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return node.Generate().String()
}
