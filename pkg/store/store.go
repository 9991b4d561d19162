// Package store persists serialized IndexedFile snapshots (spec.md §6,
// "Serialized form... JSON") keyed by logical path, so a caller can diff
// a fresh parse against what was indexed last time.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been Put, or
// was Delete-d.
var ErrKeyNotFound = errors.New("store: key not found")

// Snapshots is the persistence surface the indexing core's incremental
// path builds on: one JSON-encoded IndexedFile blob per logical path.
type Snapshots interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
