// Package kv holds the key-value store client used for durability checks and
// artifact reads. The store itself lives elsewhere (Postgres, S3, or another
// eventually-consistent backend); this package only adapts clients to one
// narrow interface.
package kv

import (
	"context"
	"errors"
)

// Store defines the operations the consistency subsystem needs from a
// key-value backend. Implementations must be safe for concurrent use.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

var ErrNotFound = errors.New("kv: key not found")
