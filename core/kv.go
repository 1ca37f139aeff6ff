package core

import (
	"context"

	"github.com/pkg/errors"
)

var ErrKeyNotFound = errors.WithMessage(ErrNotFound, "key")

// KVStore stores JSON documents under string keys.
type KVStore interface {
	// Get returns ErrKeyNotFound if key was never written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Update atomically replaces the value of key with fn(value). value is nil if key does not exist.
	// Nothing is written if fn returns an error.
	Update(ctx context.Context, key string, fn func(value []byte) ([]byte, error)) error
	Delete(ctx context.Context, keys ...string) error
	// Keys returns every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
