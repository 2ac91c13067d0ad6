// Package slot defines the key-value persistence slot the expense store
// mirrors itself into, and its implementations.
package slot

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed slot.
var ErrClosed = errors.New("slot closed")

// Slot is a key-value persistence area holding opaque documents.
type Slot interface {
	// Get returns the document stored under key; ok is false when absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set overwrites the document stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the underlying resources.
	Close() error
}
