package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value exists for the key.
var ErrKeyNotFound = errors.New("storage: key not found")

// Store is the minimal durable key-value contract the state engine persists
// through. Any durable store satisfying it is substitutable.
type Store interface {
	// Get retrieves the value for the key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value for the key, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error
}
