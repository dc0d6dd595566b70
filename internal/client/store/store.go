package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Store is the durable key/value collaborator of the client. Values are
// small opaque blobs (the session hint today). No transactional guarantees
// are required of drivers.
type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
