package core

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Storage.Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("storage key not found")

// Storage is a durable key-value store that survives process restarts.
// Each key has a single writer: the cart manager owns "cart" and the auth guard owns "token".
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
