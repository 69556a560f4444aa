package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when no result is stored under the key.
var ErrCacheMiss = errors.New("idempotency key not found")

// IdempotencyStore is the distributed key-value cache behind command
// deduplication. Keys are scoped per owner so one user's key can never
// collide with another's.
type IdempotencyStore interface {
	// Get returns the payload previously stored under (ownerID, key),
	// or ErrCacheMiss.
	Get(ctx context.Context, ownerID, key string) ([]byte, error)
	// Reserve atomically claims (ownerID, key) for an in-flight command.
	// It returns false when the key is already claimed or completed.
	Reserve(ctx context.Context, ownerID, key string, ttl time.Duration) (bool, error)
	// Set stores the payload under (ownerID, key), replacing any in-flight
	// claim, with the given TTL.
	Set(ctx context.Context, ownerID, key string, payload []byte, ttl time.Duration) error
	// Delete removes the key, forcing the next request to re-execute.
	Delete(ctx context.Context, ownerID, key string) error
}
