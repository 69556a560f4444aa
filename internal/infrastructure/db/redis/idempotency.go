package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendhub/vending-machine/internal/core/ports"
)

// reservedMarker is the value written by Reserve while the command is in
// flight. Get treats it as a miss so only completed results are replayed.
const reservedMarker = "__in_flight__"

const keyPrefix = "idempotency:"

// IdempotencyStore implements ports.IdempotencyStore on Redis.
// Key format: idempotency:<owner_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore wraps the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) Get(ctx context.Context, ownerID, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(ownerID, key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ports.ErrCacheMiss
		}
		return nil, fmt.Errorf("idempotency get: %w", err)
	}
	if val == reservedMarker {
		return nil, ports.ErrCacheMiss
	}
	return []byte(val), nil
}

// Reserve claims the key with SET NX, so exactly one of two concurrent
// requests bearing the same key wins.
func (s *IdempotencyStore) Reserve(ctx context.Context, ownerID, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(ownerID, key), reservedMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency reserve: %w", err)
	}
	return ok, nil
}

func (s *IdempotencyStore) Set(ctx context.Context, ownerID, key string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(ownerID, key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency set: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Delete(ctx context.Context, ownerID, key string) error {
	if err := s.client.Del(ctx, s.key(ownerID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency delete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(ownerID, key string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, ownerID, key)
}
