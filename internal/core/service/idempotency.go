package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vendhub/vending-machine/internal/core/ports"
)

const defaultIdempotencyTTL = time.Hour

// ErrInvalidIdempotencyKey is returned when a client key is not a UUIDv4.
var ErrInvalidIdempotencyKey = errors.New("idempotency key must be a UUIDv4")

// ErrDuplicateInFlight is returned when the same key is claimed by a request
// that has not finished yet.
var ErrDuplicateInFlight = errors.New("a request with this idempotency key is already in flight")

// IdempotencyService deduplicates retried mutating commands per (owner, key).
// A key moves through: unseen -> reserved (in flight) -> completed (cached
// result). The reserve step is an atomic set-if-absent, so two concurrent
// requests with the same key cannot both execute.
type IdempotencyService struct {
	store ports.IdempotencyStore
	ttl   time.Duration
	log   zerolog.Logger
}

// NewIdempotencyService wraps the given store. A ttl <= 0 falls back to one
// hour.
func NewIdempotencyService(store ports.IdempotencyStore, ttl time.Duration, log zerolog.Logger) *IdempotencyService {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyService{store: store, ttl: ttl, log: log}
}

// ValidateKey rejects keys that are not UUIDv4.
func (s *IdempotencyService) ValidateKey(key string) error {
	id, err := uuid.Parse(key)
	if err != nil || id.Version() != 4 {
		return fmt.Errorf("%w: %q", ErrInvalidIdempotencyKey, key)
	}
	return nil
}

// GetCachedResult returns the stored payload for (ownerID, key), or
// ports.ErrCacheMiss.
func (s *IdempotencyService) GetCachedResult(ctx context.Context, ownerID, key string) ([]byte, error) {
	payload, err := s.store.Get(ctx, ownerID, key)
	if err != nil {
		if errors.Is(err, ports.ErrCacheMiss) {
			return nil, err
		}
		return nil, fmt.Errorf("idempotency get: %w", err)
	}
	return payload, nil
}

// Reserve claims the key before the command runs. A second caller holding
// the same key gets ErrDuplicateInFlight until Store or Release resolves it.
func (s *IdempotencyService) Reserve(ctx context.Context, ownerID, key string) error {
	claimed, err := s.store.Reserve(ctx, ownerID, key, s.ttl)
	if err != nil {
		return fmt.Errorf("idempotency reserve: %w", err)
	}
	if !claimed {
		return ErrDuplicateInFlight
	}
	return nil
}

// Store records the command result so replays return it without side effects.
func (s *IdempotencyService) Store(ctx context.Context, ownerID, key string, payload []byte) error {
	if err := s.store.Set(ctx, ownerID, key, payload, s.ttl); err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	return nil
}

// Release drops the key, for example after the command failed and the claim
// must not block a retry.
func (s *IdempotencyService) Release(ctx context.Context, ownerID, key string) {
	if err := s.store.Delete(ctx, ownerID, key); err != nil {
		s.log.Warn().Err(err).Str("owner_id", ownerID).Msg("failed to release idempotency key")
	}
}
