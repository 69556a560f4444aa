package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vendhub/vending-machine/internal/api/metrics"
	"github.com/vendhub/vending-machine/internal/core/ports"
	"github.com/vendhub/vending-machine/internal/core/service"
)

// HeaderIdempotencyKey is the client-supplied deduplication token.
const HeaderIdempotencyKey = "Idempotency-Key"

// cachedResponse is the envelope stored in the idempotency cache: enough to
// replay the original response byte-for-byte.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Idempotency deduplicates mutating requests per (authenticated user, key).
//
// A request without a key, or without an authenticated user, passes through
// untouched. Otherwise the key is validated (UUIDv4), checked for a cached
// result, and atomically reserved before the handler runs. A concurrent
// request holding the same key is rejected with 409 instead of executing
// twice. Failed handler runs release the claim so the client can retry.
func Idempotency(svc *service.IdempotencyService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderIdempotencyKey)
			ownerID, _ := c.Get("user_id").(string)
			if key == "" || ownerID == "" {
				return next(c)
			}

			ctx := c.Request().Context()

			if err := svc.ValidateKey(key); err != nil {
				metrics.IdempotencyTotal.WithLabelValues("invalid").Inc()
				return err
			}

			// Replay a completed command without re-executing it.
			if payload, err := svc.GetCachedResult(ctx, ownerID, key); err == nil {
				var cached cachedResponse
				if jsonErr := json.Unmarshal(payload, &cached); jsonErr == nil {
					metrics.IdempotencyTotal.WithLabelValues("hit").Inc()
					log.Debug().Str("user_id", ownerID).Str("key", key).Msg("idempotent replay")
					c.Response().Header().Set("X-Idempotency-Replay", "true")
					return c.JSONBlob(cached.Status, cached.Body)
				}
				log.Warn().Str("key", key).Msg("corrupt idempotency payload, re-executing")
			} else if !errors.Is(err, ports.ErrCacheMiss) {
				// Cache unavailable: execute without dedup rather than fail.
				log.Warn().Err(err).Str("key", key).Msg("idempotency lookup failed, processing anyway")
				return next(c)
			}

			if err := svc.Reserve(ctx, ownerID, key); err != nil {
				if errors.Is(err, service.ErrDuplicateInFlight) {
					metrics.IdempotencyTotal.WithLabelValues("conflict").Inc()
					return err
				}
				log.Warn().Err(err).Str("key", key).Msg("idempotency reserve failed, processing anyway")
				return next(c)
			}
			metrics.IdempotencyTotal.WithLabelValues("miss").Inc()

			recorder := &responseRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = recorder

			err := next(c)
			if err != nil || recorder.status >= http.StatusBadRequest {
				// Do not cache failures; free the key for a clean retry.
				svc.Release(ctx, ownerID, key)
				return err
			}

			payload, marshalErr := json.Marshal(cachedResponse{
				Status: recorder.status,
				Body:   recorder.body.Bytes(),
			})
			if marshalErr != nil {
				log.Warn().Err(marshalErr).Str("key", key).Msg("failed to encode idempotency payload")
				svc.Release(ctx, ownerID, key)
				return nil
			}
			if storeErr := svc.Store(ctx, ownerID, key, payload); storeErr != nil {
				log.Warn().Err(storeErr).Str("key", key).Msg("failed to store idempotency result")
			}
			return nil
		}
	}
}

// responseRecorder tees the response body so a successful result can be
// cached for replay.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
