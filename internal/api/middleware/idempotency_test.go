package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vendhub/vending-machine/internal/core/ports"
	"github.com/vendhub/vending-machine/internal/core/service"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

type fakeStore struct {
	data     map[string][]byte
	reserved map[string]bool
	getErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte), reserved: make(map[string]bool)}
}

func (s *fakeStore) Get(_ context.Context, ownerID, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	payload, ok := s.data[ownerID+":"+key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return payload, nil
}

func (s *fakeStore) Reserve(_ context.Context, ownerID, key string, _ time.Duration) (bool, error) {
	k := ownerID + ":" + key
	if s.reserved[k] {
		return false, nil
	}
	if _, done := s.data[k]; done {
		return false, nil
	}
	s.reserved[k] = true
	return true, nil
}

func (s *fakeStore) Set(_ context.Context, ownerID, key string, payload []byte, _ time.Duration) error {
	k := ownerID + ":" + key
	s.data[k] = payload
	delete(s.reserved, k)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, ownerID, key string) error {
	k := ownerID + ":" + key
	delete(s.data, k)
	delete(s.reserved, k)
	return nil
}

func idempotencyContext(e *echo.Echo, key string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user_1")
	return c, rec
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	e := echo.New()
	store := newFakeStore()
	svc := service.NewIdempotencyService(store, time.Hour, zerolog.Nop())
	mw := Idempotency(svc, zerolog.Nop())

	c, rec := idempotencyContext(e, "")

	calls := 0
	handler := mw(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"ok": "1"})
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run, calls=%d", calls)
	}
	if len(store.data) != 0 {
		t.Error("no key must mean no caching")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIdempotency_InvalidKeyRejected(t *testing.T) {
	e := echo.New()
	svc := service.NewIdempotencyService(newFakeStore(), time.Hour, zerolog.Nop())
	mw := Idempotency(svc, zerolog.Nop())

	c, _ := idempotencyContext(e, "not-a-uuid")

	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach handler")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, service.ErrInvalidIdempotencyKey) {
		t.Fatalf("expected ErrInvalidIdempotencyKey, got %v", err)
	}
}

func TestIdempotency_ReplaySkipsHandler(t *testing.T) {
	e := echo.New()
	store := newFakeStore()
	svc := service.NewIdempotencyService(store, time.Hour, zerolog.Nop())
	mw := Idempotency(svc, zerolog.Nop())
	key := uuid.NewString()

	calls := 0
	handler := mw(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"total": "170"})
	})

	// First request executes and caches.
	c1, rec1 := idempotencyContext(e, key)
	if err := handler(c1); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}

	// Second request replays from cache.
	c2, rec2 := idempotencyContext(e, key)
	if err := handler(c2); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("replay must not re-run the handler, calls=%d", calls)
	}
	if rec2.Header().Get("X-Idempotency-Replay") != "true" {
		t.Error("replay must be marked with X-Idempotency-Replay")
	}
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected replayed 200, got %d", rec2.Code)
	}
	if !strings.Contains(rec2.Body.String(), "170") {
		t.Errorf("replayed body wrong: %s", rec2.Body.String())
	}
	_ = rec1
}

func TestIdempotency_DuplicateInFlight(t *testing.T) {
	e := echo.New()
	store := newFakeStore()
	svc := service.NewIdempotencyService(store, time.Hour, zerolog.Nop())
	mw := Idempotency(svc, zerolog.Nop())
	key := uuid.NewString()

	// Another request already holds the claim.
	store.reserved["user_1:"+key] = true

	c, _ := idempotencyContext(e, key)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach handler")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, service.ErrDuplicateInFlight) {
		t.Fatalf("expected ErrDuplicateInFlight, got %v", err)
	}
}

func TestIdempotency_FailureReleasesClaim(t *testing.T) {
	e := echo.New()
	store := newFakeStore()
	svc := service.NewIdempotencyService(store, time.Hour, zerolog.Nop())
	mw := Idempotency(svc, zerolog.Nop())
	key := uuid.NewString()

	handler := mw(func(c echo.Context) error {
		return errors.New("command failed")
	})

	c, _ := idempotencyContext(e, key)
	if err := handler(c); err == nil {
		t.Fatal("expected handler error to propagate")
	}

	if store.reserved["user_1:"+key] {
		t.Error("failed command must release the claim")
	}
	if len(store.data) != 0 {
		t.Error("failed command must not be cached")
	}

	// The retry executes normally.
	calls := 0
	retry := mw(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"ok": "1"})
	})
	c2, _ := idempotencyContext(e, key)
	if err := retry(c2); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("retry must run the handler, calls=%d", calls)
	}
}

func TestIdempotency_CacheOutageProcessesAnyway(t *testing.T) {
	e := echo.New()
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	svc := service.NewIdempotencyService(store, time.Hour, zerolog.Nop())
	mw := Idempotency(svc, zerolog.Nop())

	calls := 0
	handler := mw(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"ok": "1"})
	})

	c, rec := idempotencyContext(e, uuid.NewString())
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("cache outage must not block the command, calls=%d", calls)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIdempotency_ErrorStatusNotCached(t *testing.T) {
	e := echo.New()
	store := newFakeStore()
	svc := service.NewIdempotencyService(store, time.Hour, zerolog.Nop())
	mw := Idempotency(svc, zerolog.Nop())
	key := uuid.NewString()

	handler := mw(func(c echo.Context) error {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "insufficient funds"})
	})

	c, _ := idempotencyContext(e, key)
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if len(store.data) != 0 {
		t.Error("4xx responses must not be cached")
	}
	if store.reserved["user_1:"+key] {
		t.Error("claim must be released after a 4xx response")
	}
}
