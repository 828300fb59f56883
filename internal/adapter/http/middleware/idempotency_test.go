package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gofunds/internal/usecase"
)

// memoryIdempotencyStore is a map-backed usecase.IdempotencyStore.
type memoryIdempotencyStore struct {
	mu         sync.Mutex
	records    map[string]usecase.IdempotencyRecord
	reserveErr error
	released   []string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{records: make(map[string]usecase.IdempotencyRecord)}
}

func (s *memoryIdempotencyStore) Reserve(_ context.Context, key, fingerprint string, _ time.Duration) (bool, *usecase.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserveErr != nil {
		return false, nil, s.reserveErr
	}
	if rec, ok := s.records[key]; ok {
		return false, &rec, nil
	}
	s.records[key] = usecase.IdempotencyRecord{Fingerprint: fingerprint}
	return true, nil, nil
}

func (s *memoryIdempotencyStore) Complete(_ context.Context, key string, record usecase.IdempotencyRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Completed = true
	s.records[key] = record
	return nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	s.released = append(s.released, key)
	return nil
}

func idempotentRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewBufferString(body))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func TestIdempotencyMiddleware_ReplaysCompletedResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	handler := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop()).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"fund_id":"f-1"}` {
			t.Errorf("handler saw body %q", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"sub-1"}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest("key-1", `{"fund_id":"f-1"}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest("key-1", `{"fund_id":"f-1"}`))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != `{"id":"sub-1"}` {
		t.Fatalf("expected replayed 201, got %d %q", second.Code, second.Body.String())
	}
	if second.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatal("expected replay header")
	}
}

func TestIdempotencyMiddleware_RejectsDifferentRequest(t *testing.T) {
	store := newMemoryIdempotencyStore()
	handler := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop()).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest("key-1", `{"amount":1}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, idempotentRequest("key-1", `{"amount":2}`))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_InFlightConflict(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())
	req := idempotentRequest("key-1", `{}`)
	store.records["key-1"] = usecase.IdempotencyRecord{Fingerprint: fingerprintRequest(req, []byte(`{}`))}

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_StoreError(t *testing.T) {
	store := newMemoryIdempotencyStore()
	store.reserveErr = context.DeadlineExceeded

	var called bool
	rr := httptest.NewRecorder()
	NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop()).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, idempotentRequest("key-err", `{}`))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesOnServerError(t *testing.T) {
	store := newMemoryIdempotencyStore()
	handler := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop()).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest("key-fail", `{}`))

	if len(store.released) != 1 {
		t.Fatalf("expected key to be released, got %v", store.released)
	}
	if _, ok := store.records["key-fail"]; ok {
		t.Fatal("expected no stored record after server error")
	}
}

func TestIdempotencyMiddleware_StoresClientErrors(t *testing.T) {
	store := newMemoryIdempotencyStore()
	handler := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop()).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":"insufficient_funds"}`))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest("key-422", `{}`))

	rec := store.records["key-422"]
	if !rec.Completed || rec.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected completed 422 record, got %+v", rec)
	}
}

func TestIdempotencyMiddleware_PassThrough(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/funds", nil))
	get := httptest.NewRequest(http.MethodGet, "/api/v1/funds", nil)
	get.Header.Set(IdempotencyKeyHeader, "key-get")
	handler.ServeHTTP(httptest.NewRecorder(), get)

	if calls != 2 || len(store.records) != 0 {
		t.Fatalf("expected pass-through without store use, calls=%d records=%d", calls, len(store.records))
	}
}
