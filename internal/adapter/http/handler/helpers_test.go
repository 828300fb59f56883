package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/gofunds/internal/adapter/http/dto"
	"github.com/iho/gofunds/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/customers?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/customers?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseBoolQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/funds?active=false", nil)
	if parseBoolQuery(req, "active", true) {
		t.Fatal("expected active=false to parse")
	}

	req = httptest.NewRequest(http.MethodGet, "/funds?active=maybe", nil)
	if !parseBoolQuery(req, "active", true) {
		t.Fatal("expected fallback to default")
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"customer not found", domain.ErrCustomerNotFound, http.StatusNotFound},
		{"subscription not found", domain.NotFound(domain.EntitySubscription, "s-1"), http.StatusNotFound},
		{"validation", domain.Validation("amount must be positive"), http.StatusBadRequest},
		{"wrong owner", domain.ErrUnauthorized, http.StatusForbidden},
		{"duplicate", domain.ErrDuplicateActiveSubscription, http.StatusConflict},
		{"already cancelled", domain.ErrAlreadyCancelled, http.StatusConflict},
		{"inactive fund", domain.Inactive(domain.EntityFund, "f-1"), http.StatusUnprocessableEntity},
		{"below minimum", domain.ErrBelowMinimum, http.StatusUnprocessableEntity},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"wrapped", fmt.Errorf("subscribe: %w", domain.ErrInsufficientFunds), http.StatusUnprocessableEntity},
		{"integrity", domain.IntegrityViolation(domain.EntityFund, "f-1", "missing"), http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestFail_HidesInternalDetails(t *testing.T) {
	var buf bytes.Buffer
	rs := newResponder([]Option{WithLogger(zerolog.New(&buf))})

	rr := httptest.NewRecorder()
	rs.fail(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/subscriptions/s-1", nil),
		domain.IntegrityViolation(domain.EntityFund, "f-9", "referenced by subscription s-1"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != "integrity_violation" || resp.Message != "internal error" {
		t.Fatalf("unexpected error body %+v", resp)
	}
	if !bytes.Contains(buf.Bytes(), []byte("f-9")) {
		t.Fatalf("expected details in the log, got %s", buf.String())
	}
}

func TestFail_ClientErrorKeepsMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	newResponder(nil).fail(rr, httptest.NewRequest(http.MethodPost, "/", nil), domain.ErrBelowMinimum)

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != "below_minimum" || resp.Message != "amount is below the fund minimum" {
		t.Fatalf("unexpected error body %+v", resp)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "validation", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "Bad Request" || resp.Code != "validation" || resp.Message != "detail" {
		t.Fatalf("unexpected error response %+v", resp)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		optional bool
		wantErr  bool
	}{
		{"valid", `{"customer_id":"c-1"}`, false, false},
		{"unknown field", `{"customer":"c-1"}`, false, true},
		{"malformed", `{"customer_id":`, false, true},
		{"empty required", ``, false, true},
		{"empty optional", ``, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst dto.CancelSubscriptionRequest
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/", bytes.NewBufferString(tt.body))

			var err error
			if tt.optional {
				err = decodeOptional(rr, req, &dst)
			} else {
				err = decode(rr, req, &dst)
			}

			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func withPrincipal(r *http.Request, id string, role domain.Role) *http.Request {
	return r.WithContext(domain.WithPrincipal(r.Context(), domain.Principal{CustomerID: id, Role: role}))
}

func TestAuthorize(t *testing.T) {
	base := httptest.NewRequest(http.MethodGet, "/", nil)

	if err := authorize(base, "c-1"); err != nil {
		t.Fatalf("expected anonymous access when auth is off, got %v", err)
	}
	if err := authorize(withPrincipal(base, "c-1", domain.RoleCustomer), "c-1"); err != nil {
		t.Fatalf("expected owner access, got %v", err)
	}
	if err := authorize(withPrincipal(base, "ops", domain.RoleAdmin), "c-1"); err != nil {
		t.Fatalf("expected admin access, got %v", err)
	}
	if err := authorize(withPrincipal(base, "c-2", domain.RoleCustomer), "c-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRequester(t *testing.T) {
	base := httptest.NewRequest(http.MethodPost, "/", nil)

	tests := []struct {
		name    string
		req     *http.Request
		named   string
		want    string
		wantErr error
	}{
		{"customer implicit", withPrincipal(base, "c-1", domain.RoleCustomer), "", "c-1", nil},
		{"customer names self", withPrincipal(base, "c-1", domain.RoleCustomer), "c-1", "c-1", nil},
		{"customer names other", withPrincipal(base, "c-1", domain.RoleCustomer), "c-2", "", domain.ErrUnauthorized},
		{"admin names customer", withPrincipal(base, "ops", domain.RoleAdmin), "c-2", "c-2", nil},
		{"admin without name", withPrincipal(base, "ops", domain.RoleAdmin), "", "", domain.ErrValidation},
		{"anonymous names customer", base, "c-3", "c-3", nil},
		{"anonymous without name", base, "", "", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := requester(tt.req, tt.named)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("expected %q, got %q (%v)", tt.want, got, err)
			}
		})
	}
}
