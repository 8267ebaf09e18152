package core

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNewAPIErrorCodeMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
		sentinel error
	}{
		{"bad request", 400, `{"code": 400000, "detail": "bad"}`, 400000, ErrBadRequest},
		{"unauthorized", 401, `{"code": 401000, "detail": "expired"}`, 401000, ErrUnauthorized},
		{"forbidden base", 403, `{"code": 403000, "detail": "no"}`, 403000, ErrForbidden},
		{"forbidden variant", 403, `{"code": 403012, "detail": "quota"}`, 403012, ErrForbidden},
		{"not found", 404, `{"code": 404000, "detail": "gone"}`, 404000, ErrNotFound},
		{"method", 405, `{"code": 405000, "detail": "nope"}`, 405000, ErrMethodNotAllowed},
		{"validation", 422, `{"code": 422000, "detail": "invalid"}`, 422000, ErrValidation},
		{"rate limit", 429, `{"code": 429000, "detail": "later"}`, 429000, ErrRateLimited},
		{"server", 500, `{"code": 500000, "detail": "boom"}`, 500000, ErrServer},
		{"unavailable", 503, `{"code": 503000, "detail": "down"}`, 503000, ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIError(tt.status, http.Header{}, []byte(tt.body))
			if err.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", err.Code, tt.wantCode)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v in chain", tt.sentinel)
			}
		})
	}
}

func TestNewAPIErrorNoBody(t *testing.T) {
	err := newAPIError(http.StatusBadGateway, http.Header{}, nil)

	// Code falls back to status*1000 and the status picks the sentinel.
	if err.Code != 502000 {
		t.Errorf("code = %d", err.Code)
	}
	if !errors.Is(err, ErrServer) {
		t.Errorf("expected ErrServer, got %v", err)
	}
	if err.Detail != http.StatusText(http.StatusBadGateway) {
		t.Errorf("detail = %q", err.Detail)
	}
}

func TestNewAPIErrorUnknownCode(t *testing.T) {
	err := newAPIError(http.StatusUnauthorized, http.Header{}, []byte(`{"code": 401999, "detail": "odd"}`))
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized from status fallback, got %v", err)
	}
}

func TestNewAPIErrorStructuredDetail(t *testing.T) {
	body := `{"code": 422000, "detail": [{"loc": ["query", "n_articles"], "msg": "value error"}]}`
	err := newAPIError(http.StatusUnprocessableEntity, http.Header{}, []byte(body))

	if !strings.Contains(err.Detail, "n_articles") {
		t.Errorf("expected raw structured detail, got %q", err.Detail)
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	h := http.Header{}
	h.Set("x-request-id", "abc")
	err := newAPIError(http.StatusNotFound, h, []byte(`{"code": 404000, "detail": "missing"}`))

	msg := err.Error()
	for _, want := range []string{"missing", "404", "404000", "abc"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestIsAuthFailure(t *testing.T) {
	auth := newAPIError(401, http.Header{}, []byte(`{"code": 401000}`))
	if !isAuthFailure(auth) {
		t.Error("401000 should trigger the auth retry")
	}

	// Forbidden means the credential is fine but lacks rights; retrying
	// with a fresh token cannot help.
	forbidden := newAPIError(403, http.Header{}, []byte(`{"code": 403000}`))
	if isAuthFailure(forbidden) {
		t.Error("403000 must not trigger the auth retry")
	}
}
