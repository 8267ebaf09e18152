package core

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func tokenHandler(t *testing.T, calls *atomic.Int64, expiresIn int64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected Content-Type %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if gt := r.PostForm.Get("grant_type"); gt != "client_credentials" {
			t.Errorf("unexpected grant_type %q", gt)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "tok-` + r.PostForm.Get("scope") + `",
			"token_type": "Bearer",
			"expires_in": ` + strconv.FormatInt(expiresIn, 10) + `,
			"scope": "` + r.PostForm.Get("scope") + `"
		}`))
	}
}

func newTestTokenSource(t *testing.T, tokenURL string, scopes ...Scope) *TokenSource {
	t.Helper()
	ts, err := NewTokenSource(NewClientCredentials("my-id", "my-secret"), TokenSourceConfig{
		TokenURL: tokenURL,
		Scopes:   NewScopeSet(scopes...),
	})
	if err != nil {
		t.Fatalf("NewTokenSource failed: %v", err)
	}
	return ts
}

func TestTokenSourceExchange(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(tokenHandler(t, &calls, 3600))
	defer srv.Close()

	ts := newTestTokenSource(t, srv.URL)

	tok, err := ts.Token(t.Context(), NewScopeSet(ScopeNews))
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	if tok.AccessToken == "" {
		t.Error("expected non-empty access token")
	}
	if tok.TokenType != "Bearer" {
		t.Errorf("unexpected token type %q", tok.TokenType)
	}
	for _, sc := range []Scope{ScopeNews, ScopeOffline, ScopeOpenID} {
		if !tok.Scopes.Contains(sc) {
			t.Errorf("granted scopes missing %q", sc)
		}
	}
	if got := time.Until(tok.ExpiresAt); got < 59*time.Minute {
		t.Errorf("expiry too soon: %v", got)
	}
}

func TestTokenSourceBasicAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	// Characters that must be form-quoted before base64.
	ts, err := NewTokenSource(NewClientCredentials("id with space", "sec+ret"), TokenSourceConfig{
		TokenURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("NewTokenSource failed: %v", err)
	}

	if _, err := ts.Token(t.Context(), nil); err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString(
		[]byte(url.QueryEscape("id with space")+":"+url.QueryEscape("sec+ret")))
	if gotAuth != want {
		t.Errorf("Authorization = %q, want %q", gotAuth, want)
	}
}

func TestTokenSourceCacheReuse(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(tokenHandler(t, &calls, 3600))
	defer srv.Close()

	ts := newTestTokenSource(t, srv.URL)
	required := NewScopeSet(ScopeNews)

	first, err := ts.Token(t.Context(), required)
	if err != nil {
		t.Fatalf("first Token failed: %v", err)
	}
	second, err := ts.Token(t.Context(), required)
	if err != nil {
		t.Fatalf("second Token failed: %v", err)
	}

	if first != second {
		t.Error("expected the cached token to be reused")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 exchange, got %d", n)
	}
}

func TestTokenSourceScopeMiss(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(tokenHandler(t, &calls, 3600))
	defer srv.Close()

	ts := newTestTokenSource(t, srv.URL)

	if _, err := ts.Token(t.Context(), NewScopeSet(ScopeNews)); err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	// A token valid for news cannot serve a chat request.
	tok, err := ts.Token(t.Context(), NewScopeSet(ScopeChat))
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if !tok.Scopes.Contains(ScopeChat) {
		t.Error("expected new token to carry the chat scope")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 exchanges, got %d", n)
	}
}

func TestTokenSourceExpiredNotReused(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(tokenHandler(t, &calls, 0))
	defer srv.Close()

	ts := newTestTokenSource(t, srv.URL)
	required := NewScopeSet(ScopeNews)

	// expires_in of zero yields a token already inside the safety
	// margin; every call must exchange again.
	if _, err := ts.Token(t.Context(), required); err != nil {
		t.Fatalf("first Token failed: %v", err)
	}
	if _, err := ts.Token(t.Context(), required); err != nil {
		t.Fatalf("second Token failed: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 exchanges, got %d", n)
	}
}

func TestTokenSourceRefreshDiscardsCache(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(tokenHandler(t, &calls, 3600))
	defer srv.Close()

	ts := newTestTokenSource(t, srv.URL)
	required := NewScopeSet(ScopeNews)

	if _, err := ts.Token(t.Context(), required); err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if _, err := ts.Refresh(t.Context(), required); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected a forced second exchange, got %d", n)
	}
}

func TestTokenSourceConcurrentCallers(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Hold the exchange open long enough for all callers to pile up.
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	ts := newTestTokenSource(t, srv.URL)
	required := NewScopeSet(ScopeNews)

	const n = 10
	tokens := make([]*Token, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := ts.Token(t.Context(), required)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if tokens[i] != tokens[0] {
			t.Fatalf("caller %d observed a different token", i)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected concurrent misses to collapse into 1 exchange, got %d", got)
	}
}

func TestTokenSourceExchangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code": 401000, "detail": "invalid client"}`))
	}))
	defer srv.Close()

	ts := newTestTokenSource(t, srv.URL)

	_, err := ts.Token(t.Context(), NewScopeSet(ScopeNews))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("unexpected status %d", apiErr.Status)
	}
	if apiErr.Detail != "invalid client" {
		t.Errorf("unexpected detail %q", apiErr.Detail)
	}
}

func TestTokenSourceMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"missing access_token", `{"token_type":"Bearer","expires_in":3600}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			ts := newTestTokenSource(t, srv.URL)
			_, err := ts.Token(t.Context(), nil)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestTokenSourceRejectsAPIKey(t *testing.T) {
	_, err := NewTokenSource(NewAPIKeyCredentials("key"), TokenSourceConfig{})
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestTokenSourceCurrent(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(tokenHandler(t, &calls, 3600))
	defer srv.Close()

	ts := newTestTokenSource(t, srv.URL)
	if ts.Current() != nil {
		t.Error("expected no token before first exchange")
	}

	tok, err := ts.Token(t.Context(), nil)
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if ts.Current() != tok {
		t.Error("expected Current to return the cached token")
	}
}
