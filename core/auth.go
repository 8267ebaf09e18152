package core

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TokenSource performs the OAuth2 client-credentials exchange against
// the AskNews auth endpoint and caches the issued token. It owns the
// Credentials and the token cache; a Client never reads either
// directly. TokenSource is safe for concurrent use: concurrent cache
// misses for the same scope set are collapsed into a single in-flight
// exchange, and the cached token is replaced wholesale so no caller
// can observe a half-written entry.
type TokenSource struct {
	creds      Credentials
	tokenURL   string
	scopes     ScopeSet
	httpClient *http.Client
	userAgent  string
	store      TokenStore
	telemetry  TelemetryHook

	cache    tokenCache
	group    singleflight.Group
	loadOnce sync.Once
}

// TokenSourceConfig configures a TokenSource. Zero values fall back to
// package defaults.
type TokenSourceConfig struct {
	// TokenURL is the auth exchange endpoint.
	// Defaults to DefaultTokenURL.
	TokenURL string

	// Scopes are requested on every exchange in addition to the scopes
	// a request requires. ScopeOffline and ScopeOpenID are always
	// included.
	Scopes ScopeSet

	// HTTPClient is used for exchange calls.
	// Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// UserAgent is sent on exchange calls.
	UserAgent string

	// Store, when set, persists issued tokens and seeds the cache on
	// first use.
	Store TokenStore

	// Telemetry receives OnTokenRefresh events.
	Telemetry TelemetryHook
}

// NewTokenSource creates a TokenSource for the given client-credentials
// pair. API-key Credentials are rejected: key mode bypasses the token
// layer entirely.
func NewTokenSource(creds Credentials, cfg TokenSourceConfig) (*TokenSource, error) {
	if creds.IsAPIKey() {
		return nil, ErrNoCredentials
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = NoopTelemetryHook{}
	}

	return &TokenSource{
		creds:      creds,
		tokenURL:   cfg.TokenURL,
		scopes:     NewScopeSet(ScopeOffline, ScopeOpenID).Union(cfg.Scopes),
		httpClient: cfg.HTTPClient,
		userAgent:  cfg.UserAgent,
		store:      cfg.Store,
		telemetry:  cfg.Telemetry,
	}, nil
}

// Token returns the cached token when it is still valid for the
// required scopes, and performs an exchange otherwise.
func (s *TokenSource) Token(ctx context.Context, required ScopeSet) (*Token, error) {
	s.seedFromStore(ctx)

	if tok := s.cache.get(); tok.Valid(time.Now(), required) {
		return tok, nil
	}
	return s.refresh(ctx, required, false)
}

// Refresh unconditionally discards the cached token and repeats the
// exchange. The dispatcher calls this after observing an
// authentication failure on a request.
func (s *TokenSource) Refresh(ctx context.Context, required ScopeSet) (*Token, error) {
	s.cache.set(nil)
	return s.refresh(ctx, required, true)
}

// Current returns the cached token without triggering an exchange.
// It may be nil, expired, or lacking scopes.
func (s *TokenSource) Current() *Token {
	return s.cache.get()
}

func (s *TokenSource) refresh(ctx context.Context, required ScopeSet, forced bool) (*Token, error) {
	mint := s.scopes.Union(required)

	v, err, _ := s.group.Do(mint.String(), func() (any, error) {
		start := time.Now()
		tok, err := s.exchange(ctx, mint)
		s.telemetry.OnTokenRefresh(TokenRefreshEvent{
			Scopes: mint,
			Forced: forced,
			Start:  start,
			End:    time.Now(),
			Err:    err,
		})
		if err != nil {
			return nil, err
		}
		// Commit only after a fully parsed token; an abandoned or
		// failed exchange leaves the cache unchanged.
		s.cache.set(tok)
		if s.store != nil {
			_ = s.store.Save(ctx, tok)
		}
		return tok, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Token), nil
}

// tokenEndpointResponse is the wire shape of a successful exchange.
type tokenEndpointResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// exchange performs one client-credentials exchange for the given
// scope set.
func (s *TokenSource) exchange(ctx context.Context, mint ScopeSet) (*Token, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {mint.String()},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, wrapNetwork(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", encodeClientSecretBasic(s.creds.ClientID(), s.creds.ClientSecret().Expose()))
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, wrapNetwork(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapNetwork(err)
	}

	if resp.StatusCode >= 400 {
		apiErr := newAPIError(resp.StatusCode, resp.Header, body)
		apiErr.Err = ErrAuthentication
		return nil, apiErr
	}

	var ter tokenEndpointResponse
	if err := json.Unmarshal(body, &ter); err != nil {
		return nil, wrapDecode(err)
	}
	if ter.AccessToken == "" {
		return nil, wrapDecode(io.ErrUnexpectedEOF)
	}

	granted := ParseScopes(ter.Scope)
	if len(granted) == 0 {
		granted = mint
	}

	now := time.Now()
	return &Token{
		AccessToken: ter.AccessToken,
		TokenType:   ter.TokenType,
		Scopes:      granted,
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Duration(ter.ExpiresIn) * time.Second),
	}, nil
}

// seedFromStore loads a previously persisted token into the cache on
// first use. Store failures are treated as an empty store.
func (s *TokenSource) seedFromStore(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.loadOnce.Do(func() {
		if tok, err := s.store.Load(ctx); err == nil && tok != nil {
			s.cache.set(tok)
		}
	})
}

// encodeClientSecretBasic builds the HTTP Basic authorization value for
// the token endpoint. Both halves are form-quoted before encoding, per
// RFC 6749 §2.3.1.
func encodeClientSecretBasic(clientID, clientSecret string) string {
	text := url.QueryEscape(clientID) + ":" + url.QueryEscape(clientSecret)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(text))
}
