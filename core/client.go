package core

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// Version is the SDK release version, reported in the User-Agent.
const Version = "0.3.0"

// Default endpoints for the AskNews platform.
const (
	// DefaultBaseURL is the resource API base URL.
	DefaultBaseURL = "https://api.asknews.app"

	// DefaultTokenURL is the OAuth2 token endpoint.
	DefaultTokenURL = "https://auth.asknews.app/oauth2/token"
)

const defaultUserAgent = "asknews-go/" + Version

// apiKeyHeader carries a pre-issued API key. Exactly one of this and
// Authorization is present per request, never both.
const apiKeyHeader = "x-api-key"

// Config holds the configuration for a Client.
type Config struct {
	// BaseURL is the resource API base URL.
	// Defaults to DefaultBaseURL.
	BaseURL string

	// TokenURL is the OAuth2 token endpoint.
	// Defaults to DefaultTokenURL.
	TokenURL string

	// HTTPClient is the HTTP client used for all requests, including
	// token exchanges. Defaults to http.DefaultClient. Its Timeout
	// bounds every network call.
	HTTPClient *http.Client

	// UserAgent overrides the default asknews-go/<version> value.
	UserAgent string

	// Headers are sent on every request. Callers cannot set
	// Authorization or the API-key header here; the dispatcher owns
	// those.
	Headers http.Header

	// Scopes are requested on every token exchange in addition to
	// per-request scopes.
	Scopes ScopeSet

	// Telemetry receives request lifecycle events.
	Telemetry TelemetryHook

	// TokenStore persists issued tokens across processes. Unused in
	// API-key mode.
	TokenStore TokenStore
}

// Option is a function that configures the Client.
type Option func(*Config)

// WithBaseURL sets a custom resource API base URL.
func WithBaseURL(u string) Option {
	return func(c *Config) { c.BaseURL = u }
}

// WithTokenURL sets a custom token endpoint.
func WithTokenURL(u string) Option {
	return func(c *Config) { c.TokenURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.HTTPClient = hc }
}

// WithUserAgent sets a custom User-Agent value.
func WithUserAgent(ua string) Option {
	return func(c *Config) { c.UserAgent = ua }
}

// WithHeaders sets headers sent on every request.
func WithHeaders(h http.Header) Option {
	return func(c *Config) { c.Headers = h }
}

// WithScopes sets the scopes requested on every token exchange.
func WithScopes(scopes ...Scope) Option {
	return func(c *Config) { c.Scopes = NewScopeSet(scopes...) }
}

// WithTelemetry sets the telemetry hook.
func WithTelemetry(h TelemetryHook) Option {
	return func(c *Config) {
		if h != nil {
			c.Telemetry = h
		}
	}
}

// WithTokenStore sets a persistent token store.
func WithTokenStore(st TokenStore) Option {
	return func(c *Config) { c.TokenStore = st }
}

// Client dispatches requests to the AskNews API, attaching the current
// bearer token (or API key) to every request and retrying exactly once
// after a forced refresh when a response signals an expired or invalid
// token. Client is safe for concurrent use.
type Client struct {
	cfg       Config
	creds     Credentials
	tokens    *TokenSource // nil in API-key mode
	telemetry TelemetryHook
}

// NewClient creates a Client with the given credentials and options.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}

	cfg := Config{
		BaseURL:    DefaultBaseURL,
		TokenURL:   DefaultTokenURL,
		HTTPClient: http.DefaultClient,
		UserAgent:  defaultUserAgent,
		Telemetry:  NoopTelemetryHook{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{
		cfg:       cfg,
		creds:     creds,
		telemetry: cfg.Telemetry,
	}

	if !creds.IsAPIKey() {
		ts, err := NewTokenSource(creds, TokenSourceConfig{
			TokenURL:   cfg.TokenURL,
			Scopes:     cfg.Scopes,
			HTTPClient: cfg.HTTPClient,
			UserAgent:  cfg.UserAgent,
			Store:      cfg.TokenStore,
			Telemetry:  cfg.Telemetry,
		})
		if err != nil {
			return nil, err
		}
		c.tokens = ts
	}

	return c, nil
}

// TokenSource returns the client's token source, or nil in API-key
// mode.
func (c *Client) TokenSource() *TokenSource {
	return c.tokens
}

// Do dispatches the request and blocks for the full round trip,
// including any token exchange and the one-shot auth retry.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	c.telemetry.OnRequestStart(RequestStartEvent{
		Method:   req.method,
		Endpoint: req.endpoint,
		Start:    start,
	})

	resp, retried, err := c.dispatch(ctx, req)

	end := RequestEndEvent{
		Method:   req.method,
		Endpoint: req.endpoint,
		Retried:  retried,
		Start:    start,
		End:      time.Now(),
		Err:      err,
	}
	if resp != nil {
		end.Status = resp.StatusCode
	}
	c.telemetry.OnRequestEnd(end)

	return resp, err
}

// Result is the outcome of an asynchronous dispatch.
type Result struct {
	Response *Response
	Err      error
}

// DoAsync dispatches the request without occupying the calling
// goroutine. It is a thin adapter over the same dispatch path as Do;
// exactly one Result is delivered on the returned channel, which is
// then closed. Cancel ctx to abandon the call.
func (c *Client) DoAsync(ctx context.Context, req *Request) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		resp, err := c.Do(ctx, req)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.cfg.HTTPClient.CloseIdleConnections()
}

// dispatch runs the refresh-and-retry state machine: send once, and on
// an authentication failure force a refresh and send exactly one more
// time. All other failures surface immediately.
func (c *Client) dispatch(ctx context.Context, req *Request) (*Response, bool, error) {
	for attempt := 0; ; attempt++ {
		httpResp, err := c.send(ctx, req)
		if err != nil {
			return nil, attempt > 0, err
		}

		if httpResp.StatusCode < 400 {
			resp, err := c.envelope(httpResp, req)
			return resp, attempt > 0, err
		}

		// Error path: the body is always buffered, streamed or not, so
		// no chunk has reached the caller when a retry happens.
		body, readErr := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		if readErr != nil {
			return nil, attempt > 0, wrapNetwork(readErr)
		}

		apiErr := newAPIError(httpResp.StatusCode, httpResp.Header, body)
		if attempt == 0 && c.tokens != nil && isAuthFailure(apiErr) {
			if _, err := c.tokens.Refresh(ctx, c.requestScopes(req)); err != nil {
				return nil, false, err
			}
			continue
		}
		return nil, attempt > 0, apiErr
	}
}

// send builds and performs one HTTP round trip. The request is rebuilt
// on every attempt so a retry carries the freshly minted token.
func (c *Client) send(ctx context.Context, req *Request) (*http.Response, error) {
	u, err := req.url(c.cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	body, contentType, err := req.encodeBody()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, reader)
	if err != nil {
		return nil, wrapNetwork(err)
	}

	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, vs := range c.cfg.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vs := range req.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", req.acceptHeader())

	// Exactly one auth header, set last so callers can never override
	// or duplicate it.
	if c.creds.IsAPIKey() {
		httpReq.Header.Del("Authorization")
		httpReq.Header.Set(apiKeyHeader, c.creds.APIKey().Expose())
	} else {
		tok, err := c.tokens.Token(ctx, c.requestScopes(req))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Del(apiKeyHeader)
		httpReq.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	}

	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, wrapNetwork(err)
	}
	return resp, nil
}

// envelope wraps a successful HTTP response. Streamed bodies are left
// unconsumed; buffered bodies are read and closed here.
func (c *Client) envelope(httpResp *http.Response, req *Request) (*Response, error) {
	if req.stream {
		return newStreamedResponse(httpResp.StatusCode, httpResp.Header, newStream(httpResp.Body)), nil
	}

	body, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		return nil, wrapNetwork(err)
	}
	return newBufferedResponse(httpResp.StatusCode, httpResp.Header, body), nil
}

func (c *Client) requestScopes(req *Request) ScopeSet {
	return req.scopes
}
