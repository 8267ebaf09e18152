package core

import "time"

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, tracing, etc.
//
// Event types never include sensitive data: credentials, tokens, and
// request/response payloads are excluded. Only operational metadata is
// exposed (method, endpoint, status, timing).
type TelemetryHook interface {
	// OnRequestStart is called when a dispatch begins, before the token
	// is resolved.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a dispatch completes, including the
	// auth-triggered retry if one occurred.
	OnRequestEnd(e RequestEndEvent)

	// OnTokenRefresh is called after each credential exchange with the
	// auth endpoint, successful or not.
	OnTokenRefresh(e TokenRefreshEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Method   string
	Endpoint string
	Start    time.Time
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	Method   string
	Endpoint string
	Status   int // zero when the request never produced a response
	Retried  bool
	Start    time.Time
	End      time.Time
	Err      error
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// TokenRefreshEvent contains metadata about a credential exchange.
type TokenRefreshEvent struct {
	Scopes ScopeSet
	Forced bool
	Start  time.Time
	End    time.Time
	Err    error
}

// Duration returns the elapsed time for the exchange.
func (e TokenRefreshEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
// Use this as a default when no telemetry is configured.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

// OnTokenRefresh does nothing.
func (NoopTelemetryHook) OnTokenRefresh(TokenRefreshEvent) {}

// Compile-time check that NoopTelemetryHook implements TelemetryHook.
var _ TelemetryHook = NoopTelemetryHook{}
