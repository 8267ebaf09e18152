package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for classification.
var (
	// ErrAuthentication signals that the credential exchange itself was
	// rejected (e.g. bad client secret). Never retried automatically.
	ErrAuthentication = errors.New("authentication failed")

	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrValidation         = errors.New("validation failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrServer             = errors.New("server error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrNetwork            = errors.New("network error")
	ErrDecode             = errors.New("decode error")

	// ErrStreamConsumed is returned when a streamed body is consumed
	// more than once.
	ErrStreamConsumed = errors.New("stream already consumed")
)

// APIError is a non-2xx response from an AskNews endpoint. It carries
// the HTTP status, the platform error code from the response body, and
// the raw body for callers that need the full payload. APIError wraps
// the sentinel matching its code, so errors.Is works:
//
//	if errors.Is(err, core.ErrNotFound) { ... }
type APIError struct {
	Status    int
	Code      int
	Detail    string
	RequestID string
	Headers   http.Header
	Body      []byte
	Err       error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("asknews: %s (status=%d, code=%d, request_id=%s)",
			e.Detail, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("asknews: %s (status=%d, code=%d)", e.Detail, e.Status, e.Code)
}

// Unwrap returns the sentinel for error chaining.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Platform error codes carried in response bodies. The code space is
// status*1000 plus a per-status discriminator.
var errorCodeSentinels = map[int]error{
	400000: ErrBadRequest,
	401000: ErrUnauthorized,
	403000: ErrForbidden,
	403001: ErrForbidden,
	403002: ErrForbidden,
	403011: ErrForbidden,
	403012: ErrForbidden,
	404000: ErrNotFound,
	405000: ErrMethodNotAllowed,
	422000: ErrValidation,
	429000: ErrRateLimited,
	500000: ErrServer,
	503000: ErrServiceUnavailable,
}

// errorBody is the JSON shape of an AskNews error payload.
type errorBody struct {
	Code   int             `json:"code"`
	Detail json.RawMessage `json:"detail"`
}

// newAPIError builds an APIError from an error response. The body is
// parsed for the platform code and detail when possible; otherwise the
// code is derived from the status.
func newAPIError(status int, headers http.Header, body []byte) *APIError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	code := eb.Code
	if code == 0 {
		code = status * 1000
	}

	detail := http.StatusText(status)
	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil && s != "" {
			detail = s
		} else {
			// Validation errors carry structured detail; keep it raw.
			detail = string(eb.Detail)
		}
	}

	return &APIError{
		Status:    status,
		Code:      code,
		Detail:    detail,
		RequestID: headers.Get("x-request-id"),
		Headers:   headers,
		Body:      body,
		Err:       sentinelForCode(code, status),
	}
}

// NewAPIError builds an APIError for an error token delivered inside
// an otherwise successful response stream. The sentinel is derived
// from the platform code.
func NewAPIError(code int, detail string) *APIError {
	return &APIError{
		Status: code / 1000,
		Code:   code,
		Detail: detail,
		Err:    sentinelForCode(code, code/1000),
	}
}

func sentinelForCode(code, status int) error {
	if s, ok := errorCodeSentinels[code]; ok {
		return s
	}
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	case status >= 400:
		return ErrBadRequest
	default:
		return ErrServer
	}
}

// isAuthFailure reports whether the error signals an expired or invalid
// token, the sole trigger for the dispatcher's one-shot refresh-and-retry.
func isAuthFailure(err *APIError) bool {
	return errors.Is(err, ErrUnauthorized)
}

func wrapNetwork(err error) error {
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func wrapDecode(err error) error {
	return fmt.Errorf("%w: %v", ErrDecode, err)
}
