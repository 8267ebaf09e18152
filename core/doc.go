// Package core provides the transport and authentication layer of the
// AskNews Go SDK.
//
// The primary entry point is [Client], which owns the OAuth2
// client-credentials flow against the AskNews auth endpoint, caches the
// issued bearer token, and transparently refreshes it when it expires
// or lacks a requested scope. Endpoint packages (news, stories, chat,
// analytics) build a [Request] and hand it to the client; they never
// touch the Authorization header themselves.
//
//	creds := core.NewClientCredentials(id, secret)
//	client := core.NewClient(creds, core.WithScopes(core.ScopeNews))
//	resp, err := client.Do(ctx, core.NewRequest(http.MethodGet, "/v1/news/search").
//	    WithQuery("query", "fusion energy").
//	    WithScopes(core.ScopeNews))
//
// # Calling conventions
//
// [Client.Do] blocks for the full round trip. [Client.DoAsync] runs the
// same dispatch path on a goroutine and delivers a single [Result] on
// the returned channel; both share one implementation of the
// refresh-and-retry state machine.
//
// # Auth retry
//
// A 401 response (or an AskNews error body carrying an unauthorized
// code) triggers exactly one forced token refresh followed by one
// re-dispatch. A failure on the second attempt is surfaced as-is. No
// other status is retried by the client.
//
// # Streaming
//
// Responses requested with [Request.Streaming] carry a one-shot
// [Stream] instead of a buffered body. Auth failures on streamed
// requests are detected from the response status before any body bytes
// are handed over, so callers never observe partial data from a failed
// first attempt. Consuming a stream twice fails with
// [ErrStreamConsumed].
//
// # Errors
//
// All failures are classified by sentinel: [ErrAuthentication] for a
// rejected credential exchange, [ErrNetwork] for transport failures,
// [ErrDecode] for malformed payloads, and the per-status sentinels
// wrapped by [*APIError]. Use errors.Is to branch:
//
//	if errors.Is(err, core.ErrRateLimited) {
//	    // back off
//	}
//
// # Thread safety
//
// [Client] and [TokenSource] are safe for concurrent use. [Request] is
// a builder and is not; [Stream] may be consumed by one goroutine only.
package core
