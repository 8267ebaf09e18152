package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// AcceptType is one entry of an Accept header with its quality value.
type AcceptType struct {
	ContentType string
	Quality     float64
}

// Request describes one API call before dispatch. Endpoint methods
// build a Request and hand it to [Client.Do]; the Authorization header
// is injected by the client, never by the builder.
//
// Request is a builder and is not safe for concurrent use.
type Request struct {
	method     string
	endpoint   string
	pathParams map[string]string
	query      url.Values
	headers    http.Header
	body       any
	accept     []AcceptType
	scopes     ScopeSet
	stream     bool
}

// NewRequest creates a Request for the given method and endpoint.
// The endpoint may contain {param} placeholders resolved via
// [Request.WithPathParam].
func NewRequest(method, endpoint string) *Request {
	return &Request{
		method:   method,
		endpoint: endpoint,
		query:    url.Values{},
		headers:  http.Header{},
	}
}

// WithPathParam substitutes a {name} placeholder in the endpoint.
func (r *Request) WithPathParam(name, value string) *Request {
	if r.pathParams == nil {
		r.pathParams = make(map[string]string)
	}
	r.pathParams[name] = value
	return r
}

// WithQuery appends query values under the given key. Multi-value keys
// are repeated on the wire.
func (r *Request) WithQuery(key string, values ...string) *Request {
	for _, v := range values {
		r.query.Add(key, v)
	}
	return r
}

// WithQueryInt appends an integer query value.
func (r *Request) WithQueryInt(key string, value int) *Request {
	return r.WithQuery(key, strconv.Itoa(value))
}

// WithQueryInt64 appends a 64-bit integer query value. Use it for
// epoch timestamps so values survive 32-bit int platforms.
func (r *Request) WithQueryInt64(key string, value int64) *Request {
	return r.WithQuery(key, strconv.FormatInt(value, 10))
}

// WithQueryBool appends a boolean query value.
func (r *Request) WithQueryBool(key string, value bool) *Request {
	return r.WithQuery(key, strconv.FormatBool(value))
}

// WithQueryFloat appends a float query value.
func (r *Request) WithQueryFloat(key string, value float64) *Request {
	return r.WithQuery(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// WithHeader sets a request header. The Authorization header cannot be
// set here; the dispatcher owns it.
func (r *Request) WithHeader(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

// WithHeaders merges the given headers into the request.
func (r *Request) WithHeaders(h http.Header) *Request {
	for k, vs := range h {
		for _, v := range vs {
			r.headers.Add(k, v)
		}
	}
	return r
}

// WithBody sets the request body. []byte is sent raw as
// application/octet-stream; any other value is JSON-encoded. An
// explicit Content-Type header set by the caller wins.
func (r *Request) WithBody(body any) *Request {
	r.body = body
	return r
}

// WithAccept appends an accepted content type with a quality value.
func (r *Request) WithAccept(contentType string, quality float64) *Request {
	r.accept = append(r.accept, AcceptType{ContentType: contentType, Quality: quality})
	return r
}

// WithScopes declares the scopes this request requires.
func (r *Request) WithScopes(scopes ...Scope) *Request {
	if r.scopes == nil {
		r.scopes = make(ScopeSet, len(scopes))
	}
	for _, sc := range scopes {
		r.scopes[sc] = struct{}{}
	}
	return r
}

// Streaming marks the response body to be delivered as a one-shot
// [Stream] instead of being buffered.
func (r *Request) Streaming() *Request {
	r.stream = true
	return r
}

// Scopes returns the scopes the request requires.
func (r *Request) Scopes() ScopeSet {
	return r.scopes
}

// url resolves path params and query into the final URL.
func (r *Request) url(baseURL string) (string, error) {
	path := r.endpoint
	for name, value := range r.pathParams {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("%w: unresolved path params in %q", ErrBadRequest, path)
	}

	u := strings.TrimRight(baseURL, "/") + path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u, nil
}

// encodeBody serializes the body and reports its content type. The
// returned type is empty when the request has no body.
func (r *Request) encodeBody() ([]byte, string, error) {
	switch body := r.body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return body, "application/octet-stream", nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", wrapDecode(err)
		}
		return data, "application/json", nil
	}
}

// acceptHeader renders the Accept header; quality values of 1.0 are
// omitted, matching common server expectations.
func (r *Request) acceptHeader() string {
	accept := r.accept
	if len(accept) == 0 {
		accept = []AcceptType{{ContentType: "application/json", Quality: 1.0}}
	}

	parts := make([]string, 0, len(accept))
	for _, a := range accept {
		if a.Quality < 1.0 {
			parts = append(parts, fmt.Sprintf("%s; q=%.1f", a.ContentType, a.Quality))
		} else {
			parts = append(parts, a.ContentType)
		}
	}
	return strings.Join(parts, ", ")
}
