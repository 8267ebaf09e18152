package core

import (
	"encoding/json"
	"mime"
	"net/http"
	"sync"
)

// Response wraps one HTTP response from an AskNews endpoint. Status and
// headers are available eagerly; a buffered body is decoded on first
// access and the decoded value cached; a streamed body is exposed as a
// one-shot [Stream].
type Response struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Headers are the response headers.
	Headers http.Header

	// ContentType is the media type of the body, parameters stripped.
	ContentType string

	body   []byte
	stream *Stream

	mu        sync.Mutex
	decoded   any
	decodeErr error
	hasCache  bool
}

func newBufferedResponse(status int, headers http.Header, body []byte) *Response {
	return &Response{
		StatusCode:  status,
		Headers:     headers,
		ContentType: mediaType(headers),
		body:        body,
	}
}

func newStreamedResponse(status int, headers http.Header, stream *Stream) *Response {
	return &Response{
		StatusCode:  status,
		Headers:     headers,
		ContentType: mediaType(headers),
		stream:      stream,
	}
}

func mediaType(headers http.Header) string {
	ct := headers.Get("Content-Type")
	if ct == "" {
		return "application/json"
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}

// IsStream reports whether the body is streamed.
func (r *Response) IsStream() bool {
	return r.stream != nil
}

// Stream returns the one-shot body stream, or nil for buffered
// responses.
func (r *Response) Stream() *Stream {
	return r.stream
}

// Bytes returns the raw buffered body. Nil for streamed responses.
func (r *Response) Bytes() []byte {
	return r.body
}

// JSON decodes the buffered body into v.
func (r *Response) JSON(v any) error {
	if r.IsStream() {
		return ErrStreamConsumed
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return wrapDecode(err)
	}
	return nil
}

// Content decodes the buffered body according to its content type:
// JSON into generic Go values, text/plain into a string, anything else
// into raw bytes. The decoded value is cached after the first call.
func (r *Response) Content() (any, error) {
	if r.IsStream() {
		return r.stream, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasCache {
		return r.decoded, r.decodeErr
	}

	r.hasCache = true
	switch r.ContentType {
	case "application/json":
		if len(r.body) == 0 {
			r.decoded = nil
			break
		}
		var v any
		if err := json.Unmarshal(r.body, &v); err != nil {
			r.decodeErr = wrapDecode(err)
			break
		}
		r.decoded = v
	case "text/plain":
		r.decoded = string(r.body)
	default:
		r.decoded = r.body
	}
	return r.decoded, r.decodeErr
}

// Close releases a streamed body; it is a no-op for buffered
// responses.
func (r *Response) Close() error {
	if r.stream != nil {
		return r.stream.Close()
	}
	return nil
}
