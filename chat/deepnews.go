package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/asknews/asknews-go/core"
)

const deepnewsPath = "/v1/chat/deepnews"

// DefaultDeepNewsModel is used when a deep research request names no
// model.
const DefaultDeepNewsModel = "deepseek"

// Deep research source kinds delivered on the stream.
const (
	DeepNewsSourceNews  = "news"
	DeepNewsSourceWeb   = "web"
	DeepNewsSourceGraph = "graph"
	DeepNewsSourceChart = "chart"
)

// DeepNewsRequest is the body of a deep research call.
type DeepNewsRequest struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model,omitempty"`
	Stream   bool      `json:"stream,omitempty"`

	// Sources selects the research backends; defaults to ["asknews"].
	Sources []string `json:"sources,omitempty"`

	// SearchDepth is the number of searches per research round;
	// MaxDepth caps the rounds.
	SearchDepth int `json:"search_depth,omitempty"`
	MaxDepth    int `json:"max_depth,omitempty"`

	// InlineCitations selects how sources are cited in the answer:
	// markdown_link, numbered, or none.
	InlineCitations string `json:"inline_citations,omitempty"`

	AppendReferences        *bool `json:"append_references,omitempty"`
	AsknewsWatermark        *bool `json:"asknews_watermark,omitempty"`
	JournalistMode          *bool `json:"journalist_mode,omitempty"`
	ConversationalAwareness *bool `json:"conversational_awareness,omitempty"`
	ReturnSources           *bool `json:"return_sources,omitempty"`

	// FilterParams are forwarded to the retrieval layer, using the same
	// keys as a news search.
	FilterParams map[string]any `json:"filter_params,omitempty"`

	// ThreadID resumes an earlier research thread.
	ThreadID string `json:"thread_id,omitempty"`
}

// DeepNewsChoice is one generated research answer.
type DeepNewsChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// DeepNewsSources carries the material the research drew on.
type DeepNewsSources struct {
	News   []map[string]any  `json:"news,omitempty"`
	Web    []WebSearchResult `json:"web,omitempty"`
	Charts []map[string]any  `json:"charts,omitempty"`
}

// DeepNewsResponse is a buffered deep research result.
type DeepNewsResponse struct {
	ID      string           `json:"id"`
	Created int64            `json:"created"`
	Object  string           `json:"object,omitempty"`
	Model   string           `json:"model,omitempty"`
	Usage   Usage            `json:"usage"`
	Choices []DeepNewsChoice `json:"choices"`
	Sources *DeepNewsSources `json:"sources,omitempty"`
}

// DeepNewsChunkChoice is one choice of a streamed research chunk.
type DeepNewsChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// DeepNewsChunk is one streamed research text fragment.
type DeepNewsChunk struct {
	ID      string                `json:"id"`
	Created int64                 `json:"created"`
	Object  string                `json:"object,omitempty"`
	Model   string                `json:"model,omitempty"`
	Usage   Usage                 `json:"usage"`
	Choices []DeepNewsChunkChoice `json:"choices"`
}

// DeepNewsSource is one source discovered during streamed research.
// Kind selects how Data decodes: news and web carry result objects,
// graph carries a URL string, chart carries a chart object.
type DeepNewsSource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Object  string `json:"object,omitempty"`
	Source  struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	} `json:"source"`
}

// DeepNewsEvent is one streamed research token; exactly one of Chunk
// and Source is set.
type DeepNewsEvent struct {
	Chunk  *DeepNewsChunk
	Source *DeepNewsSource
}

// Stream token object discriminators.
const (
	deepnewsChunkObject   = "chat.completion.chunk"
	deepnewsSourcesObject = "chat.completion.sources"
)

func prepareDeepNews(dr *DeepNewsRequest, stream bool) *DeepNewsRequest {
	body := *dr
	body.Stream = stream
	if body.Model == "" {
		body.Model = DefaultDeepNewsModel
	}
	if len(body.Sources) == 0 {
		body.Sources = []string{"asknews"}
	}
	return &body
}

// GetDeepNews runs deep research and blocks for the full result. The
// request's Stream flag is forced off; use StreamDeepNews for
// incremental delivery.
func (a *API) GetDeepNews(ctx context.Context, dr *DeepNewsRequest) (*DeepNewsResponse, error) {
	req := core.NewRequest(http.MethodPost, deepnewsPath).
		WithBody(prepareDeepNews(dr, false)).
		WithScopes(core.ScopeChat)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out DeepNewsResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamDeepNews runs deep research in streaming mode. Text chunks and
// discovered sources interleave on the event channel; an error token
// on the wire surfaces as a *core.APIError on the error channel. The
// event channel is closed after the final token or on error.
func (a *API) StreamDeepNews(ctx context.Context, dr *DeepNewsRequest) (<-chan *DeepNewsEvent, <-chan error, error) {
	req := core.NewRequest(http.MethodPost, deepnewsPath).
		WithBody(prepareDeepNews(dr, true)).
		WithAccept("text/event-stream", 1.0).
		WithScopes(core.ScopeChat).
		Streaming()

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	events, errs, err := resp.Stream().Events(ctx)
	if err != nil {
		resp.Close()
		return nil, nil, err
	}

	out := make(chan *DeepNewsEvent)
	cherr := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(cherr)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					if err := <-errs; err != nil {
						cherr <- err
					}
					return
				}
				data := strings.TrimSpace(strings.Join(ev.Data, "\n"))
				if data == "" || data == streamDone {
					continue
				}
				token, err := decodeDeepNewsToken([]byte(data))
				if err != nil {
					cherr <- err
					return
				}
				if token == nil {
					continue
				}
				select {
				case out <- token:
				case <-ctx.Done():
					cherr <- ctx.Err()
					return
				}
			case <-ctx.Done():
				cherr <- ctx.Err()
				return
			}
		}
	}()
	return out, cherr, nil
}

// decodeDeepNewsToken resolves the stream token union: an error body,
// a text chunk, or a source. Unknown objects are skipped.
func decodeDeepNewsToken(data []byte) (*DeepNewsEvent, error) {
	var peek struct {
		Object string `json:"object"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	if peek.Error != nil {
		return nil, core.NewAPIError(peek.Error.Code, peek.Error.Message)
	}

	switch peek.Object {
	case deepnewsChunkObject:
		var chunk DeepNewsChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrDecode, err)
		}
		return &DeepNewsEvent{Chunk: &chunk}, nil
	case deepnewsSourcesObject:
		var source DeepNewsSource
		if err := json.Unmarshal(data, &source); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrDecode, err)
		}
		return &DeepNewsEvent{Source: &source}, nil
	}
	return nil, nil
}
