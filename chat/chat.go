// Package chat provides typed access to the AskNews chat endpoints:
// OpenAI-compatible completions (buffered and streamed), deep research,
// model listing, headline questions, forecasts, live web search,
// automatic filter generation, and scheduled alerts.
package chat

import (
	"context"
	"net/http"
	"strings"

	"github.com/asknews/asknews-go/core"
)

// API endpoints.
const (
	completionsPath = "/v1/openai/chat/completions"
	modelsPath      = "/v1/openai/models"
	questionsPath   = "/v1/chat/questions"
	forecastPath    = "/v1/chat/forecast"
	websearchPath   = "/v1/chat/websearch"
	autofilterPath  = "/v1/chat/autofilter"
)

// DefaultModel is used when a completion request names no model.
const DefaultModel = "gpt-4o-mini-asknews"

// streamDone marks the end of a streamed completion.
const streamDone = "[DONE]"

// API exposes the chat endpoints. Safe for concurrent use.
type API struct {
	client *core.Client
}

// New creates a chat API over the given client.
func New(client *core.Client) *API {
	return &API{client: client}
}

// CreateCompletion runs a chat completion and blocks for the full
// answer. The request's Stream flag is forced off; use
// StreamCompletion for incremental delivery.
func (a *API) CreateCompletion(ctx context.Context, cr *CompletionRequest) (*CompletionResponse, error) {
	body := *cr
	body.Stream = false
	if body.Model == "" {
		body.Model = DefaultModel
	}

	req := core.NewRequest(http.MethodPost, completionsPath).
		WithBody(&body).
		WithScopes(core.ScopeChat)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out CompletionResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamCompletion runs a chat completion in streaming mode and
// delivers chunks as the server emits them. The chunk channel is
// closed after the final chunk or on error; the error channel carries
// at most one error. Cancel ctx to abandon the stream.
func (a *API) StreamCompletion(ctx context.Context, cr *CompletionRequest) (<-chan *CompletionChunk, <-chan error, error) {
	body := *cr
	body.Stream = true
	if body.Model == "" {
		body.Model = DefaultModel
	}

	req := core.NewRequest(http.MethodPost, completionsPath).
		WithBody(&body).
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

	chunks := make(chan *CompletionChunk)
	cherr := make(chan error, 1)
	go func() {
		defer close(chunks)
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
				var chunk CompletionChunk
				if err := ev.JSON(&chunk); err != nil {
					cherr <- err
					return
				}
				select {
				case chunks <- &chunk:
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
	return chunks, cherr, nil
}

// ListModels lists the chat models available to the account.
func (a *API) ListModels(ctx context.Context) (*ModelsResponse, error) {
	req := core.NewRequest(http.MethodGet, modelsPath).
		WithScopes(core.ScopeChat)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out ModelsResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHeadlineQuestions returns generated questions for trending
// headlines matching the queries.
func (a *API) GetHeadlineQuestions(ctx context.Context, queries []string) (*HeadlineQuestionsResponse, error) {
	req := core.NewRequest(http.MethodGet, questionsPath).
		WithQuery("queries", queries...).
		WithScopes(core.ScopeChat)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out HeadlineQuestionsResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForecastRequest configures a forecast query.
type ForecastRequest struct {
	Query             string
	Lookback          int
	Articles          int
	Method            string // nl | kw | both
	Model             string
	Cutoff            string // resolution cutoff date, YYYY-MM-DD
	UseReddit         bool
	AdditionalContext string
	WebSearch         bool
	ExpertInjection   string
}

// GetForecast asks the forecasting agent a resolvable question.
func (a *API) GetForecast(ctx context.Context, fr *ForecastRequest) (*ForecastResponse, error) {
	req := core.NewRequest(http.MethodGet, forecastPath).
		WithQuery("query", fr.Query).
		WithScopes(core.ScopeForecast)
	if fr.Lookback > 0 {
		req.WithQueryInt("lookback", fr.Lookback)
	}
	if fr.Articles > 0 {
		req.WithQueryInt("articles_to_use", fr.Articles)
	}
	if fr.Method != "" {
		req.WithQuery("method", fr.Method)
	}
	if fr.Model != "" {
		req.WithQuery("model", fr.Model)
	}
	if fr.Cutoff != "" {
		req.WithQuery("resolution_criteria_date", fr.Cutoff)
	}
	if fr.UseReddit {
		req.WithQueryBool("use_reddit", true)
	}
	if fr.AdditionalContext != "" {
		req.WithQuery("additional_context", fr.AdditionalContext)
	}
	if fr.WebSearch {
		req.WithQueryBool("web_search", true)
	}
	if fr.ExpertInjection != "" {
		req.WithQuery("expert_injection", fr.ExpertInjection)
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out ForecastResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAutofilter derives news filter parameters from a natural language
// query. The result can be passed back as FilterParams on news, chat,
// graph, and forecast calls.
func (a *API) GetAutofilter(ctx context.Context, query string) (*FilterParamsResponse, error) {
	req := core.NewRequest(http.MethodGet, autofilterPath).
		WithQuery("query", query).
		WithScopes(core.ScopeChat)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out FilterParamsResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LiveWebSearch runs a live web search for the given queries.
func (a *API) LiveWebSearch(ctx context.Context, queries []string, lookback int) (*WebSearchResponse, error) {
	req := core.NewRequest(http.MethodGet, websearchPath).
		WithQuery("queries", queries...).
		WithScopes(core.ScopeWebSearch)
	if lookback > 0 {
		req.WithQueryInt("lookback", lookback)
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out WebSearchResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
