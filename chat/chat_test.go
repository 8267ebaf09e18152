package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asknews/asknews-go/core"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := core.NewClient(core.NewAPIKeyCredentials("test-key"), core.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return New(client)
}

func TestCreateCompletion(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/openai/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body CompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body.Stream {
			t.Error("buffered calls must not request streaming")
		}
		if body.Model != DefaultModel {
			t.Errorf("model = %q", body.Model)
		}
		if len(body.Messages) != 1 || body.Messages[0].Content != "hi" {
			t.Errorf("messages = %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CompletionResponse{
			ID:    "cmpl-1",
			Model: body.Model,
			Choices: []CompletionChoice{
				{Message: Message{Role: "assistant", Content: "hello"}, FinishReason: "stop"},
			},
			Usage: Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		})
	})

	resp, err := api.CreateCompletion(t.Context(), &CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("CreateCompletion failed: %v", err)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "hello" {
		t.Errorf("unexpected choices: %+v", resp.Choices)
	}
	if resp.Usage.TotalTokens != 5 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestStreamCompletion(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var body CompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if !body.Stream {
			t.Error("streamed calls must request streaming")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"c","choices":[{"index":0,"delta":{"role":"assistant","content":"hel"}}]}`,
			`{"id":"c","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
			`{"id":"c","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		}
		for _, c := range chunks {
			w.Write([]byte("data: " + c + "\n\n"))
		}
		w.Write([]byte("data: [DONE]\n\n"))
	})

	chunks, errs, err := api.StreamCompletion(t.Context(), &CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	var sb strings.Builder
	var finish string
	n := 0
	for chunk := range chunks {
		n++
		for _, ch := range chunk.Choices {
			sb.WriteString(ch.Delta.Content)
			if ch.FinishReason != "" {
				finish = ch.FinishReason
			}
		}
	}
	if err := <-errs; err != nil {
		t.Fatalf("stream error: %v", err)
	}

	if n != 3 {
		t.Errorf("got %d chunks, want 3", n)
	}
	if sb.String() != "hello" {
		t.Errorf("assembled content = %q", sb.String())
	}
	if finish != "stop" {
		t.Errorf("finish reason = %q", finish)
	}
}

func TestStreamCompletionAuthErrorBeforeStream(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code": 401000, "detail": "bad key"}`))
	})

	_, _, err := api.StreamCompletion(t.Context(), &CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected an error before any chunk is delivered")
	}
}

func TestListModels(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/openai/models" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ModelsResponse{
			Object: "list",
			Data:   []Model{{ID: "gpt-4o-mini-asknews"}},
		})
	})

	resp, err := api.ListModels(t.Context())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Errorf("unexpected models: %+v", resp.Data)
	}
}

func TestGetHeadlineQuestions(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/questions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"questions": {"ai": ["What changed?"]}}`))
	})

	resp, err := api.GetHeadlineQuestions(t.Context(), []string{"ai"})
	if err != nil {
		t.Fatalf("GetHeadlineQuestions failed: %v", err)
	}
	if len(resp.Questions["ai"]) != 1 {
		t.Errorf("unexpected questions: %+v", resp.Questions)
	}
}

func TestGetForecast(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/forecast" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "Will rates change?" {
			t.Errorf("query = %q", q.Get("query"))
		}
		if q.Get("lookback") != "14" {
			t.Errorf("lookback = %q", q.Get("lookback"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ForecastResponse{Forecast: "unlikely"})
	})

	resp, err := api.GetForecast(t.Context(), &ForecastRequest{
		Query:    "Will rates change?",
		Lookback: 14,
	})
	if err != nil {
		t.Fatalf("GetForecast failed: %v", err)
	}
	if resp.Forecast != "unlikely" {
		t.Errorf("forecast = %q", resp.Forecast)
	}
}

func TestLiveWebSearch(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/websearch" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query()["queries"]; len(got) != 1 || got[0] != "chip exports" {
			t.Errorf("queries = %v", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(WebSearchResponse{
			Results: []WebSearchResult{{Title: "Export rules tighten"}},
		})
	})

	resp, err := api.LiveWebSearch(t.Context(), []string{"chip exports"}, 0)
	if err != nil {
		t.Fatalf("LiveWebSearch failed: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestGetAutofilter(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/autofilter" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "french protests last week" {
			t.Errorf("query = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(FilterParamsResponse{
			Query:          "protests",
			Categories:     []string{"Politics"},
			Countries:      []string{"FR"},
			StartTimestamp: 1735689600,
			EndTimestamp:   1736294400,
		})
	})

	resp, err := api.GetAutofilter(t.Context(), "french protests last week")
	if err != nil {
		t.Fatalf("GetAutofilter failed: %v", err)
	}
	if resp.Query != "protests" || len(resp.Countries) != 1 || resp.Countries[0] != "FR" {
		t.Errorf("filters = %+v", resp)
	}
	if resp.StartTimestamp != 1735689600 {
		t.Errorf("start_timestamp = %d", resp.StartTimestamp)
	}
}
