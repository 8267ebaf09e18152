package analytics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func TestGetAssetSentiment(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analytics/finance/sentiment" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("slug") != "bitcoin" {
			t.Errorf("slug = %q", q.Get("slug"))
		}
		if q.Get("metric") != "news_positive" {
			t.Errorf("metric = %q", q.Get("metric"))
		}
		if q.Get("date_from") != "2024-05-01T00:00:00Z" {
			t.Errorf("date_from = %q", q.Get("date_from"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"timeseries": {
					"bitcoin": [{"timestamp": 1714521600, "value": 0.4}]
				}
			}
		}`))
	})

	resp, err := api.GetAssetSentiment(t.Context(), &SentimentRequest{
		Slug:     "bitcoin",
		Metric:   "news_positive",
		DateFrom: from,
	})
	if err != nil {
		t.Fatalf("GetAssetSentiment failed: %v", err)
	}

	points := resp.Data.Timeseries["bitcoin"]
	if len(points) != 1 || points[0].Value != 0.4 {
		t.Errorf("unexpected timeseries: %+v", points)
	}
}
