// Package analytics provides typed access to the AskNews financial
// analytics endpoints.
package analytics

import (
	"context"
	"net/http"
	"time"

	"github.com/asknews/asknews-go/core"
)

const sentimentPath = "/v1/analytics/finance/sentiment"

// TimeseriesPoint is one sample of a sentiment timeseries.
type TimeseriesPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// TimeseriesData maps an asset slug to its sentiment samples.
type TimeseriesData struct {
	Timeseries map[string][]TimeseriesPoint `json:"timeseries"`
}

// FinanceResponse is the result of an asset sentiment query.
type FinanceResponse struct {
	Data     TimeseriesData `json:"data"`
	AsString string         `json:"as_string,omitempty"`
}

// API exposes the analytics endpoints. Safe for concurrent use.
type API struct {
	client *core.Client
}

// New creates an analytics API over the given client.
func New(client *core.Client) *API {
	return &API{client: client}
}

// SentimentRequest selects the asset and window of a sentiment query.
type SentimentRequest struct {
	// Slug is the asset identifier, e.g. "bitcoin".
	Slug string

	// Metric is the sentiment metric, e.g. "news_positive".
	Metric string

	// DateFrom and DateTo bound the sampled window. Zero values leave
	// the bound open.
	DateFrom time.Time
	DateTo   time.Time

	// ReturnType selects the response rendition: list or string.
	ReturnType string
}

// GetAssetSentiment returns the sentiment timeseries for an asset.
func (a *API) GetAssetSentiment(ctx context.Context, sr *SentimentRequest) (*FinanceResponse, error) {
	req := core.NewRequest(http.MethodGet, sentimentPath).
		WithQuery("slug", sr.Slug).
		WithScopes(core.ScopeAnalytics)
	if sr.Metric != "" {
		req.WithQuery("metric", sr.Metric)
	}
	if !sr.DateFrom.IsZero() {
		req.WithQuery("date_from", sr.DateFrom.UTC().Format(time.RFC3339))
	}
	if !sr.DateTo.IsZero() {
		req.WithQuery("date_to", sr.DateTo.UTC().Format(time.RFC3339))
	}
	if sr.ReturnType != "" {
		req.WithQuery("return_type", sr.ReturnType)
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out FinanceResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
