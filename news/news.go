// Package news provides typed access to the AskNews news endpoints:
// article search, single-article lookup, source coverage reports,
// Reddit search, and knowledge graph building.
package news

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/asknews/asknews-go/core"
)

// API endpoints.
const (
	searchPath  = "/v1/news/search"
	articlePath = "/v1/news/{article_id}"
	sourcesPath = "/v1/sources"
	redditPath  = "/v1/reddit/search"
	graphPath   = "/v1/news/graph"
)

// API exposes the news endpoints. Safe for concurrent use.
type API struct {
	client *core.Client
}

// New creates a news API over the given client.
func New(client *core.Client) *API {
	return &API{client: client}
}

// SearchRequest holds the filters for a news search. The zero value of
// an optional field omits it from the query.
type SearchRequest struct {
	Query                    string
	NArticles                int
	StartTimestamp           int64
	EndTimestamp             int64
	TimeFilter               string // crawl_date | pub_date
	ReturnType               string // string | dicts | both
	Historical               bool
	Method                   string // nl | kw | both
	SimilarityScoreThreshold float64
	Offset                   int
	Categories               []string
	Strategy                 string // latest news | news knowledge | default
	HoursBack                int
	StringGuarantee          []string
	StringGuaranteeOp        string // AND | OR
	EntityGuarantee          []string
	EntityGuaranteeOp        string // AND | OR
	ReturnGraphs             bool
	ReturnGeo                bool
	Countries                []string
	Languages                []string
	Continents               []string
	Sentiment                string // negative | neutral | positive
	DomainURL                []string
	PageRank                 int
	DiversifySources         bool
	Premium                  bool
}

func (r *SearchRequest) apply(req *core.Request) {
	req.WithQuery("query", r.Query)
	if r.NArticles > 0 {
		req.WithQueryInt("n_articles", r.NArticles)
	}
	if r.StartTimestamp > 0 {
		req.WithQueryInt64("start_timestamp", r.StartTimestamp)
	}
	if r.EndTimestamp > 0 {
		req.WithQueryInt64("end_timestamp", r.EndTimestamp)
	}
	if r.TimeFilter != "" {
		req.WithQuery("time_filter", r.TimeFilter)
	}
	if r.ReturnType != "" {
		req.WithQuery("return_type", r.ReturnType)
	}
	if r.Historical {
		req.WithQueryBool("historical", true)
	}
	if r.Method != "" {
		req.WithQuery("method", r.Method)
	}
	if r.SimilarityScoreThreshold > 0 {
		req.WithQueryFloat("similarity_score_threshold", r.SimilarityScoreThreshold)
	}
	if r.Offset > 0 {
		req.WithQueryInt("offset", r.Offset)
	}
	req.WithQuery("categories", r.Categories...)
	if r.Strategy != "" {
		req.WithQuery("strategy", r.Strategy)
	}
	if r.HoursBack > 0 {
		req.WithQueryInt("hours_back", r.HoursBack)
	}
	req.WithQuery("string_guarantee", r.StringGuarantee...)
	if r.StringGuaranteeOp != "" {
		req.WithQuery("string_guarantee_op", r.StringGuaranteeOp)
	}
	req.WithQuery("entity_guarantee", r.EntityGuarantee...)
	if r.EntityGuaranteeOp != "" {
		req.WithQuery("entity_guarantee_op", r.EntityGuaranteeOp)
	}
	if r.ReturnGraphs {
		req.WithQueryBool("return_graphs", true)
	}
	if r.ReturnGeo {
		req.WithQueryBool("return_geo", true)
	}
	req.WithQuery("countries", r.Countries...)
	req.WithQuery("languages", r.Languages...)
	req.WithQuery("continents", r.Continents...)
	if r.Sentiment != "" {
		req.WithQuery("sentiment", r.Sentiment)
	}
	req.WithQuery("domain_url", r.DomainURL...)
	if r.PageRank > 0 {
		req.WithQueryInt("page_rank", r.PageRank)
	}
	if r.DiversifySources {
		req.WithQueryBool("diversify_sources", true)
	}
	if r.Premium {
		req.WithQueryBool("premium", true)
	}
}

// Search searches indexed news articles.
func (a *API) Search(ctx context.Context, sr *SearchRequest) (*SearchResponse, error) {
	req := core.NewRequest(http.MethodGet, searchPath).
		WithScopes(core.ScopeNews)
	sr.apply(req)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out SearchResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetArticle fetches one article by its UUID.
func (a *API) GetArticle(ctx context.Context, articleID uuid.UUID) (*ArticleResponse, error) {
	req := core.NewRequest(http.MethodGet, articlePath).
		WithPathParam("article_id", articleID.String()).
		WithScopes(core.ScopeNews)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out ArticleResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSourcesReport returns the source coverage report.
func (a *API) GetSourcesReport(ctx context.Context, nDays int, metric string) (SourceReportResponse, error) {
	req := core.NewRequest(http.MethodGet, sourcesPath).
		WithScopes(core.ScopeNews)
	if nDays > 0 {
		req.WithQueryInt("n_days", nDays)
	}
	if metric != "" {
		req.WithQuery("metric", metric)
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out SourceReportResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchReddit searches Reddit threads tracked by the platform.
func (a *API) SearchReddit(ctx context.Context, keywords []string, nThreads int) (*RedditResponse, error) {
	req := core.NewRequest(http.MethodGet, redditPath).
		WithQuery("keywords", keywords...).
		WithScopes(core.ScopeNews)
	if nThreads > 0 {
		req.WithQueryInt("n_threads", nThreads)
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out RedditResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GraphRequest configures knowledge graph construction.
type GraphRequest struct {
	Query           string   `json:"query,omitempty"`
	ReturnArticles  bool     `json:"return_articles,omitempty"`
	MinClusterProb  float64  `json:"min_cluster_probability,omitempty"`
	GeoDisambiguate bool     `json:"geo_disambiguation,omitempty"`
	FilterURLs      []string `json:"filter_urls,omitempty"`
}

// BuildGraph builds a knowledge graph from articles matching the
// request.
func (a *API) BuildGraph(ctx context.Context, gr *GraphRequest) (*GraphResponse, error) {
	req := core.NewRequest(http.MethodPost, graphPath).
		WithBody(gr).
		WithScopes(core.ScopeNews)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out GraphResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
