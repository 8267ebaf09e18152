// Package wiki provides typed access to the AskNews wiki search
// endpoint.
package wiki

import (
	"context"
	"net/http"
	"time"

	"github.com/asknews/asknews-go/core"
)

const searchPath = "/v1/wiki/search"

// API exposes the wiki endpoints. Safe for concurrent use.
type API struct {
	client *core.Client
}

// New creates a wiki API over the given client.
func New(client *core.Client) *API {
	return &API{client: client}
}

// SearchRequest holds the filters for a wiki search. The zero value of
// an optional field omits it from the query.
type SearchRequest struct {
	Query              string
	NDocuments         int
	NeighborChunks     int
	FullArticles       bool
	HybridSearch       bool
	Diversify          bool
	StringGuarantee    []string
	IncludeMainSection bool
}

func (r *SearchRequest) apply(req *core.Request) {
	req.WithQuery("query", r.Query)
	if r.NDocuments > 0 {
		req.WithQueryInt("n_documents", r.NDocuments)
	}
	if r.NeighborChunks > 0 {
		req.WithQueryInt("neighbor_chunks", r.NeighborChunks)
	}
	if r.FullArticles {
		req.WithQueryBool("full_articles", true)
	}
	if r.HybridSearch {
		req.WithQueryBool("hybrid_search", true)
	}
	if r.Diversify {
		req.WithQueryBool("diversify", true)
	}
	req.WithQuery("string_guarantee", r.StringGuarantee...)
	if r.IncludeMainSection {
		req.WithQueryBool("include_main_section", true)
	}
}

// CirrusMetadata carries search-index metadata for a wiki document.
type CirrusMetadata struct {
	CreateTimestamp time.Time `json:"create_timestamp"`
	WikibaseItem    string    `json:"wikibase_item"`
	Version         int       `json:"version"`
	PopularityScore float64   `json:"popularity_score"`
	TextBytes       int       `json:"text_bytes"`
}

// Document is one wiki search hit.
type Document struct {
	Content        string          `json:"content"`
	Title          string          `json:"title"`
	URL            string          `json:"url"`
	Categories     []string        `json:"categories"`
	Timestamp      time.Time       `json:"timestamp"`
	CirrusMetadata *CirrusMetadata `json:"cirrus_metadata,omitempty"`
	PointID        string          `json:"point_id,omitempty"`
}

// SearchResponse is the result of a wiki search.
type SearchResponse struct {
	Documents []Document `json:"documents"`
}

// Search searches wiki articles for a phrase, keyword, question, or
// paragraph.
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
