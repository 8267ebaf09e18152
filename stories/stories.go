// Package stories provides typed access to the AskNews story
// clustering endpoints.
package stories

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/asknews/asknews-go/core"
	"github.com/asknews/asknews-go/news"
)

// API endpoints.
const (
	storiesPath = "/v1/stories"
	storyPath   = "/v1/stories/{story_id}"
)

// StoryUpdate is one update of an evolving story cluster.
type StoryUpdate struct {
	UUID           uuid.UUID          `json:"uuid"`
	StoryUUID      uuid.UUID          `json:"story_uuid"`
	Headline       string             `json:"headline"`
	Story          string             `json:"story"`
	StoryUpdateTS  int64              `json:"story_update_ts"`
	NArticles      int                `json:"n_articles"`
	KeyTakeaways   []string           `json:"key_takeaways"`
	Contradictions []string           `json:"contradictions"`
	People         []string           `json:"people"`
	Locations      []string           `json:"locations"`
	NewInformation string             `json:"new_information"`
	ImageURL       string             `json:"image_url"`
	URLSafeTitle   string             `json:"url_safe_title"`
	Categories     []string           `json:"categories"`
	Keywords       []string           `json:"keywords"`
	Languages      map[string]int     `json:"languages"`
	LanguagesPct   map[string]float64 `json:"languages_pct"`
	Countries      map[string]int     `json:"countries"`
	CountriesPct   map[string]float64 `json:"countries_pct"`
	SourcesURLs    map[string]int     `json:"sources_urls"`
	ArticleIDs     []uuid.UUID        `json:"article_ids"`
	Entities       news.Entities      `json:"entities"`
	Confidence     float64            `json:"confidence,omitempty"`
	Provocative    string             `json:"provocative,omitempty"`
}

// StoryResponse is one story cluster with its updates.
type StoryResponse struct {
	UUID                uuid.UUID          `json:"uuid"`
	Categories          []string           `json:"categories"`
	Countries           map[string]int     `json:"countries"`
	CountriesPct        map[string]float64 `json:"countries_pct"`
	CurrentUpdateUUID   string             `json:"current_update_uuid"`
	RequestedUpdateUUID string             `json:"requested_update_uuid"`
	Updates             []StoryUpdate      `json:"updates"`
	UpdatedTS           int64              `json:"updated_ts"`
}

// StoriesResponse is a page of story search results.
type StoriesResponse struct {
	Stories      []StoryResponse `json:"stories"`
	Offset       any             `json:"offset,omitempty"`
	NextPage     any             `json:"next_page,omitempty"`
	PreviousPage any             `json:"previous_page,omitempty"`
}

// API exposes the story endpoints. Safe for concurrent use.
type API struct {
	client *core.Client
}

// New creates a stories API over the given client.
func New(client *core.Client) *API {
	return &API{client: client}
}

// SearchRequest holds the filters for a story search.
type SearchRequest struct {
	Query               string
	Categories          []string
	StartTimestamp      int64
	EndTimestamp        int64
	Sort                string // published | coverage | sentiment
	Reverse             bool
	Method              string // nl | kw | both
	Obj                 bool
	Offset              int
	Limit               int
	Provocative         string
	Continents          []string
	Countries           []string
	Languages           []string
	StringsGuarantee    []string
	ExpandUpdates       bool
	MaxUpdates          int
	MaxArticles         int
	ConfidenceThreshold float64
}

func (r *SearchRequest) apply(req *core.Request) {
	if r.Query != "" {
		req.WithQuery("query", r.Query)
	}
	req.WithQuery("categories", r.Categories...)
	if r.StartTimestamp > 0 {
		req.WithQueryInt64("start_timestamp", r.StartTimestamp)
	}
	if r.EndTimestamp > 0 {
		req.WithQueryInt64("end_timestamp", r.EndTimestamp)
	}
	if r.Sort != "" {
		req.WithQuery("sort_by", r.Sort)
	}
	if r.Reverse {
		req.WithQueryBool("sort_type", true)
	}
	if r.Method != "" {
		req.WithQuery("method", r.Method)
	}
	if r.Obj {
		req.WithQueryBool("obj", true)
	}
	if r.Offset > 0 {
		req.WithQueryInt("offset", r.Offset)
	}
	if r.Limit > 0 {
		req.WithQueryInt("limit", r.Limit)
	}
	if r.Provocative != "" {
		req.WithQuery("provocative", r.Provocative)
	}
	req.WithQuery("continents", r.Continents...)
	req.WithQuery("countries", r.Countries...)
	req.WithQuery("languages", r.Languages...)
	req.WithQuery("strings_guarantee", r.StringsGuarantee...)
	if r.ExpandUpdates {
		req.WithQueryBool("expand_updates", true)
	}
	if r.MaxUpdates > 0 {
		req.WithQueryInt("max_updates", r.MaxUpdates)
	}
	if r.MaxArticles > 0 {
		req.WithQueryInt("max_articles", r.MaxArticles)
	}
	if r.ConfidenceThreshold > 0 {
		req.WithQueryFloat("confidence_threshold", r.ConfidenceThreshold)
	}
}

// Search searches story clusters.
func (a *API) Search(ctx context.Context, sr *SearchRequest) (*StoriesResponse, error) {
	req := core.NewRequest(http.MethodGet, storiesPath).
		WithScopes(core.ScopeStories)
	sr.apply(req)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out StoriesResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOptions narrows a single-story fetch.
type GetOptions struct {
	UpdateUUID    uuid.UUID
	UpdatedTS     time.Time
	ExpandUpdates bool
	MaxUpdates    int
	MaxArticles   int
	Citations     bool
}

// Get fetches one story cluster by its UUID.
func (a *API) Get(ctx context.Context, storyID uuid.UUID, opts *GetOptions) (*StoryResponse, error) {
	req := core.NewRequest(http.MethodGet, storyPath).
		WithPathParam("story_id", storyID.String()).
		WithScopes(core.ScopeStories)

	if opts != nil {
		if opts.UpdateUUID != uuid.Nil {
			req.WithQuery("update_uuid", opts.UpdateUUID.String())
		}
		if !opts.UpdatedTS.IsZero() {
			req.WithQueryInt64("updated_ts", opts.UpdatedTS.Unix())
		}
		if opts.ExpandUpdates {
			req.WithQueryBool("expand_updates", true)
		}
		if opts.MaxUpdates > 0 {
			req.WithQueryInt("max_updates", opts.MaxUpdates)
		}
		if opts.MaxArticles > 0 {
			req.WithQueryInt("max_articles", opts.MaxArticles)
		}
		if opts.Citations {
			req.WithQueryBool("citation_method", true)
		}
	}

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out StoryResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
