package news

import (
	"time"

	"github.com/google/uuid"
)

// Entities groups named entities recognized in an article.
type Entities struct {
	Person       []string `json:"Person,omitempty"`
	Organization []string `json:"Organization,omitempty"`
	Location     []string `json:"Location,omitempty"`
	Nationality  []string `json:"Nationality,omitempty"`
	Date         []string `json:"Date,omitempty"`
	Event        []string `json:"Event,omitempty"`
	Money        []string `json:"Money,omitempty"`
	Law          []string `json:"Law,omitempty"`
	Quantity     []string `json:"Quantity,omitempty"`
	Time         []string `json:"Time,omitempty"`
	Title        []string `json:"Title,omitempty"`
}

// GeoCoordinate is a geotag attached to an article entity.
type GeoCoordinate struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// GraphRelationships is an entity relation graph.
type GraphRelationships struct {
	Nodes []map[string]string `json:"nodes"`
	Edges []map[string]string `json:"edges"`
}

// Article is one indexed news article.
type Article struct {
	ArticleID          uuid.UUID                `json:"article_id"`
	ArticleURL         string                   `json:"article_url"`
	Classification     any                      `json:"classification,omitempty"`
	Country            string                   `json:"country"`
	SourceID           string                   `json:"source_id"`
	PageRank           int                      `json:"page_rank"`
	DomainURL          string                   `json:"domain_url"`
	EngTitle           string                   `json:"eng_title"`
	Title              string                   `json:"title"`
	Summary            string                   `json:"summary"`
	KeyPoints          []string                 `json:"key_points,omitempty"`
	Keywords           []string                 `json:"keywords"`
	Language           string                   `json:"language"`
	PubDate            time.Time                `json:"pub_date"`
	Sentiment          int                      `json:"sentiment"`
	MedoidDistance     float64                  `json:"medoid_distance,omitempty"`
	MarkdownCitation   string                   `json:"markdown_citation,omitempty"`
	Provocative        string                   `json:"provocative,omitempty"`
	ReportingVoice     string                   `json:"reporting_voice,omitempty"`
	ImageURL           string                   `json:"image_url,omitempty"`
	Continent          string                   `json:"continent,omitempty"`
	Entities           Entities                 `json:"entities"`
	EntityGraph        *GraphRelationships      `json:"entity_relation_graph,omitempty"`
	GeoCoordinates     map[string]GeoCoordinate `json:"geo_coordinates,omitempty"`
}

// SearchArticle is an Article as returned by search, carrying the
// prompt-ready string key for this hit.
type SearchArticle struct {
	Article
	AsStringKey string `json:"as_string_key"`
}

// SearchResponse is the result of a news search. AsString holds the
// prompt-optimized rendition, AsDicts the structured articles;
// which are populated depends on the requested return type.
type SearchResponse struct {
	AsDicts  []SearchArticle `json:"as_dicts,omitempty"`
	AsString string          `json:"as_string,omitempty"`
	Offset   any             `json:"offset,omitempty"`
}

// ArticleResponse is a single article fetched by ID.
type ArticleResponse struct {
	Article
}

// SourceReportItem is one bucket of the source coverage report.
type SourceReportItem struct {
	BsonDate       time.Time          `json:"bson_date"`
	NBucket        int                `json:"n_bucket"`
	NSelected      int                `json:"n_selected"`
	BucketCounts   map[string]int     `json:"bucket_counts"`
	SelectedCounts map[string]int     `json:"selected_counts"`
	BucketPct      map[string]float64 `json:"bucket_pct"`
	SelectedPct    map[string]float64 `json:"selected_pct"`
}

// SourceReportResponse is the full source coverage report.
type SourceReportResponse []SourceReportItem

// RedditThread is one thread returned by Reddit search.
type RedditThread struct {
	Title     string    `json:"title"`
	Subreddit string    `json:"subreddit"`
	URL       string    `json:"url"`
	Date      time.Time `json:"date"`
	Summary   string    `json:"summary"`
	Sentiment int       `json:"sentiment"`
	Keywords  []string  `json:"keywords"`
}

// RedditResponse is the result of a Reddit search.
type RedditResponse struct {
	AsString string         `json:"as_string,omitempty"`
	Threads  []RedditThread `json:"threads,omitempty"`
}

// GraphResponse is a knowledge graph built from matching articles.
type GraphResponse struct {
	Graph   GraphRelationships `json:"graph"`
	Sources []Article          `json:"sources,omitempty"`
}
