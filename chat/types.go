package chat

// Message is one turn of an OpenAI-compatible conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// CompletionRequest is the body of a chat completion call.
type CompletionRequest struct {
	Model            string         `json:"model,omitempty"`
	Messages         []Message      `json:"messages"`
	Stream           bool           `json:"stream,omitempty"`
	Temperature      float64        `json:"temperature,omitempty"`
	TopP             float64        `json:"top_p,omitempty"`
	N                int            `json:"n,omitempty"`
	Stop             []string       `json:"stop,omitempty"`
	MaxTokens        int            `json:"max_tokens,omitempty"`
	PresencePenalty  float64        `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64        `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]int `json:"logit_bias,omitempty"`
	User             string         `json:"user,omitempty"`

	// InlineCitations selects how sources are cited in the answer:
	// markdown_link, numbered, or none.
	InlineCitations string `json:"inline_citations,omitempty"`

	// AppendReferences appends a reference block to the final answer.
	AppendReferences *bool `json:"append_references,omitempty"`

	// JournalistMode filters retrieval to high-reputation sources.
	JournalistMode *bool `json:"journalist_mode,omitempty"`

	// AsknewsWatermark stamps responses with the platform watermark.
	AsknewsWatermark *bool `json:"asknews_watermark,omitempty"`

	// ConversationalAwareness lets the model reference earlier turns.
	ConversationalAwareness *bool `json:"conversational_awareness,omitempty"`

	// FilterParams are forwarded to the retrieval layer, using the same
	// keys as a news search.
	FilterParams map[string]any `json:"filter_params,omitempty"`
}

// CompletionChoice is one generated answer.
type CompletionChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is a buffered chat completion.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   Usage              `json:"usage"`
}

// ChunkDelta is the incremental payload of one streamed chunk.
type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChunkChoice is one choice of a streamed chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// CompletionChunk is one streamed completion fragment.
type CompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// Model describes one available chat model.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelsResponse lists the available chat models.
type ModelsResponse struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// HeadlineQuestionsResponse maps a query to generated headline
// questions.
type HeadlineQuestionsResponse struct {
	Questions map[string][]string `json:"questions"`
}

// ForecastResponse is the answer to a forecast query.
type ForecastResponse struct {
	Forecast          string   `json:"forecast"`
	Resolution        string   `json:"resolution_criteria,omitempty"`
	Date              string   `json:"date,omitempty"`
	Reasoning         string   `json:"reasoning,omitempty"`
	Sources           []string `json:"sources,omitempty"`
	Timeline          []string `json:"timeline,omitempty"`
	OppositeOutcome   string   `json:"opposite_outcome,omitempty"`
	ConfidenceScore   float64  `json:"confidence,omitempty"`
	LikelihoodPercent float64  `json:"likelihood,omitempty"`
	UniqueInfo        string   `json:"unique_information,omitempty"`
	ExpertInfo        string   `json:"expert_information,omitempty"`
}

// FilterParamsResponse holds machine-generated news filter parameters,
// keyed like a news search.
type FilterParamsResponse struct {
	Query           string   `json:"query,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	StartTimestamp  int64    `json:"start_timestamp,omitempty"`
	EndTimestamp    int64    `json:"end_timestamp,omitempty"`
	Countries       []string `json:"countries,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Sentiment       string   `json:"sentiment,omitempty"`
	Sources         []string `json:"domain_url,omitempty"`
	ReportingVoice  []string `json:"reporting_voice,omitempty"`
	Provocative     string   `json:"provocative,omitempty"`
	StringGuarantee []string `json:"string_guarantee,omitempty"`
}

// WebSearchResult is one hit of a live web search.
type WebSearchResult struct {
	Title            string   `json:"title"`
	URL              string   `json:"url"`
	SourceID         string   `json:"source_id,omitempty"`
	PageRank         int      `json:"page_rank,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	KeyPoints        []string `json:"key_points,omitempty"`
	PublishedDate    string   `json:"published_date,omitempty"`
	RelevanceScore   float64  `json:"relevance_score,omitempty"`
	MarkdownCitation string   `json:"markdown_citation,omitempty"`
}

// WebSearchResponse is the result of a live web search.
type WebSearchResponse struct {
	AsString string            `json:"as_string,omitempty"`
	Results  []WebSearchResult `json:"as_dicts,omitempty"`
}
