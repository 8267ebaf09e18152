// Package asknews is the entry point of the AskNews Go SDK. It bundles
// the per-domain APIs behind a single SDK value sharing one
// authenticated client.
//
// Basic usage:
//
//	sdk, err := asknews.New(
//		core.NewClientCredentials(id, secret),
//		core.WithScopes(core.ScopeNews, core.ScopeChat),
//	)
//	if err != nil {
//		// ...
//	}
//	defer sdk.Close()
//
//	resp, err := sdk.News.Search(ctx, &news.SearchRequest{Query: "..."})
package asknews

import (
	"context"
	"net/http"

	"github.com/asknews/asknews-go/analytics"
	"github.com/asknews/asknews-go/chat"
	"github.com/asknews/asknews-go/core"
	"github.com/asknews/asknews-go/news"
	"github.com/asknews/asknews-go/stories"
	"github.com/asknews/asknews-go/wiki"
)

// SDK groups the per-domain APIs over one shared client. All fields
// are ready to use after New and safe for concurrent use.
type SDK struct {
	News      *news.API
	Stories   *stories.API
	Chat      *chat.API
	Analytics *analytics.API
	Wiki      *wiki.API

	client *core.Client
}

// New creates an SDK with the given credentials and options.
func New(creds core.Credentials, opts ...core.Option) (*SDK, error) {
	client, err := core.NewClient(creds, opts...)
	if err != nil {
		return nil, err
	}
	return &SDK{
		News:      news.New(client),
		Stories:   stories.New(client),
		Chat:      chat.New(client),
		Analytics: analytics.New(client),
		Wiki:      wiki.New(client),
		client:    client,
	}, nil
}

// Client returns the underlying transport client, for callers that
// build requests directly.
func (s *SDK) Client() *core.Client {
	return s.client
}

// PingResponse is the API liveness response.
type PingResponse struct {
	App     string `json:"app"`
	Version string `json:"version"`
}

// Ping checks API liveness. It requires no scopes.
func (s *SDK) Ping(ctx context.Context) (*PingResponse, error) {
	req := core.NewRequest(http.MethodGet, "/")

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out PingResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Close releases idle connections held by the SDK's client.
func (s *SDK) Close() {
	s.client.Close()
}
