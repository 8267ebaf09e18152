package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/asknews/asknews-go/core"
)

// Alert endpoints.
const (
	alertsPath    = "/v1/chat/alerts"
	alertPath     = "/v1/chat/alerts/{alert_id}"
	alertLogsPath = "/v1/chat/alerts/{alert_id}/logs"
)

// Trigger actions.
const (
	TriggerReport     = "report"
	TriggerWebhook    = "webhook"
	TriggerEmail      = "email"
	TriggerGoogleDocs = "google_docs"
)

// ReportParams configures a report trigger. Query is a list of
// (author, prompt) pairs; {summaries} in a prompt is replaced with the
// retrieved summaries.
type ReportParams struct {
	Query [][]string `json:"query,omitempty"`
	Model string     `json:"model,omitempty"`
}

// WebhookParams configures a webhook trigger.
type WebhookParams struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Payload map[string]any    `json:"payload,omitempty"`
}

// EmailParams configures an email trigger.
type EmailParams struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
}

// GoogleDocsParams configures a Google Docs trigger. ClientJSON is the
// service account credential; the document is created in that
// account's drive and shared with Emails.
type GoogleDocsParams struct {
	ClientJSON map[string]any `json:"client_json"`
	Emails     []string       `json:"emails,omitempty"`
}

// AlertTrigger is one action to run when an alert fires. Action
// selects which params field is used; exactly one should be set.
type AlertTrigger struct {
	Action     string
	Report     *ReportParams
	Webhook    *WebhookParams
	Email      *EmailParams
	GoogleDocs *GoogleDocsParams
}

// MarshalJSON renders the wire form {action, params}.
func (t AlertTrigger) MarshalJSON() ([]byte, error) {
	var params any
	switch t.Action {
	case TriggerReport:
		params = t.Report
	case TriggerWebhook:
		params = t.Webhook
	case TriggerEmail:
		params = t.Email
	case TriggerGoogleDocs:
		params = t.GoogleDocs
	default:
		return nil, fmt.Errorf("chat: unknown trigger action %q", t.Action)
	}
	return json.Marshal(struct {
		Action string `json:"action"`
		Params any    `json:"params"`
	}{t.Action, params})
}

// UnmarshalJSON dispatches on the action discriminator. Unknown
// actions keep the name and drop the params.
func (t *AlertTrigger) UnmarshalJSON(data []byte) error {
	var raw struct {
		Action string          `json:"action"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Action = raw.Action
	if len(raw.Params) == 0 {
		return nil
	}
	switch raw.Action {
	case TriggerReport:
		t.Report = &ReportParams{}
		return json.Unmarshal(raw.Params, t.Report)
	case TriggerWebhook:
		t.Webhook = &WebhookParams{}
		return json.Unmarshal(raw.Params, t.Webhook)
	case TriggerEmail:
		t.Email = &EmailParams{}
		return json.Unmarshal(raw.Params, t.Email)
	case TriggerGoogleDocs:
		t.GoogleDocs = &GoogleDocsParams{}
		return json.Unmarshal(raw.Params, t.GoogleDocs)
	}
	return nil
}

// CreateAlertRequest is the body of an alert creation call. Cron and
// Triggers are required. Repeat and Active default to true when nil.
type CreateAlertRequest struct {
	Query         string         `json:"query,omitempty"`
	Cron          string         `json:"cron"`
	Model         string         `json:"model,omitempty"`
	ShareLink     string         `json:"share_link,omitempty"`
	FilterParams  map[string]any `json:"filter_params,omitempty"`
	Triggers      []AlertTrigger `json:"triggers"`
	AlwaysTrigger bool           `json:"always_trigger,omitempty"`
	Repeat        *bool          `json:"repeat,omitempty"`
	Active        *bool          `json:"active,omitempty"`
}

// UpdateAlertRequest is the body of an alert update. Nil fields are
// left unchanged on the server.
type UpdateAlertRequest struct {
	Query         *string        `json:"query,omitempty"`
	Cron          *string        `json:"cron,omitempty"`
	Model         *string        `json:"model,omitempty"`
	ShareLink     *string        `json:"share_link,omitempty"`
	FilterParams  map[string]any `json:"filter_params,omitempty"`
	Triggers      []AlertTrigger `json:"triggers,omitempty"`
	AlwaysTrigger *bool          `json:"always_trigger,omitempty"`
	Repeat        *bool          `json:"repeat,omitempty"`
	Active        *bool          `json:"active,omitempty"`
}

// AlertResponse is one alert as stored by the platform.
type AlertResponse struct {
	ID            uuid.UUID      `json:"id"`
	CreatedAt     *time.Time     `json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
	UserID        uuid.UUID      `json:"user_id"`
	Query         string         `json:"query,omitempty"`
	Cron          string         `json:"cron"`
	Model         string         `json:"model,omitempty"`
	ShareLink     string         `json:"share_link,omitempty"`
	FilterParams  map[string]any `json:"filter_params,omitempty"`
	Triggers      []AlertTrigger `json:"triggers"`
	AlwaysTrigger bool           `json:"always_trigger"`
	Repeat        bool           `json:"repeat"`
	Active        bool           `json:"active"`
}

// AlertLog is one execution record of an alert.
type AlertLog struct {
	ID        uuid.UUID      `json:"id"`
	AlertID   uuid.UUID      `json:"alert_id"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	Triggered bool           `json:"triggered"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items        []T  `json:"items"`
	Count        int  `json:"count"`
	NextPage     *int `json:"next_page"`
	PreviousPage *int `json:"previous_page"`
}

// ListOptions control pagination; the zero value uses server defaults.
// All requests every item regardless of paging.
type ListOptions struct {
	Page    int
	PerPage int
	All     bool
}

func (o *ListOptions) apply(req *core.Request) {
	if o == nil {
		return
	}
	if o.Page > 0 {
		req.WithQueryInt("page", o.Page)
	}
	if o.PerPage > 0 {
		req.WithQueryInt("per_page", o.PerPage)
	}
	if o.All {
		req.WithQueryBool("all", true)
	}
}

// CreateAlert registers a scheduled alert.
func (a *API) CreateAlert(ctx context.Context, ar *CreateAlertRequest) (*AlertResponse, error) {
	req := core.NewRequest(http.MethodPost, alertsPath).
		WithBody(ar).
		WithScopes(core.ScopeChat)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out AlertResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAlert fetches one alert by ID.
func (a *API) GetAlert(ctx context.Context, alertID uuid.UUID) (*AlertResponse, error) {
	req := core.NewRequest(http.MethodGet, alertPath).
		WithPathParam("alert_id", alertID.String()).
		WithScopes(core.ScopeChat)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out AlertResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAlerts lists the account's alerts.
func (a *API) ListAlerts(ctx context.Context, opts *ListOptions) (*Page[AlertResponse], error) {
	req := core.NewRequest(http.MethodGet, alertsPath).
		WithScopes(core.ScopeChat)
	opts.apply(req)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out Page[AlertResponse]
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAlert applies a partial update to an alert.
func (a *API) UpdateAlert(ctx context.Context, alertID uuid.UUID, ar *UpdateAlertRequest) (*AlertResponse, error) {
	req := core.NewRequest(http.MethodPut, alertPath).
		WithPathParam("alert_id", alertID.String()).
		WithBody(ar).
		WithScopes(core.ScopeChat)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out AlertResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAlert removes an alert.
func (a *API) DeleteAlert(ctx context.Context, alertID uuid.UUID) error {
	req := core.NewRequest(http.MethodDelete, alertPath).
		WithPathParam("alert_id", alertID.String()).
		WithScopes(core.ScopeChat)

	_, err := a.client.Do(ctx, req)
	return err
}

// ListAlertLogs lists the execution history of an alert.
func (a *API) ListAlertLogs(ctx context.Context, alertID uuid.UUID, opts *ListOptions) (*Page[AlertLog], error) {
	req := core.NewRequest(http.MethodGet, alertLogsPath).
		WithPathParam("alert_id", alertID.String()).
		WithScopes(core.ScopeChat)
	opts.apply(req)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out Page[AlertLog]
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
