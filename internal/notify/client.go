// Package notify implements the notification collaborator. Every terminal
// or intermediate status transition is pushed to the manager application
// through a GraphQL notify mutation, keyed by the process ID.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/onboarding-cl/company-validation/internal/domain"
)

// notifyMutation is the GraphQL document sent for every notification.
const notifyMutation = `mutation notify ($id: String!, $status: String, $data: AWSJSON) {
	notify (id: $id, status: $status, data: $data) {
		id
		status
		data
	}
}`

// ErrNotifyFailed indicates the notification endpoint answered with an
// error status code.
var ErrNotifyFailed = errors.New("notification rejected by service")

// Config holds the notification client configuration.
type Config struct {
	// Endpoint is the base URL of the sync notification API.
	Endpoint string

	// Timeout bounds each HTTP call.
	Timeout time.Duration

	// HTTPClient overrides the default client when set.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with production defaults applied.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// Client pushes status notifications to the manager application.
type Client interface {
	// Notify sends the notify mutation for the given run and status. Data
	// is an optional JSON document attached to the notification.
	Notify(ctx context.Context, req domain.ValidationRequest, status domain.Status, data json.RawMessage) error
}

// HTTPClient is the production Client over the notification REST endpoint.
type HTTPClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient creates a notification client from cfg.
func NewHTTPClient(cfg Config) *HTTPClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClient{cfg: cfg, http: httpClient}
}

// Notify implements Client with a POST to /notify-manager-app.
func (c *HTTPClient) Notify(
	ctx context.Context,
	req domain.ValidationRequest,
	status domain.Status,
	data json.RawMessage,
) error {
	variables := map[string]any{
		"id":     req.ProcessID,
		"status": status,
	}
	if len(data) > 0 {
		variables["data"] = string(data)
	}

	body, err := json.Marshal(map[string]any{
		"query":     notifyMutation,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal notify mutation: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.Endpoint+"/notify-manager-app", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cookie", req.AuthCookie)
	httpReq.Header.Set("x-csrftoken", req.CSRFToken)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("notify call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: http %d: %s", ErrNotifyFailed, resp.StatusCode, snippet)
	}
	return nil
}
