// Package legalentity implements the legal-entity validation collaborators:
// the company registry lookup and the regulator filter API, plus the
// activities that persist their responses for the audit trail.
package legalentity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/onboarding-cl/company-validation/internal/domain"
)

// filterChannel is the origin channel reported to the regulator filter.
const filterChannel = "Datamart"

// LookupClient resolves a company record from the legal-entity registry.
// The lookup is a long-running job on the registry side; implementations
// must honor ctx cancellation so heartbeat timeouts can interrupt it.
type LookupClient interface {
	Lookup(ctx context.Context, rut string) (*domain.LegalEntityLookup, error)
}

// FilterClient validates company identity against the regulator filter API.
type FilterClient interface {
	Validate(ctx context.Context, rut, razonSocial string) (*domain.RegulatorFilterResult, error)
}

// Config holds the client configuration for both collaborators.
type Config struct {
	// LookupEndpoint is the base URL of the legal-entity lookup service.
	LookupEndpoint string

	// FilterEndpoint is the base URL of the regulator filter proxy.
	FilterEndpoint string

	// FilterAPIKey authenticates filter calls.
	FilterAPIKey string

	// Timeout bounds each HTTP call. The lookup additionally honors the
	// activity-level heartbeat and start-to-close timeouts.
	Timeout time.Duration

	// HTTPClient overrides the default client when set.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with production defaults applied.
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second}
}

// HTTPClients implements LookupClient and FilterClient over HTTP.
type HTTPClients struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClients creates the production clients from cfg.
func NewHTTPClients(cfg Config) *HTTPClients {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClients{cfg: cfg, http: httpClient}
}

// Lookup implements LookupClient.
func (c *HTTPClients) Lookup(ctx context.Context, rut string) (*domain.LegalEntityLookup, error) {
	body, err := json.Marshal(map[string]string{"rut": rut})
	if err != nil {
		return nil, fmt.Errorf("marshal lookup input: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.LookupEndpoint+"/legal-entities/lookup", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create lookup request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("legal entity lookup call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d: %s", ErrLookupFailed, resp.StatusCode, snippet)
	}

	var lookup domain.LegalEntityLookup
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	return &lookup, nil
}

// Validate implements FilterClient with a POST to /v1/validations. The
// Personas list is always empty at this stage; partner screening happens in
// the ownership branch.
func (c *HTTPClients) Validate(ctx context.Context, rut, razonSocial string) (*domain.RegulatorFilterResult, error) {
	body, err := json.Marshal(map[string]any{
		"Rut":         rut,
		"RazonSocial": razonSocial,
		"CanalOrigen": filterChannel,
		"Personas":    []any{},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal filter input: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.FilterEndpoint+"/v1/validations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create filter request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.FilterAPIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("regulator filter call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d: %s", ErrFilterFailed, resp.StatusCode, snippet)
	}

	var result domain.RegulatorFilterResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode filter response: %w", err)
	}
	return &result, nil
}
