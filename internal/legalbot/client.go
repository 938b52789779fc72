// Package legalbot implements the ownership/partner registry collaborators:
// the study retrieval API, the external payload-processing function that
// shapes the raw study, and the duration-validity function, plus the
// activities persisting their artifacts.
package legalbot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/onboarding-cl/company-validation/internal/domain"
)

// RegistryClient retrieves an ownership study for a RUT.
type RegistryClient interface {
	GetStudy(ctx context.Context, rut string) (*domain.StudyReference, error)
}

// PayloadProcessor shapes a raw study reference into the processed study.
// Opaque external function; only its request/response contract is known.
type PayloadProcessor interface {
	Process(ctx context.Context, ref domain.StudyReference) (*domain.Study, error)
}

// DurationChecker computes whether a defined company duration is still
// valid. Opaque external function.
type DurationChecker interface {
	CheckDuration(ctx context.Context, durationEndDate string) (bool, error)
}

// Config holds the client configuration for the ownership collaborators.
type Config struct {
	// RegistryEndpoint is the base URL of the study retrieval API.
	RegistryEndpoint string

	// APIKey authenticates against the API gateway.
	APIKey string

	// ServiceAPIKey authenticates against the registry service itself.
	ServiceAPIKey string

	// ProcessorEndpoint is the URL of the payload-processing function.
	ProcessorEndpoint string

	// DurationEndpoint is the URL of the duration-validity function.
	DurationEndpoint string

	// Timeout bounds each HTTP call.
	Timeout time.Duration

	// HTTPClient overrides the default client when set.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with production defaults applied.
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second}
}

// HTTPClients implements RegistryClient, PayloadProcessor and
// DurationChecker over HTTP.
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

// GetStudy implements RegistryClient with a GET to
// /legalbot/v1/studies/DATAMART/{rut}. update-data forces the registry to
// refresh its snapshot before answering, so the run never validates stale
// ownership data.
func (c *HTTPClients) GetStudy(ctx context.Context, rut string) (*domain.StudyReference, error) {
	endpoint := fmt.Sprintf("%s/legalbot/v1/studies/DATAMART/%s?update-data=true",
		c.cfg.RegistryEndpoint, url.PathEscape(rut))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create study request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("service-api-key", c.cfg.ServiceAPIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ownership registry call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d: %s", ErrRegistryFailed, resp.StatusCode, snippet)
	}

	var ref domain.StudyReference
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return nil, fmt.Errorf("decode study response: %w", err)
	}
	return &ref, nil
}

// Process implements PayloadProcessor by posting the raw reference to the
// external processing function.
func (c *HTTPClients) Process(ctx context.Context, ref domain.StudyReference) (*domain.Study, error) {
	body, err := json.Marshal(ref)
	if err != nil {
		return nil, fmt.Errorf("marshal study reference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.ProcessorEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create processor request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payload processor call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d: %s", ErrProcessorFailed, resp.StatusCode, snippet)
	}

	var study domain.Study
	if err := json.NewDecoder(resp.Body).Decode(&study); err != nil {
		return nil, fmt.Errorf("decode processed study: %w", err)
	}
	return &study, nil
}

// CheckDuration implements DurationChecker by posting the end date to the
// external validity function.
func (c *HTTPClients) CheckDuration(ctx context.Context, durationEndDate string) (bool, error) {
	body, err := json.Marshal(map[string]string{"durationEndDate": durationEndDate})
	if err != nil {
		return false, fmt.Errorf("marshal duration input: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.DurationEndpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create duration request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("duration validity call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w: http %d: %s", ErrDurationCheckFailed, resp.StatusCode, snippet)
	}

	var verdict struct {
		Valid bool `json:"valid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return false, fmt.Errorf("decode duration response: %w", err)
	}
	return verdict.Valid, nil
}
