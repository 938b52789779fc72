// Package ecommerce implements the status-update collaborator: the
// onboarding request store that records every status transition of a
// validation run, including the terminal rejection names and the artifact
// URLs gathered along the way.
package ecommerce

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

// Request body constants for the partial-checkout endpoint. The onboarding
// flow pins the validation to step 0 of product 2.
const (
	checkoutStep      = 0
	checkoutProductID = 2
)

// Config holds the status-service client configuration.
type Config struct {
	// Endpoint is the base URL of the onboarding e-commerce API.
	Endpoint string

	// APIKey authenticates this orchestrator against the API.
	APIKey string

	// Timeout bounds each HTTP call.
	Timeout time.Duration

	// HTTPClient overrides the default client when set.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with production defaults applied.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// StatusData is the data section of a status update. Zero-valued fields are
// omitted so a single payload shape covers plain status transitions,
// company-validation artifact links, and partner data.
type StatusData struct {
	Status                 domain.Status      `json:"status,omitempty"`
	BciValidationProcessID string             `json:"bciValidationProcessId,omitempty"`
	CompanyValidation      *CompanyValidation `json:"companyValidation,omitempty"`
	PartnersAndAttorneys   *PartnersData      `json:"partnersAndAttorneysData,omitempty"`
}

// CompanyValidation links the request to the persisted legal-entity and
// regulator-filter artifacts.
type CompanyValidation struct {
	LegalEntitiesURL            string `json:"legalEntitiesUrl,omitempty"`
	CompanyName                 string `json:"companyName,omitempty"`
	BciFilterValidateCompanyURL string `json:"BciFilterValidateCompanyURL,omitempty"`
}

// PartnersData links the request to the ownership study and records the
// partner set together with the dispatch decision.
type PartnersData struct {
	LegalbotFuenteURL string             `json:"legalbotFuenteURL,omitempty"`
	RegistroRES       *bool              `json:"RegistroRES,omitempty"`
	Partners          []domain.Associate `json:"partners,omitempty"`
	StudyID           string             `json:"studyId,omitempty"`
	Rut               string             `json:"rut,omitempty"`
	Dispatch          *bool              `json:"Dispatch,omitempty"`
}

// UpdateResult reports the outcome of a status update call.
type UpdateResult struct {
	StatusCode int `json:"statusCode"`
}

// StatusClient records status transitions on the onboarding request.
type StatusClient interface {
	// Update patches the partial checkout with the given data on behalf of
	// the applicant's session.
	Update(ctx context.Context, req domain.ValidationRequest, data StatusData) (*UpdateResult, error)
}

// HTTPClient is the production StatusClient over the e-commerce REST API.
type HTTPClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient creates a status-service client from cfg.
func NewHTTPClient(cfg Config) *HTTPClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClient{cfg: cfg, http: httpClient}
}

// Update implements StatusClient with a PATCH to /partial-checkout.
func (c *HTTPClient) Update(
	ctx context.Context,
	req domain.ValidationRequest,
	data StatusData,
) (*UpdateResult, error) {
	payload := map[string]any{
		"step":      checkoutStep,
		"productId": checkoutProductID,
		"data":      data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal status update: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.cfg.Endpoint+"/partial-checkout", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create status update request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("Cookie", req.AuthCookie)
	httpReq.Header.Set("x-csrftoken", req.CSRFToken)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("status update call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d: %s", ErrStatusUpdateFailed, resp.StatusCode, snippet)
	}

	return &UpdateResult{StatusCode: resp.StatusCode}, nil
}
