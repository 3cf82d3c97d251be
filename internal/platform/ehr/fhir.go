// Package ehr integrates with external health systems over two channels: a
// FHIR REST API and an HL7v2 socket interface. The Adapter composes both with
// a primary/fallback read path and a best-effort dual write for referrals.
package ehr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
)

const fhirContentType = "application/fhir+json"

// FHIRClient performs authenticated calls against a FHIR REST endpoint.
// There is no retry; failures propagate as EHR errors carrying the upstream
// status.
type FHIRClient struct {
	baseURL   string
	authToken string
	client    *http.Client
}

func NewFHIRClient(baseURL, authToken string, timeout time.Duration) *FHIRClient {
	return &FHIRClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *FHIRClient) request(ctx context.Context, method, resource string, body interface{}) (map[string]interface{}, error) {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal fhir request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+resource, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build fhir request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("Content-Type", fhirContentType)
	req.Header.Set("Accept", fhirContentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.EHR("fhir request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.EHR("fhir request failed", resp.StatusCode, nil)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperr.EHR("fhir response decode failed", resp.StatusCode, err)
	}
	return result, nil
}

// GetPatient fetches a Patient resource by logical ID.
func (c *FHIRClient) GetPatient(ctx context.Context, patientID string) (map[string]interface{}, error) {
	return c.request(ctx, http.MethodGet, "Patient/"+url.PathEscape(patientID), nil)
}

// SearchPatients performs a Patient search with the given query parameters.
func (c *FHIRClient) SearchPatients(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return c.request(ctx, http.MethodGet, "Patient?"+q.Encode(), nil)
}

// CreateServiceRequest creates a ServiceRequest resource.
func (c *FHIRClient) CreateServiceRequest(ctx context.Context, resource map[string]interface{}) (map[string]interface{}, error) {
	return c.request(ctx, http.MethodPost, "ServiceRequest", resource)
}

// UpdateServiceRequest replaces a ServiceRequest resource by logical ID.
func (c *FHIRClient) UpdateServiceRequest(ctx context.Context, id string, resource map[string]interface{}) (map[string]interface{}, error) {
	return c.request(ctx, http.MethodPut, "ServiceRequest/"+url.PathEscape(id), resource)
}
