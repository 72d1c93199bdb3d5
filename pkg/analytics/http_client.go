package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

const maxErrorBody = 512

// HTTPConfig configures the HTTP analytics client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Validator  PayloadValidator
	// SkipValidation accepts every body without checking it against the
	// embedded schemas. Validator is ignored when set.
	SkipValidation bool
	Now            func() time.Time
}

// HTTPClient talks to the retail analytics API. It performs no retries.
type HTTPClient struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	validator PayloadValidator
	now       func() time.Time
}

var _ dashboard.AnalyticsClient = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the analytics API rooted at BaseURL.
// Responses are checked against the endpoint schemas unless a different
// validator is supplied.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analytics: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("analytics: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	validator := cfg.Validator
	switch {
	case cfg.SkipValidation:
		validator = noopValidator{}
	case validator == nil:
		validator = NewSchemaValidator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		client:    httpClient,
		validator: validator,
		now:       now,
	}, nil
}

// FetchHealth calls GET /api/health. An unhealthy server answers 500 with a
// status body; that is reported as a status, not an error.
func (c *HTTPClient) FetchHealth(ctx context.Context) (dashboard.HealthStatus, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/health", nil, "")
	if err != nil {
		return dashboard.HealthStatus{}, err
	}
	var wire healthResponse
	if json.Unmarshal(resp.body, &wire) == nil && wire.Status != "" {
		if err := c.validator.Validate(SchemaHealth, resp.body); err != nil {
			return dashboard.HealthStatus{}, err
		}
		return wire.toStatus(c.now()), nil
	}
	if err := c.decode(resp, SchemaHealth, &wire); err != nil {
		return dashboard.HealthStatus{}, err
	}
	return wire.toStatus(c.now()), nil
}

// FetchLatestReport calls GET /api/reports/latest.
func (c *HTTPClient) FetchLatestReport(ctx context.Context) (dashboard.Report, error) {
	var wire reportResponse
	if err := c.get(ctx, "/api/reports/latest", SchemaReport, &wire); err != nil {
		return dashboard.Report{}, err
	}
	return wire.toReport(), nil
}

// FetchSegments calls GET /api/segments.
func (c *HTTPClient) FetchSegments(ctx context.Context) ([]dashboard.SegmentCount, error) {
	var wire segmentsResponse
	if err := c.get(ctx, "/api/segments", SchemaSegments, &wire); err != nil {
		return nil, err
	}
	return wire.toSegments(), nil
}

// FetchRecommendations calls GET /api/recommendations/{customerID}.
func (c *HTTPClient) FetchRecommendations(ctx context.Context, customerID string) (dashboard.RecommendationSet, error) {
	var wire recommendationsResponse
	path := "/api/recommendations/" + url.PathEscape(customerID)
	if err := c.get(ctx, path, SchemaRecommendations, &wire); err != nil {
		return dashboard.RecommendationSet{}, err
	}
	return wire.toSet(customerID), nil
}

// TrackEvent posts a customer interaction to /api/track_event.
func (c *HTTPClient) TrackEvent(ctx context.Context, input dashboard.TrackEventInput) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("analytics: encode event: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/track_event", bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	return c.decode(resp, "", nil)
}

// UploadDataset posts the dataset files to /api/upload as multipart form data.
func (c *HTTPClient) UploadDataset(ctx context.Context, req dashboard.UploadRequest) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	parts := []struct {
		field string
		file  *dashboard.UploadFile
	}{
		{"customers", req.Customers},
		{"products", req.Products},
		{"events", req.Events},
	}
	for _, part := range parts {
		if part.file == nil {
			continue
		}
		fw, err := writer.CreateFormFile(part.field, part.file.Filename)
		if err != nil {
			return fmt.Errorf("analytics: create form file %s: %w", part.field, err)
		}
		if part.file.Body != nil {
			if _, err := io.Copy(fw, part.file.Body); err != nil {
				return fmt.Errorf("analytics: copy %s: %w", part.file.Filename, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("analytics: close multipart body: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/upload", &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}
	return c.decode(resp, "", nil)
}

type rawResponse struct {
	status int
	body   []byte
}

func (c *HTTPClient) get(ctx context.Context, path, schema string, target any) error {
	resp, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.decode(resp, schema, target)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body io.Reader, contentType string) (rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return rawResponse{}, fmt.Errorf("analytics: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return rawResponse{}, fmt.Errorf("analytics: http request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return rawResponse{}, fmt.Errorf("analytics: read response: %w", err)
	}
	return rawResponse{status: resp.StatusCode, body: data}, nil
}

// decode turns an {error} body into a PayloadError, rejects other non-2xx
// answers, then validates and decodes the payload into target.
func (c *HTTPClient) decode(resp rawResponse, schema string, target any) error {
	if perr := payloadError(resp); perr != nil {
		return perr
	}
	if resp.status >= 300 {
		return fmt.Errorf("analytics: remote error %d: %s", resp.status, truncate(resp.body))
	}
	if target == nil {
		return nil
	}
	if schema != "" {
		if err := c.validator.Validate(schema, resp.body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(resp.body, target); err != nil {
		return fmt.Errorf("analytics: decode response: %w", err)
	}
	return nil
}

func payloadError(resp rawResponse) *dashboard.PayloadError {
	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.body, &wire); err != nil || wire.Error == "" {
		return nil
	}
	return &dashboard.PayloadError{Status: resp.status, Message: wire.Error}
}

func truncate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		return text[:maxErrorBody] + "..."
	}
	return text
}
