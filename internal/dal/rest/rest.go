package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Client is the shared HTTP client for the retail backend. All collaborator
// repositories go through it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// MustNewClient creates a new backend client from configuration.
func MustNewClient() *Client {
	baseURL := viper.GetString("backend.base_url")
	if baseURL == "" {
		panic("backend.base_url is not configured")
	}

	timeoutSeconds := viper.GetInt("backend.timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 10
	}

	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		baseURL:    baseURL,
		token:      os.Getenv("BACKEND_API_TOKEN"),
	}
}

// NewClient creates a client for the given base URL, without configuration.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// APIError is a non-2xx backend response with its raw body preserved for
// error mapping.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded with status %d", e.StatusCode)
}

// GetJSON performs a GET request and returns the raw response body.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	return c.do(req)
}

// PostJSON performs a POST request with a JSON body and returns the raw
// response body.
func (c *Client) PostJSON(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}

// UnwrapResults strips the pagination envelope of backend listing responses.
// The backend returns either {"results": [...]} or a bare array.
func UnwrapResults(data []byte) []byte {
	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err == nil && page.Results != nil {
		return page.Results
	}

	return data
}
